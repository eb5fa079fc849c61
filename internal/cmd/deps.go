package cmd

import (
	"context"
	"fmt"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/resolver"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type dependencyEntry struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Direct  bool   `json:"direct"`
}

// NewDepsCmd creates the deps command
func NewDepsCmd(_ *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps <library>",
		Short: "Show every dependency of a library",
		Long:  `Show every library reachable from the given one through its requirements.`,
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: completeInstalled(deps.Provider, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseTargets(args)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}
			name := targets.Sorted()[0]
			ctx := cmd.Context()

			metadata := cache.New(deps.Provider, log)
			lookup, err := metadata.DetailsOf(ctx, name)
			if err != nil {
				ui.PrintError("failed to query %s: %v", name, err)
				return err
			}
			if !lookup.Known {
				return unknownLibrary(ctx, metadata, name)
			}

			all, err := resolver.New(metadata).AllDependenciesOf(ctx, name)
			if err != nil {
				ui.PrintError("failed to resolve dependencies: %v", err)
				return err
			}

			entries := make([]dependencyEntry, 0, all.Len())
			for _, dep := range all.Sorted() {
				rec, err := metadata.Record(ctx, dep)
				if err != nil {
					return err
				}
				entries = append(entries, dependencyEntry{
					Name:    dep,
					Version: rec.Version,
					Direct:  lookup.Record.Requires.Has(dep),
				})
			}

			log.Debug().Str("library", name).Int("count", len(entries)).Msg("dependencies resolved")

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			if len(entries) == 0 {
				ui.PrintInfo("%s has no dependencies", name)
				return nil
			}

			ui.PrintHeader(fmt.Sprintf("Dependencies of %s", name))
			table := newTable(cmd.OutOrStdout(), "Library", "Version", "Kind")
			for _, e := range entries {
				kind := "transitive"
				if e.Direct {
					kind = "direct"
				}
				table.Append(e.Name, orDash(e.Version), kind)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}

// unknownLibrary reports a library that is not installed, offering close
// matches from the installed set
func unknownLibrary(ctx context.Context, metadata *cache.MetadataCache, name string) error {
	ui.PrintWarning("library not installed: %s", name)
	if installed, err := metadata.InstalledLibraries(ctx, false); err == nil {
		if suggestions := ui.Suggest(name, installed.Sorted(), 3); len(suggestions) > 0 {
			ui.PrintInfo("Did you mean:")
			ui.PrintList(suggestions)
		}
	}
	return fmt.Errorf("%w: %s", core.ErrUnknownLibrary, name)
}
