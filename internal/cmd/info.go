package cmd

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/resolver"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type libraryInfo struct {
	Name       string   `json:"name"`
	Version    string   `json:"version,omitempty"`
	Requires   []string `json:"requires"`
	RequiredBy []string `json:"required_by"`
	AllDeps    []string `json:"all_dependencies"`
}

// NewInfoCmd creates the info command
func NewInfoCmd(_ *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info [library]",
		Short: "Show library information",
		Long: `Show the version and dependency edges of an installed library.
Without an argument an interactive picker over the installed libraries is shown.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: completeInstalled(deps.Provider, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			metadata := cache.New(deps.Provider, log)

			var name string
			if len(args) == 0 {
				installed, err := metadata.InstalledLibraries(ctx, false)
				if err != nil {
					ui.PrintError("failed to query installed libraries: %v", err)
					return err
				}
				if installed.Len() == 0 {
					ui.PrintInfo("No libraries installed")
					return nil
				}
				_, name, err = ui.SelectPrompt("Select library", installed.Sorted())
				if err != nil {
					return err
				}
			} else {
				targets, err := parseTargets(args)
				if err != nil {
					ui.PrintError("%v", err)
					return err
				}
				name = targets.Sorted()[0]
			}

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

			info := libraryInfo{
				Name:       name,
				Version:    lookup.Record.Version,
				Requires:   lookup.Record.Requires.Sorted(),
				RequiredBy: lookup.Record.RequiredBy.Sorted(),
				AllDeps:    all.Sorted(),
			}

			log.Debug().Str("library", name).Msg("displayed library info")

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			printLibraryInfo(info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}

func printLibraryInfo(info libraryInfo) {
	ui.PrintHeader(fmt.Sprintf("Library Information: %s", info.Name))

	version := info.Version
	if version == "" {
		version = "(not reported)"
	}
	ui.PrintKeyValue("Version", version)
	ui.PrintKeyValue("Requires", joinOrNone(info.Requires))
	ui.PrintKeyValue("Required-by", joinOrNone(info.RequiredBy))
	ui.PrintKeyValue("All dependencies", fmt.Sprintf("%d", len(info.AllDeps)))
	if len(info.RequiredBy) == 0 {
		ui.PrintInfo("Nothing depends on %s; 'libmgr prune %s' removes it", info.Name, info.Name)
	}
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
