package cmd

import (
	"strings"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type listedLibrary struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Requires   int    `json:"requires,omitempty"`
	RequiredBy int    `json:"required_by,omitempty"`
}

// NewListCmd creates the list command
func NewListCmd(_ *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var (
		jsonOutput  bool
		filterName  string
		showDetails bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed libraries",
		Long: `List the libraries the package manager reports as installed.
With --details every library is queried for its version and dependency edges.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			metadata := cache.New(deps.Provider, log)

			installed, err := metadata.InstalledLibraries(ctx, false)
			if err != nil {
				ui.PrintError("failed to list libraries: %v", err)
				return err
			}

			names := filterNames(installed.Sorted(), filterName)
			libs := make([]listedLibrary, 0, len(names))
			for _, name := range names {
				lib := listedLibrary{Name: name}
				if showDetails {
					rec, err := metadata.Record(ctx, name)
					if err != nil {
						ui.PrintError("failed to query %s: %v", name, err)
						return err
					}
					lib.Version = rec.Version
					lib.Requires = rec.Requires.Len()
					lib.RequiredBy = rec.RequiredBy.Len()
				}
				libs = append(libs, lib)
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), libs)
			}

			if len(libs) == 0 {
				if filterName != "" {
					ui.PrintWarning("No libraries found matching %q", filterName)
				} else {
					ui.PrintInfo("No libraries installed")
				}
				return nil
			}

			if filterName != "" {
				ui.PrintInfo("Showing %d of %d libraries", len(libs), installed.Len())
			} else {
				ui.PrintInfo("%d libraries installed", len(libs))
			}

			if showDetails {
				table := newTable(cmd.OutOrStdout(), "Name", "Version", "Requires", "Required-by")
				for _, lib := range libs {
					table.Append(lib.Name, orDash(lib.Version), lib.Requires, lib.RequiredBy)
				}
				table.Render()
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "Name")
			for _, lib := range libs {
				table.Append(lib.Name)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&filterName, "name", "", "filter by library name (partial match)")
	cmd.Flags().BoolVarP(&showDetails, "details", "d", false, "show versions and dependency counts")

	return cmd
}

// filterNames keeps names containing filter, case-insensitively
func filterNames(names []string, filter string) []string {
	if filter == "" {
		return names
	}
	filter = strings.ToLower(filter)
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), filter) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}
