package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/requirements"
	"github.com/quantmind-br/libmgr/internal/scan"
	"github.com/quantmind-br/libmgr/internal/security"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRequirementsCmd creates the requirements command
func NewRequirementsCmd(cfg *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var (
		output     string
		transitive bool
		toStdout   bool
	)

	cmd := &cobra.Command{
		Use:   "requirements <file.py>",
		Short: "Write the requirements of a Python source file",
		Long: `Scan the imports of a Python source file, match them against the installed
libraries and write a pinned requirements file. Imports that match no installed
library (standard library modules, local packages) are reported and left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if err := security.ValidateSourcePath(source); err != nil {
				ui.PrintError("%v", err)
				return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
			}

			modules, err := scan.Imports(deps.Fs, source)
			if err != nil {
				ui.PrintError("failed to scan %s: %v", source, err)
				return err
			}

			ctx := cmd.Context()
			metadata := cache.New(deps.Provider, log)
			installed, err := metadata.InstalledLibraries(ctx, false)
			if err != nil {
				ui.PrintError("failed to query installed libraries: %v", err)
				return err
			}

			matched, unmatched := scan.MatchInstalled(modules, installed, scan.DefaultAliases)
			log.Debug().
				Str("source", source).
				Int("imports", len(modules)).
				Strs("matched", matched).
				Strs("unmatched", unmatched).
				Msg("imports scanned")

			if len(unmatched) > 0 {
				ui.PrintWarning("no installed library for: %v", unmatched)
			}

			entries, err := requirements.Build(ctx, metadata, core.NewNameSet(matched...), transitive)
			if err != nil {
				ui.PrintError("failed to build requirements: %v", err)
				return err
			}

			header := fmt.Sprintf("generated by libmgr from %s", filepath.Base(source))
			if toStdout {
				_, err := fmt.Fprint(cmd.OutOrStdout(), requirements.Render(entries, header))
				return err
			}

			if output == "" {
				output = cfg.Requirements.Output
			}
			if err := requirements.Write(deps.Fs, output, entries, header); err != nil {
				ui.PrintError("%v", err)
				return err
			}

			log.Info().Str("output", output).Int("count", len(entries)).Msg("requirements written")
			ui.PrintSuccess("Wrote %d requirements to %s", len(entries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from config)")
	cmd.Flags().BoolVar(&transitive, "transitive", false, "also list every dependency of the matched libraries")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print instead of writing a file")

	return cmd
}
