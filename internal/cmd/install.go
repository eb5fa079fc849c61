package cmd

import (
	"context"
	"fmt"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/db"
	"github.com/quantmind-br/libmgr/internal/install"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command
func NewInstallCmd(cfg *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var timeoutSecs int

	cmd := &cobra.Command{
		Use:   "install <library>...",
		Short: "Install missing libraries",
		Long: `Install every given library that is not installed yet.
All missing libraries are handed to the package manager in a single request.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseTargets(args)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			ctx, cancel := withTimeout(cmd.Context(), timeoutSecs)
			defer cancel()

			log.Info().Strs("targets", targets.Sorted()).Msg("starting installation")

			driver := install.New(cache.New(deps.Provider, log), deps.Provider, log)
			missing, err := driver.Missing(ctx, targets)
			if err != nil {
				ui.PrintError("failed to query installed libraries: %v", err)
				return err
			}
			if missing.Len() > 0 {
				ui.PrintInfo("Installing %d libraries: %v", missing.Len(), missing.Sorted())
			}

			result, err := driver.Ensure(ctx, targets)

			jctx := context.WithoutCancel(ctx)
			journal := openJournal(jctx, cfg, deps.Fs, log)
			if journal != nil {
				defer journal.Close()
			}
			status, detail := db.StatusOK, ""
			if err != nil {
				status, detail = db.StatusFailed, err.Error()
			}
			for _, name := range missing.Sorted() {
				recordOperation(jctx, journal, log, &db.Operation{
					Action:  db.ActionInstall,
					Library: name,
					Status:  status,
					Detail:  detail,
				})
			}

			if err != nil {
				ui.PrintError("installation failed: %v", err)
				return fmt.Errorf("install: %w", err)
			}

			if result.Status == install.AlreadySatisfied {
				ui.PrintSuccess("All required libraries are already installed")
				return nil
			}

			ui.PrintSuccess("Installed %d libraries", result.Missing.Len())
			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutSecs, "timeout", 600, "installation timeout in seconds")

	return cmd
}
