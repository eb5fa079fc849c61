package cmd

import (
	"fmt"

	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/db"
	"github.com/quantmind-br/libmgr/internal/fsops"
	"github.com/quantmind-br/libmgr/internal/helpers"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(cfg *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		library    string
		action     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded install and removal operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch action {
			case "", db.ActionInstall, db.ActionUninstall, db.ActionSkip:
			default:
				return fmt.Errorf("invalid action %q: use %s, %s or %s", action, db.ActionInstall, db.ActionUninstall, db.ActionSkip)
			}

			if !fsops.Exists(deps.Fs, cfg.Paths.DBFile) {
				log.Debug().Str("path", cfg.Paths.DBFile).Msg("journal does not exist yet")
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), []db.Operation{})
				}
				ui.PrintInfo("No operations recorded")
				return nil
			}

			ctx := cmd.Context()
			database, err := db.New(ctx, cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("failed to open database: %v", err)
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = database.Close() }()

			ops, err := database.List(ctx, db.ListOptions{
				Limit:   limit,
				Library: helpers.NormalizeLibraryName(library),
				Action:  action,
			})
			if err != nil {
				ui.PrintError("failed to read history: %v", err)
				return err
			}

			if jsonOutput {
				if ops == nil {
					ops = []db.Operation{}
				}
				return writeJSON(cmd.OutOrStdout(), ops)
			}

			if len(ops) == 0 {
				ui.PrintInfo("No operations recorded")
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "Date", "Action", "Library", "Version", "Status", "Detail")
			for _, op := range ops {
				table.Append(
					op.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					op.Action,
					op.Library,
					orDash(op.Version),
					ui.ColorizeStatus(op.Status),
					orDash(op.Detail),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries (0 for all)")
	cmd.Flags().StringVar(&library, "library", "", "only show entries for this library")
	cmd.Flags().StringVar(&action, "action", "", "only show entries for this action (install, uninstall, skip)")

	return cmd
}
