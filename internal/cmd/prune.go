package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/db"
	"github.com/quantmind-br/libmgr/internal/helpers"
	"github.com/quantmind-br/libmgr/internal/prune"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewPruneCmd creates the prune command
func NewPruneCmd(cfg *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var (
		yes         bool
		dryRun      bool
		allow       []string
		singlePass  bool
		timeoutSecs int
	)

	cmd := &cobra.Command{
		Use:     "prune <library>...",
		Aliases: []string{"deinit"},
		Short:   "Remove libraries and their unused dependencies",
		Long: `Remove the given libraries together with every dependency that no other
installed library needs. Dependencies still required by a library outside the
removal set are kept, as is everything they depend on.

Protected libraries (pip by default) are never removed unless named with --allow.`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: completeInstalled(deps.Provider, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseTargets(args)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			ctx, cancel := withTimeout(cmd.Context(), timeoutSecs)
			defer cancel()

			opts := core.PruneOptions{
				Protected:  core.NewNameSet(core.DefaultProtected),
				Allowed:    core.NewNameSet(helpers.NormalizeLibraryNames(allow)...),
				SinglePass: singlePass || cfg.Prune.SinglePass,
			}
			if len(cfg.Prune.Protected) > 0 {
				opts.Protected = core.NewNameSet(helpers.NormalizeLibraryNames(cfg.Prune.Protected)...)
			}

			metadata := cache.New(deps.Provider, log)
			engine := prune.New(metadata, deps.Provider, opts, log)

			log.Info().Strs("targets", targets.Sorted()).Bool("dry_run", dryRun).Msg("computing prune plan")

			plan, err := engine.Plan(ctx, targets)
			if err != nil {
				ui.PrintError("failed to compute removal set: %v", err)
				return fmt.Errorf("plan: %w", err)
			}

			if err := printPlan(ctx, cmd, metadata, plan); err != nil {
				return err
			}

			for _, name := range plan.Unknown.Sorted() {
				ui.PrintWarning("%s is not installed, nothing to remove", name)
			}
			for _, name := range plan.Skipped.Sorted() {
				ui.PrintProtectedNotice(name)
			}

			if dryRun {
				ui.PrintInfo("Dry run: %d libraries would be removed", plan.Delete.Len())
				return nil
			}

			if plan.Delete.Len() == 0 {
				// skips are still journaled
				executePlan(ctx, cfg, log, deps, engine, plan, metadata)
				ui.PrintInfo("Nothing to remove")
				return nil
			}

			if !yes {
				confirmed, err := confirmRemoval(cfg, plan, opts.Protected)
				if err != nil {
					ui.PrintWarning("Confirmation cancelled. No libraries were removed.")
					return err
				}
				if !confirmed {
					ui.PrintWarning("Removal cancelled by user.")
					return nil
				}
			}

			report := executePlan(ctx, cfg, log, deps, engine, plan, metadata)
			return summarizeReport(report)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the removal plan without removing anything")
	cmd.Flags().StringArrayVar(&allow, "allow", nil, "allow removing a protected library (repeatable)")
	cmd.Flags().BoolVar(&singlePass, "single-pass", false, "protect only direct requirements of kept libraries")
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 600, "removal timeout in seconds")

	return cmd
}

// confirmRemoval asks before removing anything. Removing a protected
// library that was allowed on the command line always asks, even when
// confirmation is disabled in the configuration.
func confirmRemoval(cfg *config.Config, plan *prune.Plan, protected core.NameSet) (bool, error) {
	var overridden []string
	for _, name := range plan.Delete.Sorted() {
		if protected.Has(name) {
			overridden = append(overridden, name)
		}
	}
	if len(overridden) > 0 {
		return ui.ConfirmDangerousAction("remove protected libraries", strings.Join(overridden, ", "))
	}
	if !cfg.Prune.Confirm {
		return true, nil
	}
	return ui.ConfirmPrompt(fmt.Sprintf("Remove %d libraries", plan.Delete.Len()))
}

// printPlan renders the deletion set and the libraries kept back
func printPlan(ctx context.Context, cmd *cobra.Command, metadata *cache.MetadataCache, plan *prune.Plan) error {
	ui.PrintHeader("Removal plan")

	table := newTable(cmd.OutOrStdout(), "Library", "Version", "Action", "Reason")

	for _, name := range plan.Closure.Sorted() {
		lookup, err := metadata.DetailsOf(ctx, name)
		if err != nil {
			return err
		}

		action, reason := "delete", "no remaining dependents"
		switch {
		case plan.Unknown.Has(name):
			action, reason = "unknown", "not installed"
		case plan.Skipped.Has(name):
			action, reason = "protected", "use --allow "+name
		case plan.Kept.Has(name):
			action = "kept"
			if outside := lookup.Record.RequiredBy.Minus(plan.Closure); outside.Len() > 0 {
				reason = "required by " + strings.Join(outside.Sorted(), ", ")
			} else {
				reason = "required by a kept library"
			}
		}
		if plan.Targets.Has(name) && action == "delete" {
			reason = "target"
		}

		table.Append(name, orDash(lookup.Record.Version), ui.ColorizeStatus(action), reason)
	}

	table.Render()
	return nil
}

// executePlan removes the deletion set, drawing progress and journaling
// every outcome
func executePlan(ctx context.Context, cfg *config.Config, log *zerolog.Logger, deps *Deps,
	engine *prune.Engine, plan *prune.Plan, metadata *cache.MetadataCache) *prune.Report {
	// journaling continues after an interrupt
	jctx := context.WithoutCancel(ctx)
	journal := openJournal(jctx, cfg, deps.Fs, log)
	if journal != nil {
		defer journal.Close()
	}

	versions := make(map[string]string, plan.Closure.Len())
	for name := range plan.Closure {
		if rec, err := metadata.Record(ctx, name); err == nil {
			versions[name] = rec.Version
		}
	}
	meta := map[string]interface{}{"targets": plan.Targets.Sorted()}

	var bar *ui.ProgressBar
	if plan.Delete.Len() > 0 {
		bar = ui.NewProgressBar(plan.Delete.Len(), "Removing")
	}
	report := engine.Execute(ctx, plan, func(o prune.Outcome) {
		op := &db.Operation{
			Action:   db.ActionUninstall,
			Library:  o.Library,
			Version:  versions[o.Library],
			Metadata: meta,
		}
		switch o.Status {
		case prune.StatusRemoved:
			op.Status = db.StatusOK
		case prune.StatusFailed:
			op.Status = db.StatusFailed
			op.Detail = o.Err.Error()
		case prune.StatusSkipped:
			op.Action, op.Status, op.Detail = db.ActionSkip, db.StatusSkipped, "protected"
		case prune.StatusUnknown:
			op.Action, op.Status, op.Detail = db.ActionSkip, db.StatusUnknown, "not installed"
		}
		recordOperation(jctx, journal, log, op)

		if bar != nil && (o.Status == prune.StatusRemoved || o.Status == prune.StatusFailed) {
			bar.Done(o.Library, o.Err)
		}
	})
	if bar != nil {
		bar.Finish()
	}
	return report
}

func summarizeReport(report *prune.Report) error {
	removed, failed := report.Removed(), report.Failed()

	if len(failed) == 0 {
		ui.PrintSuccess("Removed %d libraries", len(removed))
		return nil
	}

	ui.PrintWarning("Removal completed with errors:")
	ui.PrintSuccess("Removed: %d", len(removed))
	ui.PrintError("Failed: %s", strings.Join(failed, ", "))

	return fmt.Errorf("prune: %w", report.Err())
}
