package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/db"
	"github.com/quantmind-br/libmgr/internal/fsops"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the package manager, directories and journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ui.PrintHeader("System Diagnostics")

			var (
				issues   []string
				warnings []string
				notFound bool
			)

			// package manager
			pipCmd := strings.Join(cfg.Pip.Command, " ")
			if len(cfg.Pip.Command) == 0 {
				issues = append(issues, "pip.command is empty")
			} else if err := deps.Runner.RequireCommand(cfg.Pip.Command[0]); err != nil {
				ui.PrintError("%s: NOT FOUND", cfg.Pip.Command[0])
				issues = append(issues, fmt.Sprintf("Package manager not available: %v", err))
				notFound = true
			} else {
				args := append(append([]string{}, cfg.Pip.Command[1:]...), "--version")
				out, err := deps.Runner.RunCommand(ctx, cfg.Pip.Command[0], args...)
				if err != nil {
					ui.PrintError("%s: failed to run", pipCmd)
					issues = append(issues, fmt.Sprintf("Package manager failed: %v", err))
				} else {
					ui.PrintSuccess("%s: %s", pipCmd, strings.TrimSpace(out))
				}
			}

			// directories
			dirs := []struct {
				path string
				name string
			}{
				{cfg.Paths.DataDir, "Data directory"},
				{filepath.Dir(cfg.Paths.DBFile), "Journal directory"},
				{filepath.Dir(cfg.Paths.LogFile), "Log directory"},
			}
			seen := core.NameSet{}
			for _, dir := range dirs {
				if dir.path == "" || dir.path == "." || seen.Has(dir.path) {
					continue
				}
				seen.Add(dir.path)
				if err := checkDirectory(deps, dir.path); err != nil {
					ui.PrintError("%s: NOT ACCESSIBLE (%s)", dir.name, dir.path)
					issues = append(issues, fmt.Sprintf("Directory not accessible: %s: %v", dir.path, err))
					continue
				}
				ui.PrintSuccess("%s: %s", dir.name, dir.path)
			}

			// journal
			if cfg.Paths.DBFile != "" {
				database, err := db.New(ctx, cfg.Paths.DBFile)
				if err == nil {
					err = database.Ping(ctx)
					_ = database.Close()
				}
				if err != nil {
					ui.PrintError("Journal: NOT ACCESSIBLE")
					issues = append(issues, fmt.Sprintf("Cannot open journal: %v", err))
				} else {
					ui.PrintSuccess("Journal: accessible (%s)", cfg.Paths.DBFile)
				}
			}

			// installed libraries
			if !notFound {
				names, err := deps.Provider.ListInstalled(ctx)
				if err != nil {
					ui.PrintWarning("Cannot list installed libraries: %v", err)
					warnings = append(warnings, "Cannot list installed libraries")
				} else {
					ui.PrintInfo("Installed libraries: %d", len(names))
				}
			}

			if venv := os.Getenv("VIRTUAL_ENV"); venv != "" {
				ui.PrintInfo("Virtual environment: %s", venv)
			} else {
				ui.PrintInfo("Virtual environment: none (system interpreter)")
			}

			ui.PrintHeader("Summary")
			if len(issues) == 0 {
				ui.PrintSuccess("All critical checks passed!")
			} else {
				ui.PrintError("Found %d issue(s):", len(issues))
				ui.PrintList(issues)
			}
			if len(warnings) > 0 {
				ui.PrintWarning("Found %d warning(s):", len(warnings))
				ui.PrintList(warnings)
			}

			log.Debug().Int("issues", len(issues)).Int("warnings", len(warnings)).Msg("diagnostics finished")

			if notFound {
				return fmt.Errorf("%w: %s", core.ErrCommandNotFound, cfg.Pip.Command[0])
			}
			if len(issues) > 0 {
				return fmt.Errorf("system check failed with %d issue(s)", len(issues))
			}
			return nil
		},
	}

	return cmd
}

// checkDirectory creates dir when missing and verifies it is writable
func checkDirectory(deps *Deps, dir string) error {
	if err := fsops.EnsureDir(deps.Fs, dir, 0755); err != nil {
		return err
	}
	if !fsops.IsDir(deps.Fs, dir) {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return fsops.CheckWritable(deps.Fs, dir)
}
