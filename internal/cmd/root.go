package cmd

import (
	"os"

	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/helpers"
	"github.com/quantmind-br/libmgr/internal/syspkg"
	"github.com/quantmind-br/libmgr/internal/syspkg/pip"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Deps are the collaborators shared by every command
type Deps struct {
	Provider syspkg.Provider
	Runner   helpers.CommandRunner
	Fs       afero.Fs
}

// DefaultDeps wires the pip provider and the real filesystem.
// pip runs non-interactively and without its self-update notice.
func DefaultDeps(cfg *config.Config) *Deps {
	runner := helpers.NewOSCommandRunner().WithEnv("PIP_NO_INPUT=1", "PIP_DISABLE_PIP_VERSION_CHECK=1")
	return &Deps{
		Provider: pip.NewPipProviderWithRunner(runner, cfg.Pip.Command),
		Runner:   runner,
		Fs:       afero.NewOsFs(),
	}
}

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	return NewRootCmdWithDeps(cfg, log, version, DefaultDeps(cfg))
}

// NewRootCmdWithDeps creates the root command around the given collaborators
func NewRootCmdWithDeps(cfg *config.Config, log *zerolog.Logger, version string, deps *Deps) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "libmgr",
		Short: "Python library manager",
		Long: `Install the libraries a project needs and remove them again, together with
every dependency nothing else on the system still uses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if p, ok := deps.Provider.(*pip.PipProvider); ok && verbose {
				p.WithOutput(os.Stdout, os.Stderr)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "stream package manager output")

	cmd.AddCommand(NewInstallCmd(cfg, log, deps))
	cmd.AddCommand(NewPruneCmd(cfg, log, deps))
	cmd.AddCommand(NewDepsCmd(cfg, log, deps))
	cmd.AddCommand(NewInfoCmd(cfg, log, deps))
	cmd.AddCommand(NewListCmd(cfg, log, deps))
	cmd.AddCommand(NewRequirementsCmd(cfg, log, deps))
	cmd.AddCommand(NewHistoryCmd(cfg, log, deps))
	cmd.AddCommand(NewDoctorCmd(cfg, log, deps))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
