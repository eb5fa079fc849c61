package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/syspkg"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewCompletionCmd creates the completion command
func NewCompletionCmd(_ *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for libmgr.

Bash:
  $ source <(libmgr completion bash)
  $ libmgr completion bash > ~/.local/share/bash-completion/completions/libmgr

Zsh:
  $ libmgr completion zsh > "${fpath[1]}/_libmgr"

Fish:
  $ libmgr completion fish > ~/.config/fish/completions/libmgr.fish

PowerShell:
  PS> libmgr completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			out := cmd.OutOrStdout()

			var err error
			switch shell {
			case "bash":
				err = cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				err = cmd.Root().GenZshCompletion(out)
			case "fish":
				err = cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				err = cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			if err != nil {
				ui.PrintError("failed to generate %s completion: %v", shell, err)
				return err
			}

			log.Debug().Str("shell", shell).Msg("generated shell completion")
			return nil
		},
	}

	return cmd
}

// completeInstalled offers installed library names that match the typed
// prefix and are not already on the command line
func completeInstalled(provider syspkg.Provider, maxArgs int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if maxArgs > 0 && len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		names, err := provider.ListInstalled(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		given := make(map[string]bool, len(args))
		for _, arg := range args {
			given[strings.ToLower(arg)] = true
		}
		prefix := strings.ToLower(toComplete)

		var out []cobra.Completion
		for _, name := range names {
			if !given[name] && strings.HasPrefix(name, prefix) {
				out = append(out, name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
