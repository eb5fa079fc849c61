package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/libmgr/internal/cmd"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/logging"
	"github.com/quantmind-br/libmgr/internal/ui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code
func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := config.LoadFile(os.Getenv("LIBMGR_CONFIG"))
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return core.ExitGeneral
	}

	ui.ConfigureColors(cfg.Logging.Color)

	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: cfg.Logging.NoColor(),
		Console: stderr,
	})

	rootCmd := cmd.NewRootCmd(cfg, log, version)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := core.ExitCodeFor(err)
		if code == core.ExitInterrupted {
			log.Warn().Msg("interrupted")
		} else {
			log.Error().Err(err).Int("exit_code", code).Msg("command failed")
		}
		return code
	}
	return core.ExitSuccess
}
