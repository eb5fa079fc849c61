package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/db"
	"github.com/quantmind-br/libmgr/internal/fsops"
	"github.com/quantmind-br/libmgr/internal/helpers"
	"github.com/quantmind-br/libmgr/internal/security"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// parseTargets validates and normalizes library names given on the command line
func parseTargets(args []string) (core.NameSet, error) {
	if err := security.ValidateLibraryNames(args); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	return core.NewNameSet(helpers.NormalizeLibraryNames(args)...), nil
}

// withTimeout derives a command context, or returns parent unchanged when
// seconds is not positive
func withTimeout(parent context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(seconds)*time.Second)
}

// openJournal opens the operation journal. Journal problems never block
// the operation itself, so failures are logged and nil is returned.
func openJournal(ctx context.Context, cfg *config.Config, fs afero.Fs, log *zerolog.Logger) *db.DB {
	if cfg.Paths.DBFile == "" {
		return nil
	}
	if err := fsops.EnsureDir(fs, filepath.Dir(cfg.Paths.DBFile), 0755); err != nil {
		log.Warn().Err(err).Msg("journal directory unavailable")
		return nil
	}
	journal, err := db.New(ctx, cfg.Paths.DBFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Paths.DBFile).Msg("journal unavailable")
		return nil
	}
	return journal
}

// recordOperation appends op to journal when one is open
func recordOperation(ctx context.Context, journal *db.DB, log *zerolog.Logger, op *db.Operation) {
	if journal == nil {
		return
	}
	if err := journal.Record(ctx, op); err != nil {
		log.Warn().Err(err).Str("library", op.Library).Msg("failed to record operation")
	}
}

// newTable creates a borderless left-aligned table
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithHeader(header),
		tablewriter.WithAlignment(tw.MakeAlign(len(header), tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
