package cmd

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/quantmind-br/libmgr/internal/config"
	"github.com/quantmind-br/libmgr/internal/db"
	"github.com/quantmind-br/libmgr/internal/helpers"
	"github.com/quantmind-br/libmgr/internal/syspkg"
	"github.com/quantmind-br/libmgr/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	cfg      *config.Config
	log      *zerolog.Logger
	deps     *Deps
	provider *syspkg.MockProvider
	runner   *helpers.MockCommandRunner
}

// newTestEnv builds a config rooted in a temp dir around a mock provider.
// requests needs certifi and urllib3; rich needs pygments; pip stands alone.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ui.DisableColors()

	dir := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			DataDir: dir,
			DBFile:  filepath.Join(dir, "journal.db"),
			LogFile: filepath.Join(dir, "libmgr.log"),
		},
		Logging:      config.LoggingConfig{Level: "info", Color: "never"},
		Pip:          config.PipConfig{Command: []string{"pip"}},
		Prune:        config.PruneConfig{Protected: []string{"pip"}, Confirm: true},
		Requirements: config.RequirementsConfig{Output: filepath.Join(dir, "requirements.txt")},
	}

	provider := syspkg.NewMockProvider().
		AddLibrary("requests", "2.31.0", "certifi", "urllib3").
		AddLibrary("certifi", "2024.2.2").
		AddLibrary("urllib3", "2.2.1").
		AddLibrary("rich", "13.7.1", "pygments").
		AddLibrary("pygments", "2.17.2").
		AddLibrary("pip", "24.0.0")

	runner := &helpers.MockCommandRunner{}
	log := zerolog.New(io.Discard)

	return &testEnv{
		cfg:      cfg,
		log:      &log,
		deps:     &Deps{Provider: provider, Runner: runner, Fs: afero.NewOsFs()},
		provider: provider,
		runner:   runner,
	}
}

// run executes the root command with args and returns what was written to
// the command's output
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmdWithDeps(e.cfg, e.log, "test", e.deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) journal(t *testing.T, opts db.ListOptions) []db.Operation {
	t.Helper()

	database, err := db.New(context.Background(), e.cfg.Paths.DBFile)
	require.NoError(t, err)
	defer database.Close()

	ops, err := database.List(context.Background(), opts)
	require.NoError(t, err)
	return ops
}
