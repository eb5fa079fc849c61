package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Color)
	assert.Equal(t, filepath.Join(home, ".local", "share", "libmgr"), cfg.Paths.DataDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "libmgr", "journal.db"), cfg.Paths.DBFile)
	assert.Equal(t, []string{"pip"}, cfg.Pip.Command)
	assert.Equal(t, []string{"pip"}, cfg.Prune.Protected)
	assert.False(t, cfg.Prune.SinglePass)
	assert.True(t, cfg.Prune.Confirm)
	assert.Equal(t, "requirements.txt", cfg.Requirements.Output)
}

func TestLoad_XDGDirectories(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	data := t.TempDir()
	configHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("XDG_CONFIG_HOME", configHome)
	chdir(t, t.TempDir())

	dir := filepath.Join(configHome, "libmgr")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[logging]\nlevel = \"warn\"\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(data, "libmgr", "journal.db"), cfg.Paths.DBFile)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[logging]
level = "debug"
color = "never"

[pip]
command = ["python3", "-m", "pip"]

[prune]
protected = ["pip", "setuptools"]
single_pass = true
confirm = false

[requirements]
output = "~/reqs.txt"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.NoColor())
	assert.Equal(t, []string{"python3", "-m", "pip"}, cfg.Pip.Command)
	assert.Equal(t, []string{"pip", "setuptools"}, cfg.Prune.Protected)
	assert.True(t, cfg.Prune.SinglePass)
	assert.False(t, cfg.Prune.Confirm)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "reqs.txt"), cfg.Requirements.Output)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIBMGR_LOGGING_LEVEL", "error")
	t.Setenv("LIBMGR_PRUNE_SINGLE_PASS", "true")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.Prune.SinglePass)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[logging\nlevel="), 0644))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty-cmd.toml")
	require.NoError(t, os.WriteFile(empty, []byte("[pip]\ncommand = []\n"), 0644))
	_, err = LoadFile(empty)
	assert.ErrorContains(t, err, "pip.command")
}

func TestNoColor(t *testing.T) {
	assert.True(t, LoggingConfig{Color: "never"}.NoColor())
	assert.True(t, LoggingConfig{Color: "NEVER"}.NoColor())
	assert.False(t, LoggingConfig{Color: "auto"}.NoColor())
	assert.False(t, LoggingConfig{Color: "always"}.NoColor())
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()
	t.Setenv("LIBMGR_TEST_DIR", "/srv/libmgr")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty path", input: "", want: ""},
		{name: "absolute path", input: "/usr/local/share", want: "/usr/local/share"},
		{name: "home expansion", input: "~/test", want: filepath.Join(homeDir, "test")},
		{name: "env expansion", input: "$LIBMGR_TEST_DIR/journal.db", want: "/srv/libmgr/journal.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandPath(tt.input))
		})
	}
}

// chdir changes the working directory to dir and restores it when the test
// ends, mirroring testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
