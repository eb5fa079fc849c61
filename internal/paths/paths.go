package paths

import (
	"os"
	"path/filepath"
)

const appName = "libmgr"

// Resolver computes the default locations of libmgr files.
// XDG_DATA_HOME and XDG_CONFIG_HOME take precedence over HOME.
type Resolver struct {
	homeDir string
	getenv  func(string) string
}

// NewResolver creates a Resolver for the current user
func NewResolver() *Resolver {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}
	return &Resolver{homeDir: homeDir, getenv: os.Getenv}
}

// NewResolverWithHome creates a Resolver with an explicit home directory
// and environment lookup
func NewResolverWithHome(homeDir string, getenv func(string) string) *Resolver {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Resolver{homeDir: homeDir, getenv: getenv}
}

// HomeDir returns the resolved home directory
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// DataDir returns $XDG_DATA_HOME/libmgr, or ~/.local/share/libmgr
func (r *Resolver) DataDir() string {
	return filepath.Join(r.base("XDG_DATA_HOME", ".local", "share"), appName)
}

// ConfigDir returns $XDG_CONFIG_HOME/libmgr, or ~/.config/libmgr
func (r *Resolver) ConfigDir() string {
	return filepath.Join(r.base("XDG_CONFIG_HOME", ".config"), appName)
}

// JournalFile returns the default operation journal path
func (r *Resolver) JournalFile() string {
	return filepath.Join(r.DataDir(), "journal.db")
}

// LogFile returns the default log file path
func (r *Resolver) LogFile() string {
	return filepath.Join(r.DataDir(), appName+".log")
}

// base returns the directory named by env when it is an absolute path,
// otherwise home joined with fallback
func (r *Resolver) base(env string, fallback ...string) string {
	if dir := r.getenv(env); filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(append([]string{r.homeDir}, fallback...)...)
}
