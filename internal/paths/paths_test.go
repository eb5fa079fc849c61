package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestNewResolver(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")

	resolver := NewResolver()
	if resolver == nil {
		t.Fatal("NewResolver should not return nil")
	}

	want, _ := os.UserHomeDir()
	if resolver.HomeDir() != want {
		t.Errorf("HomeDir() = %q, want %q", resolver.HomeDir(), want)
	}
	if got := resolver.DataDir(); got != filepath.Join(want, ".local", "share", "libmgr") {
		t.Errorf("DataDir() = %q", got)
	}
}

func TestDefaults(t *testing.T) {
	resolver := NewResolverWithHome("/home/user", nil)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"data dir", resolver.DataDir(), "/home/user/.local/share/libmgr"},
		{"config dir", resolver.ConfigDir(), "/home/user/.config/libmgr"},
		{"journal", resolver.JournalFile(), "/home/user/.local/share/libmgr/journal.db"},
		{"log", resolver.LogFile(), "/home/user/.local/share/libmgr/libmgr.log"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestXDGOverrides(t *testing.T) {
	resolver := NewResolverWithHome("/home/user", env(map[string]string{
		"XDG_DATA_HOME":   "/srv/data",
		"XDG_CONFIG_HOME": "/srv/config",
	}))

	if got := resolver.DataDir(); got != "/srv/data/libmgr" {
		t.Errorf("DataDir() = %q, want /srv/data/libmgr", got)
	}
	if got := resolver.ConfigDir(); got != "/srv/config/libmgr" {
		t.Errorf("ConfigDir() = %q, want /srv/config/libmgr", got)
	}
	if got := resolver.JournalFile(); got != "/srv/data/libmgr/journal.db" {
		t.Errorf("JournalFile() = %q", got)
	}
}

func TestRelativeXDGIsIgnored(t *testing.T) {
	resolver := NewResolverWithHome("/home/user", env(map[string]string{
		"XDG_DATA_HOME": "relative/data",
	}))

	if got := resolver.DataDir(); got != "/home/user/.local/share/libmgr" {
		t.Errorf("DataDir() = %q, want the HOME fallback", got)
	}
}
