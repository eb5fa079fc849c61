package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/libmgr/internal/paths"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths        PathsConfig        `mapstructure:"paths"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Pip          PipConfig          `mapstructure:"pip"`
	Prune        PruneConfig        `mapstructure:"prune"`
	Requirements RequirementsConfig `mapstructure:"requirements"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir string `mapstructure:"data_dir"`
	DBFile  string `mapstructure:"db_file"`
	LogFile string `mapstructure:"log_file"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"` // auto, always, never
}

// PipConfig selects the package manager invocation
type PipConfig struct {
	Command []string `mapstructure:"command"`
}

// PruneConfig contains the removal policy
type PruneConfig struct {
	Protected  []string `mapstructure:"protected"`
	SinglePass bool     `mapstructure:"single_pass"`
	Confirm    bool     `mapstructure:"confirm"`
}

// RequirementsConfig contains requirements file defaults
type RequirementsConfig struct {
	Output string `mapstructure:"output"`
}

// Load loads configuration from the default locations and environment
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or from the default locations
// when path is empty. Environment variables prefixed with LIBMGR_ override
// file values.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	resolver := paths.NewResolver()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(resolver.ConfigDir())
		v.AddConfigPath(".")
	}

	setDefaults(v, resolver)

	v.SetEnvPrefix("LIBMGR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Requirements.Output = expandPath(cfg.Requirements.Output)

	if len(cfg.Pip.Command) == 0 {
		return nil, fmt.Errorf("invalid config: pip.command cannot be empty")
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper, resolver *paths.Resolver) {
	v.SetDefault("paths.data_dir", resolver.DataDir())
	v.SetDefault("paths.db_file", resolver.JournalFile())
	v.SetDefault("paths.log_file", resolver.LogFile())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.color", "auto")

	v.SetDefault("pip.command", []string{"pip"})

	v.SetDefault("prune.protected", []string{"pip"})
	v.SetDefault("prune.single_pass", false)
	v.SetDefault("prune.confirm", true)

	v.SetDefault("requirements.output", "requirements.txt")
}

// NoColor reports whether colored output is disabled by configuration
func (l LoggingConfig) NoColor() bool {
	return strings.EqualFold(l.Color, "never")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
