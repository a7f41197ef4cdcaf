package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete taskfetch configuration
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
}

// APIConfig controls which server is queried
type APIConfig struct {
	// RootURL is the base URL; the next path is fetched from {root_url}/nextpath
	// (default: "http://localhost:8000")
	RootURL string `mapstructure:"root_url" yaml:"root_url"`
}

// NetworkConfig controls the HTTP transport
type NetworkConfig struct {
	// TimeoutSeconds bounds each request attempt (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	// RequestsPerSecond limits outgoing attempts, 0 = unlimited (default: 0)
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// StorageConfig controls where the fetch counter and response code are kept
type StorageConfig struct {
	// Path is the state file. If empty, defaults to {data dir}/state.json.
	// Supports ~ for home directory expansion.
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is the color theme: "default" or "mono" (default: "default")
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// Timeout returns the per-attempt timeout as a time.Duration
func (n *NetworkConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// ResolvePath returns the state file path.
// If Path is empty, it returns state.json inside DataDir.
// If Path starts with ~, it expands to the user's home directory.
func (s *StorageConfig) ResolvePath() string {
	if s.Path == "" {
		return filepath.Join(DataDir(), "state.json")
	}
	return expandHome(s.Path)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			RootURL: "http://localhost:8000",
		},
		Network: NetworkConfig{
			TimeoutSeconds:    10,
			RequestsPerSecond: 0, // unlimited
		},
		Storage: StorageConfig{
			Path: "", // Empty means use default: {data dir}/state.json
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		TUI: TUIConfig{
			Theme: "default",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api.root_url", defaults.API.RootURL)

	viper.SetDefault("network.timeout_seconds", defaults.Network.TimeoutSeconds)
	viper.SetDefault("network.requests_per_second", defaults.Network.RequestsPerSecond)

	viper.SetDefault("storage.path", defaults.Storage.Path)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if it
// cannot be loaded
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskfetch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskfetch"
	}
	return filepath.Join(home, ".config", "taskfetch")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory holding the state file and debug log
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskfetch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskfetch"
	}
	return filepath.Join(home, ".local", "share", "taskfetch")
}

// DefaultFileContent is written by "taskfetch config init".
const DefaultFileContent = `# taskfetch configuration
# Values shown are the defaults. Environment variables override them,
# e.g. TASKFETCH_API_ROOT_URL=http://example.test

api:
  # Base URL; the next path is read from {root_url}/nextpath
  root_url: http://localhost:8000

network:
  # Per-attempt timeout. A failed call is retried once.
  timeout_seconds: 10
  # Client-side rate limit, 0 = unlimited
  requests_per_second: 0

storage:
  # State file; empty means {data dir}/state.json
  path: ""

logging:
  enabled: true
  # debug, info, warn or error
  level: info
  max_size_mb: 10
  max_backups: 3

tui:
  # default or mono
  theme: default
`
