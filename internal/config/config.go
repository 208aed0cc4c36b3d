// ABOUTME: Application configuration loaded via koanf layers.
// ABOUTME: Defaults, then optional YAML config file, then environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "PELOSYNC_CONFIG"

// Config holds all settings for the sync tool. Immutable after Load.
type Config struct {
	Peloton  PelotonConfig  `koanf:"peloton"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// PelotonConfig covers upstream API access and credentials.
type PelotonConfig struct {
	BaseURL  string `koanf:"base_url"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// Category is the browse_category query value for the listing endpoint.
	Category string `koanf:"category"`
	// PageDelay and DetailDelay set the fixed inter-call spacing. There is
	// no adaptive backoff; the upstream is simply never called faster.
	PageDelay   time.Duration `koanf:"page_delay"`
	DetailDelay time.Duration `koanf:"detail_delay"`
}

// DatabaseConfig locates the SQLite library database.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// SyncConfig tunes the incremental fetch loop.
type SyncConfig struct {
	PageSize int `koanf:"page_size"`
	// Overlap is subtracted from the newest persisted timestamp when
	// computing the fetch-since watermark. Lookback is the default window
	// for an empty store.
	Overlap   time.Duration `koanf:"overlap"`
	Lookback  time.Duration `koanf:"lookback"`
	BackupDir string        `koanf:"backup_dir"`
	// ProgressPath is the durable processed-ID/watermark checkpoint file.
	ProgressPath string `koanf:"progress_path"`
	// SessionPath is the cached upstream session token file.
	SessionPath string `koanf:"session_path"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "console" or "json"
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "pelosync")
}

// defaultConfig returns the built-in defaults, overridden by file and env.
func defaultConfig() *Config {
	dataDir := DataDir()
	return &Config{
		Peloton: PelotonConfig{
			BaseURL:     "https://api.onepeloton.com",
			Category:    "cycling",
			PageDelay:   2 * time.Second,
			DetailDelay: 1 * time.Second,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir, "pelosync.db"),
		},
		Sync: SyncConfig{
			PageSize:     50,
			Overlap:      24 * time.Hour,
			Lookback:     7 * 24 * time.Hour,
			BackupDir:    filepath.Join(dataDir, "backups"),
			ProgressPath: filepath.Join(dataDir, "progress.json"),
			SessionPath:  filepath.Join(dataDir, "session.json"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in increasing priority.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile searches the env override, then the XDG config dir, then
// the working directory.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}

	candidates := []string{
		filepath.Join(configDir, "pelosync", "config.yaml"),
		"pelosync.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps environment variable names to koanf paths:
//
//	PELOTON_USERNAME      -> peloton.username
//	PELOSYNC_SYNC_PAGE_SIZE -> sync.page_size
//
// Variables outside the PELOTON_/PELOSYNC_ namespaces are ignored.
func envTransform(s string) string {
	switch {
	case strings.HasPrefix(s, "PELOSYNC_"):
		s = strings.TrimPrefix(s, "PELOSYNC_")
	case strings.HasPrefix(s, "PELOTON_"):
		// PELOTON_USERNAME and PELOTON_PASSWORD map into the peloton
		// section as-is.
	default:
		return ""
	}
	s = strings.ToLower(s)
	// First segment is the section, the rest is the key.
	return strings.Replace(s, "_", ".", 1)
}

// Validate checks settings that every command depends on. Credential
// presence is checked separately by ValidateCredentials, since read-only
// commands never contact the upstream.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("sync.page_size must be positive, got %d", c.Sync.PageSize)
	}
	if c.Sync.Overlap < 0 || c.Sync.Lookback < 0 {
		return fmt.Errorf("sync.overlap and sync.lookback must not be negative")
	}
	if c.Peloton.BaseURL == "" {
		return fmt.Errorf("peloton.base_url must not be empty")
	}
	return nil
}

// ValidateCredentials fails before any network activity when the login
// credentials required for a sync run are missing.
func (c *Config) ValidateCredentials() error {
	if c.Peloton.Username == "" || c.Peloton.Password == "" {
		return fmt.Errorf("PELOTON_USERNAME and PELOTON_PASSWORD must be set")
	}
	return nil
}
