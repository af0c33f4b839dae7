package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GitHubConfig holds endpoints and OAuth app settings for the remote API.
type GitHubConfig struct {
	// APIURL is the REST API root (e.g., https://api.github.com).
	APIURL string `mapstructure:"api_url" yaml:"api_url"`

	// WebURL is the host serving the OAuth endpoints (e.g., https://github.com).
	WebURL string `mapstructure:"web_url" yaml:"web_url"`

	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`

	// RedirectURI must match the callback registered for the OAuth app.
	RedirectURI string `mapstructure:"redirect_uri" yaml:"redirect_uri"`

	// AppInstallURL, when set, is opened instead of the plain authorize
	// URL so that installing the app chains into user authorization.
	AppInstallURL string `mapstructure:"app_install_url" yaml:"app_install_url"`

	// Scope requested by the device-code flow.
	Scope string `mapstructure:"scope" yaml:"scope"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the HTTP client timeout.
func (c GitHubConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// StorageConfig locates the local database and the credential keyring.
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path" yaml:"db_path"`
	KeyringDir string `mapstructure:"keyring_dir" yaml:"keyring_dir"`

	// KeyringBackend forces a keyring backend (keychain, secret-service,
	// wincred, pass, file); empty picks the first available.
	KeyringBackend string `mapstructure:"keyring_backend" yaml:"keyring_backend"`

	// KeyringPassword encrypts the file backend. Prefer setting it via
	// GITJOT_STORAGE_KEYRING_PASSWORD.
	KeyringPassword string `mapstructure:"keyring_password" yaml:"keyring_password,omitempty"`
}

// SyncConfig controls the background drain schedule.
type SyncConfig struct {
	IntervalSec   int `mapstructure:"interval_sec" yaml:"interval_sec"`
	MinBackoffSec int `mapstructure:"min_backoff_sec" yaml:"min_backoff_sec"`
	MaxBackoffSec int `mapstructure:"max_backoff_sec" yaml:"max_backoff_sec"`
}

// HistoryConfig bounds the submission history log.
type HistoryConfig struct {
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// OAuthConfig holds settings for the browser authorization flow.
type OAuthConfig struct {
	SessionTTLSec int `mapstructure:"session_ttl_sec" yaml:"session_ttl_sec"`
}

// LogConfig holds logging output settings.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	GitHub  GitHubConfig  `mapstructure:"github" yaml:"github"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	OAuth   OAuthConfig   `mapstructure:"oauth" yaml:"oauth"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/gitjot, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "gitjot")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/gitjot/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		GitHub: GitHubConfig{
			APIURL:      "https://api.github.com",
			WebURL:      "https://github.com",
			RedirectURI: "notetaker://callback",
			Scope:       "repo",
			TimeoutSec:  30,
		},
		Storage: StorageConfig{
			DBPath:     filepath.Join(dir, "gitjot.db"),
			KeyringDir: filepath.Join(dir, "credentials"),
		},
		Sync: SyncConfig{
			IntervalSec:   900,
			MinBackoffSec: 30,
			MaxBackoffSec: 1800,
		},
		History: HistoryConfig{Retention: 100},
		OAuth:   OAuthConfig{SessionTTLSec: 600},
		Log: LogConfig{
			File:  filepath.Join(dir, "gitjot.log"),
			Level: "info",
		},
	}
}

// setDefaults registers every default on v so missing keys and
// environment-only overrides both resolve.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("github.api_url", cfg.GitHub.APIURL)
	v.SetDefault("github.web_url", cfg.GitHub.WebURL)
	v.SetDefault("github.client_id", cfg.GitHub.ClientID)
	v.SetDefault("github.client_secret", cfg.GitHub.ClientSecret)
	v.SetDefault("github.redirect_uri", cfg.GitHub.RedirectURI)
	v.SetDefault("github.app_install_url", cfg.GitHub.AppInstallURL)
	v.SetDefault("github.scope", cfg.GitHub.Scope)
	v.SetDefault("github.timeout_sec", cfg.GitHub.TimeoutSec)
	v.SetDefault("storage.db_path", cfg.Storage.DBPath)
	v.SetDefault("storage.keyring_dir", cfg.Storage.KeyringDir)
	v.SetDefault("storage.keyring_backend", cfg.Storage.KeyringBackend)
	v.SetDefault("storage.keyring_password", cfg.Storage.KeyringPassword)
	v.SetDefault("sync.interval_sec", cfg.Sync.IntervalSec)
	v.SetDefault("sync.min_backoff_sec", cfg.Sync.MinBackoffSec)
	v.SetDefault("sync.max_backoff_sec", cfg.Sync.MaxBackoffSec)
	v.SetDefault("history.retention", cfg.History.Retention)
	v.SetDefault("oauth.session_ttl_sec", cfg.OAuth.SessionTTLSec)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values can be overridden with GITJOT_* environment variables
// (e.g., GITJOT_GITHUB_CLIENT_ID). If the file does not exist, defaults
// plus environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("gitjot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, defaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.GitHub.TimeoutSec <= 0 {
		cfg.GitHub.TimeoutSec = 30
	}
	if cfg.History.Retention <= 0 {
		cfg.History.Retention = 100
	}
	if cfg.Sync.IntervalSec <= 0 {
		cfg.Sync.IntervalSec = 900
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("github", cfg.GitHub)
	v.Set("storage", cfg.Storage)
	v.Set("sync", cfg.Sync)
	v.Set("history", cfg.History)
	v.Set("oauth", cfg.OAuth)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
