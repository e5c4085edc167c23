package model

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Defaults applied when the config file omits a key.
const (
	DefaultBaseURL        = "https://api.notion.com/v1"
	DefaultAPIVersion     = "2022-06-28"
	DefaultStatusProperty = "Status"
	DefaultTimeout        = 30 * time.Second
	DefaultServerBind     = "127.0.0.1:8087"
	DefaultPollInterval   = 120
	DefaultSyncLimit      = 100
)

// NotionConfig holds the connection settings for the Notion workspace.
type NotionConfig struct {
	// Profile selects the keyring entry holding the integration token.
	Profile string `mapstructure:"profile" yaml:"profile"`

	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	APIVersion string `mapstructure:"version" yaml:"version"`

	// DatabaseID is the default bug database.
	DatabaseID string `mapstructure:"database_id" yaml:"database_id"`

	// Databases lists additional databases kept in the local snapshot.
	Databases []string `mapstructure:"databases" yaml:"databases"`

	// StatusProperty is the property written by status updates.
	StatusProperty string `mapstructure:"status_property" yaml:"status_property"`

	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StoreConfig holds settings for the local issue snapshot.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Bind string `mapstructure:"bind" yaml:"bind"`
}

// SyncConfig holds settings for background snapshot polling.
type SyncConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	Limit           int `mapstructure:"limit" yaml:"limit"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Notion NotionConfig `mapstructure:"notion" yaml:"notion"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Sync   SyncConfig   `mapstructure:"sync" yaml:"sync"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// SyncDatabases returns the default database followed by any extra
// databases, without duplicates or blanks.
func (c *AppConfig) SyncDatabases() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range append([]string{c.Notion.DatabaseID}, c.Notion.Databases...) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Validate checks the configuration for values that would make every
// request fail.
func (c *AppConfig) Validate() error {
	return validation.Errors{
		"notion": validation.ValidateStruct(&c.Notion,
			validation.Field(&c.Notion.BaseURL, validation.Required, validation.By(httpURL)),
			validation.Field(&c.Notion.APIVersion, validation.Required),
			validation.Field(&c.Notion.StatusProperty, validation.Required),
			validation.Field(&c.Notion.Timeout, validation.Min(time.Second)),
		),
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Bind, validation.Required),
		),
		"sync": validation.ValidateStruct(&c.Sync,
			validation.Field(&c.Sync.PollIntervalSec, validation.Min(1)),
			validation.Field(&c.Sync.Limit, validation.Min(1)),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("trace", "debug", "info", "warn", "error")),
		),
	}.Filter()
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https")
	}
	return nil
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/bugtriage/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultStorePath returns the default location of the snapshot database.
func DefaultStorePath() string {
	return filepath.Join(configDir(), "bugtriage.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "bugtriage")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Notion: NotionConfig{
			Profile:        "default",
			BaseURL:        DefaultBaseURL,
			APIVersion:     DefaultAPIVersion,
			StatusProperty: DefaultStatusProperty,
			Timeout:        DefaultTimeout,
		},
		Store:  StoreConfig{Path: DefaultStorePath()},
		Server: ServerConfig{Bind: DefaultServerBind},
		Sync: SyncConfig{
			PollIntervalSec: DefaultPollInterval,
			Limit:           DefaultSyncLimit,
		},
		Log: LogConfig{Level: "info"},
	}
}

// newViper returns a viper instance with defaults and BUGTRIAGE_ environment
// overrides registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("bugtriage")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultAppConfig()
	v.SetDefault("notion.profile", def.Notion.Profile)
	v.SetDefault("notion.base_url", def.Notion.BaseURL)
	v.SetDefault("notion.version", def.Notion.APIVersion)
	v.SetDefault("notion.database_id", "")
	v.SetDefault("notion.databases", []string{})
	v.SetDefault("notion.status_property", def.Notion.StatusProperty)
	v.SetDefault("notion.timeout", def.Notion.Timeout)
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("server.bind", def.Server.Bind)
	v.SetDefault("sync.poll_interval_sec", def.Sync.PollIntervalSec)
	v.SetDefault("sync.limit", def.Sync.Limit)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.json", def.Log.JSON)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults, still subject to environment
// overrides.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
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

	v.Set("notion", map[string]interface{}{
		"profile":         cfg.Notion.Profile,
		"base_url":        cfg.Notion.BaseURL,
		"version":         cfg.Notion.APIVersion,
		"database_id":     cfg.Notion.DatabaseID,
		"databases":       cfg.Notion.Databases,
		"status_property": cfg.Notion.StatusProperty,
		"timeout":         cfg.Notion.Timeout.String(),
	})
	v.Set("store", map[string]interface{}{"path": cfg.Store.Path})
	v.Set("server", map[string]interface{}{"bind": cfg.Server.Bind})
	v.Set("sync", map[string]interface{}{
		"poll_interval_sec": cfg.Sync.PollIntervalSec,
		"limit":             cfg.Sync.Limit,
	})
	v.Set("log", map[string]interface{}{
		"level": cfg.Log.Level,
		"json":  cfg.Log.JSON,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
