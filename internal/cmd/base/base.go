// Package base holds the plumbing shared by every bugtriage subcommand.
package base

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/browser"

	"github.com/nhle/bugtriage/internal/credential"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/notion"
	"github.com/nhle/bugtriage/internal/store"
)

// Command is embedded by every subcommand.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer

	// Keyring access. Tests replace these to avoid the system keyring.
	LoadToken   func(profile string) (credential.Secret, error)
	SaveToken   func(key string, token credential.Secret) error
	DeleteToken func(key string) error

	// OpenURL opens a link in the user's browser.
	OpenURL func(url string) error
}

// New returns a Command logging under name.
func New(name string, ui cli.Ui) *Command {
	return &Command{
		Log:         hclog.New(&hclog.LoggerOptions{Name: name, Output: os.Stderr}),
		UI:          ui,
		LogOutput:   os.Stderr,
		LoadToken:   credential.LoadToken,
		SaveToken:   credential.Set,
		DeleteToken: credential.Delete,
		OpenURL:     browser.OpenURL,
	}
}

// LoadConfig reads the config file and rebuilds the logger from its log
// section.
func (c *Command) LoadConfig(path string) (*model.AppConfig, error) {
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	c.Log = hclog.New(&hclog.LoggerOptions{
		Name:       c.Log.Name(),
		Level:      hclog.LevelFromString(cfg.Log.Level),
		JSONFormat: cfg.Log.JSON,
		Output:     c.LogOutput,
	})
	return cfg, nil
}

// Tracker builds a Notion service from cfg and the profile's token. The
// caller must Close it.
func (c *Command) Tracker(cfg *model.AppConfig) (*notion.Service, error) {
	token, err := c.LoadToken(cfg.Notion.Profile)
	if err != nil {
		return nil, err
	}
	c.Log.Debug("using notion token", "profile", cfg.Notion.Profile, "key", token.Preview())
	return notion.New(notion.ConfigFromApp(cfg, token, c.Log))
}

// Store opens the snapshot database named in cfg.
func (c *Command) Store(cfg *model.AppConfig) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.Store.Path)
}
