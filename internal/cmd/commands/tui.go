package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/bugtriage/internal/app"
	"github.com/nhle/bugtriage/internal/cmd/base"
	appsync "github.com/nhle/bugtriage/internal/sync"
)

// TUICommand runs the interactive triage UI.
type TUICommand struct {
	*base.Command

	common      base.Common
	flagLogFile string
}

func (c *TUICommand) Synopsis() string {
	return "Open the interactive triage UI"
}

func (c *TUICommand) Help() string {
	return `Usage: bugtriage tui [options]

  Browses the local snapshot while syncing in the background. Bugs can be
  moved to a new status or commented on from the list or the detail view.` + c.Flags().Help()
}

func (c *TUICommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("tui")
	c.common.Register(f)
	f.StringVar(&c.flagLogFile, "log-file", "", "Write logs to this file (default: discard)")
	return f
}

func (c *TUICommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	// Log lines on stderr would tear the alt screen.
	c.LogOutput = io.Discard
	if c.flagLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.flagLogFile), 0o755); err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		f, err := os.OpenFile(c.flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error opening log file: %v", err))
			return 1
		}
		defer f.Close()
		c.LogOutput = f
	}

	cfg, err := c.LoadConfig(c.common.ConfigPath)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if c.common.Database != "" {
		cfg.Notion.DatabaseID = c.common.Database
	}

	tracker, err := c.Tracker(cfg)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer tracker.Close()

	s, err := c.Store(cfg)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening store: %v", err))
		return 1
	}
	defer s.Close()

	poller := appsync.New(tracker, s, cfg.SyncDatabases(), appsync.Options{
		Interval: time.Duration(cfg.Sync.PollIntervalSec) * time.Second,
		Limit:    cfg.Sync.Limit,
		Logger:   c.Log.Named("ui"),
	})
	defer poller.Stop()

	p := tea.NewProgram(app.New(tracker, s, poller), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		c.UI.Error(fmt.Sprintf("error running UI: %v", err))
		return 1
	}
	return 0
}
