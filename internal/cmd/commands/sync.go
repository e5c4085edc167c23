package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nhle/bugtriage/internal/cmd/base"
	appsync "github.com/nhle/bugtriage/internal/sync"
)

// SyncCommand mirrors databases into the local snapshot store.
type SyncCommand struct {
	*base.Command

	common       base.Common
	flagOnce     bool
	flagInterval time.Duration
}

func (c *SyncCommand) Synopsis() string {
	return "Sync bugs into the local snapshot"
}

func (c *SyncCommand) Help() string {
	return `Usage: bugtriage sync [options]

  Fetches every configured database into the local snapshot and records
  status changes as notifications. Without --once, keeps polling until
  interrupted.` + c.Flags().Help()
}

func (c *SyncCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("sync")
	c.common.Register(f)
	f.BoolVar(&c.flagOnce, "once", false, "Sync once and exit")
	f.DurationVar(&c.flagInterval, "interval", 0, "Poll interval (default sync.poll_interval_sec)")
	return f
}

func (c *SyncCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.common.ConfigPath)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if c.common.Database != "" {
		cfg.Notion.DatabaseID = c.common.Database
	}
	databases := cfg.SyncDatabases()
	if len(databases) == 0 {
		c.UI.Error("no database configured: set notion.database_id or pass --database")
		return exitConfig
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

	interval := c.flagInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Sync.PollIntervalSec) * time.Second
	}
	poller := appsync.New(tracker, s, databases, appsync.Options{
		Interval: interval,
		Limit:    cfg.Sync.Limit,
		Logger:   c.Log,
	})

	if c.flagOnce {
		if err := poller.SyncOnce(context.Background()); err != nil {
			c.UI.Error(fmt.Sprintf("sync failed: %v", err))
			return exitCode(err)
		}
		for _, st := range poller.GetStatuses() {
			c.UI.Output(fmt.Sprintf("%s: %d bugs", st.DatabaseID, st.Fetched))
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller.Start()
	c.UI.Info(fmt.Sprintf("Polling %d database(s) every %s; press Ctrl-C to stop", len(databases), interval))

	go func() {
		<-ctx.Done()
		poller.Stop()
	}()

	// WaitForNextResult yields nil once the poller stops.
	for {
		msg, ok := poller.WaitForNextResult()().(appsync.SyncResultMsg)
		if !ok {
			return 0
		}
		for _, ch := range msg.Changes {
			c.UI.Output(appsync.ChangeMessage(ch))
		}
	}
}
