package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/server"
)

// ServeCommand runs the JSON HTTP API.
type ServeCommand struct {
	*base.Command

	common   base.Common
	flagBind string
}

func (c *ServeCommand) Synopsis() string {
	return "Run the HTTP API"
}

func (c *ServeCommand) Help() string {
	return `Usage: bugtriage serve [options]

  Serves the tracker over HTTP. Requests may carry X-Notion-Token and
  X-Notion-Database-Id headers to override the configured credentials.` + c.Flags().Help()
}

func (c *ServeCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("serve")
	c.common.Register(f)
	f.StringVarP(&c.flagBind, "bind", "b", "", "Listen address (default server.bind)")
	return f
}

func (c *ServeCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.common.ConfigPath)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	bind := cfg.Server.Bind
	if c.flagBind != "" {
		bind = c.flagBind
	}
	defaults := server.Credentials{DatabaseID: cfg.Notion.DatabaseID}
	if c.common.Database != "" {
		defaults.DatabaseID = c.common.Database
	}

	// Without a stored token the API still serves requests that carry one.
	if token, err := c.LoadToken(cfg.Notion.Profile); err != nil {
		c.Log.Warn("no notion token configured; requests must send "+server.TokenHeader, "error", err)
	} else {
		defaults.Token = token
		c.Log.Info("using configured notion token", "key", token.Preview())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(bind, defaults, server.NotionFactory(cfg, c.Log), c.Log)
	if err := srv.Start(ctx); err != nil {
		c.UI.Error(fmt.Sprintf("server error: %v", err))
		return 1
	}
	return 0
}
