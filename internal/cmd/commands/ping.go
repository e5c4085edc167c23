package commands

import (
	"context"
	"fmt"

	"github.com/nhle/bugtriage/internal/cmd/base"
)

// PingCommand checks that the configured token can reach the API.
type PingCommand struct {
	*base.Command

	common base.Common
}

func (c *PingCommand) Synopsis() string {
	return "Test the connection to Notion"
}

func (c *PingCommand) Help() string {
	return `Usage: bugtriage ping [options]

  Calls the API as the integration bot and reports whether the token is
  accepted.` + c.Flags().Help()
}

func (c *PingCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("ping")
	c.common.Register(f)
	return f
}

func (c *PingCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.common.ConfigPath)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	tracker, err := c.Tracker(cfg)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer tracker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Notion.Timeout)
	defer cancel()

	if ok, msg := tracker.TestConnection(ctx); !ok {
		c.UI.Error("Failed to connect to Notion API: " + msg)
		return 1
	}

	bot, err := tracker.WhoAmI(ctx)
	if err != nil || bot.Name == "" {
		c.UI.Output("Connected to Notion API")
		return 0
	}
	c.UI.Output(fmt.Sprintf("Connected to Notion API as %s", bot.Name))
	return 0
}
