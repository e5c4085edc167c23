package commands

import (
	"context"
	"fmt"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/pageref"
)

// SetStatusCommand writes a new status to a bug.
type SetStatusCommand struct {
	*base.Command

	common       base.Common
	flagProperty string
}

func (c *SetStatusCommand) Synopsis() string {
	return "Change a bug's status"
}

func (c *SetStatusCommand) Help() string {
	return `Usage: bugtriage set-status [options] <page-id|url> <status>

  Writes the status to the page. The property is first written as a status
  field and, if the page rejects that, as a select field.` + c.Flags().Help()
}

func (c *SetStatusCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("set-status")
	c.common.Register(f)
	f.StringVarP(&c.flagProperty, "property", "p", "", "Status property name (default notion.status_property)")
	return f
}

func (c *SetStatusCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 2 {
		c.UI.Error("expected a page id and a status")
		return 1
	}
	pageID, status := pageref.Normalize(flags.Arg(0)), flags.Arg(1)

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

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := tracker.UpdateStatus(ctx, pageID, status, c.flagProperty); err != nil {
		c.UI.Error(fmt.Sprintf("error updating status: %v", err))
		return exitCode(err)
	}

	c.UI.Output(fmt.Sprintf("Task status updated to %s", status))
	return 0
}
