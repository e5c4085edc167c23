package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/pageref"
)

// CommentCommand posts a comment on a bug.
type CommentCommand struct {
	*base.Command

	common base.Common
}

func (c *CommentCommand) Synopsis() string {
	return "Comment on a bug"
}

func (c *CommentCommand) Help() string {
	return `Usage: bugtriage comment [options] <page-id|url> <text...>

  Posts the remaining arguments, joined by spaces, as a comment on the
  page.` + c.Flags().Help()
}

func (c *CommentCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("comment")
	c.common.Register(f)
	return f
}

func (c *CommentCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() < 2 {
		c.UI.Error("expected a page id and comment text")
		return 1
	}
	pageID := pageref.Normalize(flags.Arg(0))
	text := strings.TrimSpace(strings.Join(flags.Args()[1:], " "))
	if text == "" {
		c.UI.Error("comment text is empty")
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

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := tracker.AddComment(ctx, pageID, text); err != nil {
		c.UI.Error(fmt.Sprintf("error adding comment: %v", err))
		return exitCode(err)
	}

	c.UI.Output("Comment added")
	return 0
}
