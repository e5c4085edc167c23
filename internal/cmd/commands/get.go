package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/pageref"
)

// GetCommand prints one bug.
type GetCommand struct {
	*base.Command

	common   base.Common
	flagJSON bool
}

func (c *GetCommand) Synopsis() string {
	return "Show one bug by page id"
}

func (c *GetCommand) Help() string {
	return `Usage: bugtriage get [options] <page-id|url>

  Fetches a single page and prints its assembled fields.` + c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("get")
	c.common.Register(f)
	f.BoolVar(&c.flagJSON, "json", false, "Print JSON")
	return f
}

func (c *GetCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		c.UI.Error("expected exactly one page id")
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

	issue, err := tracker.GetIssue(ctx, pageref.Normalize(flags.Arg(0)))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error fetching bug: %v", err))
		return exitCode(err)
	}

	if c.flagJSON {
		return printJSON(c.UI, issue)
	}
	c.UI.Output(issueDetail(issue))
	return 0
}

func issueDetail(issue model.Issue) string {
	lines := []string{
		issue.Title,
		"",
		"ID:        " + issue.ID,
		"Status:    " + issue.StatusOr("-"),
		"Priority:  " + issue.PriorityOr("-"),
	}
	if issue.URL != "" {
		lines = append(lines, "URL:       "+issue.URL)
	}
	if d := issue.DescriptionOr(""); d != "" {
		lines = append(lines, "", d)
	}
	return strings.Join(lines, "\n")
}
