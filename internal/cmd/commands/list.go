package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/source"
)

// ListCommand prints the bugs of a database.
type ListCommand struct {
	*base.Command

	common     base.Common
	flagStatus string
	flagLimit  int
	flagJSON   bool
}

func (c *ListCommand) Synopsis() string {
	return "List bugs from a Notion database"
}

func (c *ListCommand) Help() string {
	return `Usage: bugtriage list [options]

  Queries the database and prints one line per bug. With --status, only
  bugs in that status are shown; if the database rejects the status
  filter, every bug is listed instead.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("list")
	c.common.Register(f)
	f.StringVarP(&c.flagStatus, "status", "s", "", "Only list bugs in this status")
	f.IntVarP(&c.flagLimit, "limit", "n", source.DefaultLimit, "Maximum number of bugs")
	f.BoolVar(&c.flagJSON, "json", false, "Print JSON instead of a table")
	return f
}

func (c *ListCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() > 0 {
		c.UI.Error("list takes no arguments")
		return 1
	}
	if c.flagLimit < 0 {
		c.UI.Error("limit must not be negative")
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

	issues, err := tracker.ListIssues(ctx, source.ListOptions{
		DatabaseID: c.common.Database,
		Status:     c.flagStatus,
		Limit:      c.flagLimit,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing bugs: %v", err))
		return exitCode(err)
	}

	if c.flagJSON {
		return printJSON(c.UI, issues)
	}
	c.UI.Output(issueTable(issues))
	return 0
}

// issueTable renders issues as aligned columns.
func issueTable(issues []model.Issue) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tTITLE")
	for _, issue := range issues {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			issue.ID,
			issue.StatusOr("-"),
			issue.PriorityOr("-"),
			issue.Title,
		)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
