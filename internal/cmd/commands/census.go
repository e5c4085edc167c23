package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/notion"
)

// CensusCommand tallies every bug in a database by status.
type CensusCommand struct {
	*base.Command

	common   base.Common
	flagJSON bool
}

func (c *CensusCommand) Synopsis() string {
	return "Count bugs per status"
}

func (c *CensusCommand) Help() string {
	return `Usage: bugtriage census [options]

  Walks every page of the database without a filter, counts bugs per
  status and lists the ones that have not been started.` + c.Flags().Help()
}

func (c *CensusCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("census")
	c.common.Register(f)
	f.BoolVar(&c.flagJSON, "json", false, "Print JSON")
	return f
}

func (c *CensusCommand) Run(args []string) int {
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

	// Large databases take many pages; only the per-request timeout applies.
	census, err := tracker.Census(context.Background(), c.common.Database)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error running census: %v", err))
		return exitCode(err)
	}

	if c.flagJSON {
		return printJSON(c.UI, censusJSON(census))
	}
	c.UI.Output(censusReport(census))
	return 0
}

type censusOutput struct {
	DatabaseID string         `json:"database_id"`
	Total      int            `json:"total"`
	Pages      int            `json:"pages"`
	Counts     map[string]int `json:"counts"`
	NotStarted []string       `json:"not_started"`
}

func censusJSON(c *notion.Census) censusOutput {
	out := censusOutput{
		DatabaseID: c.DatabaseID,
		Total:      c.Total,
		Pages:      c.Pages,
		Counts:     c.Counts,
		NotStarted: make([]string, 0, len(c.NotStarted)),
	}
	for _, issue := range c.NotStarted {
		out.NotStarted = append(out.NotStarted, issue.ID)
	}
	return out
}

func censusReport(c *notion.Census) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Database %s: %d bugs over %d pages\n\n", c.DatabaseID, c.Total, c.Pages)

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, status := range c.Statuses() {
		fmt.Fprintf(w, "%s\t%d\n", status, c.Counts[status])
	}
	if n := c.Counts[notion.NoStatus]; n > 0 {
		fmt.Fprintf(w, "%s\t%d\n", notion.NoStatus, n)
	}
	w.Flush()

	if len(c.NotStarted) > 0 {
		fmt.Fprintf(&b, "\nNot started (%d):\n", len(c.NotStarted))
		for _, issue := range c.NotStarted {
			fmt.Fprintf(&b, "  %s  %s\n", issue.ID, issue.Title)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
