package commands

import (
	"fmt"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/pageref"
)

// OpenCommand opens a bug's page in the browser.
type OpenCommand struct {
	*base.Command

	flagPrint bool
}

func (c *OpenCommand) Synopsis() string {
	return "Open a bug in the browser"
}

func (c *OpenCommand) Help() string {
	return `Usage: bugtriage open [options] <page-id|url>

  Opens the page in the default browser. Works offline; the page is not
  fetched.` + c.Flags().Help()
}

func (c *OpenCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("open")
	f.BoolVar(&c.flagPrint, "print", false, "Print the link instead of opening it")
	return f
}

func (c *OpenCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		c.UI.Error("expected exactly one page id")
		return 1
	}

	link := pageref.URL(flags.Arg(0))
	if link == "" {
		c.UI.Error(fmt.Sprintf("%q is not a page id or link", flags.Arg(0)))
		return 1
	}

	if c.flagPrint {
		c.UI.Output(link)
		return 0
	}
	if err := c.OpenURL(link); err != nil {
		c.UI.Error(fmt.Sprintf("error opening browser: %v", err))
		c.UI.Output(link)
		return 1
	}
	return 0
}
