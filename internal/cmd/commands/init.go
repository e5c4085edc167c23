package commands

import (
	"fmt"
	"os"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/model"
)

// InitCommand writes a starter config file.
type InitCommand struct {
	*base.Command

	common         base.Common
	flagStatusProp string
	flagForce      bool
}

func (c *InitCommand) Synopsis() string {
	return "Write a config file"
}

func (c *InitCommand) Help() string {
	return `Usage: bugtriage init [options]

  Writes a config file with the defaults and the given database id. An
  existing file is kept unless --force is set.` + c.Flags().Help()
}

func (c *InitCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("init")
	c.common.Register(f)
	f.StringVar(&c.flagStatusProp, "status-property", model.DefaultStatusProperty, "Name of the status property")
	f.BoolVar(&c.flagForce, "force", false, "Overwrite an existing config file")
	return f
}

func (c *InitCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	path := c.common.ConfigPath
	if path == "" {
		path = model.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !c.flagForce {
		c.UI.Error(fmt.Sprintf("%s already exists; use --force to overwrite", path))
		return 1
	}

	cfg := model.DefaultAppConfig()
	cfg.Notion.DatabaseID = c.common.Database
	cfg.Notion.StatusProperty = c.flagStatusProp
	if err := cfg.Validate(); err != nil {
		c.UI.Error(fmt.Sprintf("invalid config: %v", err))
		return 1
	}

	if err := model.SaveConfig(path, cfg); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output("Wrote " + path)
	return 0
}
