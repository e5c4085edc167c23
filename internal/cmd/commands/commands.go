// Package commands implements the bugtriage subcommands.
package commands

import (
	"encoding/json"

	"github.com/mitchellh/cli"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/notion"
	"github.com/nhle/bugtriage/internal/source"
)

// commandTimeout bounds a single command's tracker calls. A filtered list
// may cost two queries.
const commandTimeout = 2 * model.DefaultTimeout

// Exit codes beyond the generic failure.
const (
	exitConfig = 2
	exitAuth   = 3
)

// exitCode maps a tracker error onto the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case notion.IsConfigError(err):
		return exitConfig
	case source.IsAuthError(err):
		return exitAuth
	default:
		return 1
	}
}

func printJSON(ui cli.Ui, v any) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	ui.Output(string(out))
	return 0
}
