// Package cmd wires the bugtriage subcommands into a CLI.
package cmd

import (
	"bufio"
	"os"

	"github.com/mitchellh/cli"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/cmd/commands"
)

// Version is set at build time.
var Version = "dev"

// Commands returns the subcommand table for ui.
func Commands(name string, ui cli.Ui) map[string]cli.CommandFactory {
	b := func() *base.Command { return base.New(name, ui) }

	return map[string]cli.CommandFactory{
		"census":     func() (cli.Command, error) { return &commands.CensusCommand{Command: b()}, nil },
		"comment":    func() (cli.Command, error) { return &commands.CommentCommand{Command: b()}, nil },
		"get":        func() (cli.Command, error) { return &commands.GetCommand{Command: b()}, nil },
		"init":       func() (cli.Command, error) { return &commands.InitCommand{Command: b()}, nil },
		"list":       func() (cli.Command, error) { return &commands.ListCommand{Command: b()}, nil },
		"login":      func() (cli.Command, error) { return &commands.LoginCommand{Command: b()}, nil },
		"logout":     func() (cli.Command, error) { return &commands.LogoutCommand{Command: b()}, nil },
		"open":       func() (cli.Command, error) { return &commands.OpenCommand{Command: b()}, nil },
		"ping":       func() (cli.Command, error) { return &commands.PingCommand{Command: b()}, nil },
		"serve":      func() (cli.Command, error) { return &commands.ServeCommand{Command: b()}, nil },
		"set-status": func() (cli.Command, error) { return &commands.SetStatusCommand{Command: b()}, nil },
		"sync":       func() (cli.Command, error) { return &commands.SyncCommand{Command: b()}, nil },
		"tui":        func() (cli.Command, error) { return &commands.TUICommand{Command: b()}, nil },
	}
}

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := args[0]

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "--version" ||
			args[1] == "-v") {
		args = []string{cliName, "--version"}
	}

	// If no subcommand is provided, default to 'tui'
	if len(args) == 1 {
		args = append(args, "tui")
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := &cli.CLI{
		Name:     "bugtriage",
		Args:     args[1:],
		Version:  Version,
		Commands: Commands("bugtriage", ui),
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	return exitCode
}
