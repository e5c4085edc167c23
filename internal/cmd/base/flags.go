package base

import (
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// FlagSet wraps a pflag set so commands can render it in their help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a flag set that reports errors instead of exiting and
// prints nothing on its own.
func NewFlagSet(name string) *FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.SortFlags = false
	return &FlagSet{FlagSet: f}
}

// Help renders the flag defaults as an options block.
func (f *FlagSet) Help() string {
	usage := f.FlagUsages()
	if usage == "" {
		return ""
	}
	return "\n\nOptions:\n\n" + strings.TrimRight(usage, "\n")
}

// Common holds the flags shared by commands that talk to a database.
type Common struct {
	ConfigPath string
	Database   string
}

// Register adds the shared flags to f.
func (o *Common) Register(f *FlagSet) {
	f.StringVarP(&o.ConfigPath, "config", "c", "", "Path to the config file (default ~/.config/bugtriage/config.yaml)")
	f.StringVarP(&o.Database, "database", "d", "", "Database id, overriding notion.database_id")
}
