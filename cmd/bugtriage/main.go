package main

import (
	"os"

	"github.com/nhle/bugtriage/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
