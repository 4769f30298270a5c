package main

import (
	"context"
	"flag"
	"os"
	"path"

	"invoice-generator/internal/cli"

	"github.com/google/subcommands"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (default ./config.yaml if present)")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cli.Register(commander, configPath)

	flag.Parse()
	// serve is the default command
	if flag.NArg() == 0 {
		_ = flag.CommandLine.Parse([]string{"serve"})
	}
	os.Exit(int(commander.Execute(context.Background())))
}
