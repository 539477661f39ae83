// Package main is the entry point for the hgstat command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chmouel/hgstat/internal/buildinfo"
	urfavecli "github.com/urfave/cli/v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func init() {
	// -v belongs to --verbose
	urfavecli.VersionFlag = &urfavecli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func main() {
	buildinfo.Set(version, commit, date, builtBy)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "hgstat",
		Usage:                 "Report the working-directory status of a Mercurial repository",
		Version:               buildinfo.Get().String(),
		EnableShellCompletion: true,
		ShellComplete:         shellComplete,
		Flags:                 globalFlags(),
		Commands: []*urfavecli.Command{
			statusCommand(),
			dirtyCommand(),
			listCommand(),
			rootCommand(),
			rawCommand(),
			watchCommand(),
			uiCommand(),
		},
		// Without a subcommand, behave like `hgstat list`.
		Action: handleListAction,
		After: func(context.Context, *urfavecli.Command) error {
			return closeLog()
		},
	}
}
