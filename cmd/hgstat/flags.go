package main

import (
	"fmt"

	"github.com/chmouel/hgstat/internal/config"
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns the flags shared by every subcommand.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Directory to start looking for the repository from (default: current directory)",
		},
		&urfavecli.IntFlag{
			Name:  "max-depth",
			Usage: "Number of directories visited while looking for the repository root",
		},
		&urfavecli.StringFlag{
			Name:  "hg",
			Usage: "Mercurial executable",
		},
		&urfavecli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for each hg invocation (0 disables)",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Write debug logging to stderr",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   fmt.Sprintf("Override config values (repeatable): --config=hs.key=value (keys: %v)", config.Keys()),
		},
	}
}

func jsonFlag() urfavecli.Flag {
	return &urfavecli.BoolFlag{
		Name:  "json",
		Usage: "Output as JSON",
	}
}
