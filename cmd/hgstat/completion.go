package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chmouel/hgstat/internal/config"
	"github.com/chmouel/hgstat/internal/models"
	"github.com/chmouel/hgstat/internal/theme"
	urfavecli "github.com/urfave/cli/v3"
)

// completionArgs is replaced in tests.
var completionArgs = func() []string { return os.Args }

// shellComplete completes flag names, and the values of --only and --config.
func shellComplete(_ context.Context, cmd *urfavecli.Command) {
	args := completionArgs()
	lastArg := ""
	// the final argument is --generate-shell-completion
	if len(args) > 1 {
		lastArg = args[len(args)-2]
	}

	w := stdout(cmd)
	switch lastArg {
	case "--only":
		for _, s := range suggestStatusCodes() {
			fmt.Fprintln(w, s)
		}
		return
	case "--config", "-C":
		for _, s := range suggestConfigKeys() {
			fmt.Fprintln(w, s)
		}
		return
	case "--":
		outputFlags(w, cmd, "")
		return
	}
	if strings.HasPrefix(lastArg, "-") {
		outputFlags(w, cmd, lastArg)
		return
	}
	for _, sub := range cmd.Commands {
		if !sub.Hidden {
			fmt.Fprintf(w, "%s:%s\n", sub.Name, sub.Usage)
		}
	}
	outputFlags(w, cmd, "")
}

// outputFlags prints the visible flags of cmd matching prefix in
// "--name:usage" form.
func outputFlags(w io.Writer, cmd *urfavecli.Command, prefix string) {
	for _, flag := range cmd.VisibleFlags() {
		name := flag.Names()[0]
		fullFlag := "--" + name
		if len(name) == 1 {
			fullFlag = "-" + name
		}
		if !strings.HasPrefix(fullFlag, prefix) {
			continue
		}
		usage := ""
		if df, ok := flag.(urfavecli.DocGenerationFlag); ok {
			usage = df.GetUsage()
		}
		if usage != "" {
			fmt.Fprintf(w, "%s:%s\n", fullFlag, usage)
		} else {
			fmt.Fprintln(w, fullFlag)
		}
	}
}

// suggestConfigKeys returns "hs.key=" for every configuration key, plus one
// complete suggestion per theme.
func suggestConfigKeys() []string {
	keys := config.Keys()
	out := make([]string, 0, len(keys)+len(theme.AvailableThemes()))
	for _, key := range keys {
		out = append(out, "hs."+key+"=")
	}
	for _, name := range theme.AvailableThemes() {
		out = append(out, "hs.theme="+name)
	}
	return out
}

func suggestStatusCodes() []string {
	out := make([]string, 0, len(models.ParsedStatusCodes))
	for _, code := range models.ParsedStatusCodes {
		out = append(out, fmt.Sprintf("%c:%s", code.Char(), code))
	}
	return out
}
