package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/chmouel/hgstat/internal/log"
	"github.com/chmouel/hgstat/internal/ui"
	"github.com/chmouel/hgstat/internal/watch"
	urfavecli "github.com/urfave/cli/v3"
)

var errNotATerminal = errors.New("ui requires a terminal")

// runProgram is replaced in tests.
var runProgram = func(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func uiCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "ui",
		Usage: "Browse the working-directory status interactively",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "no-watch",
				Usage: "Only refresh on demand",
			},
		},
		Action: handleUIAction,
	}
}

func handleUIAction(ctx context.Context, cmd *urfavecli.Command) error {
	if !stdoutTerminal() {
		return errNotATerminal
	}
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}

	var events <-chan struct{}
	if !cmd.Bool("no-watch") {
		w, err := watch.New(s.repo.Root(), s.cfg.WatchDebounce)
		if err != nil {
			log.Printf("ui: watcher disabled: %v", err)
		} else {
			defer func() { _ = w.Close() }()
			events = w.Events()
		}
	}

	if err := runProgram(ctx, ui.NewModel(s.repo, s.cfg, events)); err != nil {
		return fmt.Errorf("error running ui: %w", err)
	}
	return nil
}
