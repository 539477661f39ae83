package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chmouel/hgstat/internal/hg"
	log "github.com/chmouel/hgstat/internal/log"
	"github.com/chmouel/hgstat/internal/models"
	"github.com/chmouel/hgstat/internal/watch"
	urfavecli "github.com/urfave/cli/v3"
)

// Replaced in tests.
var (
	notifyContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	}
	now = time.Now
)

func watchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:   "watch",
		Usage:  "Print a line whenever the working-directory state changes",
		Action: handleWatchAction,
	}
}

func handleWatchAction(ctx context.Context, cmd *urfavecli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	ctx, cancel := notifyContext(ctx)
	defer cancel()

	w, err := watch.New(s.repo.Root(), s.cfg.WatchDebounce)
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.repo.Root(), err)
	}
	defer func() { _ = w.Close() }()

	return watchLoop(ctx, s.repo, w.Events(), stdout(cmd))
}

// watchLoop refreshes on every event and prints a summary line when it
// differs from the previous one.
func watchLoop(ctx context.Context, repo *hg.Repository, events <-chan struct{}, out io.Writer) error {
	last := summaryLine(repo.Snapshot())
	fmt.Fprintf(out, "%s %s\n", now().Format(time.TimeOnly), last)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			if err := repo.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Printf("watch: refresh failed: %v", err)
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			line := summaryLine(repo.Snapshot())
			if line == last {
				continue
			}
			last = line
			fmt.Fprintf(out, "%s %s\n", now().Format(time.TimeOnly), line)
		}
	}
}

// summaryLine renders the dirty state followed by the non-zero counts,
// e.g. "dirty M:2 ?:1".
func summaryLine(snapshot *hg.Snapshot) string {
	state := "clean"
	if snapshot.IsDirty() {
		state = "dirty"
	}
	counts := snapshot.Counts()
	parts := []string{state}
	for _, code := range models.ParsedStatusCodes {
		if n := counts[code]; n > 0 {
			parts = append(parts, fmt.Sprintf("%c:%d", code.Char(), n))
		}
	}
	return strings.Join(parts, " ")
}
