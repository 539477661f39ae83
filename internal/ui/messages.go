package ui

import (
	"time"

	"github.com/chmouel/hgstat/internal/hg"
)

// refreshedMsg carries the outcome of a background Refresh.
type refreshedMsg struct {
	snapshot *hg.Snapshot
	err      error
	at       time.Time
}

// watchEventMsg is sent when the filesystem watcher reports a change.
type watchEventMsg struct{}

// watchClosedMsg is sent once the watcher's event channel is closed.
type watchClosedMsg struct{}
