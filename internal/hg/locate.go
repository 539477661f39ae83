package hg

import (
	"context"
	"errors"
	"path/filepath"

	log "github.com/chmouel/hgstat/internal/log"
)

// MarkerDir is the metadata directory found at every repository root.
const MarkerDir = ".hg"

// IsRepository reports whether path is a directory holding a MarkerDir directory.
func IsRepository(path string) bool {
	info, err := osStat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	marker, err := osStat(filepath.Join(path, MarkerDir))
	return err == nil && marker.IsDir()
}

// Locate walks from start towards the filesystem root, visiting at most
// maxDepth directories, and opens the first repository that succeeds.
// Candidates that carry the marker but fail to open are skipped.
func Locate(ctx context.Context, start string, maxDepth int, runner Runner) (*Repository, bool) {
	if maxDepth <= 0 {
		return nil, false
	}
	if runner == nil {
		runner = NewCommandRunner(DefaultBinary)
	}
	if err := runner.CheckTool(); err != nil {
		log.Printf("locate: %v", err)
		return nil, false
	}
	current, err := filepath.Abs(start)
	if err != nil {
		log.Printf("locate: %s: %v", start, err)
		return nil, false
	}

	for remaining := maxDepth; remaining > 0; remaining-- {
		if IsRepository(current) {
			repo, err := open(ctx, current, runner)
			if err == nil {
				return repo, true
			}
			log.Printf("locate: skipping %s: %v", current, err)
			// the binary vanished mid-walk
			if errors.Is(err, ErrToolNotFound) {
				return nil, false
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return nil, false
}
