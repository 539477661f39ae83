// Package hg reads the working-directory status of Mercurial repositories.
package hg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/chmouel/hgstat/internal/log"
	"github.com/chmouel/hgstat/internal/models"
)

// osStat is replaced in tests.
var osStat = os.Stat

// Repository is an opened working copy and its most recent status snapshot.
// It is not safe for concurrent use.
type Repository struct {
	root     string
	runner   Runner
	snapshot *Snapshot
}

// Open captures the status of the repository rooted at root, which must
// carry the .hg marker. A nil runner uses the hg executable found in PATH.
func Open(ctx context.Context, root string, runner Runner) (*Repository, error) {
	if runner == nil {
		runner = NewCommandRunner(DefaultBinary)
	}
	if err := runner.CheckTool(); err != nil {
		return nil, err
	}
	return open(ctx, root, runner)
}

// open is Open without the tool check, for callers that already made it.
func open(ctx context.Context, root string, runner Runner) (*Repository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotARepository, root, err)
	}
	info, err := osStat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotARepository, abs)
	}
	// hg status also succeeds below the root, with paths relative to the real root
	if !IsRepository(abs) {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotARepository, abs, MarkerDir)
	}

	repo := &Repository{root: abs, runner: runner}
	snapshot, err := repo.capture(ctx)
	if err != nil {
		return nil, err
	}
	repo.snapshot = snapshot
	return repo, nil
}

// Root returns the absolute repository root.
func (r *Repository) Root() string {
	return r.root
}

// Snapshot returns the current snapshot.
func (r *Repository) Snapshot() *Snapshot {
	return r.snapshot
}

// Refresh re-runs the status capture and replaces the snapshot.
// On failure the previous snapshot is kept.
func (r *Repository) Refresh(ctx context.Context) error {
	snapshot, err := r.capture(ctx)
	if err != nil {
		return err
	}
	r.snapshot = snapshot
	return nil
}

// StatusOf returns the status of path. Relative paths are resolved against
// the repository root. Directories always report StatusDirectory and paths
// missing from the snapshot report StatusNotTracked.
func (r *Repository) StatusOf(path string) (models.StatusCode, error) {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(r.root, target)
	}
	target = filepath.Clean(target)

	rel, ok := relativeTo(r.root, target)
	if !ok {
		return models.StatusNotTracked, fmt.Errorf("%w: %s", ErrPathOutsideRepository, path)
	}

	if info, err := osStat(target); err == nil && info.IsDir() {
		log.Printf("%s is a directory", rel)
		return models.StatusDirectory, nil
	}

	status, _ := r.snapshot.Lookup(rel)
	return status, nil
}

// IsDirty reports whether any file in the snapshot is not clean.
func (r *Repository) IsDirty() bool {
	return r.snapshot.IsDirty()
}

func (r *Repository) capture(ctx context.Context) (*Snapshot, error) {
	out, err := r.runner.Status(ctx, r.root)
	if err != nil {
		return nil, err
	}
	snapshot, err := NewSnapshot(out)
	if err != nil {
		return nil, fmt.Errorf("parse status of %s: %w", r.root, err)
	}
	log.Printf("status: %d entries in %s", snapshot.Len(), r.root)
	return snapshot, nil
}

// relativeTo returns target relative to base when target is base or lies below it.
func relativeTo(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", false
	}
	return rel, true
}
