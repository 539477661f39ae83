// Package watch turns filesystem activity in a working copy into debounced
// refresh signals.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/chmouel/hgstat/internal/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 300 * time.Millisecond

// markerDir is the repository metadata directory. Only the files listed in
// metadataFiles are of interest inside it.
const markerDir = ".hg"

var metadataFiles = map[string]struct{}{
	"dirstate":          {},
	"branch":            {},
	"bookmarks":         {},
	"bookmarks.current": {},
}

// Watcher reports changes below a repository root.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	events   chan struct{}
	done     chan struct{}
	once     sync.Once

	mu    sync.Mutex
	paths map[string]struct{}
}

// New starts watching root and every directory below it.
func New(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		fsw:      fsw,
		events:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		paths:    make(map[string]struct{}),
	}
	w.addTree(w.root)
	w.addDir(filepath.Join(w.root, markerDir))

	go w.run()
	return w, nil
}

// Events delivers one value per burst of changes. Bursts closer together
// than the debounce window are coalesced. The channel is closed once the
// watcher stops.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// Relevant reports whether a change to path should trigger a refresh.
func (w *Watcher) Relevant(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	parts := splitPath(rel)
	if len(parts) == 0 || parts[0] == ".." {
		return false
	}
	for i, part := range parts {
		if part != markerDir {
			continue
		}
		// the root's own metadata: only a few files matter
		if i == 0 && len(parts) == 2 {
			_, ok := metadataFiles[parts[1]]
			return ok
		}
		return false
	}
	return true
}

func (w *Watcher) run() {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		close(w.events)
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			if !w.Relevant(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.signal()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

func (w *Watcher) maybeWatchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || !w.Relevant(path) {
		return
	}
	w.addTree(path)
}

func (w *Watcher) addDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.paths[path]; ok {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		log.Printf("watch: add failed for %s: %v", path, err)
		return
	}
	w.paths[path] = struct{}{}
}

func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() == markerDir {
			return filepath.SkipDir
		}
		w.addDir(path)
		return nil
	})
}

// watched returns the number of directories registered, for tests.
func (w *Watcher) watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}

func splitPath(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}
