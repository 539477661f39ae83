package hg

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/chmouel/hgstat/internal/models"
)

// Snapshot is the parsed result of a single status capture.
// A Snapshot is never modified after NewSnapshot returns.
type Snapshot struct {
	entries []models.TrackedEntry
	raw     []string
}

// NewSnapshot parses every non-empty line of capture.
func NewSnapshot(capture []byte) (*Snapshot, error) {
	if !utf8.Valid(capture) {
		return nil, ErrDecode
	}

	raw := strings.Split(string(capture), "\n")
	entries := make([]models.TrackedEntry, 0, len(raw))
	for i, line := range raw {
		if line == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			return nil, &LineError{Line: i + 1, Text: line, Err: err}
		}
		entries = append(entries, entry)
	}

	return &Snapshot{entries: entries, raw: raw}, nil
}

// Len returns the number of parsed entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the parsed entries in capture order.
func (s *Snapshot) Entries() []models.TrackedEntry {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}

// Raw returns a copy of the captured lines, blank lines included.
func (s *Snapshot) Raw() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.raw)
}

// Lookup returns the status recorded for rel. If rel appears more than
// once the first entry wins.
func (s *Snapshot) Lookup(rel string) (models.StatusCode, bool) {
	if s == nil {
		return models.StatusNotTracked, false
	}
	key := models.NormalizePath(rel)
	for _, entry := range s.entries {
		if entry.Key() == key {
			return entry.Status, true
		}
	}
	return models.StatusNotTracked, false
}

// IsDirty reports whether any entry is not clean.
func (s *Snapshot) IsDirty() bool {
	if s == nil {
		return false
	}
	return slices.ContainsFunc(s.entries, func(e models.TrackedEntry) bool {
		return e.Status != models.StatusClean
	})
}

// Counts returns the number of entries per status.
func (s *Snapshot) Counts() map[models.StatusCode]int {
	counts := make(map[models.StatusCode]int)
	if s == nil {
		return counts
	}
	for _, entry := range s.entries {
		counts[entry.Status]++
	}
	return counts
}

// Filter returns the entries whose status is one of codes, in capture order.
// With no codes every entry is returned.
func (s *Snapshot) Filter(codes ...models.StatusCode) []models.TrackedEntry {
	if len(codes) == 0 {
		return s.Entries()
	}
	if s == nil {
		return nil
	}
	out := make([]models.TrackedEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if slices.Contains(codes, entry.Status) {
			out = append(out, entry)
		}
	}
	return out
}
