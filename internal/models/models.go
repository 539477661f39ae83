// Package models defines the data objects shared across hgstat packages.
package models

import "path/filepath"

// TrackedEntry is one parsed row of a status capture.
// Path is relative to the repository root, exactly as hg printed it.
type TrackedEntry struct {
	Path   string
	Status StatusCode
}

// Key returns the normalized form of the entry path used for lookups.
func (e TrackedEntry) Key() string {
	return NormalizePath(e.Path)
}

// Matches reports whether rel names the same file as the entry.
func (e TrackedEntry) Matches(rel string) bool {
	return e.Key() == NormalizePath(rel)
}

// NormalizePath cleans a root-relative path and converts it to forward slashes.
func NormalizePath(rel string) string {
	return filepath.ToSlash(filepath.Clean(rel))
}
