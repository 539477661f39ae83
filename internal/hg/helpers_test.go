package hg

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/chmouel/hgstat/internal/models"
)

// fakeHg emulates `hg status --all` over a directory: tracked paths report
// their configured status and every other file on disk reports "?".
type fakeHg struct {
	tracked  map[string]models.StatusCode
	checkErr error
	err      error
	output   []byte
	calls    int
	checks   int
	roots    []string
}

func (f *fakeHg) CheckTool() error {
	f.checks++
	return f.checkErr
}

func (f *fakeHg) Status(_ context.Context, root string) ([]byte, error) {
	f.calls++
	f.roots = append(f.roots, root)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}

	var untracked []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == MarkerDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := f.tracked[rel]; !ok {
			untracked = append(untracked, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(f.tracked))
	for path := range f.tracked {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	sort.Strings(untracked)

	var buf bytes.Buffer
	for _, path := range paths {
		buf.WriteByte(f.tracked[path].Char())
		buf.WriteString(" " + path + "\n")
	}
	for _, path := range untracked {
		buf.WriteString("? " + path + "\n")
	}
	return buf.Bytes(), nil
}

// setupRepo lays out a working copy shaped like:
//
//	addfile            A
//	deleted            ! (not on disk)
//	file1              C
//	file2              M
//	file3              R (not on disk)
//	file4              I
//	file5              ? (not tracked)
//	directory/dirfile1 C
func setupRepo(t *testing.T) (string, *fakeHg) {
	t.Helper()

	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, MarkerDir))
	mustMkdir(t, filepath.Join(root, "directory"))
	for _, name := range []string{"addfile", "file1", "file2", "file4", "file5", "directory/dirfile1"} {
		mustWrite(t, filepath.Join(root, filepath.FromSlash(name)), name)
	}

	fake := &fakeHg{tracked: map[string]models.StatusCode{
		"addfile":            models.StatusAdded,
		"deleted":            models.StatusMissing,
		"file1":              models.StatusClean,
		"file2":              models.StatusModified,
		"file3":              models.StatusRemoved,
		"file4":              models.StatusIgnored,
		"directory/dirfile1": models.StatusClean,
	}}
	return root, fake
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeStubHg writes an executable shell script and returns its path.
func writeStubHg(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	path := filepath.Join(t.TempDir(), "hg")
	script := "#!/bin/sh\n" + body + "\n"
	// #nosec G306 -- test helper needs an executable stub in a temp dir.
	if err := os.WriteFile(path, []byte(script), 0o700); err != nil {
		t.Fatalf("write stub command: %v", err)
	}
	return path
}
