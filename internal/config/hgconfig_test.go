package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockHgConfig(t *testing.T, fn func(hgPath, repoPath string) (string, error)) {
	t.Helper()
	prev := hgConfigMock
	hgConfigMock = fn
	t.Cleanup(func() { hgConfigMock = prev })
}

func TestParseHgConfigOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected map[string]any
	}{
		{
			name:   "single values",
			output: "hgstat.max_depth=10\nhgstat.theme=nord\n",
			expected: map[string]any{
				"max_depth": "10",
				"theme":     "nord",
			},
		},
		{
			name:   "values containing equals",
			output: "hgstat.hg_path=/opt/hg=2/bin/hg\n",
			expected: map[string]any{
				"hg_path": "/opt/hg=2/bin/hg",
			},
		},
		{
			name:     "empty output",
			output:   "",
			expected: map[string]any{},
		},
		{
			name:   "other sections and junk skipped",
			output: "ui.username=me\nhgstat.show_clean=true\nnot a config line\nhgstat.=x\n",
			expected: map[string]any{
				"show_clean": "true",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseHgConfigOutput(tt.output))
		})
	}
}

func TestApplyHgConfig(t *testing.T) {
	var gotHg, gotRepo string
	mockHgConfig(t, func(hgPath, repoPath string) (string, error) {
		gotHg, gotRepo = hgPath, repoPath
		return "hgstat.show_ignored=on\nhgstat.watch_debounce=2s\n", nil
	})

	cfg := DefaultConfig()
	cfg.HgPath = "chg"
	require.NoError(t, cfg.ApplyHgConfig("/srv/repo"))

	assert.Equal(t, "chg", gotHg)
	assert.Equal(t, "/srv/repo", gotRepo)
	assert.True(t, cfg.ShowIgnored)
	assert.Equal(t, "2s", cfg.WatchDebounce.String())
}

func TestApplyHgConfigError(t *testing.T) {
	mockHgConfig(t, func(string, string) (string, error) {
		return "", errors.New("hg exploded")
	})

	cfg := DefaultConfig()
	require.Error(t, cfg.ApplyHgConfig(""))
	assert.Equal(t, DefaultConfig(), cfg)
}

func writeStubHg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub hg scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "hg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))
	return path
}

func TestRunHgConfig(t *testing.T) {
	stub := writeStubHg(t, `[ "$HGPLAIN" = 1 ] || exit 3
printf 'hgstat.theme=nord\n'`)

	out, err := runHgConfig(stub, t.TempDir(), 0)
	require.NoError(t, err)
	assert.Equal(t, "hgstat.theme=nord\n", out)
}

func TestRunHgConfigEmptySection(t *testing.T) {
	stub := writeStubHg(t, "exit 1")

	out, err := runHgConfig(stub, "", 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestApplyHgConfigTimeout(t *testing.T) {
	stub := writeStubHg(t, "exec sleep 10")

	cfg := DefaultConfig()
	cfg.HgPath = stub
	cfg.Timeout = 100 * time.Millisecond

	start := time.Now()
	err := cfg.ApplyHgConfig(t.TempDir())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
