package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/hgstat/internal/config"
	"github.com/chmouel/hgstat/internal/hg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	urfavecli "github.com/urfave/cli/v3"
)

const fixture = "M src/main.go\nA docs/readme.md\nC go.mod\nI build/out.bin\n? notes.txt\n"

// setupCLI creates a repository in a temp dir, makes it the working
// directory and serves capture from an in-memory runner.
func setupCLI(t *testing.T, capture string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main\n"), 0o600))

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(root)

	prevRunner, prevHgConfig, prevTerminal := newRunnerFunc, hgConfigFunc, stdoutTerminal
	newRunnerFunc = func(*config.AppConfig) hg.Runner {
		return hg.StatusFunc(func(context.Context, string) ([]byte, error) {
			return []byte(capture), nil
		})
	}
	hgConfigFunc = func(*config.AppConfig, string) error { return nil }
	stdoutTerminal = func() bool { return false }
	t.Cleanup(func() {
		newRunnerFunc, hgConfigFunc, stdoutTerminal = prevRunner, prevHgConfig, prevTerminal
	})
	return root
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(context.Context, *urfavecli.Command, error) {}
	err := app.Run(context.Background(), append([]string{"hgstat"}, args...))
	return out.String(), err
}

func TestListDefaultHidesCleanAndIgnored(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "M src/main.go\nA docs/readme.md\n? notes.txt\n", out)
}

func TestRootActionLists(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t)
	require.NoError(t, err)
	assert.Equal(t, "M src/main.go\nA docs/readme.md\n? notes.txt\n", out)
}

func TestListAll(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "list", "--all")
	require.NoError(t, err)
	assert.Equal(t, fixture, out)
}

func TestListConfigOverride(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "-C", "hs.show_clean=true", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "C go.mod\n")
	assert.NotContains(t, out, "build/out.bin")
}

func TestListUnknownOverride(t *testing.T) {
	setupCLI(t, fixture)
	_, err := runApp(t, "-C", "hs.nope=1", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestListOnly(t *testing.T) {
	setupCLI(t, fixture)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"chars", []string{"--only=M,?"}, "M src/main.go\n? notes.txt\n"},
		{"names", []string{"--only", "added", "--only", "ignored"}, "A docs/readme.md\nI build/out.bin\n"},
		{"clean wins over defaults", []string{"--only=C"}, "C go.mod\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, append([]string{"list"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestListOnlyInvalid(t *testing.T) {
	setupCLI(t, fixture)
	_, err := runApp(t, "list", "--only=Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--only")
}

func TestListFlagConflicts(t *testing.T) {
	setupCLI(t, fixture)
	_, err := runApp(t, "list", "--pristine", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	_, err = runApp(t, "list", "--pristine", "--summary")
	require.Error(t, err)
}

func TestListPristine(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "list", "--pristine")
	require.NoError(t, err)
	assert.Equal(t, "src/main.go\ndocs/readme.md\nnotes.txt\n", out)
}

func TestListJSON(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "list", "--json")
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, map[string]string{"path": "src/main.go", "code": "M", "status": "modified"}, got[0])
	assert.Equal(t, "not-tracked", got[2]["status"])
}

func TestListJSONFromConfigFormat(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "-C", "hs.format=json", "list")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))

	out, err = runApp(t, "-C", "hs.format=json", "list", "--json=false")
	require.NoError(t, err)
	assert.False(t, json.Valid([]byte(out)))
}

func TestListSummary(t *testing.T) {
	setupCLI(t, fixture+"M other.go\n")
	out, err := runApp(t, "list", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
	assert.Regexp(t, `M\s+modified\s+2`, out)
	assert.Regexp(t, `\?\s+not-tracked\s+1`, out)
	assert.NotContains(t, out, "removed")

	out, err = runApp(t, "list", "--summary", "--json")
	require.NoError(t, err)
	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, map[string]int{"modified": 2, "added": 1, "clean": 1, "ignored": 1, "not-tracked": 1}, counts)
}

func TestStatus(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "status", "src/main.go", "notes.txt", "src", "unknown.txt", "go.mod")
	require.NoError(t, err)
	assert.Equal(t, "M src/main.go\n? notes.txt\n/ src\n? unknown.txt\nC go.mod\n", out)
}

func TestStatusFromSubdirectory(t *testing.T) {
	root := setupCLI(t, fixture)
	t.Chdir(filepath.Join(root, "src"))
	out, err := runApp(t, "status", "main.go", filepath.Join(root, "go.mod"))
	require.NoError(t, err)
	assert.Equal(t, "M main.go\nC "+filepath.Join(root, "go.mod")+"\n", out)
}

func TestStatusJSON(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "status", "--json", "docs/readme.md")
	require.NoError(t, err)
	var got []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []map[string]string{{"path": "docs/readme.md", "code": "A", "status": "added"}}, got)
}

func TestStatusErrors(t *testing.T) {
	setupCLI(t, fixture)
	_, err := runApp(t, "status")
	require.Error(t, err)

	_, err = runApp(t, "status", filepath.Dir(t.TempDir()))
	require.Error(t, err)
	assert.ErrorIs(t, err, hg.ErrPathOutsideRepository)
}

func TestDirty(t *testing.T) {
	setupCLI(t, fixture)
	out, err := runApp(t, "dirty")
	require.Error(t, err)
	var exitErr urfavecli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Equal(t, "dirty\n", out)

	out, err = runApp(t, "dirty", "--quiet")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestClean(t *testing.T) {
	setupCLI(t, "C go.mod\nC src/main.go\n")
	out, err := runApp(t, "dirty")
	require.NoError(t, err)
	assert.Equal(t, "clean\n", out)
}

func TestRootAndRaw(t *testing.T) {
	root := setupCLI(t, fixture)
	t.Chdir(filepath.Join(root, "src"))

	out, err := runApp(t, "root")
	require.NoError(t, err)
	assert.Equal(t, root+"\n", out)

	out, err = runApp(t, "raw")
	require.NoError(t, err)
	assert.Equal(t, fixture, out)
}

func TestRawIsVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		capture string
	}{
		{"trailing newline", "A x\n"},
		{"no trailing newline", "A x\nM y"},
		{"blank line kept", "A x\n\nM y\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLI(t, tt.capture)
			out, err := runApp(t, "raw")
			require.NoError(t, err)
			assert.Equal(t, tt.capture, out)
		})
	}
}

func TestDirFlag(t *testing.T) {
	root := setupCLI(t, fixture)
	t.Chdir(t.TempDir())

	out, err := runApp(t, "--dir", filepath.Join(root, "src"), "root")
	require.NoError(t, err)
	assert.Equal(t, root+"\n", out)
}

func TestNoRepository(t *testing.T) {
	setupCLI(t, fixture)
	elsewhere := t.TempDir()
	_, err := runApp(t, "--dir", elsewhere, "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoRepository)
	assert.Equal(t, "no mercurial repository found from "+elsewhere, err.Error())
}

func TestMaxDepthTooShallow(t *testing.T) {
	root := setupCLI(t, fixture)
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	_, err := runApp(t, "--dir", deep, "--max-depth", "2", "root")
	assert.ErrorIs(t, err, errNoRepository)

	out, err := runApp(t, "--dir", deep, "--max-depth", "3", "root")
	require.NoError(t, err)
	assert.Equal(t, root+"\n", out)

	_, err = runApp(t, "--max-depth", "0", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--max-depth")
}

func TestFlagsReachHgConfigAndWinOverIt(t *testing.T) {
	setupCLI(t, fixture)
	var seen config.AppConfig
	hgConfigFunc = func(cfg *config.AppConfig, _ string) error {
		seen = *cfg
		return cfg.ApplyCLIOverrides([]string{"hs.hg_path=from-hgrc", "hs.timeout=9s", "hs.max_depth=7"})
	}
	var used *config.AppConfig
	newRunnerFunc = func(cfg *config.AppConfig) hg.Runner {
		used = cfg
		return hg.StatusFunc(func(context.Context, string) ([]byte, error) {
			return []byte(fixture), nil
		})
	}

	_, err := runApp(t, "--hg", "/opt/hg", "--timeout", "2s", "--max-depth", "5", "root")
	require.NoError(t, err)

	assert.Equal(t, "/opt/hg", seen.HgPath)
	assert.Equal(t, 2*time.Second, seen.Timeout)
	require.NotNil(t, used)
	assert.Equal(t, "/opt/hg", used.HgPath)
	assert.Equal(t, 2*time.Second, used.Timeout)
	assert.Equal(t, 5, used.MaxDepth)
}

func TestHgConfigAppliesWithoutFlags(t *testing.T) {
	setupCLI(t, fixture)
	hgConfigFunc = func(cfg *config.AppConfig, _ string) error {
		return cfg.ApplyCLIOverrides([]string{"hs.show_clean=true"})
	}
	out, err := runApp(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "C go.mod\n")
}

func TestToolNotFound(t *testing.T) {
	setupCLI(t, fixture)
	newRunnerFunc = newRunner
	prevLookup := hg.LookupPath
	hg.LookupPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { hg.LookupPath = prevLookup })

	_, err := runApp(t, "list")
	assert.ErrorIs(t, err, hg.ErrToolNotFound)
}

func TestNewRunnerUsesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.HgPath = "/opt/hg/bin/hg"
	cfg.Timeout = 5 * time.Second
	r, ok := newRunner(cfg).(*hg.CommandRunner)
	require.True(t, ok)
	assert.Equal(t, "/opt/hg/bin/hg", r.Binary)
	assert.Equal(t, cfg.Timeout, r.Timeout)
}

func TestUIRequiresTerminal(t *testing.T) {
	setupCLI(t, fixture)
	_, err := runApp(t, "ui")
	assert.ErrorIs(t, err, errNotATerminal)
}

func TestUIRunsProgram(t *testing.T) {
	setupCLI(t, fixture)
	stdoutTerminal = func() bool { return true }
	prev := runProgram
	var got tea.Model
	runProgram = func(_ context.Context, m tea.Model) error {
		got = m
		return nil
	}
	t.Cleanup(func() { runProgram = prev })

	_, err := runApp(t, "ui", "--no-watch")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
