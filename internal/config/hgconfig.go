package config

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// hgConfigMock allows tests to mock hg config output.
var hgConfigMock func(hgPath, repoPath string) (string, error)

// runHgConfig executes `hg config hgstat` and returns raw output.
// A positive timeout bounds the invocation.
func runHgConfig(hgPath, repoPath string, timeout time.Duration) (string, error) {
	if hgConfigMock != nil {
		return hgConfigMock(hgPath, repoPath)
	}
	if hgPath == "" {
		hgPath = "hg"
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// #nosec G204 -- hg path comes from local configuration
	cmd := exec.CommandContext(ctx, hgPath, "config", "hgstat")
	if repoPath != "" {
		cmd.Dir = repoPath
	}
	cmd.Env = append(cmd.Environ(), "HGPLAIN=1")

	output, err := cmd.Output()
	if ctx.Err() != nil {
		return "", fmt.Errorf("hg config: %w", ctx.Err())
	}
	if err != nil {
		// hg config exits 1 when the section is empty
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return string(output), nil
}

// parseHgConfigOutput parses hg config output into a map for apply.
// Input format: "hgstat.max_depth=10\nhgstat.show_clean=true\n"
func parseHgConfigOutput(output string) map[string]any {
	result := make(map[string]any)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found || !strings.HasPrefix(key, "hgstat.") {
			continue
		}
		key = strings.TrimPrefix(key, "hgstat.")
		if key == "" {
			continue
		}
		result[key] = value
	}
	return result
}

// ApplyHgConfig overlays the [hgstat] section of the Mercurial configuration
// visible from repoPath (user hgrc plus the repository's .hg/hgrc).
// cfg.Timeout bounds the hg invocation.
func (cfg *AppConfig) ApplyHgConfig(repoPath string) error {
	output, err := runHgConfig(cfg.HgPath, repoPath, cfg.Timeout)
	if err != nil {
		return err
	}
	cfg.apply(parseHgConfigOutput(output))
	return nil
}
