package hg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	log "github.com/chmouel/hgstat/internal/log"
)

// DefaultBinary is the executable used when no other is configured.
const DefaultBinary = "hg"

// LookupPath is used to find executables in PATH. Tests replace it to avoid
// depending on a system Mercurial install.
var LookupPath = exec.LookPath

// plainEnv disables user aliases, localisation and other output-changing settings.
var plainEnv = []string{"HGPLAIN=1"}

// Runner captures the raw status of a working directory.
type Runner interface {
	// CheckTool reports ErrToolNotFound when the tool cannot be run at all.
	CheckTool() error
	// Status returns the raw output of a status listing run inside root.
	Status(ctx context.Context, root string) ([]byte, error)
}

// StatusFunc adapts a function to Runner. CheckTool always succeeds.
type StatusFunc func(ctx context.Context, root string) ([]byte, error)

// CheckTool implements Runner.
func (f StatusFunc) CheckTool() error { return nil }

// Status implements Runner.
func (f StatusFunc) Status(ctx context.Context, root string) ([]byte, error) {
	return f(ctx, root)
}

// CommandRunner runs the hg executable.
type CommandRunner struct {
	Binary  string
	Args    []string
	Env     []string
	Timeout time.Duration
}

var _ Runner = (*CommandRunner)(nil)

// NewCommandRunner returns a runner for `<binary> status --all`.
func NewCommandRunner(binary string) *CommandRunner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &CommandRunner{
		Binary: binary,
		Args:   []string{"status", "--all"},
	}
}

// CheckTool implements Runner.
func (r *CommandRunner) CheckTool() error {
	if _, err := LookupPath(r.binary()); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, r.binary())
	}
	return nil
}

// Status implements Runner.
func (r *CommandRunner) Status(ctx context.Context, root string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := r.Args
	if len(args) == 0 {
		args = []string{"status", "--all"}
	}
	log.Printf("run: %s %s (cwd=%s)", r.binary(), strings.Join(args, " "), root)

	// #nosec G204 -- binary comes from local configuration and args are fixed
	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Dir = root
	cmd.Env = append(append(cmd.Environ(), plainEnv...), r.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, r.binary())
		}
		detail := strings.TrimSpace(stderr.String())
		log.Printf("error: %s status in %s: %v %s", r.binary(), root, err, detail)
		if detail != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrNotARepository, root, detail)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNotARepository, root, err)
	}
	return stdout.Bytes(), nil
}

func (r *CommandRunner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}
