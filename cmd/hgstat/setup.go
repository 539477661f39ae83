package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chmouel/hgstat/internal/config"
	"github.com/chmouel/hgstat/internal/hg"
	log "github.com/chmouel/hgstat/internal/log"
	urfavecli "github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var errNoRepository = errors.New("no mercurial repository found")

// Replaced in tests.
var (
	getwd          = os.Getwd
	newRunnerFunc  = newRunner
	hgConfigFunc   = (*config.AppConfig).ApplyHgConfig
	stdoutTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

// session is what every subcommand works with once the repository is located.
type session struct {
	cfg  *config.AppConfig
	repo *hg.Repository
	cwd  string
}

func newRunner(cfg *config.AppConfig) hg.Runner {
	r := hg.NewCommandRunner(cfg.HgPath)
	r.Timeout = cfg.Timeout
	return r
}

// setupDebugLog routes debug logging before anything else runs, so that
// config loading is captured too.
func setupDebugLog(cmd *urfavecli.Command) {
	if cmd.Bool("verbose") {
		log.SetOutput(os.Stderr)
		return
	}
	if debugLog := cmd.String("debug-log"); debugLog != "" {
		openDebugLog(debugLog)
	}
}

func openDebugLog(path string) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		expanded = path
	}
	if err := log.SetFile(expanded); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening debug log file %q: %v\n", expanded, err)
	}
}

func closeLog() error {
	if err := log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing debug log: %v\n", err)
	}
	return nil
}

// startDir returns the absolute directory the repository search starts from.
func startDir(cmd *urfavecli.Command) (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	dir := cmd.String("dir")
	if dir == "" {
		return cwd, nil
	}
	if expanded, err := config.ExpandPath(dir); err == nil {
		dir = expanded
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	return filepath.Clean(dir), nil
}

// applyFlags copies the dedicated --hg, --max-depth and --timeout flags.
func applyFlags(cmd *urfavecli.Command, cfg *config.AppConfig) error {
	if cmd.IsSet("hg") {
		cfg.HgPath = cmd.String("hg")
	}
	if cmd.IsSet("max-depth") {
		depth := cmd.Int("max-depth")
		if depth <= 0 {
			return fmt.Errorf("--max-depth must be positive, got %d", depth)
		}
		cfg.MaxDepth = depth
	}
	if cmd.IsSet("timeout") {
		timeout := cmd.Duration("timeout")
		if timeout < 0 {
			return fmt.Errorf("--timeout must not be negative, got %s", timeout)
		}
		cfg.Timeout = timeout
	}
	return nil
}

// loadConfig layers the configuration sources, lowest precedence first:
// YAML file, hg config, dedicated flags, then --config overrides.
func loadConfig(cmd *urfavecli.Command, dir string) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(cmd.String("config-file"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	// applied on both sides of the overlay: hg config itself must run the
	// requested binary within the requested timeout, and the flags win
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := hgConfigFunc(cfg, dir); err != nil {
		log.Printf("config: hg config overlay skipped: %v", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if overrides := cmd.StringSlice("config"); len(overrides) > 0 {
		if err := cfg.ApplyCLIOverrides(overrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}

	if !cmd.IsSet("debug-log") && !cmd.Bool("verbose") {
		if cfg.DebugLog != "" {
			openDebugLog(cfg.DebugLog)
		} else {
			// No debug log configured, discard any buffered logs
			_ = log.SetFile("")
		}
	}
	return cfg, nil
}

// openSession loads the configuration and locates the repository.
func openSession(ctx context.Context, cmd *urfavecli.Command) (*session, error) {
	setupDebugLog(cmd)

	dir, err := startDir(cmd)
	if err != nil {
		return nil, err
	}
	cwd, err := getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return nil, err
	}

	runner := newRunnerFunc(cfg)
	repo, ok := hg.Locate(ctx, dir, cfg.MaxDepth, runner)
	if !ok {
		// a missing binary explains the failure better than the walk does
		if err := runner.CheckTool(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w from %s", errNoRepository, dir)
	}
	log.Printf("repository: %s", repo.Root())
	return &session{cfg: cfg, repo: repo, cwd: cwd}, nil
}
