package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/hgstat/internal/config"
	"github.com/chmouel/hgstat/internal/hg"
	log "github.com/chmouel/hgstat/internal/log"
	"github.com/chmouel/hgstat/internal/models"
	"github.com/chmouel/hgstat/internal/theme"
	urfavecli "github.com/urfave/cli/v3"
)

// entryJSON is the JSON form of a single status entry.
type entryJSON struct {
	Path   string            `json:"path"`
	Code   string            `json:"code"`
	Status models.StatusCode `json:"status"`
}

func newEntryJSON(path string, code models.StatusCode) entryJSON {
	return entryJSON{Path: path, Code: string(code.Char()), Status: code}
}

func stdout(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func wantJSON(cmd *urfavecli.Command, cfg *config.AppConfig) bool {
	if cmd.IsSet("json") {
		return cmd.Bool("json")
	}
	return cfg.Format == config.FormatJSON
}

// statusPainter colours status characters when writing to a terminal.
type statusPainter struct {
	palette *theme.Theme
}

func newStatusPainter(cfg *config.AppConfig) statusPainter {
	if !stdoutTerminal() {
		return statusPainter{}
	}
	return statusPainter{palette: theme.GetTheme(cfg.Theme)}
}

func (p statusPainter) char(code models.StatusCode) string {
	c := string(code.Char())
	if p.palette == nil {
		return c
	}
	return lipgloss.NewStyle().Foreground(p.palette.StatusColor(code)).Bold(true).Render(c)
}

func statusCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "status",
		Aliases:   []string{"st"},
		Usage:     "Show the status of the given paths",
		ArgsUsage: "PATH...",
		Action:    handleStatusAction,
		Flags:     []urfavecli.Flag{jsonFlag()},
	}
}

func handleStatusAction(ctx context.Context, cmd *urfavecli.Command) error {
	if cmd.NArg() == 0 {
		return fmt.Errorf("status: at least one path is required")
	}
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}

	args := cmd.Args().Slice()
	results := make([]entryJSON, 0, len(args))
	for _, arg := range args {
		target := arg
		if !filepath.IsAbs(target) {
			target = filepath.Join(s.cwd, target)
		}
		code, err := s.repo.StatusOf(target)
		if err != nil {
			return err
		}
		results = append(results, newEntryJSON(arg, code))
	}

	w := stdout(cmd)
	if wantJSON(cmd, s.cfg) {
		return writeJSON(w, results)
	}
	painter := newStatusPainter(s.cfg)
	for _, r := range results {
		fmt.Fprintf(w, "%s %s\n", painter.char(r.Status), r.Path)
	}
	return nil
}

func dirtyCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "dirty",
		Usage: "Report whether the working directory has changes (exit 1 when dirty)",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only set the exit status",
			},
		},
		Action: handleDirtyAction,
	}
}

func handleDirtyAction(ctx context.Context, cmd *urfavecli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	dirty := s.repo.IsDirty()
	if !cmd.Bool("quiet") {
		state := "clean"
		if dirty {
			state = "dirty"
		}
		fmt.Fprintln(stdout(cmd), state)
	}
	if dirty {
		return urfavecli.Exit("", 1)
	}
	return nil
}

func listCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:          "list",
		Aliases:       []string{"ls"},
		Usage:         "List status entries in the order hg reported them",
		Action:        handleListAction,
		ShellComplete: shellComplete,
		Flags: []urfavecli.Flag{
			jsonFlag(),
			&urfavecli.BoolFlag{
				Name:    "pristine",
				Aliases: []string{"p"},
				Usage:   "Output paths only (one per line, suitable for scripting)",
			},
			&urfavecli.StringSliceFlag{
				Name:  "only",
				Usage: "Only list these status codes, by character or name (e.g. --only=M,A,?)",
			},
			&urfavecli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Include clean and ignored files",
			},
			&urfavecli.BoolFlag{
				Name:  "summary",
				Usage: "Print the number of entries per status code",
			},
		},
	}
}

func validateListFlags(cmd *urfavecli.Command) error {
	if cmd.Bool("pristine") && cmd.Bool("json") {
		return fmt.Errorf("--pristine and --json are mutually exclusive")
	}
	if cmd.Bool("pristine") && cmd.Bool("summary") {
		return fmt.Errorf("--pristine and --summary are mutually exclusive")
	}
	return nil
}

// parseOnly turns --only values into status codes. Values may be comma
// separated and use either the status character or its name.
func parseOnly(values []string) ([]models.StatusCode, error) {
	var codes []models.StatusCode
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			var code models.StatusCode
			if err := code.UnmarshalText([]byte(part)); err != nil {
				return nil, fmt.Errorf("--only: %w", err)
			}
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// selectEntries applies --only, or the clean/ignored visibility settings
// when no explicit codes are requested.
func selectEntries(snapshot *hg.Snapshot, only []models.StatusCode, showClean, showIgnored bool) []models.TrackedEntry {
	if len(only) > 0 {
		return snapshot.Filter(only...)
	}
	var out []models.TrackedEntry
	for _, e := range snapshot.Entries() {
		if e.Status == models.StatusClean && !showClean {
			continue
		}
		if e.Status == models.StatusIgnored && !showIgnored {
			continue
		}
		out = append(out, e)
	}
	return out
}

func handleListAction(ctx context.Context, cmd *urfavecli.Command) error {
	if err := validateListFlags(cmd); err != nil {
		return err
	}
	only, err := parseOnly(cmd.StringSlice("only"))
	if err != nil {
		return err
	}
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}

	snapshot := s.repo.Snapshot()
	w := stdout(cmd)
	jsonOutput := wantJSON(cmd, s.cfg)

	if cmd.Bool("summary") {
		return outputSummary(w, snapshot, jsonOutput)
	}

	all := cmd.Bool("all")
	entries := selectEntries(snapshot, only, s.cfg.ShowClean || all, s.cfg.ShowIgnored || all)
	log.Printf("list: %d of %d entries", len(entries), snapshot.Len())

	switch {
	case jsonOutput:
		output := make([]entryJSON, 0, len(entries))
		for _, e := range entries {
			output = append(output, newEntryJSON(e.Path, e.Status))
		}
		return writeJSON(w, output)
	case cmd.Bool("pristine"):
		for _, e := range entries {
			fmt.Fprintln(w, e.Path)
		}
		return nil
	}

	painter := newStatusPainter(s.cfg)
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s\n", painter.char(e.Status), e.Path)
	}
	return nil
}

func outputSummary(w io.Writer, snapshot *hg.Snapshot, jsonOutput bool) error {
	counts := snapshot.Counts()
	if jsonOutput {
		output := make(map[string]int, len(counts))
		for code, n := range counts {
			output[code.String()] = n
		}
		return writeJSON(w, output)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSTATUS\tCOUNT")
	for _, code := range models.ParsedStatusCodes {
		if n := counts[code]; n > 0 {
			fmt.Fprintf(tw, "%c\t%s\t%d\n", code.Char(), code, n)
		}
	}
	return tw.Flush()
}

func rootCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "root",
		Usage: "Print the repository root",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout(cmd), s.repo.Root())
			return nil
		},
	}
}

func rawCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "raw",
		Usage: "Print the status capture exactly as hg produced it",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			// Raw keeps the empty piece after a final newline, so joining
			// reproduces the capture byte for byte
			_, err = io.WriteString(stdout(cmd), strings.Join(s.repo.Snapshot().Raw(), "\n"))
			return err
		},
	}
}
