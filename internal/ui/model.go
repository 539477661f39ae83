// Package ui implements the interactive, read-only status viewer.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/hgstat/internal/config"
	"github.com/chmouel/hgstat/internal/hg"
	log "github.com/chmouel/hgstat/internal/log"
	"github.com/chmouel/hgstat/internal/models"
	"github.com/chmouel/hgstat/internal/theme"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// header, counts, filter and footer lines around the table
	chromeHeight = 5
)

// Model is the bubbletea model of the viewer.
type Model struct {
	repo   *hg.Repository
	events <-chan struct{}
	styles styles

	table         table.Model
	filterInput   textinput.Model
	showingFilter bool
	filterQuery   string

	snapshot    *hg.Snapshot
	visible     []models.TrackedEntry
	showClean   bool
	showIgnored bool
	showIcons   bool

	refreshing  bool
	pending     bool
	lastErr     error
	lastRefresh time.Time

	width    int
	height   int
	quitting bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewModel builds a viewer over repo. events may be nil, in which case the
// viewer only refreshes on demand.
func NewModel(repo *hg.Repository, cfg *config.AppConfig, events <-chan struct{}) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	st := newStyles(theme.GetTheme(cfg.Theme))

	t := table.New(
		table.WithColumns(columnsFor(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(defaultHeight-chromeHeight),
	)
	t.SetStyles(st.table)

	filterInput := textinput.New()
	filterInput.Placeholder = "Filter paths..."
	filterInput.Prompt = "/ "
	filterInput.Width = 50

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		repo:        repo,
		events:      events,
		styles:      st,
		table:       t,
		filterInput: filterInput,
		snapshot:    repo.Snapshot(),
		showClean:   cfg.ShowClean,
		showIgnored: cfg.ShowIgnored,
		showIcons:   cfg.ShowIcons,
		lastRefresh: time.Now(),
		width:       defaultWidth,
		height:      defaultHeight,
		ctx:         ctx,
		cancel:      cancel,
	}
	m.rebuild()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForWatchEvent()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.showingFilter {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)

	case refreshedMsg:
		m.refreshing = false
		if msg.err != nil {
			log.Printf("ui: refresh failed: %v", msg.err)
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
			m.snapshot = msg.snapshot
			m.lastRefresh = msg.at
			m.rebuild()
		}
		if m.pending {
			m.pending = false
			return m, m.startRefresh()
		}
		return m, nil

	case watchEventMsg:
		return m, tea.Batch(m.startRefresh(), m.waitForWatchEvent())

	case watchClosedMsg:
		m.events = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case "r":
		return m, m.startRefresh()
	case "c":
		m.showClean = !m.showClean
		m.rebuild()
		return m, nil
	case "i":
		m.showIgnored = !m.showIgnored
		m.rebuild()
		return m, nil
	case "f", "/":
		m.showingFilter = true
		m.filterInput.SetValue(m.filterQuery)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()
	case "esc":
		if m.filterQuery != "" {
			m.filterQuery = ""
			m.rebuild()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.showingFilter = false
		m.filterInput.Blur()
		return m, nil
	case "esc", "ctrl+c":
		m.showingFilter = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.filterQuery = ""
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if q := strings.TrimSpace(m.filterInput.Value()); q != m.filterQuery {
		m.filterQuery = q
		m.rebuild()
	}
	return m, cmd
}

// startRefresh runs one Refresh in the background. Only one runs at a time;
// a request arriving meanwhile is folded into a single follow-up.
func (m *Model) startRefresh() tea.Cmd {
	if m.refreshing {
		m.pending = true
		return nil
	}
	m.refreshing = true
	repo, ctx := m.repo, m.ctx
	return func() tea.Msg {
		err := repo.Refresh(ctx)
		return refreshedMsg{snapshot: repo.Snapshot(), err: err, at: time.Now()}
	}
}

func (m *Model) waitForWatchEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return watchClosedMsg{}
		}
		return watchEventMsg{}
	}
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.table.SetColumns(columnsFor(width))
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-chromeHeight, 1))
	m.filterInput.Width = max(width-4, 10)
	m.rebuild()
}

func (m *Model) rebuild() {
	m.visible = m.visibleEntries()
	m.table.SetRows(m.rows())
	if n := len(m.visible); m.table.Cursor() >= n {
		m.table.SetCursor(max(n-1, 0))
	}
}

func (m *Model) visibleEntries() []models.TrackedEntry {
	query := strings.ToLower(m.filterQuery)
	entries := m.snapshot.Entries()
	out := make([]models.TrackedEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status == models.StatusClean && !m.showClean {
			continue
		}
		if e.Status == models.StatusIgnored && !m.showIgnored {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Path), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Selected returns the entry under the cursor.
func (m *Model) Selected() (models.TrackedEntry, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return models.TrackedEntry{}, false
	}
	return m.visible[idx], true
}
