package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/chmouel/hgstat/internal/models"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
)

const (
	charColWidth   = 2
	statusColWidth = 11
	// cell padding on both sides of three columns
	tablePadding = 6
)

func columnsFor(width int) []table.Column {
	pathWidth := max(width-charColWidth-statusColWidth-tablePadding, 10)
	return []table.Column{
		{Title: "", Width: charColWidth},
		{Title: "Status", Width: statusColWidth},
		{Title: "Path", Width: pathWidth},
	}
}

func (m *Model) pathWidth() int {
	cols := m.table.Columns()
	if len(cols) < 3 {
		return 10
	}
	return cols[2].Width
}

func (m *Model) rows() []table.Row {
	width := m.pathWidth()
	rows := make([]table.Row, 0, len(m.visible))
	for _, e := range m.visible {
		rows = append(rows, table.Row{
			string(e.Status.Char()),
			e.Status.String(),
			truncate.StringWithTail(m.decoratePath(e), uint(width), "…"),
		})
	}
	return rows
}

func (m *Model) decoratePath(e models.TrackedEntry) string {
	if !m.showIcons {
		return e.Path
	}
	icon := iconForPath(e.Path, e.Status == models.StatusDirectory)
	if e.Status == models.StatusMissing {
		icon = iconMissing
	}
	return iconWithSpace(icon) + e.Path
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCounts())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if m.showingFilter {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	} else if m.filterQuery != "" {
		b.WriteString(m.styles.filter.Render("filter: " + m.filterQuery))
		b.WriteString("\n")
	}
	if m.lastErr != nil {
		b.WriteString(m.styles.err.Render(wrap.String("refresh failed: "+m.lastErr.Error(), m.width)))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.styles.title.Render("hgstat")
	root := truncate.StringWithTail(m.repo.Root(), uint(max(m.width-len("hgstat  "), 10)), "…")
	return title + "  " + m.styles.muted.Render(root)
}

func (m *Model) renderCounts() string {
	counts := m.snapshot.Counts()
	parts := make([]string, 0, len(models.ParsedStatusCodes))
	for _, code := range models.ParsedStatusCodes {
		n := counts[code]
		if n == 0 {
			continue
		}
		parts = append(parts, m.styles.status(code).Render(fmt.Sprintf("%c %d", code.Char(), n)))
	}
	if len(parts) == 0 {
		return m.styles.muted.Render("no files")
	}
	shown := m.styles.muted.Render(fmt.Sprintf("(%d shown)", len(m.visible)))
	return strings.Join(parts, "  ") + "  " + shown
}

func (m *Model) renderFooter() string {
	toggle := func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	}
	help := fmt.Sprintf("r refresh · c clean:%s · i ignored:%s · / filter · q quit",
		toggle(m.showClean), toggle(m.showIgnored))
	if m.refreshing {
		help = "refreshing… · " + help
	} else if !m.lastRefresh.IsZero() {
		help = "updated " + m.lastRefresh.Format("15:04:05") + " · " + help
	}
	return m.styles.muted.Render(truncate.StringWithTail(help, uint(m.width), "…"))
}
