package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/hgstat/internal/models"
	"github.com/chmouel/hgstat/internal/theme"
)

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	filter  lipgloss.Style
	table   table.Styles
	palette *theme.Theme
}

func newStyles(t *theme.Theme) styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Foreground(t.MutedFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true)
	ts.Cell = ts.Cell.Foreground(t.TextFg)
	ts.Selected = ts.Selected.
		Foreground(t.AccentFg).
		Background(t.Accent).
		Bold(true)

	return styles{
		title:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(t.MutedFg),
		err:     lipgloss.NewStyle().Foreground(t.ErrorFg).Bold(true),
		filter:  lipgloss.NewStyle().Foreground(t.Accent),
		table:   ts,
		palette: t,
	}
}

func (s styles) status(code models.StatusCode) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.palette.StatusColor(code)).Bold(true)
}
