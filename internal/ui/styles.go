package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/aanand-mishra/student-roster/internal/notify"
	"github.com/aanand-mishra/student-roster/internal/state"
)

type palette struct {
	text, muted, accent, danger, success, border lipgloss.Color
}

var palettes = map[state.Theme]palette{
	state.ThemeLight: {text: "#1f2933", muted: "#7b8794", accent: "#2f6fed", danger: "#c62828", success: "#2e7d32", border: "#cbd2d9"},
	state.ThemeDark:  {text: "#e4e7eb", muted: "#9aa5b1", accent: "#7aa2f7", danger: "#f7768e", success: "#9ece6a", border: "#3e4c59"},
}

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	stat    lipgloss.Style
	box     lipgloss.Style
	label   lipgloss.Style
	focused lipgloss.Style
	toast   map[notify.Severity]lipgloss.Style
	table   table.Styles
}

func stylesFor(t state.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[state.ThemeLight]
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.border).
		BorderBottom(true).
		Bold(true).
		Foreground(p.text)
	ts.Cell = ts.Cell.Foreground(p.text)
	ts.Selected = ts.Selected.Foreground(p.accent).Bold(true)

	toast := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		muted:   lipgloss.NewStyle().Foreground(p.muted),
		err:     lipgloss.NewStyle().Foreground(p.danger),
		stat:    lipgloss.NewStyle().Foreground(p.text).Padding(0, 2, 0, 0),
		box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(1, 2),
		label:   lipgloss.NewStyle().Foreground(p.muted).Width(16),
		focused: lipgloss.NewStyle().Foreground(p.accent).Bold(true).Width(16),
		toast: map[notify.Severity]lipgloss.Style{
			notify.Info:    toast.BorderForeground(p.border).Foreground(p.text),
			notify.Success: toast.BorderForeground(p.success).Foreground(p.success),
			notify.Error:   toast.BorderForeground(p.danger).Foreground(p.danger),
		},
		table: ts,
	}
}
