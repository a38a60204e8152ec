package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/util"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-interactive Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2), // header line plus its bottom border
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused, so the selected row must look like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a plain table string for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	view := NewTable(columns, tableRows).View()
	lines := strings.Split(view, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// OutcomeRow is one widget's line in a refresh report.
type OutcomeRow struct {
	Widget   string
	OK       bool
	Detail   string // point count on success, error summary on failure
	Duration string
}

// RenderOutcomes renders a refresh report with a colored status column.
func RenderOutcomes(rows []OutcomeRow) string {
	if len(rows) == 0 {
		return "No widgets configured\n"
	}

	width := len("WIDGET")
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Widget))
	}
	width += 2

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var b strings.Builder
	b.WriteString(headerStyle.Render("  " + util.PadRight("WIDGET", width) + util.PadRight("TIME", 8) + "RESULT"))
	b.WriteString("\n")

	for _, r := range rows {
		symbol := SymbolSuccess
		if !r.OK {
			symbol = SymbolFail
		}
		style := StatusStyle(r.OK)

		detail := Muted(r.Detail)
		if !r.OK {
			detail = style.Render(r.Detail)
		}
		b.WriteString(style.Render(symbol) + " " + util.PadRight(r.Widget, width) + util.PadRight(Muted(r.Duration), 8) + detail + "\n")
	}
	return b.String()
}
