package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Width breakpoints for the chart grid.
const (
	BreakpointTwoColumn = 100
	defaultWidth        = 80
	defaultHeight       = 24
	minChartRows        = 3
	metricsPanelHeight  = 6
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.width == 0 {
		m.width, m.height = defaultWidth, defaultHeight
	}

	switch {
	case m.showHelp:
		return m.renderHelpOverlay()
	case m.form != nil:
		return m.overlay(formBoxStyle.Render(TitleStyle.Render("Run a prediction") + "\n\n" + m.form.View()))
	case m.predicting:
		return m.overlay(formBoxStyle.Render(m.spinner.View() + " Running prediction..."))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString(toasts)
		b.WriteString("\n")
	}

	if !m.created {
		b.WriteString(m.spinner.View() + LabelStyle.Render(" Loading charts..."))
	} else {
		b.WriteString(m.renderCharts())
		b.WriteString("\n")
		b.WriteString(m.renderSidePanels())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title bar with the backend address and clock.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("pulse")

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + m.title + " | " + m.now().Format("15:04:05"))

	return HeaderStyle.Render(title + stats)
}

// columns returns how many chart panels fit per row.
func (m Model) columns() int {
	if m.width >= BreakpointTwoColumn {
		return 2
	}
	return 1
}

// renderCharts lays the chart panels out in a grid.
func (m Model) renderCharts() string {
	charts := m.board.Charts()
	if len(charts) == 0 {
		if m.loadErr != nil {
			return LabelStyle.Render("No charts: ") + MutedStyle.Render(m.loadErr.Error())
		}
		return LabelStyle.Render("No charts configured")
	}

	cols := m.columns()
	panelWidth := m.width / cols
	rows := (len(charts) + cols - 1) / cols

	avail := m.height - 2 - metricsPanelHeight
	contentRows := avail/rows - 2
	if contentRows < minChartRows {
		contentRows = minChartRows
	}

	var panels []string
	for i, c := range charts {
		panels = append(panels, m.renderChartPanel(c, i == m.selected, panelWidth, contentRows))
	}

	var grid []string
	for i := 0; i < len(panels); i += cols {
		end := min(i+cols, len(panels))
		grid = append(grid, lipgloss.JoinHorizontal(lipgloss.Top, panels[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, grid...)
}

func (m Model) renderChartPanel(c ChartView, selected bool, width, height int) string {
	title := c.Options.Title
	if title == "" {
		title = c.Name
	}
	if p := m.periods[c.Name]; p != "" {
		title += " · " + p
	}
	if selected {
		title = "▸ " + title
	}

	lines := RenderChart(c, width-4, height)
	for len(lines) < height {
		lines = append(lines, "")
	}
	return Section(title, chartSummary(c), lines, width)
}

// renderSidePanels draws the metrics panel and, if there is one, the last
// prediction result.
func (m Model) renderSidePanels() string {
	cols := m.columns()
	if m.result == nil || cols == 1 {
		out := RenderMetrics(m.board.Metrics(), m.thresholds, m.width, m.now())
		if m.result != nil {
			out += "\n" + RenderPrediction(*m.result, m.width)
		}
		return out
	}

	half := m.width / 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		RenderMetrics(m.board.Metrics(), m.thresholds, half, m.now()),
		RenderPrediction(*m.result, m.width-half),
	)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.View(keys))
}
