package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/config"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Tier colors, matching the web dashboard's green/amber/red.
	ColorHealthy  = lipgloss.Color("#10B981")
	ColorWarning  = lipgloss.Color("#F59E0B")
	ColorCritical = lipgloss.Color("#EF4444")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")
	ColorInfo      = lipgloss.Color("#3B82F6")

	ColorGraph = lipgloss.Color("#00FFFF")
)

// SeriesColors color datasets and doughnut slices in order.
var SeriesColors = []lipgloss.Color{
	lipgloss.Color("#667EEA"),
	lipgloss.Color("#764BA2"),
	lipgloss.Color("#F093FB"),
	lipgloss.Color("#F5576C"),
	lipgloss.Color("#4FACFE"),
	lipgloss.Color("#43E97B"),
}

// SeriesColor returns the color for the i-th series, cycling.
func SeriesColor(i int) lipgloss.Color {
	return SeriesColors[i%len(SeriesColors)]
}

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	PanelSelectedStyle = PanelStyle.
				BorderForeground(ColorAccent)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Tier is the severity band of a percentage metric.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// Color returns the tier's display color.
func (t Tier) Color() lipgloss.Color {
	switch t {
	case TierHigh:
		return ColorCritical
	case TierMedium:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// TierFor classifies percent. Boundaries are exclusive: a value equal to
// a threshold falls in the tier below it.
func TierFor(percent float64, t config.ThresholdConfig) Tier {
	switch {
	case percent > t.High:
		return TierHigh
	case percent > t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// MetricStyle returns a style colored by percent's tier.
func MetricStyle(percent float64, t config.ThresholdConfig) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TierFor(percent, t).Color())
}

// ProgressBar renders a tier-colored bar of width cells.
func ProgressBar(width int, percent float64, t config.ThresholdConfig) string {
	if width < 1 {
		width = 1
	}
	filled := int(clampPercent(percent) / 100 * float64(width))

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return MetricStyle(percent, t).Render(bar)
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// SectionHeader renders a panel top border with the title on the left and
// value on the right:
//
//	╭─ Title ─────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	fill := width - leftWidth - rightWidth
	if fill < 1 {
		fill = 1
	}

	border := lipgloss.NewStyle().Foreground(ColorBorder)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return border.Render("╭─ ") +
		TitleStyle.Render(title) +
		border.Render(" "+strings.Repeat("─", fill)+" ") +
		valueStyle.Render(value) +
		border.Render(" ╮")
}

// SectionFooter renders a panel bottom border.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine pads content between panel side borders.
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}
	border := lipgloss.NewStyle().Foreground(ColorBorder)

	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}
	return border.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + border.Render("│")
}

// Section renders lines inside a bordered panel with a header.
func Section(title, value string, lines []string, width int) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, SectionHeader(title, value, width))
	for _, l := range lines {
		out = append(out, SectionContentLine(l, width))
	}
	out = append(out, SectionFooter(width))
	return strings.Join(out, "\n")
}
