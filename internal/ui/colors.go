package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors use plain ANSI codes so they follow the user's terminal
// theme.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors cycle through the spinner frames.
var GradientColors = []lipgloss.Color{
	lipgloss.Color("#FF2E97"),
	lipgloss.Color("#BF40FF"),
	lipgloss.Color("#00FFFF"),
	lipgloss.Color("#10B981"),
}

// StatusStyle colors s green when ok and red otherwise.
func StatusStyle(ok bool) lipgloss.Style {
	if ok {
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	}
	return lipgloss.NewStyle().Foreground(ColorError)
}

// Muted renders s in the muted color.
func Muted(s string) string {
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(s)
}
