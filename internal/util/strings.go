// Package util holds small text helpers shared by the renderers and the CLI.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// JoinOrNone joins strings with ", " or returns "(none)" for empty slices.
func JoinOrNone(items []string) string {
	return JoinOrDefault(items, "(none)")
}

// JoinOrDefault joins strings with ", " or returns the default value for empty slices.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Truncate cuts s to w runes, ending with an ellipsis when anything was cut.
func Truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return string(r[:1])
	}
	return string(r[:w-1]) + "…"
}

// PadRight pads s with spaces to width terminal cells. Styled strings are
// measured without their escape codes. Longer strings are left alone.
func PadRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// Fit truncates and pads s to exactly w cells.
func Fit(s string, w int) string {
	return PadRight(Truncate(s, w), w)
}
