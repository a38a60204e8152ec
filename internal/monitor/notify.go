package monitor

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/controller"
)

// maxToasts caps how many notifications stack up at once.
const maxToasts = 4

// toast is one on-screen notification.
type toast struct {
	id      int
	level   controller.Level
	message string
	at      time.Time
}

// toastExpiredMsg removes a toast once its duration has passed.
type toastExpiredMsg struct {
	id int
}

// toastIcon maps a level to its glyph: check, cross, triangle, info.
func toastIcon(l controller.Level) string {
	switch l {
	case controller.LevelSuccess:
		return "✓"
	case controller.LevelError:
		return "✗"
	case controller.LevelWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

func toastColor(l controller.Level) lipgloss.Color {
	switch l {
	case controller.LevelSuccess:
		return ColorHealthy
	case controller.LevelError:
		return ColorCritical
	case controller.LevelWarning:
		return ColorWarning
	default:
		return ColorInfo
	}
}

// toast queues a notification and returns the command that dismisses it.
// A zero duration keeps toasts until they're pushed out by newer ones.
func (m *Model) toast(level controller.Level, message string) tea.Cmd {
	m.nextToast++
	t := toast{id: m.nextToast, level: level, message: message, at: m.now()}

	m.toasts = append(m.toasts, t)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}

	if m.toastTTL <= 0 {
		return nil
	}
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: t.id}
	})
}

func (m *Model) dismissToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// renderToasts stacks notifications against the right edge, newest last.
func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(toastColor(t.level)).
			PaddingLeft(1)
		icon := lipgloss.NewStyle().Foreground(toastColor(t.level)).Render(toastIcon(t.level))
		lines = append(lines, style.Render(icon+" "+t.message))
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, strings.Join(lines, "\n"))
}
