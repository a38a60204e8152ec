package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/controller"
)

// Periods the sales view cycles through. Empty is the backend default.
var Periods = []string{"", "week", "month", "quarter", "year"}

// PeriodWidget is the widget whose time window [ and ] change.
const PeriodWidget = "sales"

// keyMap holds every dashboard binding. It implements help.KeyMap.
type keyMap struct {
	RefreshAll key.Binding
	Refresh    key.Binding
	Next       key.Binding
	Prev       key.Binding
	PeriodNext key.Binding
	PeriodPrev key.Binding
	Export     key.Binding
	Predict    key.Binding
	Help       key.Binding
	Close      key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	RefreshAll: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh all")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh selected")),
	Next:       key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next chart")),
	Prev:       key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "previous chart")),
	PeriodNext: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next sales period")),
	PeriodPrev: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous sales period")),
	Export:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export snapshot")),
	Predict:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "run a prediction")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp is the footer line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.RefreshAll, k.Refresh, k.Next, k.Predict, k.Help, k.Quit}
}

// FullHelp is the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.RefreshAll, k.Refresh, k.Next, k.Prev},
		{k.PeriodNext, k.PeriodPrev, k.Export, k.Predict},
		{k.Help, k.Close, k.Quit},
	}
}

// nextPeriod steps through Periods by delta, wrapping.
func nextPeriod(current string, delta int) string {
	idx := 0
	for i, p := range Periods {
		if p == current {
			idx = i
			break
		}
	}
	n := len(Periods)
	return Periods[((idx+delta)%n+n)%n]
}

// HandleKeyMsg processes keyboard input outside the prediction form.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if key.Matches(msg, keys.Close) {
		switch {
		case m.showHelp:
			m.showHelp = false
		case m.result != nil:
			m.result = nil
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return true, m.quitCmd()

	case key.Matches(msg, keys.RefreshAll):
		return true, tea.Batch(
			m.toast(controller.LevelInfo, "Refreshing charts..."),
			m.refreshAllCmd(),
		)

	case key.Matches(msg, keys.Refresh):
		name := m.selectedName()
		if name == "" {
			return true, nil
		}
		return true, m.refreshOneCmd(name)

	case key.Matches(msg, keys.Next):
		m.moveSelection(1)
		return true, nil

	case key.Matches(msg, keys.Prev):
		m.moveSelection(-1)
		return true, nil

	case key.Matches(msg, keys.PeriodNext):
		return true, m.setPeriodCmd(nextPeriod(m.periods[PeriodWidget], 1))

	case key.Matches(msg, keys.PeriodPrev):
		return true, m.setPeriodCmd(nextPeriod(m.periods[PeriodWidget], -1))

	case key.Matches(msg, keys.Export):
		return true, m.exportCmd()

	case key.Matches(msg, keys.Predict):
		return true, m.openPredictForm()
	}

	return false, nil
}
