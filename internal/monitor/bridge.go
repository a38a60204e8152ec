package monitor

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/controller"
)

// EventMsg carries a controller event into the UI.
type EventMsg struct {
	Event controller.Event
}

// Bridge forwards events from background goroutines to the Bubble Tea
// program via program.Send(). This is goroutine-safe. Messages sent before
// Attach are dropped.
type Bridge struct {
	program atomic.Pointer[tea.Program]
}

// NewBridge creates a bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach points the bridge at a program.
func (b *Bridge) Attach(p *tea.Program) {
	b.program.Store(p)
}

// Send forwards msg to the attached program.
func (b *Bridge) Send(msg tea.Msg) {
	if p := b.program.Load(); p != nil {
		p.Send(msg)
	}
}

// Report implements controller.Reporter.
func (b *Bridge) Report(e controller.Event) {
	b.Send(EventMsg{Event: e})
}
