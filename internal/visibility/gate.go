// Package visibility pauses the metrics poll while pulse is in the background.
package visibility

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/logger"
)

// Pausable is anything that can be stopped and started, like a poll.Scheduler.
type Pausable interface {
	Start(ctx context.Context) bool
	Stop() bool
}

// Gate forwards visibility changes to a Pausable. Repeated identical
// signals are ignored.
type Gate struct {
	mu      sync.Mutex
	ctx     context.Context
	target  Pausable
	visible bool
	log     logger.Logger
}

// New creates a gate that starts out visible. ctx is passed to every
// Start on the target.
func New(ctx context.Context, target Pausable, log logger.Logger) *Gate {
	if log == nil {
		log = logger.Noop()
	}
	return &Gate{ctx: ctx, target: target, visible: true, log: log}
}

// Visible reports the last known visibility.
func (g *Gate) Visible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible
}

// Set records a visibility signal. Going hidden stops the target, going
// visible starts it. Returns whether this was a transition.
func (g *Gate) Set(visible bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if visible == g.visible {
		return false
	}
	g.visible = visible

	if visible {
		g.log.Debug("visible again, resuming poll")
		g.target.Start(g.ctx)
	} else {
		g.log.Debug("hidden, pausing poll")
		g.target.Stop()
	}
	return true
}

// HandleMsg maps terminal focus reports onto Set. It returns true when msg
// was a focus or blur message, whether or not it changed anything.
func (g *Gate) HandleMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.FocusMsg:
		g.Set(true)
		return true
	case tea.BlurMsg:
		g.Set(false)
		return true
	}
	return false
}
