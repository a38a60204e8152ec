package monitor

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/widget"
)

// ChartView is a read-only copy of one chart's current state.
type ChartView struct {
	Name      string
	Kind      widget.Kind
	Options   widget.Options
	Data      api.ChartData
	UpdatedAt time.Time
	Resizes   int
}

// ChartUpdatedMsg is sent when a chart's data changes.
type ChartUpdatedMsg struct {
	Name string
}

// MetricsUpdatedMsg is sent when a new metrics snapshot arrives.
type MetricsUpdatedMsg struct {
	Snapshot api.MetricsSnapshot
}

// chart is the handle Canvas hands out from Create.
type chart struct {
	owner     *Canvas
	view      ChartView
	destroyed bool
}

// Canvas is the terminal chart renderer. It keeps chart state in memory
// and the dashboard model draws it on each frame. It also receives live
// metrics snapshots. Safe for concurrent use.
type Canvas struct {
	mu      sync.RWMutex
	charts  []*chart
	metrics api.MetricsSnapshot
	notify  func(tea.Msg)
	now     func() time.Time
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{now: time.Now}
}

// SetNotifier sets the func used to tell the UI something changed,
// typically Bridge.Send.
func (c *Canvas) SetNotifier(fn func(tea.Msg)) {
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

func (c *Canvas) send(msg tea.Msg) {
	c.mu.RLock()
	fn := c.notify
	c.mu.RUnlock()
	if fn != nil {
		fn(msg)
	}
}

// Create implements widget.Renderer.
func (c *Canvas) Create(kind widget.Kind, container string, data api.ChartData, opts widget.Options) (widget.Handle, error) {
	switch kind {
	case widget.KindLine, widget.KindArea, widget.KindDoughnut, widget.KindRadar, widget.KindBar:
	default:
		return nil, errors.New(errors.ErrRender,
			fmt.Sprintf("Can't draw chart '%s': unknown kind '%s'", container, kind),
			"Use line, area, doughnut, radar, or bar")
	}

	ch := &chart{
		owner: c,
		view: ChartView{
			Name:      container,
			Kind:      kind,
			Options:   opts,
			Data:      data,
			UpdatedAt: c.now(),
		},
	}

	c.mu.Lock()
	c.charts = append(c.charts, ch)
	c.mu.Unlock()

	c.send(ChartUpdatedMsg{Name: container})
	return ch, nil
}

// Update implements widget.Renderer.
func (c *Canvas) Update(h widget.Handle, data api.ChartData) error {
	c.mu.Lock()
	ch, err := c.chartFor(h)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	ch.view.Data = data
	ch.view.UpdatedAt = c.now()
	name := ch.view.Name
	c.mu.Unlock()

	c.send(ChartUpdatedMsg{Name: name})
	return nil
}

// Resize implements widget.Renderer. Layout is recomputed on every frame,
// so this only records that the chart was asked to reflow.
func (c *Canvas) Resize(h widget.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, err := c.chartFor(h); err == nil {
		ch.view.Resizes++
	}
}

// Destroy implements widget.Renderer.
func (c *Canvas) Destroy(h widget.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.chartFor(h)
	if err != nil {
		return
	}
	ch.destroyed = true
	for i, other := range c.charts {
		if other == ch {
			c.charts = append(c.charts[:i], c.charts[i+1:]...)
			break
		}
	}
}

// chartFor resolves a handle. Callers hold c.mu.
func (c *Canvas) chartFor(h widget.Handle) (*chart, error) {
	ch, ok := h.(*chart)
	if !ok || ch == nil || ch.owner != c {
		return nil, errors.New(errors.ErrRender, "Chart handle doesn't belong to this dashboard", "")
	}
	if ch.destroyed {
		return nil, errors.New(errors.ErrRender,
			fmt.Sprintf("Chart '%s' was already destroyed", ch.view.Name), "")
	}
	return ch, nil
}

// Charts returns the live charts in creation order.
func (c *Canvas) Charts() []ChartView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ChartView, len(c.charts))
	for i, ch := range c.charts {
		out[i] = ch.view
	}
	return out
}

// Chart returns one chart by name.
func (c *Canvas) Chart(name string) (ChartView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.charts {
		if ch.view.Name == name {
			return ch.view, true
		}
	}
	return ChartView{}, false
}

// ApplyMetrics stores the latest metrics snapshot.
func (c *Canvas) ApplyMetrics(s api.MetricsSnapshot) {
	c.mu.Lock()
	c.metrics = s
	c.mu.Unlock()
	c.send(MetricsUpdatedMsg{Snapshot: s})
}

// Metrics returns the latest metrics snapshot.
func (c *Canvas) Metrics() api.MetricsSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics
}
