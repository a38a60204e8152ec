package monitor

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// msgLog records what a Canvas sends to the program.
type msgLog struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (l *msgLog) send(msg tea.Msg) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *msgLog) all() []tea.Msg {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]tea.Msg(nil), l.msgs...)
}

func salesData() api.ChartData {
	return api.ChartData{
		Labels:   []string{"Q1"},
		Datasets: []api.Dataset{{Label: "Sales", Data: []float64{100}}},
	}
}

func TestCanvas_CreateAndUpdate(t *testing.T) {
	c := NewCanvas()
	log := &msgLog{}
	c.SetNotifier(log.send)

	h, err := c.Create(widget.KindLine, "sales", api.ChartData{}, widget.Options{Title: "Sales"})
	require.NoError(t, err)

	view, ok := c.Chart("sales")
	require.True(t, ok)
	assert.True(t, view.Data.Empty())
	assert.Equal(t, "Sales", view.Options.Title)

	require.NoError(t, c.Update(h, salesData()))
	view, _ = c.Chart("sales")
	assert.Equal(t, []string{"Q1"}, view.Data.Labels)

	assert.Equal(t, []tea.Msg{
		ChartUpdatedMsg{Name: "sales"},
		ChartUpdatedMsg{Name: "sales"},
	}, log.all())
}

func TestCanvas_UnknownKind(t *testing.T) {
	c := NewCanvas()
	_, err := c.Create(widget.Kind("pie"), "x", api.ChartData{}, widget.Options{})
	assert.True(t, errors.IsCode(err, errors.ErrRender))
	assert.Empty(t, c.Charts())
}

func TestCanvas_BadHandles(t *testing.T) {
	c := NewCanvas()
	other := NewCanvas()

	foreign, err := other.Create(widget.KindBar, "x", api.ChartData{}, widget.Options{})
	require.NoError(t, err)
	assert.True(t, errors.IsCode(c.Update(foreign, salesData()), errors.ErrRender))
	assert.True(t, errors.IsCode(c.Update("not a handle", salesData()), errors.ErrRender))

	h, err := c.Create(widget.KindBar, "y", api.ChartData{}, widget.Options{})
	require.NoError(t, err)
	c.Destroy(h)
	assert.True(t, errors.IsCode(c.Update(h, salesData()), errors.ErrRender))

	// Destroying twice or destroying garbage is harmless.
	c.Destroy(h)
	c.Destroy(nil)
}

func TestCanvas_ChartsKeepCreationOrder(t *testing.T) {
	c := NewCanvas()
	var handles []widget.Handle
	for _, name := range []string{"sales", "userGrowth", "revenue"} {
		h, err := c.Create(widget.KindLine, name, api.ChartData{}, widget.Options{})
		require.NoError(t, err)
		handles = append(handles, h)
	}

	c.Destroy(handles[1])

	var names []string
	for _, v := range c.Charts() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"sales", "revenue"}, names)
}

func TestCanvas_Resize(t *testing.T) {
	c := NewCanvas()
	h, err := c.Create(widget.KindLine, "sales", api.ChartData{}, widget.Options{})
	require.NoError(t, err)

	c.Resize(h)
	c.Resize(h)
	view, _ := c.Chart("sales")
	assert.Equal(t, 2, view.Resizes)
}

func TestCanvas_ApplyMetrics(t *testing.T) {
	c := NewCanvas()
	log := &msgLog{}
	c.SetNotifier(log.send)

	snap := api.MetricsSnapshot{CPUUsage: 42, FetchedAt: time.Unix(100, 0)}
	c.ApplyMetrics(snap)

	assert.Equal(t, snap, c.Metrics())
	assert.Equal(t, []tea.Msg{MetricsUpdatedMsg{Snapshot: snap}}, log.all())
}

func TestCanvas_ConcurrentUpdates(t *testing.T) {
	c := NewCanvas()
	h, err := c.Create(widget.KindLine, "sales", api.ChartData{}, widget.Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Update(h, salesData()))
			_ = c.Charts()
		}()
	}
	wg.Wait()

	view, _ := c.Chart("sales")
	assert.Equal(t, salesData(), view.Data)
}
