// Package controller keeps pulse's chart widgets and live metrics in sync
// with the backend.
//
// A Controller owns the widget registry, the refresh orchestrator, the
// metrics poll and the visibility gate. The host creates one explicitly,
// calls Create once the renderer is ready and Destroy on the way out.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/poll"
	"github.com/rileyhilliard/pulse/internal/refresh"
	"github.com/rileyhilliard/pulse/internal/visibility"
	"github.com/rileyhilliard/pulse/internal/widget"
)

// Client is the backend the controller reads from. *api.Client satisfies it.
type Client interface {
	FetchChart(ctx context.Context, source, period string) (api.ChartData, error)
	FetchMetrics(ctx context.Context) (api.MetricsSnapshot, error)
	Predict(ctx context.Context, req api.PredictionRequest) (api.PredictionResult, error)
}

// MetricsSink displays the latest metrics snapshot.
type MetricsSink interface {
	ApplyMetrics(api.MetricsSnapshot)
}

// Controller synchronizes widgets with the backend.
type Controller struct {
	cfg      *config.Config
	client   Client
	renderer widget.Renderer
	sink     MetricsSink
	reporter Reporter
	log      logger.Logger
	ticker   poll.TickerFactory
	now      func() time.Time

	registry *widget.Registry
	orch     *refresh.Orchestrator
	sched    *poll.Scheduler
	gate     *visibility.Gate

	mu        sync.Mutex
	created   bool
	destroyed bool
	cancel    context.CancelFunc
	periods   map[string]string
	metrics   api.MetricsSnapshot
}

// Option configures a Controller.
type Option func(*Controller)

// WithReporter sets where events go.
func WithReporter(r Reporter) Option {
	return func(c *Controller) { c.reporter = r }
}

// WithLogger sets the logger shared by the controller's components.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithTicker overrides the poll ticker, for tests.
func WithTicker(f poll.TickerFactory) Option {
	return func(c *Controller) { c.ticker = f }
}

// New wires a controller. Nothing is fetched or drawn until Create.
func New(cfg *config.Config, client Client, renderer widget.Renderer, sink MetricsSink, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		client:   client,
		renderer: renderer,
		sink:     sink,
		reporter: ReporterFunc(func(Event) {}),
		log:      logger.Noop(),
		now:      time.Now,
		periods:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.registry = widget.NewRegistry(renderer)
	c.orch = refresh.New(c.registry, renderer, refresh.FetcherFunc(c.fetchWidget),
		refresh.WithTimeout(cfg.API.Timeout),
		refresh.WithLogger(c.log),
		refresh.WithReporter(c.reportOutcome))

	pollOpts := []poll.Option{
		poll.WithLogger(c.log),
		poll.WithErrorHandler(c.reportMetricsError),
	}
	if c.ticker != nil {
		pollOpts = append(pollOpts, poll.WithTicker(c.ticker))
	}
	c.sched = poll.New(cfg.Poll.Interval, c.pollMetrics, pollOpts...)

	return c
}

// Create fetches every configured widget's initial data concurrently,
// creates and registers the charts in config order, then starts the
// metrics poll. A widget whose first fetch fails is created empty and
// reported, so a later refresh can fill it in. ctx bounds the controller's
// lifetime. A second call is a no-op.
func (c *Controller) Create(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.created || c.destroyed {
		return nil
	}

	widgets := c.cfg.Widgets
	initial := make([]api.ChartData, len(widgets))
	failed := make([]error, len(widgets))

	var wg sync.WaitGroup
	for i, w := range widgets {
		wg.Add(1)
		go func(i int, w config.WidgetConfig) {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, c.cfg.API.Timeout)
			defer cancel()
			initial[i], failed[i] = c.client.FetchChart(fctx, w.Source, "")
		}(i, w)
	}
	wg.Wait()

	for i, w := range widgets {
		kind := widget.Kind(w.Kind)
		h, err := c.renderer.Create(kind, w.Name, initial[i], widget.OptionsFor(w))
		if err == nil {
			err = c.registry.Register(widget.Entry{Name: w.Name, Kind: kind, Source: w.Source, Handle: h})
		}
		if err != nil {
			c.registry.Close()
			if errors.CodeOf(err) == "" {
				err = errors.WrapWithCode(err, errors.ErrRender,
					fmt.Sprintf("Couldn't create widget '%s'", w.Name), "")
			}
			return err
		}

		if failed[i] != nil {
			c.emit(Event{
				Kind:    EventWidget,
				Level:   LevelError,
				Widget:  w.Name,
				Message: fmt.Sprintf("Couldn't load %s: %s", w.DisplayTitle(), errors.Summary(failed[i])),
				Err:     failed[i],
			})
		}
	}

	lctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.sched.Start(lctx)
	c.gate = visibility.New(lctx, c.sched, c.log)
	c.created = true

	c.log.Debug("controller created with %d widgets", c.registry.Len())
	return nil
}

// Destroy stops the poll and releases every chart. Safe to call more than
// once, or before Create.
func (c *Controller) Destroy() {
	c.mu.Lock()
	if !c.created || c.destroyed {
		c.destroyed = true
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.sched.Stop()
	c.cancel()
	c.mu.Unlock()

	c.sched.Wait()
	c.registry.Close()
	c.log.Debug("controller destroyed")
}

// Active reports whether Create has run and Destroy hasn't.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created && !c.destroyed
}

// RefreshAll refreshes every widget and reports a summary event.
func (c *Controller) RefreshAll(ctx context.Context) refresh.Report {
	report := c.orch.RefreshAll(ctx)

	if report.OK() {
		c.emit(Event{Kind: EventRefreshAll, Level: LevelSuccess, Message: "Charts refreshed successfully!"})
	} else {
		c.emit(Event{
			Kind:    EventRefreshAll,
			Level:   LevelWarning,
			Message: fmt.Sprintf("Refreshed %d of %d widgets", len(report.Succeeded()), len(report.Outcomes)),
		})
	}
	return report
}

// RefreshOne refreshes a single widget. Unknown names return NOT_FOUND.
func (c *Controller) RefreshOne(ctx context.Context, name string) (refresh.Outcome, error) {
	return c.orch.RefreshOne(ctx, name)
}

// SetPeriod changes the time window requested for name and refreshes it.
// An empty period goes back to the backend's default.
func (c *Controller) SetPeriod(ctx context.Context, name, period string) (refresh.Outcome, error) {
	if _, err := c.registry.Lookup(name); err != nil {
		return refresh.Outcome{}, err
	}

	c.mu.Lock()
	if period == "" {
		delete(c.periods, name)
	} else {
		c.periods[name] = period
	}
	c.mu.Unlock()

	c.orch.Invalidate(name)
	return c.orch.RefreshOne(ctx, name)
}

// Period returns the period last set for name.
func (c *Controller) Period(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.periods[name]
}

// SetVisible forwards a visibility signal to the poll. Returns whether the
// signal changed anything.
func (c *Controller) SetVisible(visible bool) bool {
	gate := c.activeGate()
	if gate == nil {
		return false
	}
	return gate.Set(visible)
}

// HandleFocus feeds Bubble Tea focus/blur messages to the visibility gate.
func (c *Controller) HandleFocus(msg tea.Msg) bool {
	gate := c.activeGate()
	if gate == nil {
		return false
	}
	return gate.HandleMsg(msg)
}

func (c *Controller) activeGate() *visibility.Gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.created || c.destroyed {
		return nil
	}
	return c.gate
}

// Visible reports the gate's last known state.
func (c *Controller) Visible() bool {
	if gate := c.activeGate(); gate != nil {
		return gate.Visible()
	}
	return false
}

// PollState reports whether the metrics poll is running.
func (c *Controller) PollState() poll.State {
	return c.sched.State()
}

// Resize asks the renderer to re-layout every widget.
func (c *Controller) Resize() {
	for e := range c.registry.All() {
		c.renderer.Resize(e.Handle)
	}
}

// Widgets returns the registered widgets in order.
func (c *Controller) Widgets() []widget.Entry {
	var out []widget.Entry
	for e := range c.registry.All() {
		out = append(out, e)
	}
	return out
}

// Metrics returns the most recent snapshot; zero before the first poll.
func (c *Controller) Metrics() api.MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Predict runs a one-shot prediction.
func (c *Controller) Predict(ctx context.Context, req api.PredictionRequest) (api.PredictionResult, error) {
	pctx, cancel := context.WithTimeout(ctx, c.cfg.API.Timeout)
	defer cancel()
	return c.client.Predict(pctx, req)
}

// Thresholds returns the configured metric tier boundaries.
func (c *Controller) Thresholds() config.ThresholdConfig {
	return c.cfg.Thresholds
}

func (c *Controller) fetchWidget(ctx context.Context, e widget.Entry) (api.ChartData, error) {
	return c.client.FetchChart(ctx, e.Source, c.Period(e.Name))
}

func (c *Controller) pollMetrics(ctx context.Context) error {
	tctx, cancel := context.WithTimeout(ctx, c.cfg.API.Timeout)
	defer cancel()

	snap, err := c.client.FetchMetrics(tctx)
	if err != nil {
		return err
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = c.now()
	}

	c.mu.Lock()
	c.metrics = snap
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.ApplyMetrics(snap)
	}
	return nil
}

func (c *Controller) reportOutcome(o refresh.Outcome) {
	if o.OK() {
		return
	}
	c.emit(Event{
		Kind:    EventWidget,
		Level:   LevelError,
		Widget:  o.Widget,
		Message: fmt.Sprintf("Couldn't refresh %s: %s", o.Widget, errors.Summary(o.Err)),
		Err:     o.Err,
	})
}

func (c *Controller) reportMetricsError(err error) {
	c.emit(Event{
		Kind:    EventMetrics,
		Level:   LevelError,
		Message: "Error updating real-time metrics: " + errors.Summary(err),
		Err:     err,
	})
}

func (c *Controller) emit(e Event) {
	if e.At.IsZero() {
		e.At = c.now()
	}
	c.reporter.Report(e)
}
