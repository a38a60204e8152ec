// Package refresh fetches chart data for registered widgets and applies it
// through the renderer, one widget at a time or all at once.
//
// A failing widget never takes others down with it: fetch, parse and render
// errors become failed Outcomes, and the widget keeps whatever it showed
// before. Overlapping refreshes of the same widget share a single fetch
// until Invalidate marks that fetch stale.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/widget"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the current data for a widget.
type Fetcher interface {
	Fetch(ctx context.Context, e widget.Entry) (api.ChartData, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, e widget.Entry) (api.ChartData, error)

func (f FetcherFunc) Fetch(ctx context.Context, e widget.Entry) (api.ChartData, error) {
	return f(ctx, e)
}

// Orchestrator runs refreshes against a registry.
type Orchestrator struct {
	registry *widget.Registry
	renderer widget.Renderer
	fetcher  Fetcher
	timeout  time.Duration
	report   func(Outcome)
	log      logger.Logger

	group singleflight.Group

	mu     sync.Mutex
	states map[string]State
	gens   map[string]uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds each widget's fetch.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithReporter receives one Outcome per fetch actually performed.
// Callers that joined an in-flight refresh do not trigger a second report.
func WithReporter(fn func(Outcome)) Option {
	return func(o *Orchestrator) { o.report = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an orchestrator over registry.
func New(registry *widget.Registry, renderer widget.Renderer, fetcher Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		renderer: renderer,
		fetcher:  fetcher,
		report:   func(Outcome) {},
		log:      logger.Noop(),
		states:   make(map[string]State),
		gens:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns whether a refresh of name is in flight.
func (o *Orchestrator) State(name string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[name]
}

func (o *Orchestrator) setState(name string, s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s == Idle {
		delete(o.states, name)
		return
	}
	o.states[name] = s
}

// Invalidate marks any in-flight fetch of name as stale. Its result is
// dropped instead of applied, and the next RefreshOne starts a new fetch
// rather than joining it. Call it after changing what a fetch would request.
func (o *Orchestrator) Invalidate(name string) {
	o.mu.Lock()
	o.gens[name]++
	o.mu.Unlock()
	o.group.Forget(name)
}

func (o *Orchestrator) generation(name string) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gens[name]
}

// RefreshOne fetches and applies fresh data for name. The only error it
// returns is NOT_FOUND for an unregistered name; every other failure is
// carried in the Outcome. If a refresh of name is already running, the
// call waits for it and returns its result with Shared set.
//
// The shared fetch is not cancelled by any one caller; it is bounded by the
// orchestrator timeout. A caller whose ctx ends first gets a failed Outcome
// carrying ctx.Err() while the fetch carries on for the others. Without a
// timeout the fetch runs on the first caller's ctx.
func (o *Orchestrator) RefreshOne(ctx context.Context, name string) (Outcome, error) {
	for {
		e, err := o.registry.Lookup(name)
		if err != nil {
			return Outcome{}, err
		}

		fctx := ctx
		if o.timeout > 0 {
			fctx = context.WithoutCancel(ctx)
		}
		ch := o.group.DoChan(name, func() (any, error) {
			out := o.run(fctx, e)
			if !out.superseded {
				o.report(out)
			}
			return out, nil
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return Outcome{Widget: name, Status: StatusFailed, Err: ctx.Err()}, nil
		}

		out := res.Val.(Outcome)
		if out.superseded {
			// A newer request for name was issued; its result is the one to show.
			continue
		}
		out.Shared = res.Shared
		return out, nil
	}
}

// RefreshAll refreshes every registered widget concurrently and waits for
// all of them. Successes are applied regardless of failures elsewhere.
func (o *Orchestrator) RefreshAll(ctx context.Context) Report {
	var entries []widget.Entry
	for e := range o.registry.All() {
		entries = append(entries, e)
	}

	outcomes := make([]Outcome, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			out, err := o.RefreshOne(ctx, name)
			if err != nil {
				// Removed between the snapshot and the refresh.
				out = Outcome{Widget: name, Status: StatusFailed, Err: err}
			}
			outcomes[i] = out
		}(i, e.Name)
	}
	wg.Wait()

	report := Report{Outcomes: outcomes}
	if report.OK() {
		o.log.Debug("refreshed %d widgets", len(outcomes))
	} else {
		o.log.Warn("refresh: %d of %d widgets failed", len(report.Failed()), len(outcomes))
	}
	return report
}

func (o *Orchestrator) run(ctx context.Context, e widget.Entry) Outcome {
	gen := o.generation(e.Name)
	o.setState(e.Name, InFlight)
	defer o.setState(e.Name, Idle)

	start := time.Now()
	out := Outcome{Widget: e.Name, Status: StatusFailed}

	fctx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	data, err := o.fetcher.Fetch(fctx, e)
	out.Duration = time.Since(start)
	if err != nil {
		out.Err = err
		o.log.Warn("refresh %s: %s", e.Name, errors.Summary(err))
		return out
	}

	if o.generation(e.Name) != gen {
		out.superseded = true
		o.log.Debug("refresh %s: superseded mid-flight, dropping result", e.Name)
		return out
	}

	// Teardown may have released the handle while the fetch was out, or
	// swapped in a new one under the same name.
	h, err := o.registry.Get(e.Name)
	if err == nil && h != e.Handle {
		err = errors.New(errors.ErrNotFound,
			fmt.Sprintf("Widget '%s' was replaced during refresh", e.Name), "")
	}
	if err != nil {
		out.Err = err
		o.log.Debug("refresh %s: widget removed mid-flight, dropping result", e.Name)
		return out
	}

	if err := o.renderer.Update(e.Handle, data); err != nil {
		if errors.CodeOf(err) == "" {
			err = errors.WrapWithCode(err, errors.ErrRender,
				fmt.Sprintf("Couldn't draw widget '%s'", e.Name), "")
		}
		out.Err = err
		o.log.Warn("refresh %s: %s", e.Name, errors.Summary(err))
		return out
	}

	out.Status = StatusOK
	out.Points = pointCount(data)
	o.log.Debug("refresh %s: ok in %s", e.Name, out.Duration.Round(time.Millisecond))
	return out
}

func pointCount(d api.ChartData) int {
	n := 0
	for _, ds := range d.Datasets {
		n += len(ds.Data)
	}
	return n
}
