// Package poll runs the live-metrics fetch on a fixed interval.
//
// Scheduler is a two-state machine. Start arms exactly one ticker and runs
// an immediate tick; Start while running does nothing, so repeated focus
// changes can never stack timers. Stop disarms the ticker but lets a tick
// that is already running finish.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
)

// State of a Scheduler.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// TickFunc performs one fetch-and-apply.
type TickFunc func(ctx context.Context) error

// Ticker is the subset of *time.Ticker the scheduler uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Scheduler drives a TickFunc on an interval.
type Scheduler struct {
	interval  time.Duration
	tick      TickFunc
	newTicker TickerFactory
	onError   func(error)
	log       logger.Logger

	mu     sync.Mutex
	state  State
	ticker Ticker
	quit   chan struct{}

	wg sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTicker replaces the ticker factory. Tests use it to drive ticks by hand.
func WithTicker(f TickerFactory) Option {
	return func(s *Scheduler) { s.newTicker = f }
}

// WithErrorHandler is called with every failed tick.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a stopped scheduler.
func New(interval time.Duration, tick TickFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval:  interval,
		tick:      tick,
		newTicker: newTimeTicker,
		onError:   func(error) {},
		log:       logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start moves Stopped to Running: one tick right away, then one per
// interval until Stop or ctx is done. Returns false if already running.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return false
	}

	s.state = Running
	s.ticker = s.newTicker(s.interval)
	s.quit = make(chan struct{})

	s.wg.Add(1)
	go s.loop(ctx, s.ticker, s.quit)

	s.log.Debug("poll started (every %s)", s.interval)
	return true
}

// Stop moves Running to Stopped and disarms the ticker. A tick already in
// progress runs to completion. Returns false if already stopped.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return false
	}
	s.halt()
	s.log.Debug("poll stopped")
	return true
}

// halt must be called with mu held.
func (s *Scheduler) halt() {
	s.state = Stopped
	s.ticker.Stop()
	close(s.quit)
	s.ticker = nil
	s.quit = nil
}

// Wait blocks until every loop goroutine has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, t Ticker, quit chan struct{}) {
	defer s.wg.Done()

	s.runTick(ctx)

	for {
		select {
		case <-quit:
			return
		case <-ctx.Done():
			s.mu.Lock()
			if s.quit == quit {
				s.halt()
			}
			s.mu.Unlock()
			return
		case <-t.C():
			// A tick that raced with Stop must not run.
			select {
			case <-quit:
				return
			default:
			}
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if err := s.tick(ctx); err != nil {
		s.log.Warn("poll tick failed: %s", errors.Summary(err))
		s.onError(err)
	}
}
