package poll

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTicker only fires when the test says so.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

// tickerPool tracks every ticker a scheduler creates.
type tickerPool struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (p *tickerPool) factory(time.Duration) Ticker {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	p.tickers = append(p.tickers, t)
	return t
}

func (p *tickerPool) active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.tickers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

func (p *tickerPool) latest() *manualTicker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tickers[len(p.tickers)-1]
}

type counter struct{ n atomic.Int32 }

func (c *counter) tick(context.Context) error {
	c.n.Add(1)
	return nil
}

func (c *counter) load() int { return int(c.n.Load()) }

func TestStart_ImmediateTick(t *testing.T) {
	pool := &tickerPool{}
	c := &counter{}
	s := New(5*time.Second, c.tick, WithTicker(pool.factory))

	assert.True(t, s.Start(context.Background()))
	assert.Equal(t, Running, s.State())
	require.Eventually(t, func() bool { return c.load() == 1 }, time.Second, time.Millisecond)

	pool.latest().ch <- time.Now()
	require.Eventually(t, func() bool { return c.load() == 2 }, time.Second, time.Millisecond)

	assert.True(t, s.Stop())
	s.Wait()
	assert.Equal(t, Stopped, s.State())
}

func TestStart_WhileRunningIsNoop(t *testing.T) {
	pool := &tickerPool{}
	c := &counter{}
	s := New(time.Second, c.tick, WithTicker(pool.factory))

	assert.True(t, s.Start(context.Background()))
	assert.False(t, s.Start(context.Background()))
	assert.False(t, s.Start(context.Background()))

	assert.Equal(t, 1, pool.active())
	s.Stop()
	s.Wait()
	assert.Equal(t, 1, c.load())
}

func TestStop_WhenStoppedIsNoop(t *testing.T) {
	s := New(time.Second, (&counter{}).tick, WithTicker((&tickerPool{}).factory))
	assert.False(t, s.Stop())
	assert.False(t, s.Stop())
	assert.Equal(t, Stopped, s.State())
}

func TestStopThenStartTwice(t *testing.T) {
	pool := &tickerPool{}
	c := &counter{}
	s := New(time.Second, c.tick, WithTicker(pool.factory))

	s.Start(context.Background())
	require.Eventually(t, func() bool { return c.load() == 1 }, time.Second, time.Millisecond)

	s.Stop()
	s.Wait()
	before := c.load()

	assert.True(t, s.Start(context.Background()))
	assert.False(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return c.load() == before+1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before+1, c.load(), "exactly one immediate fetch")
	assert.Equal(t, 1, pool.active(), "exactly one active ticker")

	s.Stop()
	s.Wait()
	assert.Zero(t, pool.active())
}

func TestRandomStartStopSequence(t *testing.T) {
	pool := &tickerPool{}
	s := New(time.Second, (&counter{}).tick, WithTicker(pool.factory))

	ops := []bool{true, true, false, true, false, false, true, true, true, false, true}
	for _, start := range ops {
		if start {
			s.Start(context.Background())
		} else {
			s.Stop()
		}
		assert.LessOrEqual(t, pool.active(), 1)
		if s.State() == Running {
			assert.Equal(t, 1, pool.active())
		}
	}
	s.Stop()
	s.Wait()
	assert.Zero(t, pool.active())
}

func TestFailingTickKeepsSchedule(t *testing.T) {
	pool := &tickerPool{}
	buf := logger.NewBufferLogger()

	var calls atomic.Int32
	var reported atomic.Int32
	tick := func(context.Context) error {
		if calls.Add(1) == 1 {
			return stderrors.New("backend down")
		}
		return nil
	}

	s := New(time.Second, tick,
		WithTicker(pool.factory),
		WithLogger(buf),
		WithErrorHandler(func(error) { reported.Add(1) }))

	s.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	pool.latest().ch <- time.Now()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

	assert.Equal(t, Running, s.State())
	assert.Equal(t, int32(1), reported.Load())
	assert.True(t, buf.HasLevel("warn"))

	s.Stop()
	s.Wait()
}

func TestStop_InFlightTickCompletes(t *testing.T) {
	pool := &tickerPool{}
	entered := make(chan struct{})
	release := make(chan struct{})
	var applied atomic.Bool

	tick := func(ctx context.Context) error {
		close(entered)
		<-release
		if ctx.Err() == nil {
			applied.Store(true)
		}
		return nil
	}

	s := New(time.Second, tick, WithTicker(pool.factory))
	s.Start(context.Background())
	<-entered

	assert.True(t, s.Stop())
	close(release)
	s.Wait()

	assert.True(t, applied.Load(), "stop does not cancel a running tick")
}

func TestContextCancelStops(t *testing.T) {
	pool := &tickerPool{}
	ctx, cancel := context.WithCancel(context.Background())
	s := New(time.Second, (&counter{}).tick, WithTicker(pool.factory))

	s.Start(ctx)
	cancel()
	s.Wait()

	assert.Equal(t, Stopped, s.State())
	assert.Zero(t, pool.active())
	assert.True(t, s.Start(context.Background()), "can restart after cancellation")
	s.Stop()
	s.Wait()
}

func TestRealTicker(t *testing.T) {
	c := &counter{}
	s := New(10*time.Millisecond, c.tick)

	s.Start(context.Background())
	require.Eventually(t, func() bool { return c.load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Wait()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
}
