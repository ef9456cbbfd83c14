// Package ticker runs a callback on a fixed interval. It is the only
// mechanism that advances the displayed time between server round-trips,
// so its guarantees are deliberately narrow: at most one active schedule
// per Ticker, explicit teardown, and atomic interval replacement.
package ticker

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrInvalidInterval is returned for non-positive intervals.
	ErrInvalidInterval = errors.New("ticker: interval must be positive")
	// ErrNilCallback is returned when no callback is provided.
	ErrNilCallback = errors.New("ticker: callback must not be nil")
	// ErrStopped is returned when reconfiguring a stopped ticker.
	ErrStopped = errors.New("ticker: already stopped")
)

// Ticker invokes a callback once per elapsed interval until stopped.
type Ticker struct {
	mu      sync.Mutex
	fn      func()
	runMu   sync.Mutex // serializes callback executions across schedules
	stop    chan struct{}
	stopped bool
}

// New creates and starts a ticker. A client that cannot install its
// schedule cannot advance its display, so setup failures are surfaced
// rather than deferred.
func New(interval time.Duration, fn func()) (*Ticker, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if fn == nil {
		return nil, ErrNilCallback
	}

	t := &Ticker{
		fn:   fn,
		stop: make(chan struct{}),
	}
	go t.run(interval, t.stop)
	return t, nil
}

// run fires the callback until its stop channel closes. Each schedule
// owns its channel, so a replaced schedule cannot keep firing.
func (t *Ticker) run(interval time.Duration, stop chan struct{}) {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			t.invoke()
		}
	}
}

// invoke serializes callback executions. A replaced schedule's last
// callback may still be running when the new schedule's first tick
// fires; the lock keeps at most one execution in flight.
func (t *Ticker) invoke() {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	t.fn()
}

// Reconfigure cancels the current schedule and installs a new one with
// the given interval. The previous schedule is cancelled before the new
// one starts; at no point are two schedules active.
func (t *Ticker) Reconfigure(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return ErrStopped
	}

	close(t.stop)
	t.stop = make(chan struct{})
	go t.run(interval, t.stop)
	return nil
}

// Stop tears down the schedule. It is idempotent.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	close(t.stop)
}
