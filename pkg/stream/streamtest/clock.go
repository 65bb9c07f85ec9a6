// Package streamtest provides a manual clock for driving stream engine
// ticks deterministically in tests.
package streamtest

import (
	"sync"
	"time"

	"github.com/meshpulse/meshpulse/pkg/stream"
)

// ManualClock implements stream.Clock with explicitly advanced time.
// Advance moves the clock forward and fires every due ticker in order,
// blocking until each tick is consumed.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current virtual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker registers a ticker firing every interval of virtual time
func (c *ManualClock) NewTicker(interval time.Duration) stream.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &manualTicker{
		ch:       make(chan time.Time),
		stop:     make(chan struct{}),
		interval: interval,
		next:     c.now.Add(interval),
	}
	c.tickers = append(c.tickers, ticker)
	return ticker
}

// Advance moves virtual time forward by d, firing each ticker once per
// elapsed interval in chronological order. Each fire blocks until the
// ticker's consumer receives it (or the ticker is stopped), so ticks are
// never silently dropped.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		ticker, at := c.nextDue(target)
		if ticker == nil {
			break
		}
		c.setNow(at)
		ticker.fire(at)
	}
	c.setNow(target)
}

func (c *ManualClock) nextDue(target time.Time) (*manualTicker, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due *manualTicker
	var at time.Time
	for _, ticker := range c.tickers {
		if ticker.isStopped() {
			continue
		}
		if !ticker.next.After(target) && (due == nil || ticker.next.Before(at)) {
			due = ticker
			at = ticker.next
		}
	}
	if due != nil {
		due.next = due.next.Add(due.interval)
	}
	return due, at
}

func (c *ManualClock) setNow(t time.Time) {
	c.mu.Lock()
	if t.After(c.now) {
		c.now = t
	}
	c.mu.Unlock()
}

type manualTicker struct {
	ch       chan time.Time
	stop     chan struct{}
	stopOnce sync.Once
	interval time.Duration
	next     time.Time
}

func (t *manualTicker) Chan() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *manualTicker) isStopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

func (t *manualTicker) fire(at time.Time) {
	select {
	case t.ch <- at:
	case <-t.stop:
	}
}
