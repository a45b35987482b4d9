// Package debounce delays an action until input has been quiet for a fixed
// interval.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered func once Delay has passed
// without another Trigger. It is safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

// New creates a Debouncer with the given quiet interval.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger (re)arms the timer with fn. A previously armed func is dropped.
// Calls after Close are ignored.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.stopLocked()

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A Stop that lost the race with expiry bumps gen first.
		if d.closed || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending func and reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

// Pending reports whether a func is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Close cancels any pending func and disables the Debouncer.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}
