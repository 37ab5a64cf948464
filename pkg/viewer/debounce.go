package viewer

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid events into one trailing call. It has a single
// pending slot: every Trigger replaces the pending function and restarts
// the delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
}

// NewDebouncer creates a debouncer. A non-positive delay runs every
// triggered function immediately.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the idle gap the debouncer waits for.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn to run once the delay passes without another Trigger.
func (d *Debouncer) Trigger(fn func()) {
	if d.delay <= 0 {
		d.Stop()
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	fn()
}

// Flush runs the pending function now. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	fn := d.take()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Stop drops the pending function. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	return d.take() != nil
}

// Pending reports whether a function is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) take() func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.pending
	d.pending = nil
	return fn
}
