// Package debounce delays propagation of a rapidly changing value until the
// input has settled for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the callback passed to Trigger only after the configured
// delay elapses with no further Trigger calls. A newer Trigger supersedes a
// pending one, so intermediate values never surface. After Stop no callback
// fires.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	seq     uint64
	stopped bool
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the delay, cancelling any pending run.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := d.stopped || seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

// Stop cancels any pending callback and makes further Triggers no-ops.
// Safe to call from the owner's teardown path more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
