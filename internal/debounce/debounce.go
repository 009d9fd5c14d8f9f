// Package debounce delays a call until its trigger has been quiet for a while.
package debounce

import (
	"sync"
	"time"
)

// DefaultDuration is the quiet window applied to search keystrokes.
const DefaultDuration = 500 * time.Millisecond

// Debouncer runs the most recently scheduled function once no new call has
// arrived for the configured duration.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	pending  func()
	gen      uint64
	duration time.Duration
}

// New creates a debouncer; a non-positive duration falls back to DefaultDuration.
func New(duration time.Duration) *Debouncer {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Debouncer{duration: duration}
}

func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

// Debounce schedules fn, replacing and restarting any pending call.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.duration, func() {
		if run := d.take(gen); run != nil {
			run()
		}
	})
}

// take claims the pending call if it still belongs to generation gen.
func (d *Debouncer) take(gen uint64) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.pending == nil {
		return nil
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	return fn
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}

// Flush runs the pending call now, if there is one. It reports whether it ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Immediate runs fn now and drops any pending call.
func (d *Debouncer) Immediate(fn func()) {
	d.Cancel()
	fn()
}

// Pending reports whether a call is waiting for its window to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
