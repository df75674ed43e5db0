package search

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs the most recently scheduled function once the quiet
// window has elapsed without another Schedule call. A window of zero runs
// scheduled functions immediately on the caller.
type Debouncer struct {
	wait  time.Duration
	after AfterFunc

	mu      sync.Mutex
	idle    *sync.Cond
	timer   Timer
	seq     uint64
	pending func()
	running int
}

// NewDebouncer creates a Debouncer. A nil after uses time.AfterFunc.
func NewDebouncer(wait time.Duration, after AfterFunc) *Debouncer {
	if after == nil {
		after = realAfterFunc
	}
	d := &Debouncer{wait: wait, after: after}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Schedule replaces any pending function with f and restarts the window.
func (d *Debouncer) Schedule(f func()) {
	d.mu.Lock()
	d.stopLocked()
	d.seq++
	if d.wait <= 0 {
		d.pending = nil
		d.running++
		d.mu.Unlock()
		d.run(f)
		return
	}
	seq := d.seq
	d.pending = f
	d.timer = d.after(d.wait, func() { d.fire(seq) })
	d.mu.Unlock()
}

// Cancel drops the pending function, if any. A function already running
// is not interrupted.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
	d.pending = nil
}

// Flush runs the pending function now, on the calling goroutine, and
// reports whether there was one. With nothing pending it waits for a
// function that has already started to finish.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	f := d.pending
	if f == nil {
		for d.running > 0 {
			d.idle.Wait()
		}
		d.mu.Unlock()
		return false
	}
	d.stopLocked()
	d.seq++
	d.pending = nil
	d.running++
	d.mu.Unlock()

	d.run(f)
	return true
}

// Pending reports whether a function is waiting for its window.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// fire runs on the timer goroutine. A timer superseded after it already
// fired carries an old seq and does nothing.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	f := d.pending
	d.pending = nil
	d.timer = nil
	d.running++
	d.mu.Unlock()

	d.run(f)
}

// run calls f; the caller has already counted it as running.
func (d *Debouncer) run(f func()) {
	defer func() {
		d.mu.Lock()
		d.running--
		if d.running == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}()
	f()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
