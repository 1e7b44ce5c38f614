// Package debounce provides a cancel-and-reschedule task.
package debounce

import (
	"sync"
	"time"
)

// Task runs fn once after delay has elapsed since the last Schedule call.
type Task struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// New creates an idle task.
func New(delay time.Duration, fn func()) *Task {
	return &Task{delay: delay, fn: fn}
}

// Delay returns the debounce window.
func (t *Task) Delay() time.Duration {
	return t.delay
}

// Schedule (re)arms the task. A pending run is pushed back to now+delay.
func (t *Task) Schedule() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

// Pending reports whether a run is scheduled.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Cancel drops the pending run, if any, and reports whether there was one.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked()
}

// Flush runs the pending run synchronously, if any, and reports whether it ran.
func (t *Task) Flush() bool {
	t.mu.Lock()
	pending := t.cancelLocked()
	t.mu.Unlock()
	if pending {
		t.fn()
	}
	return pending
}

func (t *Task) cancelLocked() bool {
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	// Invalidate a timer that already fired and is waiting for the lock.
	t.gen++
	return true
}

func (t *Task) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	t.fn()
}
