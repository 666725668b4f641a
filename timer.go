package smartcube

import (
	"sync"
	"time"
)

// DefaultInspection is the WCA inspection time.
const DefaultInspection = 15 * time.Second

// afterFunc schedules f after d and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Timer is the solve stopwatch. It records one split per phase checkpoint
// and runs the inspection countdown.
type Timer struct {
	now   func() time.Time
	after afterFunc

	mu          sync.Mutex
	expected    int
	start       time.Time
	end         time.Time
	running     bool
	checkpoints []time.Duration

	inspectionStart time.Time
	inspectionLen   time.Duration
	inspectionGen   int
	stopInspection  func() bool
}

// NewTimer creates a timer that accepts at most expected checkpoints per
// solve.
func NewTimer(expected int) *Timer {
	return &Timer{
		now:      time.Now,
		after:    realAfterFunc,
		expected: expected,
	}
}

// SetExpected changes the checkpoint budget, e.g. when the training mode
// changes.
func (t *Timer) SetExpected(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expected = n
}

// Start clears the splits and starts the stopwatch.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkpoints = nil
	t.start = t.now()
	t.end = time.Time{}
	t.running = true
}

// Stop stops the stopwatch and any inspection, returning the elapsed time.
func (t *Timer) Stop() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelInspectionLocked()
	if t.running {
		t.end = t.now()
		t.running = false
	}
	return t.elapsedLocked()
}

// Reset clears everything, including a pending inspection.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelInspectionLocked()
	t.checkpoints = nil
	t.start = time.Time{}
	t.end = time.Time{}
	t.running = false
}

// Checkpoint records a split and returns it. Splits taken while the
// stopwatch is stopped are ignored and return ok == false. Exceeding the
// expected count returns ErrCheckpointOverflow.
func (t *Timer) Checkpoint() (split time.Duration, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0, false, nil
	}
	if len(t.checkpoints) >= t.expected {
		return 0, false, ErrCheckpointOverflow
	}
	split = t.now().Sub(t.start)
	t.checkpoints = append(t.checkpoints, split)
	return split, true, nil
}

// Checkpoints returns the recorded splits, measured from the start.
func (t *Timer) Checkpoints() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.checkpoints...)
}

// Running reports whether the stopwatch is running.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// StartedAt returns the time the stopwatch was started.
func (t *Timer) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.start
}

// Elapsed returns the running or final solve time.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Timer) elapsedLocked() time.Duration {
	switch {
	case t.start.IsZero():
		return 0
	case t.running:
		return t.now().Sub(t.start)
	default:
		return t.end.Sub(t.start)
	}
}

// StartInspection starts a countdown of d and calls done when it runs out,
// unless CancelInspection is called first. done runs on the timer's own
// goroutine. A running countdown is replaced.
func (t *Timer) StartInspection(d time.Duration, done func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelInspectionLocked()
	t.inspectionStart = t.now()
	t.inspectionLen = d
	t.inspectionGen++
	gen := t.inspectionGen
	t.stopInspection = t.after(d, func() {
		t.mu.Lock()
		current := gen == t.inspectionGen && t.stopInspection != nil
		if current {
			t.stopInspection = nil
		}
		t.mu.Unlock()
		if current {
			done()
		}
	})
}

// CancelInspection stops a running countdown. It reports whether one was
// stopped before firing.
func (t *Timer) CancelInspection() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelInspectionLocked()
}

func (t *Timer) cancelInspectionLocked() bool {
	if t.stopInspection == nil {
		return false
	}
	stopped := t.stopInspection()
	t.stopInspection = nil
	return stopped
}

// Inspecting reports whether a countdown is running.
func (t *Timer) Inspecting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopInspection != nil
}

// InspectionRemaining returns the time left on the countdown.
func (t *Timer) InspectionRemaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopInspection == nil {
		return 0
	}
	left := t.inspectionLen - t.now().Sub(t.inspectionStart)
	if left < 0 {
		return 0
	}
	return left
}
