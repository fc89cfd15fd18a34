// Package scan models a camera-driven pairing scan session: a debouncer
// that accepts each decoded code at most once per session, and a session
// state machine that turns accepted codes into connection attempts and
// exposes observable state to the hosting screen.
package scan

import (
	"sync"
	"time"
)

// Decision is the debouncer's verdict on a decoded camera frame.
type Decision int

const (
	Ignore Decision = iota
	Accept
)

// Outcome reports how processing of an accepted code ended.
type Outcome int

const (
	// Success tears the session down; scanning stops entirely. One
	// successful pairing per session.
	Success Outcome = iota
	// Failure suspends the session for the retry delay, then resumes, so
	// the same rejected code is not immediately reprocessed while the
	// user reads the error.
	Failure
)

// DefaultRetryDelay is how long a session stays suspended after a failed
// code before frames are accepted again. Tunable, not a protocol value.
const DefaultRetryDelay = 2 * time.Second

// Debouncer gates a single scan session so that exactly one decoded code
// is in flight at a time. The camera collaborator delivers frames on its
// own goroutine; the check-and-set on the session state is atomic, so two
// near-simultaneous frames cannot both win Accept.
type Debouncer struct {
	retryDelay time.Duration
	onResume   func() // invoked when a failed session resumes accepting frames

	mu          sync.Mutex
	processing  bool
	done        bool
	lastCode    string
	resumeTimer *time.Timer
}

// NewDebouncer creates a session debouncer. onResume may be nil; when set
// it fires after a Failure once the retry delay elapses and the session
// is accepting frames again.
func NewDebouncer(retryDelay time.Duration, onResume func()) *Debouncer {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Debouncer{retryDelay: retryDelay, onResume: onResume}
}

// OnFrameDecoded evaluates one decoded frame. It returns Accept for the
// first code seen while the session is idle and Ignore while a previous
// code is still being validated or connected, while the session is
// suspended after a failure, or after the session has been torn down.
func (d *Debouncer) OnFrameDecoded(code string) Decision {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done || d.processing {
		return Ignore
	}
	d.processing = true
	d.lastCode = code
	return Accept
}

// OnProcessingFinished reports the outcome of the accepted code. Success
// ends the session. Failure schedules the session back to accepting
// frames after the retry delay; the suspension is a timed transition,
// not an immediate one.
func (d *Debouncer) OnProcessingFinished(outcome Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return
	}
	if outcome == Success {
		d.done = true
		d.stopTimerLocked()
		return
	}
	d.resumeTimer = time.AfterFunc(d.retryDelay, d.resume)
}

func (d *Debouncer) resume() {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	d.processing = false
	d.resumeTimer = nil
	cb := d.onResume
	d.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Stop tears the session down and cancels any pending resume timer.
// Called when scanning stops or the hosting screen is dismissed.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.done = true
	d.stopTimerLocked()
}

func (d *Debouncer) stopTimerLocked() {
	if d.resumeTimer != nil {
		d.resumeTimer.Stop()
		d.resumeTimer = nil
	}
}

// LastAccepted returns the most recently accepted code, if any.
func (d *Debouncer) LastAccepted() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCode, d.lastCode != ""
}

// Done reports whether the session has been torn down.
func (d *Debouncer) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}
