package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openclaw/companion/internal/domain"
	"github.com/openclaw/companion/internal/pairing"
)

// Connector turns a parsed target into a connection attempt. Implemented
// by the connect coordinator; a returned error means the attempt did not
// reach the provisional-success point.
type Connector interface {
	Attempt(ctx context.Context, target domain.ConnectionTarget) error
}

// State is a snapshot of the observable scan session fields the hosting
// screen renders: whether the camera should run, whether a connection
// attempt is in flight, the current user-visible error, and whether the
// screen should dismiss itself after a successful pairing.
type State struct {
	Scanning         bool
	Connecting       bool
	Err              string
	ShouldDismiss    bool
	CameraPermission bool
}

const stateBuffer = 16

// Session owns one camera scan session. Decoded frames flow in through
// HandleFrame on the camera collaborator's goroutine; state changes flow
// out through Updates. At most one connection attempt is in flight at a
// time, enforced by the debouncer.
type Session struct {
	connector Connector
	log       *slog.Logger
	deb       *Debouncer

	mu      sync.Mutex
	st      State
	updates chan State
}

// NewSession creates a scan session with the given retry delay (zero
// means DefaultRetryDelay).
func NewSession(connector Connector, retryDelay time.Duration, logger *slog.Logger) *Session {
	s := &Session{
		connector: connector,
		log:       logger,
		updates:   make(chan State, stateBuffer),
	}
	s.deb = NewDebouncer(retryDelay, s.clearErrorOnResume)
	return s
}

// Updates returns the state-change channel. Sends never block: when the
// consumer lags, older snapshots are dropped in favor of newer ones.
func (s *Session) Updates() <-chan State {
	return s.updates
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// SetCameraPermission records the camera permission grant. Denial is
// surfaced as a session error and scanning never starts.
func (s *Session) SetCameraPermission(granted bool) {
	s.mu.Lock()
	s.st.CameraPermission = granted
	if !granted {
		s.st.Err = "Camera permission denied"
		s.st.Scanning = false
	}
	s.publishLocked()
	s.mu.Unlock()
}

// Start begins accepting decoded frames. It is a no-op without camera
// permission.
func (s *Session) Start() {
	s.mu.Lock()
	if s.st.CameraPermission && !s.deb.Done() {
		s.st.Scanning = true
	}
	s.publishLocked()
	s.mu.Unlock()
}

// Stop ends the session, cancelling any pending debounce-resume timer.
func (s *Session) Stop() {
	s.deb.Stop()
	s.mu.Lock()
	s.st.Scanning = false
	s.publishLocked()
	s.mu.Unlock()
}

// HandleFrame evaluates one decoded camera frame. The first frame wins
// the session; later frames are ignored until processing finishes. The
// call runs the full parse-and-connect sequence synchronously on the
// caller's goroutine.
func (s *Session) HandleFrame(ctx context.Context, code string) {
	s.mu.Lock()
	scanning := s.st.Scanning
	s.mu.Unlock()
	if !scanning {
		return
	}
	if s.deb.OnFrameDecoded(code) == Ignore {
		return
	}

	s.setConnecting(true)

	target, err := pairing.Parse(code)
	if err != nil {
		s.log.Warn("rejected pairing payload", "err", err)
		s.failAttempt(fmt.Sprintf("Invalid gateway configuration: %v", err))
		return
	}

	if err := s.connector.Attempt(ctx, target); err != nil {
		s.log.Warn("gateway connection attempt failed", "host", target.Host, "port", target.Port, "err", err)
		s.failAttempt(fmt.Sprintf("Connection failed: %v", err))
		return
	}

	s.log.Info("gateway pairing accepted", "host", target.Host, "port", target.Port, "tls", target.UseTLS)
	s.deb.OnProcessingFinished(Success)
	s.mu.Lock()
	s.st.Connecting = false
	s.st.Scanning = false
	s.st.ShouldDismiss = true
	s.publishLocked()
	s.mu.Unlock()
}

func (s *Session) setConnecting(v bool) {
	s.mu.Lock()
	s.st.Connecting = v
	if v {
		s.st.Err = ""
	}
	s.publishLocked()
	s.mu.Unlock()
}

func (s *Session) failAttempt(msg string) {
	s.mu.Lock()
	s.st.Connecting = false
	s.st.Err = msg
	s.publishLocked()
	s.mu.Unlock()
	s.deb.OnProcessingFinished(Failure)
}

// clearErrorOnResume runs when a failed session resumes accepting frames;
// the error the user was reading is auto-cleared at the same moment.
func (s *Session) clearErrorOnResume() {
	s.mu.Lock()
	s.st.Err = ""
	s.publishLocked()
	s.mu.Unlock()
}

// publishLocked pushes the current snapshot without blocking. Callers
// hold s.mu.
func (s *Session) publishLocked() {
	for {
		select {
		case s.updates <- s.st:
			return
		default:
		}
		// Channel full: drop the oldest snapshot and retry.
		select {
		case <-s.updates:
		default:
		}
	}
}
