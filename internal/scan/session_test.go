package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaw/companion/internal/domain"
	"github.com/openclaw/companion/internal/log"
)

type fakeConnector struct {
	mu      sync.Mutex
	err     error
	targets []domain.ConnectionTarget
}

func (f *fakeConnector) Attempt(_ context.Context, target domain.ConnectionTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	return f.err
}

func (f *fakeConnector) attempts() []domain.ConnectionTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ConnectionTarget(nil), f.targets...)
}

func newTestSession(t *testing.T, conn Connector, retry time.Duration) *Session {
	t.Helper()
	s := NewSession(conn, retry, log.Discard())
	s.SetCameraPermission(true)
	s.Start()
	return s
}

func TestSessionSuccessfulPairingDismisses(t *testing.T) {
	t.Parallel()

	conn := &fakeConnector{}
	s := newTestSession(t, conn, time.Millisecond)

	s.HandleFrame(context.Background(), `{"url":"wss://gw.local:9443","token":"abc123"}`)

	st := s.State()
	require.True(t, st.ShouldDismiss)
	require.False(t, st.Scanning)
	require.False(t, st.Connecting)
	require.Empty(t, st.Err)

	got := conn.attempts()
	require.Len(t, got, 1)
	require.Equal(t, domain.ConnectionTarget{Host: "gw.local", Port: 9443, UseTLS: true, Token: "abc123"}, got[0])

	// Session is torn down: later frames do nothing.
	s.HandleFrame(context.Background(), `{"url":"ws://other:1"}`)
	require.Len(t, conn.attempts(), 1)
}

func TestSessionParseErrorSurfacesAndClears(t *testing.T) {
	t.Parallel()

	conn := &fakeConnector{}
	s := newTestSession(t, conn, 10*time.Millisecond)

	s.HandleFrame(context.Background(), `not json at all`)

	st := s.State()
	require.Contains(t, st.Err, "Invalid gateway configuration")
	require.False(t, st.Connecting)
	require.Empty(t, conn.attempts(), "malformed payloads never reach the connector")

	// While suspended the same frame is ignored.
	s.HandleFrame(context.Background(), `not json at all`)
	require.Empty(t, conn.attempts())

	// After the retry delay the error is auto-cleared and scanning resumes.
	require.Eventually(t, func() bool {
		return s.State().Err == ""
	}, time.Second, 2*time.Millisecond)

	s.HandleFrame(context.Background(), `{"url":"ws://gw:8080"}`)
	require.Len(t, conn.attempts(), 1)
}

func TestSessionConnectorFailureKeepsScreenOpen(t *testing.T) {
	t.Parallel()

	conn := &fakeConnector{err: errors.New("gateway unreachable")}
	s := newTestSession(t, conn, 5*time.Millisecond)

	s.HandleFrame(context.Background(), `{"url":"ws://gw:8080"}`)

	st := s.State()
	require.Contains(t, st.Err, "Connection failed")
	require.False(t, st.ShouldDismiss, "the scanning screen is not auto-dismissed on failure")

	// The user may scan again after the suspension.
	require.Eventually(t, func() bool {
		return s.State().Err == ""
	}, time.Second, time.Millisecond)
	s.HandleFrame(context.Background(), `{"url":"ws://gw:8080"}`)
	require.Len(t, conn.attempts(), 2)
}

func TestSessionCameraPermissionDenied(t *testing.T) {
	t.Parallel()

	conn := &fakeConnector{}
	s := NewSession(conn, time.Millisecond, log.Discard())
	s.SetCameraPermission(false)
	s.Start()

	st := s.State()
	require.Equal(t, "Camera permission denied", st.Err)
	require.False(t, st.Scanning)

	s.HandleFrame(context.Background(), `{"url":"ws://gw:8080"}`)
	require.Empty(t, conn.attempts())
}

func TestSessionPublishesStateUpdates(t *testing.T) {
	t.Parallel()

	conn := &fakeConnector{}
	s := newTestSession(t, conn, time.Millisecond)
	s.HandleFrame(context.Background(), `{"url":"wss://gw:9443"}`)

	sawDismiss := false
drain:
	for {
		select {
		case st := <-s.Updates():
			if st.ShouldDismiss {
				sawDismiss = true
			}
		default:
			break drain
		}
	}
	require.True(t, sawDismiss, "dismiss state must be published")
}
