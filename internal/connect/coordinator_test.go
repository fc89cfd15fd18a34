package connect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaw/companion/internal/domain"
	"github.com/openclaw/companion/internal/log"
)

type manualSettings struct {
	Enabled bool
	Host    string
	Port    int
	UseTLS  bool
}

type fakePrefs struct {
	manual manualSettings
	writes int
	err    error
}

func (f *fakePrefs) SetManualConnection(_ context.Context, enabled bool, host string, port int, useTLS bool) error {
	if f.err != nil {
		return f.err
	}
	f.writes++
	f.manual = manualSettings{Enabled: enabled, Host: host, Port: port, UseTLS: useTLS}
	return nil
}

type fakeSecrets struct {
	tokens map[string]string
	err    error
}

func (f *fakeSecrets) SaveToken(_ context.Context, scopeKey, token string) error {
	if f.err != nil {
		return f.err
	}
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.tokens[scopeKey] = token
	return nil
}

type fakeTransport struct {
	opened []string
	err    error
}

func (f *fakeTransport) Open(_ context.Context, host string, port int, useTLS bool) error {
	if f.err != nil {
		return f.err
	}
	f.opened = append(f.opened, domain.ConnectionTarget{Host: host, Port: port, UseTLS: useTLS}.URL())
	return nil
}

type fakeService struct {
	started int
	err     error
}

func (f *fakeService) EnsureRunning(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.started++
	return nil
}

type fakeIdentity struct {
	id  string
	err error
}

func (f *fakeIdentity) InstanceID(context.Context) (string, error) { return f.id, f.err }

type fixture struct {
	prefs   *fakePrefs
	secrets *fakeSecrets
	trans   *fakeTransport
	svc     *fakeService
	id      *fakeIdentity
	coord   *Coordinator
}

func newFixture() *fixture {
	f := &fixture{
		prefs:   &fakePrefs{},
		secrets: &fakeSecrets{},
		trans:   &fakeTransport{},
		svc:     &fakeService{},
		id:      &fakeIdentity{id: "node-1"},
	}
	f.coord = New(f.prefs, f.secrets, f.trans, f.svc, f.id, time.Millisecond, log.Discard())
	return f
}

var validTarget = domain.ConnectionTarget{Host: "gw.local", Port: 9443, UseTLS: true, Token: "abc123"}

func TestAttemptHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture()
	out, err := f.coord.Attempt(context.Background(), validTarget)
	require.NoError(t, err)
	require.Equal(t, Connected, out.Status)
	require.True(t, out.TokenSaved)
	require.False(t, out.TokenSkipped)

	require.Equal(t, manualSettings{Enabled: true, Host: "gw.local", Port: 9443, UseTLS: true}, f.prefs.manual)
	require.Equal(t, "abc123", f.secrets.tokens["node-1"])
	require.Equal(t, 1, f.svc.started)
	require.Equal(t, []string{"wss://gw.local:9443"}, f.trans.opened)
}

func TestAttemptIsIdempotentOnPreferences(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.coord.Attempt(context.Background(), validTarget)
	require.NoError(t, err)
	first := f.prefs.manual

	_, err = f.coord.Attempt(context.Background(), validTarget)
	require.NoError(t, err)

	require.Equal(t, first, f.prefs.manual, "overwrite, not accumulation")
	require.Equal(t, 2, f.prefs.writes)
	require.Equal(t, "abc123", f.secrets.tokens["node-1"])
}

func TestAttemptRejectsInvalidTarget(t *testing.T) {
	t.Parallel()

	f := newFixture()
	out, err := f.coord.Attempt(context.Background(), domain.ConnectionTarget{Host: "", Port: 0})
	require.ErrorIs(t, err, domain.ErrInvalidTarget)
	require.Equal(t, Rejected, out.Status)
	require.Zero(t, f.prefs.writes, "validation failure short-circuits persistence")
	require.Empty(t, f.trans.opened)
}

func TestAttemptSkipsTokenWithoutInstanceID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.id.id = "  "
	out, err := f.coord.Attempt(context.Background(), validTarget)
	require.NoError(t, err, "the skip does not abort the overall attempt")
	require.Equal(t, Connected, out.Status)
	require.False(t, out.TokenSaved)
	require.True(t, out.TokenSkipped)
	require.Empty(t, f.secrets.tokens)
	require.Equal(t, []string{"wss://gw.local:9443"}, f.trans.opened)
}

func TestAttemptNoTokenNoSecretWrite(t *testing.T) {
	t.Parallel()

	f := newFixture()
	target := validTarget
	target.Token = ""
	out, err := f.coord.Attempt(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, Connected, out.Status)
	require.False(t, out.TokenSaved)
	require.False(t, out.TokenSkipped)
	require.Empty(t, f.secrets.tokens)
}

func TestAttemptTransportFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.trans.err = errors.New("dial refused")
	out, err := f.coord.Attempt(context.Background(), validTarget)
	require.Error(t, err)
	require.Equal(t, TransportFailed, out.Status)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "gw.local:9443", gwErr.Addr)

	// Preferences were already written before the transport step.
	require.Equal(t, 1, f.prefs.writes)
}

func TestAttemptServiceFailureShortCircuitsTransport(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.svc.err = errors.New("service unavailable")
	out, err := f.coord.Attempt(context.Background(), validTarget)
	require.Error(t, err)
	require.Equal(t, TransportFailed, out.Status)
	require.Empty(t, f.trans.opened)
}

func TestAttemptCancelledDuringSettleWindow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.coord.settle = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var out Outcome
	var err error
	go func() {
		out, err = f.coord.Attempt(ctx, validTarget)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("attempt did not return after cancellation")
	}
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, TransportFailed, out.Status)
}

func TestAttemptSecretStoreFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.secrets.err = errors.New("keystore locked")
	out, err := f.coord.Attempt(context.Background(), validTarget)
	require.Error(t, err)
	require.Equal(t, Rejected, out.Status)
	require.Empty(t, f.trans.opened, "secret failure short-circuits the transport request")
}
