// Package connect drives a gateway connection attempt: persist the manual
// connection settings, store the pairing token, make sure the connection
// supervisor is running, ask the transport to open, then wait a settle
// window before declaring provisional success.
package connect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openclaw/companion/internal/domain"
)

// DefaultSettleWindow is the fixed wait after requesting a connection
// before the attempt is declared provisionally successful. It is a
// heuristic delay, not a handshake acknowledgment: the transport may
// still fail after this window and reports that through its own status
// channel. Replace with an explicit transport ack if one becomes
// available.
const DefaultSettleWindow = time.Second

// Preferences persists the manual connection settings. Writes are
// idempotent overwrites.
type Preferences interface {
	SetManualConnection(ctx context.Context, enabled bool, host string, port int, useTLS bool) error
}

// SecretStore persists pairing tokens keyed by the node instance ID.
type SecretStore interface {
	SaveToken(ctx context.Context, scopeKey, token string) error
}

// Transport opens gateway connections. Open is a fire-and-forget request;
// the connection result is observed via the transport's own status
// channel, never through this coordinator.
type Transport interface {
	Open(ctx context.Context, host string, port int, useTLS bool) error
}

// ServiceController ensures the background connection-owning service is
// running (start-if-absent).
type ServiceController interface {
	EnsureRunning(ctx context.Context) error
}

// Identity reports the provisioned node instance ID, or empty when none
// has been established yet.
type Identity interface {
	InstanceID(ctx context.Context) (string, error)
}

// Status classifies how an attempt ended.
type Status int

const (
	// Connected means every step ran and the settle window elapsed.
	Connected Status = iota
	// Rejected means the target or a local persistence step failed before
	// the transport was asked to connect.
	Rejected
	// TransportFailed means the transport refused the open request.
	TransportFailed
)

// Outcome is the result of one connection attempt.
type Outcome struct {
	Status     Status
	Reason     string
	TokenSaved bool
	// TokenSkipped is true when the payload carried a token but no
	// instance ID existed to key it, so the write was skipped. The token
	// is dropped, not queued; callers that care should re-pair after the
	// identity has been provisioned.
	TokenSkipped bool
}

// Coordinator runs the attempt sequence against its collaborators. At
// most one attempt is in flight per scan session, enforced by the scan
// debouncer upstream.
type Coordinator struct {
	prefs   Preferences
	secrets SecretStore
	trans   Transport
	svc     ServiceController
	id      Identity
	log     *slog.Logger
	settle  time.Duration
}

// New creates a Coordinator. A settle of zero means DefaultSettleWindow.
func New(prefs Preferences, secrets SecretStore, trans Transport, svc ServiceController, id Identity, settle time.Duration, logger *slog.Logger) *Coordinator {
	if settle <= 0 {
		settle = DefaultSettleWindow
	}
	return &Coordinator{
		prefs:   prefs,
		secrets: secrets,
		trans:   trans,
		svc:     svc,
		id:      id,
		log:     logger,
		settle:  settle,
	}
}

// Attempt runs the full sequence for one target. Each step's failure
// short-circuits the remainder, except the token write, which is skipped
// silently when no instance ID exists yet.
func (c *Coordinator) Attempt(ctx context.Context, target domain.ConnectionTarget) (Outcome, error) {
	if err := target.Validate(); err != nil {
		return Outcome{Status: Rejected, Reason: err.Error()}, err
	}

	if err := c.prefs.SetManualConnection(ctx, true, target.Host, target.Port, target.UseTLS); err != nil {
		err = fmt.Errorf("persist manual connection: %w", err)
		return Outcome{Status: Rejected, Reason: err.Error()}, err
	}

	out := Outcome{Status: Connected}
	if target.Token != "" {
		saved, skipped, err := c.saveToken(ctx, target.Token)
		if err != nil {
			out = Outcome{Status: Rejected, Reason: err.Error()}
			return out, err
		}
		out.TokenSaved = saved
		out.TokenSkipped = skipped
	}

	if err := c.svc.EnsureRunning(ctx); err != nil {
		err = fmt.Errorf("start connection service: %w", err)
		out.Status = TransportFailed
		out.Reason = err.Error()
		return out, err
	}

	if err := c.trans.Open(ctx, target.Host, target.Port, target.UseTLS); err != nil {
		err = &domain.GatewayError{Addr: target.Addr(), Op: "open", Err: err}
		out.Status = TransportFailed
		out.Reason = err.Error()
		return out, err
	}

	c.log.Info("gateway connection requested",
		"host", target.Host, "port", target.Port, "tls", target.UseTLS,
		"token_saved", out.TokenSaved)

	// Settle window: absorb the asynchronous connection establishment
	// without blocking indefinitely. Cancellable.
	select {
	case <-ctx.Done():
		out.Status = TransportFailed
		out.Reason = ctx.Err().Error()
		return out, ctx.Err()
	case <-time.After(c.settle):
	}

	return out, nil
}

func (c *Coordinator) saveToken(ctx context.Context, token string) (saved, skipped bool, err error) {
	instanceID, err := c.id.InstanceID(ctx)
	if err != nil {
		return false, false, fmt.Errorf("resolve instance id: %w", err)
	}
	instanceID = strings.TrimSpace(instanceID)
	if instanceID == "" {
		// First-run ordering: the identity may not be provisioned before
		// the first scan. The original clients drop the token here.
		c.log.Warn("skipping gateway token write: no instance id provisioned yet")
		return false, true, nil
	}
	if err := c.secrets.SaveToken(ctx, instanceID, token); err != nil {
		return false, false, fmt.Errorf("persist gateway token: %w", err)
	}
	return true, false, nil
}
