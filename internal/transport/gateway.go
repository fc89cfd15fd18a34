// Package transport owns the client side of the gateway WebSocket
// connection. Open is fire-and-forget: it hands the target to a
// background supervisor that dials, keeps the session alive, and
// reconnects with jittered exponential backoff. Connection results are
// observed through the status channel, never through Open's return
// value.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openclaw/companion/internal/domain"
)

// StateKind classifies a connection status event.
type StateKind string

const (
	StateConnecting   StateKind = "connecting"
	StateConnected    StateKind = "connected"
	StateDisconnected StateKind = "disconnected"
)

// Status is one event on the transport's independent status channel.
type Status struct {
	State StateKind
	Addr  string
	Err   string
	At    time.Time
}

const (
	reconnectInitialDelay = 2 * time.Second
	reconnectMaxDelay     = 1 * time.Minute
	wsHandshakeTimeout    = 10 * time.Second
	wsReadLimit           = 32 * 1024 * 1024
	wsWriteTimeout        = 15 * time.Second
	defaultPingInterval   = 30 * time.Second
	statusBuffer          = 32
)

// Gateway supervises a single gateway connection. A second Open replaces
// the running supervisor with the new target.
type Gateway struct {
	log          *slog.Logger
	pingInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	status chan Status
}

// New creates a Gateway supervisor.
func New(logger *slog.Logger) *Gateway {
	return &Gateway{
		log:          logger,
		pingInterval: defaultPingInterval,
		status:       make(chan Status, statusBuffer),
	}
}

// Status returns the connection status channel. Sends never block; when
// the consumer lags, the oldest event is dropped.
func (g *Gateway) Status() <-chan Status {
	return g.status
}

// EnsureRunning reports whether the connection-owning supervisor can be
// used. The supervisor is in-process, so there is nothing to start
// here; platform adapters that host the connection in a separate
// service override this collaborator.
func (g *Gateway) EnsureRunning(context.Context) error {
	return nil
}

// Open requests a connection to host:port. The request outlives the
// caller's context: the supervisor runs until Close or a replacing Open.
func (g *Gateway) Open(ctx context.Context, host string, port int, useTLS bool) error {
	if host == "" {
		return fmt.Errorf("%w: empty host", domain.ErrInvalidTarget)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidTarget, port)
	}

	scheme := "ws"
	if useTLS {
		scheme = "wss"
	}
	u := scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))

	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	superCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g.cancel = cancel
	g.mu.Unlock()

	go g.supervise(superCtx, u)
	return nil
}

// Close stops the supervisor and drops the connection.
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.mu.Unlock()
}

func (g *Gateway) supervise(ctx context.Context, url string) {
	backoff := reconnectInitialDelay
	for {
		g.publish(Status{State: StateConnecting, Addr: url, At: time.Now()})
		err := g.runSession(ctx, url)
		if ctx.Err() != nil {
			return
		}
		reason := "unknown"
		if err != nil {
			reason = err.Error()
		}
		g.log.Warn("gateway disconnected; reconnecting", "addr", url, "err", reason, "retry_in", backoff.String())
		g.publish(Status{State: StateDisconnected, Addr: url, Err: reason, At: time.Now()})
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

func (g *Gateway) runSession(ctx context.Context, url string) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: wsHandshakeTimeout,
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	conn.SetReadLimit(wsReadLimit)
	defer func() { _ = conn.Close() }()

	g.log.Info("gateway connected", "addr", url)
	g.publish(Status{State: StateConnected, Addr: url, At: time.Now()})

	sessionCtx, cancelSession := context.WithCancel(ctx)
	defer cancelSession()
	go func() {
		<-sessionCtx.Done()
		_ = conn.Close()
	}()

	keepaliveErr := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(g.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sessionCtx.Done():
				return
			case <-ticker.C:
				deadline := time.Now().Add(wsWriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					select {
					case keepaliveErr <- err:
					default:
					}
					return
				}
			}
		}
	}()

	readErr := make(chan error, 1)
	go func() {
		for {
			// The gateway protocol past the handshake is handled by the
			// runtime layer; here we only keep the session alive and
			// detect loss.
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-keepaliveErr:
		return err
	case err := <-readErr:
		return err
	}
}

func (g *Gateway) publish(st Status) {
	for {
		select {
		case g.status <- st:
			return
		default:
		}
		select {
		case <-g.status:
		default:
		}
	}
}

func nextBackoff(current time.Duration) time.Duration {
	if current <= 0 {
		current = reconnectInitialDelay
	}
	next := current * 2
	if next > reconnectMaxDelay {
		next = reconnectMaxDelay
	}
	// ±25% jitter to avoid thundering herd on reconnect.
	jitter := 1.0 + (rand.Float64()-0.5)*0.5
	return time.Duration(float64(next) * jitter)
}
