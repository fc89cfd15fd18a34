// Package authgate governs whether protected app content is visible. A
// gate is Locked until a biometric (or device-credential) prompt
// succeeds, re-locks when the app returns to the foreground, and is a
// complete no-op while the biometric preference is disabled.
package authgate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/openclaw/companion/internal/domain"
)

// Status is the gate's visibility state.
type Status string

const (
	// StatusLocked hides content; authentication has not been attempted
	// or is in flight.
	StatusLocked Status = "locked"
	// StatusUnlocked shows content.
	StatusUnlocked Status = "unlocked"
	// StatusFailed hides content after an explicitly rejected attempt;
	// the error is surfaced and cleared by the next attempt or reset.
	StatusFailed Status = "failed"
)

// State is an observable snapshot of the gate.
type State struct {
	Status     Status
	Capability domain.CapabilityKind
	Err        string
}

// Unlocked reports whether content may be shown.
func (s State) Unlocked() bool { return s.Status == StatusUnlocked }

// CapabilityProbe is the platform-facing snapshot query of available
// authentication factors. It has no persistent state and is re-queried
// on every attempt, since enrollment can change between launches.
type CapabilityProbe interface {
	// Biometric reports the biometric factor's availability.
	Biometric() domain.CapabilityKind
	// DeviceCredential reports the device passcode/PIN availability.
	DeviceCredential() domain.CapabilityKind
}

// Prompter displays the platform authentication prompt. Implementations
// resolve only on terminal results: success (nil), cancellation
// (domain.ErrAuthCancelled), or a terminal prompt error. A plain failed
// biometric recognition is retried inline by the prompt itself and never
// reaches the gate.
type Prompter interface {
	PromptBiometricOrCredential(ctx context.Context, title, subtitle string) error
	PromptCredentialOnly(ctx context.Context, title string) error
}

// Preferences persists the user's biometric-enabled flag.
type Preferences interface {
	BiometricEnabled(ctx context.Context) (bool, error)
	SetBiometricEnabled(ctx context.Context, enabled bool) error
}

const (
	promptTitle    = "Unlock OpenClaw"
	promptSubtitle = "Authenticate to continue"

	cancelledMessage = "Authentication cancelled"
	noMethodMessage  = "No authentication method available"
)

const stateBuffer = 16

// Gate is the authentication state machine. All transitions run under a
// single mutex; the mutex is released while a prompt is displayed, and a
// generation counter discards prompt results that arrive after the gate
// has been externally reset (reset wins).
type Gate struct {
	prefs  Preferences
	probe  CapabilityProbe
	prompt Prompter
	log    *slog.Logger

	mu      sync.Mutex
	st      State
	gen     uint64
	updates chan State
}

// New creates a gate. The initial state is Locked when the biometric
// preference is enabled, otherwise Unlocked immediately: with the
// preference off the gate is bypassed entirely.
func New(ctx context.Context, prefs Preferences, probe CapabilityProbe, prompt Prompter, logger *slog.Logger) (*Gate, error) {
	enabled, err := prefs.BiometricEnabled(ctx)
	if err != nil {
		return nil, err
	}
	g := &Gate{
		prefs:   prefs,
		probe:   probe,
		prompt:  prompt,
		log:     logger,
		updates: make(chan State, stateBuffer),
	}
	if enabled {
		g.st = State{Status: StatusLocked}
	} else {
		g.st = State{Status: StatusUnlocked}
	}
	return g, nil
}

// State returns the current snapshot.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st
}

// Updates returns the state-change channel. Sends never block; when the
// consumer lags, the oldest snapshot is dropped.
func (g *Gate) Updates() <-chan State {
	return g.updates
}

// Authenticate runs one authentication attempt and returns the resulting
// state. Failures are never retried automatically; the caller decides
// whether to call again. The call suspends while the platform prompt is
// visible; cancelling ctx abandons the prompt.
func (g *Gate) Authenticate(ctx context.Context) State {
	g.mu.Lock()
	gen := g.gen
	g.st.Err = ""
	g.publishLocked()
	g.mu.Unlock()

	enabled, err := g.prefs.BiometricEnabled(ctx)
	if err != nil {
		g.log.Error("failed to read biometric preference", "err", err)
		return g.resolve(gen, StatusFailed, err.Error(), domain.CapabilityUnknown)
	}
	if !enabled {
		return g.resolve(gen, StatusUnlocked, "", domain.CapabilityUnknown)
	}

	bio := g.probe.Biometric()
	cred := g.probe.DeviceCredential()

	switch {
	case bio == domain.CapabilityAvailable:
		err = g.prompt.PromptBiometricOrCredential(ctx, promptTitle, promptSubtitle)
	case cred == domain.CapabilityAvailable:
		err = g.prompt.PromptCredentialOnly(ctx, promptTitle)
	default:
		g.log.Warn("authentication impossible", "biometric", bio, "device_credential", cred)
		return g.resolve(gen, StatusFailed, noMethodMessage, bio)
	}

	switch {
	case err == nil:
		return g.resolve(gen, StatusUnlocked, "", bio)
	case errors.Is(err, domain.ErrAuthCancelled):
		return g.resolve(gen, StatusFailed, cancelledMessage, bio)
	default:
		return g.resolve(gen, StatusFailed, err.Error(), bio)
	}
}

// resolve applies a prompt result unless the gate was reset while the
// prompt was in flight, in which case the stale result is discarded.
func (g *Gate) resolve(gen uint64, status Status, errMsg string, kind domain.CapabilityKind) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != gen {
		g.log.Debug("discarding stale authentication result", "status", status)
		return g.st
	}
	g.st = State{Status: status, Capability: kind, Err: errMsg}
	g.publishLocked()
	return g.st
}

// ResetAuthentication forces Locked with the error cleared. Any prompt
// still in flight resolves into a discarded result.
func (g *Gate) ResetAuthentication() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.st = State{Status: StatusLocked, Capability: g.st.Capability}
	g.publishLocked()
}

// HandleForeground re-locks on app resume while the preference is
// enabled, regardless of prior state. Lifecycle transitions are applied
// before any Authenticate call issued in response to the same event.
func (g *Gate) HandleForeground(ctx context.Context) {
	enabled, err := g.prefs.BiometricEnabled(ctx)
	if err != nil {
		g.log.Error("failed to read biometric preference", "err", err)
		return
	}
	if !enabled {
		return
	}
	g.ResetAuthentication()
}

func (g *Gate) publishLocked() {
	for {
		select {
		case g.updates <- g.st:
			return
		default:
		}
		select {
		case <-g.updates:
		default:
		}
	}
}
