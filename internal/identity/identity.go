// Package identity provisions and resolves the node instance ID, the
// device-scoped identifier that gateway tokens are keyed by.
package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Store persists the instance ID. Implemented by the preferences store.
type Store interface {
	InstanceID(ctx context.Context) (string, error)
	SetInstanceID(ctx context.Context, id string) error
}

// Provider resolves the node instance ID.
type Provider struct {
	store Store
	log   *slog.Logger
}

// New creates a Provider backed by the given store.
func New(store Store, logger *slog.Logger) *Provider {
	return &Provider{store: store, log: logger}
}

// InstanceID returns the current instance ID without provisioning one.
// Empty means the identity has not been established yet; a pairing
// token scanned before that point is dropped rather than queued.
func (p *Provider) InstanceID(ctx context.Context) (string, error) {
	id, err := p.store.InstanceID(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}

// Ensure returns the instance ID, generating and persisting a new one
// when none exists.
func (p *Provider) Ensure(ctx context.Context) (string, error) {
	id, err := p.InstanceID(ctx)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := p.store.SetInstanceID(ctx, id); err != nil {
		return "", err
	}
	p.log.Info("provisioned node instance id", "instance_id", id)
	return id, nil
}
