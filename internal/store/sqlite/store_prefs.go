package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Preference keys. These mirror the keys the native apps already use, so
// a migrated settings dump stays readable.
const (
	prefManualEnabled = "gateway.manual.enabled"
	prefManualHost    = "gateway.manual.host"
	prefManualPort    = "gateway.manual.port"
	prefManualTLS     = "gateway.manual.tls"
	prefBiometric     = "biometric.enabled"
	prefInstanceID    = "node.instanceId"
)

// ManualConnection is the persisted manual gateway connection settings.
type ManualConnection struct {
	Enabled bool
	Host    string
	Port    int
	UseTLS  bool
}

// SetManualConnection overwrites the manual connection settings in one
// transaction. Repeating the call with the same values is a no-op
// overwrite, never an accumulation.
func (s *Store) SetManualConnection(ctx context.Context, enabled bool, host string, port int, useTLS bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	values := map[string]string{
		prefManualEnabled: strconv.FormatBool(enabled),
		prefManualHost:    host,
		prefManualPort:    strconv.Itoa(port),
		prefManualTLS:     strconv.FormatBool(useTLS),
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO preferences(key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// ManualConnection reads the persisted manual connection settings.
// Missing keys yield the zero value.
func (s *Store) ManualConnection(ctx context.Context) (ManualConnection, error) {
	var mc ManualConnection
	if v, ok, err := s.getPref(ctx, prefManualEnabled); err != nil {
		return mc, err
	} else if ok {
		mc.Enabled = v == "true"
	}
	if v, _, err := s.getPref(ctx, prefManualHost); err != nil {
		return mc, err
	} else {
		mc.Host = v
	}
	if v, ok, err := s.getPref(ctx, prefManualPort); err != nil {
		return mc, err
	} else if ok {
		port, convErr := strconv.Atoi(v)
		if convErr != nil {
			return mc, fmt.Errorf("corrupt %s value %q: %w", prefManualPort, v, convErr)
		}
		mc.Port = port
	}
	if v, ok, err := s.getPref(ctx, prefManualTLS); err != nil {
		return mc, err
	} else if ok {
		mc.UseTLS = v == "true"
	}
	return mc, nil
}

// BiometricEnabled reads the biometric gate preference; absent means
// disabled.
func (s *Store) BiometricEnabled(ctx context.Context) (bool, error) {
	v, ok, err := s.getPref(ctx, prefBiometric)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

// SetBiometricEnabled persists the biometric gate preference.
func (s *Store) SetBiometricEnabled(ctx context.Context, enabled bool) error {
	return s.setPref(ctx, prefBiometric, strconv.FormatBool(enabled))
}

// InstanceID returns the provisioned node instance ID, empty when none
// has been established yet. The value is trimmed on read.
func (s *Store) InstanceID(ctx context.Context) (string, error) {
	v, _, err := s.getPref(ctx, prefInstanceID)
	return strings.TrimSpace(v), err
}

// SetInstanceID persists the node instance ID.
func (s *Store) SetInstanceID(ctx context.Context, id string) error {
	return s.setPref(ctx, prefInstanceID, strings.TrimSpace(id))
}
