package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
)

// Gateway tokens are sealed at rest with a device-local secretbox key.
// The key lives next to the database in a 0600 file and is provisioned
// on first open. This stands in for the platform keystore the native
// apps use; the scope key is the node instance ID.

const nonceSize = 24

func loadOrCreateSealKey(path string) ([32]byte, error) {
	var key [32]byte
	raw, err := os.ReadFile(path)
	if err == nil {
		if len(raw) != len(key) {
			return key, fmt.Errorf("seal key %s: expected %d bytes, found %d", path, len(key), len(raw))
		}
		copy(key[:], raw)
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return key, err
	}
	if _, err := rand.Read(key[:]); err != nil {
		return key, err
	}
	if err := ensureParentDir(path); err != nil {
		return key, err
	}
	if err := os.WriteFile(path, key[:], 0o600); err != nil {
		return key, err
	}
	return key, nil
}

// SaveToken seals and stores a gateway token under scopeKey, overwriting
// any previous token for the same scope.
func (s *Store) SaveToken(ctx context.Context, scopeKey, token string) error {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.sealKey)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO gateway_tokens(scope_key, sealed, updated_at) VALUES(?, ?, ?)
ON CONFLICT(scope_key) DO UPDATE SET sealed = excluded.sealed, updated_at = excluded.updated_at`,
		scopeKey, sealed, time.Now().UTC())
	return err
}

// Token opens and returns the gateway token stored under scopeKey.
// Returns ErrTokenNotFound when no token exists for the scope.
func (s *Store) Token(ctx context.Context, scopeKey string) (string, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT sealed FROM gateway_tokens WHERE scope_key = ?`, scopeKey).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("sealed token for %s is truncated", scopeKey)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.sealKey)
	if !ok {
		return "", fmt.Errorf("sealed token for %s failed to open", scopeKey)
	}
	return string(plain), nil
}

// DeleteToken removes the token for scopeKey, if any.
func (s *Store) DeleteToken(ctx context.Context, scopeKey string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM gateway_tokens WHERE scope_key = ?`, scopeKey)
	return err
}
