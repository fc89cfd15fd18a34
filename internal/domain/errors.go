package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for well-known failure conditions that cross package
// boundaries. Callers should use [errors.Is] to match these.
var (
	// ErrInvalidTarget indicates a connection target that violates its
	// structural invariants (empty host, port out of range).
	ErrInvalidTarget = errors.New("invalid connection target")

	// ErrAuthCancelled means the user dismissed the authentication prompt.
	ErrAuthCancelled = errors.New("authentication cancelled")
)

// GatewayError wraps an underlying error with gateway connection context.
type GatewayError struct {
	Addr string
	Op   string
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("gateway %s: %s: %v", e.Addr, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
