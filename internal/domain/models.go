// Package domain holds the shared data model of the companion client:
// connection targets decoded from pairing payloads, biometric capability
// kinds, and the sentinel errors that cross package boundaries.
package domain

import "fmt"

// ConnectionTarget describes a gateway the client should connect to,
// decoded from a scanned pairing payload. Host and port always come from
// a well-formed ws:// or wss:// URL; UseTLS is true iff the scheme was
// the secure variant.
type ConnectionTarget struct {
	Host        string
	Port        int
	UseTLS      bool
	Token       string // optional pairing token, empty when absent
	DisplayName string // optional human-readable gateway name
}

// Validate re-checks the structural invariants of a parsed target.
// Parsing is the parser's job; this exists so consumers can reject
// hand-built or zero values.
func (t ConnectionTarget) Validate() error {
	if t.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidTarget)
	}
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidTarget, t.Port)
	}
	return nil
}

// Addr returns the host:port form used for display and logging.
func (t ConnectionTarget) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// URL reconstructs the gateway URL from the target fields.
func (t ConnectionTarget) URL() string {
	scheme := "ws"
	if t.UseTLS {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, t.Host, t.Port)
}
