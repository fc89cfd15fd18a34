// Package pairing decodes scanned pairing payloads into connection
// targets. The payload is the JSON text encoded in a gateway QR code:
// {"url": "wss://host:port", "token": "...", "displayName": "..."}.
// Parsing is pure: no I/O, no side effects.
package pairing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/openclaw/companion/internal/domain"
)

// Typed parse failures. All are locally recoverable: the scan session
// surfaces them and resumes. Match with [errors.Is].
var (
	ErrMalformedPayload = errors.New("malformed pairing payload")
	ErrMissingURL       = errors.New("pairing payload missing url")
	ErrInvalidURL       = errors.New("invalid gateway url")
	ErrInvalidHost      = errors.New("invalid gateway host")
	ErrInvalidPort      = errors.New("invalid gateway port")
)

// payload is the wire shape of a pairing QR code. Unknown keys are
// ignored so payloads can grow forward-compatibly; encoding/json does
// that by default.
type payload struct {
	URL         string `json:"url"`
	Token       string `json:"token"`
	DisplayName string `json:"displayName"`
}

// Parse decodes raw scanned text into a validated connection target.
// The accepted URL grammar is `(ws|wss)://host:port` where host is any
// non-empty run of characters up to the next colon and port is an
// integer in [1,65535]. No path, query, or fragment is interpreted.
func Parse(raw string) (domain.ConnectionTarget, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.ConnectionTarget{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	u := strings.TrimSpace(p.URL)
	if u == "" {
		return domain.ConnectionTarget{}, ErrMissingURL
	}

	host, port, useTLS, err := parseGatewayURL(u)
	if err != nil {
		return domain.ConnectionTarget{}, err
	}

	return domain.ConnectionTarget{
		Host:        host,
		Port:        port,
		UseTLS:      useTLS,
		Token:       p.Token,
		DisplayName: p.DisplayName,
	}, nil
}

func parseGatewayURL(raw string) (host string, port int, useTLS bool, err error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "", 0, false, fmt.Errorf("%w: missing scheme", ErrInvalidURL)
	}
	switch scheme {
	case "ws":
		useTLS = false
	case "wss":
		useTLS = true
	default:
		return "", 0, false, fmt.Errorf("%w: scheme %q", ErrInvalidURL, scheme)
	}

	host, portPart, ok := strings.Cut(rest, ":")
	if !ok {
		return "", 0, false, fmt.Errorf("%w: missing port", ErrInvalidPort)
	}
	if host == "" {
		return "", 0, false, ErrInvalidHost
	}

	// Trailing content after the digit run (a path, for example) is not
	// interpreted; only the leading digits form the port.
	digits := leadingDigits(portPart)
	if digits == "" {
		return "", 0, false, fmt.Errorf("%w: %q is not numeric", ErrInvalidPort, portPart)
	}
	port, convErr := strconv.Atoi(digits)
	if convErr != nil {
		return "", 0, false, fmt.Errorf("%w: %q: %v", ErrInvalidPort, digits, convErr)
	}
	if port < 1 || port > 65535 {
		return "", 0, false, fmt.Errorf("%w: %d out of range", ErrInvalidPort, port)
	}
	return host, port, useTLS, nil
}

func leadingDigits(s string) string {
	for i, r := range s {
		if r < '0' || r > '9' {
			return s[:i]
		}
	}
	return s
}
