package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openclaw/companion/internal/connect"
	"github.com/openclaw/companion/internal/pairing"
)

// runPair decodes one pairing payload (argument, or stdin with "-") and
// drives a single connection attempt.
func runPair(ctx context.Context, args []string) int {
	rt, err := newRuntime("pair", args)
	if err != nil {
		return fail(err)
	}
	defer rt.close()

	raw, err := pairPayload(rt.rest)
	if err != nil {
		return fail(err)
	}

	target, err := pairing.Parse(raw)
	if err != nil {
		return fail(fmt.Errorf("invalid gateway configuration: %w", err))
	}

	// Provision the instance identity up front so a scanned token has a
	// scope to be saved under.
	if _, err := rt.id.Ensure(ctx); err != nil {
		rt.log.Warn("could not provision instance id", "err", err)
	}

	out, err := rt.coord.Attempt(ctx, target)
	switch out.Status {
	case connect.Connected:
		name := target.DisplayName
		if name == "" {
			name = target.Addr()
		}
		fmt.Printf("paired with %s (%s)\n", name, target.URL())
		if out.TokenSkipped {
			fmt.Println("warning: pairing token was not saved (no instance id)")
		}
		return 0
	case connect.Rejected:
		return fail(fmt.Errorf("pairing rejected: %w", err))
	default:
		return fail(fmt.Errorf("connection failed: %w", err))
	}
}

func pairPayload(rest []string) (string, error) {
	if len(rest) == 0 {
		return "", fmt.Errorf("usage: companion pair <payload|->")
	}
	raw := rest[0]
	if raw == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		raw = string(b)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty pairing payload")
	}
	return raw, nil
}
