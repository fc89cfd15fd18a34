package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/openclaw/companion/internal/store/sqlite"
)

// runStatus prints the persisted pairing state: manual connection
// settings, biometric preference, instance identity, and whether a
// gateway token is stored.
func runStatus(ctx context.Context, args []string) int {
	rt, err := newRuntime("status", args)
	if err != nil {
		return fail(err)
	}
	defer rt.close()

	mc, err := rt.store.ManualConnection(ctx)
	if err != nil {
		return fail(err)
	}
	enabled, err := rt.store.BiometricEnabled(ctx)
	if err != nil {
		return fail(err)
	}
	instanceID, err := rt.id.InstanceID(ctx)
	if err != nil {
		return fail(err)
	}

	hasToken := false
	if instanceID != "" {
		if _, err := rt.store.Token(ctx, instanceID); err == nil {
			hasToken = true
		} else if !errors.Is(err, sqlite.ErrTokenNotFound) {
			return fail(err)
		}
	}

	if mc.Enabled {
		scheme := "ws"
		if mc.UseTLS {
			scheme = "wss"
		}
		fmt.Printf("gateway: %s://%s:%d\n", scheme, mc.Host, mc.Port)
	} else {
		fmt.Println("gateway: not configured")
	}
	if instanceID != "" {
		fmt.Printf("instance id: %s\n", instanceID)
	} else {
		fmt.Println("instance id: not provisioned")
	}
	fmt.Printf("gateway token: %v\n", hasToken)
	fmt.Printf("biometric gate: %v\n", enabled)
	return 0
}

// runID prints the instance ID, provisioning one with --ensure.
func runID(ctx context.Context, args []string) int {
	ensure := false
	filtered := args[:0:0]
	for _, a := range args {
		if a == "--ensure" {
			ensure = true
			continue
		}
		filtered = append(filtered, a)
	}

	rt, err := newRuntime("id", filtered)
	if err != nil {
		return fail(err)
	}
	defer rt.close()

	var id string
	if ensure {
		id, err = rt.id.Ensure(ctx)
	} else {
		id, err = rt.id.InstanceID(ctx)
	}
	if err != nil {
		return fail(err)
	}
	if id == "" {
		fmt.Println("not provisioned (use --ensure)")
		return 1
	}
	fmt.Println(id)
	return 0
}
