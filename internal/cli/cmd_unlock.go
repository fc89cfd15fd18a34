package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/openclaw/companion/internal/authgate"
)

// runUnlock runs one pass of the access gate with the terminal prompter
// standing in for the platform biometric prompt.
func runUnlock(ctx context.Context, args []string) int {
	rt, err := newRuntime("unlock", args)
	if err != nil {
		return fail(err)
	}
	defer rt.close()

	gate, err := authgate.New(ctx, rt.store, probeFromEnv(), &terminalPrompter{}, rt.log)
	if err != nil {
		return fail(err)
	}

	st := gate.Authenticate(ctx)
	switch st.Status {
	case authgate.StatusUnlocked:
		fmt.Println("unlocked")
		return 0
	case authgate.StatusFailed:
		fmt.Println("locked:", st.Err)
		return 1
	default:
		fmt.Println("locked")
		return 1
	}
}

// runBiometric manages the biometric gate preference.
func runBiometric(ctx context.Context, args []string) int {
	var action string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action = args[0]
		args = args[1:]
	}

	rt, err := newRuntime("biometric", args)
	if err != nil {
		return fail(err)
	}
	defer rt.close()

	switch action {
	case "on":
		if err := rt.store.SetBiometricEnabled(ctx, true); err != nil {
			return fail(err)
		}
		fmt.Println("biometric gate enabled")
		return 0
	case "off":
		if err := rt.store.SetBiometricEnabled(ctx, false); err != nil {
			return fail(err)
		}
		fmt.Println("biometric gate disabled")
		return 0
	case "", "status":
		enabled, err := rt.store.BiometricEnabled(ctx)
		if err != nil {
			return fail(err)
		}
		probe := probeFromEnv()
		fmt.Printf("enabled: %v\n", enabled)
		fmt.Printf("capability: %s\n", probe.Biometric().DisplayName())
		return 0
	default:
		return fail(fmt.Errorf("usage: companion biometric [on|off|status]"))
	}
}
