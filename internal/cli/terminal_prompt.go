package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/openclaw/companion/internal/authgate"
	"github.com/openclaw/companion/internal/domain"
)

// terminalPrompter is the development stand-in for the platform
// authentication prompt. A "y" answer is a successful recognition,
// anything else is a user cancellation. It resolves only on terminal
// results, matching the prompter contract.
type terminalPrompter struct{}

func (terminalPrompter) PromptBiometricOrCredential(ctx context.Context, title, subtitle string) error {
	return confirm(ctx, fmt.Sprintf("%s - %s [y/N]: ", title, subtitle))
}

func (terminalPrompter) PromptCredentialOnly(ctx context.Context, title string) error {
	return confirm(ctx, fmt.Sprintf("%s (device credential) [y/N]: ", title))
}

func confirm(ctx context.Context, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isInteractiveInput() {
		return domain.ErrAuthCancelled
	}
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return domain.ErrAuthCancelled
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return domain.ErrAuthCancelled
	}
}

func isInteractiveInput() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// probeFromEnv builds the capability probe from platform codes supplied
// through the environment, defaulting to an available device credential
// so the terminal harness can exercise the fallback path.
func probeFromEnv() authgate.CodeProbe {
	return authgate.CodeProbe{
		BiometricCode:        envCode("COMPANION_BIOMETRIC_CODE", domain.CodeNoHardware),
		DeviceCredentialCode: envCode("COMPANION_DEVICE_CREDENTIAL_CODE", domain.CodeSuccess),
	}
}

func envCode(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	code, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return code
}
