package cli

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

func printVersion() {
	fmt.Println("companion", Version)
}

func printUsage() {
	fmt.Print(`companion - OpenClaw gateway pairing client

Usage:
  companion pair <payload|->     decode a pairing payload and connect
  companion scan                 scan loop; one decoded frame per stdin line
  companion unlock               run the biometric access gate
  companion biometric [on|off|status]
                                 manage the biometric gate preference
  companion id [--ensure]        show (or provision) the instance id
  companion status               show persisted pairing state
  companion version              print version

Shared flags:
  --data-dir          settings directory (COMPANION_DATA_DIR)
  --log-level         debug|info|warn|error (COMPANION_LOG_LEVEL)
  --settle-window     wait after a connection request (COMPANION_SETTLE_WINDOW)
  --scan-retry-delay  suspension after a rejected scan (COMPANION_SCAN_RETRY_DELAY)
`)
}
