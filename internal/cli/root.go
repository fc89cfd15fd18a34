// Package cli implements the companion command line: a development
// harness that drives the pairing and access-gate core with terminal
// collaborators standing in for the platform camera, prompt, and
// lifecycle hooks.
package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// Run is the main CLI entry point. It parses args and dispatches to the
// appropriate subcommand, returning a process exit code.
func Run(args []string) int {
	// Values already present in the environment win over .env entries.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "pair":
		return runPair(ctx, args[1:])
	case "scan":
		return runScan(ctx, args[1:])
	case "unlock":
		return runUnlock(ctx, args[1:])
	case "biometric":
		return runBiometric(ctx, args[1:])
	case "id":
		return runID(ctx, args[1:])
	case "status":
		return runStatus(ctx, args[1:])
	case "version", "--version", "-v":
		printVersion()
		return 0
	case "-h", "--help", "help":
		printUsage()
		return 0
	default:
		printUsage()
		return 2
	}
}
