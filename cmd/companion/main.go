package main

import (
	"os"

	"github.com/openclaw/companion/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
