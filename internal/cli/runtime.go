package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/openclaw/companion/internal/config"
	"github.com/openclaw/companion/internal/connect"
	"github.com/openclaw/companion/internal/identity"
	"github.com/openclaw/companion/internal/log"
	"github.com/openclaw/companion/internal/store/sqlite"
	"github.com/openclaw/companion/internal/transport"
)

// runtime bundles the wired collaborators a subcommand needs.
type runtime struct {
	cfg     config.Config
	log     *slog.Logger
	store   *sqlite.Store
	id      *identity.Provider
	gateway *transport.Gateway
	coord   *connect.Coordinator
	rest    []string
}

func newRuntime(name string, args []string) (*runtime, error) {
	cfg, rest, err := config.ParseFlags(name, args)
	if err != nil {
		return nil, err
	}
	logger := log.New(cfg.LogLevel)

	store, err := sqlite.Open(cfg.DBPath(), cfg.SealKeyPath())
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	gw := transport.New(logger)
	id := identity.New(store, logger)
	coord := connect.New(store, store, gw, gw, id, cfg.SettleWindow, logger)

	return &runtime{
		cfg:     cfg,
		log:     logger,
		store:   store,
		id:      id,
		gateway: gw,
		coord:   coord,
		rest:    rest,
	}, nil
}

func (r *runtime) close() {
	r.gateway.Close()
	_ = r.store.Close()
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}
