package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openclaw/companion/internal/domain"
	"github.com/openclaw/companion/internal/scan"
)

// runScan emulates the camera scan loop: each stdin line is one decoded
// frame. The session debounces frames, parses the first accepted payload,
// and runs the connection attempt. Exits once a pairing succeeds.
func runScan(ctx context.Context, args []string) int {
	rt, err := newRuntime("scan", args)
	if err != nil {
		return fail(err)
	}
	defer rt.close()

	if _, err := rt.id.Ensure(ctx); err != nil {
		rt.log.Warn("could not provision instance id", "err", err)
	}

	connector := connectorFunc(func(ctx context.Context, target domain.ConnectionTarget) error {
		_, err := rt.coord.Attempt(ctx, target)
		return err
	})
	session := scan.NewSession(connector, rt.cfg.ScanRetryDelay, rt.log)
	session.SetCameraPermission(true)
	session.Start()
	defer session.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range session.Updates() {
			renderScanState(st)
			if st.ShouldDismiss {
				return
			}
		}
	}()

	fmt.Println("scanning; paste pairing payloads, one per line")
	lines := bufio.NewScanner(os.Stdin)
	for lines.Scan() {
		code := strings.TrimSpace(lines.Text())
		if code == "" {
			continue
		}
		session.HandleFrame(ctx, code)
		if session.State().ShouldDismiss {
			break
		}
		select {
		case <-ctx.Done():
			return 1
		default:
		}
	}

	if session.State().ShouldDismiss {
		<-done
		return 0
	}
	return 1
}

type connectorFunc func(ctx context.Context, target domain.ConnectionTarget) error

func (f connectorFunc) Attempt(ctx context.Context, target domain.ConnectionTarget) error {
	return f(ctx, target)
}

func renderScanState(st scan.State) {
	switch {
	case st.Err != "":
		fmt.Println(st.Err)
	case st.Connecting:
		fmt.Println("Connecting...")
	case st.ShouldDismiss:
		fmt.Println("Paired; closing scanner")
	}
}
