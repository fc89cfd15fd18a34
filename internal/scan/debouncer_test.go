package scan

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerAcceptsFirstFrameOnly(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(DefaultRetryDelay, nil)
	require.Equal(t, Accept, d.OnFrameDecoded("code-a"))
	require.Equal(t, Ignore, d.OnFrameDecoded("code-a"))
	require.Equal(t, Ignore, d.OnFrameDecoded("code-b"), "a different code mid-flight must also be ignored")

	code, ok := d.LastAccepted()
	require.True(t, ok)
	require.Equal(t, "code-a", code)
}

func TestDebouncerSuccessTearsDownSession(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(time.Millisecond, nil)
	require.Equal(t, Accept, d.OnFrameDecoded("code"))
	d.OnProcessingFinished(Success)

	require.True(t, d.Done())
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, Ignore, d.OnFrameDecoded("code"), "one successful pairing per session")
}

func TestDebouncerFailureResumesAfterDelay(t *testing.T) {
	t.Parallel()

	resumed := make(chan struct{})
	d := NewDebouncer(10*time.Millisecond, func() { close(resumed) })
	require.Equal(t, Accept, d.OnFrameDecoded("bad"))
	d.OnProcessingFinished(Failure)

	// Still suspended until the retry delay elapses.
	require.Equal(t, Ignore, d.OnFrameDecoded("bad"))

	select {
	case <-resumed:
	case <-time.After(time.Second):
		t.Fatal("session did not resume")
	}
	require.Equal(t, Accept, d.OnFrameDecoded("bad"))
}

func TestDebouncerStopCancelsResumeTimer(t *testing.T) {
	t.Parallel()

	resumed := make(chan struct{}, 1)
	d := NewDebouncer(10*time.Millisecond, func() { resumed <- struct{}{} })
	require.Equal(t, Accept, d.OnFrameDecoded("bad"))
	d.OnProcessingFinished(Failure)
	d.Stop()

	select {
	case <-resumed:
		t.Fatal("resume fired after Stop")
	case <-time.After(50 * time.Millisecond):
	}
	require.Equal(t, Ignore, d.OnFrameDecoded("bad"))
}

func TestDebouncerConcurrentFramesSingleWinner(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(DefaultRetryDelay, nil)

	const frames = 32
	var wg sync.WaitGroup
	accepts := make(chan Decision, frames)
	for i := 0; i < frames; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepts <- d.OnFrameDecoded("same-code")
		}()
	}
	wg.Wait()
	close(accepts)

	won := 0
	for dec := range accepts {
		if dec == Accept {
			won++
		}
	}
	require.Equal(t, 1, won, "exactly one frame may win Accept")
}
