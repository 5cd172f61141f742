package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer for writes from the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndUpdates(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Generating scene...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Update("Patching %d instances...", 200)
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	got := out.String()
	for _, want := range []string{"Generating scene...", "Patching 200 instances..."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("line should be cleared on stop: %q", got)
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerTo(ctx, &syncBuffer{}, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(2 * spinnerInterval)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerTo(ctx, &syncBuffer{}, "Testing with timeout...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "Stopping...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	out := captureStdout(t)
	var buf syncBuffer
	s := newSpinnerTo(context.Background(), &buf, "Testing success...")
	s.Start()
	s.StopWithSuccess("Done!")

	s = newSpinnerTo(context.Background(), &buf, "Testing error...")
	s.Start()
	s.StopWithError("Failed!")

	if !strings.Contains(out.String(), "Done!") || !strings.Contains(out.String(), "Failed!") {
		t.Errorf("status lines = %q", out.String())
	}
}

func TestWithSpinner(t *testing.T) {
	calls := 0
	err := withSpinner(context.Background(), "Working...", "Failed", func(sp *Spinner) error {
		calls++
		sp.Update("still working")
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("withSpinner() = %v after %d calls", err, calls)
	}

	boom := errors.New("boom")
	if err := withSpinner(context.Background(), "Working...", "Failed", func(*Spinner) error { return boom }); err != boom {
		t.Errorf("withSpinner() = %v, want %v", err, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	err = withSpinner(ctx, "Working...", "Failed", func(*Spinner) error {
		cancel()
		return boom
	})
	if err != context.Canceled {
		t.Errorf("withSpinner() = %v, want context.Canceled", err)
	}
}
