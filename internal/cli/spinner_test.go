package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer written by the spinner goroutine.
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

func TestProgressSpinnerLine(t *testing.T) {
	s := newProgressSpinner(context.Background(), &syncBuffer{}, "Sweeping")
	tests := []struct {
		done, total int
		want        string
	}{
		{0, 0, "Sweeping"},
		{0, 40, "Sweeping 0/40 (0%)"},
		{12, 40, "Sweeping 12/40 (30%)"},
		{40, 40, "Sweeping 40/40 (100%)"},
	}
	for _, tt := range tests {
		s.Observe(tt.done, tt.total)
		if got := s.line(); got != tt.want {
			t.Errorf("Observe(%d, %d): line = %q, want %q", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestProgressSpinnerDrawsProgress(t *testing.T) {
	var out syncBuffer
	s := newProgressSpinner(context.Background(), &out, "Sweeping")
	s.Start()
	s.Observe(3, 4)
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "3/4") {
		t.Errorf("output %q should show progress", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r") {
		t.Error("Stop should erase the spinner line")
	}
}

func TestProgressSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newProgressSpinner(ctx, &syncBuffer{}, "Sweeping")
	s.Start()
	cancel()

	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner did not exit after cancellation")
	}
	s.Stop()
}

func TestProgressSpinnerStopIsIdempotent(t *testing.T) {
	s := newProgressSpinner(context.Background(), &syncBuffer{}, "Sweeping")
	s.Start()
	s.Stop()
	s.Stop()
}
