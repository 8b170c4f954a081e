package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// progressSpinner animates on w while a long step runs. Sweeps feed it
// through Observe to show how many samples have been solved. It stops on
// Stop or when its context ends.
type progressSpinner struct {
	w     io.Writer
	label string
	done  atomic.Int64
	total atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}
	once   sync.Once

	mu    sync.Mutex
	width int // widest line drawn so far
}

func newProgressSpinner(ctx context.Context, w io.Writer, label string) *progressSpinner {
	ctx, cancel := context.WithCancel(ctx)
	return &progressSpinner{w: w, label: label, ctx: ctx, cancel: cancel, exited: make(chan struct{})}
}

// Observe records sweep progress. It has the shape of the sweep Progress hook
// and is safe to call from worker goroutines.
func (s *progressSpinner) Observe(done, total int) {
	s.done.Store(int64(done))
	s.total.Store(int64(total))
}

func (s *progressSpinner) line() string {
	total := s.total.Load()
	if total == 0 {
		return s.label
	}
	done := s.done.Load()
	return fmt.Sprintf("%s %d/%d (%d%%)", s.label, done, total, done*100/total)
}

func (s *progressSpinner) Start() {
	go func() {
		defer close(s.exited)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				text := s.line()
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(text))
				s.width = max(s.width, len(text)+2)
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the animation and erases the spinner line. Further calls are no-ops.
func (s *progressSpinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.exited
		s.mu.Lock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
		s.mu.Unlock()
	})
}
