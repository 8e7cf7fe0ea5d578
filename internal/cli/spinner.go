package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// spinnerOut receives spinner frames. Frames are only drawn when it is a
// terminal, so redirected stderr stays free of carriage returns.
var spinnerOut io.Writer = os.Stderr

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows a progress line for a long stage: loading a dataset,
// building a graph, or rendering frames. It stops when its context does.
type Spinner struct {
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	out     io.Writer
	animate bool

	mu      sync.Mutex
	message string
	n       int
	total   int
	width   int
	started bool

	once    sync.Once
	stopped chan struct{}
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

func newSpinnerWithContext(parent context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(parent)
	return &Spinner{
		parent:  parent,
		ctx:     ctx,
		cancel:  cancel,
		out:     spinnerOut,
		animate: isTerminal(spinnerOut),
		message: message,
		stopped: make(chan struct{}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Start draws frames until Stop or cancellation. Without a terminal it only
// waits for either.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		if !s.animate {
			<-s.ctx.Done()
			return
		}
		t := time.NewTicker(spinnerInterval)
		defer t.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-t.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.line()
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
	s.width = max(s.width, len(line)+2)
}

// line is the message with the step counter, e.g. "Rendering 2014... 3/12".
// Callers hold mu.
func (s *Spinner) line() string {
	if s.total == 0 {
		return s.message
	}
	return fmt.Sprintf("%s %d/%d", s.message, s.n, s.total)
}

// SetTotal enables the step counter for a stage of total steps.
func (s *Spinner) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total, s.n = total, 0
}

// Advance counts one step and shows message for it.
func (s *Spinner) Advance(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	if s.total > 0 {
		s.n = min(s.n, s.total)
	}
	s.message = fmt.Sprintf(format, args...)
}

// Stop ends the animation and clears the line. It is safe to call more than
// once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.clear()
	})
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.animate && s.width > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+2))
	}
}

// StopWithSuccess stops the spinner and prints message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the command's context ended, as opposed to a
// plain Stop.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
