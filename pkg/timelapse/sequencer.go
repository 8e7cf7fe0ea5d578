package timelapse

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// DefaultInterval is the time between ticks.
const DefaultInterval = time.Second

// Mode controls what happens after the last year.
type Mode int

const (
	// OneShot halts after the last year.
	OneShot Mode = iota
	// Loop wraps back to the first year.
	Loop
)

func (m Mode) String() string {
	switch m {
	case OneShot:
		return "oneshot"
	case Loop:
		return "loop"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "oneshot" (or "once") and "loop".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "oneshot", "once", "one-shot":
		return OneShot, nil
	case "loop":
		return Loop, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown timelapse mode %q (must be oneshot or loop)", s)
}

// State is the run state of a Sequencer.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Sequencer drives a redraw callback across a list of years.
type Sequencer struct {
	years    []string
	mode     Mode
	interval time.Duration
	redraw   func(year string)

	mu     sync.Mutex
	cursor int
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	drawMu sync.Mutex
}

// New returns an idle sequencer positioned at the first year. A non-positive
// interval selects DefaultInterval.
func New(years []string, mode Mode, interval time.Duration, redraw func(year string)) *Sequencer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if redraw == nil {
		redraw = func(string) {}
	}
	return &Sequencer{
		years:    slices.Clone(years),
		mode:     mode,
		interval: interval,
		redraw:   redraw,
	}
}

func (s *Sequencer) Years() []string         { return slices.Clone(s.years) }
func (s *Sequencer) Mode() Mode              { return s.mode }
func (s *Sequencer) Interval() time.Duration { return s.interval }

// State reports whether the ticker is running.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the index of the year the next tick will draw.
func (s *Sequencer) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Start launches the ticker. It is a no-op when already running or when the
// year list is empty. A one-shot sequencer that has finished restarts from
// the first year. The ticker stops when ctx is cancelled.
func (s *Sequencer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state == Running || len(s.years) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Reap a goroutine that halted on its own.
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		return
	}
	if s.cursor >= len(s.years) {
		s.cursor = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done, s.state = cancel, done, Running

	go s.run(ctx, time.NewTicker(s.interval), done)
}

func (s *Sequencer) run(ctx context.Context, t *time.Ticker, done chan struct{}) {
	defer close(done)
	defer t.Stop()
	defer s.halt()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			if _, more := s.tick(ctx); !more {
				return
			}
		}
	}
}

// halt marks the sequencer idle when the goroutine exits, whether through
// ctx, Stop, or the end of a one-shot run.
func (s *Sequencer) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
}

// Stop cancels the ticker and waits for the goroutine to exit. It must not be
// called from the redraw callback.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.state = Idle
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Toggle starts an idle sequencer or stops a running one and returns the new
// state.
func (s *Sequencer) Toggle(ctx context.Context) State {
	if s.State() == Running {
		s.Stop()
	} else {
		s.Start(ctx)
	}
	return s.State()
}

// Step performs one tick synchronously. It returns the year drawn and
// whether a redraw happened; a finished one-shot sequencer draws nothing.
func (s *Sequencer) Step() (string, bool) {
	year, _ := s.tick(context.Background())
	return year, year != ""
}

// tick draws the year under the cursor and advances it. The bool reports
// whether another tick has anything to draw. A cancelled ctx leaves the
// cursor where it was.
func (s *Sequencer) tick(ctx context.Context) (string, bool) {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()
	if ctx.Err() != nil {
		return "", false
	}

	s.mu.Lock()
	if len(s.years) == 0 || s.cursor >= len(s.years) {
		s.mu.Unlock()
		return "", false
	}
	year := s.years[s.cursor]
	s.cursor++
	more := true
	if s.cursor >= len(s.years) {
		if s.mode == Loop {
			s.cursor = 0
		} else {
			more = false
		}
	}
	s.mu.Unlock()

	s.redraw(year)
	return year, more
}

// Override redraws year immediately. While running the cursor is left alone,
// so the next tick draws the scheduled year. While idle the cursor moves to
// the year after the override. It reports false for a year not in the list.
func (s *Sequencer) Override(year string) bool {
	i := slices.Index(s.years, year)
	if i < 0 {
		return false
	}
	s.mu.Lock()
	if s.state == Idle {
		s.cursor = i + 1
		if s.cursor >= len(s.years) && s.mode == Loop {
			s.cursor = 0
		}
	}
	s.mu.Unlock()

	s.drawMu.Lock()
	defer s.drawMu.Unlock()
	s.redraw(year)
	return true
}

// Reset rewinds the cursor to the first year.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = 0
}
