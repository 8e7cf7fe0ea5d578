package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Loading dataset...")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop alone should not count as cancellation")
	}
}

func TestSpinnerCancelledByContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, "Rendering frames...")
			s.Start()
			<-ctx.Done()
			s.Stop()
			if !s.Cancelled() {
				t.Error("spinner should report cancellation")
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Building flow graph...")
	s.Stop() // before Start
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerQuietWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	old := spinnerOut
	spinnerOut = &buf
	defer func() { spinnerOut = old }()

	s := newSpinner("Rendering map...")
	if s.animate {
		t.Fatal("a buffer is not a terminal")
	}
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestSpinnerDrawsCounter(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Rendering frames...")
	s.out, s.animate = &buf, true

	s.SetTotal(3)
	s.Advance("Rendering %s...", "2014")
	s.Advance("Rendering %s...", "2015")
	s.draw(spinnerFrames[0])
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering 2015... 2/3") {
		t.Errorf("output %q should show the step counter", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q should end by clearing the line", out)
	}
}

func TestSpinnerAdvanceCapsAtTotal(t *testing.T) {
	s := newSpinner("Rendering frames...")
	s.SetTotal(1)
	s.Advance("a")
	s.Advance("b")
	if got := s.line(); got != "b 1/1" {
		t.Errorf("line = %q, want %q", got, "b 1/1")
	}

	if got := newSpinner("Loading refugees.csv...").line(); got != "Loading refugees.csv..." {
		t.Errorf("line without a total = %q", got)
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	old := stdout
	var buf bytes.Buffer
	stdout = &buf
	defer func() { stdout = old }()

	newSpinner("Rendering...").StopWithSuccess("Rendered 12 frames")
	newSpinner("Rendering...").StopWithError("render failed")
	if !strings.Contains(buf.String(), "Rendered 12 frames") || !strings.Contains(buf.String(), "render failed") {
		t.Errorf("output %q", buf.String())
	}
}
