package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Indicator is a loading overlay shown while a request is in flight.
type Indicator interface {
	Show(message string)
	Hide()
}

// NewIndicator returns a Spinner for interactive terminals, or a
// LineIndicator under CI or when w is a file that is not a terminal.
func NewIndicator(w io.Writer) Indicator {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LineIndicator{w: w}
	}
	if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		return &LineIndicator{w: w}
	}
	return &Spinner{w: w}
}

// Spinner draws an indeterminate progress spinner with the current message.
type Spinner struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w}
}

func (s *Spinner) Show(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		s.bar.Describe(message)
		return
	}
	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(0),
	)
	_ = s.bar.RenderBlank()
}

func (s *Spinner) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil {
		return
	}
	_ = s.bar.Finish()
	_ = s.bar.Clear()
	s.bar = nil
}

// Visible reports whether the spinner is currently drawn.
func (s *Spinner) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bar != nil
}

// LineIndicator prints one line per state change, suitable for CI logs.
type LineIndicator struct {
	w io.Writer
}

// NewLineIndicator creates a LineIndicator writing to w.
func NewLineIndicator(w io.Writer) *LineIndicator {
	return &LineIndicator{w: w}
}

func (l *LineIndicator) Show(message string) {
	fmt.Fprintln(l.w, message)
}

func (l *LineIndicator) Hide() {
	fmt.Fprintln(l.w, "done")
}
