package service

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/ludo-technologies/pygrade/domain"
)

// NewProgressManager returns a terminal progress display when enabled and
// stderr is interactive, and a silent one otherwise
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return NewTerminalProgress(os.Stderr)
	}
	return SilentProgress{}
}

// IsInteractiveEnvironment reports whether stderr is a terminal outside CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("PYGRADE_NO_PROGRESS") != "" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalProgress draws one bar per task group. The bar label lists the
// tools that have finished so far.
type TerminalProgress struct {
	w    io.Writer
	mu   sync.Mutex
	open []*toolProgress
}

// NewTerminalProgress creates a progress display drawing to w
func NewTerminalProgress(w io.Writer) *TerminalProgress {
	return &TerminalProgress{w: w}
}

// StartTask opens a bar counting up to total
func (p *TerminalProgress) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	tp := &toolProgress{bar: bar, label: description}
	p.mu.Lock()
	p.open = append(p.open, tp)
	p.mu.Unlock()
	return tp
}

// IsInteractive is always true for a terminal display
func (p *TerminalProgress) IsInteractive() bool { return true }

// Close finishes every bar still open
func (p *TerminalProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tp := range p.open {
		tp.Complete()
	}
	p.open = nil
}

type toolProgress struct {
	bar   *progressbar.ProgressBar
	label string

	mu       sync.Mutex
	finished []string
	done     bool
}

func (tp *toolProgress) Increment(n int) {
	_ = tp.bar.Add(n)
}

// Describe records a finished tool and shows it after the group label
func (tp *toolProgress) Describe(tool string) {
	tp.mu.Lock()
	tp.finished = append(tp.finished, tool)
	text := tp.label + " (done: " + strings.Join(tp.finished, ", ") + ")"
	tp.mu.Unlock()
	tp.bar.Describe(text)
}

func (tp *toolProgress) Complete() {
	tp.mu.Lock()
	if tp.done {
		tp.mu.Unlock()
		return
	}
	tp.done = true
	tp.mu.Unlock()
	_ = tp.bar.Finish()
}

// SilentProgress implements both progress interfaces and draws nothing
type SilentProgress struct{}

func (SilentProgress) StartTask(string, int) domain.TaskProgress { return SilentProgress{} }
func (SilentProgress) IsInteractive() bool                       { return false }
func (SilentProgress) Close()                                    {}
func (SilentProgress) Increment(int)                             {}
func (SilentProgress) Describe(string)                           {}
func (SilentProgress) Complete()                                 {}
