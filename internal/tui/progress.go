package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/san-kum/chaosmap/internal/scan"
)

const (
	clearLine  = "\r\033[2K"
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
)

// ProgressPrinter is a scan.ProgressSink for non-interactive renders.
// It redraws a single status line at most frameRate times per second;
// terminal states are always drawn.
type ProgressPrinter struct {
	out       io.Writer
	label     string
	frameRate int
	lastFrame time.Time
	started   time.Time
	bar       progress.Model
	now       func() time.Time
}

func NewProgressPrinter(out io.Writer, label string, frameRate int) *ProgressPrinter {
	if frameRate <= 0 {
		frameRate = 10
	}
	return &ProgressPrinter{
		out:       out,
		label:     label,
		frameRate: frameRate,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		now:       time.Now,
	}
}

func (r *ProgressPrinter) Start() {
	r.started = r.now()
	fmt.Fprint(r.out, hideCursor)
}

func (r *ProgressPrinter) Stop() { fmt.Fprint(r.out, showCursor) }

func (r *ProgressPrinter) Progress(p scan.Progress) {
	now := r.now()
	terminal := p.State.Terminal()
	if !terminal && now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now

	fmt.Fprintf(r.out, "%s%s: %5.1f%% %s %s", clearLine, r.label, 100*p.Fraction(), r.bar.ViewAs(p.Fraction()), r.eta(p, now))
	if terminal {
		fmt.Fprintf(r.out, " (%s)\n", p.State)
	}
}

func (r *ProgressPrinter) eta(p scan.Progress, now time.Time) string {
	elapsed := now.Sub(r.started)
	if r.started.IsZero() || p.Done == 0 {
		return ""
	}
	if p.Done >= p.Total {
		return elapsed.Round(time.Second).String()
	}
	remaining := time.Duration(float64(elapsed) * float64(p.Total-p.Done) / float64(p.Done))
	return "eta " + remaining.Round(time.Second).String()
}
