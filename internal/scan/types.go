package scan

import (
	"fmt"

	"github.com/san-kum/chaosmap/internal/palette"
)

type State int

const (
	Idle State = iota
	Scanning
	Complete
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Complete:
		return "complete"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether s needs a Reset before the next scan.
func (s State) Terminal() bool { return s == Complete || s == Cancelled }

// Cursor is the scan position: the next sample index, the stride and the
// total number of samples. Index never exceeds Total.
type Cursor struct {
	Index      int
	Resolution int
	Total      int
}

func (c Cursor) Done() bool { return c.Index >= c.Total }

// Fill is one sample painted as a W x H block at (X, Y). Value is the
// classifier result the color was derived from.
type Fill struct {
	X, Y  int
	W, H  int
	Value float64
	Color palette.HSL
}

type Sink interface {
	Fill(f Fill)
}

type SinkFunc func(Fill)

func (fn SinkFunc) Fill(f Fill) { fn(f) }

// MultiSink forwards every fill to each sink in order.
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(f Fill) {
		for _, s := range sinks {
			s.Fill(f)
		}
	})
}

type Progress struct {
	Done  int
	Total int
	State State
}

func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

func (p Progress) String() string {
	return fmt.Sprintf("%s %d/%d (%.1f%%)", p.State, p.Done, p.Total, 100*p.Fraction())
}

type ProgressSink interface {
	Progress(p Progress)
}

type ProgressFunc func(Progress)

func (fn ProgressFunc) Progress(p Progress) { fn(p) }

type discard struct{}

func (discard) Fill(Fill)         {}
func (discard) Progress(Progress) {}
