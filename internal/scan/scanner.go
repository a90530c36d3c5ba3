package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/san-kum/chaosmap/internal/analysis"
	"github.com/san-kum/chaosmap/internal/compute"
	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/integrators"
	"github.com/san-kum/chaosmap/internal/palette"
)

var ErrNotIdle = errors.New("scanner is not idle")

type Option func(*Scanner)

func WithBatchSize(n int) Option {
	return func(s *Scanner) { s.batchSize = n }
}

func WithSink(sink Sink) Option {
	return func(s *Scanner) { s.sink = sink }
}

func WithProgress(p ProgressSink) Option {
	return func(s *Scanner) { s.progress = p }
}

func WithBackend(b compute.Backend) Option {
	return func(s *Scanner) { s.backend = b }
}

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(s *Scanner) { s.integ = integ }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// Scanner is not safe for concurrent use. One goroutine drives it; the
// backend may fan a single batch out internally.
type Scanner struct {
	params     config.Params
	grid       Grid
	batchSize  int
	integ      dynamo.Integrator
	classifier *analysis.Classifier
	backend    compute.Backend
	sink       Sink
	progress   ProgressSink
	logger     *log.Logger

	state      State
	cursor     Cursor
	generation uint64
	values     []float64
}

func New(p config.Params, g Grid, opts ...Option) (*Scanner, error) {
	s := &Scanner{
		batchSize: config.DefaultBatchSize,
		integ:     integrators.NewRK4(),
		backend:   compute.NewSerial(),
		sink:      discard{},
		progress:  discard{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	if s.batchSize <= 0 {
		return nil, fmt.Errorf("scan: %w", &dynamo.ConfigError{Field: "batch_size", Value: float64(s.batchSize)})
	}
	if err := validate(p, g); err != nil {
		return nil, err
	}

	s.configure(p, g)
	return s, nil
}

func validate(p config.Params, g Grid) error {
	if err := errors.Join(p.Validate(), g.Validate()); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

func (s *Scanner) configure(p config.Params, g Grid) {
	s.params = p
	s.grid = g
	s.classifier = analysis.NewClassifier(p, s.integ)
	s.reset()
}

func (s *Scanner) reset() {
	s.state = Idle
	s.cursor = Cursor{Resolution: s.grid.Resolution, Total: s.grid.Total()}
	s.generation++
}

func (s *Scanner) Params() config.Params { return s.params }
func (s *Scanner) Grid() Grid            { return s.grid }
func (s *Scanner) State() State          { return s.state }
func (s *Scanner) Cursor() Cursor        { return s.cursor }
func (s *Scanner) BatchSize() int        { return s.batchSize }

// Generation changes on every reset. Results tagged with an older
// generation belong to a discarded scan.
func (s *Scanner) Generation() uint64 { return s.generation }

func (s *Scanner) Progress() Progress {
	return Progress{Done: s.cursor.Index, Total: s.cursor.Total, State: s.state}
}

func (s *Scanner) Start() error {
	if s.state != Idle {
		return fmt.Errorf("%w: %s", ErrNotIdle, s.state)
	}
	s.state = Scanning
	s.logger.Debug("scan started",
		"grid", s.grid, "samples", s.cursor.Total, "batch", s.batchSize, "backend", s.backend.Name())
	return nil
}

// Cancel stops a running scan. Samples already emitted stay emitted; no
// further samples are produced until Reset.
func (s *Scanner) Cancel() {
	if s.state != Scanning {
		return
	}
	s.state = Cancelled
	s.logger.Debug("scan cancelled", "done", s.cursor.Index, "total", s.cursor.Total)
	s.progress.Progress(s.Progress())
}

func (s *Scanner) Reset() {
	s.reset()
}

// Reconfigure applies new parameters or a new grid. When either differs
// from the current one the scan is discarded and, if it was running,
// restarted from sample 0. It reports whether a restart happened.
func (s *Scanner) Reconfigure(p config.Params, g Grid) (bool, error) {
	if p == s.params && g == s.grid {
		return false, nil
	}
	if err := validate(p, g); err != nil {
		return false, err
	}

	wasScanning := s.state == Scanning
	s.Cancel()
	s.configure(p, g)
	s.logger.Debug("scan reconfigured", "grid", g, "restart", wasScanning)

	if wasScanning {
		return true, s.Start()
	}
	return true, nil
}

// Step evaluates the next batch and emits it. Cancellation is checked
// before the batch and between samples; an interrupted batch is dropped
// whole and the scan ends Cancelled at the last completed batch.
func (s *Scanner) Step(ctx context.Context) Progress {
	if s.state != Scanning {
		return s.Progress()
	}
	if ctx.Err() != nil {
		s.Cancel()
		return s.Progress()
	}

	start := s.cursor.Index
	n := min(s.batchSize, s.cursor.Total-start)
	if cap(s.values) < n {
		s.values = make([]float64, n)
	}
	vals := s.values[:n]

	grid, classifier := s.grid, s.classifier
	err := s.backend.Evaluate(ctx, n, func(i int) float64 {
		x, y := grid.Pixel(start + i)
		return classifier.TimeToFlip(grid.InitialCondition(x, y))
	}, vals)
	if err != nil {
		s.Cancel()
		return s.Progress()
	}

	maxTime := s.params.MaxTime
	for i, v := range vals {
		x, y := grid.Pixel(start + i)
		s.sink.Fill(Fill{
			X: x, Y: y,
			W: grid.Resolution, H: grid.Resolution,
			Value: v,
			Color: palette.Map(v, maxTime),
		})
	}

	s.cursor.Index += n
	if s.cursor.Done() {
		s.state = Complete
		s.logger.Debug("scan complete", "samples", s.cursor.Total)
	}

	p := s.Progress()
	s.progress.Progress(p)
	return p
}

// Run starts an idle scanner and steps it until it completes or is
// cancelled, calling yield between batches. A nil yield means
// runtime.Gosched. Cancelling ctx cancels the scan; that is not an
// error.
func Run(ctx context.Context, s *Scanner, yield func()) error {
	if yield == nil {
		yield = runtime.Gosched
	}
	if s.State() == Idle {
		if err := s.Start(); err != nil {
			return err
		}
	}

	for s.State() == Scanning {
		s.Step(ctx)
		if s.State() == Scanning {
			yield()
		}
	}
	return nil
}
