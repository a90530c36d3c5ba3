package experiment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/chaosmap/internal/analysis"
	"github.com/san-kum/chaosmap/internal/compute"
	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/export"
	"github.com/san-kum/chaosmap/internal/scan"
	"github.com/san-kum/chaosmap/internal/storage"
)

const (
	// DefaultMaxValues bounds how many samples a render keeps for
	// values.csv. Larger scans keep only the image, summary and histogram.
	DefaultMaxValues = 1 << 22
	DefaultBins      = 30
)

type Config struct {
	Name      string
	Settings  config.Config
	MaxValues int
	Bins      int
}

type Result struct {
	Name      string
	Params    config.Params
	Grid      scan.Grid
	State     scan.State
	Backend   string
	Elapsed   time.Duration
	Raster    *export.Raster
	Values    []float64
	Summary   analysis.Summary
	Histogram []float64
}

func (r *Result) Complete() bool { return r.State == scan.Complete }

// StorageRun converts the result into the form the run store saves.
func (r *Result) StorageRun() storage.Run {
	return storage.Run{
		Name:      r.Name,
		Params:    r.Params,
		Grid:      r.Grid,
		Backend:   r.Backend,
		Elapsed:   r.Elapsed,
		Complete:  r.Complete(),
		Summary:   r.Summary,
		Histogram: r.Histogram,
		Values:    r.Values,
		Image:     r.Raster.Image(),
	}
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithProgress(p scan.ProgressSink) Option {
	return func(e *Experiment) { e.progress = p }
}

// WithYield sets the hook run between batches.
func WithYield(fn func()) Option {
	return func(e *Experiment) { e.yield = fn }
}

// Experiment renders one chaos map: it builds a scanner from the
// settings, paints every sample into a raster and accumulates the
// statistics stored with the run.
type Experiment struct {
	cfg      Config
	logger   *log.Logger
	progress scan.ProgressSink
	yield    func()
}

func New(cfg Config, opts ...Option) *Experiment {
	if cfg.MaxValues == 0 {
		cfg.MaxValues = DefaultMaxValues
	}
	if cfg.Bins <= 0 {
		cfg.Bins = DefaultBins
	}
	e := &Experiment{cfg: cfg, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Experiment) Grid() scan.Grid {
	s := e.cfg.Settings
	return scan.Grid{Width: s.Width, Height: s.Height, Resolution: s.Resolution}
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	settings := e.cfg.Settings
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("experiment %q: %w", e.cfg.Name, err)
	}

	params, grid := settings.Params(), e.Grid()
	backend := compute.AutoSelect(settings.Workers)

	res := &Result{
		Name:    e.cfg.Name,
		Params:  params,
		Grid:    grid,
		Backend: backend.Name(),
		Raster:  export.NewRaster(grid.Width, grid.Height),
	}

	acc := analysis.NewAccumulator(params.MaxTime, e.cfg.Bins)
	keepValues := e.cfg.MaxValues > 0 && grid.Total() <= e.cfg.MaxValues
	if keepValues {
		res.Values = make([]float64, 0, grid.Total())
	}

	collect := scan.SinkFunc(func(f scan.Fill) {
		acc.Add(f.Value)
		if keepValues {
			res.Values = append(res.Values, f.Value)
		}
	})

	opts := []scan.Option{
		scan.WithBatchSize(settings.BatchSize),
		scan.WithBackend(backend),
		scan.WithSink(scan.MultiSink(res.Raster, collect)),
		scan.WithLogger(e.logger),
	}
	if e.progress != nil {
		opts = append(opts, scan.WithProgress(e.progress))
	}

	s, err := scan.New(params, grid, opts...)
	if err != nil {
		return nil, err
	}

	e.logger.Info("render started", "name", e.cfg.Name, "grid", grid, "samples", grid.Total(), "backend", backend.Name())
	start := time.Now()
	if err := scan.Run(ctx, s, e.yield); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	res.State = s.State()
	res.Summary = acc.Summary()
	res.Histogram = acc.Histogram()

	if !keepValues {
		res.Values = nil
	}

	e.logger.Info("render finished",
		"name", e.cfg.Name, "state", res.State, "elapsed", res.Elapsed.Round(time.Millisecond),
		"flipped", fmt.Sprintf("%.1f%%", 100*res.Summary.FlippedFraction()))
	return res, nil
}
