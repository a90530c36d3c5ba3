package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/chaosmap/internal/analysis"
	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/export"
	"github.com/san-kum/chaosmap/internal/physics"
	"github.com/san-kum/chaosmap/internal/scan"
)

const (
	metadataFile  = "metadata.json"
	valuesFile    = "values.csv"
	imageFile     = "map.png"
	thumbnailFile = "thumb.png"

	ThumbnailSize = 480
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
	logger  *log.Logger
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: log.New(io.Discard), now: time.Now}
}

func (s *Store) WithLogger(l *log.Logger) *Store {
	s.logger = l
	return s
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata is persisted as metadata.json next to the run's data.
type RunMetadata struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Physics    physics.DoublePendulum `json:"physics"`
	Dt         float64                `json:"dt"`
	MaxTime    float64                `json:"max_time"`
	Width      int                    `json:"width"`
	Height     int                    `json:"height"`
	Resolution int                    `json:"resolution"`
	Backend    string                 `json:"backend"`
	Elapsed    float64                `json:"elapsed_seconds"`
	Complete   bool                   `json:"complete"`
	Summary    analysis.Summary       `json:"summary"`
	Histogram  []float64              `json:"histogram,omitempty"`
	HasValues  bool                   `json:"has_values"`
}

func (m RunMetadata) Params() config.Params {
	return config.Params{Physics: m.Physics, Dt: m.Dt, MaxTime: m.MaxTime}
}

func (m RunMetadata) Grid() scan.Grid {
	return scan.Grid{Width: m.Width, Height: m.Height, Resolution: m.Resolution}
}

// Run is a finished (or cancelled) scan ready to be saved. Values holds
// the samples in row-major order and may be nil for scans too large to
// keep in memory.
type Run struct {
	Name      string
	Params    config.Params
	Grid      scan.Grid
	Backend   string
	Elapsed   time.Duration
	Complete  bool
	Summary   analysis.Summary
	Histogram []float64
	Values    []float64
	Image     image.Image
}

// RunID is the timestamped name a run is stored under.
func RunID(g scan.Grid, t time.Time) string {
	return fmt.Sprintf("double-pendulum-%dx%d-%d", g.Width, g.Height, t.Unix())
}

func (s *Store) Save(run Run) (string, error) {
	ts := s.now()
	runID, runDir, err := s.createRunDir(RunID(run.Grid, ts))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       run.Name,
		Timestamp:  ts,
		Physics:    run.Params.Physics,
		Dt:         run.Params.Dt,
		MaxTime:    run.Params.MaxTime,
		Width:      run.Grid.Width,
		Height:     run.Grid.Height,
		Resolution: run.Grid.Resolution,
		Backend:    run.Backend,
		Elapsed:    run.Elapsed.Seconds(),
		Complete:   run.Complete,
		Summary:    run.Summary,
		Histogram:  run.Histogram,
		HasValues:  len(run.Values) > 0,
	}

	if err := writeRun(runDir, meta, run); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			s.logger.Warn("removing partial run", "dir", runDir, "err", rmErr)
		}
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}

	s.logger.Info("run saved", "id", runID, "dir", runDir, "values", meta.HasValues)
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, run Run) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	if meta.HasValues {
		if err := writeValues(filepath.Join(runDir, valuesFile), run.Grid, run.Values); err != nil {
			return err
		}
	}

	if run.Image != nil {
		if err := export.SavePNG(filepath.Join(runDir, imageFile), run.Image); err != nil {
			return err
		}
		thumb := export.Thumbnail(run.Image, ThumbnailSize, ThumbnailSize)
		if err := export.SavePNG(filepath.Join(runDir, thumbnailFile), thumb); err != nil {
			return err
		}
	}
	return nil
}

// createRunDir suffixes the ID when two runs land in the same second.
func (s *Store) createRunDir(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeValues(path string, g scan.Grid, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := writeCSV(f, g, values); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(out io.Writer, g scan.Grid, values []float64) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"x", "y", "theta1", "theta2", "t"}); err != nil {
		return err
	}

	for i, v := range values {
		x, y := g.Pixel(i)
		th1, th2 := g.InitialCondition(x, y)
		row := []string{
			strconv.Itoa(x),
			strconv.Itoa(y),
			strconv.FormatFloat(th1, 'f', 6, 64),
			strconv.FormatFloat(th2, 'f', 6, 64),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", "dir", entry.Name(), "err", err)
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s metadata: %w", runID, err)
	}

	return &meta, nil
}

// LoadValues reads a run's samples back in row-major order.
func (s *Store) LoadValues(runID string) ([]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, valuesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has no stored values", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 5
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []float64{}, nil
		}
		return nil, err
	}

	values := make([]float64, 0)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		v, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("values.csv line %d: %w", len(values)+2, err)
		}
		values = append(values, v)
	}

	return values, nil
}

// ImagePath returns the stored map image of a run.
func (s *Store) ImagePath(runID string) string {
	return filepath.Join(s.baseDir, runID, imageFile)
}

func (s *Store) ThumbnailPath(runID string) string {
	return filepath.Join(s.baseDir, runID, thumbnailFile)
}
