package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/experiment"
	"github.com/san-kum/chaosmap/internal/storage"
)

// Scenario is a scripted sequence of renders.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Base        string         `yaml:"base"`
	Steps       []ScenarioStep `yaml:"steps"`
	Sweeps      []Sweep        `yaml:"sweeps"`
}

// ScenarioStep is one render. Fields left empty keep the base settings.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Mode       string             `yaml:"mode"`
	Preset     string             `yaml:"preset"`
	Params     map[string]float64 `yaml:"params"`
	Width      int                `yaml:"width"`
	Height     int                `yaml:"height"`
	Resolution int                `yaml:"resolution"`
	BatchSize  int                `yaml:"batch_size"`
	Workers    int                `yaml:"workers"`
	Save       *bool              `yaml:"save"`
}

// Sweep expands into Steps renders of Template with Param stepped
// linearly from Min to Max.
type Sweep struct {
	Template ScenarioStep `yaml:"template"`
	Param    string       `yaml:"param"`
	Min      float64      `yaml:"min"`
	Max      float64      `yaml:"max"`
	Steps    int          `yaml:"steps"`
}

func (sw Sweep) Expand() ([]ScenarioStep, error) {
	if sw.Steps < 1 {
		return nil, fmt.Errorf("sweep %s: steps must be at least 1, got %d", sw.Param, sw.Steps)
	}

	steps := make([]ScenarioStep, 0, sw.Steps)
	for i := 0; i < sw.Steps; i++ {
		v := sw.Min
		if sw.Steps > 1 {
			v += float64(i) * (sw.Max - sw.Min) / float64(sw.Steps-1)
		}

		step := sw.Template
		step.Params = make(map[string]float64, len(sw.Template.Params)+1)
		for k, pv := range sw.Template.Params {
			step.Params[k] = pv
		}
		step.Params[sw.Param] = v

		name := sw.Template.Name
		if name == "" {
			name = "sweep"
		}
		step.Name = fmt.Sprintf("%s-%s-%g", name, sw.Param, v)
		steps = append(steps, step)
	}
	return steps, nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &scenario, nil
}

// AllSteps returns the explicit steps followed by every expanded sweep.
func (s *Scenario) AllSteps() ([]ScenarioStep, error) {
	steps := append([]ScenarioStep(nil), s.Steps...)
	for _, sw := range s.Sweeps {
		expanded, err := sw.Expand()
		if err != nil {
			return nil, err
		}
		steps = append(steps, expanded...)
	}
	return steps, nil
}

// Settings resolves a step against base: mode, then preset, then
// explicit parameters and surface overrides.
func (step ScenarioStep) Settings(base config.Config) (config.Config, error) {
	cfg := base
	if step.Mode != "" {
		m, err := config.GetMode(step.Mode)
		if err != nil {
			return cfg, err
		}
		cfg.ApplyMode(m)
	}
	if step.Preset != "" {
		if err := cfg.ApplyPreset(step.Preset); err != nil {
			return cfg, err
		}
	}
	for k, v := range step.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return cfg, err
		}
	}

	if step.Width > 0 {
		cfg.Width = step.Width
	}
	if step.Height > 0 {
		cfg.Height = step.Height
	}
	if step.Resolution > 0 {
		cfg.Resolution = step.Resolution
	}
	if step.BatchSize > 0 {
		cfg.BatchSize = step.BatchSize
	}
	if step.Workers > 0 {
		cfg.Workers = step.Workers
	}
	return cfg, cfg.Validate()
}

// StepResult is the outcome of one rendered step.
type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *experiment.Result
}

type Runner struct {
	base   config.Config
	store  *storage.Store
	logger *log.Logger
}

// NewRunner renders on top of base and saves into store. A nil store
// renders without saving.
func NewRunner(base config.Config, store *storage.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{base: base, store: store, logger: logger}
}

// Run executes every step in order. It stops at the first failing step
// or when ctx is cancelled, returning the steps finished so far.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	base := r.base
	if scenario.Base != "" {
		cfg, err := config.Load(scenario.Base)
		if err != nil {
			return nil, fmt.Errorf("scenario base: %w", err)
		}
		base = *cfg
	}

	steps, err := scenario.AllSteps()
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(steps))
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", scenario.Name, i+1)
		}
		r.logger.Info("running step", "step", i+1, "of", len(steps), "name", name)

		settings, err := step.Settings(base)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		res, err := experiment.New(experiment.Config{Name: name, Settings: settings},
			experiment.WithLogger(r.logger)).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		sr := StepResult{Step: step, Result: res}
		if !res.Complete() {
			results = append(results, sr)
			return results, ctx.Err()
		}

		if r.store != nil && (step.Save == nil || *step.Save) {
			id, err := r.store.Save(res.StorageRun())
			if err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}
