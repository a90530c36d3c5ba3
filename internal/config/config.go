package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/physics"
)

const (
	DefaultDt        = 0.01
	DefaultMaxTime   = 15.0
	DefaultBatchSize = 1000
	DefaultStride    = 8
	DefaultWidth     = 800
	DefaultHeight    = 600
)

// Params is the immutable snapshot a scan runs under. It contains only
// comparable fields so two snapshots can be compared with ==.
type Params struct {
	Physics physics.DoublePendulum
	Dt      float64
	MaxTime float64
}

// Validate rejects non-positive physical parameters, timestep or cutoff.
func (p Params) Validate() error {
	return errors.Join(
		p.Physics.Validate(),
		dynamo.RequirePositive("dt", p.Dt),
		dynamo.RequirePositive("max_time", p.MaxTime),
	)
}

// DefaultParams returns the reference configuration: unit masses and
// arms under standard gravity, dt 0.01, 15 time units.
func DefaultParams() Params {
	return Params{
		Physics: *physics.NewDoublePendulum(),
		Dt:      DefaultDt,
		MaxTime: DefaultMaxTime,
	}
}

type Config struct {
	Physics    physics.DoublePendulum `yaml:",inline"`
	Dt         float64                `yaml:"dt"`
	MaxTime    float64                `yaml:"max_time"`
	BatchSize  int                    `yaml:"batch_size"`
	Resolution int                    `yaml:"resolution"`
	Width      int                    `yaml:"width"`
	Height     int                    `yaml:"height"`
	Workers    int                    `yaml:"workers"`
}

func DefaultConfig() *Config {
	p := DefaultParams()
	return &Config{
		Physics:    p.Physics,
		Dt:         p.Dt,
		MaxTime:    p.MaxTime,
		BatchSize:  DefaultBatchSize,
		Resolution: DefaultStride,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base. Keys missing from the
// file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params returns the snapshot handed to a scan.
func (c *Config) Params() Params {
	return Params{Physics: c.Physics, Dt: c.Dt, MaxTime: c.MaxTime}
}

// Validate checks every field. Nothing is clamped: a bad value is an
// error for the caller to surface.
func (c *Config) Validate() error {
	errs := []error{c.Params().Validate()}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"batch_size", c.BatchSize},
		{"resolution", c.Resolution},
		{"width", c.Width},
		{"height", c.Height},
	} {
		errs = append(errs, dynamo.RequirePositive(f.name, float64(f.value)))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers must not be negative, got %d", dynamo.ErrInvalidConfig, c.Workers))
	}
	return errors.Join(errs...)
}

// ApplyMode copies the stride, batch size and default surface of a mode.
func (c *Config) ApplyMode(m Mode) {
	c.Resolution = m.Resolution
	c.BatchSize = m.BatchSize
	if m.Width > 0 && m.Height > 0 {
		c.Width = m.Width
		c.Height = m.Height
	}
}

// GetParams exposes the tunable scalar parameters by key.
func (c *Config) GetParams() map[string]float64 {
	params := c.Physics.GetParams()
	params["dt"] = c.Dt
	params["max_time"] = c.MaxTime
	return params
}

// SetParam sets one of the keys returned by GetParams.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "dt":
		c.Dt = value
	case "max_time":
		c.MaxTime = value
	default:
		return c.Physics.SetParam(name, value)
	}
	return nil
}
