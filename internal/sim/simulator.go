package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/metrics"
)

// Config controls a single trajectory run.
type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

// Result summarizes a trajectory. Only the final state is kept; metrics
// carry whatever history a caller needs.
type Result struct {
	Final       dynamo.State
	Time        float64
	StepsTaken  int
	EnergyDrift float64
	Metrics     map[string]float64
	Errors      []error
}

// SimError marks the step at which a trajectory went bad.
type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("t=%.4f step %d: %s", e.Time, e.Step, e.Message)
}

// Simulator integrates one trajectory and feeds every state to its
// metrics.
type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	metrics    []metrics.Metric
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]metrics.Metric, 0),
	}
}

func (s *Simulator) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Ceil(cfg.Duration / cfg.Dt))
	result := &Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0
	t := 0.0
	metrics.ObserveAll(s.metrics, x, t)

	initialEnergy := s.computeEnergy(x)

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			result.Final, result.Time = x, t
			return result, err
		}

		next := s.integrator.Step(s.sys, x, cfg.Dt)

		if cfg.ValidateState && !next.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		x = next
		t += cfg.Dt
		result.StepsTaken++
		metrics.ObserveAll(s.metrics, x, t)
	}

	result.Final, result.Time = x, t
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(s.computeEnergy(x)-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps until Duration, ctx is done, or callback
// returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg Config, callback func(dynamo.State, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	x := x0
	t := 0.0

	for t < cfg.Duration {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !callback(x, t) {
			return nil
		}

		x = s.integrator.Step(s.sys, x, cfg.Dt)
		t += cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("%w at t=%.4f", dynamo.ErrInvalidState, t)
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	return errors.Join(
		dynamo.RequirePositive("dt", cfg.Dt),
		dynamo.RequirePositive("duration", cfg.Duration),
	)
}

func (s *Simulator) computeEnergy(x dynamo.State) float64 {
	if ec, ok := s.sys.(dynamo.Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}
