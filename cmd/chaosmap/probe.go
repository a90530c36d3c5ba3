package main

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chaosmap/internal/analysis"
	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/integrators"
	"github.com/san-kum/chaosmap/internal/metrics"
	"github.com/san-kum/chaosmap/internal/sim"
)

var (
	probeTheta1       float64
	probeTheta2       float64
	probePerturbation float64
	probeCalmSpeed    float64
)

// maxPlotPoints bounds the trajectory handed to asciigraph.
const maxPlotPoints = 120

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, "")
	if err != nil {
		return err
	}

	params := cfg.Params()
	integ := integrators.NewRK4()
	classifier := analysis.NewClassifier(params, integ)

	flip := classifier.TimeToFlip(probeTheta1, probeTheta2)
	x0 := dynamo.State{Theta1: probeTheta1, Theta2: probeTheta2}
	lyap := analysis.LyapunovExponent(params.Physics, integ, x0, params.Dt, params.MaxTime, probePerturbation)

	sys := params.Physics
	steps := int(math.Ceil(params.MaxTime / params.Dt))
	drift := metrics.NewEnergyDrift(sys)
	calm := metrics.NewStability(probeCalmSpeed)
	trace := metrics.NewTrace("theta2", max(1, steps/maxPlotPoints), func(x dynamo.State) float64 { return x.Theta2 })

	simulator := sim.New(sys, integ)
	for _, m := range []metrics.Metric{drift, calm, trace} {
		simulator.AddMetric(m)
	}
	res, err := simulator.Run(cmd.Context(), x0, sim.Config{Dt: params.Dt, Duration: params.MaxTime, ValidateState: true})
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		logger.Warn("trajectory stopped", "err", e)
	}

	logger.Debug("probe", "theta1", probeTheta1, "theta2", probeTheta2, "steps", res.StepsTaken)

	fmt.Printf("initial angles: theta1=%.4f theta2=%.4f\n", probeTheta1, probeTheta2)
	if classifier.Flipped(flip) {
		fmt.Printf("time to flip: %.3f\n", flip)
	} else {
		fmt.Printf("time to flip: none before %.1f\n", params.MaxTime)
	}
	fmt.Printf("lyapunov exponent: %.4f\n", lyap)
	// The flip equations carry sign-flipped omega^2 coupling terms, so this
	// drift is a property of the model rather than integrator error.
	fmt.Printf("energy: %.6f (max relative drift %.2e, model is not energy conserving)\n", drift.Initial(), drift.Value())
	fmt.Printf("time with both speeds under %.1f rad/s: %.1f%%\n", probeCalmSpeed, 100*calm.Value())

	if len(trace.Values()) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(trace.Values(),
			asciigraph.Height(10),
			asciigraph.Caption("theta2 over time"),
		))
	}
	return nil
}
