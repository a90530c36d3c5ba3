package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/chaosmap/internal/config"
)

var (
	flagG, flagM1, flagM2, flagL1, flagL2 float64
	flagDt, flagMaxTime                   float64
	flagWidth, flagHeight, flagResolution int
	flagBatch, flagWorkers                int
)

func addSettingsFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&flagG, "g", d.Physics.G, "gravitational acceleration")
	f.Float64Var(&flagM1, "m1", d.Physics.M1, "upper bob mass")
	f.Float64Var(&flagM2, "m2", d.Physics.M2, "lower bob mass")
	f.Float64Var(&flagL1, "l1", d.Physics.L1, "upper arm length")
	f.Float64Var(&flagL2, "l2", d.Physics.L2, "lower arm length")
	f.Float64Var(&flagDt, "dt", d.Dt, "integration timestep")
	f.Float64Var(&flagMaxTime, "max-time", d.MaxTime, "flip cutoff time")
	f.IntVar(&flagWidth, "width", d.Width, "image width in pixels")
	f.IntVar(&flagHeight, "height", d.Height, "image height in pixels")
	f.IntVar(&flagResolution, "resolution", d.Resolution, "sample stride in pixels")
	f.IntVar(&flagBatch, "batch", d.BatchSize, "samples per batch")
	f.IntVar(&flagWorkers, "workers", 0, "worker goroutines (0 = one per CPU)")
}

// loadSettings resolves the configuration for cmd. Later layers win:
// defaults, mode, preset, config file, then flags set on the command
// line.
func loadSettings(cmd *cobra.Command, mode string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if mode != "" {
		m, err := config.GetMode(mode)
		if err != nil {
			return nil, err
		}
		cfg.ApplyMode(m)
	}

	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	for _, f := range []struct {
		name string
		dst  *float64
		val  float64
	}{
		{"g", &cfg.Physics.G, flagG},
		{"m1", &cfg.Physics.M1, flagM1},
		{"m2", &cfg.Physics.M2, flagM2},
		{"l1", &cfg.Physics.L1, flagL1},
		{"l2", &cfg.Physics.L2, flagL2},
		{"dt", &cfg.Dt, flagDt},
		{"max-time", &cfg.MaxTime, flagMaxTime},
	} {
		if flags.Changed(f.name) {
			*f.dst = f.val
		}
	}
	for _, f := range []struct {
		name string
		dst  *int
		val  int
	}{
		{"width", &cfg.Width, flagWidth},
		{"height", &cfg.Height, flagHeight},
		{"resolution", &cfg.Resolution, flagResolution},
		{"batch", &cfg.BatchSize, flagBatch},
		{"workers", &cfg.Workers, flagWorkers},
	} {
		if flags.Changed(f.name) {
			*f.dst = f.val
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("settings", "mode", mode, "preset", preset, "file", configFile, "params", cfg.Params())
	return cfg, nil
}
