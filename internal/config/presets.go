package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/physics"
)

// Mode selects how a scan trades resolution for latency. Both modes run
// the same algorithm.
type Mode struct {
	Name       string
	Resolution int
	BatchSize  int
	Width      int
	Height     int
}

var Modes = map[string]Mode{
	"preview": {Name: "preview", Resolution: 8, BatchSize: 1000},
	"batch":   {Name: "batch", Resolution: 1, BatchSize: 50000, Width: 15360, Height: 8640},
}

func GetMode(name string) (Mode, error) {
	m, ok := Modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w: mode %q", dynamo.ErrUnknownPreset, name)
	}
	return m, nil
}

// Presets are named physical configurations.
var Presets = map[string]Params{
	"classic": DefaultParams(),
	"heavy-bob": {
		Physics: physics.DoublePendulum{G: 9.81, M1: 1, M2: 3, L1: 1, L2: 1},
		Dt:      0.01, MaxTime: 15,
	},
	"light-bob": {
		Physics: physics.DoublePendulum{G: 9.81, M1: 3, M2: 0.5, L1: 1, L2: 1},
		Dt:      0.01, MaxTime: 15,
	},
	"long-arm": {
		Physics: physics.DoublePendulum{G: 9.81, M1: 1, M2: 1, L1: 1, L2: 2},
		Dt:      0.01, MaxTime: 20,
	},
	"moon": {
		Physics: physics.DoublePendulum{G: 1.62, M1: 1, M2: 1, L1: 1, L2: 1},
		Dt:      0.02, MaxTime: 40,
	},
	"fine": {
		Physics: physics.DoublePendulum{G: 9.81, M1: 1, M2: 1, L1: 1, L2: 1},
		Dt:      0.002, MaxTime: 15,
	},
}

func GetPreset(name string) (Params, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset overwrites the physics, dt and cutoff with a preset.
func (c *Config) ApplyPreset(name string) error {
	p, ok := GetPreset(name)
	if !ok {
		return fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownPreset, name, ListPresets())
	}
	c.Physics = p.Physics
	c.Dt = p.Dt
	c.MaxTime = p.MaxTime
	return nil
}
