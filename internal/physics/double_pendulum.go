package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chaosmap/internal/dynamo"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81
)

// DoublePendulum holds the physical parameters of two point masses on
// massless rigid arms. It is a value type: copying it yields an
// independent parameter set.
type DoublePendulum struct {
	G  float64 `yaml:"g" json:"g"`
	M1 float64 `yaml:"m1" json:"m1"`
	M2 float64 `yaml:"m2" json:"m2"`
	L1 float64 `yaml:"l1" json:"l1"`
	L2 float64 `yaml:"l2" json:"l2"`
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{
		G:  DefaultGravity,
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
	}
}

// Derive evaluates the coupled equations of motion. Degenerate
// parameters are not rejected here; the resulting NaN/Inf values flow
// back to the caller.
func (d DoublePendulum) Derive(x dynamo.State) dynamo.Derivatives {
	theta1, theta2, omega1, omega2 := x.Theta1, x.Theta2, x.Omega1, x.Omega2
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.G

	delta := theta1 - theta2
	sinD, cosD := math.Sin(delta), math.Cos(delta)
	mt := m1 + m2

	den1 := mt*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	alpha1 := (-m2*l1*omega1*omega1*sinD*cosD +
		m2*g*math.Sin(theta2)*cosD +
		m2*l2*omega2*omega2*sinD -
		mt*g*math.Sin(theta1)) / den1

	alpha2 := (m2*l2*omega2*omega2*sinD*cosD +
		mt*g*math.Sin(theta1)*cosD +
		mt*l1*omega1*omega1*sinD -
		mt*g*math.Sin(theta2)) / den2

	return dynamo.Derivatives{
		DTheta1: omega1,
		DTheta2: omega2,
		DOmega1: alpha1,
		DOmega2: alpha2,
	}
}

// Energy returns kinetic plus potential energy, with the pivot as the
// zero of height.
func (d DoublePendulum) Energy(x dynamo.State) float64 {
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.G

	v1sq := l1 * l1 * x.Omega1 * x.Omega1
	v2sq := v1sq + l2*l2*x.Omega2*x.Omega2 +
		2*l1*l2*x.Omega1*x.Omega2*math.Cos(x.Theta1-x.Theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(x.Theta1)
	y2 := y1 - l2*math.Cos(x.Theta2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}

// Validate rejects non-positive parameters.
func (d DoublePendulum) Validate() error {
	return errors.Join(
		dynamo.RequirePositive("g", d.G),
		dynamo.RequirePositive("m1", d.M1),
		dynamo.RequirePositive("m2", d.M2),
		dynamo.RequirePositive("l1", d.L1),
		dynamo.RequirePositive("l2", d.L2),
	)
}

func (d *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"g":  d.G,
		"m1": d.M1,
		"m2": d.M2,
		"l1": d.L1,
		"l2": d.L2,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	switch name {
	case "g":
		d.G = value
	case "m1":
		d.M1 = value
	case "m2":
		d.M2 = value
	case "l1":
		d.L1 = value
	case "l2":
		d.L2 = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
