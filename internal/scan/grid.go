package scan

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chaosmap/internal/dynamo"
)

// Grid is the sampled image area. It is comparable.
type Grid struct {
	Width      int
	Height     int
	Resolution int
}

func (g Grid) Validate() error {
	return errors.Join(
		requirePositiveInt("width", g.Width),
		requirePositiveInt("height", g.Height),
		requirePositiveInt("resolution", g.Resolution),
	)
}

func requirePositiveInt(field string, v int) error {
	if v <= 0 {
		return &dynamo.ConfigError{Field: field, Value: float64(v)}
	}
	return nil
}

// Cols is the number of sampled columns, including a partial last one.
func (g Grid) Cols() int { return ceilDiv(g.Width, g.Resolution) }

func (g Grid) Rows() int { return ceilDiv(g.Height, g.Resolution) }

// Total is the number of samples in a complete scan.
func (g Grid) Total() int { return g.Cols() * g.Rows() }

// Pixel returns the top-left pixel of sample i in row-major order.
func (g Grid) Pixel(i int) (x, y int) {
	cols := g.Cols()
	return (i % cols) * g.Resolution, (i / cols) * g.Resolution
}

func (g Grid) InitialCondition(x, y int) (theta1, theta2 float64) {
	theta1 = float64(x)/float64(g.Width)*2*math.Pi - math.Pi
	theta2 = float64(y)/float64(g.Height)*2*math.Pi - math.Pi
	return theta1, theta2
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d@%d", g.Width, g.Height, g.Resolution)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
