package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/integrators"
	"github.com/san-kum/chaosmap/internal/physics"
)

func newClassifier(p config.Params) *Classifier {
	return NewClassifier(p, integrators.NewRK4())
}

func TestTimeToFlipEquilibrium(t *testing.T) {
	for _, maxTime := range []float64{0.5, 3, 15} {
		p := config.DefaultParams()
		p.MaxTime = maxTime
		c := newClassifier(p)

		if got := c.TimeToFlip(0, 0); got != maxTime {
			t.Errorf("maxTime=%v: equilibrium returned %v, want exactly %v", maxTime, got, maxTime)
		}
	}
}

func TestTimeToFlipSmallSwingNeverFlips(t *testing.T) {
	c := newClassifier(config.DefaultParams())
	if got := c.TimeToFlip(0.3, -0.2); got != c.MaxTime() {
		t.Errorf("small swing flipped at %v", got)
	}
	if c.Flipped(c.TimeToFlip(0.3, -0.2)) {
		t.Error("Flipped reported true for sentinel")
	}
}

func TestTimeToFlipNearInverted(t *testing.T) {
	// Both arms almost straight up: any wobble throws them over quickly.
	c := newClassifier(config.DefaultParams())
	got := c.TimeToFlip(math.Pi-0.05, math.Pi-0.05)
	if got >= c.MaxTime() {
		t.Fatalf("near-inverted start did not flip")
	}
	if got < 0 {
		t.Errorf("negative flip time %v", got)
	}
}

func TestTimeToFlipDeterministic(t *testing.T) {
	c := newClassifier(config.DefaultParams())
	points := [][2]float64{{2.1, -1.7}, {-3.0, 0.4}, {1.0, 2.9}, {0.0, -math.Pi}}

	for _, pt := range points {
		a := c.TimeToFlip(pt[0], pt[1])
		b := newClassifier(config.DefaultParams()).TimeToFlip(pt[0], pt[1])
		if a != b {
			t.Errorf("TimeToFlip(%v, %v) not deterministic: %v vs %v", pt[0], pt[1], a, b)
		}
	}
}

func TestTimeToFlipRange(t *testing.T) {
	p := config.DefaultParams()
	p.MaxTime = 5
	c := newClassifier(p)

	for i := -4; i <= 4; i++ {
		for j := -4; j <= 4; j++ {
			v := c.TimeToFlip(float64(i)*0.75, float64(j)*0.75)
			if v < 0 || v > p.MaxTime {
				t.Errorf("value %v outside [0, %v]", v, p.MaxTime)
			}
		}
	}
}

func TestTimeToFlipDegenerate(t *testing.T) {
	p := config.DefaultParams()
	p.Physics = physics.DoublePendulum{G: 9.81, L1: 1, L2: 1}
	c := newClassifier(p)

	if got := c.TimeToFlip(1, 0.5); got != 0 {
		t.Errorf("non-finite trajectory should trip immediately, got %v", got)
	}
}

// stuck never moves; used to check the loop bound without physics.
type stuck struct{}

func (stuck) Step(_ dynamo.System, x dynamo.State, _ float64) dynamo.State { return x }

func TestTimeToFlipSentinelExact(t *testing.T) {
	p := config.DefaultParams()
	p.Dt = 0.1
	p.MaxTime = 0.7
	c := NewClassifier(p, stuck{})

	if got := c.TimeToFlip(2, 2); got != 0.7 {
		t.Errorf("got %v, want exactly 0.7", got)
	}
}

func BenchmarkTimeToFlip(b *testing.B) {
	c := newClassifier(config.DefaultParams())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.TimeToFlip(2.0, -1.0)
	}
}
