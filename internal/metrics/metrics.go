package metrics

import "github.com/san-kum/chaosmap/internal/dynamo"

// Metric observes a trajectory one state at a time.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// ObserveAll feeds x to every metric.
func ObserveAll(ms []Metric, x dynamo.State, t float64) {
	for _, m := range ms {
		m.Observe(x, t)
	}
}
