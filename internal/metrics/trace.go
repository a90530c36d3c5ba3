package metrics

import "github.com/san-kum/chaosmap/internal/dynamo"

// Trace keeps every Every-th value of one state component, for plotting.
type Trace struct {
	name   string
	pick   func(dynamo.State) float64
	every  int
	seen   int
	values []float64
}

func NewTrace(name string, every int, pick func(dynamo.State) float64) *Trace {
	if every < 1 {
		every = 1
	}
	return &Trace{name: name, pick: pick, every: every}
}

func (tr *Trace) Name() string { return tr.name }

func (tr *Trace) Observe(x dynamo.State, t float64) {
	if tr.seen%tr.every == 0 {
		tr.values = append(tr.values, tr.pick(x))
	}
	tr.seen++
}

// Value is the last recorded sample.
func (tr *Trace) Value() float64 {
	if len(tr.values) == 0 {
		return 0
	}
	return tr.values[len(tr.values)-1]
}

func (tr *Trace) Values() []float64 { return tr.values }

func (tr *Trace) Reset() {
	tr.seen = 0
	tr.values = tr.values[:0]
}
