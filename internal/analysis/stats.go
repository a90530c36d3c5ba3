package analysis

import "math"

// Summary describes a set of time-to-flip values.
type Summary struct {
	Count   int     `json:"count"`
	Flipped int     `json:"flipped"`
	Mean    float64 `json:"mean"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	MaxTime float64 `json:"max_time"`
}

// FlippedFraction is the share of samples that flipped before MaxTime.
func (s Summary) FlippedFraction() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Flipped) / float64(s.Count)
}

// Summarize computes count, flip count and extrema. Values equal to
// maxTime are counted as not flipped.
func Summarize(values []float64, maxTime float64) Summary {
	acc := NewAccumulator(maxTime, 0)
	for _, v := range values {
		acc.Add(v)
	}
	return acc.Summary()
}

// Histogram buckets values over [0, maxTime] into bins equal-width
// buckets. The sentinel value maxTime lands in the last bucket.
func Histogram(values []float64, bins int, maxTime float64) []float64 {
	if bins <= 0 || maxTime <= 0 {
		return nil
	}
	acc := NewAccumulator(maxTime, bins)
	for _, v := range values {
		acc.Add(v)
	}
	return acc.Histogram()
}

// Accumulator builds a Summary and a histogram one value at a time, for
// scans too large to keep every value in memory.
type Accumulator struct {
	s      Summary
	sum    float64
	counts []float64
}

func NewAccumulator(maxTime float64, bins int) *Accumulator {
	a := &Accumulator{s: Summary{MaxTime: maxTime, Min: math.Inf(1), Max: math.Inf(-1)}}
	if bins > 0 && maxTime > 0 {
		a.counts = make([]float64, bins)
	}
	return a
}

func (a *Accumulator) Add(v float64) {
	a.s.Count++
	if v != a.s.MaxTime {
		a.s.Flipped++
	}
	a.sum += v
	a.s.Min = math.Min(a.s.Min, v)
	a.s.Max = math.Max(a.s.Max, v)

	if bins := len(a.counts); bins > 0 {
		i := int(v / a.s.MaxTime * float64(bins))
		if i < 0 {
			i = 0
		}
		if i >= bins {
			i = bins - 1
		}
		a.counts[i]++
	}
}

func (a *Accumulator) Summary() Summary {
	s := a.s
	if s.Count == 0 {
		s.Min, s.Max = 0, 0
		return s
	}
	s.Mean = a.sum / float64(s.Count)
	return s
}

// Histogram returns a copy of the bucket counts, or nil when the
// accumulator was built without buckets.
func (a *Accumulator) Histogram() []float64 {
	if a.counts == nil {
		return nil
	}
	return append([]float64(nil), a.counts...)
}
