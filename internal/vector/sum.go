package vector

import "math"

// Summer accumulates float64 values with Kahan compensation, using
// Neumaier's variant so that a large term followed by its negation does not
// discard the smaller terms in between. The zero value is an empty sum.
type Summer struct {
	sum float64
	c   float64
	n   int
}

// Add adds v to the running sum.
func (s *Summer) Add(v float64) {
	t := s.sum + v
	if math.Abs(s.sum) >= math.Abs(v) {
		s.c += (s.sum - t) + v
	} else {
		s.c += (v - t) + s.sum
	}
	s.sum = t
	s.n++
}

// AddAll adds every value in values.
func (s *Summer) AddAll(values []float64) {
	for _, v := range values {
		s.Add(v)
	}
}

// Len returns the number of values added.
func (s *Summer) Len() int {
	return s.n
}

// Sum returns the compensated sum of the values added so far.
// Once the running sum is infinite or NaN the compensation term is
// meaningless and the raw sum is returned.
func (s *Summer) Sum() float64 {
	if math.IsInf(s.sum, 0) || math.IsNaN(s.sum) {
		return s.sum
	}
	return s.sum + s.c
}

// Sum returns the compensated sum of values. An empty slice sums to 0.
func Sum(values []float64) float64 {
	var s Summer
	s.AddAll(values)
	return s.Sum()
}
