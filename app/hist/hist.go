// Package hist models the offset-prefixed count arrays the roll tools
// exchange. Element 0 of an artifact is the value of the first bucket, every
// following element is the event count for one consecutive integer value.
package hist

import (
	"errors"
)

// ErrNoOffset reports an array too short to carry the leading offset element.
var ErrNoOffset = errors.New("array has no offset element")

// Series is the render-side view of a count array: a starting value and one
// count per consecutive bucket. Counts may be empty, which renders as an
// empty chart.
type Series struct {
	Offset float64
	Counts []float64
}

// NewSeries splits a decoded artifact into offset and counts. The array must
// hold at least the offset element; a single-element array yields an empty
// series.
func NewSeries(values []float64) (*Series, error) {
	if len(values) == 0 {
		return nil, ErrNoOffset
	}
	return &Series{Offset: values[0], Counts: values[1:]}, nil
}

// Empty reports whether the series has no buckets.
func (s *Series) Empty() bool { return len(s.Counts) == 0 }

// XValues returns the bucket positions: Offset, Offset+1, ... with one entry
// per count.
func (s *Series) XValues() []float64 {
	xs := make([]float64, len(s.Counts))
	for i := range xs {
		xs[i] = s.Offset + float64(i)
	}
	return xs
}
