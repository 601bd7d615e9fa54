package hist

import (
	"fmt"
)

// maxSpan bounds the number of buckets a single accumulator will allocate.
// Dice bounds grow with the square of the face count, so a hostile term could
// otherwise request an absurd allocation.
const maxSpan = 1 << 24

// Accumulator counts events over an inclusive [min, max] integer range. It is
// the roll-side producer of the arrays Series consumes.
type Accumulator struct {
	min    int64
	max    int64
	counts []int64
	total  int64
}

// NewAccumulator creates an accumulator for values in [min, max].
func NewAccumulator(min, max int64) (*Accumulator, error) {
	if min > max {
		return nil, fmt.Errorf("invalid range: min %d > max %d", min, max)
	}
	// uint64 keeps max-min meaningful even when the int64 difference wraps
	if uint64(max-min) >= maxSpan {
		return nil, fmt.Errorf("range [%d, %d] spans more than the %d buckets supported", min, max, maxSpan)
	}
	span := max - min + 1
	return &Accumulator{min: min, max: max, counts: make([]int64, span)}, nil
}

// Add counts one event. Values outside the accumulator's range are an error;
// the caller sized the range from the term's bounds, so an out-of-range value
// means those bounds were wrong.
func (a *Accumulator) Add(v int64) error {
	if v < a.min || v > a.max {
		return fmt.Errorf("value %d outside accumulator range [%d, %d]", v, a.min, a.max)
	}
	a.counts[v-a.min]++
	a.total++
	return nil
}

// Total returns the number of events counted so far.
func (a *Accumulator) Total() int64 { return a.total }

// Encode produces the offset-prefixed artifact array: element 0 is the range
// minimum, followed by one count per value from min to max.
func (a *Accumulator) Encode() []int64 {
	out := make([]int64, 1+len(a.counts))
	out[0] = a.min
	copy(out[1:], a.counts)
	return out
}

// Series returns the render-side view of the accumulated counts.
func (a *Accumulator) Series() *Series {
	counts := make([]float64, len(a.counts))
	for i, c := range a.counts {
		counts[i] = float64(c)
	}
	return &Series{Offset: float64(a.min), Counts: counts}
}
