package hist

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a count distribution for the run report.
type Stats struct {
	Events  int64   `json:"events"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Entropy float64 `json:"entropy"`
}

// ComputeStats computes event total, count-weighted mean and standard
// deviation, and the Shannon entropy (nats) of the series' distribution.
// A series with fewer than two events reports zero spread.
func ComputeStats(s *Series) Stats {
	var total float64
	for _, c := range s.Counts {
		total += c
	}
	if total <= 0 {
		return Stats{}
	}

	xs := s.XValues()
	st := Stats{
		Events: int64(total),
		Mean:   stat.Mean(xs, s.Counts),
	}
	if total > 1 {
		st.StdDev = stat.StdDev(xs, s.Counts)
	}

	// stat.Entropy wants a normalized distribution without zero entries
	dist := make([]float64, 0, len(s.Counts))
	for _, c := range s.Counts {
		if c > 0 {
			dist = append(dist, c/total)
		}
	}
	st.Entropy = stat.Entropy(dist)
	return st
}
