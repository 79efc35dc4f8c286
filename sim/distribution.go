package sim

import (
	"math/rand"
	"sort"
)

// ReplicaSampler draws replica counts from a categorical distribution using
// inverse-CDF lookup. Index r of the source probability vector is the
// probability of transmitting exactly r replicas.
type ReplicaSampler struct {
	counts []int     // replica counts with non-zero probability, ascending
	cdf    []float64 // cumulative probabilities; last entry forced to exactly 1.0
}

// NewReplicaSampler builds a sampler from the configured probability vector.
// The vector is assumed validated (non-negative, sums to 1 within tolerance);
// it is re-normalized here so accumulated float error cannot push the final
// CDF entry below 1. Zero-probability counts are dropped from the support so
// they can never be produced by a boundary draw.
func NewReplicaSampler(probs []float64) *ReplicaSampler {
	total := 0.0
	for _, p := range probs {
		total += p
	}

	counts := make([]int, 0, len(probs))
	cdf := make([]float64, 0, len(probs))
	cumulative := 0.0
	for r, p := range probs {
		if p <= 0 {
			continue
		}
		cumulative += p / total
		counts = append(counts, r)
		cdf = append(cdf, cumulative)
	}
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}
	return &ReplicaSampler{counts: counts, cdf: cdf}
}

// Sample returns a replica count from the distribution support.
func (s *ReplicaSampler) Sample(rng *rand.Rand) int {
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.counts) {
		idx = len(s.counts) - 1
	}
	return s.counts[idx]
}
