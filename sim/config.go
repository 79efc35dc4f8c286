package sim

import (
	"fmt"
	"math"
)

// ImpairmentMode selects the per-replica channel coefficient model.
type ImpairmentMode string

const (
	// ImpairmentNone uses coefficient 1 for every replica.
	ImpairmentNone ImpairmentMode = "none"
	// ImpairmentPhaseOnly uses a unit-magnitude coefficient with phase
	// drawn uniformly in [0, 2pi) per (UE, slot) pair.
	ImpairmentPhaseOnly ImpairmentMode = "phase-only"
)

// probSumTolerance bounds how far the replica distribution may deviate from
// summing to exactly 1 before it is rejected.
const probSumTolerance = 1e-6

// SimulationConfig holds the read-only parameters for a batch of trials.
// It is owned by the driver and passed by pointer to all components;
// never mutated after Validate.
type SimulationConfig struct {
	FrameSize int `yaml:"frame_size"` // slots per frame
	NumUEs    int `yaml:"num_ues"`    // contending transmitters per frame

	// ReplicaProbs[r] is the probability that a UE transmits r replicas.
	// The support is {0 .. len(ReplicaProbs)-1} and must sum to 1.
	ReplicaProbs []float64 `yaml:"replica_probs"`

	EbN0dB     float64        `yaml:"ebn0_db"`    // SNR specification; +Inf means noiseless
	Impairment ImpairmentMode `yaml:"impairment"` // "none" or "phase-only"

	Seed        int64 `yaml:"seed"`        // master seed for all randomness
	Trials      int   `yaml:"trials"`      // independent frames to simulate
	Parallelism int   `yaml:"parallelism"` // worker count for trial batches; 0 = GOMAXPROCS
}

// DefaultConfig returns a configuration matching the canonical small-frame
// IRSA setup: ten slots, degree distribution bounded at two replicas.
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		FrameSize:    10,
		NumUEs:       6,
		ReplicaProbs: []float64{0.0, 0.5, 0.5},
		EbN0dB:       100,
		Impairment:   ImpairmentPhaseOnly,
		Seed:         42,
		Trials:       1,
		Parallelism:  0,
	}
}

// MaxReplicas returns the largest replica count in the distribution support.
func (c *SimulationConfig) MaxReplicas() int {
	return len(c.ReplicaProbs) - 1
}

// Validate checks the configuration. All violations are reported as
// *ConfigError.
func (c *SimulationConfig) Validate() error {
	if c.FrameSize <= 0 {
		return &ConfigError{Field: "frame_size", Reason: fmt.Sprintf("must be > 0, got %d", c.FrameSize)}
	}
	if c.NumUEs <= 0 {
		return &ConfigError{Field: "num_ues", Reason: fmt.Sprintf("must be > 0, got %d", c.NumUEs)}
	}
	if len(c.ReplicaProbs) == 0 {
		return &ConfigError{Field: "replica_probs", Reason: "must not be empty"}
	}
	sum := 0.0
	for r, p := range c.ReplicaProbs {
		if p < 0 || math.IsNaN(p) {
			return &ConfigError{Field: "replica_probs", Reason: fmt.Sprintf("probability for %d replicas must be >= 0, got %v", r, p)}
		}
		sum += p
	}
	if math.Abs(sum-1.0) > probSumTolerance {
		return &ConfigError{Field: "replica_probs", Reason: fmt.Sprintf("must sum to 1, got %v", sum)}
	}
	if c.MaxReplicas() > c.FrameSize {
		return &ConfigError{Field: "replica_probs", Reason: fmt.Sprintf("max replicas %d exceeds frame size %d", c.MaxReplicas(), c.FrameSize)}
	}
	switch c.Impairment {
	case ImpairmentNone, ImpairmentPhaseOnly:
	default:
		return &ConfigError{Field: "impairment", Reason: fmt.Sprintf("must be %q or %q, got %q", ImpairmentNone, ImpairmentPhaseOnly, c.Impairment)}
	}
	if c.Trials < 1 {
		return &ConfigError{Field: "trials", Reason: fmt.Sprintf("must be >= 1, got %d", c.Trials)}
	}
	if c.Parallelism < 0 {
		return &ConfigError{Field: "parallelism", Reason: fmt.Sprintf("must be >= 0, got %d", c.Parallelism)}
	}
	return nil
}
