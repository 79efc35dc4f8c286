package sim

import (
	"sort"
)

// GeneratePlacements creates the frame's UE population: each UE gets random
// message bits, a replica count drawn from the configured distribution, and
// that many distinct slot indices drawn uniformly without replacement (a UE
// never collides with itself). Each UE's payload is encoded through the PHY
// adapter once; the resulting block doubles as the cancellation reference.
//
// Deterministic given the PartitionedRNG's key. No side effects beyond the
// returned UE list.
func GeneratePlacements(cfg *SimulationConfig, adapter Adapter, rng *PartitionedRNG) ([]*UE, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	placementRNG := rng.ForSubsystem(SubsystemPlacement)
	sampler := NewReplicaSampler(cfg.ReplicaProbs)

	ues := make([]*UE, cfg.NumUEs)
	for i := 0; i < cfg.NumUEs; i++ {
		bits := make([]uint8, adapter.MessageBits())
		for b := range bits {
			bits[b] = uint8(placementRNG.Intn(2))
		}

		count := sampler.Sample(placementRNG)
		// Prefix of a permutation gives a uniform draw without replacement.
		slots := append([]int(nil), placementRNG.Perm(cfg.FrameSize)[:count]...)
		sort.Ints(slots)

		ref, err := adapter.Encode(bits)
		if err != nil {
			return nil, &PhyAdapterError{Op: "encode", Err: err}
		}

		ues[i] = &UE{
			ID:               i,
			MessageBits:      bits,
			ReferenceSymbols: ref,
			ReplicaSlots:     slots,
			ChannelCoeff:     make(map[int]complex128, count),
		}
	}
	return ues, nil
}
