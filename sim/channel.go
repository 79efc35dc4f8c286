package sim

import (
	"math"
	"math/cmplx"
)

// BuildReceivedFrame superimposes all UEs' replicas into shared slots and
// impairs the result: per (UE, slot) pair one complex channel coefficient is
// drawn and applied, then i.i.d. circular complex Gaussian noise is added to
// every slot at the variance the adapter derives from the configured Eb/N0.
//
// The returned frame is exactly the received signal the SIC decoder operates
// on. Coefficients are recorded on each UE for later inspection; the decoder
// never reads them (it re-estimates phase during cancellation).
func BuildReceivedFrame(ues []*UE, cfg *SimulationConfig, adapter Adapter, rng *PartitionedRNG) *Frame {
	frame := NewFrame(cfg.FrameSize, adapter.BlockLen())

	coeffRNG := rng.ForSubsystem(SubsystemChannel)
	for _, ue := range ues {
		for _, slot := range ue.ReplicaSlots {
			coeff := complex(1, 0)
			if cfg.Impairment == ImpairmentPhaseOnly {
				phase := 2 * math.Pi * coeffRNG.Float64()
				coeff = cmplx.Exp(complex(0, phase))
			}
			ue.ChannelCoeff[slot] = coeff

			contents := frame.Slots[slot].Contents
			for k, s := range ue.ReferenceSymbols {
				contents[k] += coeff * s
			}
		}
	}

	noiseVar := adapter.NoiseVariance(cfg.EbN0dB)
	if noiseVar > 0 {
		noiseRNG := rng.ForSubsystem(SubsystemNoise)
		sigma := math.Sqrt(noiseVar / 2) // per real component
		for _, slot := range frame.Slots {
			for k := range slot.Contents {
				slot.Contents[k] += complex(noiseRNG.NormFloat64()*sigma, noiseRNG.NormFloat64()*sigma)
			}
		}
	}
	return frame
}
