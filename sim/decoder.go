package sim

import (
	"context"
	"math/cmplx"
	"runtime"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// cancelTolerance decides when a slot's correlation against a reference
// block is considered already-cancelled, relative to the block energy.
const cancelTolerance = 1e-6

// DecodeResult is the outcome of one SIC decode run. An unresolved residue
// after stall is a normal outcome (partial frame recovery), not an error.
type DecodeResult struct {
	IdentifiedUEs   []int // ascending
	UnresolvedSlots []int // ascending; slots never attributed to a UE
	Passes          int
}

// DecodeFrame runs the iterative SIC pass/peel loop over a received frame.
//
// State is an explicit machine: a pass counter plus three sets (slots still
// to process, undecoded UEs, identified UEs). Each pass demodulates every
// remaining slot against the frame as it stood at the start of the pass,
// matches the bit estimates against undecoded UEs, and only then mutates the
// sets and cancels the newly identified UEs' replicas from the frame. The
// loop halts on a stall (a pass identifying zero new UEs), on either set
// running empty, or at the hard cap of one pass per slot.
//
// Slot demodulation within a pass is read-only and independent, so it runs
// on parallel workers and joins before matching.
func DecodeFrame(frame *Frame, ues []*UE, cfg *SimulationConfig, adapter Adapter) (*DecodeResult, error) {
	if len(ues) == 0 {
		return nil, &ConfigError{Field: "num_ues", Reason: "decoder requires at least one UE"}
	}
	if frame == nil || frame.Size() == 0 {
		return nil, &ConfigError{Field: "frame_size", Reason: "decoder requires a non-empty frame"}
	}

	noiseVar := adapter.NoiseVariance(cfg.EbN0dB)

	slotsToProcess := make([]int, frame.Size())
	for i := range slotsToProcess {
		slotsToProcess[i] = i
	}
	undecoded := append([]*UE(nil), ues...)
	var identified []int

	workers := cfg.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	result := &DecodeResult{}
	for pass := 1; pass <= frame.Size(); pass++ {
		result.Passes = pass

		bitsHat, err := decodePass(frame, slotsToProcess, noiseVar, adapter, workers)
		if err != nil {
			return nil, err
		}

		// Matching sweep. Slots ascending, candidate UEs ascending; the
		// first exact payload match wins, so at most one UE is credited
		// per slot and a UE already credited this pass is skipped. Set
		// mutations are deferred until the sweep completes.
		matchedUE := make(map[int]bool)
		matchedSlot := make(map[int]bool)
		var newlyIdentified []*UE
		for i, slot := range slotsToProcess {
			for _, ue := range undecoded {
				if matchedUE[ue.ID] {
					continue
				}
				if !bitsEqual(bitsHat[i], ue.MessageBits) {
					continue
				}
				logrus.Debugf("pass %d: slot %d decoded UE %d", pass, slot, ue.ID)
				matchedUE[ue.ID] = true
				matchedSlot[slot] = true
				newlyIdentified = append(newlyIdentified, ue)
				break
			}
		}

		if len(newlyIdentified) == 0 {
			logrus.Debugf("pass %d: stall, no new UEs identified", pass)
			break
		}

		for _, ue := range newlyIdentified {
			ue.Identified = true
			identified = append(identified, ue.ID)
		}
		slotsToProcess = removeSlots(slotsToProcess, matchedSlot)
		undecoded = removeUEs(undecoded, matchedUE)

		for _, ue := range newlyIdentified {
			CancelReplicas(frame, ue)
		}

		if len(slotsToProcess) == 0 || len(undecoded) == 0 {
			break
		}
	}

	// A slot is unresolved only while it still carries contributions from
	// unidentified UEs. Empty slots and leftover replicas of identified UEs
	// count as resolved (clean or abandoned), not as residue.
	for _, slot := range frame.Slots {
		if len(frame.Contributors(slot.Index, ues)) == 0 {
			slot.Resolved = true
		} else {
			result.UnresolvedSlots = append(result.UnresolvedSlots, slot.Index)
		}
	}

	sort.Ints(identified)
	result.IdentifiedUEs = identified
	return result, nil
}

// decodePass demodulates every remaining slot in parallel and returns the
// bit estimates aligned with slotsToProcess. A PHY failure aborts the trial.
func decodePass(frame *Frame, slotsToProcess []int, noiseVar float64, adapter Adapter, workers int) ([][]uint8, error) {
	bitsHat := make([][]uint8, len(slotsToProcess))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for i, slot := range slotsToProcess {
		i, slot := i, slot
		g.Go(func() error {
			bits, _, err := adapter.DecodeSlot(frame.Slots[slot].Contents, noiseVar)
			if err != nil {
				return &PhyAdapterError{Op: "decode", Err: err}
			}
			bitsHat[i] = bits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bitsHat, nil
}

// CancelReplicas subtracts a UE's contribution from every slot holding one
// of its replicas. The residual phase per slot is re-estimated from the
// slot's current contents (maximum-likelihood phase-only estimate: the angle
// of the inner product with the conjugated reference); the phase-rotated
// reference is then subtracted in place. A slot whose correlation is already
// negligible relative to the reference energy is left untouched, so
// cancelling an already-cancelled UE is a no-op.
func CancelReplicas(frame *Frame, ue *UE) {
	refEnergy := 0.0
	for _, s := range ue.ReferenceSymbols {
		refEnergy += real(s)*real(s) + imag(s)*imag(s)
	}

	for _, slot := range ue.ReplicaSlots {
		contents := frame.Slots[slot].Contents
		var corr complex128
		for k, s := range ue.ReferenceSymbols {
			corr += contents[k] * cmplx.Conj(s)
		}
		if cmplx.Abs(corr) <= cancelTolerance*refEnergy {
			continue
		}
		h := cmplx.Exp(complex(0, cmplx.Phase(corr)))
		for k, s := range ue.ReferenceSymbols {
			contents[k] -= h * s
		}
	}
}

func bitsEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func removeSlots(slots []int, drop map[int]bool) []int {
	kept := slots[:0]
	for _, s := range slots {
		if !drop[s] {
			kept = append(kept, s)
		}
	}
	return kept
}

func removeUEs(ues []*UE, drop map[int]bool) []*UE {
	kept := ues[:0]
	for _, ue := range ues {
		if !drop[ue.ID] {
			kept = append(kept, ue)
		}
	}
	return kept
}
