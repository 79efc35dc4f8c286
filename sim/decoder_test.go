package sim

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Literal end-to-end scenario: frame of 4 slots, UE 0 replicated in slots
// {0,1}, UE 1 a singleton in slot 2, slot 3 empty, zero noise and
// impairment. Both UEs resolve and no slot retains unidentified residue.
func TestDecodeFrame_EndToEnd(t *testing.T) {
	adapter := newTestAdapter(4)
	cfg := noiselessConfig(4, 2)

	ue1 := buildUE(t, adapter, 0, []uint8{1, 0, 1, 0}, 0, 1)
	ue2 := buildUE(t, adapter, 1, []uint8{0, 1, 1, 0}, 2)
	ues := []*UE{ue1, ue2}
	frame := BuildReceivedFrame(ues, cfg, adapter, NewPartitionedRNG(1))

	res, err := DecodeFrame(frame, ues, cfg, adapter)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, res.IdentifiedUEs)
	assert.Empty(t, res.UnresolvedSlots)
	assert.LessOrEqual(t, res.Passes, 2)
	assert.True(t, ue1.Identified)
	assert.True(t, ue2.Identified)
}

// Stall scenario: three UEs all replicated into the same two slots, so no
// slot is ever a singleton. The decoder halts after one pass with nothing
// identified; the residue is a normal outcome, not an error.
func TestDecodeFrame_Stall(t *testing.T) {
	adapter := newTestAdapter(4)
	cfg := noiselessConfig(2, 3)

	// Chosen so the superposition's sign pattern (0,1,1,1) matches no UE.
	ues := []*UE{
		buildUE(t, adapter, 0, []uint8{0, 0, 1, 1}, 0, 1),
		buildUE(t, adapter, 1, []uint8{0, 1, 0, 1}, 0, 1),
		buildUE(t, adapter, 2, []uint8{0, 1, 1, 0}, 0, 1),
	}
	frame := BuildReceivedFrame(ues, cfg, adapter, NewPartitionedRNG(1))

	res, err := DecodeFrame(frame, ues, cfg, adapter)
	require.NoError(t, err)

	assert.Empty(t, res.IdentifiedUEs)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, []int{0, 1}, res.UnresolvedSlots)
	for _, ue := range ues {
		assert.False(t, ue.Identified)
	}
}

// Peeling across passes: UE 0 and UE 1 collide in slot 0, but UE 1 also has
// a singleton in slot 1. Pass 1 resolves UE 1 and cancels it from slot 0;
// pass 2 then resolves UE 0 from the cleaned slot.
func TestDecodeFrame_PeelsAcrossPasses(t *testing.T) {
	adapter := newTestAdapter(4)
	cfg := noiselessConfig(2, 2)

	ue1 := buildUE(t, adapter, 0, []uint8{1, 0, 1, 0}, 0)
	ue2 := buildUE(t, adapter, 1, []uint8{0, 1, 1, 0}, 0, 1)
	ues := []*UE{ue1, ue2}
	frame := BuildReceivedFrame(ues, cfg, adapter, NewPartitionedRNG(1))

	res, err := DecodeFrame(frame, ues, cfg, adapter)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, res.IdentifiedUEs)
	assert.Empty(t, res.UnresolvedSlots)
	assert.Equal(t, 2, res.Passes)
}

// A UE with two singleton replicas must be credited from exactly one slot
// per pass, and never identified twice.
func TestDecodeFrame_AtMostOneCreditPerUE(t *testing.T) {
	adapter := newTestAdapter(4)
	cfg := noiselessConfig(3, 1)

	ue := buildUE(t, adapter, 0, []uint8{1, 1, 0, 1}, 0, 2)
	ues := []*UE{ue}
	frame := BuildReceivedFrame(ues, cfg, adapter, NewPartitionedRNG(1))

	res, err := DecodeFrame(frame, ues, cfg, adapter)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, res.IdentifiedUEs)
	assert.Empty(t, res.UnresolvedSlots)
}

func TestDecodeFrame_Termination(t *testing.T) {
	adapter := newTestAdapter(16)
	cfg := schedulerConfig()
	cfg.NumUEs = 40 // heavily overloaded frame

	for seed := int64(0); seed < 10; seed++ {
		rng := NewPartitionedRNG(NewSimulationKey(seed))
		ues, err := GeneratePlacements(cfg, adapter, rng)
		require.NoError(t, err)
		frame := BuildReceivedFrame(ues, cfg, adapter, rng)

		res, err := DecodeFrame(frame, ues, cfg, adapter)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Passes, cfg.FrameSize, "seed %d exceeded pass cap", seed)
	}
}

func TestDecodeFrame_EmptyInputs(t *testing.T) {
	adapter := newTestAdapter(4)
	cfg := noiselessConfig(4, 1)
	frame := NewFrame(4, adapter.BlockLen())

	var cfgErr *ConfigError
	_, err := DecodeFrame(frame, nil, cfg, adapter)
	require.True(t, errors.As(err, &cfgErr), "empty UE set must be a ConfigError")

	ue := buildUE(t, adapter, 0, []uint8{1, 0, 1, 0}, 0)
	_, err = DecodeFrame(NewFrame(0, adapter.BlockLen()), []*UE{ue}, cfg, adapter)
	require.True(t, errors.As(err, &cfgErr), "zero-slot frame must be a ConfigError")
}

func TestDecodeFrame_PhyFailureAbortsTrial(t *testing.T) {
	adapter := newTestAdapter(4)
	cfg := noiselessConfig(2, 1)

	ue := buildUE(t, adapter, 0, []uint8{1, 0, 1, 0}, 0)
	ues := []*UE{ue}
	frame := BuildReceivedFrame(ues, cfg, adapter, NewPartitionedRNG(1))

	broken := &failingAdapter{testAdapter{bits: 4}}
	_, err := DecodeFrame(frame, ues, cfg, broken)

	var phyErr *PhyAdapterError
	require.True(t, errors.As(err, &phyErr))
	assert.Equal(t, "decode", phyErr.Op)
	assert.ErrorIs(t, err, errBrokenPhy)
}

func TestCancelReplicas_RemovesContribution(t *testing.T) {
	adapter := newTestAdapter(8)
	cfg := noiselessConfig(4, 1)
	cfg.Impairment = ImpairmentPhaseOnly

	ue := buildUE(t, adapter, 0, []uint8{1, 0, 0, 1, 1, 1, 0, 0}, 1, 3)
	frame := BuildReceivedFrame([]*UE{ue}, cfg, adapter, NewPartitionedRNG(11))

	CancelReplicas(frame, ue)
	for _, slot := range ue.ReplicaSlots {
		for k, v := range frame.Slots[slot].Contents {
			assert.InDelta(t, 0, cmplx.Abs(v), 1e-9, "slot %d sample %d", slot, k)
		}
	}
}

func TestCancelReplicas_IdempotentOnceCancelled(t *testing.T) {
	adapter := newTestAdapter(8)
	cfg := noiselessConfig(4, 1)

	ue := buildUE(t, adapter, 0, []uint8{1, 0, 0, 1, 1, 1, 0, 0}, 0, 2)
	frame := BuildReceivedFrame([]*UE{ue}, cfg, adapter, NewPartitionedRNG(1))

	CancelReplicas(frame, ue)
	CancelReplicas(frame, ue) // second run must be a no-op

	for _, slot := range ue.ReplicaSlots {
		for k, v := range frame.Slots[slot].Contents {
			assert.InDelta(t, 0, cmplx.Abs(v), 1e-9, "slot %d sample %d", slot, k)
		}
	}
}

// Identification is monotonic: a UE identified in an earlier pass stays
// identified, and running the decoder never clears a flag.
func TestDecodeFrame_MonotonicIdentification(t *testing.T) {
	adapter := newTestAdapter(16)
	cfg := schedulerConfig()

	rng := NewPartitionedRNG(NewSimulationKey(4))
	ues, err := GeneratePlacements(cfg, adapter, rng)
	require.NoError(t, err)
	frame := BuildReceivedFrame(ues, cfg, adapter, rng)

	res, err := DecodeFrame(frame, ues, cfg, adapter)
	require.NoError(t, err)

	flagged := 0
	for _, ue := range ues {
		if ue.Identified {
			flagged++
		}
	}
	assert.Equal(t, len(res.IdentifiedUEs), flagged, "result list and UE flags must agree")
	seen := make(map[int]bool)
	for _, id := range res.IdentifiedUEs {
		assert.False(t, seen[id], "UE %d identified twice", id)
		seen[id] = true
	}
}
