package sim

import (
	"errors"
	"fmt"
	"math"
)

// testAdapter is a minimal BPSK-style adapter for exercising the core
// without the pilot-aided chain: one symbol per bit, sign demapping.
// Valid only for impairment "none"; the decoder tests that need phase
// rotation go through sim/phy instead.
type testAdapter struct {
	bits int
}

func newTestAdapter(bits int) *testAdapter {
	return &testAdapter{bits: bits}
}

func (a *testAdapter) MessageBits() int { return a.bits }
func (a *testAdapter) BlockLen() int    { return a.bits }

func (a *testAdapter) Encode(bits []uint8) ([]complex128, error) {
	if len(bits) != a.bits {
		return nil, fmt.Errorf("expected %d bits, got %d", a.bits, len(bits))
	}
	block := make([]complex128, len(bits))
	for i, b := range bits {
		block[i] = complex(1-2*float64(b), 0)
	}
	return block, nil
}

func (a *testAdapter) DecodeSlot(symbols []complex128, noiseVar float64) ([]uint8, complex128, error) {
	if len(symbols) != a.bits {
		return nil, 0, fmt.Errorf("expected block of %d symbols, got %d", a.bits, len(symbols))
	}
	bits := make([]uint8, len(symbols))
	for i, s := range symbols {
		if real(s) < 0 {
			bits[i] = 1
		}
	}
	return bits, 1, nil
}

func (a *testAdapter) NoiseVariance(ebN0dB float64) float64 {
	return math.Pow(10, -ebN0dB/10)
}

// failingAdapter decodes nothing: every DecodeSlot call reports a failure.
type failingAdapter struct {
	testAdapter
}

var errBrokenPhy = errors.New("malformed symbol block")

func (a *failingAdapter) DecodeSlot(symbols []complex128, noiseVar float64) ([]uint8, complex128, error) {
	return nil, 0, errBrokenPhy
}

// buildUE encodes the given bits through the adapter and places the replicas.
func buildUE(t interface{ Fatalf(string, ...any) }, adapter Adapter, id int, bits []uint8, slots ...int) *UE {
	ref, err := adapter.Encode(bits)
	if err != nil {
		t.Fatalf("encode UE %d: %v", id, err)
	}
	return &UE{
		ID:               id,
		MessageBits:      bits,
		ReferenceSymbols: ref,
		ReplicaSlots:     slots,
		ChannelCoeff:     make(map[int]complex128),
	}
}

// noiselessConfig returns a config with zero noise and no impairment sized
// for manual UE construction.
func noiselessConfig(frameSize, numUEs int) *SimulationConfig {
	return &SimulationConfig{
		FrameSize:    frameSize,
		NumUEs:       numUEs,
		ReplicaProbs: []float64{0, 1},
		EbN0dB:       math.Inf(1),
		Impairment:   ImpairmentNone,
		Seed:         1,
		Trials:       1,
	}
}
