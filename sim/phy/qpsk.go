// Package phy provides the reference pilot-aided QPSK adapter for the
// collision-resolution core. Each slot block is a short sequence of known
// pilot symbols followed by Gray-coded QPSK data symbols; the receiver
// least-squares-estimates the flat channel coefficient from the pilots,
// equalizes, and hard-demaps.
package phy

import (
	"fmt"
	"math"
	"math/cmplx"
)

const bitsPerSymbol = 2

// invSqrt2 normalizes QPSK constellation points to unit energy.
var invSqrt2 = 1 / math.Sqrt2

// QPSK implements the PHY adapter contract with uncoded Gray-mapped QPSK
// over a flat channel. It is stateless and safe for concurrent use.
type QPSK struct {
	messageBits int
	coderate    float64
	pilots      []complex128
}

// NewQPSK creates an adapter carrying messageBits payload bits (must be
// even) behind numPilots known pilot symbols per block.
func NewQPSK(messageBits, numPilots int) (*QPSK, error) {
	if messageBits <= 0 || messageBits%2 != 0 {
		return nil, fmt.Errorf("message bits must be positive and even, got %d", messageBits)
	}
	if numPilots <= 0 {
		return nil, fmt.Errorf("pilot count must be > 0, got %d", numPilots)
	}
	// Fixed pilot sequence cycling through the four constellation points.
	pilots := make([]complex128, numPilots)
	for k := range pilots {
		pilots[k] = mapSymbol(uint8(k)&1, uint8(k>>1)&1)
	}
	return &QPSK{
		messageBits: messageBits,
		coderate:    1.0, // uncoded reference chain
		pilots:      pilots,
	}, nil
}

// MessageBits returns the payload size in bits.
func (q *QPSK) MessageBits() int {
	return q.messageBits
}

// BlockLen returns the slot block length in symbols (pilots + data).
func (q *QPSK) BlockLen() int {
	return len(q.pilots) + q.messageBits/bitsPerSymbol
}

// Encode maps payload bits onto a pilot-prefixed QPSK symbol block.
// Deterministic given the same bits.
func (q *QPSK) Encode(bits []uint8) ([]complex128, error) {
	if len(bits) != q.messageBits {
		return nil, fmt.Errorf("expected %d bits, got %d", q.messageBits, len(bits))
	}
	block := make([]complex128, 0, q.BlockLen())
	block = append(block, q.pilots...)
	for k := 0; k < len(bits); k += 2 {
		block = append(block, mapSymbol(bits[k], bits[k+1]))
	}
	return block, nil
}

// DecodeSlot estimates the channel from the pilot prefix, equalizes the data
// symbols, and hard-demaps them. Best effort: on a collision the estimate
// and bits are garbage, which the caller detects via payload matching, not
// via an error. Only a malformed block length is an error.
func (q *QPSK) DecodeSlot(symbols []complex128, noiseVar float64) ([]uint8, complex128, error) {
	if len(symbols) != q.BlockLen() {
		return nil, 0, fmt.Errorf("expected block of %d symbols, got %d", q.BlockLen(), len(symbols))
	}

	// LS estimate over the pilots: h = mean(y_k * conj(p_k)) / E[|p|^2].
	// Pilots are unit energy, so the denominator is 1.
	var est complex128
	for k, p := range q.pilots {
		est += symbols[k] * cmplx.Conj(p)
	}
	est /= complex(float64(len(q.pilots)), 0)
	if est == 0 {
		// Empty slot: nothing to equalize against. Demap the raw symbols;
		// the output is garbage by construction.
		est = 1
	}

	bits := make([]uint8, 0, q.messageBits)
	for _, y := range symbols[len(q.pilots):] {
		z := y / est
		bits = append(bits, demapBit(real(z)), demapBit(imag(z)))
	}
	return bits, est, nil
}

// NoiseVariance maps an Eb/N0 specification in dB to the complex noise
// variance N0 = 1 / (10^(EbN0/10) * bitsPerSymbol * coderate). An infinite
// Eb/N0 yields exactly zero variance.
func (q *QPSK) NoiseVariance(ebN0dB float64) float64 {
	ebN0 := math.Pow(10, ebN0dB/10)
	return 1 / (ebN0 * bitsPerSymbol * q.coderate)
}

// mapSymbol Gray-maps a bit pair to a unit-energy constellation point:
// bit 0 selects the sign of the real part, bit 1 the imaginary part.
func mapSymbol(b0, b1 uint8) complex128 {
	re := invSqrt2
	if b0 == 1 {
		re = -re
	}
	im := invSqrt2
	if b1 == 1 {
		im = -im
	}
	return complex(re, im)
}

func demapBit(component float64) uint8 {
	if component < 0 {
		return 1
	}
	return 0
}
