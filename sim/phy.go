package sim

// Adapter is the contract toward the physical layer, which is external to
// the collision-resolution core. Any implementation satisfying it is
// interchangeable; the reference pilot-aided QPSK adapter lives in sim/phy.
type Adapter interface {
	// Encode turns message bits into a transmit-domain symbol block.
	// Deterministic given the same bits.
	Encode(bits []uint8) ([]complex128, error)

	// DecodeSlot attempts to demodulate one slot block. Best effort: on an
	// unresolved collision it returns incorrect bits without signaling an
	// error; garbage output is expected and handled by the decoder's
	// matching step. An error is reserved for malformed input (wrong block
	// length) and aborts the trial.
	DecodeSlot(symbols []complex128, noiseVar float64) (bitsHat []uint8, chanEst complex128, err error)

	// NoiseVariance maps the configured Eb/N0 specification (dB) to the
	// additive noise variance the collision channel applies.
	NoiseVariance(ebN0dB float64) float64

	// BlockLen is the number of complex samples per slot block.
	BlockLen() int

	// MessageBits is the number of payload bits per message.
	MessageBits() int
}
