package sim

// UE represents one contending transmitter in one simulated frame.
//
// A UE references its replica slots by index only, never by pointer; slots
// are owned by the Frame. MessageBits and ReferenceSymbols are set once at
// creation and immutable for the trial. The decoder is the only writer of
// the Identified flag, and sets it exactly once.
type UE struct {
	ID int

	// MessageBits is the payload, fixed at creation.
	MessageBits []uint8

	// ReferenceSymbols is the transmit-domain block produced by encoding
	// MessageBits through the PHY adapter. Opaque to the core except for
	// the cancellation correlation.
	ReferenceSymbols []complex128

	// ReplicaSlots are the distinct slot indices carrying this UE's
	// replicas, ascending. Empty for a UE that drew replica count zero.
	ReplicaSlots []int

	// ChannelCoeff maps each occupied slot to the complex coefficient the
	// collision channel applied there. Unit magnitude under phase-only
	// impairment; 1 when impairment is disabled.
	ChannelCoeff map[int]complex128

	Identified bool
}

// HasReplicaIn reports whether the UE placed a replica in the given slot.
func (u *UE) HasReplicaIn(slot int) bool {
	for _, s := range u.ReplicaSlots {
		if s == slot {
			return true
		}
	}
	return false
}
