package sim

// Slot is one time-domain unit of the frame's shared medium.
type Slot struct {
	Index int

	// Contents holds the slot's current complex signal block: first the
	// noise-free superposition of the occupying replicas, then the noisy
	// received version, then possibly a cancellation-reduced version.
	Contents []complex128

	// Resolved is set once the decoder has attributed the slot's residual
	// content to exactly one identified UE, or permanently abandoned it.
	Resolved bool
}

// Frame is a fixed-size ordered sequence of slots for one trial. The Frame
// owns all slot signal buffers; UEs reference slots by index only. A frame
// is fully consumed by one decode run and retains no cross-frame state.
type Frame struct {
	Slots []*Slot
}

// NewFrame allocates a frame of size zero-signal slots, blockLen complex
// samples each.
func NewFrame(size, blockLen int) *Frame {
	slots := make([]*Slot, size)
	for i := range slots {
		slots[i] = &Slot{
			Index:    i,
			Contents: make([]complex128, blockLen),
		}
	}
	return &Frame{Slots: slots}
}

// Size returns the number of slots in the frame.
func (f *Frame) Size() int {
	return len(f.Slots)
}

// Contributors returns the IDs of UEs that placed a replica in the given
// slot and are still unidentified, ascending. The set is derived from the
// UEs' replica placements on every call rather than stored, so it is always
// consistent with the decoder's progress.
func (f *Frame) Contributors(slot int, ues []*UE) []int {
	var ids []int
	for _, ue := range ues {
		if !ue.Identified && ue.HasReplicaIn(slot) {
			ids = append(ids, ue.ID)
		}
	}
	return ids
}
