package memory

// ByteUndo is one (address, prior-byte) tuple captured by a WatchedMemory
// mutation, sufficient to reverse that single byte write.
type ByteUndo struct {
	Address uint32
	Prior   byte
}

// WatchedMemory wraps a backing Memory so every mutating operation records
// an inverse entry into an owned per-step buffer. The CPU step engine
// drains this buffer after each instruction to build an UndoEntry.
//
// Grounded on the titan original's WatchedMemory/UndoEntry (device.rs
// refers to `state.memory.backing` and `entry.apply`): reads never record
// anything, writes always do, a word write records four byte entries in
// address order so backstep can replay them byte-by-byte.
type WatchedMemory struct {
	backing *Memory
	pending []ByteUndo
}

// NewWatched wraps backing for change tracking.
func NewWatched(backing *Memory) *WatchedMemory {
	return &WatchedMemory{backing: backing}
}

// Backing exposes the underlying Memory, e.g. for backstep to apply a
// restored byte directly without re-recording undo history.
func (w *WatchedMemory) Backing() *Memory {
	return w.backing
}

// Mount delegates to the backing Memory.
func (w *WatchedMemory) Mount(r Region) error {
	return w.backing.Mount(r)
}

// Regions delegates to the backing Memory.
func (w *WatchedMemory) Regions() []Region {
	return w.backing.Regions()
}

// GetByte reads without recording undo history.
func (w *WatchedMemory) GetByte(addr uint32) (byte, error) {
	return w.backing.GetByte(addr)
}

// GetWord reads without recording undo history.
func (w *WatchedMemory) GetWord(addr uint32) (uint32, error) {
	return w.backing.GetWord(addr)
}

// SetByte writes one byte, capturing its prior value.
func (w *WatchedMemory) SetByte(addr uint32, value byte) error {
	prior, err := w.backing.GetByte(addr)
	if err != nil {
		return err
	}
	if err := w.backing.SetByte(addr, value); err != nil {
		return err
	}
	w.pending = append(w.pending, ByteUndo{Address: addr, Prior: prior})
	return nil
}

// SetWord writes a big-endian word, capturing the four prior bytes.
func (w *WatchedMemory) SetWord(addr uint32, value uint32) error {
	if addr%4 != 0 {
		return ErrAlignment{addr}
	}

	var priors [4]byte
	for i := uint32(0); i < 4; i++ {
		b, err := w.backing.GetByte(addr + i)
		if err != nil {
			return err
		}
		priors[i] = b
	}

	if err := w.backing.SetWord(addr, value); err != nil {
		return err
	}

	for i := uint32(0); i < 4; i++ {
		w.pending = append(w.pending, ByteUndo{Address: addr + i, Prior: priors[i]})
	}
	return nil
}

// Drain returns and clears the buffer of undo entries accumulated since the
// last call.
func (w *WatchedMemory) Drain() []ByteUndo {
	if len(w.pending) == 0 {
		return nil
	}
	out := w.pending
	w.pending = nil
	return out
}
