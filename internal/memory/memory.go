// Package memory implements the emulated address space: a sparse set of
// mounted Regions, byte/word access with alignment and bounds checking.
//
// Grounded on the teacher's internal/mips32/memory.go flat-buffer
// LoadWord/StoreWord (alignment check via address%4, bounds check via
// address+3 < len(Data), big-endian byte order), generalized from a single
// flat buffer into the sorted, non-overlapping region set the host
// specification requires ("Address-keyed region store").
package memory

import (
	"fmt"
	"sort"
)

// Region is a contiguous mapped byte range with a fixed base address.
type Region struct {
	Start uint32
	Data  []byte
}

// End returns the address one past the region's last mapped byte.
func (r Region) End() uint32 {
	return r.Start + uint32(len(r.Data))
}

// Contains reports whether addr falls inside this region.
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End()
}

// ErrUnmapped is raised when an address has no mounted region.
type ErrUnmapped struct{ Address uint32 }

func (e ErrUnmapped) Error() string {
	return fmt.Sprintf("memory address 0x%08x is not mapped", e.Address)
}

// ErrAlignment is raised when a word access is not 4-byte aligned.
type ErrAlignment struct{ Address uint32 }

func (e ErrAlignment) Error() string {
	return fmt.Sprintf("memory address 0x%08x is not word-aligned", e.Address)
}

// ErrOverlap is raised when a mount would overlap an already-mounted region.
type ErrOverlap struct {
	New      Region
	Existing Region
}

func (e ErrOverlap) Error() string {
	return fmt.Sprintf("region [0x%08x, 0x%08x) overlaps existing region [0x%08x, 0x%08x)",
		e.New.Start, e.New.End(), e.Existing.Start, e.Existing.End())
}

// Memory is a sparse address space: a set of mounted Regions kept sorted by
// base address so lookups can binary search.
type Memory struct {
	regions []Region
}

// New builds an empty address space.
func New() *Memory {
	return &Memory{}
}

// Mount adds a Region. Regions must not overlap; an overlapping mount is a
// fatal configuration error for the caller (it always indicates two
// components disagree about the layout of the address space).
func (m *Memory) Mount(r Region) error {
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].Start >= r.Start })

	if i > 0 {
		prev := m.regions[i-1]
		if r.Start < prev.End() {
			return ErrOverlap{New: r, Existing: prev}
		}
	}
	if i < len(m.regions) {
		next := m.regions[i]
		if r.End() > next.Start {
			return ErrOverlap{New: r, Existing: next}
		}
	}

	m.regions = append(m.regions, Region{})
	copy(m.regions[i+1:], m.regions[i:])
	m.regions[i] = r
	return nil
}

// Regions returns the mounted regions in base-address order. The returned
// slice is a copy of the region headers (not the underlying byte slices).
func (m *Memory) Regions() []Region {
	out := make([]Region, len(m.regions))
	copy(out, m.regions)
	return out
}

func (m *Memory) find(addr uint32) (*Region, bool) {
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].End() > addr })
	if i < len(m.regions) && m.regions[i].Contains(addr) {
		return &m.regions[i], true
	}
	return nil, false
}

// GetByte reads one byte.
func (m *Memory) GetByte(addr uint32) (byte, error) {
	r, ok := m.find(addr)
	if !ok {
		return 0, ErrUnmapped{addr}
	}
	return r.Data[addr-r.Start], nil
}

// SetByte writes one byte.
func (m *Memory) SetByte(addr uint32, value byte) error {
	r, ok := m.find(addr)
	if !ok {
		return ErrUnmapped{addr}
	}
	r.Data[addr-r.Start] = value
	return nil
}

// GetWord reads a big-endian 32-bit word. addr must be 4-byte aligned and
// all four bytes must be mapped (they need not share a single Region).
func (m *Memory) GetWord(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, ErrAlignment{addr}
	}

	var word uint32
	for i := uint32(0); i < 4; i++ {
		b, err := m.GetByte(addr + i)
		if err != nil {
			return 0, err
		}
		word = word<<8 | uint32(b)
	}
	return word, nil
}

// SetWord writes a big-endian 32-bit word.
func (m *Memory) SetWord(addr uint32, value uint32) error {
	if addr%4 != 0 {
		return ErrAlignment{addr}
	}

	for i := uint32(0); i < 4; i++ {
		shift := 24 - 8*i
		if err := m.SetByte(addr+i, byte(value>>shift)); err != nil {
			return err
		}
	}
	return nil
}
