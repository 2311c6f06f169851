// Package binary holds the assembled output of the two-pass assembler: one
// byte segment per memory mode, the label table, deferred fixups, and the
// resolved entry point. It owns no encoding logic (that's isa) and no
// parsing logic (that's asm) — only the layout an assembled program settles
// into before it's mounted into running memory.
//
// Grounded on the titan original's Binary/BinaryBuilder (assembler.rs),
// generalized from its Rust enum-keyed HashMap<Mode, Vec<u8>> into a Go map
// keyed by Mode, with the same default base addresses.
package binary

import "fmt"

// Mode selects which memory segment bytes are currently being appended to.
type Mode int

const (
	ModeText Mode = iota
	ModeData
	ModeKText
	ModeKData
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeData:
		return "data"
	case ModeKText:
		return "ktext"
	case ModeKData:
		return "kdata"
	default:
		return "mode"
	}
}

// DefaultBase is the conventional MIPS base address for each segment mode,
// matching the layout every MIPS assembler (and titan) assumes absent an
// explicit .text/.data address directive.
func DefaultBase(m Mode) uint32 {
	switch m {
	case ModeText:
		return 0x00400000
	case ModeData:
		return 0x10010000
	case ModeKText:
		return 0x80000000
	case ModeKData:
		return 0x90000000
	default:
		return 0
	}
}

// Segment is one contiguous run of assembled bytes starting at Base.
type Segment struct {
	Mode  Mode
	Base  uint32
	Bytes []byte
}

// End is the address one past the last byte in the segment.
func (s *Segment) End() uint32 {
	return s.Base + uint32(len(s.Bytes))
}

// Binary is the fully assembled program: one segment per mode, resolved
// labels, and the entry point Pass 2 settled on.
type Binary struct {
	Segments   map[Mode]*Segment
	Labels     map[string]uint32
	EntryLabel string
	EntryPoint uint32
}

// SegmentOrder lists modes in the order they should be mounted into memory,
// stable so Regions() is deterministic.
var SegmentOrder = []Mode{ModeText, ModeData, ModeKText, ModeKData}

func newBinary() *Binary {
	b := &Binary{
		Segments: make(map[Mode]*Segment, len(SegmentOrder)),
		Labels:   make(map[string]uint32),
	}
	for _, m := range SegmentOrder {
		b.Segments[m] = &Segment{Mode: m, Base: DefaultBase(m)}
	}
	return b
}

// ErrDuplicateLabel reports a label defined more than once.
type ErrDuplicateLabel struct{ Name string }

func (e ErrDuplicateLabel) Error() string { return fmt.Sprintf("label %q defined more than once", e.Name) }

// ErrUnknownLabel reports a fixup or entry point referencing an undefined label.
type ErrUnknownLabel struct{ Name string }

func (e ErrUnknownLabel) Error() string { return fmt.Sprintf("unknown label %q", e.Name) }

// ErrOverwriteEdge reports an append that would carry a segment's cursor
// past the top of the 32-bit address space. Mirrors the titan original's
// AssemblerReason::OverwriteEdge(pc, count).
type ErrOverwriteEdge struct {
	PC    uint32
	Count int
}

func (e ErrOverwriteEdge) Error() string {
	return fmt.Sprintf("appending %d bytes at 0x%x would overflow the address space", e.Count, e.PC)
}

// ErrMissingRegion reports an instruction or directive emitted before any
// mode was selected.
type ErrMissingRegion struct{}

func (ErrMissingRegion) Error() string { return "no memory region selected (missing .text/.data directive)" }
