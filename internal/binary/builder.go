package binary

import "mipsunit/internal/isa"

// pendingFixup is a deferred patch against a specific segment and byte
// offset, with the instruction-relative isa.FixupRequest already resolved
// to an absolute position.
type pendingFixup struct {
	isa.FixupRequest
	Mode       Mode
	ByteOffset uint32
}

// Builder assembles a Binary one instruction or directive at a time. It has
// no concept of mnemonics or token streams — asm drives it by decoding
// operands and calling isa.Entry.Encode itself, then handing the result
// here to place in memory and queue for fixup.
type Builder struct {
	bin    *Binary
	mode   Mode
	hasMode bool
	fixups []pendingFixup
}

// NewBuilder starts a fresh, empty binary with every segment at its default base.
func NewBuilder() *Builder {
	return &Builder{bin: newBinary()}
}

// WithMode selects the active segment for chained construction, mirroring
// the titan original's consuming with_* builder style (here non-consuming,
// since Go values aren't moved out from under their owner).
func (b *Builder) WithMode(m Mode) *Builder {
	b.SetMode(m)
	return b
}

// WithEntry records the label Build should resolve as the program's entry
// point.
func (b *Builder) WithEntry(label string) *Builder {
	b.bin.EntryLabel = label
	return b
}

// SetMode switches which segment subsequent Append calls target.
func (b *Builder) SetMode(m Mode) {
	b.mode = m
	b.hasMode = true
}

// Mode reports the currently selected segment.
func (b *Builder) Mode() (Mode, bool) {
	return b.mode, b.hasMode
}

// Rebase overrides a segment's base address; valid only before any bytes
// have been appended to it (an org-style .text/.data directive with an
// explicit address).
func (b *Builder) Rebase(m Mode, base uint32) {
	if seg := b.bin.Segments[m]; seg != nil && len(seg.Bytes) == 0 {
		seg.Base = base
	}
}

// Cursor is the address the next appended byte would land at, in the
// currently selected segment.
func (b *Builder) Cursor() (uint32, error) {
	if !b.hasMode {
		return 0, ErrMissingRegion{}
	}
	return b.bin.Segments[b.mode].End(), nil
}

// AppendWords places encoded instruction words into the active segment,
// queuing any fixups at their absolute byte offsets.
func (b *Builder) AppendWords(words []uint32, fixups []isa.FixupRequest) (uint32, error) {
	if !b.hasMode {
		return 0, ErrMissingRegion{}
	}
	seg := b.bin.Segments[b.mode]
	startOffset := uint32(len(seg.Bytes))

	if uint64(startOffset)+uint64(len(words))*4 > 1<<32 {
		return 0, ErrOverwriteEdge{PC: seg.Base + startOffset, Count: len(words) * 4}
	}

	for _, w := range words {
		seg.Bytes = append(seg.Bytes, byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
	}
	for _, f := range fixups {
		b.fixups = append(b.fixups, pendingFixup{
			FixupRequest: f,
			Mode:         b.mode,
			ByteOffset:   startOffset + uint32(f.WordIndex)*4,
		})
	}
	return seg.Base + startOffset, nil
}

// AppendBytes places raw data (.byte/.half/.word/.ascii directive output)
// into the active segment.
func (b *Builder) AppendBytes(data []byte) (uint32, error) {
	if !b.hasMode {
		return 0, ErrMissingRegion{}
	}
	seg := b.bin.Segments[b.mode]
	startOffset := uint32(len(seg.Bytes))

	if uint64(startOffset)+uint64(len(data)) > 1<<32 {
		return 0, ErrOverwriteEdge{PC: seg.Base + startOffset, Count: len(data)}
	}

	seg.Bytes = append(seg.Bytes, data...)
	return seg.Base + startOffset, nil
}

// Align pads the active segment with zero bytes until its cursor is a
// multiple of width (used for .align and for word-aligning before an
// instruction after a .byte run).
func (b *Builder) Align(width int) error {
	if !b.hasMode {
		return ErrMissingRegion{}
	}
	seg := b.bin.Segments[b.mode]
	for len(seg.Bytes)%width != 0 {
		seg.Bytes = append(seg.Bytes, 0)
	}
	return nil
}

// DefineLabel binds name to the active segment's current cursor. A label
// defined twice is fatal, diverging intentionally from titan's silent
// last-write-wins overwrite.
func (b *Builder) DefineLabel(name string) error {
	addr, err := b.Cursor()
	if err != nil {
		return err
	}
	if _, exists := b.bin.Labels[name]; exists {
		return ErrDuplicateLabel{Name: name}
	}
	b.bin.Labels[name] = addr
	return nil
}

// SetEntryLabel records which label Build should resolve as the program's
// entry point; callable mid-assembly, e.g. from a ".entry" directive.
func (b *Builder) SetEntryLabel(name string) {
	b.bin.EntryLabel = name
}

// Label looks up an already-defined label, for directives that need an
// immediate (already-resolved) address rather than a deferred fixup.
func (b *Builder) Label(name string) (uint32, bool) {
	addr, ok := b.bin.Labels[name]
	return addr, ok
}

func readWord(bytes []byte, offset uint32) uint32 {
	return uint32(bytes[offset])<<24 | uint32(bytes[offset+1])<<16 | uint32(bytes[offset+2])<<8 | uint32(bytes[offset+3])
}

func writeWord(bytes []byte, offset uint32, word uint32) {
	bytes[offset] = byte(word >> 24)
	bytes[offset+1] = byte(word >> 16)
	bytes[offset+2] = byte(word >> 8)
	bytes[offset+3] = byte(word)
}

// Build resolves every deferred fixup against the final label table and
// returns the completed Binary. Once Build succeeds the Builder should not
// be reused.
func (b *Builder) Build() (*Binary, error) {
	for _, f := range b.fixups {
		addr, ok := b.bin.Labels[f.Label]
		if !ok {
			return nil, ErrUnknownLabel{Name: f.Label}
		}
		seg := b.bin.Segments[f.Mode]
		wordPC := seg.Base + f.ByteOffset

		switch f.Kind {
		case isa.FixupTarget26:
			if addr&0x3 != 0 {
				return nil, isa.ErrJumpOutOfRange{To: addr, From: wordPC}
			}
			word := readWord(seg.Bytes, f.ByteOffset)
			word = (word &^ 0x3FFFFFF) | ((addr >> 2) & 0x3FFFFFF)
			writeWord(seg.Bytes, f.ByteOffset, word)

		case isa.FixupBranch16:
			offsetWords := (int64(addr) - int64(wordPC+4)) >> 2
			if offsetWords < -(1<<15) || offsetWords > (1<<15)-1 {
				return nil, isa.ErrJumpOutOfRange{To: addr, From: wordPC}
			}
			word := readWord(seg.Bytes, f.ByteOffset)
			word = (word &^ 0xFFFF) | uint32(uint16(offsetWords))
			writeWord(seg.Bytes, f.ByteOffset, word)

		case isa.FixupHi16:
			word := readWord(seg.Bytes, f.ByteOffset)
			word = (word &^ 0xFFFF) | (addr >> 16)
			writeWord(seg.Bytes, f.ByteOffset, word)

		case isa.FixupLo16:
			word := readWord(seg.Bytes, f.ByteOffset)
			word = (word &^ 0xFFFF) | (addr & 0xFFFF)
			writeWord(seg.Bytes, f.ByteOffset, word)
		}
	}

	if b.bin.EntryLabel != "" {
		addr, ok := b.bin.Labels[b.bin.EntryLabel]
		if !ok {
			return nil, ErrUnknownLabel{Name: b.bin.EntryLabel}
		}
		b.bin.EntryPoint = addr
	} else {
		b.bin.EntryPoint = b.bin.Segments[ModeText].Base
	}

	return b.bin, nil
}
