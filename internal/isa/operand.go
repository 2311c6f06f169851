// Package isa is the declarative MIPS32 instruction table: the only place
// MIPS encoding lives. Every mnemonic maps to an operand signature and an
// encoder; other components (the assembler, the CPU step engine) treat
// instructions as opaque mnemonics driven off this table.
//
// Grounded on the teacher's internal/mips32/instructions.go opcode/funct
// constant block and R/I/J/COP0 decode shape, generalized from a
// decode-then-switch-in-Execute design into a declarative table that both
// encodes (assembler) and decodes (round-trip tests, disassembly helper).
package isa

// OperandKind is one of the operand shapes an instruction's encoding can
// take, per the host specification's operand-kind vocabulary.
type OperandKind int

const (
	KindGPR OperandKind = iota
	KindImmS16
	KindImmU16
	KindShamt5
	KindOffsetBase
	KindTarget26
	KindLabel
	KindBranchOff16
)

func (k OperandKind) String() string {
	switch k {
	case KindGPR:
		return "register"
	case KindImmS16:
		return "signed 16-bit immediate"
	case KindImmU16:
		return "unsigned 16-bit immediate"
	case KindShamt5:
		return "5-bit shift amount"
	case KindOffsetBase:
		return "offset(register)"
	case KindTarget26:
		return "26-bit jump target"
	case KindLabel:
		return "label"
	case KindBranchOff16:
		return "branch target"
	default:
		return "operand"
	}
}

// AddressLabel is either a resolved constant address or an as-yet-unresolved
// label reference, mirroring the titan original's AddressLabel enum
// (Constant(u64) | Label(String, usize)).
type AddressLabel struct {
	IsLabel     bool
	Constant    uint32
	Name        string
	SourceStart int
}

// Operand is one concrete operand value fed to an Entry's Encode function.
// Only the fields relevant to the corresponding OperandKind are populated.
type Operand struct {
	Kind OperandKind

	// Reg is populated for KindGPR and is the base register of KindOffsetBase.
	Reg uint8
	// Imm is populated for KindImmS16, KindImmU16, KindShamt5 (range-checked
	// by the assembler before Encode is called) and is the displacement for
	// KindOffsetBase.
	Imm int64
	// Address is populated for KindTarget26, KindLabel and KindBranchOff16.
	Address AddressLabel
}

// FixupKind selects which bits of an emitted word a Pass 2 label
// resolution should patch.
type FixupKind int

const (
	FixupTarget26 FixupKind = iota
	FixupBranch16
	FixupHi16
	FixupLo16
)

// FixupRequest is a deferred patch an Encode call could not complete
// because an operand referenced an unresolved label. WordIndex is the
// 0-based index into the []uint32 Encode returned.
type FixupRequest struct {
	WordIndex   int
	Kind        FixupKind
	Label       string
	SourceStart int
}

// Signature is the ordered list of operand kinds an instruction's textual
// form expects, in source order.
type Signature []OperandKind

// EncodeFunc assembles concrete operand values (plus the PC of the first
// emitted word) into one or more 32-bit words, and any fixups those words
// still need.
type EncodeFunc func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error)

// Entry is one instruction table entry: a mnemonic, its operand signature,
// and its encoder.
type Entry struct {
	Mnemonic  string
	Signature Signature
	Encode    EncodeFunc
}
