// Package regnames implements the MIPS32 register file: the 32 general
// purpose registers plus PC/HI/LO, and typed name <-> index lookup.
//
// Grounded on the teacher's cpu.go register-constant block (a flat iota
// enum keyed by name) generalized from the LC-3's 8 GPRs to MIPS32's 32,
// with the conventional $-names (zero, at, v0-v1, a0-a3, t0-t9, s0-s7,
// k0-k1, gp, sp, fp, ra) instead of r0..r7.
package regnames

import "fmt"

// RegisterName is a tagged variant over the 32 GPRs plus PC, HI and LO.
type RegisterName uint8

const (
	Zero RegisterName = iota
	AT
	V0
	V1
	A0
	A1
	A2
	A3
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	T8
	T9
	K0
	K1
	GP
	SP
	FP
	RA

	PC
	HI
	LO
)

var names = [...]string{
	Zero: "zero", AT: "at",
	V0: "v0", V1: "v1",
	A0: "a0", A1: "a1", A2: "a2", A3: "a3",
	T0: "t0", T1: "t1", T2: "t2", T3: "t3", T4: "t4", T5: "t5", T6: "t6", T7: "t7",
	S0: "s0", S1: "s1", S2: "s2", S3: "s3", S4: "s4", S5: "s5", S6: "s6", S7: "s7",
	T8: "t8", T9: "t9",
	K0: "k0", K1: "k1",
	GP: "gp", SP: "sp", FP: "fp", RA: "ra",
	PC: "pc", HI: "hi", LO: "lo",
}

// aliases covers common alternate spellings accepted by MIPS assemblers
// ($fp is also known as $s8, $zero as $r0, etc).
var aliases = map[string]RegisterName{
	"r0": Zero, "s8": FP,
}

// String renders the conventional $-less register name (e.g. "t0").
func (r RegisterName) String() string {
	if int(r) < len(names) && names[r] != "" {
		return names[r]
	}
	return fmt.Sprintf("reg(%d)", uint8(r))
}

// Index converts a RegisterName to its 0..31 GPR slot. PC/HI/LO have no
// GPR index and the second return value is false.
func (r RegisterName) Index() (uint8, bool) {
	if r <= RA {
		return uint8(r), true
	}
	return 0, false
}

// FromIndex converts a 0..31 GPR slot to its RegisterName.
func FromIndex(i uint8) RegisterName {
	return RegisterName(i & 0x1F)
}

// Lookup resolves a register name (with or without a leading '$') to its
// RegisterName, as the assembler's lexer would have already classified a
// Register token, and as disassembly/display code needs in reverse.
func Lookup(name string) (RegisterName, bool) {
	trimmed := name
	if len(trimmed) > 0 && trimmed[0] == '$' {
		trimmed = trimmed[1:]
	}

	for i, n := range names {
		if n == trimmed {
			return RegisterName(i), true
		}
	}

	if r, ok := aliases[trimmed]; ok {
		return r, true
	}

	return 0, false
}

// Registers is the fixed-size MIPS32 register file: 32 GPR words plus
// PC/HI/LO. Register Zero always reads as 0 and silently ignores writes.
type Registers struct {
	line [32]uint32
	pc   uint32
	hi   uint32
	lo   uint32
}

// Get reads a register's current value.
func (r *Registers) Get(name RegisterName) uint32 {
	switch name {
	case PC:
		return r.pc
	case HI:
		return r.hi
	case LO:
		return r.lo
	default:
		if idx, ok := name.Index(); ok {
			return r.line[idx]
		}
		return 0
	}
}

// Set writes a register's value. Writes to Zero are ignored, matching the
// MIPS architectural guarantee that $zero is always 0.
func (r *Registers) Set(name RegisterName, value uint32) {
	switch name {
	case PC:
		r.pc = value
	case HI:
		r.hi = value
	case LO:
		r.lo = value
	case Zero:
		// discarded
	default:
		if idx, ok := name.Index(); ok {
			r.line[idx] = value
		}
	}
}

// PC returns the program counter.
func (r *Registers) PC() uint32 { return r.pc }

// SetPC overwrites the program counter.
func (r *Registers) SetPC(value uint32) { r.pc = value }

// HI returns the HI register (high word of mult/div results).
func (r *Registers) HI() uint32 { return r.hi }

// SetHI overwrites HI.
func (r *Registers) SetHI(value uint32) { r.hi = value }

// LO returns the LO register (low word of mult/div results).
func (r *Registers) LO() uint32 { return r.lo }

// SetLO overwrites LO.
func (r *Registers) SetLO(value uint32) { r.lo = value }

// Temporary returns $t0..$t9 as a fixed-size slice, for test assertions
// that want to compare the whole temporary bank at once.
func (r *Registers) Temporary() [10]uint32 {
	return [10]uint32{
		r.Get(T0), r.Get(T1), r.Get(T2), r.Get(T3), r.Get(T4),
		r.Get(T5), r.Get(T6), r.Get(T7), r.Get(T8), r.Get(T9),
	}
}

// Saved returns $s0..$s7.
func (r *Registers) Saved() [8]uint32 {
	return [8]uint32{
		r.Get(S0), r.Get(S1), r.Get(S2), r.Get(S3),
		r.Get(S4), r.Get(S5), r.Get(S6), r.Get(S7),
	}
}

// Parameters returns $a0..$a3.
func (r *Registers) Parameters() [4]uint32 {
	return [4]uint32{r.Get(A0), r.Get(A1), r.Get(A2), r.Get(A3)}
}

// Values returns $v0..$v1.
func (r *Registers) Values() [2]uint32 {
	return [2]uint32{r.Get(V0), r.Get(V1)}
}

// Other returns $sp, $gp, $k0, $k1.
func (r *Registers) Other() [4]uint32 {
	return [4]uint32{r.Get(SP), r.Get(GP), r.Get(K0), r.Get(K1)}
}
