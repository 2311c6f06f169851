package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mipsunit/internal/cpu"
	"mipsunit/internal/isa"
	"mipsunit/internal/memory"
	"mipsunit/internal/regnames"
)

func newState(t *testing.T, words ...uint32) *cpu.State {
	t.Helper()
	bytes := make([]byte, len(words)*4+64)
	for i, w := range words {
		bytes[i*4] = byte(w >> 24)
		bytes[i*4+1] = byte(w >> 16)
		bytes[i*4+2] = byte(w >> 8)
		bytes[i*4+3] = byte(w)
	}
	mem := memory.New()
	require.NoError(t, mem.Mount(memory.Region{Start: 0, Data: bytes}))
	return cpu.NewState(memory.NewWatched(mem))
}

func encode(t *testing.T, mnemonic string, pc uint32, ops ...isa.Operand) uint32 {
	t.Helper()
	entry := isa.Table()[mnemonic]
	words, _, err := entry.Encode(pc, ops)
	require.NoError(t, err)
	require.Len(t, words, 1)
	return words[0]
}

func TestStepAddAccumulates(t *testing.T) {
	addi := encode(t, "addi", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindGPR, Reg: 0},
		isa.Operand{Kind: isa.KindImmS16, Imm: 3},
	)
	s := newState(t, addi)

	_, err := s.Step()
	require.NoError(t, err)
	require.Equal(t, uint32(3), s.Regs.Get(regnames.T0))
	require.Equal(t, uint32(4), s.Regs.PC())
}

func TestStepAddOverflowTraps(t *testing.T) {
	add := encode(t, "add", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 9},
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
	)
	s := newState(t, add)
	s.Regs.Set(regnames.T0, 0x7FFFFFFF)

	_, err := s.Step()
	require.Error(t, err)
	require.IsType(t, cpu.ErrArithmeticOverflow{}, err)
}

func TestStepBranchTaken(t *testing.T) {
	beq := encode(t, "beq", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 0},
		isa.Operand{Kind: isa.KindGPR, Reg: 0},
		isa.Operand{Kind: isa.KindBranchOff16, Address: isa.AddressLabel{Constant: 0x10}},
	)
	s := newState(t, beq)

	_, err := s.Step()
	require.NoError(t, err)
	require.Equal(t, uint32(0x10), s.Regs.PC())
}

func TestStepLoadStoreRoundTrip(t *testing.T) {
	sw := encode(t, "sw", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindOffsetBase, Reg: 9, Imm: 8},
	)
	s := newState(t, sw)
	s.Regs.Set(regnames.T0, 0xCAFEBABE)
	s.Regs.Set(regnames.T1, 0)

	result, err := s.Step()
	require.NoError(t, err)
	require.NotEmpty(t, result.MemoryUndo)

	v, err := s.Mem.GetWord(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), v)
}

func TestStepSyscallSignalsCaller(t *testing.T) {
	syscall := encode(t, "syscall", 0)
	s := newState(t, syscall)
	s.Regs.Set(regnames.V0, 10)

	result, err := s.Step()
	require.NoError(t, err)
	require.True(t, result.Syscall)
	require.Equal(t, uint32(10), result.SyscallNumber)
}

func TestStepInvalidInstruction(t *testing.T) {
	s := newState(t, 0xFFFFFFFF)
	_, err := s.Step()
	require.Error(t, err)
	require.IsType(t, cpu.ErrInvalidInstruction{}, err)
}
