package isa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mipsunit/internal/isa"
)

func encodeOne(t *testing.T, mnemonic string, pc uint32, ops ...isa.Operand) uint32 {
	t.Helper()
	entry, ok := isa.Table()[mnemonic]
	require.True(t, ok, "mnemonic %q not in table", mnemonic)
	words, fixups, err := entry.Encode(pc, ops)
	require.NoError(t, err)
	require.Empty(t, fixups)
	require.Len(t, words, 1)
	return words[0]
}

func TestRTypeRoundTrip(t *testing.T) {
	word := encodeOne(t, "add", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindGPR, Reg: 9},
		isa.Operand{Kind: isa.KindGPR, Reg: 10},
	)

	decoded, ok := isa.Decode(0, word)
	require.True(t, ok)
	require.Equal(t, "add", decoded.Mnemonic)
	require.Equal(t, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 8},
		{Kind: isa.KindGPR, Reg: 9},
		{Kind: isa.KindGPR, Reg: 10},
	}, decoded.Operands)
}

func TestITypeArithmeticRoundTrip(t *testing.T) {
	word := encodeOne(t, "addiu", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindGPR, Reg: 9},
		isa.Operand{Kind: isa.KindImmS16, Imm: -5},
	)

	decoded, ok := isa.Decode(0, word)
	require.True(t, ok)
	require.Equal(t, "addiu", decoded.Mnemonic)
	require.Equal(t, int64(-5), decoded.Operands[2].Imm)
}

func TestShiftRoundTrip(t *testing.T) {
	word := encodeOne(t, "sll", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindGPR, Reg: 9},
		isa.Operand{Kind: isa.KindShamt5, Imm: 4},
	)

	decoded, ok := isa.Decode(0, word)
	require.True(t, ok)
	require.Equal(t, "sll", decoded.Mnemonic)
	require.Equal(t, int64(4), decoded.Operands[2].Imm)
}

func TestBranchRoundTripResolvedTarget(t *testing.T) {
	entry := isa.Table()["beq"]
	pc := uint32(0x1000)
	target := isa.AddressLabel{Constant: 0x1010}

	words, fixups, err := entry.Encode(pc, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 1},
		{Kind: isa.KindGPR, Reg: 2},
		{Kind: isa.KindBranchOff16, Address: target},
	})
	require.NoError(t, err)
	require.Empty(t, fixups)
	require.Len(t, words, 1)

	decoded, ok := isa.Decode(pc, words[0])
	require.True(t, ok)
	require.Equal(t, "beq", decoded.Mnemonic)
	require.Equal(t, target.Constant, decoded.Operands[2].Address.Constant)
}

func TestBranchOutOfRange(t *testing.T) {
	entry := isa.Table()["beq"]
	_, _, err := entry.Encode(0, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 1},
		{Kind: isa.KindGPR, Reg: 2},
		{Kind: isa.KindBranchOff16, Address: isa.AddressLabel{Constant: 0x10000000}},
	})
	require.Error(t, err)
	require.IsType(t, isa.ErrJumpOutOfRange{}, err)
}

func TestJumpRoundTrip(t *testing.T) {
	entry := isa.Table()["j"]
	pc := uint32(0x400000)
	target := isa.AddressLabel{Constant: 0x400100}

	words, fixups, err := entry.Encode(pc, []isa.Operand{
		{Kind: isa.KindTarget26, Address: target},
	})
	require.NoError(t, err)
	require.Empty(t, fixups)

	decoded, ok := isa.Decode(pc, words[0])
	require.True(t, ok)
	require.Equal(t, "j", decoded.Mnemonic)
	require.Equal(t, target.Constant, decoded.Operands[0].Address.Constant)
}

func TestLoadImmediateSmallConstant(t *testing.T) {
	entry := isa.Table()["li"]
	words, fixups, err := entry.Encode(0, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 8},
		{Kind: isa.KindLabel, Address: isa.AddressLabel{Constant: 3}},
	})
	require.NoError(t, err)
	require.Empty(t, fixups)
	require.Len(t, words, 1, "a value fitting in 16 bits should emit a single ori")

	decoded, ok := isa.Decode(0, words[0])
	require.True(t, ok)
	require.Equal(t, "ori", decoded.Mnemonic)
}

func TestLoadImmediateLargeConstant(t *testing.T) {
	entry := isa.Table()["li"]
	words, fixups, err := entry.Encode(0, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 8},
		{Kind: isa.KindLabel, Address: isa.AddressLabel{Constant: 0x12345678}},
	})
	require.NoError(t, err)
	require.Empty(t, fixups)
	require.Len(t, words, 2)
}

func TestLoadImmediateLabelAlwaysDefers(t *testing.T) {
	entry := isa.Table()["la"]
	words, fixups, err := entry.Encode(0, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 8},
		{Kind: isa.KindLabel, Address: isa.AddressLabel{IsLabel: true, Name: "done"}},
	})
	require.NoError(t, err)
	require.Len(t, words, 2)
	require.Len(t, fixups, 2)
	require.Equal(t, isa.FixupHi16, fixups[0].Kind)
	require.Equal(t, isa.FixupLo16, fixups[1].Kind)
}

func TestPseudoBranchExpandsToSltAndBranch(t *testing.T) {
	entry := isa.Table()["blt"]
	words, fixups, err := entry.Encode(0, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 8},
		{Kind: isa.KindGPR, Reg: 9},
		{Kind: isa.KindBranchOff16, Address: isa.AddressLabel{IsLabel: true, Name: "loop"}},
	})
	require.NoError(t, err)
	require.Len(t, words, 2)
	require.Len(t, fixups, 1)
	require.Equal(t, 1, fixups[0].WordIndex)

	decoded, ok := isa.Decode(0, words[0])
	require.True(t, ok)
	require.Equal(t, "slt", decoded.Mnemonic)
}
