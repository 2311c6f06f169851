package binary_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mipsunit/internal/binary"
	"mipsunit/internal/isa"
)

func TestBuilderResolvesBranchFixup(t *testing.T) {
	b := binary.NewBuilder().WithMode(binary.ModeText)

	_, err := b.AppendWords([]uint32{0}, nil) // filler word before the label
	require.NoError(t, err)

	require.NoError(t, b.DefineLabel("loop"))

	beq := isa.Table()["beq"]
	pc, err := b.Cursor()
	require.NoError(t, err)
	words, fixups, err := beq.Encode(pc, []isa.Operand{
		{Kind: isa.KindGPR, Reg: 1},
		{Kind: isa.KindGPR, Reg: 2},
		{Kind: isa.KindBranchOff16, Address: isa.AddressLabel{IsLabel: true, Name: "loop"}},
	})
	require.NoError(t, err)
	_, err = b.AppendWords(words, fixups)
	require.NoError(t, err)

	built, err := b.Build()
	require.NoError(t, err)

	seg := built.Segments[binary.ModeText]
	word := uint32(seg.Bytes[4])<<24 | uint32(seg.Bytes[5])<<16 | uint32(seg.Bytes[6])<<8 | uint32(seg.Bytes[7])
	require.Equal(t, uint16(0xFFFF), uint16(word&0xFFFF), "branch back one word should encode as -1")
}

func TestBuilderRejectsDuplicateLabel(t *testing.T) {
	b := binary.NewBuilder().WithMode(binary.ModeText)
	require.NoError(t, b.DefineLabel("start"))
	err := b.DefineLabel("start")
	require.Error(t, err)
	require.IsType(t, binary.ErrDuplicateLabel{}, err)
}

func TestBuilderRejectsUnknownLabelFixup(t *testing.T) {
	b := binary.NewBuilder().WithMode(binary.ModeText)
	jal := isa.Table()["jal"]
	words, fixups, err := jal.Encode(0, []isa.Operand{
		{Kind: isa.KindTarget26, Address: isa.AddressLabel{IsLabel: true, Name: "missing"}},
	})
	require.NoError(t, err)
	_, err = b.AppendWords(words, fixups)
	require.NoError(t, err)

	_, err = b.Build()
	require.Error(t, err)
	require.IsType(t, binary.ErrUnknownLabel{}, err)
}

func TestBuilderRequiresModeBeforeAppend(t *testing.T) {
	b := binary.NewBuilder()
	_, err := b.AppendBytes([]byte{1, 2, 3, 4})
	require.Error(t, err)
	require.IsType(t, binary.ErrMissingRegion{}, err)
}

func TestBuilderEntryPointDefaultsToTextBase(t *testing.T) {
	b := binary.NewBuilder().WithMode(binary.ModeText)
	_, err := b.AppendWords([]uint32{0}, nil)
	require.NoError(t, err)

	built, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, binary.DefaultBase(binary.ModeText), built.EntryPoint)
}
