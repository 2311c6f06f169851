package asm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mipsunit/internal/asm"
	"mipsunit/internal/binary"
	"mipsunit/internal/token"
)

func sym(text string) token.Token   { return token.Token{Kind: token.Symbol, Text: text} }
func directive(text string) token.Token {
	return token.Token{Kind: token.Directive, Text: text}
}
func reg(r uint8) token.Token { return token.Token{Kind: token.Register, Reg: r} }
func intLit(v int64) token.Token {
	return token.Token{Kind: token.IntegerLiteral, Int: v}
}
func colon() token.Token     { return token.Token{Kind: token.Colon} }
func newline() token.Token   { return token.Token{Kind: token.NewLine} }
func leftBrace() token.Token { return token.Token{Kind: token.LeftBrace} }
func rightBrace() token.Token {
	return token.Token{Kind: token.RightBrace}
}

// A tiny program that loops: li $t0,3; loop: addi $t0,$t0,-1; bne $t0,$zero,loop
func loopProgram() []token.Token {
	return []token.Token{
		directive("text"), newline(),
		sym("li"), reg(8), intLit(3), newline(),
		sym("loop"), colon(),
		sym("addi"), reg(8), reg(8), intLit(-1), newline(),
		sym("bne"), reg(8), reg(0), sym("loop"), newline(),
	}
}

func TestAssembleLoopProgram(t *testing.T) {
	bin, err := asm.Assemble(loopProgram())
	require.NoError(t, err)

	seg := bin.Segments[binary.ModeText]
	require.NotEmpty(t, seg.Bytes)
	require.Contains(t, bin.Labels, "loop")
	require.Equal(t, binary.DefaultBase(binary.ModeText), bin.EntryPoint)
}

func TestAssembleUnknownInstruction(t *testing.T) {
	tokens := []token.Token{directive("text"), newline(), sym("frobnicate"), newline()}
	_, err := asm.Assemble(tokens)
	require.Error(t, err)

	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
	require.IsType(t, asm.ErrUnknownInstruction{}, aerr.Err)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("start"), colon(), newline(),
		sym("start"), colon(), newline(),
	}
	_, err := asm.Assemble(tokens)
	require.Error(t, err)
}

func TestAssembleConstantOutOfRange(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("addi"), reg(8), reg(8), intLit(1 << 20), newline(),
	}
	_, err := asm.Assemble(tokens)
	require.Error(t, err)

	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
	require.IsType(t, asm.ErrConstantOutOfRange{}, aerr.Err)
}

func TestAssembleLoadStoreOffsetBase(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("lw"), reg(8), intLit(4), leftBrace(), reg(29), rightBrace(), newline(),
	}
	bin, err := asm.Assemble(tokens)
	require.NoError(t, err)
	require.Len(t, bin.Segments[binary.ModeText].Bytes, 4)
}

func TestAssembleByteDirective(t *testing.T) {
	tokens := []token.Token{
		directive("data"), newline(),
		directive("byte"), intLit(1), intLit(2), intLit(3), newline(),
	}
	bin, err := asm.Assemble(tokens)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, bin.Segments[binary.ModeData].Bytes)
}

func TestAssembleUnresolvedLabelFails(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("j"), sym("nowhere"), newline(),
	}
	_, err := asm.Assemble(tokens)
	require.Error(t, err)
}
