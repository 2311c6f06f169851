package asm

import (
	"mipsunit/internal/binary"
	"mipsunit/internal/isa"
	"mipsunit/internal/token"
)

// Assembler drives a single pass over a token stream, emitting into a
// binary.Builder and leaving binary.Builder's own fixup queue to settle
// forward references when Build is called.
type Assembler struct {
	cursor  *token.Cursor
	builder *binary.Builder
	table   map[string]isa.Entry
}

// New builds an Assembler over an already-lexed token stream.
func New(tokens []token.Token) *Assembler {
	return &Assembler{
		cursor:  token.NewCursor(tokens),
		builder: binary.NewBuilder(),
		table:   isa.Table(),
	}
}

// Assemble runs the assembler to completion and resolves the result into a
// finished binary.Binary.
func Assemble(tokens []token.Token) (*binary.Binary, error) {
	return New(tokens).Run()
}

// Run executes the assembler's single statement-dispatch pass, then
// resolves fixups via Builder.Build.
func (a *Assembler) Run() (*binary.Binary, error) {
	for {
		tok, ok := a.cursor.NextAny()
		if !ok {
			break
		}
		if err := a.dispatch(tok); err != nil {
			return nil, &Error{Pos: tok.Start, Err: err}
		}
	}
	return a.builder.Build()
}

func (a *Assembler) dispatch(tok token.Token) error {
	switch tok.Kind {
	case token.Directive:
		return a.directive(tok)
	case token.Symbol:
		if next, ok := a.cursor.PeekAdjacent(); ok && next.Kind == token.Colon {
			a.cursor.NextAdjacent()
			return a.builder.DefineLabel(tok.Text)
		}
		return a.instruction(tok)
	default:
		return ErrUnexpectedToken{Got: tok.Kind}
	}
}

func (a *Assembler) instruction(tok token.Token) error {
	entry, ok := a.table[tok.Text]
	if !ok {
		return ErrUnknownInstruction{Name: tok.Text}
	}

	ops := make([]isa.Operand, len(entry.Signature))
	for i, kind := range entry.Signature {
		op, err := a.parseOperand(kind)
		if err != nil {
			return err
		}
		ops[i] = op
	}

	if err := a.builder.Align(4); err != nil {
		return err
	}
	pc, err := a.builder.Cursor()
	if err != nil {
		return err
	}
	words, fixups, err := entry.Encode(pc, ops)
	if err != nil {
		return err
	}
	_, err = a.builder.AppendWords(words, fixups)
	return err
}

func (a *Assembler) parseOperand(kind isa.OperandKind) (isa.Operand, error) {
	switch kind {
	case isa.KindGPR:
		reg, err := GetRegister(a.cursor)
		return isa.Operand{Kind: isa.KindGPR, Reg: reg}, err

	case isa.KindImmS16:
		v, err := GetConstant(a.cursor, -(1 << 15), (1<<15)-1)
		return isa.Operand{Kind: isa.KindImmS16, Imm: v}, err

	case isa.KindImmU16:
		v, err := GetConstant(a.cursor, 0, (1<<16)-1)
		return isa.Operand{Kind: isa.KindImmU16, Imm: v}, err

	case isa.KindShamt5:
		v, err := GetConstant(a.cursor, 0, 31)
		return isa.Operand{Kind: isa.KindShamt5, Imm: v}, err

	case isa.KindOffsetBase:
		return GetOffsetOrLabel(a.cursor)

	case isa.KindTarget26, isa.KindBranchOff16, isa.KindLabel:
		addr, err := GetValue(a.cursor)
		return isa.Operand{Kind: kind, Address: addr}, err

	default:
		return isa.Operand{}, ErrExpected{What: "operand"}
	}
}
