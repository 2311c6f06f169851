package asm

import (
	"mipsunit/internal/binary"
	"mipsunit/internal/token"
)

func (a *Assembler) directive(tok token.Token) error {
	switch tok.Text {
	case "text":
		return a.setModeWithOptionalBase(binary.ModeText)
	case "data":
		return a.setModeWithOptionalBase(binary.ModeData)
	case "ktext":
		return a.setModeWithOptionalBase(binary.ModeKText)
	case "kdata":
		return a.setModeWithOptionalBase(binary.ModeKData)

	case "align":
		n, err := GetConstant(a.cursor, 0, 3)
		if err != nil {
			return err
		}
		return a.builder.Align(1 << n)

	case "byte":
		return a.emitIntegers(1, 0, 0xFF)
	case "half":
		if err := a.builder.Align(2); err != nil {
			return err
		}
		return a.emitIntegers(2, -(1 << 15), (1<<16)-1)
	case "word":
		if err := a.builder.Align(4); err != nil {
			return err
		}
		return a.emitIntegers(4, -(1 << 31), (1<<32)-1)

	case "ascii":
		s, err := GetString(a.cursor)
		if err != nil {
			return err
		}
		_, err = a.builder.AppendBytes([]byte(s))
		return err
	case "asciiz":
		s, err := GetString(a.cursor)
		if err != nil {
			return err
		}
		_, err = a.builder.AppendBytes(append([]byte(s), 0))
		return err

	case "globl", "extern":
		_, err := GetLabel(a.cursor)
		return err

	case "entry":
		label, err := GetLabel(a.cursor)
		if err != nil {
			return err
		}
		a.builder.SetEntryLabel(label)
		return nil

	default:
		return ErrUnknownDirective{Name: tok.Text}
	}
}

func (a *Assembler) setModeWithOptionalBase(mode binary.Mode) error {
	a.builder.SetMode(mode)
	if addr, ok := MaybeGetValue(a.cursor); ok && !addr.IsLabel {
		a.builder.Rebase(mode, addr.Constant)
	}
	return nil
}

// emitIntegers consumes a run of adjacent integer literals (a comma-free
// ".byte 1 2 3"-style list, since the lexer never hands the assembler a
// comma token) and appends each as a width-byte big-endian run of bytes.
func (a *Assembler) emitIntegers(width int, min, max int64) error {
	first, err := GetConstant(a.cursor, min, max)
	if err != nil {
		return err
	}
	if err := a.appendSized(first, width); err != nil {
		return err
	}
	for {
		v, ok := GetIntegerAdjacent(a.cursor)
		if !ok {
			return nil
		}
		if v < min || v > max {
			return ErrConstantOutOfRange{Min: min, Max: max, Got: v}
		}
		if err := a.appendSized(v, width); err != nil {
			return err
		}
	}
}

// appendSized packs v into width bytes big-endian (MSB first), matching the
// big-endian convention every other component in this tree uses:
// internal/memory's GetWord/SetWord and internal/binary's AppendWords.
func (a *Assembler) appendSized(v int64, width int) error {
	buf := make([]byte, width)
	u := uint32(v)
	for i := 0; i < width; i++ {
		buf[i] = byte(u >> (8 * (width - 1 - i)))
	}
	_, err := a.builder.AppendBytes(buf)
	return err
}
