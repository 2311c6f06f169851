package asm

import (
	"mipsunit/internal/isa"
	"mipsunit/internal/token"
)

// GetToken consumes the next token anywhere in the stream, skipping blank
// lines. Mirrors titan's next_any used at statement-dispatch granularity.
func GetToken(c *token.Cursor) (token.Token, error) {
	t, ok := c.NextAny()
	if !ok {
		return token.Token{}, ErrEndOfFile{}
	}
	return t, nil
}

// GetRegister consumes a register operand on the current line.
func GetRegister(c *token.Cursor) (uint8, error) {
	t, ok := c.NextAdjacent()
	if !ok {
		return 0, ErrEndOfFile{}
	}
	if t.Kind != token.Register {
		return 0, ErrExpected{What: "register"}
	}
	return t.Reg, nil
}

// GetInteger consumes a mandatory integer literal on the current line.
func GetInteger(c *token.Cursor) (int64, error) {
	t, ok := c.NextAdjacent()
	if !ok {
		return 0, ErrEndOfFile{}
	}
	if t.Kind != token.IntegerLiteral {
		return 0, ErrExpected{What: "constant"}
	}
	return t.Int, nil
}

// GetIntegerAdjacent consumes an integer literal on the current line if one
// is there, without consuming anything (and without error) if not. Used by
// directives like .byte that accept a variable-length run of values.
func GetIntegerAdjacent(c *token.Cursor) (int64, bool) {
	t, ok := c.PeekAdjacent()
	if !ok || t.Kind != token.IntegerLiteral {
		return 0, false
	}
	c.NextAdjacent()
	return t.Int, true
}

// GetConstant consumes a mandatory integer literal and range-checks it.
func GetConstant(c *token.Cursor, min, max int64) (int64, error) {
	v, err := GetInteger(c)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, ErrConstantOutOfRange{Min: min, Max: max, Got: v}
	}
	return v, nil
}

// GetString consumes a mandatory string literal.
func GetString(c *token.Cursor) (string, error) {
	t, ok := c.NextAdjacent()
	if !ok {
		return "", ErrEndOfFile{}
	}
	if t.Kind != token.StringLiteral {
		return "", ErrExpected{What: "string"}
	}
	return t.Str, nil
}

// ToLabel converts an already-consumed token into a label name.
func ToLabel(t token.Token) (string, error) {
	if t.Kind != token.Symbol {
		return "", ErrExpected{What: "label"}
	}
	return t.Text, nil
}

// GetLabel consumes a mandatory label-shaped symbol on the current line.
func GetLabel(c *token.Cursor) (string, error) {
	t, ok := c.NextAdjacent()
	if !ok {
		return "", ErrEndOfFile{}
	}
	return ToLabel(t)
}

// GetValue consumes either an integer literal or a label reference,
// resolving to an isa.AddressLabel the caller can hand an instruction's
// target/label/branch operand.
func GetValue(c *token.Cursor) (isa.AddressLabel, error) {
	t, ok := c.NextAdjacent()
	if !ok {
		return isa.AddressLabel{}, ErrEndOfFile{}
	}
	switch t.Kind {
	case token.IntegerLiteral:
		return isa.AddressLabel{Constant: uint32(t.Int)}, nil
	case token.Symbol:
		return isa.AddressLabel{IsLabel: true, Name: t.Text, SourceStart: t.Start}, nil
	default:
		return isa.AddressLabel{}, ErrExpected{What: "label"}
	}
}

// MaybeGetValue is GetValue's non-mandatory counterpart, for trailing
// operands directives may omit (e.g. an explicit .text base address).
func MaybeGetValue(c *token.Cursor) (isa.AddressLabel, bool) {
	t, ok := c.PeekAdjacent()
	if !ok {
		return isa.AddressLabel{}, false
	}
	switch t.Kind {
	case token.IntegerLiteral:
		c.NextAdjacent()
		return isa.AddressLabel{Constant: uint32(t.Int)}, true
	case token.Symbol:
		c.NextAdjacent()
		return isa.AddressLabel{IsLabel: true, Name: t.Text, SourceStart: t.Start}, true
	default:
		return isa.AddressLabel{}, false
	}
}

// GetOffsetOrLabel consumes a load/store memory operand of the form
// "offset($base)" (the displacement may be omitted, defaulting to zero).
func GetOffsetOrLabel(c *token.Cursor) (isa.Operand, error) {
	disp, _ := GetIntegerAdjacent(c)

	t, ok := c.NextAdjacent()
	if !ok {
		return isa.Operand{}, ErrEndOfFile{}
	}
	if t.Kind != token.LeftBrace {
		return isa.Operand{}, ErrExpected{What: "left brace"}
	}

	reg, err := GetRegister(c)
	if err != nil {
		return isa.Operand{}, err
	}

	closing, ok := c.NextAdjacent()
	if !ok {
		return isa.Operand{}, ErrEndOfFile{}
	}
	if closing.Kind != token.RightBrace {
		return isa.Operand{}, ErrExpected{What: "right brace"}
	}

	return isa.Operand{Kind: isa.KindOffsetBase, Reg: reg, Imm: disp}, nil
}
