// Package asm is the two-pass assembler: it drives a token.Cursor over a
// pre-lexed token stream, looks mnemonics up in isa.Table, and emits into a
// binary.Builder. Label resolution is two-pass only in the sense that
// forward references become binary.Builder fixups — the scan itself is a
// single pass over the token stream.
//
// Grounded on the titan original's assembler.rs/assembler_util.rs: the
// AssemblerReason taxonomy below is carried over near-verbatim, and the
// cursor helper functions in helpers.go mirror do_symbol's get_* family.
package asm

import (
	"fmt"

	"mipsunit/internal/token"
)

// Error wraps an underlying reason with the source position it occurred at.
type Error struct {
	Pos int
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("at offset %d: %v", e.Pos, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrUnexpectedToken reports a token that dispatch didn't know how to start
// a statement with.
type ErrUnexpectedToken struct{ Got token.Kind }

func (e ErrUnexpectedToken) Error() string { return fmt.Sprintf("unexpected token %s", e.Got) }

// ErrEndOfFile reports a statement that ran out of tokens mid-parse.
type ErrEndOfFile struct{}

func (ErrEndOfFile) Error() string { return "unexpected end of file" }

// ErrExpected reports a token of the wrong kind where a specific shape
// (register, constant, string, label, newline, left brace, right brace) was
// required.
type ErrExpected struct{ What string }

func (e ErrExpected) Error() string { return fmt.Sprintf("expected %s", e.What) }

// ErrConstantOutOfRange reports an integer literal outside an operand's
// encodable range.
type ErrConstantOutOfRange struct {
	Min, Max, Got int64
}

func (e ErrConstantOutOfRange) Error() string {
	return fmt.Sprintf("constant %d out of range [%d, %d]", e.Got, e.Min, e.Max)
}

// ErrUnknownDirective reports a "." directive not recognized by Assembler.
type ErrUnknownDirective struct{ Name string }

func (e ErrUnknownDirective) Error() string { return fmt.Sprintf("unknown directive %q", e.Name) }

// ErrUnknownInstruction reports a mnemonic absent from isa.Table.
type ErrUnknownInstruction struct{ Name string }

func (e ErrUnknownInstruction) Error() string { return fmt.Sprintf("unknown instruction %q", e.Name) }
