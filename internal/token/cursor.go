package token

// Cursor walks a finite token stream, distinguishing tokens on the same
// logical line ("adjacent") from tokens separated by a NewLine. Operand
// parsers built on top of Cursor never cross a newline implicitly.
//
// Grounded on the titan assembler's LexerCursor contract (next_any,
// next_adjacent, seek_without(is_adjacent_kind)): this is the Go-idiomatic
// equivalent of that peekable-iterator API, expressed as explicit methods
// on a slice-backed cursor instead of a trait over a generic iterator.
type Cursor struct {
	tokens []Token
	pos    int
}

// NewCursor wraps a finite token slice for sequential consumption.
func NewCursor(tokens []Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// Position returns the current read offset, for save/restore around
// speculative parses.
func (c *Cursor) Position() int {
	return c.pos
}

// SetPosition rewinds or fast-forwards the cursor to a previously saved
// offset.
func (c *Cursor) SetPosition(pos int) {
	c.pos = pos
}

// NextAny consumes and returns the next non-NewLine token, silently
// skipping blank lines. Used by the assembler's top-level loop, which only
// cares about Directive and Symbol tokens.
func (c *Cursor) NextAny() (Token, bool) {
	for c.pos < len(c.tokens) {
		t := c.tokens[c.pos]
		c.pos++
		if t.Kind == NewLine {
			continue
		}
		return t, true
	}
	return Token{}, false
}

// NextAdjacent consumes and returns the next token only if one exists and
// it is not a NewLine. It never skips past a NewLine, so operand parsing
// can detect "this instruction's line just ended" instead of bleeding into
// the next one.
func (c *Cursor) NextAdjacent() (Token, bool) {
	if c.pos >= len(c.tokens) || c.tokens[c.pos].Kind == NewLine {
		return Token{}, false
	}
	t := c.tokens[c.pos]
	c.pos++
	return t, true
}

// PeekAdjacent looks at the next token without consuming it, returning it
// only if it exists and is not a NewLine. This is the Go equivalent of
// seek_without(is_adjacent_kind): a lookahead that respects line boundaries.
func (c *Cursor) PeekAdjacent() (Token, bool) {
	if c.pos >= len(c.tokens) || c.tokens[c.pos].Kind == NewLine {
		return Token{}, false
	}
	return c.tokens[c.pos], true
}
