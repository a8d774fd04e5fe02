package token

import "fmt"

// Position represents a location in the source code.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String renders the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Shift returns the position moved by a base position. It is used to
// translate positions of a statement split out of a larger script back
// into script coordinates.
func (p Position) Shift(base Position) Position {
	if !base.IsValid() {
		return p
	}
	out := Position{Line: p.Line + base.Line - 1, Column: p.Column, Offset: p.Offset + base.Offset}
	if p.Line == 1 {
		out.Column = p.Column + base.Column - 1
	}
	return out
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}
