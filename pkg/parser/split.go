package parser

import (
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Segment is the source text of one statement in a script.
type Segment struct {
	Text string
	Pos  token.Position // position of the first token of Text
}

// Split cuts a script into statements on semicolons at paren depth zero.
// Semicolons inside strings, quoted identifiers and comments do not split.
// Pieces holding only whitespace or comments are dropped.
func Split(sql string, d *dialect.Dialect) []Segment {
	l := NewLexer(sql, d)

	var (
		segments []Segment
		start    token.Token
		lastEnd  int
		inStmt   bool
		depth    int
	)

	flush := func() {
		if inStmt {
			end := min(lastEnd, len(sql))
			segments = append(segments, Segment{Text: sql[start.Pos.Offset:end], Pos: start.Pos})
		}
		inStmt = false
		depth = 0
	}

	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			flush()
			return segments
		case token.SEMICOLON:
			if depth == 0 {
				flush()
				continue
			}
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth > 0 {
				depth--
			}
		}
		if !inStmt {
			start = tok
			inStmt = true
		}
		lastEnd = tok.End.Offset
	}
}
