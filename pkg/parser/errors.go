package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// ParseError represents a parsing error with position information.
// Fragment is the source text of the offending token.
type ParseError struct {
	Pos      token.Position
	Fragment string
	Message  string
}

func (e *ParseError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d near %q: %s", e.Pos.Line, e.Pos.Column, e.Fragment, e.Message)
}

// Warning records a construct the parser skipped instead of modeling.
type Warning struct {
	Pos       token.Position
	Construct string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: unsupported construct %s skipped", w.Pos, w.Construct)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected %s, expected %s"
	ErrUnexpectedInput     = "unexpected %s"
	ErrUnterminatedQuote   = "unterminated quoted literal"
	ErrIllegalCharacter    = "illegal character %q"
	ErrUnsupportedClause   = "%s is not supported in %s dialect"
	ErrTrailingInput       = "unexpected %s after end of statement"
	ErrUnknownStatement    = "unrecognized statement starting with %s"
	ErrEmptyStatement      = "empty statement"
	ErrRowValueUnsupported = "row value constructors are not supported"
)
