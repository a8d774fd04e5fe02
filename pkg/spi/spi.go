// Package spi provides Service Provider Interface types for dialect
// clause handlers to interact with the parser without circular dependencies.
package spi

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// ParserOps exposes parser operations to dialect clause handlers.
type ParserOps interface {
	// Token access
	Token() token.Token
	Peek() token.Token

	// Consumption
	Match(t token.TokenType) bool
	Expect(t token.TokenType) error
	NextToken()
	Check(t token.TokenType) bool
	// MatchWord consumes the current token if it is the given non-reserved
	// word (NEXT, ONLY, TIES, ...), compared case-insensitively.
	MatchWord(word string) bool

	// Sub-parsers
	ParseExpression() (core.Expr, error)
	ParseExpressionList() ([]core.Expr, error)
	ParseOrderByList() ([]core.OrderByItem, error)
	ParseIdentifier() (string, error)
	ParseWindowSpec() (*core.WindowSpec, error)
	ParseTypeName() (string, error)

	// SkipClause consumes tokens up to the next clause boundary at the
	// current nesting depth and records an unsupported-construct warning.
	SkipClause(construct string)

	// Error handling
	AddError(msg string)
	// Position returns the end of the last consumed token.
	Position() token.Position
}

// ClauseHandler parses a dialect-specific clause.
// Called AFTER the clause keyword has been consumed.
type ClauseHandler func(p ParserOps) (core.Node, error)

// InfixHandler parses a dialect-specific infix operator.
// Called AFTER the operator has been consumed.
type InfixHandler func(p ParserOps, left core.Expr) (core.Expr, error)

// FromItemHandler parses a dialect-specific FROM clause suffix (e.g., PIVOT, SAMPLE).
// Called AFTER the keyword has been consumed; source is the preceding table.
type FromItemHandler func(p ParserOps, source core.TableRef) (core.TableRef, error)

// ExprList wraps an expression list so it can travel as a core.Node
// through a ClauseHandler.
type ExprList []core.Expr

// Pos implements core.Node.
func (l ExprList) Pos() token.Position {
	if len(l) == 0 {
		return token.Position{}
	}
	return l[0].Pos()
}

// End implements core.Node.
func (l ExprList) End() token.Position {
	if len(l) == 0 {
		return token.Position{}
	}
	return l[len(l)-1].End()
}

// OrderByList wraps ORDER BY items so they can travel as a core.Node.
type OrderByList []core.OrderByItem

// Pos implements core.Node.
func (l OrderByList) Pos() token.Position {
	if len(l) == 0 || l[0].Expr == nil {
		return token.Position{}
	}
	return l[0].Expr.Pos()
}

// End implements core.Node.
func (l OrderByList) End() token.Position {
	if len(l) == 0 || l[len(l)-1].Expr == nil {
		return token.Position{}
	}
	return l[len(l)-1].Expr.End()
}

// GroupByAllMarker identifies the GROUP BY ALL result of a clause handler.
type GroupByAllMarker interface {
	IsGroupByAll() bool
}

// Precedence constants for operator precedence parsing.
const (
	PrecedenceNone       = 0
	PrecedenceOr         = 1
	PrecedenceAnd        = 2
	PrecedenceNot        = 3
	PrecedenceComparison = 4 // =, <>, <, >, <=, >=, LIKE, ILIKE, IN, BETWEEN
	PrecedenceAddition   = 5 // +, -, ||
	PrecedenceMultiply   = 6 // *, /, %
	PrecedenceUnary      = 7 // -, +, NOT
	PrecedencePostfix    = 8 // ::, [], :
)

// ClauseSlot specifies where a parsed clause result should be stored in SelectCore.
type ClauseSlot int

// ClauseSlot constants define where parsed clause results are stored in SelectCore.
const (
	SlotWhere ClauseSlot = iota
	SlotGroupBy
	SlotHaving
	SlotWindow
	SlotOrderBy
	SlotLimit
	SlotOffset
	SlotQualify
	SlotFetch
	SlotExtensions // Default for custom/dialect-specific clauses
)

// String returns the slot name for debugging.
func (s ClauseSlot) String() string {
	switch s {
	case SlotWhere:
		return "WHERE"
	case SlotGroupBy:
		return "GROUP BY"
	case SlotHaving:
		return "HAVING"
	case SlotWindow:
		return "WINDOW"
	case SlotOrderBy:
		return "ORDER BY"
	case SlotLimit:
		return "LIMIT"
	case SlotOffset:
		return "OFFSET"
	case SlotQualify:
		return "QUALIFY"
	case SlotFetch:
		return "FETCH"
	case SlotExtensions:
		return "EXTENSIONS"
	default:
		return "UNKNOWN"
	}
}
