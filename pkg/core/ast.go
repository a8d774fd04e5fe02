package core

import "github.com/leapstack-labs/sqllineage/pkg/token"

// Node is the base interface for all AST nodes.
//
// The node set is closed: every variant lives in this package and carries an
// unexported marker method, so consumers can switch exhaustively over it.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef is a marker interface for FROM clause items.
type TableRef interface {
	Node
	tableRefNode()
}

// NodeInfo carries the source span of a node. Embed it to get Pos and End.
type NodeInfo struct {
	Span token.Span
}

// Pos implements Node.
func (n NodeInfo) Pos() token.Position { return n.Span.Start }

// End implements Node.
func (n NodeInfo) End() token.Position { return n.Span.End }

// SetSpan records the node's source span.
func (n *NodeInfo) SetSpan(start, end token.Position) {
	n.Span = token.Span{Start: start, End: end}
}
