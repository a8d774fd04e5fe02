// Package format renders parsed SQL statements back to single-line text.
//
// Generalize is the structural normal form used for fingerprinting: keywords
// upper-case, single spaces, identifiers in their dialect-normalized form and
// every literal value replaced by Placeholder.
package format

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

// Placeholder replaces literal values in generalized output.
const Placeholder = "?"

// Generalize renders stmt with literal values replaced by Placeholder.
// Statements that differ only in literal values or layout generalize to
// the same text.
func Generalize(stmt core.Stmt, d *dialect.Dialect) string {
	p := newPrinter(d, true)
	p.formatStmt(stmt)
	return p.String()
}

// Format renders stmt on a single line, keeping literal values.
func Format(stmt core.Stmt, d *dialect.Dialect) string {
	p := newPrinter(d, false)
	p.formatStmt(stmt)
	return p.String()
}

// Expr renders a single expression, keeping literal values.
func Expr(e core.Expr, d *dialect.Dialect) string {
	p := newPrinter(d, false)
	p.formatExpr(e)
	return p.String()
}
