package format

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

func (p *Printer) formatExpr(e core.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *core.Literal:
		p.formatLiteral(expr)
	case *core.ColumnRef:
		p.qualified(expr.Schema, expr.Table, expr.Column)
	case *core.StarExpr:
		if expr.Table != "" {
			p.ident(expr.Table)
			p.write(".")
		}
		p.write("*")
	case *core.BinaryExpr:
		p.formatExpr(expr.Left)
		p.write(" " + expr.Op + " ")
		p.formatExpr(expr.Right)
	case *core.UnaryExpr:
		p.write(expr.Op)
		if isWordOp(expr.Op) {
			p.space()
		}
		p.formatExpr(expr.Expr)
	case *core.FuncCall:
		p.formatFuncCall(expr)
	case *core.CaseExpr:
		p.formatCaseExpr(expr)
	case *core.CastExpr:
		p.formatCastExpr(expr)
	case *core.InExpr:
		p.formatInExpr(expr)
	case *core.BetweenExpr:
		p.formatExpr(expr.Expr)
		p.space()
		p.not(expr.Not)
		p.kw(token.BETWEEN)
		p.space()
		p.formatExpr(expr.Low)
		p.write(" AND ")
		p.formatExpr(expr.High)
	case *core.IsNullExpr:
		p.formatExpr(expr.Expr)
		p.write(" IS ")
		p.not(expr.Not)
		p.kw(token.NULL)
	case *core.IsBoolExpr:
		p.formatExpr(expr.Expr)
		p.write(" IS ")
		p.not(expr.Not)
		if expr.Value {
			p.kw(token.TRUE)
		} else {
			p.kw(token.FALSE)
		}
	case *core.LikeExpr:
		p.formatExpr(expr.Expr)
		p.space()
		p.not(expr.Not)
		p.write(expr.Op)
		p.space()
		p.formatExpr(expr.Pattern)
	case *core.ParenExpr:
		p.write("(")
		p.formatExpr(expr.Expr)
		p.write(")")
	case *core.SubqueryExpr:
		p.write("(")
		p.formatSelectStmt(expr.Select)
		p.write(")")
	case *core.ExistsExpr:
		p.not(expr.Not)
		p.kw(token.EXISTS)
		p.write(" (")
		p.formatSelectStmt(expr.Select)
		p.write(")")
	case *core.IndexExpr:
		p.formatExpr(expr.Expr)
		p.write("[")
		p.formatExpr(expr.Index)
		p.write("]")
	case *core.PathExpr:
		p.formatExpr(expr.Expr)
		p.write(":" + expr.Path)
	}
}

func isWordOp(op string) bool {
	return op != "" && op[0] >= 'A' && op[0] <= 'Z'
}

func (p *Printer) not(not bool) {
	if not {
		p.kw(token.NOT)
		p.space()
	}
}

func (p *Printer) formatLiteral(lit *core.Literal) {
	if p.generalize && lit.IsValue() {
		switch lit.Type {
		case core.LiteralDate:
			p.write("DATE ")
		case core.LiteralTime:
			p.write("TIME ")
		case core.LiteralTimestamp:
			p.write("TIMESTAMP ")
		case core.LiteralInterval:
			p.write("INTERVAL ")
			p.write(Placeholder)
			if lit.Unit != "" {
				p.write(" " + lit.Unit)
			}
			return
		}
		p.write(Placeholder)
		return
	}

	switch lit.Type {
	case core.LiteralString:
		p.write(quoteString(lit.Value))
	case core.LiteralDate:
		p.write("DATE " + quoteString(lit.Value))
	case core.LiteralTime:
		p.write("TIME " + quoteString(lit.Value))
	case core.LiteralTimestamp:
		p.write("TIMESTAMP " + quoteString(lit.Value))
	case core.LiteralInterval:
		p.write("INTERVAL " + quoteString(lit.Value))
		if lit.Unit != "" {
			p.write(" " + lit.Unit)
		}
	default:
		p.write(lit.Value)
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (p *Printer) formatFuncCall(fn *core.FuncCall) {
	p.write(fn.Name)
	if fn.Niladic {
		return
	}

	p.write("(")
	if fn.Distinct {
		p.kw(token.DISTINCT)
		p.space()
	}
	for i, arg := range fn.Args {
		if i > 0 {
			sep := ""
			if i-1 < len(fn.Seps) {
				sep = fn.Seps[i-1]
			}
			switch sep {
			case "":
				p.write(", ")
			case " ":
				p.space()
			default:
				p.write(" " + sep + " ")
			}
		}
		p.formatExpr(arg)
	}
	if len(fn.OrderBy) > 0 {
		p.write(" ORDER BY ")
		p.formatOrderBy(fn.OrderBy)
	}
	p.write(")")

	if len(fn.Within) > 0 {
		p.write(" WITHIN GROUP (ORDER BY ")
		p.formatOrderBy(fn.Within)
		p.write(")")
	}
	if fn.Filter != nil {
		p.write(" FILTER (WHERE ")
		p.formatExpr(fn.Filter)
		p.write(")")
	}
	if fn.Window != nil {
		p.write(" OVER ")
		p.formatWindowSpec(fn.Window)
	}
}

func (p *Printer) formatWindowSpec(w *core.WindowSpec) {
	if w.Name != "" && len(w.PartitionBy) == 0 && len(w.OrderBy) == 0 && w.Frame == nil {
		p.ident(w.Name)
		return
	}

	var parts []func()
	if w.Name != "" {
		parts = append(parts, func() { p.ident(w.Name) })
	}
	if len(w.PartitionBy) > 0 {
		parts = append(parts, func() {
			p.write("PARTITION BY ")
			p.formatExprList(w.PartitionBy)
		})
	}
	if len(w.OrderBy) > 0 {
		parts = append(parts, func() {
			p.write("ORDER BY ")
			p.formatOrderBy(w.OrderBy)
		})
	}
	if w.Frame != nil {
		parts = append(parts, func() { p.formatFrame(w.Frame) })
	}

	p.write("(")
	p.formatList(len(parts), func(i int) { parts[i]() }, " ")
	p.write(")")
}

func (p *Printer) formatFrame(f *core.FrameSpec) {
	p.write(string(f.Type) + " ")
	if f.End == nil {
		p.formatFrameBound(f.Start)
		return
	}
	p.write("BETWEEN ")
	p.formatFrameBound(f.Start)
	p.write(" AND ")
	p.formatFrameBound(f.End)
}

func (p *Printer) formatFrameBound(b *core.FrameBound) {
	if b == nil {
		return
	}
	if b.Offset != nil {
		p.formatExpr(b.Offset)
		p.space()
	}
	p.write(string(b.Type))
}

func (p *Printer) formatCaseExpr(c *core.CaseExpr) {
	p.kw(token.CASE)
	if c.Operand != nil {
		p.space()
		p.formatExpr(c.Operand)
	}
	for _, w := range c.Whens {
		p.write(" WHEN ")
		p.formatExpr(w.Condition)
		p.write(" THEN ")
		p.formatExpr(w.Result)
	}
	if c.Else != nil {
		p.write(" ELSE ")
		p.formatExpr(c.Else)
	}
	p.write(" END")
}

// formatCastExpr prints every cast spelling as CAST so x::int and
// CAST(x AS int) generalize alike.
func (p *Printer) formatCastExpr(c *core.CastExpr) {
	if c.Try {
		p.write("TRY_CAST(")
	} else {
		p.write("CAST(")
	}
	p.formatExpr(c.Expr)
	p.write(" AS " + c.TypeName + ")")
}

func (p *Printer) formatInExpr(in *core.InExpr) {
	p.formatExpr(in.Expr)
	p.space()
	p.not(in.Not)
	p.write("IN (")
	switch {
	case in.Query != nil:
		p.formatSelectStmt(in.Query)
	case p.generalize && allValues(in.Values):
		// Lists of any length generalize alike.
		p.write(Placeholder)
	default:
		p.formatExprList(in.Values)
	}
	p.write(")")
}

func allValues(exprs []core.Expr) bool {
	for _, e := range exprs {
		lit, ok := e.(*core.Literal)
		if !ok || !lit.IsValue() {
			return false
		}
	}
	return len(exprs) > 0
}

func (p *Printer) formatExprList(exprs []core.Expr) {
	p.formatList(len(exprs), func(i int) { p.formatExpr(exprs[i]) }, ", ")
}

func (p *Printer) formatOrderBy(items []core.OrderByItem) {
	p.formatList(len(items), func(i int) {
		item := items[i]
		p.formatExpr(item.Expr)
		if item.Desc {
			p.write(" DESC")
		}
		if item.NullsFirst != nil {
			if *item.NullsFirst {
				p.write(" NULLS FIRST")
			} else {
				p.write(" NULLS LAST")
			}
		}
	}, ", ")
}
