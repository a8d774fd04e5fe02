// Package dialect provides SQL dialect configuration and function classification.
//
// This file contains stateless clause handlers that form the "toolbox" of
// reusable parsing logic. These handlers are pure functions that accept
// spi.ParserOps and return core.Node.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// ---------- Standard Clause Handlers ----------
// The leading keyword has already been consumed when these are called.

// ParseWhere handles the standard WHERE clause.
func ParseWhere(p spi.ParserOps) (core.Node, error) {
	return p.ParseExpression()
}

// ParseGroupBy handles the standard GROUP BY clause.
func ParseGroupBy(p spi.ParserOps) (core.Node, error) {
	if err := p.Expect(token.BY); err != nil {
		return nil, err
	}
	list, err := p.ParseExpressionList()
	if err != nil {
		return nil, err
	}
	return spi.ExprList(list), nil
}

// groupByAll implements spi.GroupByAllMarker.
type groupByAll struct{}

func (groupByAll) IsGroupByAll() bool { return true }
func (groupByAll) Pos() token.Position { return token.Position{} }
func (groupByAll) End() token.Position { return token.Position{} }

// ParseGroupByWithAll handles GROUP BY that also accepts GROUP BY ALL.
func ParseGroupByWithAll(p spi.ParserOps) (core.Node, error) {
	if err := p.Expect(token.BY); err != nil {
		return nil, err
	}
	if p.Match(token.ALL) {
		return groupByAll{}, nil
	}
	list, err := p.ParseExpressionList()
	if err != nil {
		return nil, err
	}
	return spi.ExprList(list), nil
}

// ParseHaving handles the standard HAVING clause.
func ParseHaving(p spi.ParserOps) (core.Node, error) {
	return p.ParseExpression()
}

// ParseWindow handles named window definitions: WINDOW w AS (...), ...
func ParseWindow(p spi.ParserOps) (core.Node, error) {
	clause := &core.WindowClause{}
	for {
		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(token.AS); err != nil {
			return nil, err
		}
		spec, err := p.ParseWindowSpec()
		if err != nil {
			return nil, err
		}
		clause.Defs = append(clause.Defs, core.WindowDef{Name: name, Spec: spec})
		if !p.Match(token.COMMA) {
			return clause, nil
		}
	}
}

// ParseOrderBy handles the standard ORDER BY clause.
func ParseOrderBy(p spi.ParserOps) (core.Node, error) {
	if err := p.Expect(token.BY); err != nil {
		return nil, err
	}
	items, err := p.ParseOrderByList()
	if err != nil {
		return nil, err
	}
	return spi.OrderByList(items), nil
}

// ParseLimit handles the standard LIMIT clause.
func ParseLimit(p spi.ParserOps) (core.Node, error) {
	return p.ParseExpression()
}

// ParseLimitWithOffset handles LIMIT that also accepts the MySQL form
// LIMIT offset, count. The two-element result is (offset, count).
func ParseLimitWithOffset(p spi.ParserOps) (core.Node, error) {
	first, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.Match(token.COMMA) {
		return first, nil
	}
	count, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return spi.ExprList{first, count}, nil
}

// ParseOffset handles the standard OFFSET clause, with optional ROW/ROWS.
func ParseOffset(p spi.ParserOps) (core.Node, error) {
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.Match(token.ROWS) {
		p.Match(token.ROW)
	}
	return expr, nil
}

// ParseFetch handles the FETCH FIRST/NEXT clause (SQL:2008).
func ParseFetch(p spi.ParserOps) (core.Node, error) {
	fetch := &core.FetchClause{}

	switch {
	case p.Match(token.FIRST):
		fetch.First = true
	case p.MatchWord("NEXT"):
		fetch.First = false
	default:
		p.AddError("expected FIRST or NEXT after FETCH")
		return fetch, nil
	}

	if !p.Check(token.ROW) && !p.Check(token.ROWS) {
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		fetch.Count = expr
		if p.MatchWord("PERCENT") {
			fetch.Percent = true
		}
	}

	if !p.Match(token.ROW) && !p.Match(token.ROWS) {
		p.AddError("expected ROW or ROWS in FETCH clause")
	}

	switch {
	case p.MatchWord("ONLY"):
	case p.Match(token.WITH):
		if !p.MatchWord("TIES") {
			p.AddError("expected TIES after WITH")
		}
		fetch.WithTies = true
	default:
		p.AddError("expected ONLY or WITH TIES")
	}

	return fetch, nil
}

// ParseQualify handles the QUALIFY clause (Snowflake, DuckDB, Databricks).
func ParseQualify(p spi.ParserOps) (core.Node, error) {
	return p.ParseExpression()
}

// ---------- Infix Handlers ----------

// ParseCastOperator handles expr::type. The :: has been consumed.
func ParseCastOperator(p spi.ParserOps, left core.Expr) (core.Expr, error) {
	typeName, err := p.ParseTypeName()
	if err != nil {
		return nil, err
	}
	cast := &core.CastExpr{Expr: left, TypeName: typeName}
	cast.SetSpan(left.Pos(), p.Position())
	return cast, nil
}

// ParsePathAccess handles semi-structured access: payload:customer.id or
// payload:items[0]. The leading colon has been consumed.
func ParsePathAccess(p spi.ParserOps, left core.Expr) (core.Expr, error) {
	var path strings.Builder
	for {
		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		path.WriteString(name)
		if !p.Match(token.DOT) {
			break
		}
		path.WriteByte('.')
	}
	expr := &core.PathExpr{Expr: left, Path: path.String()}
	expr.SetSpan(left.Pos(), p.Position())
	return expr, nil
}

// ---------- FROM Item Handlers ----------

// SkipFromItem tolerates a FROM suffix the resolver does not model
// (PIVOT, UNPIVOT, SAMPLE). The suffix is skipped with a warning and the
// source table is returned unchanged so its reads are still reported.
func SkipFromItem(construct string) spi.FromItemHandler {
	return func(p spi.ParserOps, source core.TableRef) (core.TableRef, error) {
		p.SkipClause(construct)
		return source, nil
	}
}
