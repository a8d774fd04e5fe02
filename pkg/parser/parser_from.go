package parser

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// FROM clause parsing: table references, derived tables, lateral joins, JOINs.
//
// Grammar:
//
//	from_clause   → table_ref (join | "," table_ref)*
//	table_ref     → [LATERAL] (table_name | derived_table | table_func | "(" from_clause ")")
//	                [[AS] alias ["(" ident_list ")"]] {from_item}
//	table_name    → [catalog "."] [schema "."] identifier
//	derived_table → "(" query ")"
//	table_func    → name "(" args ")" | TABLE "(" name "(" args ")" ")"
//	join          → [NATURAL] join_type JOIN table_ref [ON expr | USING "(" ident_list ")"]
//	              | (CROSS | OUTER) APPLY table_ref
//	join_type     → [INNER] | LEFT [OUTER|SEMI|ANTI] | RIGHT [OUTER] | FULL [OUTER] | CROSS
//	              | ASOF | SEMI | ANTI | POSITIONAL
//
// from_item is a dialect suffix such as PIVOT or SAMPLE, see
// dialect.Builder.AddFromItem.

// joinWords are non-reserved words that start a join: ASOF JOIN, SEMI JOIN.
var joinWords = map[string]bool{"ASOF": true, "SEMI": true, "ANTI": true, "POSITIONAL": true}

// parseFromClause parses the FROM clause.
func (p *Parser) parseFromClause() (*core.FromClause, error) {
	start := p.token.Pos
	from := &core.FromClause{}

	source, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	from.Source = source

	for {
		var join *core.Join
		switch {
		case p.check(token.COMMA):
			joinStart := p.token.Pos
			p.nextToken()
			right, err := p.parseTableRef()
			if err != nil {
				return nil, err
			}
			join = &core.Join{Type: core.JoinComma, Right: right}
			join.SetSpan(joinStart, p.Position())
		case p.isJoinStart():
			if join, err = p.parseJoin(); err != nil {
				return nil, err
			}
		default:
			from.SetSpan(start, p.Position())
			return from, nil
		}
		from.Joins = append(from.Joins, join)
	}
}

// parseJoin parses a single JOIN.
func (p *Parser) parseJoin() (*core.Join, error) {
	start := p.token.Pos
	join := &core.Join{Type: core.JoinInner, Natural: p.match(token.NATURAL)}
	apply := false

	switch {
	case p.match(token.CROSS):
		join.Type = core.JoinCross
		if p.matchWord("APPLY") {
			apply = true
		} else if err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
	case p.match(token.OUTER):
		if err := p.expectWord("APPLY"); err != nil {
			return nil, err
		}
		join.Type = core.JoinLeft
		apply = true
	case p.match(token.INNER):
		if err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
	case p.match(token.LEFT):
		join.Type = core.JoinLeft
		if !p.match(token.OUTER) && (p.matchWord("SEMI") || p.matchWord("ANTI")) {
			join.Type = core.JoinInner
		}
		if err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
	case p.match(token.RIGHT):
		join.Type = core.JoinRight
		p.match(token.OUTER)
		if err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
	case p.match(token.FULL):
		join.Type = core.JoinFull
		p.match(token.OUTER)
		if err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
	case p.check(token.IDENT) && joinWords[strings.ToUpper(p.token.Literal)]:
		p.nextToken()
		if p.match(token.LEFT) {
			join.Type = core.JoinLeft
		}
		if err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
	default:
		if err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
	}

	right, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	if apply {
		markLateral(right)
	}
	join.Right = right

	if join.Type != core.JoinCross && !join.Natural && !apply {
		switch {
		case p.match(token.ON):
			if join.Condition, err = p.parseExpression(); err != nil {
				return nil, err
			}
		case p.match(token.USING):
			if join.Using, err = p.parseIdentList(); err != nil {
				return nil, err
			}
		}
	}

	join.SetSpan(start, p.Position())
	return join, nil
}

// markLateral flags a table reference that may see preceding FROM items.
func markLateral(ref core.TableRef) {
	switch t := ref.(type) {
	case *core.DerivedTable:
		t.Lateral = true
	case *core.TableFunc:
		t.Lateral = true
	}
}

// parseTableRef parses a table reference with its alias and dialect
// FROM suffixes.
func (p *Parser) parseTableRef() (core.TableRef, error) {
	start := p.token.Pos
	lateral := p.match(token.LATERAL)

	var (
		ref core.TableRef
		err error
	)
	switch {
	case p.check(token.LPAREN):
		ref, err = p.parseParenTableRef(start)
	case p.check(token.TABLE) && p.checkPeek(token.LPAREN):
		ref, err = p.parseTableKeywordFunc(start)
	case isIdentLike(p.token):
		ref, err = p.parseNamedTableRef(start)
	default:
		err = p.unexpected("table name")
	}
	if err != nil {
		return nil, err
	}
	if lateral {
		markLateral(ref)
	}

	for {
		handler := p.dialect.FromItemHandler(p.token.Type)
		if handler == nil {
			return ref, nil
		}
		p.nextToken() // consume PIVOT, SAMPLE, ...
		if ref, err = handler(p, ref); err != nil {
			return nil, err
		}
	}
}

// parseParenTableRef parses a derived table or a parenthesized join.
func (p *Parser) parseParenTableRef(start token.Position) (core.TableRef, error) {
	p.nextToken() // (

	if p.check(token.SELECT) || p.check(token.WITH) || (p.check(token.LPAREN) && p.looksLikeQuery()) {
		sel, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		derived := &core.DerivedTable{Select: sel}
		if derived.Alias, err = p.parseAlias(); err != nil {
			return nil, err
		}
		if derived.Alias != "" && p.check(token.LPAREN) {
			if derived.Columns, err = p.parseIdentList(); err != nil {
				return nil, err
			}
		}
		derived.SetSpan(start, p.Position())
		return derived, nil
	}

	inner, err := p.parseFromClause()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	paren := &core.ParenTable{From: inner}
	if paren.Alias, err = p.parseAlias(); err != nil {
		return nil, err
	}
	paren.SetSpan(start, p.Position())
	return paren, nil
}

// looksLikeQuery reports whether the parenthesized group starting at the
// current token opens with SELECT or WITH.
func (p *Parser) looksLikeQuery() bool {
	return p.checkPeek(token.SELECT) || p.checkPeek(token.WITH) ||
		(p.checkPeek(token.LPAREN) && (p.peek2.Type == token.SELECT || p.peek2.Type == token.WITH))
}

// parseTableKeywordFunc parses TABLE(fn(...)).
func (p *Parser) parseTableKeywordFunc(start token.Position) (core.TableRef, error) {
	p.nextToken() // TABLE
	p.nextToken() // (

	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	fn, ok := expr.(*core.FuncCall)
	if !ok {
		return nil, &ParseError{Pos: expr.Pos(), Message: "TABLE(...) requires a function call"}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	tf := &core.TableFunc{Name: fn.Name, Args: fn.Args}
	if err := p.parseTableFuncAlias(tf); err != nil {
		return nil, err
	}
	tf.SetSpan(start, p.Position())
	return tf, nil
}

// parseNamedTableRef parses a table name or a table function call.
func (p *Parser) parseNamedTableRef(start token.Position) (core.TableRef, error) {
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}

	if p.check(token.LPAREN) {
		fn := &core.FuncCall{Name: strings.ToUpper(table.QualifiedName())}
		p.nextToken()
		if !p.check(token.RPAREN) {
			if err := p.parseFuncArgs(fn); err != nil {
				return nil, err
			}
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		// UNNEST(...) WITH ORDINALITY
		if p.check(token.WITH) && isWord(p.peek, "ORDINALITY") {
			p.nextToken()
			p.nextToken()
		}

		tf := &core.TableFunc{Name: fn.Name, Args: fn.Args}
		if err := p.parseTableFuncAlias(tf); err != nil {
			return nil, err
		}
		tf.SetSpan(start, p.Position())
		return tf, nil
	}

	// Table hints (WITH (NOLOCK)) and time travel (AT (...), BEFORE (...)).
	switch {
	case p.check(token.WITH) && p.checkPeek(token.LPAREN):
		p.nextToken()
		if err := p.skipParens(); err != nil {
			return nil, err
		}
	case (p.checkWord("AT") || p.checkWord("BEFORE")) && p.checkPeek(token.LPAREN):
		p.warn(p.token.Pos, strings.ToUpper(p.token.Literal))
		p.nextToken()
		if err := p.skipParens(); err != nil {
			return nil, err
		}
	}

	if err := p.parseTableAlias(table); err != nil {
		return nil, err
	}
	// Column aliases on a base table rename nothing the resolver tracks.
	if table.Alias != "" && p.check(token.LPAREN) {
		if _, err := p.parseIdentList(); err != nil {
			return nil, err
		}
	}
	table.SetSpan(start, p.Position())
	return table, nil
}

// parseTableFuncAlias parses [AS] alias ["(" ident_list ")"] after a table function.
func (p *Parser) parseTableFuncAlias(tf *core.TableFunc) error {
	alias, err := p.parseAlias()
	if err != nil {
		return err
	}
	tf.Alias = alias
	if alias != "" && p.check(token.LPAREN) {
		if _, err := p.parseIdentList(); err != nil {
			return err
		}
	}
	return nil
}
