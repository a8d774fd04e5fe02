package parser

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Statement parsing: dispatch, WITH clause, CTEs, SELECT body, SELECT list, ORDER BY.
//
// Grammar:
//
//	query         → [WITH [RECURSIVE] cte_list] select_body
//	cte_list      → cte ("," cte)*
//	cte           → identifier ["(" ident_list ")"] AS [[NOT] MATERIALIZED] "(" query ")"
//	select_body   → operand [(UNION|INTERSECT|EXCEPT) [ALL|DISTINCT] select_body]
//	                [ORDER BY order_list] [LIMIT expr] [OFFSET expr]
//	operand       → select_core | "(" query ")"
//	select_core   → SELECT [DISTINCT [ON "(" expr_list ")"]|ALL] [TOP n [PERCENT] [WITH TIES]]
//	                select_list [FROM from_clause]
//	                [clauses based on dialect sequence]
//	                [FOR ...]
//	select_list   → select_item ("," select_item)*
//	select_item   → "*" [EXCLUDE ...] | table "." "*" | expr [[AS] identifier]
//	order_list    → order_item ("," order_item)*
//	order_item    → expr [ASC|DESC] [NULLS FIRST|LAST]
//
// The parser uses dialect.ClauseSequence() and dialect.ClauseDef() to parse
// clauses for the current dialect, and rejects clauses another dialect
// owns (LIMIT in T-SQL, FETCH in MySQL).

// unknownStatements are leading words of statements that are recognized
// but not modeled.
var unknownStatements = map[string]bool{
	"ALTER": true, "ANALYZE": true, "ATTACH": true, "BEGIN": true, "CACHE": true,
	"CALL": true, "CHECKPOINT": true, "CLUSTER": true, "COMMENT": true, "COMMIT": true,
	"COPY": true, "DECLARE": true, "DESCRIBE": true, "DETACH": true, "DROP": true,
	"EXEC": true, "EXECUTE": true, "EXPLAIN": true, "EXPORT": true, "GET": true,
	"GRANT": true, "IMPORT": true, "INSTALL": true, "LOAD": true, "LOCK": true,
	"MSCK": true, "OPTIMIZE": true, "PRAGMA": true, "PRINT": true, "PUT": true,
	"REFRESH": true, "REINDEX": true, "RENAME": true, "REPLACE": true, "RESET": true,
	"REVOKE": true, "ROLLBACK": true, "SAVEPOINT": true, "SHOW": true, "START": true,
	"TRUNCATE": true, "UNCACHE": true, "UNDROP": true, "UNLOAD": true, "USE": true,
	"VACUUM": true,
}

// parseStatement parses one statement.
func (p *Parser) parseStatement() (core.Stmt, error) {
	switch p.token.Type {
	case token.SELECT, token.LPAREN:
		return p.parseSelectStmt()
	case token.WITH:
		return p.parseWithStatement()
	case token.INSERT:
		// INSERT ALL / INSERT FIRST write several tables.
		if p.checkPeek(token.ALL) || p.checkPeek(token.FIRST) {
			return p.parseUnknown()
		}
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.MERGE:
		return p.parseMerge()
	case token.CREATE:
		return p.parseCreate()
	case token.SET, token.DESC:
		return p.parseUnknown()
	case token.IDENT:
		if !p.token.Quoted && unknownStatements[strings.ToUpper(p.token.Literal)] {
			return p.parseUnknown()
		}
	case token.ILLEGAL:
		return nil, p.illegal()
	}
	return nil, p.errorf(ErrUnknownStatement, describe(p.token))
}

// parseWithStatement parses a WITH clause followed by a query or a DML
// statement. For INSERT the CTEs move onto the inserted query.
func (p *Parser) parseWithStatement() (core.Stmt, error) {
	start := p.token.Pos
	with, err := p.parseWithClause()
	if err != nil {
		return nil, err
	}

	switch p.token.Type {
	case token.INSERT:
		ins, err := p.parseInsert()
		if err != nil {
			return nil, err
		}
		if ins.Select == nil {
			return nil, &ParseError{Pos: start, Fragment: "WITH", Message: "WITH clause requires INSERT ... SELECT"}
		}
		if ins.Select.With == nil {
			ins.Select.With = with
		} else {
			ins.Select.With.CTEs = append(with.CTEs, ins.Select.With.CTEs...)
			ins.Select.With.Recursive = ins.Select.With.Recursive || with.Recursive
		}
		return ins, nil
	case token.UPDATE:
		upd, err := p.parseUpdate()
		if err != nil {
			return nil, err
		}
		upd.With = with
		return upd, nil
	case token.DELETE:
		del, err := p.parseDelete()
		if err != nil {
			return nil, err
		}
		del.With = with
		return del, nil
	case token.MERGE:
		merge, err := p.parseMerge()
		if err != nil {
			return nil, err
		}
		merge.With = with
		return merge, nil
	}

	stmt := &core.SelectStmt{With: with}
	body, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.SetSpan(start, p.Position())
	return stmt, nil
}

// parseSelectStmt parses a complete query.
func (p *Parser) parseSelectStmt() (*core.SelectStmt, error) {
	start := p.token.Pos
	stmt := &core.SelectStmt{}

	if p.check(token.WITH) {
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		stmt.With = with
	}

	body, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.SetSpan(start, p.Position())
	return stmt, nil
}

// parseWithClause parses a WITH clause with CTEs.
func (p *Parser) parseWithClause() (*core.WithClause, error) {
	start := p.token.Pos
	if err := p.expect(token.WITH); err != nil {
		return nil, err
	}
	with := &core.WithClause{Recursive: p.match(token.RECURSIVE)}

	for {
		cte, err := p.parseCTE()
		if err != nil {
			return nil, err
		}
		with.CTEs = append(with.CTEs, cte)
		if !p.match(token.COMMA) {
			break
		}
	}

	with.SetSpan(start, p.Position())
	return with, nil
}

// parseCTE parses a single CTE.
func (p *Parser) parseCTE() (*core.CTE, error) {
	start := p.token.Pos
	name, err := p.ParseIdentifier()
	if err != nil {
		return nil, err
	}
	cte := &core.CTE{Name: name}

	if p.check(token.LPAREN) {
		if cte.Columns, err = p.parseIdentList(); err != nil {
			return nil, err
		}
	}

	if err := p.expect(token.AS); err != nil {
		return nil, err
	}
	if p.match(token.NOT) {
		if err := p.expectWord("MATERIALIZED"); err != nil {
			return nil, err
		}
	} else {
		p.matchWord("MATERIALIZED")
	}

	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if cte.Select, err = p.parseSelectStmt(); err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	cte.SetSpan(start, p.Position())
	return cte, nil
}

// parseSelectBody parses a SELECT body with possible set operations.
func (p *Parser) parseSelectBody() (*core.SelectBody, error) {
	start := p.token.Pos
	body := &core.SelectBody{}

	left, err := p.parseSelectOperand()
	if err != nil {
		return nil, err
	}
	body.Left = left

	switch p.token.Type {
	case token.UNION:
		body.Op = core.SetOpUnion
	case token.INTERSECT:
		body.Op = core.SetOpIntersect
	case token.EXCEPT:
		body.Op = core.SetOpExcept
	}

	if body.Op != core.SetOpNone {
		p.nextToken()
		if p.match(token.ALL) {
			body.All = true
		} else {
			p.match(token.DISTINCT)
		}
		if p.check(token.BY) && isWord(p.peek, "NAME") {
			p.warn(p.token.Pos, "BY NAME")
			p.nextToken()
			p.nextToken()
		}

		// Parse the right side (recursively for chained operations)
		if body.Right, err = p.parseSelectBody(); err != nil {
			return nil, err
		}
	}

	if err := p.parseTrailingOrderLimit(body); err != nil {
		return nil, err
	}

	body.SetSpan(start, p.Position())
	return body, nil
}

// parseTrailingOrderLimit handles ORDER BY / LIMIT / OFFSET written after a
// parenthesized set operation branch.
func (p *Parser) parseTrailingOrderLimit(body *core.SelectBody) error {
	var err error
	if p.check(token.ORDER) && p.checkPeek(token.BY) {
		p.nextToken()
		p.nextToken()
		if body.OrderBy, err = p.parseOrderByList(); err != nil {
			return err
		}
	}
	if p.dialect.IsClauseToken(token.LIMIT) && p.match(token.LIMIT) {
		if body.Limit, err = p.parseExpression(); err != nil {
			return err
		}
	}
	if p.dialect.IsClauseToken(token.OFFSET) && p.match(token.OFFSET) {
		if body.Offset, err = p.parseExpression(); err != nil {
			return err
		}
		if !p.match(token.ROWS) {
			p.match(token.ROW)
		}
	}
	return nil
}

// parseSelectOperand parses a SELECT core or a parenthesized query. A
// parenthesized plain SELECT is unwrapped; anything else becomes
// SELECT * FROM (query).
func (p *Parser) parseSelectOperand() (*core.SelectCore, error) {
	if !p.check(token.LPAREN) {
		return p.parseSelectCore()
	}

	start := p.token.Pos
	p.nextToken()
	inner, err := p.parseSelectStmt()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body := inner.Body
	if inner.With == nil && body.Op == core.SetOpNone && body.OrderBy == nil && body.Limit == nil && body.Offset == nil {
		return body.Left, nil
	}

	derived := &core.DerivedTable{Select: inner}
	derived.SetSpan(start, p.Position())
	sc := &core.SelectCore{
		Columns: []core.SelectItem{{Star: true}},
		From:    &core.FromClause{Source: derived},
	}
	sc.SetSpan(start, p.Position())
	return sc, nil
}

// parseSelectCore parses a single SELECT clause.
func (p *Parser) parseSelectCore() (*core.SelectCore, error) {
	start := p.token.Pos
	if err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	sc := &core.SelectCore{}

	// DISTINCT / ALL
	if p.match(token.DISTINCT) {
		sc.Distinct = true
		if p.check(token.ON) {
			p.nextToken()
			if err := p.skipParens(); err != nil {
				return nil, err
			}
		}
	} else {
		p.match(token.ALL)
	}

	if p.dialect.SupportsTop() && p.match(dialect.TokenTop) {
		top, err := p.parseTop()
		if err != nil {
			return nil, err
		}
		sc.Top = top
	}

	cols, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	sc.Columns = cols

	if p.match(token.FROM) {
		if sc.From, err = p.parseFromClause(); err != nil {
			return nil, err
		}
	}

	if err := p.parseClauses(sc); err != nil {
		return nil, err
	}

	if p.match(token.FOR) {
		construct := "FOR"
		if isIdentLike(p.token) || p.check(token.UPDATE) {
			construct += " " + strings.ToUpper(p.token.Literal)
		}
		p.SkipClause(construct)
	}

	sc.SetSpan(start, p.Position())
	return sc, nil
}

// parseTop parses TOP n [PERCENT] [WITH TIES]. TOP has been consumed.
func (p *Parser) parseTop() (*core.TopClause, error) {
	top := &core.TopClause{}
	var err error
	if p.check(token.LPAREN) {
		top.Count, err = p.parsePrimary()
	} else {
		top.Count, err = p.parseExpr(spi.PrecedenceUnary)
	}
	if err != nil {
		return nil, err
	}
	top.Percent = p.matchWord("PERCENT")
	if p.check(token.WITH) && isWord(p.peek, "TIES") {
		p.nextToken()
		p.nextToken()
		top.WithTies = true
	}
	return top, nil
}

// parseClauses parses optional clauses using dialect.ClauseDef() for both
// parsing logic and slot-based assignment.
func (p *Parser) parseClauses(sc *core.SelectCore) error {
	for {
		def, ok := p.dialect.ClauseDef(p.token.Type)
		if !ok || !p.dialect.IsClauseToken(p.token.Type) {
			// QUALIFY lexes as an identifier where the dialect lacks it.
			t := p.token.Type
			if t == token.IDENT && !p.token.Quoted {
				if dt, found := token.LookupDynamicKeyword(p.token.Literal); found {
					t = dt
				}
			}
			if name, known := dialect.IsKnownClause(t); known {
				return p.errorf(ErrUnsupportedClause, name, p.dialect.Name)
			}
			return nil
		}

		p.nextToken() // consume clause keyword
		result, err := def.Handler(p)
		if err != nil {
			return err
		}
		p.assignToSlot(sc, def.Slot, result)
	}
}

// assignToSlot stores the parsed clause result in the appropriate SelectCore field.
func (p *Parser) assignToSlot(sc *core.SelectCore, slot spi.ClauseSlot, result core.Node) {
	if result == nil {
		return
	}

	switch slot {
	case spi.SlotWhere:
		if expr, ok := result.(core.Expr); ok {
			sc.Where = expr
		}

	case spi.SlotGroupBy:
		switch v := result.(type) {
		case spi.GroupByAllMarker:
			sc.GroupByAll = v.IsGroupByAll()
		case spi.ExprList:
			sc.GroupBy = v
		}

	case spi.SlotHaving:
		if expr, ok := result.(core.Expr); ok {
			sc.Having = expr
		}

	case spi.SlotWindow:
		if wc, ok := result.(*core.WindowClause); ok {
			sc.Windows = append(sc.Windows, wc.Defs...)
		}

	case spi.SlotOrderBy:
		if items, ok := result.(spi.OrderByList); ok {
			sc.OrderBy = items
		}

	case spi.SlotLimit:
		switch v := result.(type) {
		case spi.ExprList: // LIMIT offset, count
			if len(v) == 2 {
				sc.Offset, sc.Limit = v[0], v[1]
			}
		case core.Expr:
			sc.Limit = v
		}

	case spi.SlotOffset:
		if expr, ok := result.(core.Expr); ok {
			sc.Offset = expr
		}

	case spi.SlotQualify:
		if expr, ok := result.(core.Expr); ok {
			sc.Qualify = expr
		}

	case spi.SlotFetch:
		if fetch, ok := result.(*core.FetchClause); ok {
			sc.Fetch = fetch
		}

	case spi.SlotExtensions:
		sc.Extensions = append(sc.Extensions, result)
	}
}

// parseSelectList parses the list of SELECT items.
func (p *Parser) parseSelectList() ([]core.SelectItem, error) {
	var items []core.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			return items, nil
		}
	}
}

// parseSelectItem parses a single SELECT item.
func (p *Parser) parseSelectItem() (core.SelectItem, error) {
	item := core.SelectItem{}

	if p.match(token.STAR) {
		item.Star = true
		err := p.parseStarModifiers(&item)
		return item, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return item, err
	}
	// t.* comes back from the expression parser as a StarExpr.
	if star, ok := expr.(*core.StarExpr); ok {
		item.TableStar = star.Table
		err := p.parseStarModifiers(&item)
		return item, err
	}
	item.Expr = expr

	item.Alias, err = p.parseAlias()
	return item, err
}

// parseStarModifiers parses * EXCLUDE (a, b), * EXCEPT (a, b) and tolerates
// * REPLACE (...) / * RENAME (...).
func (p *Parser) parseStarModifiers(item *core.SelectItem) error {
	if !p.dialect.SupportsStarExclude() {
		return nil
	}

	if p.matchWord("EXCLUDE") || (p.check(token.EXCEPT) && p.checkPeek(token.LPAREN) && p.match(token.EXCEPT)) {
		if p.check(token.LPAREN) {
			cols, err := p.parseIdentList()
			if err != nil {
				return err
			}
			item.Exclude = cols
		} else {
			col, err := p.ParseIdentifier()
			if err != nil {
				return err
			}
			item.Exclude = []string{col}
		}
	}

	for (p.checkWord("REPLACE") || p.checkWord("RENAME")) && p.checkPeek(token.LPAREN) {
		p.warn(p.token.Pos, "* "+strings.ToUpper(p.token.Literal))
		p.nextToken()
		if err := p.skipParens(); err != nil {
			return err
		}
	}
	return nil
}

// aliasStopWords are identifiers that never act as a bare alias because
// they introduce a following construct.
var aliasStopWords = map[string]bool{
	"RETURNING":       true,
	"PIVOT":           true,
	"UNPIVOT":         true,
	"QUALIFY":         true,
	"TABLESAMPLE":     true,
	"MATCH_RECOGNIZE": true,
	"OPTION":          true,
}

// parseAlias parses [AS] alias. AS may be followed by an identifier or a
// string literal.
func (p *Parser) parseAlias() (string, error) {
	if p.match(token.AS) {
		if p.check(token.STRING) {
			alias := p.token.Literal
			p.nextToken()
			return alias, nil
		}
		return p.ParseIdentifier()
	}
	if p.check(token.IDENT) && (p.token.Quoted || !aliasStopWords[strings.ToUpper(p.token.Literal)]) && !p.isJoinStart() {
		alias := p.identName(p.token)
		p.nextToken()
		return alias, nil
	}
	return "", nil
}

// parseIdentList parses "(" identifier ("," identifier)* ")".
func (p *Parser) parseIdentList() ([]string, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.match(token.COMMA) {
			break
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return names, nil
}

// parseOrderByList parses a list of ORDER BY items.
func (p *Parser) parseOrderByList() ([]core.OrderByItem, error) {
	var items []core.OrderByItem
	for {
		item, err := p.parseOrderByItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			return items, nil
		}
	}
}

// parseOrderByItem parses a single ORDER BY item.
func (p *Parser) parseOrderByItem() (core.OrderByItem, error) {
	item := core.OrderByItem{}
	expr, err := p.parseExpression()
	if err != nil {
		return item, err
	}
	item.Expr = expr

	// ASC / DESC
	if p.match(token.DESC) {
		item.Desc = true
	} else {
		p.match(token.ASC)
	}

	// NULLS FIRST / LAST
	if p.match(token.NULLS) {
		switch {
		case p.match(token.FIRST):
			b := true
			item.NullsFirst = &b
		case p.match(token.LAST):
			b := false
			item.NullsFirst = &b
		default:
			return item, p.unexpected("FIRST or LAST")
		}
	}
	return item, nil
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() ([]core.Expr, error) {
	var exprs []core.Expr
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if !p.match(token.COMMA) {
			return exprs, nil
		}
	}
}
