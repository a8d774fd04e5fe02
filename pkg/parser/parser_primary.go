package parser

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Primary expression parsing: literals, column refs, function calls.
//
// Grammar:
//
//	prefix        → ("-" | "+") prefix | NOT expr | primary
//	primary       → literal | column_ref | func_call | paren_expr | subquery
//	              | case_expr | cast_expr | exists_expr
//	literal       → NUMBER | STRING | PARAM | TRUE | FALSE | NULL
//	              | (DATE | TIME | TIMESTAMP) STRING | INTERVAL (STRING | NUMBER) [unit]
//	column_ref    → [[schema "."] table "."] column
//	func_call     → name "(" [DISTINCT] [args] [ORDER BY order_list] ")"
//	                [WITHIN GROUP "(" ORDER BY order_list ")"]
//	                [FILTER "(" WHERE expr ")"] [(IGNORE|RESPECT) NULLS]
//	                [OVER (identifier | window_spec)]

// niladicFuncs are functions written without parentheses.
var niladicFuncs = map[string]bool{
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"CURRENT_TIMESTAMP": true,
	"CURRENT_USER":      true,
	"CURRENT_ROLE":      true,
	"CURRENT_SCHEMA":    true,
	"LOCALTIME":         true,
	"LOCALTIMESTAMP":    true,
	"SESSION_USER":      true,
	"SYSDATE":           true,
}

// typedLiterals map a type keyword written before a string to its literal type.
var typedLiterals = map[string]core.LiteralType{
	"DATE":        core.LiteralDate,
	"TIME":        core.LiteralTime,
	"TIMESTAMP":   core.LiteralTimestamp,
	"TIMESTAMPTZ": core.LiteralTimestamp,
}

// intervalUnits are the units accepted after an INTERVAL value.
var intervalUnits = map[string]bool{
	"YEAR": true, "YEARS": true, "QUARTER": true, "QUARTERS": true,
	"MONTH": true, "MONTHS": true, "WEEK": true, "WEEKS": true,
	"DAY": true, "DAYS": true, "HOUR": true, "HOURS": true,
	"MINUTE": true, "MINUTES": true, "SECOND": true, "SECONDS": true,
	"MILLISECOND": true, "MILLISECONDS": true, "MICROSECOND": true, "MICROSECONDS": true,
}

// trimSpecs are the TRIM(BOTH|LEADING|TRAILING ...) keywords.
var trimSpecs = map[string]bool{"BOTH": true, "LEADING": true, "TRAILING": true}

// parsePrefix parses unary operators and primary expressions.
func (p *Parser) parsePrefix() (core.Expr, error) {
	start := p.token.Pos

	switch p.token.Type {
	case token.MINUS, token.PLUS:
		op := p.token.Type.String()
		p.nextToken()
		operand, err := p.parseExpr(spi.PrecedenceUnary)
		if err != nil {
			return nil, err
		}
		// -1 is a single literal.
		if lit, ok := operand.(*core.Literal); ok && lit.Type == core.LiteralNumber && op == "-" && !strings.HasPrefix(lit.Value, "-") {
			lit.Value = "-" + lit.Value
			lit.SetSpan(start, p.Position())
			return lit, nil
		}
		expr := &core.UnaryExpr{Op: op, Expr: operand}
		expr.SetSpan(start, p.Position())
		return expr, nil

	case token.NOT:
		if p.checkPeek(token.EXISTS) {
			p.nextToken()
			return p.parseExists(start, true)
		}
		p.nextToken()
		operand, err := p.parseExpr(spi.PrecedenceNot)
		if err != nil {
			return nil, err
		}
		expr := &core.UnaryExpr{Op: "NOT", Expr: operand}
		expr.SetSpan(start, p.Position())
		return expr, nil
	}

	return p.parsePrimary()
}

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() (core.Expr, error) {
	start := p.token.Pos

	switch p.token.Type {
	case token.NUMBER:
		return p.literal(core.LiteralNumber, p.token.Literal), nil
	case token.STRING:
		return p.literal(core.LiteralString, p.token.Literal), nil
	case token.PARAM:
		return p.literal(core.LiteralParam, p.token.Literal), nil
	case token.TRUE:
		return p.literal(core.LiteralBool, "TRUE"), nil
	case token.FALSE:
		return p.literal(core.LiteralBool, "FALSE"), nil
	case token.NULL:
		return p.literal(core.LiteralNull, "NULL"), nil

	case token.CASE:
		return p.parseCase()
	case token.CAST:
		return p.parseCast(false)
	case token.EXISTS:
		return p.parseExists(start, false)
	case token.LPAREN:
		return p.parseParenExpr()

	case token.STAR:
		p.nextToken()
		star := &core.StarExpr{}
		star.SetSpan(start, p.Position())
		return star, nil

	case token.LEFT, token.RIGHT:
		// LEFT(s, n) and RIGHT(s, n) are functions outside a join.
		if p.checkPeek(token.LPAREN) {
			return p.parseIdentExpr()
		}

	case token.ILLEGAL:
		return nil, p.illegal()
	}

	if isIdentLike(p.token) {
		if !p.token.Quoted {
			word := strings.ToUpper(p.token.Literal)
			switch {
			case (word == "TRY_CAST" || word == "SAFE_CAST") && p.checkPeek(token.LPAREN):
				return p.parseCast(true)
			case typedLiterals[word] != 0 && p.checkPeek(token.STRING):
				p.nextToken()
				lit := p.literal(typedLiterals[word], p.token.Literal)
				lit.SetSpan(start, p.Position())
				return lit, nil
			case word == "INTERVAL" && (p.checkPeek(token.STRING) || p.checkPeek(token.NUMBER)):
				return p.parseInterval()
			}
		}
		return p.parseIdentExpr()
	}

	return nil, p.unexpected("expression")
}

// literal consumes the current token as a literal.
func (p *Parser) literal(typ core.LiteralType, value string) *core.Literal {
	lit := &core.Literal{Type: typ, Value: value}
	lit.SetSpan(p.token.Pos, p.token.End)
	p.nextToken()
	return lit
}

// parseInterval parses INTERVAL '1' DAY or INTERVAL 3 HOURS.
func (p *Parser) parseInterval() (core.Expr, error) {
	start := p.token.Pos
	p.nextToken() // INTERVAL

	lit := &core.Literal{Type: core.LiteralInterval, Value: p.token.Literal}
	p.nextToken()
	if p.check(token.IDENT) && !p.token.Quoted && intervalUnits[strings.ToUpper(p.token.Literal)] {
		lit.Unit = strings.ToUpper(p.token.Literal)
		p.nextToken()
	}
	lit.SetSpan(start, p.Position())
	return lit, nil
}

// parseIdentExpr parses a column reference, t.* or a function call.
func (p *Parser) parseIdentExpr() (core.Expr, error) {
	start := p.token.Pos
	parts := []token.Token{p.token}
	p.nextToken()

	for p.check(token.DOT) {
		p.nextToken()
		if p.check(token.STAR) {
			p.nextToken()
			star := &core.StarExpr{Table: p.identName(parts[len(parts)-1])}
			star.SetSpan(start, p.Position())
			return star, nil
		}
		if !isIdentLike(p.token) && !token.IsKeyword(p.token.Type) && !token.IsDynamic(p.token.Type) {
			return nil, p.unexpected("identifier")
		}
		parts = append(parts, p.token)
		p.nextToken()
	}

	if p.check(token.LPAREN) {
		names := make([]string, len(parts))
		for i, part := range parts {
			names[i] = strings.ToUpper(part.Literal)
		}
		return p.parseFuncCall(start, strings.Join(names, "."))
	}

	if len(parts) == 1 && !parts[0].Quoted && niladicFuncs[strings.ToUpper(parts[0].Literal)] {
		fn := &core.FuncCall{Name: strings.ToUpper(parts[0].Literal), Niladic: true}
		fn.SetSpan(start, p.Position())
		return fn, nil
	}

	ref := &core.ColumnRef{Column: p.identName(parts[len(parts)-1])}
	if len(parts) >= 2 {
		ref.Table = p.identName(parts[len(parts)-2])
	}
	if len(parts) >= 3 {
		ref.Schema = p.identName(parts[len(parts)-3])
	}
	ref.SetSpan(start, p.Position())
	return ref, nil
}

// parseFuncCall parses the argument list and trailing modifiers of a call.
// The name has been consumed; the current token is "(".
func (p *Parser) parseFuncCall(start token.Position, name string) (core.Expr, error) {
	fn := &core.FuncCall{Name: name}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	if !p.check(token.RPAREN) {
		if p.match(token.DISTINCT) {
			fn.Distinct = true
		} else {
			p.match(token.ALL)
		}
		if err := p.parseFuncArgs(fn); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if err := p.parseFuncModifiers(fn); err != nil {
		return nil, err
	}
	fn.SetSpan(start, p.Position())
	return fn, nil
}

// parseFuncArgs parses call arguments, including the keyword forms
// EXTRACT(unit FROM x), SUBSTRING(s FROM n FOR m), POSITION(a IN b),
// TRIM(BOTH c FROM s) and GROUP_CONCAT(x SEPARATOR ',').
func (p *Parser) parseFuncArgs(fn *core.FuncCall) error {
	var seps []string
	keywordSeps := false
	add := func(arg core.Expr, sep string) {
		if len(fn.Args) > 0 {
			seps = append(seps, sep)
		}
		fn.Args = append(fn.Args, arg)
	}

	// COUNT(*)
	if p.check(token.STAR) && p.checkPeek(token.RPAREN) {
		star := &core.StarExpr{}
		star.SetSpan(p.token.Pos, p.token.End)
		p.nextToken()
		fn.Args = []core.Expr{star}
		return nil
	}

	switch {
	case fn.Name == "EXTRACT" && (isIdentLike(p.token) || p.check(token.STRING)) && p.checkPeek(token.FROM):
		add(p.literal(core.LiteralKeyword, strings.ToUpper(p.token.Literal)), "")
		p.nextToken() // FROM
		arg, err := p.parseExpression()
		if err != nil {
			return err
		}
		add(arg, "FROM")
		fn.Seps = seps
		return nil

	case fn.Name == "TRIM" && p.check(token.IDENT) && !p.token.Quoted && trimSpecs[strings.ToUpper(p.token.Literal)]:
		add(p.literal(core.LiteralKeyword, strings.ToUpper(p.token.Literal)), "")
		keywordSeps = true
		if p.match(token.FROM) {
			arg, err := p.parseExpression()
			if err != nil {
				return err
			}
			add(arg, "FROM")
			fn.Seps = seps
			return nil
		}
	}

	sep := ""
	if keywordSeps {
		sep = " "
	}
	for {
		// Named arguments: FLATTEN(input => col)
		if isIdentLike(p.token) && p.checkPeek(token.EQ) && p.peek2.Type == token.GT {
			p.nextToken()
			p.nextToken()
			p.nextToken()
		}

		minPrec := spi.PrecedenceNone
		if fn.Name == "POSITION" && len(fn.Args) == 0 {
			minPrec = spi.PrecedenceComparison
		}
		arg, err := p.parseExpr(minPrec)
		if err != nil {
			return err
		}
		add(arg, sep)

		switch {
		case p.match(token.COMMA):
			sep = ""
		case p.match(token.FROM):
			sep, keywordSeps = "FROM", true
		case p.match(token.FOR):
			sep, keywordSeps = "FOR", true
		case fn.Name == "POSITION" && p.match(token.IN):
			sep, keywordSeps = "IN", true
		case p.matchWord("SEPARATOR"):
			sep, keywordSeps = "SEPARATOR", true
		default:
			if err := p.parseInlineOrderBy(fn); err != nil {
				return err
			}
			if keywordSeps {
				fn.Seps = seps
			}
			return nil
		}
	}
}

// parseInlineOrderBy parses trailing IGNORE NULLS and ORDER BY inside the
// argument list: FIRST_VALUE(x IGNORE NULLS), STRING_AGG(x, ',' ORDER BY y).
func (p *Parser) parseInlineOrderBy(fn *core.FuncCall) error {
	p.parseNullTreatment()
	if p.check(token.ORDER) && p.checkPeek(token.BY) {
		p.nextToken()
		p.nextToken()
		items, err := p.parseOrderByList()
		if err != nil {
			return err
		}
		fn.OrderBy = items
	}
	if p.check(token.LIMIT) {
		p.warn(p.token.Pos, "LIMIT in aggregate")
		p.nextToken()
		if _, err := p.parseExpression(); err != nil {
			return err
		}
	}
	return nil
}

// parseNullTreatment consumes IGNORE NULLS / RESPECT NULLS.
func (p *Parser) parseNullTreatment() {
	if (p.checkWord("IGNORE") || p.checkWord("RESPECT")) && p.checkPeek(token.NULLS) {
		p.nextToken()
		p.nextToken()
	}
}

// parseFuncModifiers parses WITHIN GROUP, FILTER, null treatment and OVER.
func (p *Parser) parseFuncModifiers(fn *core.FuncCall) error {
	var err error

	if p.check(token.WITHIN) && p.checkPeek(token.GROUP) {
		p.nextToken()
		p.nextToken()
		if err := p.expect(token.LPAREN); err != nil {
			return err
		}
		if err := p.expect(token.ORDER); err != nil {
			return err
		}
		if err := p.expect(token.BY); err != nil {
			return err
		}
		if fn.Within, err = p.parseOrderByList(); err != nil {
			return err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return err
		}
	}

	if p.check(token.FILTER) && p.checkPeek(token.LPAREN) {
		p.nextToken()
		p.nextToken()
		if err := p.expect(token.WHERE); err != nil {
			return err
		}
		if fn.Filter, err = p.parseExpression(); err != nil {
			return err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return err
		}
	}

	p.parseNullTreatment()

	if p.match(token.OVER) {
		if p.check(token.LPAREN) {
			if fn.Window, err = p.parseWindowSpec(); err != nil {
				return err
			}
		} else {
			name, err := p.ParseIdentifier()
			if err != nil {
				return err
			}
			fn.Window = &core.WindowSpec{Name: name}
		}
	}
	return nil
}

// parseParenExpr parses a parenthesized expression or scalar subquery.
func (p *Parser) parseParenExpr() (core.Expr, error) {
	start := p.token.Pos
	p.nextToken() // (

	if p.check(token.SELECT) || p.check(token.WITH) {
		sel, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		sub := &core.SubqueryExpr{Select: sel}
		sub.SetSpan(start, p.Position())
		return sub, nil
	}

	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.check(token.COMMA) {
		return nil, &ParseError{Pos: start, Fragment: "(", Message: ErrRowValueUnsupported}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	paren := &core.ParenExpr{Expr: inner}
	paren.SetSpan(start, p.Position())
	return paren, nil
}

// parseCase parses CASE [operand] WHEN ... THEN ... [ELSE ...] END.
func (p *Parser) parseCase() (core.Expr, error) {
	start := p.token.Pos
	p.nextToken() // CASE
	expr := &core.CaseExpr{}
	var err error

	if !p.check(token.WHEN) {
		if expr.Operand, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	for p.match(token.WHEN) {
		var when core.WhenClause
		if when.Condition, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		if when.Result, err = p.parseExpression(); err != nil {
			return nil, err
		}
		expr.Whens = append(expr.Whens, when)
	}
	if len(expr.Whens) == 0 {
		return nil, p.unexpected("WHEN")
	}

	if p.match(token.ELSE) {
		if expr.Else, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.END); err != nil {
		return nil, err
	}

	expr.SetSpan(start, p.Position())
	return expr, nil
}

// parseCast parses CAST(expr AS type) and TRY_CAST(expr AS type).
func (p *Parser) parseCast(try bool) (core.Expr, error) {
	start := p.token.Pos
	p.nextToken() // CAST / TRY_CAST
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.AS); err != nil {
		return nil, err
	}
	typeName, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	cast := &core.CastExpr{Expr: inner, TypeName: typeName, Try: try}
	cast.SetSpan(start, p.Position())
	return cast, nil
}

// parseExists parses EXISTS (query). A leading NOT has been consumed.
func (p *Parser) parseExists(start token.Position, not bool) (core.Expr, error) {
	if err := p.expect(token.EXISTS); err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	sel, err := p.parseSelectStmt()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	exists := &core.ExistsExpr{Not: not, Select: sel}
	exists.SetSpan(start, p.Position())
	return exists, nil
}
