package parser

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Expression precedence parsing using Pratt parser with dialect-aware precedence.
//
// Precedence levels (from spi package):
//
//	PrecedenceNone       = 0
//	PrecedenceOr         = 1
//	PrecedenceAnd        = 2
//	PrecedenceNot        = 3
//	PrecedenceComparison = 4  (=, <>, <, >, <=, >=, IS, IN, BETWEEN, LIKE, ILIKE)
//	PrecedenceAddition   = 5  (+, -, ||)
//	PrecedenceMultiply   = 6  (*, /, %)
//	PrecedenceUnary      = 7  (-, +)
//	PrecedencePostfix    = 8  (::, [], :)
//
// Operators only bind when the dialect registered them, so ILIKE in ANSI
// SQL is an identifier and x::int is a syntax error.

// binaryOps maps builtin infix tokens to their canonical spelling.
var binaryOps = map[token.TokenType]string{
	token.OR:      "OR",
	token.AND:     "AND",
	token.EQ:      "=",
	token.NE:      "<>",
	token.LT:      "<",
	token.GT:      ">",
	token.LE:      "<=",
	token.GE:      ">=",
	token.PLUS:    "+",
	token.MINUS:   "-",
	token.DPIPE:   "||",
	token.STAR:    "*",
	token.SLASH:   "/",
	token.PERCENT: "%",
}

// parseExpression parses a full expression.
func (p *Parser) parseExpression() (core.Expr, error) {
	return p.parseExpr(spi.PrecedenceNone)
}

// parseExpr parses operators binding tighter than minPrec.
func (p *Parser) parseExpr(minPrec int) (core.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		prec := p.infixPrecedence()
		if prec == spi.PrecedenceNone || prec <= minPrec {
			return left, nil
		}
		if left, err = p.parseInfix(left, prec); err != nil {
			return nil, err
		}
	}
}

// infixPrecedence returns the precedence of the current token as an infix
// operator, or PrecedenceNone.
func (p *Parser) infixPrecedence() int {
	if p.check(token.NOT) {
		switch p.peek.Type {
		case token.LIKE, token.IN, token.BETWEEN,
			dialect.TokenIlike, dialect.TokenRlike, dialect.TokenRegexp:
			return p.dialect.Precedence(p.peek.Type)
		}
		return spi.PrecedenceNone
	}
	return p.dialect.Precedence(p.token.Type)
}

// parseInfix parses the operator at the current token with left as its
// left operand.
func (p *Parser) parseInfix(left core.Expr, prec int) (core.Expr, error) {
	if handler := p.dialect.InfixHandler(p.token.Type); handler != nil {
		p.nextToken()
		return handler(p, left)
	}

	not := p.match(token.NOT)
	switch p.token.Type {
	case token.LIKE, dialect.TokenIlike, dialect.TokenRlike, dialect.TokenRegexp:
		return p.parseLike(left, not)
	case token.IN:
		return p.parseIn(left, not)
	case token.BETWEEN:
		return p.parseBetween(left, not)
	case token.IS:
		return p.parseIs(left)
	case token.LBRACKET:
		return p.parseIndex(left)
	}

	op, ok := binaryOps[p.token.Type]
	if !ok {
		op = p.token.Type.String()
	}
	p.nextToken()

	right, err := p.parseExpr(prec)
	if err != nil {
		return nil, err
	}
	expr := &core.BinaryExpr{Left: left, Op: op, Right: right}
	expr.SetSpan(left.Pos(), p.Position())
	return expr, nil
}

// parseLike parses [NOT] LIKE|ILIKE|RLIKE|REGEXP pattern [ESCAPE char].
func (p *Parser) parseLike(left core.Expr, not bool) (core.Expr, error) {
	op := p.token.Type.String()
	p.nextToken()

	pattern, err := p.parseExpr(spi.PrecedenceComparison)
	if err != nil {
		return nil, err
	}
	if p.matchWord("ESCAPE") {
		if _, err := p.parsePrimary(); err != nil {
			return nil, err
		}
	}
	like := &core.LikeExpr{Expr: left, Not: not, Op: op, Pattern: pattern}
	like.SetSpan(left.Pos(), p.Position())
	return like, nil
}

// parseIn parses [NOT] IN (list) or [NOT] IN (query).
func (p *Parser) parseIn(left core.Expr, not bool) (core.Expr, error) {
	p.nextToken() // IN
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	in := &core.InExpr{Expr: left, Not: not}
	var err error
	if p.check(token.SELECT) || p.check(token.WITH) {
		in.Query, err = p.parseSelectStmt()
	} else {
		in.Values, err = p.parseExpressionList()
	}
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	in.SetSpan(left.Pos(), p.Position())
	return in, nil
}

// parseBetween parses [NOT] BETWEEN [SYMMETRIC] low AND high.
func (p *Parser) parseBetween(left core.Expr, not bool) (core.Expr, error) {
	p.nextToken() // BETWEEN
	p.matchWord("SYMMETRIC")

	// Bounds stop before AND.
	low, err := p.parseExpr(spi.PrecedenceComparison)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.AND); err != nil {
		return nil, err
	}
	high, err := p.parseExpr(spi.PrecedenceComparison)
	if err != nil {
		return nil, err
	}

	between := &core.BetweenExpr{Expr: left, Not: not, Low: low, High: high}
	between.SetSpan(left.Pos(), p.Position())
	return between, nil
}

// parseIs parses IS [NOT] NULL|TRUE|FALSE|UNKNOWN and IS [NOT] DISTINCT FROM.
func (p *Parser) parseIs(left core.Expr) (core.Expr, error) {
	p.nextToken() // IS
	not := p.match(token.NOT)

	var expr core.Expr
	switch {
	case p.match(token.NULL), p.matchWord("UNKNOWN"):
		expr = &core.IsNullExpr{Expr: left, Not: not}
	case p.match(token.TRUE):
		expr = &core.IsBoolExpr{Expr: left, Not: not, Value: true}
	case p.match(token.FALSE):
		expr = &core.IsBoolExpr{Expr: left, Not: not, Value: false}
	case p.match(token.DISTINCT):
		if err := p.expect(token.FROM); err != nil {
			return nil, err
		}
		right, err := p.parseExpr(spi.PrecedenceComparison)
		if err != nil {
			return nil, err
		}
		op := "IS DISTINCT FROM"
		if not {
			op = "IS NOT DISTINCT FROM"
		}
		bin := &core.BinaryExpr{Left: left, Op: op, Right: right}
		bin.SetSpan(left.Pos(), p.Position())
		return bin, nil
	default:
		return nil, p.unexpected("NULL, TRUE, FALSE or DISTINCT FROM")
	}

	switch e := expr.(type) {
	case *core.IsNullExpr:
		e.SetSpan(left.Pos(), p.Position())
	case *core.IsBoolExpr:
		e.SetSpan(left.Pos(), p.Position())
	}
	return expr, nil
}

// parseIndex parses expr[index].
func (p *Parser) parseIndex(left core.Expr) (core.Expr, error) {
	p.nextToken() // [
	index, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	expr := &core.IndexExpr{Expr: left, Index: index}
	expr.SetSpan(left.Pos(), p.Position())
	return expr, nil
}
