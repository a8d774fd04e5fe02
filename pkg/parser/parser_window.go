package parser

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Window specifications and type names.
//
// Grammar:
//
//	window_spec   → "(" [base_window] [PARTITION BY expr_list] [ORDER BY order_list] [frame] ")"
//	frame         → (ROWS | RANGE | GROUPS) (bound | BETWEEN bound AND bound) [EXCLUDE ...]
//	bound         → UNBOUNDED (PRECEDING | FOLLOWING) | CURRENT ROW | expr (PRECEDING | FOLLOWING)
//	type_name     → word {word} ["(" ... ")"] ["<" ... ">"] {"[" "]"}

// parseWindowSpec parses a parenthesized window specification.
func (p *Parser) parseWindowSpec() (*core.WindowSpec, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	spec := &core.WindowSpec{}
	var err error

	// OVER (w ORDER BY x) refines a named window.
	if p.check(token.IDENT) && !p.checkWord("GROUPS") {
		spec.Name = p.identName(p.token)
		p.nextToken()
	}

	if p.match(token.PARTITION) {
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		if spec.PartitionBy, err = p.parseExpressionList(); err != nil {
			return nil, err
		}
	}

	if p.match(token.ORDER) {
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		if spec.OrderBy, err = p.parseOrderByList(); err != nil {
			return nil, err
		}
	}

	if p.check(token.ROWS) || p.check(token.RANGE) || p.checkWord("GROUPS") {
		if spec.Frame, err = p.parseFrame(); err != nil {
			return nil, err
		}
	}

	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return spec, nil
}

// parseFrame parses a window frame clause.
func (p *Parser) parseFrame() (*core.FrameSpec, error) {
	frame := &core.FrameSpec{}
	switch {
	case p.match(token.ROWS):
		frame.Type = core.FrameRows
	case p.match(token.RANGE):
		frame.Type = core.FrameRange
	default:
		p.nextToken()
		frame.Type = core.FrameGroups
	}

	var err error
	if p.match(token.BETWEEN) {
		if frame.Start, err = p.parseFrameBound(); err != nil {
			return nil, err
		}
		if err := p.expect(token.AND); err != nil {
			return nil, err
		}
		if frame.End, err = p.parseFrameBound(); err != nil {
			return nil, err
		}
	} else if frame.Start, err = p.parseFrameBound(); err != nil {
		return nil, err
	}

	// EXCLUDE CURRENT ROW | GROUP | TIES | NO OTHERS
	if p.matchWord("EXCLUDE") {
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			p.nextToken()
		}
	}
	return frame, nil
}

// parseFrameBound parses a single frame bound.
func (p *Parser) parseFrameBound() (*core.FrameBound, error) {
	switch {
	case p.match(token.UNBOUNDED):
		switch {
		case p.match(token.PRECEDING):
			return &core.FrameBound{Type: core.FrameUnboundedPreceding}, nil
		case p.match(token.FOLLOWING):
			return &core.FrameBound{Type: core.FrameUnboundedFollowing}, nil
		}
		return nil, p.unexpected("PRECEDING or FOLLOWING")

	case p.check(token.CURRENT) && p.checkPeek(token.ROW):
		p.nextToken()
		p.nextToken()
		return &core.FrameBound{Type: core.FrameCurrentRow}, nil
	}

	offset, err := p.parseExpr(spi.PrecedenceAnd)
	if err != nil {
		return nil, err
	}
	switch {
	case p.match(token.PRECEDING):
		return &core.FrameBound{Type: core.FrameExprPreceding, Offset: offset}, nil
	case p.match(token.FOLLOWING):
		return &core.FrameBound{Type: core.FrameExprFollowing, Offset: offset}, nil
	}
	return nil, p.unexpected("PRECEDING or FOLLOWING")
}

// typeSuffixes are words that continue a multi-word type name.
var typeSuffixes = map[string]bool{
	"PRECISION": true, "VARYING": true, "UNSIGNED": true, "SIGNED": true,
	"ZONE": true, "LOCAL": true, "TIME": true,
}

// genericTypes take angle-bracket parameters: ARRAY<INT>, MAP<STRING, INT>.
var genericTypes = map[string]bool{"ARRAY": true, "STRUCT": true, "MAP": true, "OBJECT": true}

// parseTypeName parses a data type and returns it upper-cased with
// single spaces: VARCHAR(10), DOUBLE PRECISION, ARRAY<INT>, INT[].
func (p *Parser) parseTypeName() (string, error) {
	if !isIdentLike(p.token) && !token.IsKeyword(p.token.Type) {
		return "", p.unexpected("type name")
	}
	startOff := p.token.Pos.Offset
	generic := genericTypes[strings.ToUpper(p.token.Literal)]
	p.nextToken()

	for {
		switch {
		case p.check(token.IDENT) && !p.token.Quoted && typeSuffixes[strings.ToUpper(p.token.Literal)]:
			p.nextToken()
		case (p.check(token.WITH) || p.checkWord("WITHOUT")) && (isWord(p.peek, "TIME") || isWord(p.peek, "LOCAL")):
			// TIMESTAMP WITH TIME ZONE
			p.nextToken()
		case p.check(token.LPAREN):
			if err := p.skipParens(); err != nil {
				return "", err
			}
		case generic && p.check(token.LT):
			if err := p.skipAngles(); err != nil {
				return "", err
			}
		case p.check(token.LBRACKET) && p.checkPeek(token.RBRACKET):
			p.nextToken()
			p.nextToken()
		default:
			raw := p.input[startOff:min(p.last.End.Offset, len(p.input))]
			return strings.ToUpper(strings.Join(strings.Fields(raw), " ")), nil
		}
	}
}

// skipAngles consumes a balanced <...> group of a parameterized type.
func (p *Parser) skipAngles() error {
	depth := 0
	for {
		switch p.token.Type {
		case token.EOF:
			return p.unexpected(">")
		case token.LT:
			depth++
		case token.GT:
			depth--
		}
		p.nextToken()
		if depth == 0 {
			return nil
		}
	}
}
