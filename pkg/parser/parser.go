// Package parser provides SQL parsing with dialect-aware syntax.
//
// # Usage
//
//	d, _ := dialect.Get("snowflake")
//	stmts, err := parser.Parse("CREATE VIEW v AS SELECT a FROM t; SELECT 1", d)
//
// Parse splits a script on top-level semicolons and parses every piece on
// its own, so one broken statement does not hide the others. ParseStatement
// parses exactly one statement.
//
// # Grammar Overview
//
// The parser is a recursive descent parser with Pratt expression parsing:
//
//	statement     → select | insert | update | delete | merge | create | unknown
//	select        → [WITH [RECURSIVE] cte_list] select_body
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL|DISTINCT] select_body]
//	select_core   → SELECT [DISTINCT] [TOP n] select_list [FROM from_clause]
//	                {dialect clause}
//
// Clauses after FROM (WHERE, GROUP BY, QUALIFY, ...) are supplied by the
// dialect, see pkg/dialect. See each file for detailed grammar rules.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	input    string
	lexer    *Lexer
	dialect  *dialect.Dialect
	token    token.Token // current token
	peek     token.Token // lookahead token
	peek2    token.Token // second lookahead token
	last     token.Token // last consumed token
	errors   []*ParseError
	warnings []Warning
}

var _ spi.ParserOps = (*Parser)(nil)

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string, d *dialect.Dialect) *Parser {
	p := &Parser{
		input:   sql,
		lexer:   NewLexer(sql, d),
		dialect: d,
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Statement is one statement of a script.
type Statement struct {
	Index    int
	Text     string
	Pos      token.Position // start of Text within the script
	Stmt     core.Stmt
	Warnings []Warning
	Err      error
}

// Parse splits sql into statements and parses each one independently.
// Positions in errors and warnings refer to the whole script.
func Parse(sql string, d *dialect.Dialect) ([]*Statement, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}

	segments := Split(sql, d)
	stmts := make([]*Statement, 0, len(segments))
	for i, seg := range segments {
		st := &Statement{Index: i, Text: seg.Text, Pos: seg.Pos}
		stmt, warnings, err := ParseStatement(seg.Text, d)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Pos = perr.Pos.Shift(seg.Pos)
			}
			st.Err = err
		} else {
			st.Stmt = stmt
			for _, w := range warnings {
				w.Pos = w.Pos.Shift(seg.Pos)
				st.Warnings = append(st.Warnings, w)
			}
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

// ParseStatement parses exactly one statement. A single trailing
// semicolon is allowed. No AST is returned together with an error.
func ParseStatement(sql string, d *dialect.Dialect) (core.Stmt, []Warning, error) {
	if d == nil {
		return nil, nil, dialect.ErrDialectRequired
	}

	p := NewParser(sql, d)
	if p.check(token.EOF) || p.check(token.SEMICOLON) {
		return nil, nil, p.errorf(ErrEmptyStatement)
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, nil, err
	}
	if len(p.errors) > 0 {
		return nil, nil, p.errors[0]
	}

	p.match(token.SEMICOLON)
	if !p.check(token.EOF) {
		return nil, nil, p.errorf(ErrTrailingInput, describe(p.token))
	}
	return stmt, p.warnings, nil
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() *dialect.Dialect {
	return p.dialect
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.last = p.token
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise returns an error.
func (p *Parser) expect(t token.TokenType) error {
	if p.check(t) {
		p.nextToken()
		return nil
	}
	return p.unexpected(t.String())
}

// isWord reports whether tok is the bare word w (case-insensitive).
// Soft keywords such as VIEW or MATCHED are lexed as identifiers.
func isWord(tok token.Token, w string) bool {
	return tok.Type == token.IDENT && !tok.Quoted && strings.EqualFold(tok.Literal, w)
}

// checkWord reports whether the current token is the bare word w.
func (p *Parser) checkWord(w string) bool {
	return isWord(p.token, w)
}

// matchWord consumes the current token if it is the bare word w.
func (p *Parser) matchWord(w string) bool {
	if p.checkWord(w) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expectWord(w string) error {
	if p.matchWord(w) {
		return nil
	}
	return p.unexpected(w)
}

// errorf builds a ParseError at the current token.
func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{
		Pos:      p.token.Pos,
		Fragment: p.fragment(p.token),
		Message:  fmt.Sprintf(format, args...),
	}
}

// unexpected reports the current token where something else was expected.
func (p *Parser) unexpected(expected string) *ParseError {
	if p.check(token.ILLEGAL) {
		return p.illegal()
	}
	if expected == "" {
		return p.errorf(ErrUnexpectedInput, describe(p.token))
	}
	return p.errorf(ErrUnexpectedToken, describe(p.token), expected)
}

func (p *Parser) illegal() *ParseError {
	lit := p.token.Literal
	if len(lit) > 1 && quoteByte(lit[0]) {
		return p.errorf(ErrUnterminatedQuote)
	}
	return p.errorf(ErrIllegalCharacter, lit)
}

func quoteByte(ch byte) bool {
	return ch == '\'' || ch == '"' || ch == '`' || ch == '[' || ch == '$'
}

// fragment returns the source text of a token, shortened for messages.
func (p *Parser) fragment(tok token.Token) string {
	if tok.Type == token.EOF {
		return ""
	}
	frag := tok.Literal
	if tok.End.Offset > tok.Pos.Offset && tok.End.Offset <= len(p.input) {
		frag = p.input[tok.Pos.Offset:tok.End.Offset]
	}
	if len(frag) > 40 {
		frag = frag[:40] + "..."
	}
	return frag
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return "identifier " + tok.Literal
	case token.NUMBER:
		return "number " + tok.Literal
	case token.STRING:
		return "string literal"
	default:
		return tok.Type.String()
	}
}

// ---------- Keyword Helpers ----------

// nonReserved are builtin keywords that may still name columns and
// functions: first, last, left(...), range, row, ...
var nonReserved = map[token.TokenType]bool{
	token.FIRST:     true,
	token.LAST:      true,
	token.FILTER:    true,
	token.RANGE:     true,
	token.ROW:       true,
	token.ROWS:      true,
	token.CURRENT:   true,
	token.NULLS:     true,
	token.PARTITION: true,
	token.PRECEDING: true,
	token.FOLLOWING: true,
	token.UNBOUNDED: true,
	token.WITHIN:    true,
}

// isIdentLike reports whether tok can be read as an identifier.
func isIdentLike(tok token.Token) bool {
	return tok.Type == token.IDENT || nonReserved[tok.Type]
}

// identName normalizes an identifier token with the dialect rules.
func (p *Parser) identName(tok token.Token) string {
	if tok.Quoted {
		return p.dialect.NormalizeQuoted(tok.Literal)
	}
	return p.dialect.NormalizeName(tok.Literal)
}

// isJoinStart returns true if the current token begins a join.
func (p *Parser) isJoinStart() bool {
	switch p.token.Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL,
		token.CROSS, token.NATURAL:
		return true
	case token.OUTER:
		return isWord(p.peek, "APPLY")
	case token.IDENT:
		return !p.token.Quoted && joinWords[strings.ToUpper(p.token.Literal)] &&
			(p.checkPeek(token.JOIN) || p.checkPeek(token.LEFT))
	}
	return false
}

// atClauseBoundary reports whether the current token ends a clause at
// paren depth zero.
func (p *Parser) atClauseBoundary() bool {
	switch p.token.Type {
	case token.EOF, token.SEMICOLON, token.COMMA, token.RPAREN,
		token.UNION, token.INTERSECT, token.EXCEPT, token.FROM, token.FOR:
		return true
	}
	if p.isJoinStart() || p.dialect.IsClauseToken(p.token.Type) {
		return true
	}
	return p.dialect.FromItemHandler(p.token.Type) != nil
}

// warn records an unsupported construct at pos.
func (p *Parser) warn(pos token.Position, construct string) {
	p.warnings = append(p.warnings, Warning{Pos: pos, Construct: construct})
}

// skipToEnd tolerates a trailing construct by consuming the rest of the
// statement.
func (p *Parser) skipToEnd(construct string) {
	p.warn(p.token.Pos, construct)
	for !p.check(token.EOF) && !p.check(token.SEMICOLON) {
		p.nextToken()
	}
}

// skipParens consumes a balanced parenthesized group starting at the
// current LPAREN.
func (p *Parser) skipParens() error {
	if err := p.expect(token.LPAREN); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		switch p.token.Type {
		case token.EOF:
			return p.unexpected(")")
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		}
		p.nextToken()
	}
	return nil
}

// ---------- spi.ParserOps Implementation ----------
// These methods implement the spi.ParserOps interface for dialect clause handlers.

// Token returns the current token (implements spi.ParserOps).
func (p *Parser) Token() token.Token {
	return p.token
}

// Peek returns the lookahead token (implements spi.ParserOps).
func (p *Parser) Peek() token.Token {
	return p.peek
}

// Match consumes the current token if it matches (implements spi.ParserOps).
func (p *Parser) Match(t token.TokenType) bool {
	return p.match(t)
}

// Expect consumes the current token if it matches, otherwise returns an error (implements spi.ParserOps).
func (p *Parser) Expect(t token.TokenType) error {
	return p.expect(t)
}

// NextToken advances to the next token (implements spi.ParserOps).
func (p *Parser) NextToken() {
	p.nextToken()
}

// Check returns true if the current token is of the given type (implements spi.ParserOps).
func (p *Parser) Check(t token.TokenType) bool {
	return p.check(t)
}

// MatchWord consumes a non-reserved word (implements spi.ParserOps).
func (p *Parser) MatchWord(word string) bool {
	return p.matchWord(word)
}

// ParseExpression parses an expression (implements spi.ParserOps).
func (p *Parser) ParseExpression() (core.Expr, error) {
	return p.parseExpression()
}

// ParseExpressionList parses a comma-separated list of expressions (implements spi.ParserOps).
func (p *Parser) ParseExpressionList() ([]core.Expr, error) {
	return p.parseExpressionList()
}

// ParseOrderByList parses an ORDER BY list (implements spi.ParserOps).
func (p *Parser) ParseOrderByList() ([]core.OrderByItem, error) {
	return p.parseOrderByList()
}

// ParseIdentifier parses and normalizes an identifier (implements spi.ParserOps).
func (p *Parser) ParseIdentifier() (string, error) {
	if !isIdentLike(p.token) {
		return "", p.unexpected("identifier")
	}
	name := p.identName(p.token)
	p.nextToken()
	return name, nil
}

// ParseWindowSpec parses a parenthesized window specification (implements spi.ParserOps).
func (p *Parser) ParseWindowSpec() (*core.WindowSpec, error) {
	return p.parseWindowSpec()
}

// ParseTypeName parses a data type name (implements spi.ParserOps).
func (p *Parser) ParseTypeName() (string, error) {
	return p.parseTypeName()
}

// SkipClause consumes tokens up to the next clause boundary at the current
// paren depth and records a warning (implements spi.ParserOps).
func (p *Parser) SkipClause(construct string) {
	p.warn(p.last.Pos, construct)
	depth := 0
	for {
		switch {
		case p.check(token.EOF):
			return
		case p.check(token.LPAREN):
			depth++
		case p.check(token.RPAREN):
			if depth == 0 {
				return
			}
			depth--
		case depth == 0 && p.atClauseBoundary():
			return
		}
		p.nextToken()
	}
}

// AddError adds a parse error (implements spi.ParserOps).
func (p *Parser) AddError(msg string) {
	p.errors = append(p.errors, p.errorf("%s", msg))
}

// Position returns the end of the last consumed token (implements spi.ParserOps).
func (p *Parser) Position() token.Position {
	return p.last.End
}
