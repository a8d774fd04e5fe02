package parser

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Lexer tokenizes SQL input for one dialect.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)

	dialect *dialect.Dialect
	quotes  map[byte]byte // identifier open quote -> close quote
	symbols []string      // dialect symbols, longest first
}

// NewLexer creates a Lexer for the given input and dialect.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		dialect: d,
		quotes:  make(map[byte]byte),
	}
	for _, qp := range d.Identifiers.QuotePairs() {
		l.quotes[qp.Open] = qp.Close
	}
	for sym := range d.Symbols() {
		l.symbols = append(l.symbols, sym)
	}
	sortLongestFirst(l.symbols)
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	tok := token.Token{Pos: l.currentPos()}
	if l.atEOF() {
		tok.Type = token.EOF
		tok.End = tok.Pos
		return tok
	}

	// Dialect symbols first so "::" wins over ":".
	if sym, t, ok := l.matchDialectSymbol(); ok {
		tok.Type, tok.Literal = t, sym
		tok.End = l.currentPos()
		return tok
	}

	if closeQuote, ok := l.quotes[l.ch]; ok {
		return l.readQuotedIdentifier(tok, closeQuote)
	}

	switch l.ch {
	case '+':
		l.single(&tok, token.PLUS)
	case '-':
		l.single(&tok, token.MINUS)
	case '*':
		l.single(&tok, token.STAR)
	case '/':
		l.single(&tok, token.SLASH)
	case '%':
		l.single(&tok, token.PERCENT)
	case '=':
		l.single(&tok, token.EQ)
		if l.ch == '=' { // ==
			l.readChar()
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.double(&tok, token.LE, "<=")
		case '>':
			l.double(&tok, token.NE, "<>")
		default:
			l.single(&tok, token.LT)
		}
	case '>':
		if l.peekChar() == '=' {
			l.double(&tok, token.GE, ">=")
		} else {
			l.single(&tok, token.GT)
		}
	case '!':
		if l.peekChar() == '=' {
			l.double(&tok, token.NE, "!=")
		} else {
			l.single(&tok, token.ILLEGAL)
		}
	case '|':
		if l.peekChar() == '|' {
			l.double(&tok, token.DPIPE, "||")
		} else {
			l.single(&tok, token.ILLEGAL)
		}
	case '.':
		if isDigit(l.peekChar()) {
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
		} else {
			l.single(&tok, token.DOT)
		}
	case ',':
		l.single(&tok, token.COMMA)
	case ';':
		l.single(&tok, token.SEMICOLON)
	case '(':
		l.single(&tok, token.LPAREN)
	case ')':
		l.single(&tok, token.RPAREN)
	case '[':
		l.single(&tok, token.LBRACKET)
	case ']':
		l.single(&tok, token.RBRACKET)
	case ':':
		l.single(&tok, token.COLON)
	case '?':
		l.single(&tok, token.PARAM)
	case '$', '@':
		if l.ch == '$' && l.peekChar() == '$' {
			return l.readDollarString(tok)
		}
		tok.Type = token.PARAM
		tok.Literal = l.readParam()
		if tok.Literal == "$" || tok.Literal == "@" {
			tok.Type = token.ILLEGAL
		}
	case '\'':
		return l.readString(tok, '\'')
	case '"':
		// Dialects that do not quote identifiers with " treat it as a string.
		return l.readString(tok, '"')
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			tok.Literal = l.readIdentifier()
			tok.Type = l.lookupWord(tok.Literal)
		case isDigit(l.ch):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
		default:
			l.single(&tok, token.ILLEGAL)
		}
	}

	tok.End = l.currentPos()
	return tok
}

// lookupWord resolves a bare word to a builtin keyword, a keyword the
// dialect registered, or IDENT.
func (l *Lexer) lookupWord(word string) token.TokenType {
	lower := strings.ToLower(word)
	if t := token.LookupIdent(lower); t != token.IDENT {
		return t
	}
	if t, ok := l.dialect.LookupKeyword(lower); ok {
		return t
	}
	return token.IDENT
}

func (l *Lexer) single(tok *token.Token, t token.TokenType) {
	tok.Type = t
	tok.Literal = string(l.ch)
	l.readChar()
}

func (l *Lexer) double(tok *token.Token, t token.TokenType, lit string) {
	tok.Type = t
	tok.Literal = lit
	l.readChar()
	l.readChar()
}

// matchDialectSymbol checks if the current position matches a dialect-specific symbol.
func (l *Lexer) matchDialectSymbol() (string, token.TokenType, bool) {
	if len(l.symbols) == 0 {
		return "", 0, false
	}
	remaining := l.input[l.pos:]
	for _, sym := range l.symbols {
		if strings.HasPrefix(remaining, sym) {
			for range sym {
				l.readChar()
			}
			return sym, l.dialect.Symbols()[sym], true
		}
	}
	return "", 0, false
}

// skipWhitespaceAndComments skips whitespace, -- line comments and /* */ block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for !l.atEOF() && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if !l.atEOF() {
				l.readChar()
				l.readChar()
			}
			continue
		}

		return
	}
}

// readString reads a quoted string literal. Doubled quotes escape the
// quote character: 'it''s' -> it's. An unterminated string becomes an
// ILLEGAL token holding the raw text.
func (l *Lexer) readString(tok token.Token, quote byte) token.Token {
	start := l.pos
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.atEOF() {
			tok.Type = token.ILLEGAL
			tok.Literal = l.input[start:]
			tok.End = l.currentPos()
			return tok
		}
		if l.ch == quote {
			if l.peekChar() != quote {
				l.readChar() // skip closing quote
				break
			}
			l.readChar()
		}
		result.WriteByte(l.ch)
		l.readChar()
	}

	tok.Type = token.STRING
	tok.Literal = result.String()
	tok.End = l.currentPos()
	return tok
}

// readDollarString reads a $$ ... $$ body as a string literal.
func (l *Lexer) readDollarString(tok token.Token) token.Token {
	start := l.pos
	l.readChar()
	l.readChar()
	body := l.pos
	for !l.atEOF() && !(l.ch == '$' && l.peekChar() == '$') {
		l.readChar()
	}
	if l.atEOF() {
		tok.Type = token.ILLEGAL
		tok.Literal = l.input[start:]
		tok.End = l.currentPos()
		return tok
	}
	tok.Type = token.STRING
	tok.Literal = l.input[body:l.pos]
	l.readChar()
	l.readChar()
	tok.End = l.currentPos()
	return tok
}

// readQuotedIdentifier reads a quoted identifier. The closing quote is
// escaped by doubling it: "col""name" -> col"name, [a]]b] -> a]b.
func (l *Lexer) readQuotedIdentifier(tok token.Token, closeQuote byte) token.Token {
	start := l.pos
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.atEOF() {
			tok.Type = token.ILLEGAL
			tok.Literal = l.input[start:]
			tok.End = l.currentPos()
			return tok
		}
		if l.ch == closeQuote {
			if l.peekChar() != closeQuote {
				l.readChar() // skip closing quote
				break
			}
			l.readChar()
		}
		result.WriteByte(l.ch)
		l.readChar()
	}

	tok.Type = token.IDENT
	tok.Literal = result.String()
	tok.Quoted = true
	tok.End = l.currentPos()
	return tok
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readParam reads $1, $name or @name.
func (l *Lexer) readParam() string {
	start := l.pos
	l.readChar()
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	} else if l.ch == '.' && !isLetter(l.peekChar()) && l.peekChar() != '_' {
		l.readChar() // trailing dot: 1.
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter reports ASCII letters and any byte of a multi-byte UTF-8 sequence.
func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch >= 0x80
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func sortLongestFirst(syms []string) {
	sort.Slice(syms, func(i, j int) bool {
		if len(syms[i]) != len(syms[j]) {
			return len(syms[i]) > len(syms[j])
		}
		return syms[i] < syms[j]
	})
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string, d *dialect.Dialect) []token.Token {
	l := NewLexer(input, d)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}
