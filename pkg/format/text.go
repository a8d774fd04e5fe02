package format

import (
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// GeneralizeText generalizes raw SQL at the token level. It serves
// statements whose AST does not keep their full text, such as DDL the
// parser does not model.
func GeneralizeText(sql string, d *dialect.Dialect) string {
	p := newPrinter(d, true)
	var prev token.Token
	for i, tok := range parser.Tokenize(sql, d) {
		if tok.Type == token.EOF || tok.Type == token.SEMICOLON {
			break
		}
		if i > 0 && spaceBetween(prev, tok) {
			p.space()
		}
		switch {
		case tok.Type == token.STRING || tok.Type == token.NUMBER || tok.Type == token.PARAM:
			p.write(Placeholder)
		case tok.Type == token.IDENT && tok.Quoted:
			p.write(d.QuoteIdentifier(d.NormalizeQuoted(tok.Literal)))
		case tok.Type == token.IDENT, token.IsKeyword(tok.Type), token.IsDynamic(tok.Type):
			// Unmodeled statement words lex as identifiers.
			p.keyword(tok.Literal)
		default:
			p.write(tok.Literal)
		}
		prev = tok
	}
	return p.String()
}

func spaceBetween(prev, cur token.Token) bool {
	switch prev.Type {
	case token.DOT, token.LPAREN, token.LBRACKET:
		return false
	}
	switch cur.Type {
	case token.DOT, token.RPAREN, token.COMMA, token.RBRACKET:
		return false
	case token.LPAREN:
		// fn(x) but IN (x)
		return prev.Type != token.IDENT
	}
	return true
}
