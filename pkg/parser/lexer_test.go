package parser_test

import (
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects" // register dialects
	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/leapstack-labs/sqllineage/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDialect(t *testing.T, name string) *dialect.Dialect {
	t.Helper()
	d, ok := dialect.Get(name)
	require.True(t, ok, "dialect %s not registered", name)
	return d
}

func tokenTypes(tokens []token.Token) []token.TokenType {
	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexerBasicTokens(t *testing.T) {
	tokens := parser.Tokenize("SELECT a, 1.5 FROM t WHERE b <> 'x' -- trailing\n", mustDialect(t, "ansi"))

	assert.Equal(t, []token.TokenType{
		token.SELECT, token.IDENT, token.COMMA, token.NUMBER, token.FROM, token.IDENT,
		token.WHERE, token.IDENT, token.NE, token.STRING, token.EOF,
	}, tokenTypes(tokens))
	assert.Equal(t, "1.5", tokens[3].Literal)
	assert.Equal(t, "x", tokens[9].Literal)
}

func TestLexerOperators(t *testing.T) {
	tokens := parser.Tokenize("a <= b >= c != d || e % f", mustDialect(t, "ansi"))

	assert.Equal(t, []token.TokenType{
		token.IDENT, token.LE, token.IDENT, token.GE, token.IDENT, token.NE,
		token.IDENT, token.DPIPE, token.IDENT, token.PERCENT, token.IDENT, token.EOF,
	}, tokenTypes(tokens))
}

func TestLexerStringEscapes(t *testing.T) {
	tokens := parser.Tokenize(`'it''s' $$body$$`, mustDialect(t, "postgres"))

	require.Len(t, tokens, 3)
	assert.Equal(t, token.STRING, tokens[0].Type)
	assert.Equal(t, "it's", tokens[0].Literal)
	assert.Equal(t, token.STRING, tokens[1].Type)
	assert.Equal(t, "body", tokens[1].Literal)
}

func TestLexerQuotedIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		input   string
		want    string
	}{
		{name: "ansi double quote", dialect: "ansi", input: `"Order Id"`, want: "Order Id"},
		{name: "doubled quote escape", dialect: "postgres", input: `"a""b"`, want: `a"b`},
		{name: "mysql backtick", dialect: "mysql", input: "`order`", want: "order"},
		{name: "databricks backtick", dialect: "databricks", input: "`my col`", want: "my col"},
		{name: "tsql bracket", dialect: "tsql", input: "[Order Details]", want: "Order Details"},
		{name: "tsql double quote", dialect: "tsql", input: `"Order Details"`, want: "Order Details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.Tokenize(tt.input, mustDialect(t, tt.dialect))
			require.Len(t, tokens, 2)
			assert.Equal(t, token.IDENT, tokens[0].Type)
			assert.True(t, tokens[0].Quoted)
			assert.Equal(t, tt.want, tokens[0].Literal)
		})
	}
}

func TestLexerMySQLDoubleQuoteIsString(t *testing.T) {
	tokens := parser.Tokenize(`"hello"`, mustDialect(t, "mysql"))

	require.Len(t, tokens, 2)
	assert.Equal(t, token.STRING, tokens[0].Type)
	assert.Equal(t, "hello", tokens[0].Literal)
}

func TestLexerDialectKeywords(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		input   string
		keyword bool
	}{
		{name: "qualify in snowflake", dialect: "snowflake", input: "qualify", keyword: true},
		{name: "qualify in duckdb", dialect: "duckdb", input: "QUALIFY", keyword: true},
		{name: "qualify in postgres", dialect: "postgres", input: "qualify", keyword: false},
		{name: "ilike in postgres", dialect: "postgres", input: "ILIKE", keyword: true},
		{name: "ilike in ansi", dialect: "ansi", input: "ilike", keyword: false},
		{name: "top in tsql", dialect: "tsql", input: "TOP", keyword: true},
		{name: "top in mysql", dialect: "mysql", input: "top", keyword: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.Tokenize(tt.input, mustDialect(t, tt.dialect))
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.keyword, token.IsDynamic(tokens[0].Type))
		})
	}
}

func TestLexerCastOperator(t *testing.T) {
	withCast := parser.Tokenize("a::int", mustDialect(t, "postgres"))
	assert.Equal(t, []token.TokenType{token.IDENT, dialect.TokenDcolon, token.IDENT, token.EOF}, tokenTypes(withCast))

	withoutCast := parser.Tokenize("a::int", mustDialect(t, "ansi"))
	assert.Equal(t, []token.TokenType{token.IDENT, token.COLON, token.COLON, token.IDENT, token.EOF}, tokenTypes(withoutCast))
}

func TestLexerParams(t *testing.T) {
	tokens := parser.Tokenize("? $1 @name", mustDialect(t, "ansi"))

	assert.Equal(t, []token.TokenType{token.PARAM, token.PARAM, token.PARAM, token.EOF}, tokenTypes(tokens))
	assert.Equal(t, "$1", tokens[1].Literal)
	assert.Equal(t, "@name", tokens[2].Literal)
}

func TestLexerPositions(t *testing.T) {
	tokens := parser.Tokenize("SELECT a\n  FROM t", mustDialect(t, "ansi"))

	require.Len(t, tokens, 5)
	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, tokens[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 8, Offset: 7}, tokens[1].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 11}, tokens[2].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 7, Offset: 15}, tokens[2].End)
}

func TestLexerUnterminated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "string", input: "'abc"},
		{name: "identifier", input: `"abc`},
		{name: "dollar string", input: "$$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.Tokenize(tt.input, mustDialect(t, "postgres"))
			require.Len(t, tokens, 2)
			assert.Equal(t, token.ILLEGAL, tokens[0].Type)
			assert.Equal(t, tt.input, tokens[0].Literal)
		})
	}
}
