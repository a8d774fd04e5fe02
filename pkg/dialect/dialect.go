// Package dialect provides SQL dialect configuration and function classification.
//
// This package contains the public contract for dialect definitions used by the parser,
// lineage resolver, and generalizer. Concrete dialect implementations are registered
// from pkg/dialects/*/ packages.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Type classifies how a function affects lineage.
type Type int

const (
	// LineagePassthrough means all input columns pass through (default for unknown functions).
	LineagePassthrough Type = iota
	// LineageAggregate means many rows aggregate to one value (SUM, COUNT, etc.).
	LineageAggregate
	// LineageGenerator means function generates values with no upstream columns (NOW, UUID, etc.).
	LineageGenerator
	// LineageWindow means function requires OVER clause (ROW_NUMBER, LAG, etc.).
	LineageWindow
	// LineageTable means function returns rows and acts as a table source (read_csv, generate_series, etc.).
	LineageTable
)

// String returns the string representation of Type.
func (t Type) String() string {
	switch t {
	case LineagePassthrough:
		return "passthrough"
	case LineageAggregate:
		return "aggregate"
	case LineageGenerator:
		return "generator"
	case LineageWindow:
		return "window"
	case LineageTable:
		return "table"
	default:
		return "unknown"
	}
}

// ClauseDef bundles clause parsing logic with storage destination.
type ClauseDef struct {
	Token    token.TokenType   // The trigger token for this clause (e.g., token.WHERE)
	Handler  spi.ClauseHandler // Handler function to parse the clause
	Slot     spi.ClauseSlot    // Where to store the parsed result
	Keywords []string          // Keywords to print for this clause (e.g. "GROUP", "BY")
}

// OperatorDef registers an infix operator.
type OperatorDef struct {
	Token      token.TokenType
	Symbol     string // lexer symbol for non-keyword operators, e.g. "::"
	Precedence int
	Handler    spi.InfixHandler // optional custom parsing
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers core.IdentifierConfig

	// DefaultSchema is the schema unqualified names live in when the caller
	// does not configure one ("main" for DuckDB, "public" for Postgres).
	DefaultSchema string

	// Function classifications (normalized to upper case)
	aggregates     map[string]struct{}
	generators     map[string]struct{}
	windows        map[string]struct{}
	tableFunctions map[string]struct{}

	// Parsing behavior
	clauseSequence []token.TokenType
	clauseDefs     map[token.TokenType]ClauseDef
	symbols        map[string]token.TokenType
	dynamicKw      map[string]token.TokenType
	precedence     map[token.TokenType]int
	infixHandlers  map[token.TokenType]spi.InfixHandler
	fromItems      map[token.TokenType]spi.FromItemHandler

	supportsTop         bool
	supportsStarExclude bool
}

// FunctionLineageType returns the lineage classification for a function.
func (d *Dialect) FunctionLineageType(name string) Type {
	normalized := strings.ToUpper(name)

	// Table functions take priority: generate_series is a row source even
	// where a scalar overload exists.
	if _, ok := d.tableFunctions[normalized]; ok {
		return LineageTable
	}
	if _, ok := d.aggregates[normalized]; ok {
		return LineageAggregate
	}
	if _, ok := d.generators[normalized]; ok {
		return LineageGenerator
	}
	if _, ok := d.windows[normalized]; ok {
		return LineageWindow
	}
	return LineagePassthrough
}

// NormalizeName normalizes an unquoted identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormLowercase, core.NormCaseInsensitive:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// NormalizeQuoted normalizes a quoted identifier. Only case-insensitive
// dialects fold quoted names.
func (d *Dialect) NormalizeQuoted(name string) string {
	if d.Identifiers.Normalization == core.NormCaseInsensitive {
		return strings.ToLower(name)
	}
	return name
}

// IsAggregate returns true if the function is an aggregate function.
func (d *Dialect) IsAggregate(name string) bool {
	return d.FunctionLineageType(name) == LineageAggregate
}

// IsGenerator returns true if the function generates values without input columns.
func (d *Dialect) IsGenerator(name string) bool {
	return d.FunctionLineageType(name) == LineageGenerator
}

// IsWindow returns true if the function is a window-only function.
func (d *Dialect) IsWindow(name string) bool {
	return d.FunctionLineageType(name) == LineageWindow
}

// IsTableFunction returns true if the function acts as a table source.
func (d *Dialect) IsTableFunction(name string) bool {
	return d.FunctionLineageType(name) == LineageTable
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// NeedsQuoting reports whether a normalized identifier must be quoted to
// survive a round trip through the lexer.
func (d *Dialect) NeedsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		isLetter := ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		if !isLetter && (i == 0 || ch < '0' || ch > '9') {
			return true
		}
	}
	if d.NormalizeName(name) != name {
		return true
	}
	lower := strings.ToLower(name)
	if token.LookupIdent(lower) != token.IDENT {
		return true
	}
	_, isDynamic := d.dynamicKw[lower]
	return isDynamic
}

// ---------- Parsing Behavior Methods ----------

// ClauseSequence returns the ordered list of clause token types for this dialect.
func (d *Dialect) ClauseSequence() []token.TokenType {
	return d.clauseSequence
}

// ClauseDef returns the definition (handler + slot) for a clause token type.
func (d *Dialect) ClauseDef(t token.TokenType) (ClauseDef, bool) {
	def, ok := d.clauseDefs[t]
	return def, ok
}

// IsClauseToken returns true if this dialect supports the given clause token.
func (d *Dialect) IsClauseToken(t token.TokenType) bool {
	_, ok := d.clauseDefs[t]
	return ok
}

// Symbols returns the custom operators map for lexer symbol matching.
func (d *Dialect) Symbols() map[string]token.TokenType {
	return d.symbols
}

// LookupKeyword returns the token type for a dynamic keyword.
// Returns the token type and true if found, or IDENT and false if not.
func (d *Dialect) LookupKeyword(name string) (token.TokenType, bool) {
	if t, ok := d.dynamicKw[strings.ToLower(name)]; ok {
		return t, true
	}
	return token.IDENT, false
}

// Precedence returns the precedence level for an operator token.
// Returns 0 (PrecedenceNone) if the operator is not recognized.
func (d *Dialect) Precedence(t token.TokenType) int {
	if p, ok := d.precedence[t]; ok {
		return p
	}
	return spi.PrecedenceNone
}

// InfixHandler returns the custom infix handler for an operator token.
func (d *Dialect) InfixHandler(t token.TokenType) spi.InfixHandler {
	return d.infixHandlers[t]
}

// FromItemHandler returns the handler for a FROM item token type.
func (d *Dialect) FromItemHandler(t token.TokenType) spi.FromItemHandler {
	return d.fromItems[t]
}

// SupportsTop reports whether SELECT TOP n is accepted.
func (d *Dialect) SupportsTop() bool {
	return d.supportsTop
}

// SupportsStarExclude reports whether * EXCLUDE (...) / * EXCEPT (...) is accepted.
func (d *Dialect) SupportsStarExclude() bool {
	return d.supportsStarExclude
}

// ---------- Builder ----------

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
	config  *core.DialectConfig // Optional config for auto-wiring features
}

func newDialect(name string) *Dialect {
	return &Dialect{
		Name: name,
		Identifiers: core.IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: core.NormLowercase,
		},
		aggregates:     make(map[string]struct{}),
		generators:     make(map[string]struct{}),
		windows:        make(map[string]struct{}),
		tableFunctions: make(map[string]struct{}),
		clauseDefs:     make(map[token.TokenType]ClauseDef),
		symbols:        make(map[string]token.TokenType),
		dynamicKw:      make(map[string]token.TokenType),
		precedence:     make(map[token.TokenType]int),
		infixHandlers:  make(map[token.TokenType]spi.InfixHandler),
		fromItems:      make(map[token.TokenType]spi.FromItemHandler),
	}
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{dialect: newDialect(name)}
}

// New creates a dialect builder from a DialectConfig.
// The builder will auto-wire features based on config flags when Build() is called.
func New(cfg *core.DialectConfig) *Builder {
	d := newDialect(cfg.Name)
	d.Identifiers = cfg.Identifiers
	d.DefaultSchema = cfg.DefaultSchema
	return &Builder{dialect: d, config: cfg}
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// Aggregates adds aggregate functions to the dialect.
func (b *Builder) Aggregates(funcs ...string) *Builder {
	addAll(b.dialect.aggregates, funcs)
	return b
}

// Generators adds generator functions (no input columns) to the dialect.
func (b *Builder) Generators(funcs ...string) *Builder {
	addAll(b.dialect.generators, funcs)
	return b
}

// Windows adds window-only functions to the dialect.
func (b *Builder) Windows(funcs ...string) *Builder {
	addAll(b.dialect.windows, funcs)
	return b
}

// TableFunctions adds table-valued functions to the dialect.
func (b *Builder) TableFunctions(funcs ...string) *Builder {
	addAll(b.dialect.tableFunctions, funcs)
	return b
}

func addAll(set map[string]struct{}, funcs []string) {
	for _, f := range funcs {
		set[strings.ToUpper(f)] = struct{}{}
	}
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// Build returns the constructed dialect.
// If the builder was created with New(cfg), this auto-wires features based on config flags.
func (b *Builder) Build() *Dialect {
	cfg := b.config
	if cfg == nil {
		return b.dialect
	}

	b.Aggregates(cfg.Aggregates...)
	b.Generators(cfg.Generators...)
	b.Windows(cfg.Windows...)
	b.TableFunctions(cfg.TableFunctions...)

	if cfg.SupportsQualify {
		b.AddKeyword("QUALIFY", TokenQualify)
		b.addClauseIfMissing(TokenQualify, StandardQualify, token.HAVING)
	}

	if cfg.SupportsIlike {
		b.AddKeyword("ILIKE", TokenIlike)
		b.dialect.precedence[TokenIlike] = spi.PrecedenceComparison
	}

	if cfg.SupportsRlike {
		b.AddKeyword("RLIKE", TokenRlike)
		b.AddKeyword("REGEXP", TokenRegexp)
		b.dialect.precedence[TokenRlike] = spi.PrecedenceComparison
		b.dialect.precedence[TokenRegexp] = spi.PrecedenceComparison
	}

	if cfg.SupportsCastOperator {
		b.Operators([]OperatorDef{{Token: TokenDcolon, Symbol: "::", Precedence: spi.PrecedencePostfix, Handler: ParseCastOperator}})
	}

	if cfg.SupportsPathAccess {
		b.Operators([]OperatorDef{{Token: token.COLON, Precedence: spi.PrecedencePostfix, Handler: ParsePathAccess}})
	}

	if cfg.SupportsTop {
		b.AddKeyword("TOP", TokenTop)
		b.dialect.supportsTop = true
	}

	b.dialect.supportsStarExclude = cfg.SupportsStarExclude

	return b.dialect
}

// addClauseIfMissing adds a clause only if not already registered,
// placing it after the given clause when that clause is in the sequence.
func (b *Builder) addClauseIfMissing(t token.TokenType, def ClauseDef, after token.TokenType) {
	if _, exists := b.dialect.clauseDefs[t]; exists {
		return
	}
	b.AddClauseAfter(after, def)
}

// ---------- Parsing Behavior Builder Methods ----------

// AddKeyword registers a dynamic keyword for the lexer.
func (b *Builder) AddKeyword(name string, t token.TokenType) *Builder {
	b.dialect.dynamicKw[strings.ToLower(name)] = t
	return b
}

// ClauseHandler registers a handler for a clause token with storage slot.
func (b *Builder) ClauseHandler(t token.TokenType, handler spi.ClauseHandler, slot spi.ClauseSlot) *Builder {
	b.dialect.clauseDefs[t] = ClauseDef{Token: t, Handler: handler, Slot: slot}
	recordClause(t, t.String())
	return b
}

// AddClauseAfter inserts a clause into the sequence after another clause.
// If after is not in the sequence the clause is appended.
func (b *Builder) AddClauseAfter(after token.TokenType, def ClauseDef) *Builder {
	seq := b.dialect.clauseSequence
	inserted := false
	newSeq := make([]token.TokenType, 0, len(seq)+1)
	for _, tok := range seq {
		newSeq = append(newSeq, tok)
		if tok == after && !inserted {
			newSeq = append(newSeq, def.Token)
			inserted = true
		}
	}
	if !inserted {
		newSeq = append(newSeq, def.Token)
	}
	b.dialect.clauseSequence = newSeq
	b.dialect.clauseDefs[def.Token] = def
	recordClause(def.Token, def.Token.String())
	return b
}

// RemoveClause removes a clause from the sequence.
func (b *Builder) RemoveClause(t token.TokenType) *Builder {
	for i, tok := range b.dialect.clauseSequence {
		if tok == t {
			b.dialect.clauseSequence = append(b.dialect.clauseSequence[:i:i], b.dialect.clauseSequence[i+1:]...)
			break
		}
	}
	delete(b.dialect.clauseDefs, t)
	return b
}

// AddInfix registers an infix operator with precedence.
func (b *Builder) AddInfix(t token.TokenType, precedence int) *Builder {
	b.dialect.precedence[t] = precedence
	return b
}

// AddFromItem registers a FROM clause item handler (e.g., PIVOT, SAMPLE).
// The keyword is registered with the lexer as well.
func (b *Builder) AddFromItem(name string, t token.TokenType, handler spi.FromItemHandler) *Builder {
	b.AddKeyword(name, t)
	b.dialect.fromItems[t] = handler
	return b
}

// Clauses sets the clause sequence from a list of ClauseDefs.
// This replaces inheritance - explicitly list all supported clauses.
func (b *Builder) Clauses(defs ...ClauseDef) *Builder {
	b.dialect.clauseSequence = make([]token.TokenType, len(defs))
	for i, def := range defs {
		b.dialect.clauseSequence[i] = def.Token
		b.dialect.clauseDefs[def.Token] = def
		recordClause(def.Token, def.Token.String())
	}
	return b
}

// Operators adds operator definitions in bulk.
// If Symbol is provided, it's registered with the lexer.
func (b *Builder) Operators(sets ...[]OperatorDef) *Builder {
	for _, set := range sets {
		for _, op := range set {
			b.dialect.precedence[op.Token] = op.Precedence
			if op.Handler != nil {
				b.dialect.infixHandlers[op.Token] = op.Handler
			}
			if op.Symbol != "" {
				b.dialect.symbols[op.Symbol] = op.Token
			}
		}
	}
	return b
}
