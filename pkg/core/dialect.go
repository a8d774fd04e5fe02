package core

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data with no handler functions.
//
// The runtime behavior (clause handlers, infix handlers, etc.) lives in
// pkg/dialect.Dialect, which is built from this config.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "duckdb", "postgres")
	Name string

	// Identifiers defines quoting and normalization rules
	Identifiers IdentifierConfig

	// DefaultSchema is the default schema name ("main" for DuckDB, "public" for Postgres)
	DefaultSchema string

	// Function classifications
	Aggregates     []string // SUM, COUNT, AVG, etc.
	Generators     []string // NOW, UUID, RANDOM, etc.
	Windows        []string // ROW_NUMBER, LAG, LEAD, etc.
	TableFunctions []string // read_csv, generate_series, etc.

	// Feature flags, auto-wired by dialect.New(cfg).Build()
	SupportsQualify      bool // QUALIFY clause
	SupportsIlike        bool // ILIKE operator
	SupportsCastOperator bool // :: cast
	SupportsTop          bool // SELECT TOP n
	SupportsPathAccess   bool // payload:field semi-structured access
	SupportsStarExclude  bool // SELECT * EXCLUDE (...) / * EXCEPT (...)
	SupportsRlike        bool // RLIKE / REGEXP operators
}

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
	// NormCaseInsensitive folds every identifier, quoted or not, to lowercase (DuckDB, MySQL, T-SQL).
	NormCaseInsensitive
)

// QuotePair is an opening and closing identifier quote.
type QuotePair struct {
	Open  byte
	Close byte
}

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
	AltQuotes     []QuotePair           // Additional accepted quote pairs
}

// QuotePairs returns every quote pair the lexer accepts, primary first.
func (c IdentifierConfig) QuotePairs() []QuotePair {
	pairs := make([]QuotePair, 0, 1+len(c.AltQuotes))
	if c.Quote != "" && c.QuoteEnd != "" {
		pairs = append(pairs, QuotePair{Open: c.Quote[0], Close: c.QuoteEnd[0]})
	}
	return append(pairs, c.AltQuotes...)
}
