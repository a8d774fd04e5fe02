// Package postgres provides the PostgreSQL SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package postgres

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(Postgres)
}

// Config is the PostgreSQL dialect configuration.
var Config = &core.DialectConfig{
	Name:          "postgres",
	DefaultSchema: "public",
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase,
	},

	SupportsIlike:        true,
	SupportsCastOperator: true,

	Aggregates: append([]string{
		"JSONB_AGG", "JSONB_OBJECT_AGG", "JSON_AGG", "JSON_OBJECT_AGG",
		"EVERY", "XMLAGG",
		"REGR_AVGX", "REGR_AVGY", "REGR_COUNT", "REGR_INTERCEPT",
		"REGR_R2", "REGR_SLOPE", "REGR_SXX", "REGR_SXY", "REGR_SYY",
	}, dialect.ANSIAggregates...),
	Generators: append([]string{
		"CLOCK_TIMESTAMP", "STATEMENT_TIMESTAMP", "TRANSACTION_TIMESTAMP",
		"GEN_RANDOM_UUID", "TIMEOFDAY",
	}, dialect.ANSIGenerators...),
	Windows: dialect.ANSIWindows,
	TableFunctions: []string{
		"GENERATE_SERIES", "UNNEST", "JSON_EACH", "JSONB_EACH",
		"JSON_ARRAY_ELEMENTS", "JSONB_ARRAY_ELEMENTS", "REGEXP_MATCHES",
	},
}

// Postgres is the PostgreSQL dialect.
var Postgres = dialect.New(Config).
	Clauses(dialect.StandardSelectClauses...).
	Operators(dialect.ANSIOperators, dialect.SubscriptOperators).
	Build()
