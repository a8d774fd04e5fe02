// Package ansi provides the base ANSI SQL dialect with standard clause
// sequences, handlers, and operator precedence.
package ansi

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(ANSI)
}

// Config is the ANSI dialect configuration.
var Config = &core.DialectConfig{
	Name: "ansi",
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase,
	},
	Aggregates: dialect.ANSIAggregates,
	Generators: dialect.ANSIGenerators,
	Windows:    dialect.ANSIWindows,
}

// ANSI is the base ANSI SQL dialect.
var ANSI = dialect.New(Config).
	Clauses(dialect.StandardSelectClauses...).
	Operators(dialect.ANSIOperators).
	Build()
