// Package duckdb provides the DuckDB SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package duckdb

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(DuckDB)
}

// Config is the DuckDB dialect configuration.
var Config = &core.DialectConfig{
	Name:          "duckdb",
	DefaultSchema: "main",
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormCaseInsensitive,
	},

	SupportsQualify:      true,
	SupportsIlike:        true,
	SupportsCastOperator: true,
	SupportsStarExclude:  true,

	Aggregates: append([]string{
		"LIST", "GROUP_CONCAT", "FIRST", "LAST", "ARBITRARY",
		"QUANTILE", "QUANTILE_CONT", "QUANTILE_DISC", "APPROX_QUANTILE",
		"HISTOGRAM", "ENTROPY", "KURTOSIS", "SKEWNESS", "PRODUCT", "FSUM", "FAVG",
		"ARG_MIN", "ARG_MAX", "MIN_BY", "MAX_BY",
	}, dialect.ANSIAggregates...),
	Generators: append([]string{"TODAY", "GEN_RANDOM_UUID", "SETSEED", "VERSION"}, dialect.ANSIGenerators...),
	Windows:    dialect.ANSIWindows,
	TableFunctions: []string{
		"READ_CSV", "READ_CSV_AUTO", "READ_PARQUET", "READ_JSON", "READ_JSON_AUTO",
		"GENERATE_SERIES", "RANGE", "UNNEST", "GLOB", "ICEBERG_SCAN", "DELTA_SCAN",
	},
}

// DuckDB is the DuckDB dialect.
var DuckDB = dialect.New(Config).
	Clauses(
		dialect.StandardWhere,
		dialect.GroupByWithAll,
		dialect.StandardHaving,
		dialect.StandardWindow,
		dialect.StandardQualify,
		dialect.StandardOrderBy,
		dialect.StandardLimit,
		dialect.StandardOffset,
	).
	Operators(dialect.ANSIOperators, dialect.SubscriptOperators).
	AddFromItem("PIVOT", dialect.TokenPivot, dialect.SkipFromItem("PIVOT")).
	AddFromItem("UNPIVOT", dialect.TokenUnpivot, dialect.SkipFromItem("UNPIVOT")).
	AddFromItem("TABLESAMPLE", dialect.TokenTablesample, dialect.SkipFromItem("TABLESAMPLE")).
	Build()
