// Package databricks provides the Databricks SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package databricks

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(Databricks)
}

// Config is the Databricks SQL dialect configuration.
var Config = &core.DialectConfig{
	Name:          "databricks",
	DefaultSchema: "default",
	Identifiers: core.IdentifierConfig{
		Quote:         "`",
		QuoteEnd:      "`",
		Escape:        "``",
		Normalization: core.NormCaseInsensitive,
	},

	SupportsQualify:      true,
	SupportsIlike:        true,
	SupportsCastOperator: true,
	SupportsPathAccess:   true,
	SupportsStarExclude:  true,
	SupportsRlike:        true,

	Aggregates: append([]string{
		"COLLECT_LIST", "COLLECT_SET", "FIRST", "LAST", "MIN_BY", "MAX_BY",
		"APPROX_PERCENTILE", "PERCENTILE", "KURTOSIS", "SKEWNESS", "EVERY", "SOME",
	}, dialect.ANSIAggregates...),
	Generators: append([]string{"CURRENT_CATALOG", "UNIX_TIMESTAMP", "MONOTONICALLY_INCREASING_ID"}, dialect.ANSIGenerators...),
	Windows:    dialect.ANSIWindows,
	TableFunctions: []string{
		"EXPLODE", "EXPLODE_OUTER", "POSEXPLODE", "INLINE", "RANGE",
		"READ_FILES", "JSON_TUPLE", "STACK",
	},
}

// Databricks is the Databricks SQL dialect.
var Databricks = dialect.New(Config).
	Clauses(
		dialect.StandardWhere,
		dialect.GroupByWithAll,
		dialect.StandardHaving,
		dialect.StandardQualify,
		dialect.StandardWindow,
		dialect.StandardOrderBy,
		dialect.StandardLimit,
		dialect.StandardOffset,
	).
	Operators(dialect.ANSIOperators, dialect.SubscriptOperators).
	AddFromItem("TABLESAMPLE", dialect.TokenTablesample, dialect.SkipFromItem("TABLESAMPLE")).
	AddFromItem("PIVOT", dialect.TokenPivot, dialect.SkipFromItem("PIVOT")).
	AddFromItem("UNPIVOT", dialect.TokenUnpivot, dialect.SkipFromItem("UNPIVOT")).
	Build()
