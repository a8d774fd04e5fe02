// Package snowflake provides the Snowflake SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package snowflake

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(Snowflake)
}

// Config is the Snowflake SQL dialect configuration.
// Snowflake folds unquoted identifiers to upper case.
var Config = &core.DialectConfig{
	Name:          "snowflake",
	DefaultSchema: "PUBLIC",
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormUppercase,
	},

	SupportsQualify:      true,
	SupportsIlike:        true,
	SupportsCastOperator: true,
	SupportsPathAccess:   true,
	SupportsStarExclude:  true,
	SupportsRlike:        true,

	Aggregates: append([]string{
		"ARRAY_UNIQUE_AGG", "OBJECT_AGG", "HLL", "APPROX_TOP_K",
		"MIN_BY", "MAX_BY", "KURTOSIS", "SKEW", "BITAND_AGG", "BITOR_AGG",
	}, dialect.ANSIAggregates...),
	Generators: append([]string{
		"SYSDATE", "GETDATE", "UUID_STRING", "SEQ4", "SEQ8", "CURRENT_WAREHOUSE",
		"CURRENT_ACCOUNT", "CURRENT_REGION",
	}, dialect.ANSIGenerators...),
	Windows: append([]string{"RATIO_TO_REPORT", "CONDITIONAL_TRUE_EVENT"}, dialect.ANSIWindows...),
	TableFunctions: []string{
		"FLATTEN", "SPLIT_TO_TABLE", "GENERATOR", "RESULT_SCAN", "TABLE",
		"INFER_SCHEMA", "VALIDATE",
	},
}

// Snowflake is the Snowflake SQL dialect.
// Build() auto-wires QUALIFY, ILIKE, RLIKE, :: and : path access from Config.
var Snowflake = dialect.New(Config).
	Clauses(
		dialect.StandardWhere,
		dialect.GroupByWithAll,
		dialect.StandardHaving,
		dialect.StandardQualify,
		dialect.StandardWindow,
		dialect.StandardOrderBy,
		dialect.StandardLimit,
		dialect.StandardOffset,
		dialect.StandardFetch,
	).
	Operators(dialect.ANSIOperators, dialect.SubscriptOperators).
	AddFromItem("SAMPLE", dialect.TokenSample, dialect.SkipFromItem("SAMPLE")).
	AddFromItem("TABLESAMPLE", dialect.TokenTablesample, dialect.SkipFromItem("TABLESAMPLE")).
	AddFromItem("PIVOT", dialect.TokenPivot, dialect.SkipFromItem("PIVOT")).
	AddFromItem("UNPIVOT", dialect.TokenUnpivot, dialect.SkipFromItem("UNPIVOT")).
	Build()
