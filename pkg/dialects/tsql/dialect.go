// Package tsql provides the Microsoft T-SQL (SQL Server, Synapse) dialect definition.
package tsql

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(TSQL)
}

// Config is the T-SQL dialect configuration. Bracket quoting is primary;
// double quotes are accepted as well.
var Config = &core.DialectConfig{
	Name:          "tsql",
	DefaultSchema: "dbo",
	Identifiers: core.IdentifierConfig{
		Quote:         "[",
		QuoteEnd:      "]",
		Escape:        "]]",
		Normalization: core.NormCaseInsensitive,
		AltQuotes:     []core.QuotePair{{Open: '"', Close: '"'}},
	},

	SupportsTop: true,

	Aggregates:     append([]string{"COUNT_BIG", "STDEV", "STDEVP", "VAR", "VARP", "CHECKSUM_AGG", "GROUPING"}, dialect.ANSIAggregates...),
	Generators:     append([]string{"GETDATE", "GETUTCDATE", "SYSDATETIME", "SYSUTCDATETIME", "NEWID", "NEWSEQUENTIALID"}, dialect.ANSIGenerators...),
	Windows:        dialect.ANSIWindows,
	TableFunctions: []string{"OPENJSON", "OPENROWSET", "STRING_SPLIT", "OPENQUERY"},
}

// TSQL is the T-SQL dialect. Row limits use TOP or OFFSET ... FETCH.
var TSQL = dialect.New(Config).
	Clauses(
		dialect.StandardWhere,
		dialect.StandardGroupBy,
		dialect.StandardHaving,
		dialect.StandardOrderBy,
		dialect.StandardOffset,
		dialect.StandardFetch,
	).
	Operators(dialect.ANSIOperators).
	AddFromItem("PIVOT", dialect.TokenPivot, dialect.SkipFromItem("PIVOT")).
	AddFromItem("UNPIVOT", dialect.TokenUnpivot, dialect.SkipFromItem("UNPIVOT")).
	AddFromItem("TABLESAMPLE", dialect.TokenTablesample, dialect.SkipFromItem("TABLESAMPLE")).
	Build()
