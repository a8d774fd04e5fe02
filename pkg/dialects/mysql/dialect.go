// Package mysql provides the MySQL dialect definition.
package mysql

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(MySQL)
}

// Config is the MySQL dialect configuration. Identifiers are quoted with
// backticks and compared case-insensitively.
var Config = &core.DialectConfig{
	Name: "mysql",
	Identifiers: core.IdentifierConfig{
		Quote:         "`",
		QuoteEnd:      "`",
		Escape:        "``",
		Normalization: core.NormCaseInsensitive,
	},

	SupportsRlike: true,

	Aggregates:     append([]string{"GROUP_CONCAT", "JSON_ARRAYAGG", "JSON_OBJECTAGG", "STD"}, dialect.ANSIAggregates...),
	Generators:     append([]string{"SYSDATE", "UTC_TIMESTAMP", "UTC_DATE", "CURDATE", "CURTIME", "UUID_SHORT"}, dialect.ANSIGenerators...),
	Windows:        dialect.ANSIWindows,
	TableFunctions: []string{"JSON_TABLE"},
}

// MySQL is the MySQL dialect.
var MySQL = dialect.New(Config).
	Clauses(
		dialect.StandardWhere,
		dialect.StandardGroupBy,
		dialect.StandardHaving,
		dialect.StandardWindow,
		dialect.StandardOrderBy,
		dialect.LimitWithOffset,
		dialect.StandardOffset,
	).
	Operators(dialect.ANSIOperators).
	Build()
