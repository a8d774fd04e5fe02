// Package dialects registers every built-in dialect. Import it for side
// effects when the dialect is chosen at runtime:
//
//	import _ "github.com/leapstack-labs/sqllineage/pkg/dialects"
package dialects

import (
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects/ansi"       // register ansi
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects/databricks" // register databricks
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects/duckdb"     // register duckdb
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects/mysql"      // register mysql
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects/postgres"   // register postgres
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects/snowflake"  // register snowflake
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects/tsql"       // register tsql
)
