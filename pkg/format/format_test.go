package format_test

import (
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects" // register dialects
	"github.com/leapstack-labs/sqllineage/pkg/format"
	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, sql, dialectName string) (core.Stmt, *dialect.Dialect) {
	t.Helper()
	d, ok := dialect.Get(dialectName)
	require.True(t, ok)
	stmt, _, err := parser.ParseStatement(sql, d)
	require.NoError(t, err)
	return stmt, d
}

func TestGeneralize(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		input    string
		expected string
	}{
		{
			name:     "keywords and spacing",
			dialect:  "ansi",
			input:    "select  a,\n\tb from t   where x = 1",
			expected: "SELECT a, b FROM t WHERE x = ?",
		},
		{
			name:     "literal kinds",
			dialect:  "ansi",
			input:    "SELECT 'abc', 1.5, NULL, TRUE FROM t",
			expected: "SELECT ?, ?, NULL, TRUE FROM t",
		},
		{
			name:     "negative number",
			dialect:  "ansi",
			input:    "SELECT a FROM t WHERE b > -5",
			expected: "SELECT a FROM t WHERE b > ?",
		},
		{
			name:     "in list collapses",
			dialect:  "ansi",
			input:    "SELECT a FROM t WHERE id IN (1, 2, 3)",
			expected: "SELECT a FROM t WHERE id IN (?)",
		},
		{
			name:     "in list with columns",
			dialect:  "ansi",
			input:    "SELECT a FROM t WHERE id NOT IN (b, 2)",
			expected: "SELECT a FROM t WHERE id NOT IN (b, ?)",
		},
		{
			name:     "cast operator",
			dialect:  "postgres",
			input:    "SELECT a::int FROM t",
			expected: "SELECT CAST(a AS INT) FROM t",
		},
		{
			name:     "quoted identifiers",
			dialect:  "postgres",
			input:    `SELECT "Order Id", "orders" FROM "Sales".orders`,
			expected: `SELECT "Order Id", orders FROM "Sales".orders`,
		},
		{
			name:     "upper-case dialect",
			dialect:  "snowflake",
			input:    "select id from db.orders o",
			expected: "SELECT ID FROM DB.ORDERS AS O",
		},
		{
			name:     "extract keyword argument",
			dialect:  "postgres",
			input:    "SELECT EXTRACT(year FROM d) FROM t",
			expected: "SELECT EXTRACT(YEAR FROM d) FROM t",
		},
		{
			name:     "window",
			dialect:  "ansi",
			input:    "SELECT SUM(x) OVER (PARTITION BY a ORDER BY b DESC ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM t",
			expected: "SELECT SUM(x) OVER (PARTITION BY a ORDER BY b DESC ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM t",
		},
		{
			name:     "interval",
			dialect:  "postgres",
			input:    "SELECT d + INTERVAL '1' DAY FROM t",
			expected: "SELECT d + INTERVAL ? DAY FROM t",
		},
		{
			name:     "case",
			dialect:  "ansi",
			input:    "SELECT CASE WHEN a > 0 THEN 'pos' ELSE 'neg' END AS s FROM t",
			expected: "SELECT CASE WHEN a > ? THEN ? ELSE ? END AS s FROM t",
		},
		{
			name:     "aggregates",
			dialect:  "ansi",
			input:    "SELECT COUNT(*), count(DISTINCT a) FROM t GROUP BY b HAVING COUNT(*) > 1",
			expected: "SELECT COUNT(*), COUNT(DISTINCT a) FROM t GROUP BY b HAVING COUNT(*) > ?",
		},
		{
			name:     "niladic function",
			dialect:  "ansi",
			input:    "SELECT current_date",
			expected: "SELECT CURRENT_DATE",
		},
		{
			name:     "joins",
			dialect:  "ansi",
			input:    "SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.id JOIN c USING (id), d",
			expected: "SELECT * FROM a LEFT JOIN b ON a.id = b.id INNER JOIN c USING (id), d",
		},
		{
			name:     "cte and union",
			dialect:  "ansi",
			input:    "WITH c AS (SELECT 1 AS x) SELECT x FROM c UNION ALL SELECT 2",
			expected: "WITH c AS (SELECT ? AS x) SELECT x FROM c UNION ALL SELECT ?",
		},
		{
			name:     "insert values collapse",
			dialect:  "ansi",
			input:    "INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')",
			expected: "INSERT INTO t (a, b) VALUES (?, ?)",
		},
		{
			name:     "materialized view",
			dialect:  "postgres",
			input:    "create materialized view v as select a from t",
			expected: "CREATE MATERIALIZED VIEW v AS SELECT a FROM t",
		},
		{
			name:     "update",
			dialect:  "postgres",
			input:    "UPDATE t SET a = s.a, b = 'x' FROM s WHERE t.id = s.id",
			expected: "UPDATE t SET a = s.a, b = ? FROM s WHERE t.id = s.id",
		},
		{
			name:     "merge",
			dialect:  "ansi",
			input:    "MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN UPDATE SET v = s.v WHEN NOT MATCHED THEN INSERT (id, v) VALUES (s.id, 0)",
			expected: "MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN UPDATE SET v = s.v WHEN NOT MATCHED THEN INSERT (id, v) VALUES (s.id, ?)",
		},
		{
			name:     "qualify",
			dialect:  "snowflake",
			input:    "SELECT a FROM t QUALIFY ROW_NUMBER() OVER (PARTITION BY a ORDER BY b) = 1",
			expected: "SELECT A FROM T QUALIFY ROW_NUMBER() OVER (PARTITION BY A ORDER BY B) = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, d := parse(t, tt.input, tt.dialect)
			assert.Equal(t, tt.expected, format.Generalize(stmt, d))
		})
	}
}

func TestGeneralizeIgnoresLiteralValues(t *testing.T) {
	pairs := []struct {
		a, b string
	}{
		{"SELECT a FROM t WHERE x = 1", "select a from t where x = 42"},
		{"SELECT a FROM t WHERE s = 'x' AND d > DATE '2024-01-01'", "SELECT a FROM t WHERE s = 'yy' AND d > DATE '1999-12-31'"},
		{"SELECT a FROM t WHERE id IN (1)", "SELECT a FROM t WHERE id IN (1, 2, 3, 4)"},
		{"INSERT INTO t VALUES (1)", "INSERT INTO t VALUES (2), (3)"},
		{`SELECT "a" FROM "t"`, "SELECT a FROM t"},
	}

	for _, pair := range pairs {
		t.Run(pair.a, func(t *testing.T) {
			a, d := parse(t, pair.a, "ansi")
			b, _ := parse(t, pair.b, "ansi")
			assert.Equal(t, format.Generalize(a, d), format.Generalize(b, d))
		})
	}
}

func TestGeneralizeKeepsStructure(t *testing.T) {
	a, d := parse(t, "SELECT a FROM t WHERE x = 1", "ansi")
	b, _ := parse(t, "SELECT a FROM t WHERE y = 1", "ansi")
	assert.NotEqual(t, format.Generalize(a, d), format.Generalize(b, d))

	c, _ := parse(t, "SELECT a FROM t WHERE x IS NULL", "ansi")
	e, _ := parse(t, "SELECT a FROM t WHERE x IS NOT NULL", "ansi")
	assert.NotEqual(t, format.Generalize(c, d), format.Generalize(e, d))
}

func TestFormatKeepsLiterals(t *testing.T) {
	stmt, d := parse(t, "select 'it''s', 1 from t where id in (1, 2) and d > interval '3' day", "postgres")
	assert.Equal(t, "SELECT 'it''s', 1 FROM t WHERE id IN (1, 2) AND d > INTERVAL '3' DAY", format.Format(stmt, d))
}

func TestExpr(t *testing.T) {
	stmt, d := parse(t, "SELECT COALESCE(a.x, b.y) + 1 FROM a, b", "ansi")
	sel := stmt.(*core.SelectStmt)
	assert.Equal(t, "COALESCE(a.x, b.y) + 1", format.Expr(sel.Body.Left.Columns[0].Expr, d))
}

func TestGeneralizeText(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		input    string
		expected string
	}{
		{
			name:     "drop",
			dialect:  "postgres",
			input:    `drop table if exists "Sales".orders;`,
			expected: `DROP TABLE IF EXISTS "Sales".ORDERS`,
		},
		{
			name:     "set",
			dialect:  "postgres",
			input:    "SET search_path = 'public'",
			expected: "SET SEARCH_PATH = ?",
		},
		{
			name:     "call",
			dialect:  "ansi",
			input:    "CALL refresh(1, 'x')",
			expected: "CALL REFRESH(?, ?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := dialect.Get(tt.dialect)
			require.True(t, ok)
			assert.Equal(t, tt.expected, format.GeneralizeText(tt.input, d))
		})
	}
}
