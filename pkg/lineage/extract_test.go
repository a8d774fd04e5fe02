package lineage

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/leapstack-labs/sqllineage/internal/testutil"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects" // register dialects
	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExtractor(t *testing.T, opts Options, options ...Option) *Extractor {
	t.Helper()
	if opts.Dialect == "" {
		opts.Dialect = "ansi"
	}
	options = append(options, WithLogger(testutil.NewTestLogger(t)))
	ext, err := NewExtractor(opts, options...)
	require.NoError(t, err)
	return ext
}

func ansiURN(name string) string {
	return "urn:li:dataset:(urn:li:dataPlatform:ansi," + name + ",PROD)"
}

func lineageEdge(table, column string, ups ...Upstream) ColumnLineage {
	if ups == nil {
		ups = []Upstream{}
	}
	return ColumnLineage{Downstream: Downstream{Table: table, Column: column}, Upstreams: ups}
}

func up(table, column string) Upstream {
	return Upstream{Table: table, Column: column}
}

// =============================================================================
// Reference scenarios
// =============================================================================

func TestExtract_SimpleView(t *testing.T) {
	ext := newExtractor(t, Options{})

	rec, err := ext.Extract("CREATE VIEW v AS SELECT a.x FROM t a")
	require.NoError(t, err)

	assert.Equal(t, QueryCreateView, rec.QueryType)
	assert.Equal(t, map[string]any{"kind": "VIEW"}, rec.QueryTypeProps)
	assert.Equal(t, []string{ansiURN("t")}, rec.InTables)
	assert.Equal(t, []string{ansiURN("v")}, rec.OutTables)
	assert.Equal(t, []ColumnLineage{
		lineageEdge(ansiURN("v"), "x", up(ansiURN("t"), "x")),
	}, rec.ColumnLineage)
	assert.InDelta(t, 1.0, rec.DebugInfo.Confidence, 1e-9)
	assert.Empty(t, rec.DebugInfo.Warnings)
}

func TestExtract_AggregateRatioHasNoUpstream(t *testing.T) {
	ext := newExtractor(t, Options{})

	rec, err := ext.Extract(`
CREATE VIEW dept_share AS
SELECT a.dept, a.dept AS dept_code, a.num_emp / b.total_count AS share
FROM (SELECT dept, COUNT(*) AS num_emp FROM emp GROUP BY dept) a
CROSS JOIN (SELECT COUNT(*) AS total_count FROM emp) b`)
	require.NoError(t, err)

	view := ansiURN("dept_share")
	emp := ansiURN("emp")
	assert.Equal(t, []string{emp}, rec.InTables)
	assert.Equal(t, []ColumnLineage{
		lineageEdge(view, "dept", up(emp, "dept")),
		lineageEdge(view, "dept_code", up(emp, "dept")),
		lineageEdge(view, "share"),
	}, rec.ColumnLineage)
	assert.Less(t, rec.DebugInfo.Confidence, 1.0)
	assert.InDelta(t, 0.2, rec.DebugInfo.Confidence, 1e-9)
}

func TestExtract_SelfReferentialInsert(t *testing.T) {
	ext := newExtractor(t, Options{})

	rec, err := ext.Extract("INSERT INTO t SELECT * FROM t WHERE x > 1")
	require.NoError(t, err)

	assert.Equal(t, QueryInsert, rec.QueryType)
	assert.Equal(t, []string{ansiURN("t")}, rec.InTables)
	assert.Equal(t, []string{ansiURN("t")}, rec.OutTables)
	assert.Equal(t, []ColumnLineage{
		lineageEdge(ansiURN("t"), "*", up(ansiURN("t"), "*")),
	}, rec.ColumnLineage)
	assert.InDelta(t, 0.7, rec.DebugInfo.Confidence, 1e-9)
}

func TestExtract_ParseError(t *testing.T) {
	ext := newExtractor(t, Options{})

	rec, err := ext.Extract("SELECT FROM t")
	require.Error(t, err)
	assert.Nil(t, rec)

	var perr *parser.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Pos.Line)
}

// =============================================================================
// Construction and configuration
// =============================================================================

func TestNewExtractor_Errors(t *testing.T) {
	_, err := NewExtractor(Options{})
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)

	_, err = NewExtractor(Options{Dialect: "cobol"})
	assert.ErrorIs(t, err, ErrUnknownDialect)
	assert.ErrorContains(t, err, "cobol")
}

func TestExtract_EmptyInput(t *testing.T) {
	ext := newExtractor(t, Options{})

	_, err := ext.Extract("  \n  ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ext.ExtractAll("")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestExtract_QualificationAndURN(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		sql  string
		in   string
	}{
		{
			name: "defaults",
			opts: Options{Dialect: "postgres"},
			sql:  "SELECT id FROM Orders",
			in:   "urn:li:dataset:(urn:li:dataPlatform:postgres,orders,PROD)",
		},
		{
			name: "default db and schema",
			opts: Options{Dialect: "snowflake", DefaultDB: "analytics", DefaultSchema: "public"},
			sql:  "SELECT id FROM orders",
			in:   "urn:li:dataset:(urn:li:dataPlatform:snowflake,ANALYTICS.PUBLIC.ORDERS,PROD)",
		},
		{
			name: "schema given",
			opts: Options{Dialect: "snowflake", DefaultDB: "analytics", DefaultSchema: "public"},
			sql:  "SELECT id FROM sales.orders",
			in:   "urn:li:dataset:(urn:li:dataPlatform:snowflake,ANALYTICS.SALES.ORDERS,PROD)",
		},
		{
			name: "fully qualified",
			opts: Options{Dialect: "snowflake", DefaultDB: "analytics"},
			sql:  "SELECT id FROM raw.sales.orders",
			in:   "urn:li:dataset:(urn:li:dataPlatform:snowflake,RAW.SALES.ORDERS,PROD)",
		},
		{
			name: "quoted keeps case",
			opts: Options{Dialect: "postgres"},
			sql:  `SELECT id FROM "Orders"`,
			in:   "urn:li:dataset:(urn:li:dataPlatform:postgres,Orders,PROD)",
		},
		{
			name: "overrides",
			opts: Options{Dialect: "duckdb", Platform: "motherduck", Environment: "dev", Namespace: "acme"},
			sql:  "SELECT id FROM orders",
			in:   "urn:acme:dataset:(urn:acme:dataPlatform:motherduck,orders,DEV)",
		},
		{
			name: "tsql platform",
			opts: Options{Dialect: "tsql"},
			sql:  "SELECT TOP 10 id FROM dbo.Orders",
			in:   "urn:li:dataset:(urn:li:dataPlatform:mssql,dbo.orders,PROD)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := newExtractor(t, tt.opts)
			rec, err := ext.Extract(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.in}, rec.InTables)
		})
	}
}

// =============================================================================
// Column lineage
// =============================================================================

func TestExtract_ColumnLineage(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		in         []string
		out        []string
		lineage    []ColumnLineage
		confidence float64
	}{
		{
			name:    "select has no downstream table",
			sql:     "SELECT id, UPPER(name) AS name_uc, 1 AS one FROM users",
			in:      []string{ansiURN("users")},
			out:     []string{},
			lineage: []ColumnLineage{
				lineageEdge("", "id", up(ansiURN("users"), "id")),
				lineageEdge("", "name_uc", up(ansiURN("users"), "name")),
				lineageEdge("", "one"),
			},
			confidence: 1,
		},
		{
			name: "join with qualified columns",
			sql:  "CREATE TABLE r AS SELECT o.id, c.name, o.amount * c.rate AS total FROM orders o JOIN customers c ON o.cid = c.id",
			in:   []string{ansiURN("customers"), ansiURN("orders")},
			out:  []string{ansiURN("r")},
			lineage: []ColumnLineage{
				lineageEdge(ansiURN("r"), "id", up(ansiURN("orders"), "id")),
				lineageEdge(ansiURN("r"), "name", up(ansiURN("customers"), "name")),
				lineageEdge(ansiURN("r"), "total", up(ansiURN("customers"), "rate"), up(ansiURN("orders"), "amount")),
			},
			confidence: 1,
		},
		{
			name: "cte shadows table",
			sql:  "CREATE VIEW v AS WITH t AS (SELECT x FROM base) SELECT x FROM t",
			in:   []string{ansiURN("base")},
			out:  []string{ansiURN("v")},
			lineage: []ColumnLineage{
				lineageEdge(ansiURN("v"), "x", up(ansiURN("base"), "x")),
			},
			confidence: 1,
		},
		{
			name: "chained ctes",
			sql:  "WITH a AS (SELECT id, amount FROM orders), b AS (SELECT id, amount * 2 AS doubled FROM a) SELECT doubled FROM b",
			in:   []string{ansiURN("orders")},
			out:  []string{},
			lineage: []ColumnLineage{
				lineageEdge("", "doubled", up(ansiURN("orders"), "amount")),
			},
			confidence: 1,
		},
		{
			name: "recursive cte",
			sql:  "WITH RECURSIVE r (n) AS (SELECT id FROM seed UNION ALL SELECT n + 1 FROM r WHERE n < 10) SELECT n FROM r",
			in:   []string{ansiURN("seed")},
			out:  []string{},
			lineage: []ColumnLineage{
				lineageEdge("", "n", up(ansiURN("seed"), "id")),
			},
			confidence: 1,
		},
		{
			name: "view column list renames",
			sql:  "CREATE VIEW v (a, b) AS SELECT x, y FROM t",
			in:   []string{ansiURN("t")},
			out:  []string{ansiURN("v")},
			lineage: []ColumnLineage{
				lineageEdge(ansiURN("v"), "a", up(ansiURN("t"), "x")),
				lineageEdge(ansiURN("v"), "b", up(ansiURN("t"), "y")),
			},
			confidence: 1,
		},
		{
			name: "union merges upstreams by position",
			sql:  "INSERT INTO all_ids (id) SELECT id FROM a UNION SELECT code FROM b",
			in:   []string{ansiURN("a"), ansiURN("b")},
			out:  []string{ansiURN("all_ids")},
			lineage: []ColumnLineage{
				lineageEdge(ansiURN("all_ids"), "id", up(ansiURN("a"), "id"), up(ansiURN("b"), "code")),
			},
			confidence: 1,
		},
		{
			name: "scalar subquery and exists",
			sql:  "SELECT (SELECT MAX(amount) FROM orders o WHERE o.cid = c.id) AS max_amount, c.id FROM customers c WHERE EXISTS (SELECT 1 FROM bans b WHERE b.cid = c.id)",
			in:   []string{ansiURN("bans"), ansiURN("customers"), ansiURN("orders")},
			out:  []string{},
			lineage: []ColumnLineage{
				lineageEdge("", "max_amount", up(ansiURN("orders"), "amount")),
				lineageEdge("", "id", up(ansiURN("customers"), "id")),
			},
			confidence: 1,
		},
		{
			name: "generator and anonymous columns",
			sql:  "SELECT CURRENT_DATE, x + 1 FROM t",
			in:   []string{ansiURN("t")},
			out:  []string{},
			lineage: []ColumnLineage{
				lineageEdge("", "current_date"),
				lineageEdge("", "_col_1", up(ansiURN("t"), "x")),
			},
			confidence: 1,
		},
		{
			name: "window inputs are not upstreams",
			sql:  "SELECT ROW_NUMBER() OVER (PARTITION BY grp ORDER BY ts) AS rn, SUM(v) OVER (PARTITION BY grp) AS total FROM t",
			in:   []string{ansiURN("t")},
			out:  []string{},
			lineage: []ColumnLineage{
				lineageEdge("", "rn"),
				lineageEdge("", "total", up(ansiURN("t"), "v")),
			},
			confidence: 1,
		},
		{
			name: "ambiguous column without catalog",
			sql:  "SELECT x FROM a JOIN b ON a.id = b.id",
			in:   []string{ansiURN("a"), ansiURN("b")},
			out:  []string{},
			lineage: []ColumnLineage{
				lineageEdge("", "x"),
			},
			confidence: 0,
		},
		{
			name: "update",
			sql:  "UPDATE t SET a = s.b + 1, c = 0 FROM s WHERE t.id = s.id",
			in:   []string{ansiURN("s")},
			out:  []string{ansiURN("t")},
			lineage: []ColumnLineage{
				lineageEdge(ansiURN("t"), "a", up(ansiURN("s"), "b")),
				lineageEdge(ansiURN("t"), "c"),
			},
			confidence: 1,
		},
		{
			name: "merge reports each column once",
			sql: `MERGE INTO tgt t USING src s ON t.id = s.id
WHEN MATCHED THEN UPDATE SET amount = s.amount
WHEN NOT MATCHED THEN INSERT (id, amount) VALUES (s.id, s.amount + s.fee)`,
			in:  []string{ansiURN("src")},
			out: []string{ansiURN("tgt")},
			lineage: []ColumnLineage{
				lineageEdge(ansiURN("tgt"), "amount", up(ansiURN("src"), "amount"), up(ansiURN("src"), "fee")),
				lineageEdge(ansiURN("tgt"), "id", up(ansiURN("src"), "id")),
			},
			confidence: 1,
		},
		{
			name: "insert values",
			sql:  "INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')",
			in:   []string{},
			out:  []string{ansiURN("t")},
			lineage: []ColumnLineage{
				lineageEdge(ansiURN("t"), "a"),
				lineageEdge(ansiURN("t"), "b"),
			},
			confidence: 1,
		},
		{
			name:       "delete",
			sql:        "DELETE FROM t WHERE id IN (SELECT id FROM s)",
			in:         []string{ansiURN("s")},
			out:        []string{ansiURN("t")},
			lineage:    []ColumnLineage{},
			confidence: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := newExtractor(t, Options{})
			rec, err := ext.Extract(tt.sql)
			require.NoError(t, err)

			assert.Equal(t, tt.in, rec.InTables)
			assert.Equal(t, tt.out, rec.OutTables)
			assert.Equal(t, tt.lineage, rec.ColumnLineage)
			assert.InDelta(t, tt.confidence, rec.DebugInfo.Confidence, 1e-9)
		})
	}
}

func TestExtract_CTECycle(t *testing.T) {
	ext := newExtractor(t, Options{})

	_, err := ext.Extract("WITH RECURSIVE a AS (SELECT x FROM b), b AS (SELECT x FROM a) SELECT x FROM a")
	require.Error(t, err)

	var rerr *ResolutionInconsistencyError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "a", rerr.Table)
}

func TestExtract_WithCatalog(t *testing.T) {
	catalog := MapCatalog{
		"a":      {{Name: "id", Type: "INTEGER"}, {Name: "x", Type: "VARCHAR(20)"}},
		"b":      {{Name: "id", Type: "INTEGER"}, {Name: "y", Type: "BOOLEAN"}},
		"target": {{Name: "id", Type: "BIGINT"}, {Name: "x", Type: "TEXT"}, {Name: "y", Type: "BOOL"}},
	}
	ext := newExtractor(t, Options{}, WithCatalog(catalog))

	t.Run("wildcard expands", func(t *testing.T) {
		rec, err := ext.Extract("CREATE TABLE c AS SELECT * FROM a")
		require.NoError(t, err)
		assert.Equal(t, []ColumnLineage{
			lineageEdge(ansiURN("c"), "id", up(ansiURN("a"), "id")),
			lineageEdge(ansiURN("c"), "x", up(ansiURN("a"), "x")),
		}, rec.ColumnLineage)
		assert.InDelta(t, 1.0, rec.DebugInfo.Confidence, 1e-9)
	})

	t.Run("unqualified column resolves", func(t *testing.T) {
		rec, err := ext.Extract("SELECT x, y FROM a JOIN b ON a.id = b.id")
		require.NoError(t, err)
		assert.Equal(t, []ColumnLineage{
			lineageEdge("", "x", up(ansiURN("a"), "x")),
			lineageEdge("", "y", up(ansiURN("b"), "y")),
		}, rec.ColumnLineage)
		assert.InDelta(t, 1.0, rec.DebugInfo.Confidence, 1e-9)
	})

	t.Run("using column unions both sides", func(t *testing.T) {
		rec, err := ext.Extract("SELECT id FROM a JOIN b USING (id)")
		require.NoError(t, err)
		assert.Equal(t, []ColumnLineage{
			lineageEdge("", "id", up(ansiURN("a"), "id"), up(ansiURN("b"), "id")),
		}, rec.ColumnLineage)
	})

	t.Run("insert without column list takes target order and types", func(t *testing.T) {
		rec, err := ext.Extract("INSERT INTO target SELECT a.id, a.x, b.y FROM a JOIN b ON a.id = b.id")
		require.NoError(t, err)

		target := ansiURN("target")
		require.Len(t, rec.ColumnLineage, 3)
		assert.Equal(t, Downstream{Table: target, Column: "id", ColumnType: "NUMBER", NativeColumnType: "BIGINT"}, rec.ColumnLineage[0].Downstream)
		assert.Equal(t, Downstream{Table: target, Column: "x", ColumnType: "STRING", NativeColumnType: "TEXT"}, rec.ColumnLineage[1].Downstream)
		assert.Equal(t, Downstream{Table: target, Column: "y", ColumnType: "BOOLEAN", NativeColumnType: "BOOL"}, rec.ColumnLineage[2].Downstream)
	})

	t.Run("wildcard through derived table", func(t *testing.T) {
		rec, err := ext.Extract("SELECT d.x FROM (SELECT * FROM a) d")
		require.NoError(t, err)
		assert.Equal(t, []ColumnLineage{
			lineageEdge("", "x", up(ansiURN("a"), "x")),
		}, rec.ColumnLineage)
	})
}

func TestExtract_WildcardWithoutCatalog(t *testing.T) {
	ext := newExtractor(t, Options{})

	rec, err := ext.Extract("SELECT d.x FROM (SELECT * FROM a) d")
	require.NoError(t, err)

	// The sentinel is inside the derived table; the outer reference still
	// resolves through it.
	assert.Equal(t, []ColumnLineage{
		lineageEdge("", "x", up(ansiURN("a"), "x")),
	}, rec.ColumnLineage)
	assert.InDelta(t, 0.7, rec.DebugInfo.Confidence, 1e-9)
}

// =============================================================================
// Warnings and demotion
// =============================================================================

func TestExtract_UnsupportedConstruct(t *testing.T) {
	ext := newExtractor(t, Options{Dialect: "postgres"})

	rec, err := ext.Extract("SELECT a FROM t FOR UPDATE")
	require.NoError(t, err)

	require.Len(t, rec.DebugInfo.Warnings, 1)
	w := rec.DebugInfo.Warnings[0]
	assert.Equal(t, UnsupportedConstruct, w.Kind)
	assert.Contains(t, w.Message, "FOR UPDATE")
	assert.Equal(t, 1, w.Line)
	assert.InDelta(t, 0.9, rec.DebugInfo.Confidence, 1e-9)
}

func TestExtract_MultiTargetDemoted(t *testing.T) {
	ext := newExtractor(t, Options{Dialect: "snowflake"})

	rec, err := ext.Extract("INSERT ALL INTO a (x) VALUES (v) INTO b VALUES (v) SELECT v FROM src")
	require.NoError(t, err)

	urn := func(name string) string {
		return "urn:li:dataset:(urn:li:dataPlatform:snowflake," + name + ",PROD)"
	}
	assert.Equal(t, QueryUnknown, rec.QueryType)
	assert.Equal(t, []string{urn("SRC")}, rec.InTables)
	assert.Equal(t, []string{urn("A"), urn("B")}, rec.OutTables)
	assert.Empty(t, rec.ColumnLineage)
	assert.Zero(t, rec.DebugInfo.Confidence)

	require.NotEmpty(t, rec.DebugInfo.Warnings)
	assert.Equal(t, MultiTargetUnsupported, rec.DebugInfo.Warnings[len(rec.DebugInfo.Warnings)-1].Kind)
}

func TestExtract_UnknownStatement(t *testing.T) {
	ext := newExtractor(t, Options{})

	rec, err := ext.Extract("DROP TABLE old_orders")
	require.NoError(t, err)

	assert.Equal(t, QueryUnknown, rec.QueryType)
	assert.Zero(t, rec.DebugInfo.Confidence)
	assert.Empty(t, rec.ColumnLineage)
	assert.NotEmpty(t, rec.DebugInfo.GeneralizedStatement)
}

// =============================================================================
// Determinism and fingerprints
// =============================================================================

func TestExtract_Deterministic(t *testing.T) {
	ext := newExtractor(t, Options{})
	sql := "CREATE VIEW v AS SELECT o.id, c.name FROM orders o JOIN customers c ON o.cid = c.id WHERE o.amount > 100"

	first, err := ext.Extract(sql)
	require.NoError(t, err)
	want, err := json.Marshal(first)
	require.NoError(t, err)

	for range 5 {
		rec, err := ext.Extract(sql)
		require.NoError(t, err)
		got, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func TestExtract_FingerprintIgnoresLiterals(t *testing.T) {
	ext := newExtractor(t, Options{})

	a, err := ext.Extract("SELECT id FROM orders WHERE status = 'open' AND amount > 10 AND region IN (1, 2, 3)")
	require.NoError(t, err)
	b, err := ext.Extract("select id from orders where status = 'closed' and amount > 99.5 and region in (7)")
	require.NoError(t, err)
	c, err := ext.Extract("SELECT id FROM orders WHERE status = 'open' AND amount < 10 AND region IN (1)")
	require.NoError(t, err)

	assert.Equal(t, a.QueryFingerprint, b.QueryFingerprint)
	assert.NotEqual(t, a.QueryFingerprint, c.QueryFingerprint)
	assert.Equal(t, Fingerprint(a.DebugInfo.GeneralizedStatement), a.QueryFingerprint)
}

func TestExtract_RecordJSONShape(t *testing.T) {
	ext := newExtractor(t, Options{})

	rec, err := ext.Extract("SELECT 1 AS one")
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.ElementsMatch(t,
		[]string{"query_type", "query_type_props", "query_fingerprint", "in_tables", "out_tables", "column_lineage", "debug_info"},
		keys(raw))
	assert.Equal(t, map[string]any{}, raw["query_type_props"])
	assert.Equal(t, []any{}, raw["in_tables"])

	debug, ok := raw["debug_info"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, debug, "warnings")
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// =============================================================================
// Scripts and batches
// =============================================================================

func TestExtractScript(t *testing.T) {
	ext := newExtractor(t, Options{})

	results, err := ext.ExtractScript("INSERT INTO a SELECT x FROM b;\nSELECT FROM;\nDELETE FROM c")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, QueryInsert, results[0].Record.QueryType)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Record)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, QueryDelete, results[2].Record.QueryType)
}

func TestExtractAll(t *testing.T) {
	ext := newExtractor(t, Options{})

	recs, err := ext.ExtractAll("INSERT INTO a SELECT x FROM b; CREATE VIEW v AS SELECT x FROM a")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, QueryInsert, recs[0].QueryType)
	assert.Equal(t, QueryCreateView, recs[1].QueryType)

	_, err = ext.ExtractAll("SELECT x FROM a; SELECT FROM")
	require.Error(t, err)
	assert.ErrorContains(t, err, "statement 2")

	var perr *parser.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestExtractBatch(t *testing.T) {
	ext := newExtractor(t, Options{Workers: 2})

	sqls := []string{
		"INSERT INTO t1 SELECT a FROM s1",
		"SELECT FROM",
		"CREATE VIEW v AS SELECT b FROM s2",
		"DELETE FROM t3",
		"UPDATE t4 SET c = 1",
	}
	results := ext.ExtractBatch(context.Background(), sqls)
	require.Len(t, results, len(sqls))

	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, sqls[i], res.SQL)
	}
	assert.Equal(t, []string{ansiURN("t1")}, results[0].Record.OutTables)
	assert.Error(t, results[1].Err)
	assert.Equal(t, []string{ansiURN("v")}, results[2].Record.OutTables)
	assert.Equal(t, QueryDelete, results[3].Record.QueryType)
	assert.Equal(t, QueryUpdate, results[4].Record.QueryType)
}

func TestExtractBatch_Cancelled(t *testing.T) {
	ext := newExtractor(t, Options{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ext.ExtractBatch(ctx, []string{"SELECT a FROM t", "SELECT b FROM u"})
	require.Len(t, results, 2)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.Nil(t, res.Record)
	}
}

// =============================================================================
// Properties
// =============================================================================

func TestExtract_Properties(t *testing.T) {
	ext := newExtractor(t, Options{Dialect: "duckdb"})

	sqls := []string{
		"CREATE VIEW v AS SELECT a.x, b.y FROM a JOIN b ON a.id = b.id",
		"INSERT INTO t SELECT * FROM s",
		"MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN UPDATE SET v = s.v",
		"WITH c AS (SELECT id, COUNT(*) AS n FROM e GROUP BY id) SELECT c.n / 2 AS half FROM c",
		"SELECT * FROM read_csv('x.csv')",
		"UPDATE t SET v = (SELECT MAX(v) FROM s)",
	}

	for _, sql := range sqls {
		rec, err := ext.Extract(sql)
		require.NoError(t, err, sql)

		known := make(map[string]bool)
		for _, table := range append(slices.Concat(rec.InTables, rec.OutTables), "") {
			known[table] = true
		}
		for _, cl := range rec.ColumnLineage {
			for _, table := range cl.Tables() {
				assert.True(t, known[table], "%s: %s not in in/out tables", sql, table)
			}
		}
		if rec.QueryType != QueryUnknown {
			assert.LessOrEqual(t, len(rec.OutTables), 1, sql)
		}
		assert.GreaterOrEqual(t, rec.DebugInfo.Confidence, 0.0, sql)
		assert.LessOrEqual(t, rec.DebugInfo.Confidence, 1.0, sql)
	}
}
