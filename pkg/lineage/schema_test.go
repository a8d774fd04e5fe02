package lineage

import (
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFamily(t *testing.T) {
	tests := map[string]string{
		"INTEGER":                  "NUMBER",
		"bigint":                   "NUMBER",
		"NUMBER(38,0)":             "NUMBER",
		"double precision":         "NUMBER",
		"VARCHAR(255)":             "STRING",
		"character varying":        "STRING",
		"text":                     "STRING",
		"BOOLEAN":                  "BOOLEAN",
		"DATE":                     "DATE",
		"DATETIME":                 "TIMESTAMP",
		"timestamp with time zone": "TIMESTAMP",
		"TIME":                     "TIME",
		"INTERVAL":                 "TIME",
		"BYTEA":                    "BYTES",
		"INTEGER[]":                "ARRAY",
		"MAP(VARCHAR, INTEGER)":    "MAP",
		"STRUCT(a INTEGER)":        "STRUCT",
		"VARIANT":                  "STRUCT",
		"GEOGRAPHY":                "NULL",
		"":                         "NULL",
	}

	for native, want := range tests {
		t.Run(native, func(t *testing.T) {
			assert.Equal(t, want, TypeFamily(native))
		})
	}
}

func TestMapCatalog(t *testing.T) {
	cat := MapCatalog{
		"DB.PUBLIC.ORDERS": {{Name: "ID", Type: "NUMBER"}},
		"db.public.Orders": {{Name: "id", Type: "INTEGER"}},
	}

	cols, ok := cat.Columns("db.public.Orders")
	require.True(t, ok)
	assert.Equal(t, "INTEGER", cols[0].Type)

	cols, ok = cat.Columns("DB.PUBLIC.ORDERS")
	require.True(t, ok)
	assert.Equal(t, "NUMBER", cols[0].Type)

	_, ok = MapCatalog{"db.public.orders": nil}.Columns("Db.Public.Orders")
	assert.True(t, ok)

	_, ok = cat.Columns("db.public.customers")
	assert.False(t, ok)
}

func TestTableResolver(t *testing.T) {
	d, ok := dialect.Get("snowflake")
	require.True(t, ok)

	r := NewTableResolver(d, Options{DefaultDB: "analytics", DefaultSchema: "raw", Environment: "qa"})

	assert.Equal(t, "ANALYTICS.RAW.ORDERS", r.Qualify(&core.TableName{Name: "ORDERS"}))
	assert.Equal(t, "ANALYTICS.SALES.ORDERS", r.Qualify(&core.TableName{Schema: "SALES", Name: "ORDERS"}))
	assert.Equal(t, "OTHER.SALES.ORDERS", r.Qualify(&core.TableName{Catalog: "OTHER", Schema: "SALES", Name: "ORDERS"}))
	assert.Equal(t,
		"urn:li:dataset:(urn:li:dataPlatform:snowflake,ANALYTICS.RAW.ORDERS,QA)",
		r.TableURN(&core.TableName{Name: "ORDERS"}))

	bare := NewTableResolver(d, Options{})
	assert.Equal(t, "ORDERS", bare.Qualify(&core.TableName{Name: "ORDERS"}))
	assert.Equal(t, "urn:li:dataset:(urn:li:dataPlatform:snowflake,x,PROD)", bare.URN("x"))
}

func TestTableResolver_Resolve(t *testing.T) {
	d, ok := dialect.Get("ansi")
	require.True(t, ok)
	r := NewTableResolver(d, Options{})

	tests := []struct {
		name string
		sql  string
		in   []string
		out  []string
	}{
		{
			name: "subqueries in expressions",
			sql:  "SELECT a FROM t WHERE b IN (SELECT b FROM u) AND EXISTS (SELECT 1 FROM v) AND c > (SELECT MAX(c) FROM w)",
			in:   []string{ansiURN("t"), ansiURN("u"), ansiURN("v"), ansiURN("w")},
		},
		{
			name: "nested cte shadows only inside",
			sql:  "SELECT * FROM (WITH t AS (SELECT 1 AS x FROM base) SELECT x FROM t) d JOIN t ON TRUE",
			in:   []string{ansiURN("base"), ansiURN("t")},
		},
		{
			name: "cte sees earlier sibling only",
			sql:  "WITH a AS (SELECT x FROM b), b AS (SELECT x FROM a) SELECT x FROM b",
			in:   []string{ansiURN("b")},
		},
		{
			name: "update from",
			sql:  "UPDATE t SET a = s.a FROM s WHERE t.id = s.id",
			in:   []string{ansiURN("s")},
			out:  []string{ansiURN("t")},
		},
		{
			name: "delete using",
			sql:  "DELETE FROM t USING s WHERE t.id = s.id",
			in:   []string{ansiURN("s")},
			out:  []string{ansiURN("t")},
		},
		{
			name: "insert values reads nothing",
			sql:  "INSERT INTO t VALUES (1, 2)",
			out:  []string{ansiURN("t")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := r.Resolve(parseOne(t, "ansi", tt.sql))
			assert.ElementsMatch(t, tt.in, in)
			assert.ElementsMatch(t, tt.out, out)
		})
	}
}

func TestScope(t *testing.T) {
	root := NewScope()
	root.Register(&ScopeEntry{Type: ScopeTable, Name: "t", Table: "urn:t"})

	child := root.Child()
	child.Register(&ScopeEntry{Type: ScopeTable, Name: "t", Table: "urn:inner", Columns: []string{"a"}})

	e, ok := child.Lookup("t")
	require.True(t, ok)
	assert.Equal(t, "urn:inner", e.Table)
	assert.True(t, e.Known())
	assert.True(t, e.HasColumn("a"))
	assert.False(t, e.HasColumn("b"))

	e, ok = root.Lookup("t")
	require.True(t, ok)
	assert.Equal(t, "urn:t", e.Table)
	assert.False(t, e.Known())

	_, ok = child.Lookup("missing")
	assert.False(t, ok)
	assert.Same(t, root, child.Parent())
	assert.Len(t, child.Entries(), 1)
}
