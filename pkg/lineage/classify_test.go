package lineage

import (
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, dialectName, sql string) core.Stmt {
	t.Helper()
	d, ok := dialect.Get(dialectName)
	require.True(t, ok, "dialect %s not registered", dialectName)
	stmt, _, err := parser.ParseStatement(sql, d)
	require.NoError(t, err)
	return stmt
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		want  QueryType
		props map[string]any
	}{
		{name: "view", sql: "CREATE VIEW v AS SELECT 1", want: QueryCreateView, props: map[string]any{"kind": "VIEW"}},
		{name: "materialized view", sql: "CREATE MATERIALIZED VIEW v AS SELECT 1", want: QueryCreateView, props: map[string]any{"kind": "MATERIALIZED_VIEW"}},
		{name: "replace temporary view", sql: "CREATE OR REPLACE TEMPORARY VIEW v AS SELECT 1", want: QueryCreateView, props: map[string]any{"kind": "VIEW", "temporary": true, "replace": true}},
		{name: "ctas", sql: "CREATE TABLE t AS SELECT a FROM s", want: QueryCreateTableAs, props: map[string]any{}},
		{name: "insert", sql: "INSERT INTO t SELECT a FROM s", want: QueryInsert, props: map[string]any{}},
		{name: "update", sql: "UPDATE t SET a = 1", want: QueryUpdate, props: map[string]any{}},
		{name: "delete", sql: "DELETE FROM t", want: QueryDelete, props: map[string]any{}},
		{name: "merge", sql: "MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN DELETE", want: QueryMerge, props: map[string]any{}},
		{name: "select", sql: "SELECT a FROM t", want: QuerySelect, props: map[string]any{}},
		{name: "unknown", sql: "DROP TABLE t", want: QueryUnknown, props: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt, props := Classify(parseOne(t, "ansi", tt.sql))
			assert.Equal(t, tt.want, qt)
			assert.Equal(t, tt.props, props)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	qt, props := Classify(nil)
	assert.Equal(t, QueryUnknown, qt)
	assert.NotNil(t, props)
}
