package dialects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects"
)

func TestBuiltinDialectsRegistered(t *testing.T) {
	names := dialect.List()
	for _, want := range []string{"ansi", "databricks", "duckdb", "mysql", "postgres", "snowflake", "tsql"} {
		assert.Contains(t, names, want)
	}
}

func TestDialectIdentifierRules(t *testing.T) {
	tests := []struct {
		dialect     string
		quote       string
		norm        core.NormalizationStrategy
		input       string
		normalized  string
		quotedInput string
	}{
		{"ansi", `"`, core.NormLowercase, "Orders", "orders", "Orders"},
		{"postgres", `"`, core.NormLowercase, "Orders", "orders", "Orders"},
		{"snowflake", `"`, core.NormUppercase, "Orders", "ORDERS", "Orders"},
		{"duckdb", `"`, core.NormCaseInsensitive, "Orders", "orders", "orders"},
		{"databricks", "`", core.NormCaseInsensitive, "Orders", "orders", "orders"},
		{"mysql", "`", core.NormCaseInsensitive, "Orders", "orders", "orders"},
		{"tsql", "[", core.NormCaseInsensitive, "Orders", "orders", "orders"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			d, ok := dialect.Get(tt.dialect)
			require.True(t, ok)
			assert.Equal(t, tt.quote, d.Identifiers.Quote)
			assert.Equal(t, tt.norm, d.Identifiers.Normalization)
			assert.Equal(t, tt.normalized, d.NormalizeName(tt.input))
			assert.Equal(t, tt.quotedInput, d.NormalizeQuoted(tt.input))
		})
	}
}

func TestDialectFeatureKeywords(t *testing.T) {
	tests := []struct {
		dialect string
		keyword string
		want    bool
	}{
		{"snowflake", "qualify", true},
		{"duckdb", "qualify", true},
		{"databricks", "qualify", true},
		{"postgres", "qualify", false},
		{"ansi", "qualify", false},
		{"tsql", "top", true},
		{"postgres", "top", false},
		{"postgres", "ilike", true},
		{"mysql", "ilike", false},
		{"mysql", "rlike", true},
		{"snowflake", "pivot", true},
		{"postgres", "pivot", false},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.keyword, func(t *testing.T) {
			d, ok := dialect.Get(tt.dialect)
			require.True(t, ok)
			_, found := d.LookupKeyword(tt.keyword)
			assert.Equal(t, tt.want, found)
		})
	}
}

func TestDialectCastOperatorSymbol(t *testing.T) {
	for _, name := range []string{"postgres", "snowflake", "duckdb", "databricks"} {
		d, ok := dialect.Get(name)
		require.True(t, ok)
		assert.Contains(t, d.Symbols(), "::", name)
	}
	for _, name := range []string{"ansi", "mysql", "tsql"} {
		d, ok := dialect.Get(name)
		require.True(t, ok)
		assert.NotContains(t, d.Symbols(), "::", name)
	}
}

func TestDialectFunctionClassification(t *testing.T) {
	tests := []struct {
		dialect  string
		function string
		want     dialect.Type
	}{
		{"ansi", "sum", dialect.LineageAggregate},
		{"ansi", "row_number", dialect.LineageWindow},
		{"ansi", "current_timestamp", dialect.LineageGenerator},
		{"ansi", "upper", dialect.LineagePassthrough},
		{"duckdb", "read_parquet", dialect.LineageTable},
		{"duckdb", "list", dialect.LineageAggregate},
		{"postgres", "generate_series", dialect.LineageTable},
		{"postgres", "jsonb_agg", dialect.LineageAggregate},
		{"snowflake", "flatten", dialect.LineageTable},
		{"snowflake", "uuid_string", dialect.LineageGenerator},
		{"databricks", "collect_list", dialect.LineageAggregate},
		{"mysql", "group_concat", dialect.LineageAggregate},
		{"tsql", "getdate", dialect.LineageGenerator},
		{"tsql", "count_big", dialect.LineageAggregate},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.function, func(t *testing.T) {
			d, ok := dialect.Get(tt.dialect)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.FunctionLineageType(tt.function))
		})
	}
}

func TestDialectDefaultSchema(t *testing.T) {
	expected := map[string]string{
		"ansi":       "",
		"postgres":   "public",
		"snowflake":  "PUBLIC",
		"duckdb":     "main",
		"databricks": "default",
		"mysql":      "",
		"tsql":       "dbo",
	}
	for name, schema := range expected {
		d, ok := dialect.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, schema, d.DefaultSchema, name)
	}
}
