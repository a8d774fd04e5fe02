package lineage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	p := DefaultPenalties()

	tests := []struct {
		name string
		qt   QueryType
		d    Deductions
		want float64
	}{
		{name: "clean", qt: QueryCreateView, want: 1},
		{name: "one empty upstream", qt: QueryCreateView, d: Deductions{EmptyUpstream: 1}, want: 0.2},
		{name: "wildcard", qt: QueryInsert, d: Deductions{UnresolvedWildcard: 1}, want: 0.7},
		{name: "wildcard and construct", qt: QuerySelect, d: Deductions{UnresolvedWildcard: 1, UnsupportedConstruct: 2}, want: 0.5},
		{name: "ambiguous", qt: QuerySelect, d: Deductions{AmbiguousColumn: 2}, want: 0.6},
		{name: "clamped at zero", qt: QuerySelect, d: Deductions{EmptyUpstream: 3}, want: 0},
		{name: "unknown", qt: QueryUnknown, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.qt, tt.d, p), 1e-9)
		})
	}
}

func TestScore_CustomPenalties(t *testing.T) {
	p := Penalties{EmptyUpstream: 0.25}
	assert.InDelta(t, 0.5, Score(QuerySelect, Deductions{EmptyUpstream: 2}, p), 1e-9)
	assert.InDelta(t, 1.0, Score(QuerySelect, Deductions{UnresolvedWildcard: 4}, p), 1e-9)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("SELECT a FROM t WHERE b = ?")
	assert.True(t, strings.HasPrefix(a, FingerprintPrefix))
	assert.Len(t, a, len(FingerprintPrefix)+64)
	assert.Equal(t, a, Fingerprint("SELECT a FROM t WHERE b = ?"))
	assert.NotEqual(t, a, Fingerprint("SELECT a FROM t WHERE c = ?"))

	// sha256 of the empty string.
	assert.Equal(t, FingerprintPrefix+"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint(""))
}

func TestAssemble(t *testing.T) {
	parts := Parts{
		QueryType:   QueryInsert,
		Generalized: "INSERT INTO t SELECT a FROM s",
		InTables:    []string{"s2", "s1", "s2"},
		OutTables:   []string{"t"},
		Lineage: []ColumnLineage{
			{Downstream: Downstream{Table: "t", Column: "a"}, Upstreams: []Upstream{{Table: "s1", Column: "a"}}},
		},
		Deductions: Deductions{UnsupportedConstruct: 1},
		Warnings:   []Warning{{Kind: UnsupportedConstruct, Message: "unsupported construct RETURNING skipped"}},
		Penalties:  DefaultPenalties(),
	}

	rec, err := Assemble(parts)
	require.NoError(t, err)

	assert.Equal(t, QueryInsert, rec.QueryType)
	assert.Equal(t, map[string]any{}, rec.QueryTypeProps)
	assert.Equal(t, []string{"s1", "s2"}, rec.InTables)
	assert.Equal(t, []string{"t"}, rec.OutTables)
	assert.Equal(t, Fingerprint(parts.Generalized), rec.QueryFingerprint)
	assert.Equal(t, parts.Generalized, rec.DebugInfo.GeneralizedStatement)
	assert.InDelta(t, 0.9, rec.DebugInfo.Confidence, 1e-9)
	assert.Len(t, rec.DebugInfo.Warnings, 1)

	// Inputs are not modified.
	assert.Equal(t, []string{"s2", "s1", "s2"}, parts.InTables)
}

func TestAssemble_SelfReference(t *testing.T) {
	rec, err := Assemble(Parts{
		QueryType: QueryInsert,
		InTables:  []string{"t"},
		OutTables: []string{"t"},
		Penalties: DefaultPenalties(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, rec.InTables)
	assert.Equal(t, []string{"t"}, rec.OutTables)
	assert.Equal(t, []ColumnLineage{}, rec.ColumnLineage)
}

func TestAssemble_MultipleTargetsDemoted(t *testing.T) {
	rec, err := Assemble(Parts{
		QueryType: QueryInsert,
		InTables:  []string{"s"},
		OutTables: []string{"b", "a"},
		Lineage: []ColumnLineage{
			{Downstream: Downstream{Table: "a", Column: "x"}, Upstreams: []Upstream{{Table: "s", Column: "x"}}},
		},
		Penalties: DefaultPenalties(),
	})
	require.NoError(t, err)

	assert.Equal(t, QueryUnknown, rec.QueryType)
	assert.Equal(t, []string{"a", "b"}, rec.OutTables)
	assert.Empty(t, rec.ColumnLineage)
	assert.Zero(t, rec.DebugInfo.Confidence)
	require.Len(t, rec.DebugInfo.Warnings, 1)
	assert.Equal(t, MultiTargetUnsupported, rec.DebugInfo.Warnings[0].Kind)
}

func TestAssemble_Inconsistent(t *testing.T) {
	tests := []struct {
		name    string
		lineage ColumnLineage
		table   string
	}{
		{
			name:    "unknown upstream",
			lineage: ColumnLineage{Downstream: Downstream{Table: "t", Column: "a"}, Upstreams: []Upstream{{Table: "ghost", Column: "a"}}},
			table:   "ghost",
		},
		{
			name:    "unknown downstream",
			lineage: ColumnLineage{Downstream: Downstream{Table: "other", Column: "a"}, Upstreams: []Upstream{{Table: "s", Column: "a"}}},
			table:   "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Assemble(Parts{
				QueryType: QueryInsert,
				InTables:  []string{"s"},
				OutTables: []string{"t"},
				Lineage:   []ColumnLineage{tt.lineage},
				Penalties: DefaultPenalties(),
			})
			require.Error(t, err)
			assert.Nil(t, rec)

			var rerr *ResolutionInconsistencyError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.table, rerr.Table)
			assert.Equal(t, "a", rerr.Column)
		})
	}
}

func TestAssemble_SelectHasNoDownstreamTable(t *testing.T) {
	rec, err := Assemble(Parts{
		QueryType: QuerySelect,
		InTables:  []string{"s"},
		Lineage: []ColumnLineage{
			{Downstream: Downstream{Column: "a"}, Upstreams: []Upstream{{Table: "s", Column: "a"}}},
		},
		Penalties: DefaultPenalties(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{}, rec.OutTables)
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: UnsupportedConstruct, Message: "unsupported construct PIVOT skipped", Line: 3, Column: 7}
	assert.Contains(t, w.String(), "PIVOT")
	assert.Contains(t, w.String(), string(UnsupportedConstruct))
}

func TestResolutionInconsistencyError(t *testing.T) {
	err := &ResolutionInconsistencyError{Table: "t", Column: "a", Reason: "upstream table is not read"}
	assert.Equal(t, "lineage inconsistency for t.a: upstream table is not read", err.Error())

	err = &ResolutionInconsistencyError{Table: "cte", Reason: "cycle"}
	assert.Equal(t, "lineage inconsistency for cte: cycle", err.Error())
}
