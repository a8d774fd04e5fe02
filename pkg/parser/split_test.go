package parser_test

import (
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/leapstack-labs/sqllineage/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "two statements",
			sql:  "SELECT 1; SELECT 2",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "trailing semicolon and blanks",
			sql:  "  SELECT 1 ;\n\n;  ",
			want: []string{"SELECT 1"},
		},
		{
			name: "semicolon in string",
			sql:  "SELECT ';' AS s; SELECT 2",
			want: []string{"SELECT ';' AS s", "SELECT 2"},
		},
		{
			name: "semicolon in comment",
			sql:  "SELECT 1 -- a;b\n; SELECT 2 /* ; */",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "semicolon in quoted identifier",
			sql:  `SELECT "a;b" FROM t`,
			want: []string{`SELECT "a;b" FROM t`},
		},
		{
			name: "comment only",
			sql:  "-- nothing here\n/* or here */",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := parser.Split(tt.sql, mustDialect(t, "ansi"))
			var got []string
			for _, seg := range segments {
				got = append(got, seg.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitPositions(t *testing.T) {
	segments := parser.Split("SELECT 1;\n  SELECT 2", mustDialect(t, "ansi"))

	require.Len(t, segments, 2)
	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, segments[0].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 12}, segments[1].Pos)
}
