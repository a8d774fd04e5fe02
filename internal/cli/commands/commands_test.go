package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqllineage/internal/config"
	"github.com/leapstack-labs/sqllineage/internal/testutil"
	_ "github.com/leapstack-labs/sqllineage/pkg/dialects"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

func testContext(t *testing.T, cfg *config.Config) context.Context {
	t.Helper()
	ctx := config.WithLogger(context.Background(), testutil.NewTestLogger(t))
	if cfg != nil {
		ctx = config.WithConfig(ctx, &config.Loaded{Config: cfg})
	}
	return ctx
}

func TestNewExtractCommand(t *testing.T) {
	cmd := NewExtractCommand()

	assert.Equal(t, "extract [file...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"lines", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewFingerprintCommand(t *testing.T) {
	cmd := NewFingerprintCommand()
	assert.Equal(t, "fingerprint [file...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewDialectsCommand(t *testing.T) {
	cmd := NewDialectsCommand()
	assert.Equal(t, "dialects", cmd.Use)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetContext(testContext(t, &config.Config{Output: config.OutputJSON}))
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"name": "snowflake"`)
	assert.Contains(t, buf.String(), `"normalization": "uppercase"`)
}

func TestNewExtractor(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("tables:\n  t:\n    a: INTEGER\n    b: TEXT\n  t2:\n    a: BIGINT\n    b: TEXT\n"), 0o600))

	ctx := testContext(t, &config.Config{
		Dialect: "ansi",
		Catalog: config.CatalogConfig{File: catalogPath},
	})
	ex, err := newExtractor(ctx)
	require.NoError(t, err)

	rec, err := ex.Extract("INSERT INTO t2 SELECT * FROM t")
	require.NoError(t, err)
	require.Len(t, rec.ColumnLineage, 2)
	assert.Equal(t, "a", rec.ColumnLineage[0].Downstream.Column)
	assert.Equal(t, "NUMBER", rec.ColumnLineage[0].Downstream.ColumnType)
	assert.Equal(t, "BIGINT", rec.ColumnLineage[0].Downstream.NativeColumnType)
	assert.Equal(t, "a", rec.ColumnLineage[0].Upstreams[0].Column)

	ctx = testContext(t, &config.Config{
		Dialect: "ansi",
		Catalog: config.CatalogConfig{File: filepath.Join(dir, "missing.yaml")},
	})
	_, err = newExtractor(ctx)
	require.Error(t, err)
}

func TestExtractInputs(t *testing.T) {
	ctx := testContext(t, nil)
	ex, err := newExtractor(ctx)
	require.NoError(t, err)

	inputs := []input{
		{Name: "a.sql", SQL: "SELECT x FROM t; SELECT y FROM u"},
		{Name: "empty.sql", SQL: "  ;  "},
	}
	results := extractInputs(ctx, ex, inputs, false)
	require.Len(t, results, 3)

	assert.Equal(t, "a.sql", results[0].Source)
	assert.Equal(t, 1, results[1].Index)
	assert.Equal(t, "empty.sql", results[2].Source)
	assert.ErrorIs(t, results[2].Err, lineage.ErrEmptyInput)
	assert.Equal(t, 1, countFailures(results))
}

func TestExtractInputs_Lines(t *testing.T) {
	ctx := testContext(t, nil)
	ex, err := newExtractor(ctx)
	require.NoError(t, err)

	inputs := []input{{Name: "log", SQL: "SELECT a FROM t1\nnot sql at all\n\nSELECT b FROM t2"}}
	results := extractInputs(ctx, ex, inputs, true)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"log:1", "log:2", "log:4"}, []string{results[0].Source, results[1].Source, results[2].Source})
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestRenderer_Results(t *testing.T) {
	rec := &lineage.Record{
		QueryType: lineage.QueryCreateTableAs,
		InTables:  []string{"urn:li:dataset:(urn:li:dataPlatform:ansi,src,PROD)"},
		OutTables: []string{"urn:li:dataset:(urn:li:dataPlatform:ansi,dst,PROD)"},
		ColumnLineage: []lineage.ColumnLineage{
			{
				Downstream: lineage.Downstream{Table: "urn:li:dataset:(urn:li:dataPlatform:ansi,dst,PROD)", Column: "id"},
				Upstreams:  []lineage.Upstream{{Table: "urn:li:dataset:(urn:li:dataPlatform:ansi,src,PROD)", Column: "id"}},
			},
			{
				Downstream: lineage.Downstream{Table: "urn:li:dataset:(urn:li:dataPlatform:ansi,dst,PROD)", Column: "one"},
				Upstreams:  []lineage.Upstream{},
			},
		},
		DebugInfo: lineage.DebugInfo{
			Confidence: 0.7,
			Warnings:   []lineage.Warning{{Kind: lineage.UnsupportedConstruct, Message: "unsupported construct SAMPLE skipped"}},
		},
	}
	results := []sourcedResult{
		{Source: "x.sql", Result: lineage.Result{Record: rec}},
		{Source: "x.sql", Result: lineage.Result{Index: 1, Err: errors.New("boom")}},
	}

	var buf bytes.Buffer
	require.NoError(t, newRenderer(&buf, config.OutputTable).results(results))
	out := buf.String()
	for _, want := range []string{
		"x.sql #1  Create Table As Select  confidence 0.70",
		"in:  src",
		"out: dst",
		"warning: UnsupportedConstructWarning: unsupported construct SAMPLE skipped",
		"src.id",
		"x.sql #2  error: boom",
	} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, newRenderer(&buf, config.OutputAuto).results(results))
	assert.Contains(t, buf.String(), `"source": "x.sql"`)
	assert.Contains(t, buf.String(), `"error": "boom"`)
	assert.Contains(t, buf.String(), `"query_type": "CREATE_TABLE_AS_SELECT"`)
}

func TestQueryTypeTitle(t *testing.T) {
	assert.Equal(t, "Create Table As Select", queryTypeTitle(lineage.QueryCreateTableAs))
	assert.Equal(t, "Insert", queryTypeTitle(lineage.QueryInsert))
}

func TestDatasetName(t *testing.T) {
	assert.Equal(t, "db.s.t", datasetName("urn:li:dataset:(urn:li:dataPlatform:postgres,db.s.t,PROD)"))
	assert.Equal(t, "plain", datasetName("plain"))
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.sql")
	other := filepath.Join(dir, "other.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	var wrongFile atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{path}, testutil.NewTestLogger(t), func(changed string) {
			if changed != path {
				wrongFile.Store(true)
			}
			calls.Add(1)
		})
	}()

	// Writes repeat until the watcher is up and has seen one.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(other, []byte("SELECT 3"), 0o600)
		_ = os.WriteFile(path, []byte("SELECT 2"), 0o600)
		return calls.Load() > 0
	}, 5*time.Second, 200*time.Millisecond)
	assert.False(t, wrongFile.Load(), "only the watched file should be reported")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
