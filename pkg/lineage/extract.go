package lineage

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/format"
	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"golang.org/x/sync/errgroup"
)

// Extractor turns SQL text into lineage records. It holds no mutable
// state, so one Extractor may serve many goroutines.
type Extractor struct {
	dialect   *dialect.Dialect
	tables    *TableResolver
	penalties Penalties
	workers   int
	catalog   SchemaCatalog
	logger    *slog.Logger
}

// Result is the outcome of one statement in a batch or script.
type Result struct {
	Index  int
	SQL    string
	Record *Record
	Err    error
}

// NewExtractor creates an extractor for the dialect named in opts.
func NewExtractor(opts Options, options ...Option) (*Extractor, error) {
	if opts.Dialect == "" {
		return nil, dialect.ErrDialectRequired
	}
	d, ok := dialect.Get(opts.Dialect)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, opts.Dialect)
	}

	e := &Extractor{
		dialect:   d,
		tables:    NewTableResolver(d, opts),
		penalties: opts.Penalties,
		workers:   opts.Workers,
		logger:    slog.New(slog.DiscardHandler),
	}
	if e.penalties == (Penalties{}) {
		e.penalties = DefaultPenalties()
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// Dialect returns the extractor's dialect.
func (e *Extractor) Dialect() *dialect.Dialect {
	return e.dialect
}

// Extract returns the record of the first statement in sql.
func (e *Extractor) Extract(sql string) (*Record, error) {
	stmts, err := parser.Parse(sql, e.dialect)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, ErrEmptyInput
	}
	return e.extractStatement(stmts[0])
}

// ExtractAll returns one record per statement in sql. The first failing
// statement aborts the whole call.
func (e *Extractor) ExtractAll(sql string) ([]*Record, error) {
	results, err := e.ExtractScript(sql)
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("statement %d: %w", res.Index+1, res.Err)
		}
		records = append(records, res.Record)
	}
	return records, nil
}

// ExtractScript extracts every statement in sql, reporting failures per
// statement instead of aborting.
func (e *Extractor) ExtractScript(sql string) ([]Result, error) {
	stmts, err := parser.Parse(sql, e.dialect)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, ErrEmptyInput
	}

	results := make([]Result, len(stmts))
	for i, st := range stmts {
		rec, err := e.extractStatement(st)
		results[i] = Result{Index: st.Index, SQL: st.Text, Record: rec, Err: err}
	}
	return results, nil
}

// ExtractBatch extracts the first statement of each input on a bounded
// pool of workers. Results keep input order, and each failure stays in
// its own Result. Once ctx is done, inputs not yet started fail with the
// context error.
func (e *Extractor) ExtractBatch(ctx context.Context, sqls []string) []Result {
	results := make([]Result, len(sqls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, sql := range sqls {
		results[i] = Result{Index: i, SQL: sql}
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Record, results[i].Err = e.Extract(sql)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// extractStatement runs the pipeline for one parsed statement: classify,
// resolve tables, resolve columns, generalize, then assemble and score.
func (e *Extractor) extractStatement(st *parser.Statement) (*Record, error) {
	if st.Err != nil {
		return nil, st.Err
	}

	qt, props := Classify(st.Stmt)
	in, out := e.tables.Resolve(st.Stmt)

	cols := newColumnResolver(e.dialect, e.tables, e.catalog)
	edges, err := cols.statementLineage(st.Stmt)
	if err != nil {
		return nil, err
	}
	deductions := cols.deductions(edges)

	warnings := make([]Warning, 0, len(st.Warnings))
	for _, w := range st.Warnings {
		e.logger.Warn("unsupported construct skipped",
			"statement", st.Index, "construct", w.Construct, "line", w.Pos.Line, "column", w.Pos.Column)
		warnings = append(warnings, Warning{
			Kind:    UnsupportedConstruct,
			Message: fmt.Sprintf("unsupported construct %s skipped", w.Construct),
			Line:    w.Pos.Line,
			Column:  w.Pos.Column,
		})
	}
	deductions.UnsupportedConstruct = len(warnings)

	lineage := make([]ColumnLineage, len(edges))
	for i, ed := range edges {
		lineage[i] = ed.ColumnLineage
	}

	rec, err := Assemble(Parts{
		QueryType:   qt,
		Props:       props,
		Generalized: e.generalize(st),
		InTables:    in,
		OutTables:   out,
		Lineage:     lineage,
		Deductions:  deductions,
		Warnings:    warnings,
		Penalties:   e.penalties,
	})
	if err != nil {
		return nil, fmt.Errorf("statement %d: %w", st.Index+1, err)
	}

	e.logger.Debug("statement extracted",
		"statement", st.Index,
		"query_type", rec.QueryType,
		"confidence", rec.DebugInfo.Confidence,
		"in_tables", len(rec.InTables),
		"columns", len(rec.ColumnLineage))
	return rec, nil
}

// generalize renders the statement for fingerprinting. Unmodeled
// statements keep only a summary in the AST, so their text is
// generalized token by token instead.
func (e *Extractor) generalize(st *parser.Statement) string {
	if _, ok := st.Stmt.(*core.UnknownStmt); ok {
		return format.GeneralizeText(st.Text, e.dialect)
	}
	return format.Generalize(st.Stmt, e.dialect)
}
