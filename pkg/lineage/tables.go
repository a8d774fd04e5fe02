package lineage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

// platformNames maps dialect names to dataset platform names where the
// two differ.
var platformNames = map[string]string{
	"tsql": "mssql",
}

// TableResolver qualifies table names against the configured defaults and
// renders them as dataset URNs.
type TableResolver struct {
	dialect       *dialect.Dialect
	defaultDB     string
	defaultSchema string
	platform      string
	environment   string
	namespace     string
}

// NewTableResolver creates a resolver for one dialect.
func NewTableResolver(d *dialect.Dialect, opts Options) *TableResolver {
	r := &TableResolver{
		dialect:     d,
		platform:    opts.Platform,
		environment: strings.ToUpper(opts.Environment),
		namespace:   opts.Namespace,
	}
	if opts.DefaultDB != "" {
		r.defaultDB = d.NormalizeName(opts.DefaultDB)
	}
	if opts.DefaultSchema != "" {
		r.defaultSchema = d.NormalizeName(opts.DefaultSchema)
	}
	if r.platform == "" {
		r.platform = d.Name
		if p, ok := platformNames[d.Name]; ok {
			r.platform = p
		}
	}
	if r.environment == "" {
		r.environment = DefaultEnvironment
	}
	if r.namespace == "" {
		r.namespace = DefaultNamespace
	}
	return r
}

// Qualify returns the dotted name of a table with the configured default
// database and schema filled in for the parts the statement omits.
func (r *TableResolver) Qualify(t *core.TableName) string {
	catalog, schema := t.Catalog, t.Schema
	switch {
	case catalog == "" && schema == "":
		catalog, schema = r.defaultDB, r.defaultSchema
	case catalog == "":
		catalog = r.defaultDB
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{catalog, schema, t.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// URN renders a qualified name as a dataset identifier.
func (r *TableResolver) URN(qualified string) string {
	return fmt.Sprintf("urn:%s:dataset:(urn:%s:dataPlatform:%s,%s,%s)",
		r.namespace, r.namespace, r.platform, qualified, r.environment)
}

// TableURN qualifies a table and renders its URN.
func (r *TableResolver) TableURN(t *core.TableName) string {
	return r.URN(r.Qualify(t))
}

// Resolve returns the sorted, deduplicated URNs a statement reads and
// writes. A table may appear in both lists.
func (r *TableResolver) Resolve(stmt core.Stmt) (in, out []string) {
	w := &tableWalker{resolver: r, reads: make(map[string]struct{})}
	root := NewScope()
	var writes []string

	switch s := stmt.(type) {
	case *core.SelectStmt:
		w.walkSelect(s, root)
	case *core.CreateViewStmt:
		writes = append(writes, r.TableURN(s.Name))
		w.walkSelect(s.Select, root)
	case *core.CreateTableAsStmt:
		writes = append(writes, r.TableURN(s.Name))
		w.walkSelect(s.Select, root)
	case *core.InsertStmt:
		writes = append(writes, r.TableURN(s.Table))
		w.walkSelect(s.Select, root)
		for _, row := range s.Values {
			w.walkExprs(row, root)
		}
	case *core.UpdateStmt:
		writes = append(writes, r.TableURN(s.Table))
		scope := w.walkWith(s.With, root)
		for _, a := range s.Set {
			w.walkExpr(a.Value, scope)
		}
		w.walkFrom(s.From, scope)
		w.walkExpr(s.Where, scope)
	case *core.DeleteStmt:
		writes = append(writes, r.TableURN(s.Table))
		scope := w.walkWith(s.With, root)
		w.walkFrom(s.Using, scope)
		w.walkExpr(s.Where, scope)
	case *core.MergeStmt:
		writes = append(writes, r.TableURN(s.Target))
		scope := w.walkWith(s.With, root)
		w.walkTableRef(s.Source, scope)
		w.walkExpr(s.On, scope)
		for _, c := range s.Clauses {
			w.walkExpr(c.Condition, scope)
			for _, a := range c.Set {
				w.walkExpr(a.Value, scope)
			}
			w.walkExprs(c.Values, scope)
		}
	case *core.UnknownStmt:
		for _, t := range s.Tables {
			writes = append(writes, r.TableURN(t))
		}
		for _, t := range s.Sources {
			w.reads[r.TableURN(t)] = struct{}{}
		}
	}

	in = make([]string, 0, len(w.reads))
	for urn := range w.reads {
		in = append(in, urn)
	}
	slices.Sort(in)
	slices.Sort(writes)
	return in, slices.Compact(writes)
}

// tableWalker collects read tables at every nesting level. It binds CTEs
// exactly as the column resolver does, so both agree on which names are
// physical.
type tableWalker struct {
	resolver *TableResolver
	reads    map[string]struct{}
}

func (w *tableWalker) walkWith(with *core.WithClause, scope *Scope) *Scope {
	inner, defs := scope.withCTEs(with)
	for _, def := range defs {
		w.walkSelect(def.query, def.scope)
	}
	return inner
}

func (w *tableWalker) walkSelect(sel *core.SelectStmt, scope *Scope) {
	if sel == nil {
		return
	}
	w.walkBody(sel.Body, w.walkWith(sel.With, scope))
}

func (w *tableWalker) walkBody(body *core.SelectBody, scope *Scope) {
	for b := body; b != nil; b = b.Right {
		w.walkCore(b.Left, scope)
		w.walkOrderBy(b.OrderBy, scope)
		w.walkExpr(b.Limit, scope)
		w.walkExpr(b.Offset, scope)
	}
}

func (w *tableWalker) walkCore(sc *core.SelectCore, scope *Scope) {
	if sc == nil {
		return
	}
	for _, item := range sc.Columns {
		w.walkExpr(item.Expr, scope)
	}
	w.walkFrom(sc.From, scope)
	w.walkExpr(sc.Where, scope)
	w.walkExprs(sc.GroupBy, scope)
	w.walkExpr(sc.Having, scope)
	w.walkExpr(sc.Qualify, scope)
	w.walkOrderBy(sc.OrderBy, scope)
	for _, def := range sc.Windows {
		w.walkWindow(def.Spec, scope)
	}
}

func (w *tableWalker) walkFrom(from *core.FromClause, scope *Scope) {
	if from == nil {
		return
	}
	w.walkTableRef(from.Source, scope)
	for _, j := range from.Joins {
		w.walkTableRef(j.Right, scope)
		w.walkExpr(j.Condition, scope)
	}
}

func (w *tableWalker) walkTableRef(ref core.TableRef, scope *Scope) {
	switch t := ref.(type) {
	case *core.TableName:
		if scope.IsCTE(t) {
			return
		}
		w.reads[w.resolver.TableURN(t)] = struct{}{}
	case *core.DerivedTable:
		w.walkSelect(t.Select, scope)
	case *core.TableFunc:
		w.walkExprs(t.Args, scope)
	case *core.ParenTable:
		w.walkFrom(t.From, scope)
	}
}

func (w *tableWalker) walkExprs(exprs []core.Expr, scope *Scope) {
	for _, e := range exprs {
		w.walkExpr(e, scope)
	}
}

func (w *tableWalker) walkOrderBy(items []core.OrderByItem, scope *Scope) {
	for _, item := range items {
		w.walkExpr(item.Expr, scope)
	}
}

func (w *tableWalker) walkWindow(spec *core.WindowSpec, scope *Scope) {
	if spec == nil {
		return
	}
	w.walkExprs(spec.PartitionBy, scope)
	w.walkOrderBy(spec.OrderBy, scope)
}

func (w *tableWalker) walkExpr(e core.Expr, scope *Scope) {
	walkExpr(e, func(node core.Expr) {
		switch x := node.(type) {
		case *core.SubqueryExpr:
			w.walkSelect(x.Select, scope)
		case *core.ExistsExpr:
			w.walkSelect(x.Select, scope)
		case *core.InExpr:
			w.walkSelect(x.Query, scope)
		}
	})
}
