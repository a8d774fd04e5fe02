package lineage

import (
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

// edge is a lineage edge together with the expression that produced it,
// kept for scoring.
type edge struct {
	ColumnLineage
	expr core.Expr
}

// columnResolver computes column lineage for one statement. It memoizes
// every query level it evaluates, so each CTE, derived table and subquery
// is resolved once no matter how often it is referenced.
type columnResolver struct {
	dialect *dialect.Dialect
	tables  *TableResolver
	catalog SchemaCatalog

	stmts   map[*core.SelectStmt]*projection
	cores   map[*core.SelectCore]*projection
	ctes    map[*cteDef]*projection
	anchors map[*cteDef]*projection

	// CTEs under evaluation, innermost last.
	stack     []*cteDef
	anchoring map[*cteDef]bool

	ambiguous map[*core.ColumnRef]struct{}
	wildcards int
}

func newColumnResolver(d *dialect.Dialect, tables *TableResolver, catalog SchemaCatalog) *columnResolver {
	return &columnResolver{
		dialect:   d,
		tables:    tables,
		catalog:   catalog,
		stmts:     make(map[*core.SelectStmt]*projection),
		cores:     make(map[*core.SelectCore]*projection),
		ctes:      make(map[*cteDef]*projection),
		anchors:   make(map[*cteDef]*projection),
		anchoring: make(map[*cteDef]bool),
		ambiguous: make(map[*core.ColumnRef]struct{}),
	}
}

// statementLineage returns the edges of a statement in projection order.
func (r *columnResolver) statementLineage(stmt core.Stmt) ([]edge, error) {
	root := NewScope()

	switch s := stmt.(type) {
	case *core.SelectStmt:
		return r.queryEdges(s, root, nil, nil)
	case *core.CreateViewStmt:
		return r.queryEdges(s.Select, root, s.Name, s.Columns)
	case *core.CreateTableAsStmt:
		return r.queryEdges(s.Select, root, s.Name, s.Columns)
	case *core.InsertStmt:
		return r.insertEdges(s, root)
	case *core.UpdateStmt:
		return r.updateEdges(s, root)
	case *core.MergeStmt:
		return r.mergeEdges(s, root)
	default:
		// DELETE writes no column values; unmodeled statements have no AST.
		return nil, nil
	}
}

// deductions counts the scoring events of the resolved edges.
func (r *columnResolver) deductions(edges []edge) Deductions {
	d := Deductions{
		UnresolvedWildcard: r.wildcards,
		AmbiguousColumn:    len(r.ambiguous),
	}
	for _, e := range edges {
		if len(e.Upstreams) == 0 && e.expr != nil && r.derivesFromData(e.expr) {
			d.EmptyUpstream++
		}
	}
	return d
}

// derivesFromData reports whether a value reads any column, directly or
// through an aggregate or subquery. Such a value with no upstream lost its
// lineage somewhere. Like collect, it ignores the inputs of FILTER, OVER
// and ORDER BY.
func (r *columnResolver) derivesFromData(e core.Expr) bool {
	switch x := e.(type) {
	case nil:
		return false
	case *core.ColumnRef, *core.SubqueryExpr, *core.ExistsExpr:
		return true
	case *core.InExpr:
		if x.Query != nil {
			return true
		}
	case *core.FuncCall:
		if r.dialect.IsGenerator(x.Name) {
			return false
		}
		if r.dialect.IsAggregate(x.Name) {
			return true
		}
		children := appendOrderBy(slices.Clone(x.Args), x.Within)
		return slices.ContainsFunc(children, r.derivesFromData)
	}
	return slices.ContainsFunc(exprChildren(e), r.derivesFromData)
}

// ---------- Statement edges ----------

func (r *columnResolver) queryEdges(sel *core.SelectStmt, scope *Scope, target *core.TableName, names []string) ([]edge, error) {
	p, err := r.queryProjection(sel, scope)
	if err != nil {
		return nil, err
	}
	p = p.renamed(names)

	table, types := r.target(target)
	edges := make([]edge, 0, len(p.columns))
	for _, c := range p.columns {
		edges = append(edges, newEdge(table, c.name, c.upstreams, c.expr, types))
	}
	return edges, nil
}

func (r *columnResolver) insertEdges(ins *core.InsertStmt, scope *Scope) ([]edge, error) {
	names := ins.Columns
	if len(names) == 0 && !ins.ByName {
		names = r.catalogColumnNames(ins.Table)
	}
	if ins.Select != nil {
		return r.queryEdges(ins.Select, scope, ins.Table, names)
	}
	if len(ins.Values) == 0 {
		return nil, nil
	}

	table, types := r.target(ins.Table)
	sets := make([]upstreamSet, len(ins.Values[0]))
	for _, row := range ins.Values {
		for i, v := range row {
			if i >= len(sets) {
				break
			}
			ups, err := r.exprUpstreams(v, scope)
			if err != nil {
				return nil, err
			}
			if sets[i] == nil {
				sets[i] = newUpstreamSet()
			}
			sets[i].add(ups...)
		}
	}

	edges := make([]edge, 0, len(sets))
	for i, set := range sets {
		edges = append(edges, newEdge(table, positionalName(names, i), set.sorted(), ins.Values[0][i], types))
	}
	return edges, nil
}

func (r *columnResolver) updateEdges(upd *core.UpdateStmt, scope *Scope) ([]edge, error) {
	inner, _ := scope.withCTEs(upd.With)
	level := inner.Child()
	level.Register(r.tableEntry(upd.Table))
	if err := r.registerFrom(level, upd.From); err != nil {
		return nil, err
	}

	table, types := r.target(upd.Table)
	edges := make([]edge, 0, len(upd.Set))
	for _, a := range upd.Set {
		ups, err := r.exprUpstreams(a.Value, level)
		if err != nil {
			return nil, err
		}
		edges = append(edges, newEdge(table, a.Column, ups, a.Value, types))
	}
	return edges, nil
}

// mergeEdges reports each assigned target column once, in the order the
// WHEN clauses first assign it, with upstreams unioned across clauses.
func (r *columnResolver) mergeEdges(m *core.MergeStmt, scope *Scope) ([]edge, error) {
	inner, _ := scope.withCTEs(m.With)
	level := inner.Child()
	level.Register(r.tableEntry(m.Target))
	if err := r.registerTableRef(level, m.Source); err != nil {
		return nil, err
	}
	sources := level.Entries()[1:]

	table, types := r.target(m.Target)
	var edges []edge
	index := make(map[string]int)
	assign := func(column string, ups []Upstream, expr core.Expr) {
		if i, ok := index[column]; ok {
			set := newUpstreamSet(edges[i].Upstreams...)
			set.add(ups...)
			edges[i].Upstreams = set.sorted()
			return
		}
		index[column] = len(edges)
		edges = append(edges, newEdge(table, column, ups, expr, types))
	}

	// UPDATE SET * and INSERT * copy source columns by name.
	var starColumns []outColumn
	expanded := false
	assignStar := func() {
		if !expanded {
			for _, e := range sources {
				starColumns = append(starColumns, r.expandStar(e, nil)...)
			}
			expanded = true
		}
		for _, c := range starColumns {
			assign(c.name, c.upstreams, c.expr)
		}
	}

	for _, c := range m.Clauses {
		switch c.Action {
		case core.MergeUpdate:
			if c.Star {
				assignStar()
				continue
			}
			for _, a := range c.Set {
				ups, err := r.exprUpstreams(a.Value, level)
				if err != nil {
					return nil, err
				}
				assign(a.Column, ups, a.Value)
			}
		case core.MergeInsert:
			if c.Star {
				assignStar()
				continue
			}
			names := c.Columns
			if len(names) == 0 {
				names = r.catalogColumnNames(m.Target)
			}
			for i, v := range c.Values {
				ups, err := r.exprUpstreams(v, level)
				if err != nil {
					return nil, err
				}
				assign(positionalName(names, i), ups, v)
			}
		}
	}
	return edges, nil
}

func newEdge(table, column string, ups []Upstream, expr core.Expr, types map[string]string) edge {
	down := Downstream{Table: table, Column: column}
	if native, ok := types[column]; ok {
		down.NativeColumnType = native
		down.ColumnType = TypeFamily(native)
	}
	upstreams := make([]Upstream, len(ups))
	copy(upstreams, ups)
	return edge{ColumnLineage: ColumnLineage{Downstream: down, Upstreams: upstreams}, expr: expr}
}

func positionalName(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return anonymousColumnPrefix + strconv.Itoa(i)
}

// target returns the URN of a written table and its catalog column types.
func (r *columnResolver) target(t *core.TableName) (string, map[string]string) {
	if t == nil {
		return "", nil
	}
	cols, ok := r.catalogColumns(t)
	if !ok {
		return r.tables.TableURN(t), nil
	}
	types := make(map[string]string, len(cols))
	for _, c := range cols {
		if c.Type != "" {
			types[r.dialect.NormalizeQuoted(c.Name)] = c.Type
		}
	}
	return r.tables.TableURN(t), types
}

// ---------- Query levels ----------

func (r *columnResolver) queryProjection(sel *core.SelectStmt, scope *Scope) (*projection, error) {
	if sel == nil {
		return &projection{}, nil
	}
	if p, ok := r.stmts[sel]; ok {
		return p, nil
	}

	inner, _ := scope.withCTEs(sel.With)
	p, err := r.bodyProjection(sel.Body, inner)
	if err != nil {
		return nil, err
	}
	r.stmts[sel] = p
	return p, nil
}

func (r *columnResolver) bodyProjection(body *core.SelectBody, scope *Scope) (*projection, error) {
	if body == nil {
		return &projection{}, nil
	}
	left, err := r.coreProjection(body.Left, scope)
	if err != nil || body.Right == nil {
		return left, err
	}
	right, err := r.bodyProjection(body.Right, scope)
	if err != nil {
		return nil, err
	}
	return mergeProjections(left, right), nil
}

func (r *columnResolver) coreProjection(sc *core.SelectCore, parent *Scope) (*projection, error) {
	if sc == nil {
		return &projection{}, nil
	}
	if p, ok := r.cores[sc]; ok {
		return p, nil
	}

	scope := parent.Child()
	if err := r.registerFrom(scope, sc.From); err != nil {
		return nil, err
	}

	p := &projection{}
	for i, item := range sc.Columns {
		switch {
		case item.Star:
			for _, e := range scope.Entries() {
				p.columns = append(p.columns, r.expandStar(e, item.Exclude)...)
			}
		case item.TableStar != "":
			if e, ok := scope.Lookup(item.TableStar); ok {
				p.columns = append(p.columns, r.expandStar(e, item.Exclude)...)
			}
		default:
			ups, err := r.exprUpstreams(item.Expr, scope)
			if err != nil {
				return nil, err
			}
			p.columns = append(p.columns, outColumn{
				name:      r.columnName(item, i),
				upstreams: ups,
				expr:      item.Expr,
			})
		}
	}

	r.cores[sc] = p
	return p, nil
}

// columnName names a projection item: its alias, else the bare column or
// function name, else a positional placeholder.
func (r *columnResolver) columnName(item core.SelectItem, index int) string {
	if item.Alias != "" {
		return item.Alias
	}
	return r.inferColumnName(item.Expr, index)
}

func (r *columnResolver) inferColumnName(expr core.Expr, index int) string {
	switch ex := expr.(type) {
	case *core.ColumnRef:
		return ex.Column
	case *core.FuncCall:
		name := ex.Name
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		return r.dialect.NormalizeName(name)
	case *core.CastExpr:
		return r.inferColumnName(ex.Expr, index)
	case *core.ParenExpr:
		return r.inferColumnName(ex.Expr, index)
	default:
		return anonymousColumnPrefix + strconv.Itoa(index)
	}
}

// ---------- FROM registration ----------

func (r *columnResolver) registerFrom(scope *Scope, from *core.FromClause) error {
	if from == nil {
		return nil
	}
	if err := r.registerTableRef(scope, from.Source); err != nil {
		return err
	}
	for _, j := range from.Joins {
		if err := r.registerTableRef(scope, j.Right); err != nil {
			return err
		}
		for _, c := range j.Using {
			scope.using[c] = true
		}
	}
	return nil
}

func (r *columnResolver) registerTableRef(scope *Scope, ref core.TableRef) error {
	switch t := ref.(type) {
	case *core.TableName:
		if scope.IsCTE(t) {
			def, _ := scope.lookupCTE(t.Name)
			p, err := r.cteProjection(def)
			if err != nil {
				return err
			}
			scope.Register(&ScopeEntry{Type: ScopeCTE, Name: t.RefName(), projection: p})
			return nil
		}
		scope.Register(r.tableEntry(t))
	case *core.DerivedTable:
		// Only LATERAL subqueries see the FROM items before them.
		env := scope.Parent()
		if t.Lateral {
			env = scope
		}
		p, err := r.queryProjection(t.Select, env)
		if err != nil {
			return err
		}
		scope.Register(&ScopeEntry{Type: ScopeDerived, Name: t.Alias, projection: p.renamed(t.Columns)})
	case *core.TableFunc:
		ups, err := r.exprListUpstreams(t.Args, scope)
		if err != nil {
			return err
		}
		name := t.Alias
		if name == "" {
			name = r.dialect.NormalizeName(t.Name)
		}
		scope.Register(&ScopeEntry{Type: ScopeFunction, Name: name, inputs: ups})
	case *core.ParenTable:
		return r.registerFrom(scope, t.From)
	}
	return nil
}

func (r *columnResolver) tableEntry(t *core.TableName) *ScopeEntry {
	e := &ScopeEntry{
		Type:  ScopeTable,
		Name:  t.RefName(),
		Table: r.tables.TableURN(t),
	}
	if cols, ok := r.catalogColumns(t); ok {
		e.Columns = make([]string, 0, len(cols))
		for _, c := range cols {
			e.Columns = append(e.Columns, r.dialect.NormalizeQuoted(c.Name))
		}
	}
	return e
}

// catalogColumns looks a table up by its qualified name, then by the name
// as written.
func (r *columnResolver) catalogColumns(t *core.TableName) ([]Column, bool) {
	if r.catalog == nil {
		return nil, false
	}
	for _, name := range []string{r.tables.Qualify(t), t.QualifiedName()} {
		if cols, ok := r.catalog.Columns(name); ok {
			return cols, true
		}
	}
	return nil, false
}

func (r *columnResolver) catalogColumnNames(t *core.TableName) []string {
	cols, ok := r.catalogColumns(t)
	if !ok {
		return nil
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = r.dialect.NormalizeQuoted(c.Name)
	}
	return names
}

// cteProjection resolves a CTE reference. A recursive CTE referenced from
// its own body resolves to its anchor term; any other re-entry is a cycle.
func (r *columnResolver) cteProjection(def *cteDef) (*projection, error) {
	if p, ok := r.ctes[def]; ok {
		return p, nil
	}
	if i := slices.Index(r.stack, def); i >= 0 {
		if def.recursive && i == len(r.stack)-1 && !r.anchoring[def] {
			return r.anchorProjection(def)
		}
		return nil, &ResolutionInconsistencyError{
			Table:  def.name,
			Reason: "circular reference between common table expressions",
		}
	}

	r.stack = append(r.stack, def)
	p, err := r.queryProjection(def.query, def.scope)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}
	p = p.renamed(def.columns)
	r.ctes[def] = p
	return p, nil
}

func (r *columnResolver) anchorProjection(def *cteDef) (*projection, error) {
	if p, ok := r.anchors[def]; ok {
		return p, nil
	}
	if def.query == nil || def.query.Body == nil {
		return &projection{}, nil
	}

	r.anchoring[def] = true
	defer delete(r.anchoring, def)

	scope, _ := def.scope.withCTEs(def.query.With)
	p, err := r.coreProjection(def.query.Body.Left, scope)
	if err != nil {
		return nil, err
	}
	p = p.renamed(def.columns)
	r.anchors[def] = p
	return p, nil
}

// expandStar expands a relation for * or alias.*. A physical table the
// catalog does not know yields a single wildcard sentinel.
func (r *columnResolver) expandStar(e *ScopeEntry, exclude []string) []outColumn {
	var cols []outColumn
	switch e.Type {
	case ScopeTable:
		if e.Columns == nil {
			r.wildcards++
			return []outColumn{{
				name:      wildcardColumn,
				upstreams: []Upstream{{Table: e.Table, Column: wildcardColumn}},
				wildcard:  true,
			}}
		}
		for _, c := range e.Columns {
			if !slices.Contains(exclude, c) {
				cols = append(cols, outColumn{name: c, upstreams: []Upstream{{Table: e.Table, Column: c}}})
			}
		}
	case ScopeCTE, ScopeDerived:
		for _, c := range e.projection.columns {
			if c.wildcard || !slices.Contains(exclude, c.name) {
				cols = append(cols, c)
			}
		}
	case ScopeFunction:
		r.wildcards++
		cols = append(cols, outColumn{name: wildcardColumn, upstreams: e.inputs, wildcard: true})
	}
	return cols
}

// ---------- Expressions ----------

func (r *columnResolver) exprUpstreams(e core.Expr, scope *Scope) ([]Upstream, error) {
	set := newUpstreamSet()
	if err := r.collect(e, scope, set); err != nil {
		return nil, err
	}
	return set.sorted(), nil
}

func (r *columnResolver) exprListUpstreams(exprs []core.Expr, scope *Scope) ([]Upstream, error) {
	set := newUpstreamSet()
	for _, e := range exprs {
		if err := r.collect(e, scope, set); err != nil {
			return nil, err
		}
	}
	return set.sorted(), nil
}

// collect adds the upstreams of an expression to set. Only values flow
// into lineage: FILTER, OVER and ORDER BY inputs of a call and EXISTS
// subqueries shape rows, not values, and are skipped.
func (r *columnResolver) collect(e core.Expr, scope *Scope, set upstreamSet) error {
	switch x := e.(type) {
	case nil:
		return nil
	case *core.ColumnRef:
		set.add(r.resolveColumn(x, scope)...)
		return nil
	case *core.FuncCall:
		if r.dialect.IsGenerator(x.Name) {
			return nil
		}
		for _, arg := range x.Args {
			if err := r.collect(arg, scope, set); err != nil {
				return err
			}
		}
		// PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY x) aggregates x.
		for _, item := range x.Within {
			if err := r.collect(item.Expr, scope, set); err != nil {
				return err
			}
		}
		return nil
	case *core.SubqueryExpr:
		return r.collectSubquery(x.Select, scope, set)
	case *core.InExpr:
		if err := r.collect(x.Expr, scope, set); err != nil {
			return err
		}
		for _, v := range x.Values {
			if err := r.collect(v, scope, set); err != nil {
				return err
			}
		}
		if x.Query != nil {
			return r.collectSubquery(x.Query, scope, set)
		}
		return nil
	case *core.ExistsExpr:
		return nil
	default:
		for _, child := range exprChildren(e) {
			if err := r.collect(child, scope, set); err != nil {
				return err
			}
		}
		return nil
	}
}

func (r *columnResolver) collectSubquery(sel *core.SelectStmt, scope *Scope, set upstreamSet) error {
	p, err := r.queryProjection(sel, scope)
	if err != nil {
		return err
	}
	for _, c := range p.columns {
		set.add(c.upstreams...)
	}
	return nil
}

// resolveColumn attributes a column reference to upstream columns.
//
// A qualified reference resolves through the named relation, innermost
// binding first. An unqualified one goes to the innermost level with a
// relation known to expose the name; failing that, to the only relation
// of the innermost non-empty level that could hold it. Anything else is
// ambiguous and resolves to nothing.
func (r *columnResolver) resolveColumn(ref *core.ColumnRef, scope *Scope) []Upstream {
	if ref.Table != "" {
		if e, ok := scope.Lookup(ref.Table); ok {
			return r.entryColumn(e, ref, ref.Column)
		}
		// rel.struct_col.field
		if ref.Schema != "" {
			if e, ok := scope.Lookup(ref.Schema); ok {
				return r.entryColumn(e, ref, ref.Table)
			}
		}
		r.markAmbiguous(ref)
		return nil
	}

	for sc := scope; sc != nil; sc = sc.parent {
		var matches []*ScopeEntry
		for _, e := range sc.entries {
			if e.HasColumn(ref.Column) {
				matches = append(matches, e)
			}
		}
		switch {
		case len(matches) == 1:
			return r.entryColumn(matches[0], ref, ref.Column)
		case len(matches) > 1 && sc.using[ref.Column]:
			// A USING column is the coalesce of both sides.
			set := newUpstreamSet()
			for _, e := range matches {
				set.add(r.entryColumn(e, ref, ref.Column)...)
			}
			return set.sorted()
		case len(matches) > 1:
			r.markAmbiguous(ref)
			return nil
		}
	}

	for sc := scope; sc != nil; sc = sc.parent {
		if len(sc.entries) == 0 {
			continue
		}
		if len(sc.entries) == 1 {
			return r.entryColumn(sc.entries[0], ref, ref.Column)
		}
		var open []*ScopeEntry
		for _, e := range sc.entries {
			if !e.Known() {
				open = append(open, e)
			}
		}
		if len(open) == 1 {
			return r.entryColumn(open[0], ref, ref.Column)
		}
		break
	}

	r.markAmbiguous(ref)
	return nil
}

func (r *columnResolver) entryColumn(e *ScopeEntry, ref *core.ColumnRef, column string) []Upstream {
	switch e.Type {
	case ScopeTable:
		return []Upstream{{Table: e.Table, Column: column}}
	case ScopeCTE, ScopeDerived:
		if c, ok := e.projection.lookup(column); ok {
			return c.upstreams
		}
		// (SELECT * FROM t) d exposes every column of t.
		if tables := e.projection.wildcardTables(); len(tables) == 1 {
			return []Upstream{{Table: tables[0], Column: column}}
		}
		r.markAmbiguous(ref)
		return nil
	default:
		return e.inputs
	}
}

func (r *columnResolver) markAmbiguous(ref *core.ColumnRef) {
	r.ambiguous[ref] = struct{}{}
}
