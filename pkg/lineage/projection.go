package lineage

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// outColumn is one output column of a query level.
type outColumn struct {
	name      string
	upstreams []Upstream
	// expr is the projection expression, nil for columns produced by
	// wildcard expansion.
	expr core.Expr
	// wildcard marks the sentinel left by expanding a relation whose
	// columns are unknown.
	wildcard bool
}

// projection is the ordered output of a query level.
type projection struct {
	columns []outColumn
}

func (p *projection) lookup(name string) (outColumn, bool) {
	if p == nil {
		return outColumn{}, false
	}
	for _, c := range p.columns {
		if !c.wildcard && c.name == name {
			return c, true
		}
	}
	return outColumn{}, false
}

func (p *projection) hasWildcard() bool {
	if p == nil {
		return false
	}
	return slices.ContainsFunc(p.columns, func(c outColumn) bool { return c.wildcard })
}

// wildcardTables returns the tables behind the wildcard sentinels of the
// projection. A column missing from the projection may come from them.
func (p *projection) wildcardTables() []string {
	var tables []string
	for _, c := range p.columns {
		if !c.wildcard {
			continue
		}
		for _, up := range c.upstreams {
			if up.Column == wildcardColumn && !slices.Contains(tables, up.Table) {
				tables = append(tables, up.Table)
			}
		}
	}
	return tables
}

// renamed applies a column alias list positionally. A projection holding a
// wildcard sentinel keeps its names since positions past it are unknown.
func (p *projection) renamed(names []string) *projection {
	if len(names) == 0 || p.hasWildcard() {
		return p
	}
	out := &projection{columns: slices.Clone(p.columns)}
	for i := range out.columns {
		if i < len(names) {
			out.columns[i].name = names[i]
		}
	}
	return out
}

// mergeProjections combines the branches of a set operation. Names come
// from the left branch; upstreams are unioned by position.
func mergeProjections(left, right *projection) *projection {
	out := &projection{columns: slices.Clone(left.columns)}
	for i := range out.columns {
		if i >= len(right.columns) {
			break
		}
		set := newUpstreamSet(out.columns[i].upstreams...)
		set.add(right.columns[i].upstreams...)
		out.columns[i].upstreams = set.sorted()
		out.columns[i].wildcard = out.columns[i].wildcard || right.columns[i].wildcard
	}
	return out
}

type upstreamSet map[Upstream]struct{}

func newUpstreamSet(ups ...Upstream) upstreamSet {
	s := make(upstreamSet, len(ups))
	s.add(ups...)
	return s
}

func (s upstreamSet) add(ups ...Upstream) {
	for _, up := range ups {
		s[up] = struct{}{}
	}
}

// sorted returns the set ordered by table, then column.
func (s upstreamSet) sorted() []Upstream {
	out := make([]Upstream, 0, len(s))
	for up := range s {
		out = append(out, up)
	}
	slices.SortFunc(out, func(a, b Upstream) int {
		if c := strings.Compare(a.Table, b.Table); c != 0 {
			return c
		}
		return strings.Compare(a.Column, b.Column)
	})
	return out
}
