package lineage

import (
	"slices"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// ScopeType indicates the type of scope entry.
type ScopeType int

const (
	// ScopeTable represents a physical table.
	ScopeTable ScopeType = iota
	// ScopeCTE represents a reference to a common table expression.
	ScopeCTE
	// ScopeDerived represents a derived table (subquery in FROM).
	ScopeDerived
	// ScopeFunction represents a table-valued function in FROM.
	ScopeFunction
)

// ScopeEntry is a relation visible to column references.
type ScopeEntry struct {
	Type ScopeType
	// Name is what other clauses use to refer to the relation: the alias
	// if present, else the table or CTE name.
	Name string
	// Table is the dataset URN of a physical table.
	Table string
	// Columns lists the known columns of a physical table in catalog
	// order, nil when the catalog does not know the table.
	Columns []string

	projection *projection // CTE and derived table output
	inputs     []Upstream  // table function arguments
}

// Known reports whether the full column list of the relation is known.
func (e *ScopeEntry) Known() bool {
	switch e.Type {
	case ScopeTable:
		return e.Columns != nil
	case ScopeCTE, ScopeDerived:
		return !e.projection.hasWildcard()
	default:
		return false
	}
}

// HasColumn reports whether the relation is known to expose the column.
func (e *ScopeEntry) HasColumn(name string) bool {
	switch e.Type {
	case ScopeTable:
		return slices.Contains(e.Columns, name)
	case ScopeCTE, ScopeDerived:
		_, ok := e.projection.lookup(name)
		return ok
	default:
		return false
	}
}

// cteDef is a common table expression binding. scope is the scope its
// body is evaluated in, which sees earlier siblings, or every sibling
// including itself in a RECURSIVE list.
type cteDef struct {
	name      string
	columns   []string
	query     *core.SelectStmt
	scope     *Scope
	recursive bool
}

// Scope tracks the relations and CTEs visible at one query level. Scopes
// nest: lookups that miss fall through to the parent, so inner bindings
// shadow outer ones.
type Scope struct {
	parent  *Scope
	entries []*ScopeEntry
	byName  map[string]*ScopeEntry
	ctes    map[string]*cteDef
	using   map[string]bool
}

// NewScope creates an empty root scope.
func NewScope() *Scope {
	return &Scope{
		byName: make(map[string]*ScopeEntry),
		ctes:   make(map[string]*cteDef),
		using:  make(map[string]bool),
	}
}

// Child creates a child scope for a nested query level.
func (s *Scope) Child() *Scope {
	c := NewScope()
	c.parent = s
	return c
}

// Parent returns the enclosing scope, nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Register adds a relation to this scope level.
func (s *Scope) Register(e *ScopeEntry) {
	s.entries = append(s.entries, e)
	if e.Name != "" {
		s.byName[e.Name] = e
	}
}

// Entries returns the relations of this level in FROM order.
func (s *Scope) Entries() []*ScopeEntry {
	return s.entries
}

// Lookup finds a relation by name, innermost level first.
func (s *Scope) Lookup(name string) (*ScopeEntry, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if e, ok := sc.byName[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// lookupCTE finds the innermost CTE binding for a bare table name.
func (s *Scope) lookupCTE(name string) (*cteDef, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if def, ok := sc.ctes[name]; ok {
			return def, true
		}
	}
	return nil, false
}

// IsCTE reports whether a table reference names a CTE visible here.
func (s *Scope) IsCTE(t *core.TableName) bool {
	if t.Catalog != "" || t.Schema != "" {
		return false
	}
	_, ok := s.lookupCTE(t.Name)
	return ok
}

// withCTEs binds a WITH clause and returns the scope the statement body
// is evaluated in, along with one binding per CTE in order. A plain WITH
// chains one level per CTE so each body sees only the CTEs before it.
func (s *Scope) withCTEs(with *core.WithClause) (*Scope, []*cteDef) {
	if with == nil || len(with.CTEs) == 0 {
		return s, nil
	}

	defs := make([]*cteDef, 0, len(with.CTEs))
	if with.Recursive {
		level := s.Child()
		for _, cte := range with.CTEs {
			def := &cteDef{
				name:      cte.Name,
				columns:   cte.Columns,
				query:     cte.Select,
				scope:     level,
				recursive: true,
			}
			level.ctes[cte.Name] = def
			defs = append(defs, def)
		}
		return level, defs
	}

	cur := s
	for _, cte := range with.CTEs {
		def := &cteDef{name: cte.Name, columns: cte.Columns, query: cte.Select, scope: cur}
		cur = cur.Child()
		cur.ctes[cte.Name] = def
		defs = append(defs, def)
	}
	return cur, defs
}
