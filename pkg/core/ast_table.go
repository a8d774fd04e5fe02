package core

import "strings"

// ---------- Table Reference Types ----------

// TableName represents a table name reference.
type TableName struct {
	NodeInfo
	Catalog string
	Schema  string
	Name    string
	Alias   string
}

func (*TableName) tableRefNode() {}

// QualifiedName joins the non-empty name parts with dots.
func (t *TableName) QualifiedName() string {
	parts := make([]string, 0, 3)
	if t.Catalog != "" {
		parts = append(parts, t.Catalog)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, ".")
}

// RefName returns the name other clauses use to refer to this table:
// the alias if present, else the bare table name.
func (t *TableName) RefName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// DerivedTable represents a subquery in FROM clause.
type DerivedTable struct {
	NodeInfo
	Select  *SelectStmt
	Alias   string
	Columns []string // alias column list: (SELECT ...) AS d (a, b)
	Lateral bool
}

func (*DerivedTable) tableRefNode() {}

// TableFunc is a table-valued function call used as a FROM item,
// e.g. read_csv('x.csv') or generate_series(1, 10).
type TableFunc struct {
	NodeInfo
	Name    string
	Args    []Expr
	Alias   string
	Lateral bool
}

func (*TableFunc) tableRefNode() {}

// ParenTable is a parenthesized join tree used as a FROM item.
type ParenTable struct {
	NodeInfo
	From  *FromClause
	Alias string
}

func (*ParenTable) tableRefNode() {}
