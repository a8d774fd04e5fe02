// Package catalog builds the optional read-only schema catalog used for
// wildcard expansion and column types. A catalog comes from a YAML file or
// from the information schema of a live database.
package catalog

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// Catalog maps qualified table names to ordered columns. It is filled once
// and then only read, so it is safe for concurrent use.
//
// A table added as db.schema.t can also be found as schema.t and t, unless
// an earlier table already claimed the shorter name.
type Catalog struct {
	tables  map[string][]lineage.Column
	aliases map[string]string
	names   []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables:  make(map[string][]lineage.Column),
		aliases: make(map[string]string),
	}
}

// Add registers a table. Adding the same name again appends columns.
func (c *Catalog) Add(qualifiedName string, cols ...lineage.Column) {
	key := strings.ToLower(qualifiedName)
	if _, ok := c.tables[key]; !ok {
		c.names = append(c.names, qualifiedName)
		parts := strings.Split(key, ".")
		for i := 1; i < len(parts); i++ {
			short := strings.Join(parts[i:], ".")
			if _, taken := c.aliases[short]; !taken {
				c.aliases[short] = key
			}
		}
	}
	c.tables[key] = append(c.tables[key], cols...)
}

// Columns implements lineage.SchemaCatalog. Lookups are case-insensitive.
func (c *Catalog) Columns(qualifiedName string) ([]lineage.Column, bool) {
	key := strings.ToLower(qualifiedName)
	if cols, ok := c.tables[key]; ok {
		return cols, true
	}
	if full, ok := c.aliases[key]; ok {
		return c.tables[full], true
	}
	return nil, false
}

// Tables returns the registered table names in insertion order.
func (c *Catalog) Tables() []string {
	return c.names
}

// Len returns the number of tables.
func (c *Catalog) Len() int {
	return len(c.names)
}

var _ lineage.SchemaCatalog = (*Catalog)(nil)
