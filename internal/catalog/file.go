package catalog

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML catalog:
//
//	tables:
//	  analytics.public.orders:
//	    id: INTEGER
//	    amount: NUMERIC(12,2)
//
// Column order follows the file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Tables yaml.Node `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	c := New()
	tables := &doc.Tables
	if tables.Kind == 0 {
		return c, nil
	}
	if tables.Kind != yaml.MappingNode {
		return nil, nodeError(tables, "tables must be a mapping of table name to columns")
	}

	// Mapping nodes hold keys and values alternately.
	for i := 0; i+1 < len(tables.Content); i += 2 {
		name, cols := tables.Content[i], tables.Content[i+1]
		if cols.Kind != yaml.MappingNode {
			return nil, nodeError(cols, fmt.Sprintf("columns of %s must be a mapping of column name to type", name.Value))
		}
		columns := make([]lineage.Column, 0, len(cols.Content)/2)
		for j := 0; j+1 < len(cols.Content); j += 2 {
			col, typ := cols.Content[j], cols.Content[j+1]
			if typ.Kind != yaml.ScalarNode {
				return nil, nodeError(typ, fmt.Sprintf("type of %s.%s must be a string", name.Value, col.Value))
			}
			columns = append(columns, lineage.Column{Name: col.Value, Type: typ.Value})
		}
		c.Add(name.Value, columns...)
	}
	return c, nil
}

func nodeError(n *yaml.Node, msg string) error {
	return fmt.Errorf("line %d: %s", n.Line, msg)
}
