package lineage

import (
	"strings"
)

// Column is a catalog column with its native type.
type Column struct {
	Name string
	Type string
}

// SchemaCatalog looks up table columns by qualified name. Implementations
// are read concurrently and must not change while in use.
type SchemaCatalog interface {
	// Columns returns the ordered columns of a table, keyed by the same
	// qualified name the extractor renders into URNs.
	Columns(qualifiedName string) ([]Column, bool)
}

// MapCatalog is an in-memory SchemaCatalog. Lookups fall back to a
// case-insensitive match so catalogs loaded from a database work across
// dialect casing rules.
type MapCatalog map[string][]Column

// Columns implements SchemaCatalog.
func (m MapCatalog) Columns(qualifiedName string) ([]Column, bool) {
	if cols, ok := m[qualifiedName]; ok {
		return cols, true
	}
	for name, cols := range m {
		if strings.EqualFold(name, qualifiedName) {
			return cols, true
		}
	}
	return nil, false
}

// typeFamilies maps native type prefixes to simplified families, longest
// prefix first where prefixes overlap.
var typeFamilies = []struct {
	prefix string
	family string
}{
	{"TIMESTAMP", "TIMESTAMP"},
	{"DATETIME", "TIMESTAMP"},
	{"TIME", "TIME"},
	{"DATE", "DATE"},
	{"INTERVAL", "TIME"},
	{"BOOL", "BOOLEAN"},
	{"BIT", "BOOLEAN"},
	{"TINYINT", "NUMBER"},
	{"SMALLINT", "NUMBER"},
	{"MEDIUMINT", "NUMBER"},
	{"BIGINT", "NUMBER"},
	{"HUGEINT", "NUMBER"},
	{"INT", "NUMBER"},
	{"NUMBER", "NUMBER"},
	{"NUMERIC", "NUMBER"},
	{"DECIMAL", "NUMBER"},
	{"DOUBLE", "NUMBER"},
	{"FLOAT", "NUMBER"},
	{"REAL", "NUMBER"},
	{"MONEY", "NUMBER"},
	{"SERIAL", "NUMBER"},
	{"CHAR", "STRING"},
	{"VARCHAR", "STRING"},
	{"NCHAR", "STRING"},
	{"NVARCHAR", "STRING"},
	{"TEXT", "STRING"},
	{"STRING", "STRING"},
	{"UUID", "STRING"},
	{"CHARACTER", "STRING"},
	{"BINARY", "BYTES"},
	{"VARBINARY", "BYTES"},
	{"BLOB", "BYTES"},
	{"BYTEA", "BYTES"},
	{"ARRAY", "ARRAY"},
	{"LIST", "ARRAY"},
	{"MAP", "MAP"},
	{"STRUCT", "STRUCT"},
	{"OBJECT", "STRUCT"},
	{"VARIANT", "STRUCT"},
	{"JSON", "STRUCT"},
}

// TypeFamily simplifies a native column type to a family such as NUMBER,
// STRING, BOOLEAN, DATE or TIMESTAMP. Unrecognized types yield "NULL".
func TypeFamily(native string) string {
	t := strings.ToUpper(strings.TrimSpace(native))
	if strings.HasSuffix(t, "[]") {
		return "ARRAY"
	}
	for _, f := range typeFamilies {
		if strings.HasPrefix(t, f.prefix) {
			return f.family
		}
	}
	return "NULL"
}
