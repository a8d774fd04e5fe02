package catalog

import (
	"context"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Source { return NewDuckDBSource(logger) })
}

// DuckDBSource loads a catalog from a DuckDB database file.
type DuckDBSource struct {
	BaseSQLSource
}

// NewDuckDBSource creates a DuckDB source.
func NewDuckDBSource(logger *slog.Logger) *DuckDBSource {
	return &DuckDBSource{BaseSQLSource: BaseSQLSource{Logger: logger}}
}

// Connect opens the database file read-only. An empty path or ":memory:"
// opens an in-memory database.
func (s *DuckDBSource) Connect(ctx context.Context, path string) error {
	dsn := path
	if dsn == "" || dsn == ":memory:" {
		dsn = ""
	} else {
		dsn += "?access_mode=read_only"
	}
	s.Logger.Debug("connecting to duckdb catalog", slog.String("path", path))
	return s.open(ctx, "duckdb", dsn)
}

// Load reads the columns of every attached database.
func (s *DuckDBSource) Load(ctx context.Context, schemas []string) (*Catalog, error) {
	return s.loadInformationSchema(ctx, schemas, func(int) string { return "?" })
}
