package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Source { return NewSQLiteSource(logger) })
}

// sqliteSchema is the schema name of the primary SQLite database.
const sqliteSchema = "main"

// SQLiteSource loads a catalog from a SQLite database file. SQLite has no
// information schema; tables come from sqlite_master and columns from
// pragma_table_info.
type SQLiteSource struct {
	BaseSQLSource
}

// NewSQLiteSource creates a SQLite source.
func NewSQLiteSource(logger *slog.Logger) *SQLiteSource {
	return &SQLiteSource{BaseSQLSource: BaseSQLSource{Logger: logger}}
}

// Connect opens the database file read-only.
func (s *SQLiteSource) Connect(ctx context.Context, path string) error {
	s.Logger.Debug("connecting to sqlite catalog", slog.String("path", path))
	return s.open(ctx, "sqlite", "file:"+path+"?mode=ro")
}

// Load reads every table and view. schemas may only name "main".
func (s *SQLiteSource) Load(ctx context.Context, schemas []string) (*Catalog, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	c := New()
	if len(schemas) > 0 && !slices.Contains(schemas, sqliteSchema) {
		return c, nil
	}

	tables, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		cols, err := s.columns(ctx, table)
		if err != nil {
			return nil, err
		}
		c.Add(qualify(sqliteSchema, table), cols...)
	}

	s.Logger.Debug("catalog loaded", slog.Int("tables", c.Len()))
	return c, nil
}

func (s *SQLiteSource) tables(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return names, nil
}

func (s *SQLiteSource) columns(ctx context.Context, table string) ([]lineage.Column, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []lineage.Column
	for rows.Next() {
		var col lineage.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan columns of %s: %w", table, err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return cols, nil
}
