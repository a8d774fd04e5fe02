package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// BaseSQLSource holds the database/sql plumbing shared by the sources.
// Embed it in concrete sources.
type BaseSQLSource struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// open connects through a registered database/sql driver and pings.
func (b *BaseSQLSource) open(ctx context.Context, driverName, dsn string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", driverName, err)
	}
	b.DB = db
	return nil
}

// Close closes the database connection.
func (b *BaseSQLSource) Close() error {
	if b.DB != nil {
		b.Logger.Debug("closing catalog connection")
		return b.DB.Close()
	}
	return nil
}

// systemSchemas are never loaded.
var systemSchemas = []string{"information_schema", "pg_catalog"}

// informationSchemaQuery builds the column listing query. placeholder
// renders the n-th bind parameter, starting at 1.
func informationSchemaQuery(schemas []string, placeholder func(n int) string) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT table_catalog, table_schema, table_name, column_name, data_type\n")
	b.WriteString("FROM information_schema.columns\n")
	b.WriteString("WHERE table_schema NOT IN ('" + strings.Join(systemSchemas, "', '") + "')\n")

	args := make([]any, 0, len(schemas))
	if len(schemas) > 0 {
		marks := make([]string, len(schemas))
		for i, s := range schemas {
			marks[i] = placeholder(i + 1)
			args = append(args, s)
		}
		b.WriteString("AND table_schema IN (" + strings.Join(marks, ", ") + ")\n")
	}
	b.WriteString("ORDER BY table_catalog, table_schema, table_name, ordinal_position")
	return b.String(), args
}

// loadInformationSchema runs the column listing and groups the rows by
// table.
func (b *BaseSQLSource) loadInformationSchema(ctx context.Context, schemas []string, placeholder func(n int) string) (*Catalog, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query, args := informationSchemaQuery(schemas, placeholder)
	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	c := New()
	for rows.Next() {
		var db, schema, table, column, typ sql.NullString
		if err := rows.Scan(&db, &schema, &table, &column, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		c.Add(qualify(db.String, schema.String, table.String), lineage.Column{Name: column.String, Type: typ.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	b.Logger.Debug("catalog loaded", slog.Int("tables", c.Len()))
	return c, nil
}

func qualify(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
