package catalog

import (
	"context"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

func init() {
	Register("postgres", func(logger *slog.Logger) Source { return NewPostgresSource(logger) })
}

// PostgresSource loads a catalog from a PostgreSQL information schema.
type PostgresSource struct {
	BaseSQLSource
}

// NewPostgresSource creates a PostgreSQL source.
func NewPostgresSource(logger *slog.Logger) *PostgresSource {
	return &PostgresSource{BaseSQLSource: BaseSQLSource{Logger: logger}}
}

// Connect opens a connection. dsn is a pgx connection string or URL.
func (s *PostgresSource) Connect(ctx context.Context, dsn string) error {
	s.Logger.Debug("connecting to postgres catalog")
	return s.open(ctx, "pgx", dsn)
}

// Load reads the columns of every user schema.
func (s *PostgresSource) Load(ctx context.Context, schemas []string) (*Catalog, error) {
	return s.loadInformationSchema(ctx, schemas, dollarPlaceholder)
}
