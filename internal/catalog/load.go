package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqllineage/internal/config"
)

// Load builds the catalog the configuration asks for. It returns nil when
// no catalog is configured. A live connection is closed before returning.
func Load(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (*Catalog, error) {
	switch {
	case cfg.File != "":
		c, err := LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Debug("catalog file loaded", slog.String("file", cfg.File), slog.Int("tables", c.Len()))
		}
		return c, nil
	case cfg.Driver != "":
		src, err := NewSource(cfg.Driver, logger)
		if err != nil {
			return nil, err
		}
		if err := src.Connect(ctx, cfg.DSN); err != nil {
			return nil, err
		}
		defer func() { _ = src.Close() }()

		c, err := src.Load(ctx, cfg.Schemas)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s catalog: %w", cfg.Driver, err)
		}
		return c, nil
	default:
		return nil, nil
	}
}
