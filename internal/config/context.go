package config

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

type configKey struct{}

type loggerKey struct{}

// WithConfig stores the loaded configuration in ctx.
func WithConfig(ctx context.Context, cfg *Loaded) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the configuration stored by WithConfig, or the
// defaults when none was stored.
func FromContext(ctx context.Context) *Loaded {
	if cfg, ok := ctx.Value(configKey{}).(*Loaded); ok {
		return cfg
	}
	return &Loaded{Config: &Config{
		Dialect:     DefaultDialect,
		Environment: lineage.DefaultEnvironment,
		Namespace:   lineage.DefaultNamespace,
		Penalties:   lineage.DefaultPenalties(),
		Output:      DefaultOutput,
	}}
}

// WithLogger stores the logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from ctx.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
