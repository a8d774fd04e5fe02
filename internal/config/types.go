// Package config loads sqllineage configuration.
//
// Values are layered, lowest precedence first: built-in defaults, a YAML
// file, SQLLINEAGE_ environment variables and explicitly set flags.
package config

import (
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// CatalogConfig selects the optional schema catalog. File and Driver are
// mutually exclusive.
type CatalogConfig struct {
	// File is a YAML catalog of table columns.
	File string `koanf:"file"`

	// Driver and DSN read the catalog from a live database.
	Driver  string   `koanf:"driver"` // postgres, sqlite, duckdb
	DSN     string   `koanf:"dsn"`
	Schemas []string `koanf:"schemas"` // limit a live catalog to these schemas
}

// Enabled reports whether any catalog source is configured.
func (c CatalogConfig) Enabled() bool {
	return c.File != "" || c.Driver != ""
}

// Config holds all sqllineage options.
type Config struct {
	Dialect       string            `koanf:"dialect"`
	DefaultDB     string            `koanf:"default_db"`
	DefaultSchema string            `koanf:"default_schema"`
	Platform      string            `koanf:"platform"`
	Environment   string            `koanf:"environment"`
	Namespace     string            `koanf:"namespace"`
	Workers       int               `koanf:"workers"`
	Penalties     lineage.Penalties `koanf:"penalties"`
	Catalog       CatalogConfig     `koanf:"catalog"`
	Output        string            `koanf:"output"`
	Verbose       bool              `koanf:"verbose"`
}

// LineageOptions converts the config into extractor options.
func (c *Config) LineageOptions() lineage.Options {
	return lineage.Options{
		Dialect:       c.Dialect,
		DefaultDB:     c.DefaultDB,
		DefaultSchema: c.DefaultSchema,
		Platform:      c.Platform,
		Environment:   c.Environment,
		Namespace:     c.Namespace,
		Workers:       c.Workers,
		Penalties:     c.Penalties,
	}
}
