package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

// Catalog drivers accepted by catalog.driver.
var catalogDrivers = []string{"postgres", "sqlite", "duckdb"}

// Validate checks the configuration for values the extractor would reject.
func (c *Config) Validate() error {
	var errs []error

	if c.Dialect == "" {
		errs = append(errs, dialect.ErrDialectRequired)
	} else if _, ok := dialect.Get(c.Dialect); !ok {
		errs = append(errs, fmt.Errorf("unknown dialect %q (available: %s)", c.Dialect, strings.Join(dialect.List(), ", ")))
	}

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}

	for _, p := range []struct {
		key   string
		value float64
	}{
		{"empty_upstream_penalty", c.Penalties.EmptyUpstream},
		{"unresolved_wildcard_penalty", c.Penalties.UnresolvedWildcard},
		{"ambiguous_column_penalty", c.Penalties.AmbiguousColumn},
		{"unsupported_construct_penalty", c.Penalties.UnsupportedConstruct},
	} {
		if p.value < 0 || p.value > 1 {
			errs = append(errs, fmt.Errorf("penalties.%s must be within [0, 1], got %g", p.key, p.value))
		}
	}

	switch c.Output {
	case OutputAuto, OutputJSON, OutputTable:
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output))
	}

	switch {
	case c.Catalog.File != "" && c.Catalog.Driver != "":
		errs = append(errs, errors.New("catalog.file and catalog.driver are mutually exclusive"))
	case c.Catalog.Driver != "" && !slices.Contains(catalogDrivers, c.Catalog.Driver):
		errs = append(errs, fmt.Errorf("unknown catalog driver %q (available: %s)", c.Catalog.Driver, strings.Join(catalogDrivers, ", ")))
	case c.Catalog.Driver != "" && c.Catalog.DSN == "":
		errs = append(errs, errors.New("catalog.dsn is required with catalog.driver"))
	}

	return errors.Join(errs...)
}
