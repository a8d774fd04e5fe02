package lineage

import "log/slog"

// Default identifier settings.
const (
	DefaultNamespace   = "li"
	DefaultEnvironment = "PROD"
)

// Penalties are the confidence deductions applied per occurrence.
type Penalties struct {
	EmptyUpstream        float64 `koanf:"empty_upstream_penalty" json:"empty_upstream_penalty"`
	UnresolvedWildcard   float64 `koanf:"unresolved_wildcard_penalty" json:"unresolved_wildcard_penalty"`
	AmbiguousColumn      float64 `koanf:"ambiguous_column_penalty" json:"ambiguous_column_penalty"`
	UnsupportedConstruct float64 `koanf:"unsupported_construct_penalty" json:"unsupported_construct_penalty"`
}

// DefaultPenalties returns the stock deduction weights. With them a record
// holding one untraceable column among otherwise exact lineage scores 0.2.
func DefaultPenalties() Penalties {
	return Penalties{
		EmptyUpstream:        0.8,
		UnresolvedWildcard:   0.3,
		AmbiguousColumn:      0.2,
		UnsupportedConstruct: 0.1,
	}
}

// Options configures an Extractor. Zero values fall back to defaults:
// the dialect name as platform, "li" as namespace, "PROD" as environment,
// DefaultPenalties and GOMAXPROCS batch workers.
type Options struct {
	Dialect       string
	DefaultDB     string
	DefaultSchema string
	Platform      string
	Environment   string
	Namespace     string
	Workers       int
	Penalties     Penalties
}

// Option customizes an Extractor beyond its Options.
type Option func(*Extractor)

// WithCatalog supplies a schema catalog for wildcard expansion and
// column types. The catalog must not change while the extractor is in use.
func WithCatalog(c SchemaCatalog) Option {
	return func(e *Extractor) {
		e.catalog = c
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}
