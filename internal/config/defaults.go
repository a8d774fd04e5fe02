package config

import "github.com/leapstack-labs/sqllineage/pkg/lineage"

// Default configuration values.
const (
	DefaultDialect = "ansi"
	DefaultOutput  = OutputAuto
)

// Output formats.
const (
	OutputAuto  = "auto" // table on a terminal, JSON otherwise
	OutputJSON  = "json"
	OutputTable = "table"
)

// Config file names searched in the working directory.
var configFileNames = []string{"sqllineage.yaml", "sqllineage.yml"}

// defaults returns the lowest configuration layer.
func defaults() map[string]any {
	p := lineage.DefaultPenalties()
	return map[string]any{
		"dialect":     DefaultDialect,
		"environment": lineage.DefaultEnvironment,
		"namespace":   lineage.DefaultNamespace,
		"workers":     0,
		"output":      DefaultOutput,
		"verbose":     false,

		"penalties.empty_upstream_penalty":        p.EmptyUpstream,
		"penalties.unresolved_wildcard_penalty":   p.UnresolvedWildcard,
		"penalties.ambiguous_column_penalty":      p.AmbiguousColumn,
		"penalties.unsupported_construct_penalty": p.UnsupportedConstruct,
	}
}
