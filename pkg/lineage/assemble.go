package lineage

import (
	"fmt"
	"slices"
)

// Parts are the per-component results the assembler merges into a Record.
type Parts struct {
	QueryType   QueryType
	Props       map[string]any
	Generalized string
	InTables    []string
	OutTables   []string
	Lineage     []ColumnLineage
	Deductions  Deductions
	Warnings    []Warning
	Penalties   Penalties
}

// Assemble validates parts and builds the final record. A statement with
// more than one write target is demoted to UNKNOWN with no column lineage.
// Lineage naming a table outside in_tables and out_tables is an error.
func Assemble(parts Parts) (*Record, error) {
	in := sortedUnique(parts.InTables)
	out := sortedUnique(parts.OutTables)
	qt := parts.QueryType
	edges := parts.Lineage
	warnings := slices.Clone(parts.Warnings)

	if len(out) > 1 {
		warnings = append(warnings, Warning{
			Kind:    MultiTargetUnsupported,
			Message: fmt.Sprintf("statement writes %d tables; at most one is supported", len(out)),
		})
		qt = QueryUnknown
		edges = nil
	}

	known := make(map[string]struct{}, len(in)+len(out))
	for _, t := range in {
		known[t] = struct{}{}
	}
	for _, t := range out {
		known[t] = struct{}{}
	}
	for _, e := range edges {
		if d := e.Downstream; d.Table != "" {
			if _, ok := known[d.Table]; !ok {
				return nil, &ResolutionInconsistencyError{Table: d.Table, Column: d.Column, Reason: "downstream table is not written"}
			}
		}
		for _, up := range e.Upstreams {
			if _, ok := known[up.Table]; !ok {
				return nil, &ResolutionInconsistencyError{Table: up.Table, Column: up.Column, Reason: "upstream table is not read"}
			}
		}
	}

	props := parts.Props
	if props == nil {
		props = make(map[string]any)
	}
	if edges == nil {
		edges = []ColumnLineage{}
	}

	return &Record{
		QueryType:        qt,
		QueryTypeProps:   props,
		QueryFingerprint: Fingerprint(parts.Generalized),
		InTables:         in,
		OutTables:        out,
		ColumnLineage:    edges,
		DebugInfo: DebugInfo{
			Confidence:           Score(qt, parts.Deductions, parts.Penalties),
			GeneralizedStatement: parts.Generalized,
			Warnings:             warnings,
		},
	}, nil
}

func sortedUnique(s []string) []string {
	out := slices.Clone(s)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
