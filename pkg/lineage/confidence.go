package lineage

import "math"

// Deductions counts the heuristic steps taken while resolving a statement.
type Deductions struct {
	EmptyUpstream        int
	UnresolvedWildcard   int
	AmbiguousColumn      int
	UnsupportedConstruct int
}

// Score returns clamp(1 - sum of penalties, 0, 1), rounded to four
// decimals so that default weights print as written. UNKNOWN scores 0.
func Score(qt QueryType, d Deductions, p Penalties) float64 {
	if qt == QueryUnknown {
		return 0
	}
	total := float64(d.EmptyUpstream)*p.EmptyUpstream +
		float64(d.UnresolvedWildcard)*p.UnresolvedWildcard +
		float64(d.AmbiguousColumn)*p.AmbiguousColumn +
		float64(d.UnsupportedConstruct)*p.UnsupportedConstruct

	score := math.Round((1-total)*1e4) / 1e4
	return math.Max(0, math.Min(1, score))
}
