package lineage

// QueryType is the classification of a statement.
type QueryType string

// Query types.
const (
	QueryCreateView    QueryType = "CREATE_VIEW"
	QueryCreateTableAs QueryType = "CREATE_TABLE_AS_SELECT"
	QueryInsert        QueryType = "INSERT"
	QueryUpdate        QueryType = "UPDATE"
	QueryDelete        QueryType = "DELETE"
	QueryMerge         QueryType = "MERGE"
	QuerySelect        QueryType = "SELECT"
	QueryUnknown       QueryType = "UNKNOWN"
)

const (
	// wildcardColumn names the column of an unresolved wildcard sentinel.
	wildcardColumn = "*"
	// anonymousColumnPrefix names projection items with no derivable name.
	anonymousColumnPrefix = "_col_"
)

// Record is the lineage extracted from one statement.
type Record struct {
	QueryType        QueryType       `json:"query_type"`
	QueryTypeProps   map[string]any  `json:"query_type_props"`
	QueryFingerprint string          `json:"query_fingerprint"`
	InTables         []string        `json:"in_tables"`
	OutTables        []string        `json:"out_tables"`
	ColumnLineage    []ColumnLineage `json:"column_lineage"`
	DebugInfo        DebugInfo       `json:"debug_info"`
}

// ColumnLineage is one downstream column and the columns it derives from.
// Upstreams may be empty: a constant, or a value with no traceable source.
type ColumnLineage struct {
	Downstream Downstream `json:"downstream"`
	Upstreams  []Upstream `json:"upstreams"`
}

// Downstream is the written column of a lineage edge. Table is empty for
// a bare SELECT.
type Downstream struct {
	Table            string `json:"table"`
	Column           string `json:"column"`
	ColumnType       string `json:"column_type,omitempty"`
	NativeColumnType string `json:"native_column_type,omitempty"`
}

// Upstream is a source column of a lineage edge.
type Upstream struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// DebugInfo carries the scoring inputs and outputs of a record.
type DebugInfo struct {
	Confidence           float64   `json:"confidence"`
	GeneralizedStatement string    `json:"generalized_statement"`
	Warnings             []Warning `json:"warnings,omitempty"`
}

// Tables returns every table named by the lineage edges, downstream first.
func (c ColumnLineage) Tables() []string {
	tables := make([]string, 0, len(c.Upstreams)+1)
	if c.Downstream.Table != "" {
		tables = append(tables, c.Downstream.Table)
	}
	for _, up := range c.Upstreams {
		tables = append(tables, up.Table)
	}
	return tables
}
