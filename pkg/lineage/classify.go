package lineage

import "github.com/leapstack-labs/sqllineage/pkg/core"

// Classify returns the query type of a statement and its type-specific
// properties. The properties map is never nil.
func Classify(stmt core.Stmt) (QueryType, map[string]any) {
	props := make(map[string]any)

	switch s := stmt.(type) {
	case *core.CreateViewStmt:
		props["kind"] = "VIEW"
		if s.Materialized {
			props["kind"] = "MATERIALIZED_VIEW"
		}
		createProps(props, s.Temporary, s.Replace)
		return QueryCreateView, props
	case *core.CreateTableAsStmt:
		createProps(props, s.Temporary, s.Replace)
		return QueryCreateTableAs, props
	case *core.InsertStmt:
		return QueryInsert, props
	case *core.UpdateStmt:
		return QueryUpdate, props
	case *core.DeleteStmt:
		return QueryDelete, props
	case *core.MergeStmt:
		return QueryMerge, props
	case *core.SelectStmt:
		return QuerySelect, props
	default:
		return QueryUnknown, props
	}
}

func createProps(props map[string]any, temporary, replace bool) {
	if temporary {
		props["temporary"] = true
	}
	if replace {
		props["replace"] = true
	}
}
