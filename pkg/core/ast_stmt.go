package core

// ---------- Query Types ----------

// SelectStmt represents a complete SELECT statement with optional WITH clause.
type SelectStmt struct {
	NodeInfo
	With *WithClause
	Body *SelectBody
}

func (*SelectStmt) stmtNode() {}

// WithClause represents a WITH clause with CTEs.
type WithClause struct {
	NodeInfo
	Recursive bool
	CTEs      []*CTE
}

// CTE represents a Common Table Expression.
type CTE struct {
	NodeInfo
	Name    string
	Columns []string // optional column list: name (a, b) AS (...)
	Select  *SelectStmt
}

// SelectBody represents the body of a SELECT with possible set operations.
// A body with Op == SetOpNone is a single SelectCore.
type SelectBody struct {
	NodeInfo
	Left  *SelectCore
	Op    SetOpType
	All   bool
	Right *SelectBody // For chained set operations

	// ORDER BY / LIMIT written after the last branch of a set operation.
	OrderBy []OrderByItem
	Limit   Expr
	Offset  Expr
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectCore represents the core SELECT clause.
type SelectCore struct {
	NodeInfo
	Distinct   bool
	Top        *TopClause
	Columns    []SelectItem
	From       *FromClause
	Where      Expr
	GroupBy    []Expr
	GroupByAll bool
	Having     Expr
	Windows    []WindowDef
	Qualify    Expr
	OrderBy    []OrderByItem
	Limit      Expr
	Offset     Expr
	Fetch      *FetchClause

	// Extensions holds dialect clauses without a typed slot.
	Extensions []Node
}

// WindowDef is a named window definition: WINDOW w AS (PARTITION BY ...).
type WindowDef struct {
	Name string
	Spec *WindowSpec
}

// WindowClause is the parsed WINDOW clause handed back by a clause handler.
type WindowClause struct {
	NodeInfo
	Defs []WindowDef
}

// TopClause is the T-SQL row limit written right after SELECT.
type TopClause struct {
	Count    Expr
	Percent  bool
	WithTies bool
}

// FetchClause represents FETCH FIRST/NEXT n ROWS ONLY/WITH TIES (SQL:2008).
type FetchClause struct {
	NodeInfo
	First    bool
	Count    Expr // nil = 1 row implied
	Percent  bool
	WithTies bool
}

// SelectItem represents an item in the SELECT list (a projection).
type SelectItem struct {
	Star      bool     // SELECT *
	TableStar string   // SELECT t.*
	Exclude   []string // * EXCLUDE (a, b) / * EXCEPT (a, b)
	Expr      Expr
	Alias     string
}

// IsStar reports whether the item is an unqualified or qualified wildcard.
func (s SelectItem) IsStar() bool {
	return s.Star || s.TableStar != ""
}

// FromClause represents the FROM clause.
type FromClause struct {
	NodeInfo
	Source TableRef
	Joins  []*Join
}

// Join represents a JOIN clause.
type Join struct {
	NodeInfo
	Type      JoinType
	Natural   bool
	Right     TableRef
	Condition Expr     // ON clause (mutually exclusive with Using)
	Using     []string // USING (col1, col2) columns
}

// JoinType represents the type of join.
// The value is the SQL keyword sequence (e.g., "LEFT", "FULL OUTER").
type JoinType string

// Join types shared by every dialect.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	JoinComma JoinType = ","
)

// OrderByItem represents an item in ORDER BY clause.
type OrderByItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst *bool // nil means default, true = NULLS FIRST, false = NULLS LAST
}

// ---------- DML ----------

// InsertStmt represents INSERT INTO t [(cols)] {SELECT ... | VALUES ...}.
type InsertStmt struct {
	NodeInfo
	Table     *TableName
	Columns   []string
	Overwrite bool
	ByName    bool // INSERT ... BY NAME: columns matched by name, not position
	Select    *SelectStmt
	Values    [][]Expr
}

func (*InsertStmt) stmtNode() {}

// Assignment is a single col = expr pair in UPDATE SET or MERGE ... UPDATE SET.
type Assignment struct {
	Column string
	Value  Expr
}

// UpdateStmt represents UPDATE t SET ... [FROM ...] [WHERE ...].
type UpdateStmt struct {
	NodeInfo
	With  *WithClause
	Table *TableName
	Set   []Assignment
	From  *FromClause
	Where Expr
}

func (*UpdateStmt) stmtNode() {}

// DeleteStmt represents DELETE FROM t [USING ...] [WHERE ...].
type DeleteStmt struct {
	NodeInfo
	With  *WithClause
	Table *TableName
	Using *FromClause
	Where Expr
}

func (*DeleteStmt) stmtNode() {}

// MergeAction is the action of a WHEN clause inside MERGE.
type MergeAction string

// Merge actions.
const (
	MergeUpdate MergeAction = "UPDATE"
	MergeInsert MergeAction = "INSERT"
	MergeDelete MergeAction = "DELETE"
)

// MergeClause is one WHEN [NOT] MATCHED branch.
type MergeClause struct {
	Matched   bool
	Condition Expr
	Action    MergeAction
	Set       []Assignment // UPDATE SET
	Columns   []string     // INSERT (cols)
	Values    []Expr       // INSERT VALUES (...)
	Star      bool         // UPDATE SET * / INSERT *: columns matched by name
}

// MergeStmt represents MERGE INTO target USING source ON cond WHEN ....
type MergeStmt struct {
	NodeInfo
	With    *WithClause
	Target  *TableName
	Source  TableRef
	On      Expr
	Clauses []*MergeClause
}

func (*MergeStmt) stmtNode() {}

// ---------- DDL ----------

// CreateViewStmt represents CREATE [MATERIALIZED] VIEW v AS SELECT ....
type CreateViewStmt struct {
	NodeInfo
	Name         *TableName
	Columns      []string
	Materialized bool
	Replace      bool
	Temporary    bool
	IfNotExists  bool
	Select       *SelectStmt
}

func (*CreateViewStmt) stmtNode() {}

// CreateTableAsStmt represents CREATE TABLE t AS SELECT ....
type CreateTableAsStmt struct {
	NodeInfo
	Name        *TableName
	Columns     []string
	Replace     bool
	Temporary   bool
	IfNotExists bool
	Select      *SelectStmt
}

func (*CreateTableAsStmt) stmtNode() {}

// UnknownStmt is a statement the parser recognizes by its leading keyword
// but does not model. Names are captured best-effort: Tables follow
// TABLE, VIEW or INTO, Sources follow FROM.
type UnknownStmt struct {
	NodeInfo
	Keyword string
	Tables  []*TableName
	Sources []*TableName
}

func (*UnknownStmt) stmtNode() {}
