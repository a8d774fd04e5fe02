package core

// ---------- Expression Types ----------

// ColumnRef represents a column reference (possibly qualified).
type ColumnRef struct {
	NodeInfo
	Schema string // optional schema qualifier: schema.table.column
	Table  string // optional table/alias qualifier
	Column string
}

func (*ColumnRef) exprNode() {}

// StarExpr is a wildcard used as an expression, e.g. COUNT(*) or t.* inside
// a function argument list.
type StarExpr struct {
	NodeInfo
	Table string
}

func (*StarExpr) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralType constants for SQL literal value types.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
	LiteralDate      // DATE '2024-01-01'
	LiteralTime      // TIME '10:00'
	LiteralTimestamp // TIMESTAMP '2024-01-01 10:00'
	LiteralInterval  // INTERVAL '1' DAY, INTERVAL 3 HOURS
	LiteralParam     // ?, $1
	LiteralKeyword   // bare keyword argument: EXTRACT(YEAR FROM d)
)

// Literal represents a literal value.
type Literal struct {
	NodeInfo
	Type  LiteralType
	Value string
	Unit  string // interval unit, upper-cased
}

func (*Literal) exprNode() {}

// IsValue reports whether the literal is a concrete value that generalizes
// to a placeholder. NULL and booleans are structural and are kept.
func (l *Literal) IsValue() bool {
	return l.Type != LiteralNull && l.Type != LiteralBool && l.Type != LiteralKeyword
}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	NodeInfo
	Left  Expr
	Op    string // canonical upper-case operator: "+", "AND", "||"
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a prefix expression: -x, +x, NOT x.
type UnaryExpr struct {
	NodeInfo
	Op   string
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// FuncCall represents a function call, including aggregates and windows.
type FuncCall struct {
	NodeInfo
	Name     string // upper-cased
	Niladic  bool   // written without parentheses: CURRENT_DATE
	Distinct bool
	Args     []Expr

	// Seps holds the separator written before Args[i+1] when a call is not
	// plain comma-separated: EXTRACT(YEAR FROM d), SUBSTRING(s FROM 1 FOR 2).
	// An empty entry is a comma, " " is juxtaposition: TRIM(BOTH 'x' FROM s).
	Seps    []string
	OrderBy []OrderByItem // ARRAY_AGG(x ORDER BY y)
	Filter  Expr          // FILTER (WHERE ...)
	Within  []OrderByItem // WITHIN GROUP (ORDER BY ...)
	Window  *WindowSpec   // OVER (...)
}

func (*FuncCall) exprNode() {}

// WindowSpec represents the OVER clause of a window function.
type WindowSpec struct {
	Name        string // OVER w
	PartitionBy []Expr
	OrderBy     []OrderByItem
	Frame       *FrameSpec
}

// FrameType is ROWS, RANGE or GROUPS.
type FrameType string

// Frame types.
const (
	FrameRows   FrameType = "ROWS"
	FrameRange  FrameType = "RANGE"
	FrameGroups FrameType = "GROUPS"
)

// FrameBoundType describes one end of a window frame.
type FrameBoundType string

// Frame bound types.
const (
	FrameUnboundedPreceding FrameBoundType = "UNBOUNDED PRECEDING"
	FrameUnboundedFollowing FrameBoundType = "UNBOUNDED FOLLOWING"
	FrameCurrentRow         FrameBoundType = "CURRENT ROW"
	FrameExprPreceding      FrameBoundType = "PRECEDING"
	FrameExprFollowing      FrameBoundType = "FOLLOWING"
)

// FrameBound is one end of a window frame.
type FrameBound struct {
	Type   FrameBoundType
	Offset Expr // for n PRECEDING / n FOLLOWING
}

// FrameSpec is a window frame clause.
type FrameSpec struct {
	Type  FrameType
	Start *FrameBound
	End   *FrameBound // nil when written without BETWEEN
}

// CaseExpr represents CASE [operand] WHEN ... THEN ... [ELSE ...] END.
type CaseExpr struct {
	NodeInfo
	Operand Expr
	Whens   []WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause is a single WHEN ... THEN ... branch.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// CastExpr represents CAST(x AS type), TRY_CAST(x AS type) or x::type.
type CastExpr struct {
	NodeInfo
	Expr     Expr
	TypeName string
	Try      bool
}

func (*CastExpr) exprNode() {}

// InExpr represents x [NOT] IN (values) or x [NOT] IN (subquery).
type InExpr struct {
	NodeInfo
	Expr   Expr
	Not    bool
	Values []Expr
	Query  *SelectStmt
}

func (*InExpr) exprNode() {}

// BetweenExpr represents x [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// IsNullExpr represents x IS [NOT] NULL.
type IsNullExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// IsBoolExpr represents x IS [NOT] TRUE/FALSE.
type IsBoolExpr struct {
	NodeInfo
	Expr  Expr
	Not   bool
	Value bool
}

func (*IsBoolExpr) exprNode() {}

// LikeExpr represents x [NOT] LIKE/ILIKE/RLIKE pattern.
type LikeExpr struct {
	NodeInfo
	Expr    Expr
	Not     bool
	Op      string // LIKE, ILIKE, RLIKE
	Pattern Expr
}

func (*LikeExpr) exprNode() {}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	NodeInfo
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// SubqueryExpr represents a scalar subquery.
type SubqueryExpr struct {
	NodeInfo
	Select *SelectStmt
}

func (*SubqueryExpr) exprNode() {}

// ExistsExpr represents [NOT] EXISTS (subquery).
type ExistsExpr struct {
	NodeInfo
	Not    bool
	Select *SelectStmt
}

func (*ExistsExpr) exprNode() {}

// IndexExpr represents subscript access: arr[1], obj['key'].
type IndexExpr struct {
	NodeInfo
	Expr  Expr
	Index Expr
}

func (*IndexExpr) exprNode() {}

// PathExpr represents semi-structured path access: payload:customer.id.
type PathExpr struct {
	NodeInfo
	Expr Expr
	Path string
}

func (*PathExpr) exprNode() {}
