package lineage

import "github.com/leapstack-labs/sqllineage/pkg/core"

// walkExpr calls fn for e and every expression below it, parents first.
// It does not descend into subquery bodies; fn sees the SubqueryExpr,
// ExistsExpr or InExpr node and decides.
func walkExpr(e core.Expr, fn func(core.Expr)) {
	if e == nil {
		return
	}
	fn(e)
	for _, child := range exprChildren(e) {
		walkExpr(child, fn)
	}
}

// exprChildren returns the direct sub-expressions of e.
func exprChildren(e core.Expr) []core.Expr {
	switch x := e.(type) {
	case *core.BinaryExpr:
		return []core.Expr{x.Left, x.Right}
	case *core.UnaryExpr:
		return []core.Expr{x.Expr}
	case *core.FuncCall:
		children := append([]core.Expr{}, x.Args...)
		children = appendOrderBy(children, x.OrderBy)
		children = appendOrderBy(children, x.Within)
		if x.Filter != nil {
			children = append(children, x.Filter)
		}
		if x.Window != nil {
			children = append(children, x.Window.PartitionBy...)
			children = appendOrderBy(children, x.Window.OrderBy)
		}
		return children
	case *core.CaseExpr:
		children := []core.Expr{x.Operand}
		for _, w := range x.Whens {
			children = append(children, w.Condition, w.Result)
		}
		return append(children, x.Else)
	case *core.CastExpr:
		return []core.Expr{x.Expr}
	case *core.InExpr:
		return append([]core.Expr{x.Expr}, x.Values...)
	case *core.BetweenExpr:
		return []core.Expr{x.Expr, x.Low, x.High}
	case *core.IsNullExpr:
		return []core.Expr{x.Expr}
	case *core.IsBoolExpr:
		return []core.Expr{x.Expr}
	case *core.LikeExpr:
		return []core.Expr{x.Expr, x.Pattern}
	case *core.ParenExpr:
		return []core.Expr{x.Expr}
	case *core.IndexExpr:
		return []core.Expr{x.Expr, x.Index}
	case *core.PathExpr:
		return []core.Expr{x.Expr}
	default:
		return nil
	}
}

func appendOrderBy(exprs []core.Expr, items []core.OrderByItem) []core.Expr {
	for _, item := range items {
		exprs = append(exprs, item.Expr)
	}
	return exprs
}
