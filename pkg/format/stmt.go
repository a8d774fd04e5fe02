package format

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

func (p *Printer) formatStmt(stmt core.Stmt) {
	switch s := stmt.(type) {
	case *core.SelectStmt:
		p.formatSelectStmt(s)
	case *core.InsertStmt:
		p.formatInsert(s)
	case *core.UpdateStmt:
		p.formatUpdate(s)
	case *core.DeleteStmt:
		p.formatDelete(s)
	case *core.MergeStmt:
		p.formatMerge(s)
	case *core.CreateViewStmt:
		p.formatCreate(s.Replace, s.Temporary, s.Materialized, "VIEW", s.IfNotExists, s.Name, s.Columns, s.Select)
	case *core.CreateTableAsStmt:
		p.formatCreate(s.Replace, s.Temporary, false, "TABLE", s.IfNotExists, s.Name, s.Columns, s.Select)
	case *core.UnknownStmt:
		p.formatUnknown(s)
	}
}

func (p *Printer) formatSelectStmt(stmt *core.SelectStmt) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		p.formatWithClause(stmt.With)
		p.space()
	}
	p.formatSelectBody(stmt.Body)
}

func (p *Printer) formatWithClause(with *core.WithClause) {
	p.kw(token.WITH)
	if with.Recursive {
		p.space()
		p.kw(token.RECURSIVE)
	}
	p.space()
	p.formatList(len(with.CTEs), func(i int) {
		cte := with.CTEs[i]
		p.ident(cte.Name)
		if len(cte.Columns) > 0 {
			p.space()
			p.identList(cte.Columns)
		}
		p.write(" AS (")
		p.formatSelectStmt(cte.Select)
		p.write(")")
	}, ", ")
}

func (p *Printer) formatSelectBody(body *core.SelectBody) {
	if body == nil {
		return
	}
	p.formatSelectCore(body.Left)

	if body.Op != core.SetOpNone && body.Right != nil {
		p.write(" " + string(body.Op))
		if body.All {
			p.write(" ALL")
		}
		p.space()
		p.formatSelectBody(body.Right)
	}

	p.formatOrderLimit(body.OrderBy, body.Limit, body.Offset)
}

func (p *Printer) formatOrderLimit(orderBy []core.OrderByItem, limit, offset core.Expr) {
	if len(orderBy) > 0 {
		p.write(" ORDER BY ")
		p.formatOrderBy(orderBy)
	}
	if limit != nil {
		p.write(" LIMIT ")
		p.formatExpr(limit)
	}
	if offset != nil {
		p.write(" OFFSET ")
		p.formatExpr(offset)
	}
}

func (p *Printer) formatSelectCore(sc *core.SelectCore) {
	if sc == nil {
		return
	}

	p.kw(token.SELECT)
	if sc.Distinct {
		p.write(" DISTINCT")
	}
	if sc.Top != nil {
		p.write(" TOP ")
		p.formatExpr(sc.Top.Count)
		if sc.Top.Percent {
			p.write(" PERCENT")
		}
		if sc.Top.WithTies {
			p.write(" WITH TIES")
		}
	}
	p.space()
	p.formatList(len(sc.Columns), func(i int) { p.formatSelectItem(sc.Columns[i]) }, ", ")

	if sc.From != nil {
		p.write(" FROM ")
		p.formatFromClause(sc.From)
	}
	if sc.Where != nil {
		p.write(" WHERE ")
		p.formatExpr(sc.Where)
	}
	switch {
	case sc.GroupByAll:
		p.write(" GROUP BY ALL")
	case len(sc.GroupBy) > 0:
		p.write(" GROUP BY ")
		p.formatExprList(sc.GroupBy)
	}
	if sc.Having != nil {
		p.write(" HAVING ")
		p.formatExpr(sc.Having)
	}
	if len(sc.Windows) > 0 {
		p.write(" WINDOW ")
		p.formatList(len(sc.Windows), func(i int) {
			p.ident(sc.Windows[i].Name)
			p.write(" AS ")
			p.formatWindowSpec(sc.Windows[i].Spec)
		}, ", ")
	}
	if sc.Qualify != nil {
		p.write(" QUALIFY ")
		p.formatExpr(sc.Qualify)
	}
	p.formatOrderLimit(sc.OrderBy, sc.Limit, sc.Offset)
	if sc.Fetch != nil {
		p.write(" FETCH FIRST ")
		if sc.Fetch.Count != nil {
			p.formatExpr(sc.Fetch.Count)
			p.space()
		}
		if sc.Fetch.Percent {
			p.write("PERCENT ")
		}
		if sc.Fetch.WithTies {
			p.write("ROWS WITH TIES")
		} else {
			p.write("ROWS ONLY")
		}
	}
}

func (p *Printer) formatSelectItem(item core.SelectItem) {
	switch {
	case item.Star:
		p.write("*")
	case item.TableStar != "":
		p.ident(item.TableStar)
		p.write(".*")
	default:
		p.formatExpr(item.Expr)
		if item.Alias != "" {
			p.write(" AS ")
			p.ident(item.Alias)
		}
		return
	}
	if len(item.Exclude) > 0 {
		p.write(" EXCLUDE ")
		p.identList(item.Exclude)
	}
}

func (p *Printer) formatFromClause(from *core.FromClause) {
	p.formatTableRef(from.Source)
	for _, join := range from.Joins {
		if join.Type == core.JoinComma {
			p.write(", ")
			p.formatTableRef(join.Right)
			continue
		}
		p.space()
		if join.Natural {
			p.write("NATURAL ")
		}
		p.write(string(join.Type) + " JOIN ")
		p.formatTableRef(join.Right)
		switch {
		case join.Condition != nil:
			p.write(" ON ")
			p.formatExpr(join.Condition)
		case len(join.Using) > 0:
			p.write(" USING ")
			p.identList(join.Using)
		}
	}
}

func (p *Printer) formatTableRef(ref core.TableRef) {
	switch t := ref.(type) {
	case *core.TableName:
		p.formatTableName(t)
	case *core.DerivedTable:
		if t.Lateral {
			p.write("LATERAL ")
		}
		p.write("(")
		p.formatSelectStmt(t.Select)
		p.write(")")
		p.alias(t.Alias)
		if len(t.Columns) > 0 {
			p.space()
			p.identList(t.Columns)
		}
	case *core.TableFunc:
		if t.Lateral {
			p.write("LATERAL ")
		}
		p.write(t.Name + "(")
		p.formatExprList(t.Args)
		p.write(")")
		p.alias(t.Alias)
	case *core.ParenTable:
		p.write("(")
		p.formatFromClause(t.From)
		p.write(")")
		p.alias(t.Alias)
	}
}

func (p *Printer) formatTableName(t *core.TableName) {
	p.qualified(t.Catalog, t.Schema, t.Name)
	p.alias(t.Alias)
}

func (p *Printer) alias(alias string) {
	if alias != "" {
		p.write(" AS ")
		p.ident(alias)
	}
}

// ---------- DML ----------

func (p *Printer) formatInsert(ins *core.InsertStmt) {
	if ins.Overwrite {
		p.write("INSERT OVERWRITE TABLE ")
	} else {
		p.write("INSERT INTO ")
	}
	p.formatTableName(ins.Table)
	if len(ins.Columns) > 0 {
		p.space()
		p.identList(ins.Columns)
	}
	if ins.ByName {
		p.write(" BY NAME")
	}

	switch {
	case ins.Select != nil:
		p.space()
		p.formatSelectStmt(ins.Select)
	case len(ins.Values) > 0:
		p.write(" VALUES ")
		rows := ins.Values
		if p.generalize {
			// Row count is data, not structure.
			rows = rows[:1]
		}
		p.formatList(len(rows), func(i int) {
			p.write("(")
			p.formatExprList(rows[i])
			p.write(")")
		}, ", ")
	default:
		p.write(" DEFAULT VALUES")
	}
}

func (p *Printer) formatAssignments(set []core.Assignment) {
	p.formatList(len(set), func(i int) {
		p.ident(set[i].Column)
		p.write(" = ")
		p.formatExpr(set[i].Value)
	}, ", ")
}

func (p *Printer) formatUpdate(upd *core.UpdateStmt) {
	if upd.With != nil {
		p.formatWithClause(upd.With)
		p.space()
	}
	p.write("UPDATE ")
	p.formatTableName(upd.Table)
	p.write(" SET ")
	p.formatAssignments(upd.Set)
	if upd.From != nil {
		p.write(" FROM ")
		p.formatFromClause(upd.From)
	}
	if upd.Where != nil {
		p.write(" WHERE ")
		p.formatExpr(upd.Where)
	}
}

func (p *Printer) formatDelete(del *core.DeleteStmt) {
	if del.With != nil {
		p.formatWithClause(del.With)
		p.space()
	}
	p.write("DELETE FROM ")
	p.formatTableName(del.Table)
	if del.Using != nil {
		p.write(" USING ")
		p.formatFromClause(del.Using)
	}
	if del.Where != nil {
		p.write(" WHERE ")
		p.formatExpr(del.Where)
	}
}

func (p *Printer) formatMerge(m *core.MergeStmt) {
	if m.With != nil {
		p.formatWithClause(m.With)
		p.space()
	}
	p.write("MERGE INTO ")
	p.formatTableName(m.Target)
	p.write(" USING ")
	p.formatTableRef(m.Source)
	p.write(" ON ")
	p.formatExpr(m.On)

	for _, c := range m.Clauses {
		if c.Matched {
			p.write(" WHEN MATCHED")
		} else {
			p.write(" WHEN NOT MATCHED")
		}
		if c.Condition != nil {
			p.write(" AND ")
			p.formatExpr(c.Condition)
		}
		p.write(" THEN ")

		switch c.Action {
		case core.MergeUpdate:
			p.write("UPDATE SET ")
			if c.Star {
				p.write("*")
			} else {
				p.formatAssignments(c.Set)
			}
		case core.MergeInsert:
			p.write("INSERT")
			if c.Star {
				p.write(" *")
				continue
			}
			if len(c.Columns) > 0 {
				p.space()
				p.identList(c.Columns)
			}
			p.write(" VALUES (")
			p.formatExprList(c.Values)
			p.write(")")
		case core.MergeDelete:
			p.write("DELETE")
		}
	}
}

// ---------- DDL ----------

func (p *Printer) formatCreate(replace, temporary, materialized bool, object string, ifNotExists bool,
	name *core.TableName, columns []string, sel *core.SelectStmt) {
	p.kw(token.CREATE)
	if replace {
		p.write(" OR REPLACE")
	}
	if temporary {
		p.write(" TEMPORARY")
	}
	if materialized {
		p.write(" MATERIALIZED")
	}
	p.write(" " + object + " ")
	if ifNotExists {
		p.write("IF NOT EXISTS ")
	}
	p.qualified(name.Catalog, name.Schema, name.Name)
	if len(columns) > 0 {
		p.space()
		p.identList(columns)
	}
	p.write(" AS ")
	p.formatSelectStmt(sel)
}

// formatUnknown prints the leading keyword and the captured names. The
// body of an unmodeled statement is not kept in the AST.
func (p *Printer) formatUnknown(u *core.UnknownStmt) {
	p.keyword(u.Keyword)
	for _, t := range u.Tables {
		p.space()
		p.qualified(t.Catalog, t.Schema, t.Name)
	}
	for _, t := range u.Sources {
		p.write(" FROM ")
		p.qualified(t.Catalog, t.Schema, t.Name)
	}
}
