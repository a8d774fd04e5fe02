package parser

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Write statements: INSERT, UPDATE, DELETE, MERGE, CREATE VIEW / TABLE AS
// and the statements recognized without being modeled.
//
// Grammar:
//
//	insert  → INSERT (INTO | OVERWRITE) [TABLE] table_name [AS alias]
//	          [PARTITION "(" ... ")"] ["(" ident_list ")"] [BY NAME]
//	          (query | VALUES row ("," row)* | DEFAULT VALUES)
//	          [ON CONFLICT ... | ON DUPLICATE KEY ... | RETURNING ...]
//	update  → UPDATE table_name [[AS] alias] SET assignment ("," assignment)*
//	          [FROM from_clause] [WHERE expr] [RETURNING ...]
//	delete  → DELETE [FROM] table_name [[AS] alias] [(USING | FROM) from_clause]
//	          [WHERE expr] [RETURNING ...]
//	merge   → MERGE [INTO] table_name [[AS] alias] USING table_ref ON expr when+
//	when    → WHEN [NOT] MATCHED [BY (TARGET|SOURCE)] [AND expr] THEN action
//	action  → UPDATE SET (assignment ("," assignment)* | "*") | DELETE
//	          | INSERT ["(" ident_list ")"] VALUES "(" expr_list ")" | INSERT "*"
//	          | INSERT ROW | DO NOTHING
//	create  → CREATE [OR REPLACE] {modifier} (VIEW | TABLE) [IF NOT EXISTS]
//	          table_name ["(" column_defs ")"] {option} AS query

// parseTableName parses catalog.schema.name with dialect normalization.
func (p *Parser) parseTableName() (*core.TableName, error) {
	start := p.token.Pos
	if !isIdentLike(p.token) {
		return nil, p.unexpected("table name")
	}
	parts := []string{p.identName(p.token)}
	p.nextToken()
	for p.match(token.DOT) {
		// Any word is allowed after a dot: db.order, t.date
		if p.token.Type == token.EOF || (!isIdentLike(p.token) && !token.IsKeyword(p.token.Type) && !token.IsDynamic(p.token.Type)) {
			return nil, p.unexpected("identifier")
		}
		parts = append(parts, p.identName(p.token))
		p.nextToken()
	}

	tn := &core.TableName{}
	switch len(parts) {
	case 1:
		tn.Name = parts[0]
	case 2:
		tn.Schema, tn.Name = parts[0], parts[1]
	case 3:
		tn.Catalog, tn.Schema, tn.Name = parts[0], parts[1], parts[2]
	default:
		return nil, &ParseError{Pos: start, Fragment: strings.Join(parts, "."), Message: "table name has too many parts"}
	}
	tn.SetSpan(start, p.Position())
	return tn, nil
}

// parseTableAlias parses an optional [AS] alias after a write target.
func (p *Parser) parseTableAlias(tn *core.TableName) error {
	alias, err := p.parseAlias()
	if err != nil {
		return err
	}
	tn.Alias = alias
	return nil
}

// parseIfNotExists consumes IF NOT EXISTS.
func (p *Parser) parseIfNotExists() (bool, error) {
	if !p.checkWord("IF") {
		return false, nil
	}
	p.nextToken()
	if err := p.expect(token.NOT); err != nil {
		return false, err
	}
	if err := p.expect(token.EXISTS); err != nil {
		return false, err
	}
	return true, nil
}

// parseColumnName parses a possibly qualified column and keeps the last part.
func (p *Parser) parseColumnName() (string, error) {
	name, err := p.ParseIdentifier()
	if err != nil {
		return "", err
	}
	for p.match(token.DOT) {
		if name, err = p.ParseIdentifier(); err != nil {
			return "", err
		}
	}
	return name, nil
}

// parseAssignments parses col = expr ("," col = expr)*.
func (p *Parser) parseAssignments() ([]core.Assignment, error) {
	var set []core.Assignment
	for {
		if p.check(token.LPAREN) {
			return nil, p.errorf(ErrRowValueUnsupported)
		}
		col, err := p.parseColumnName()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		set = append(set, core.Assignment{Column: col, Value: value})
		if !p.match(token.COMMA) {
			return set, nil
		}
	}
}

// parseTrailingDML tolerates RETURNING and upsert tails.
func (p *Parser) parseTrailingDML() {
	switch {
	case p.checkWord("RETURNING"):
		p.skipToEnd("RETURNING")
	case p.check(token.ON) && isWord(p.peek, "CONFLICT"):
		p.skipToEnd("ON CONFLICT")
	case p.check(token.ON) && isWord(p.peek, "DUPLICATE"):
		p.skipToEnd("ON DUPLICATE KEY UPDATE")
	case p.checkWord("OPTION") && p.checkPeek(token.LPAREN):
		p.skipToEnd("OPTION")
	}
}

// ---------- INSERT ----------

func (p *Parser) parseInsert() (*core.InsertStmt, error) {
	start := p.token.Pos
	if err := p.expect(token.INSERT); err != nil {
		return nil, err
	}
	ins := &core.InsertStmt{}

	switch {
	case p.match(token.INTO):
	case p.matchWord("OVERWRITE"):
		ins.Overwrite = true
		p.match(token.INTO)
	default:
		return nil, p.unexpected("INTO or OVERWRITE")
	}
	p.match(token.TABLE)

	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	ins.Table = table
	if p.match(token.AS) {
		if table.Alias, err = p.ParseIdentifier(); err != nil {
			return nil, err
		}
	}

	if p.check(token.PARTITION) && p.checkPeek(token.LPAREN) {
		p.nextToken()
		if err := p.skipParens(); err != nil {
			return nil, err
		}
	}

	if p.check(token.LPAREN) && !p.checkPeek(token.SELECT) && !p.checkPeek(token.WITH) && !p.checkPeek(token.LPAREN) {
		if ins.Columns, err = p.parseIdentList(); err != nil {
			return nil, err
		}
	}

	if p.check(token.BY) && isWord(p.peek, "NAME") {
		p.nextToken()
		p.nextToken()
		ins.ByName = true
	}

	switch {
	case p.check(token.VALUES):
		if ins.Values, err = p.parseValuesRows(); err != nil {
			return nil, err
		}
	case p.checkWord("DEFAULT"):
		p.nextToken()
		if err := p.expect(token.VALUES); err != nil {
			return nil, err
		}
	case p.check(token.SELECT), p.check(token.WITH), p.check(token.LPAREN):
		if ins.Select, err = p.parseSelectStmt(); err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected("SELECT or VALUES")
	}

	p.parseTrailingDML()
	ins.SetSpan(start, p.Position())
	return ins, nil
}

// parseValuesRows parses VALUES (..), (..).
func (p *Parser) parseValuesRows() ([][]core.Expr, error) {
	if err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	var rows [][]core.Expr
	for {
		if err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		row, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if !p.match(token.COMMA) {
			return rows, nil
		}
	}
}

// ---------- UPDATE ----------

func (p *Parser) parseUpdate() (*core.UpdateStmt, error) {
	start := p.token.Pos
	if err := p.expect(token.UPDATE); err != nil {
		return nil, err
	}
	upd := &core.UpdateStmt{}

	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	if err := p.parseTableAlias(table); err != nil {
		return nil, err
	}
	upd.Table = table

	if err := p.expect(token.SET); err != nil {
		return nil, err
	}
	if upd.Set, err = p.parseAssignments(); err != nil {
		return nil, err
	}

	if p.match(token.FROM) {
		if upd.From, err = p.parseFromClause(); err != nil {
			return nil, err
		}
	}
	if p.match(token.WHERE) {
		if upd.Where, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	p.parseTrailingDML()
	upd.SetSpan(start, p.Position())
	return upd, nil
}

// ---------- DELETE ----------

func (p *Parser) parseDelete() (*core.DeleteStmt, error) {
	start := p.token.Pos
	if err := p.expect(token.DELETE); err != nil {
		return nil, err
	}
	del := &core.DeleteStmt{}
	p.match(token.FROM)

	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	if err := p.parseTableAlias(table); err != nil {
		return nil, err
	}
	del.Table = table

	// USING (postgres, snowflake) or a second FROM (T-SQL)
	if p.match(token.USING) || p.match(token.FROM) {
		if del.Using, err = p.parseFromClause(); err != nil {
			return nil, err
		}
	}
	if p.match(token.WHERE) {
		if del.Where, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	p.parseTrailingDML()
	del.SetSpan(start, p.Position())
	return del, nil
}

// ---------- MERGE ----------

func (p *Parser) parseMerge() (*core.MergeStmt, error) {
	start := p.token.Pos
	if err := p.expect(token.MERGE); err != nil {
		return nil, err
	}
	p.match(token.INTO)
	merge := &core.MergeStmt{}

	target, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	if err := p.parseTableAlias(target); err != nil {
		return nil, err
	}
	merge.Target = target

	if err := p.expect(token.USING); err != nil {
		return nil, err
	}
	if merge.Source, err = p.parseTableRef(); err != nil {
		return nil, err
	}
	if err := p.expect(token.ON); err != nil {
		return nil, err
	}
	if merge.On, err = p.parseExpression(); err != nil {
		return nil, err
	}

	for p.check(token.WHEN) {
		clause, err := p.parseMergeClause()
		if err != nil {
			return nil, err
		}
		if clause != nil {
			merge.Clauses = append(merge.Clauses, clause)
		}
	}
	if len(merge.Clauses) == 0 && !p.check(token.EOF) && !p.check(token.SEMICOLON) {
		return nil, p.unexpected("WHEN")
	}

	p.parseTrailingDML()
	merge.SetSpan(start, p.Position())
	return merge, nil
}

// parseMergeClause parses one WHEN branch. DO NOTHING yields nil.
func (p *Parser) parseMergeClause() (*core.MergeClause, error) {
	if err := p.expect(token.WHEN); err != nil {
		return nil, err
	}
	clause := &core.MergeClause{Matched: !p.match(token.NOT)}
	if err := p.expectWord("MATCHED"); err != nil {
		return nil, err
	}
	if p.match(token.BY) {
		switch {
		case p.matchWord("TARGET"):
		case p.matchWord("SOURCE"):
			// NOT MATCHED BY SOURCE acts on target rows like MATCHED does.
			clause.Matched = true
		default:
			return nil, p.unexpected("TARGET or SOURCE")
		}
	}

	var err error
	if p.match(token.AND) {
		if clause.Condition, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.THEN); err != nil {
		return nil, err
	}

	switch {
	case p.match(token.UPDATE):
		clause.Action = core.MergeUpdate
		if err := p.expect(token.SET); err != nil {
			return nil, err
		}
		if p.match(token.STAR) {
			clause.Star = true
			return clause, nil
		}
		if clause.Set, err = p.parseAssignments(); err != nil {
			return nil, err
		}
	case p.match(token.DELETE):
		clause.Action = core.MergeDelete
	case p.match(token.INSERT):
		clause.Action = core.MergeInsert
		if p.match(token.STAR) {
			clause.Star = true
			return clause, nil
		}
		if p.match(token.ROW) {
			clause.Star = true
			return clause, nil
		}
		if p.check(token.LPAREN) {
			if clause.Columns, err = p.parseIdentList(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(token.VALUES); err != nil {
			return nil, err
		}
		if err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		if clause.Values, err = p.parseExpressionList(); err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	case p.matchWord("DO"):
		if err := p.expectWord("NOTHING"); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, p.unexpected("UPDATE, DELETE or INSERT")
	}
	return clause, nil
}

// ---------- CREATE ----------

// parseCreate parses CREATE VIEW and CREATE TABLE AS. Other CREATE
// statements become UnknownStmt.
func (p *Parser) parseCreate() (core.Stmt, error) {
	start := p.token.Pos
	if err := p.expect(token.CREATE); err != nil {
		return nil, err
	}

	var replace, temporary, materialized bool
	if p.match(token.OR) {
		if err := p.expectWord("REPLACE"); err != nil {
			return nil, err
		}
		replace = true
	}

modifiers:
	for {
		switch {
		case p.matchWord("TEMP"), p.matchWord("TEMPORARY"), p.matchWord("VOLATILE"):
			temporary = true
		case p.matchWord("MATERIALIZED"):
			materialized = true
		case p.matchWord("TRANSIENT"), p.matchWord("SECURE"), p.matchWord("GLOBAL"),
			p.matchWord("LOCAL"), p.matchWord("UNLOGGED"), p.match(token.RECURSIVE):
		default:
			break modifiers
		}
	}

	switch {
	case p.matchWord("VIEW"):
		return p.parseCreateView(start, replace, temporary, materialized)
	case p.match(token.TABLE):
		return p.parseCreateTable(start, replace, temporary)
	}

	stmt := &core.UnknownStmt{Keyword: "CREATE"}
	if err := p.parseUnknownRest(stmt); err != nil {
		return nil, err
	}
	stmt.SetSpan(start, p.Position())
	return stmt, nil
}

func (p *Parser) parseCreateView(start token.Position, replace, temporary, materialized bool) (core.Stmt, error) {
	view := &core.CreateViewStmt{Replace: replace, Temporary: temporary, Materialized: materialized}
	var err error

	if view.IfNotExists, err = p.parseIfNotExists(); err != nil {
		return nil, err
	}
	if view.Name, err = p.parseTableName(); err != nil {
		return nil, err
	}
	if p.check(token.LPAREN) {
		if view.Columns, err = p.parseColumnDefs(); err != nil {
			return nil, err
		}
	}
	if err := p.skipOptions(); err != nil {
		return nil, err
	}
	if err := p.expect(token.AS); err != nil {
		return nil, err
	}
	if view.Select, err = p.parseSelectStmt(); err != nil {
		return nil, err
	}

	view.SetSpan(start, p.Position())
	return view, nil
}

func (p *Parser) parseCreateTable(start token.Position, replace, temporary bool) (core.Stmt, error) {
	ctas := &core.CreateTableAsStmt{Replace: replace, Temporary: temporary}
	var err error

	if ctas.IfNotExists, err = p.parseIfNotExists(); err != nil {
		return nil, err
	}
	if ctas.Name, err = p.parseTableName(); err != nil {
		return nil, err
	}
	if p.check(token.LPAREN) {
		if ctas.Columns, err = p.parseColumnDefs(); err != nil {
			return nil, err
		}
	}
	if err := p.skipOptions(); err != nil {
		return nil, err
	}

	// Plain DDL: CREATE TABLE t (a INT), CREATE TABLE t LIKE s, CLONE ...
	if !p.match(token.AS) {
		stmt := &core.UnknownStmt{Keyword: "CREATE", Tables: []*core.TableName{ctas.Name}}
		if err := p.parseUnknownRest(stmt); err != nil {
			return nil, err
		}
		stmt.SetSpan(start, p.Position())
		return stmt, nil
	}

	if ctas.Select, err = p.parseSelectStmt(); err != nil {
		return nil, err
	}
	// WITH [NO] DATA
	if p.check(token.WITH) && (isWord(p.peek, "DATA") || isWord(p.peek, "NO")) {
		p.nextToken()
		p.matchWord("NO")
		if err := p.expectWord("DATA"); err != nil {
			return nil, err
		}
	}

	ctas.SetSpan(start, p.Position())
	return ctas, nil
}

// constraintWords start table constraints inside a column definition list.
var constraintWords = map[string]bool{
	"CONSTRAINT": true, "PRIMARY": true, "UNIQUE": true, "FOREIGN": true,
	"CHECK": true, "INDEX": true, "KEY": true, "PERIOD": true,
}

// parseColumnDefs parses a parenthesized column list or column definition
// list and returns the column names. Types and constraints are skipped.
func (p *Parser) parseColumnDefs() ([]string, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var names []string
	for {
		isConstraint := p.token.Type == token.IDENT && !p.token.Quoted && constraintWords[strings.ToUpper(p.token.Literal)]
		if !isConstraint {
			name, err := p.ParseIdentifier()
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}

		depth := 0
		for depth > 0 || (!p.check(token.COMMA) && !p.check(token.RPAREN)) {
			switch p.token.Type {
			case token.EOF:
				return nil, p.unexpected(")")
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			}
			p.nextToken()
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return names, nil
}

// skipOptions skips storage and metadata options up to AS: COMMENT = '..',
// USING DELTA, PARTITIONED BY (...), WITH (...), TBLPROPERTIES (...).
func (p *Parser) skipOptions() error {
	for !p.check(token.AS) && !p.check(token.EOF) && !p.check(token.SEMICOLON) {
		if p.check(token.ILLEGAL) {
			return p.illegal()
		}
		if p.check(token.LPAREN) {
			if err := p.skipParens(); err != nil {
				return err
			}
			continue
		}
		p.nextToken()
	}
	return nil
}

// ---------- Unknown statements ----------

// parseUnknown consumes a statement that is recognized but not modeled,
// capturing table names best-effort.
func (p *Parser) parseUnknown() (core.Stmt, error) {
	start := p.token.Pos
	stmt := &core.UnknownStmt{Keyword: strings.ToUpper(p.token.Literal)}
	p.nextToken()
	if err := p.parseUnknownRest(stmt); err != nil {
		return nil, err
	}
	stmt.SetSpan(start, p.Position())
	return stmt, nil
}

func (p *Parser) parseUnknownRest(stmt *core.UnknownStmt) error {
	for !p.check(token.EOF) && !p.check(token.SEMICOLON) {
		switch {
		case p.check(token.ILLEGAL):
			return p.illegal()
		case p.check(token.TABLE), p.check(token.INTO), p.checkWord("VIEW"):
			p.nextToken()
			if _, err := p.parseIfExists(); err != nil {
				return err
			}
			if isIdentLike(p.token) {
				tn, err := p.parseTableName()
				if err != nil {
					return err
				}
				stmt.Tables = append(stmt.Tables, tn)
			}
		case p.check(token.FROM):
			p.nextToken()
			if isIdentLike(p.token) && !p.checkPeek(token.LPAREN) {
				tn, err := p.parseTableName()
				if err != nil {
					return err
				}
				stmt.Sources = append(stmt.Sources, tn)
			}
		default:
			p.nextToken()
		}
	}
	return nil
}

// parseIfExists consumes IF [NOT] EXISTS.
func (p *Parser) parseIfExists() (bool, error) {
	if !p.checkWord("IF") {
		return false, nil
	}
	p.nextToken()
	p.match(token.NOT)
	if err := p.expect(token.EXISTS); err != nil {
		return false, err
	}
	return true, nil
}
