package parser

import (
	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/token"
)

// parseInsert parses INSERT and MySQL's REPLACE INTO as a single grammar,
// since they differ only in the leading keyword and the REPLACE flag.
func (p *Parser) parseInsert() *ast.InsertStmt {
	stmt := &ast.InsertStmt{StartPos: p.cur.Pos}
	stmt.Replace = p.curIs(token.REPLACE)
	p.advance() // INSERT or REPLACE

	if stmt.Replace && (p.Dialect != nil && !p.Dialect.HasInsertModifiers) {
		p.errorf("REPLACE INTO is not supported by dialect %s", p.Dialect.Name)
		return stmt
	}

	if p.curIs(token.IGNORE) {
		if p.Dialect != nil && !p.Dialect.HasInsertModifiers {
			p.errorf("INSERT IGNORE is not supported by dialect %s", p.Dialect.Name)
			return stmt
		}
		stmt.Ignore = true
		p.advance()
	}

	if !p.expect(token.INTO) {
		return nil
	}
	stmt.Table = p.parseTableName()
	stmt.Columns = p.parseOptionalInsertColumns()
	p.parseInsertSource(stmt)
	p.parseInsertUpsertClause(stmt)
	stmt.Returning = p.parseOptionalReturning()
	stmt.EndPos = p.cur.Pos
	return stmt
}

// parseOptionalInsertColumns reads the "(col, col, ...)" column list that
// precedes VALUES/SELECT; the lookahead skips a parenthesized subquery.
func (p *Parser) parseOptionalInsertColumns() []*ast.ColName {
	if !p.curIs(token.LPAREN) || p.peekIs(token.SELECT) {
		return nil
	}
	p.advance()
	var cols []*ast.ColName
	for p.curIsIdent() {
		cols = append(cols, &ast.ColName{StartPos: p.cur.Pos, EndPos: p.cur.Pos, Parts: []string{p.cur.Value}})
		p.advance()
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	return cols
}

// parseInsertSource fills in stmt.Values for a VALUES list or stmt.Select
// for a subquery; for the bare DEFAULT VALUES form both stay empty.
func (p *Parser) parseInsertSource(stmt *ast.InsertStmt) {
	switch {
	case p.curIs(token.VALUES):
		p.advance()
		stmt.Values = p.parseValuesList()
	case p.curIs(token.SELECT), p.curIs(token.WITH):
		if p.curIs(token.WITH) {
			stmt.Select = p.parseWith()
		} else {
			stmt.Select = p.parseSelect()
		}
	case p.curIs(token.DEFAULT):
		p.advance()
		p.expect(token.VALUES)
	}
}

func (p *Parser) parseValuesList() [][]ast.Expr {
	var rows [][]ast.Expr
	for p.curIs(token.LPAREN) {
		p.advance()
		rows = append(rows, p.parseValuesRow())
		p.expect(token.RPAREN)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return rows
}

func (p *Parser) parseValuesRow() []ast.Expr {
	var row []ast.Expr
	for {
		if p.curIs(token.DEFAULT) {
			row = append(row, &ast.Literal{StartPos: p.cur.Pos, EndPos: p.cur.Pos, Type: ast.LiteralNull, Value: "DEFAULT"})
			p.advance()
		} else if expr := p.parseExpr(); expr != nil {
			row = append(row, expr)
		} else {
			break
		}
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return row
}

// parseInsertUpsertClause dispatches to whichever of MySQL's ON DUPLICATE
// KEY UPDATE or Postgres/SQLite's ON CONFLICT follows the insert source,
// rejecting either when the bound dialect doesn't support it.
func (p *Parser) parseInsertUpsertClause(stmt *ast.InsertStmt) {
	if p.curIs(token.ON) && p.peekIs(token.DUPLICATE) {
		if p.Dialect != nil && !p.Dialect.HasOnDuplicateKeyUpdate {
			p.errorf("ON DUPLICATE KEY UPDATE is not supported by dialect %s", p.Dialect.Name)
			return
		}
		p.advance() // ON
		p.advance() // DUPLICATE
		p.expect(token.KEY)
		p.expect(token.UPDATE)
		stmt.OnDuplicateUpdate = p.parseUpdateExprs()
		return
	}

	if p.curIs(token.CONFLICT) || (p.curIs(token.ON) && p.peekIs(token.CONFLICT)) {
		if p.Dialect != nil && !p.Dialect.HasOnConflict {
			p.errorf("ON CONFLICT is not supported by dialect %s", p.Dialect.Name)
			return
		}
		if p.curIs(token.ON) {
			p.advance()
		}
		stmt.OnConflict = p.parseOnConflict()
	}
}

func (p *Parser) parseOnConflict() *ast.OnConflict {
	p.advance() // CONFLICT
	conflict := &ast.OnConflict{}

	if p.curIs(token.LPAREN) {
		p.advance()
		for p.curIsIdent() {
			conflict.Columns = append(conflict.Columns, p.cur.Value)
			p.advance()
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(token.RPAREN)
	}

	if p.curIs(token.WHERE) {
		p.advance()
		conflict.Where = p.parseExpr()
	}

	p.expect(token.DO)
	switch {
	case p.curIs(token.NOTHING):
		conflict.DoNothing = true
		p.advance()
	case p.curIs(token.UPDATE):
		p.advance()
		p.expect(token.SET)
		conflict.Updates = p.parseUpdateExprs()
	}
	return conflict
}

// parseOptionalReturning reads a trailing RETURNING clause, rejecting it
// outright under dialects that don't support it.
func (p *Parser) parseOptionalReturning() []ast.SelectExpr {
	if !p.curIs(token.RETURNING) {
		return nil
	}
	if p.Dialect != nil && !p.Dialect.HasReturning {
		p.errorf("RETURNING is not supported by dialect %s", p.Dialect.Name)
		return nil
	}
	p.advance()
	return p.parseSelectExprs()
}

func (p *Parser) parseUpdate() *ast.UpdateStmt {
	stmt := &ast.UpdateStmt{StartPos: p.cur.Pos}
	p.advance() // UPDATE
	stmt.Table = p.parseTableExpr()

	if !p.expect(token.SET) {
		return nil
	}
	stmt.Set = p.parseUpdateExprs()

	if p.curIs(token.FROM) {
		p.advance()
		stmt.From = p.parseTableExpr()
	}
	stmt.Where = p.parseOptionalWhere()
	stmt.OrderBy = p.parseOptionalOrderBy()
	stmt.Limit = p.parseOptionalLimit()
	stmt.Returning = p.parseOptionalReturning()
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseUpdateExprs() []*ast.UpdateExpr {
	var exprs []*ast.UpdateExpr
	for p.curIsIdent() {
		startPos := p.cur.Pos
		parts := []string{p.cur.Value}
		p.advance()
		for p.curIs(token.DOT) {
			p.advance()
			if !p.curIsIdent() {
				break
			}
			parts = append(parts, p.cur.Value)
			p.advance()
		}

		ue := &ast.UpdateExpr{Column: &ast.ColName{StartPos: startPos, EndPos: p.cur.Pos, Parts: parts}}
		p.expect(token.EQ)
		ue.Expr = p.parseExpr()
		exprs = append(exprs, ue)

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return exprs
}

func (p *Parser) parseDelete() *ast.DeleteStmt {
	stmt := &ast.DeleteStmt{StartPos: p.cur.Pos}
	p.advance() // DELETE
	if p.curIs(token.FROM) {
		p.advance()
	}
	stmt.Table = p.parseTableExpr()

	if p.curIs(token.USING) {
		p.advance()
		stmt.Using = p.parseTableExpr()
	}
	stmt.Where = p.parseOptionalWhere()
	stmt.OrderBy = p.parseOptionalOrderBy()
	stmt.Limit = p.parseOptionalLimit()
	stmt.Returning = p.parseOptionalReturning()
	stmt.EndPos = p.cur.Pos
	return stmt
}

// parseOptionalWhere, parseOptionalOrderBy, and parseOptionalLimit are the
// WHERE/ORDER BY/LIMIT tails shared by UPDATE and DELETE.

func (p *Parser) parseOptionalWhere() ast.Expr {
	if !p.curIs(token.WHERE) {
		return nil
	}
	p.advance()
	return p.parseExpr()
}

func (p *Parser) parseOptionalOrderBy() []*ast.OrderByExpr {
	if !p.curIs(token.ORDER) {
		return nil
	}
	return p.parseOrderBy()
}

func (p *Parser) parseOptionalLimit() *ast.Limit {
	if !p.curIs(token.LIMIT) {
		return nil
	}
	return p.parseLimit()
}
