package parser

import (
	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/token"
)

// parseSelect parses a SELECT statement and any trailing UNION/INTERSECT/
// EXCEPT chain, returning either a bare *ast.SelectStmt or an *ast.SetOp
// wrapping the left/right sides of the set operation.
func (p *Parser) parseSelect() ast.Statement {
	left := p.parseSelectCore()
	if left == nil {
		return nil
	}
	return p.parseSetOpTail(left)
}

// parseSetOpTail consumes zero or more UNION/INTERSECT/EXCEPT [ALL|DISTINCT]
// operators, left-associatively folding them into *ast.SetOp nodes.
func (p *Parser) parseSetOpTail(left ast.Statement) ast.Statement {
	for {
		var op ast.SetOpType
		switch p.cur.Type {
		case token.UNION:
			op = ast.Union
		case token.INTERSECT:
			op = ast.Intersect
		case token.EXCEPT:
			op = ast.Except
		default:
			return left
		}
		startPos := p.cur.Pos
		p.advance()

		all := false
		if p.curIs(token.ALL) {
			all = true
			p.advance()
		} else if p.curIs(token.DISTINCT) {
			p.advance()
		}

		var right ast.Statement
		if p.curIs(token.LPAREN) {
			p.advance()
			right = p.parseSelect()
			p.expect(token.RPAREN)
		} else {
			right = p.parseSelectCore()
		}
		if right == nil {
			return left
		}

		left = &ast.SetOp{
			StartPos: startPos,
			EndPos:   p.cur.Pos,
			Type:     op,
			All:      all,
			Left:     left,
			Right:    right,
		}
	}
}

// parseSelectCore parses a single SELECT statement body, stopping before
// any trailing set operator.
func (p *Parser) parseSelectCore() *ast.SelectStmt {
	pos := p.cur.Pos
	p.advance() // consume SELECT

	stmt := &ast.SelectStmt{StartPos: pos}

	if p.curIs(token.DISTINCT) {
		stmt.Distinct = true
		p.advance()
		if p.curIs(token.ON) && p.Dialect != nil && !p.Dialect.HasDistinctOn {
			p.errorf("DISTINCT ON is not supported by dialect %s", p.Dialect.Name)
			return stmt
		}
		if p.Dialect != nil && p.Dialect.HasDistinctOn && p.curIs(token.ON) {
			p.advance()
			p.expect(token.LPAREN)
			stmt.DistinctOn = p.parseExprList()
			p.expect(token.RPAREN)
		}
	} else if p.curIs(token.ALL) {
		p.advance()
	}

	// SQL Server TOP n
	if p.Dialect != nil && p.Dialect.HasTop && p.curIs(token.TOP) {
		p.advance()
		needParen := p.curIs(token.LPAREN)
		if needParen {
			p.advance()
		}
		stmt.Top = p.parseExpr()
		if needParen {
			p.expect(token.RPAREN)
		}
	}

	stmt.Columns = p.parseSelectExprs()

	if p.curIs(token.FROM) {
		p.advance()
		stmt.From = p.parseTableExpr()
	}

	if p.curIs(token.WHERE) {
		p.advance()
		stmt.Where = p.parseExpr()
	}

	if p.curIs(token.GROUP) {
		p.advance()
		p.expect(token.BY)
		stmt.GroupBy = p.parseExprList()
	}

	if p.curIs(token.HAVING) {
		p.advance()
		stmt.Having = p.parseExpr()
	}

	if p.curIs(token.WINDOW) {
		stmt.WindowDefs = p.parseWindowDefs()
	}

	if p.curIs(token.ORDER) {
		stmt.OrderBy = p.parseOrderBy()
	}

	if p.curIs(token.LIMIT) {
		stmt.Limit = p.parseLimit()
	} else if p.Dialect != nil && p.Dialect.HasFetchFirst && (p.curIs(token.OFFSET) || p.curIs(token.FETCH)) {
		stmt.Limit = p.parseFetchFirst()
	}

	if p.curIs(token.FOR) {
		stmt.Lock = p.parseLockClause()
	}

	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseSelectExprs() []ast.SelectExpr {
	var exprs []ast.SelectExpr
	for {
		se := p.parseSelectExpr()
		if se == nil {
			break
		}
		exprs = append(exprs, se)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return exprs
}

func (p *Parser) parseSelectExpr() ast.SelectExpr {
	startPos := p.cur.Pos

	if p.curIs(token.ASTERISK) {
		p.advance()
		return &ast.StarExpr{StartPos: startPos, EndPos: p.cur.Pos}
	}

	if p.curIsIdent() && p.peekIs(token.DOT) {
		save := p.cur
		tbl := p.cur.Value
		p.advance()
		p.advance() // consume .
		if p.curIs(token.ASTERISK) {
			p.advance()
			return &ast.StarExpr{StartPos: startPos, EndPos: p.cur.Pos, TableName: tbl, HasQualifier: true}
		}
		// not table.*, rewind by re-synthesizing an expression parse from here
		// (table.column case): fall through to expression parsing using the
		// already-consumed identifier as a qualified ColName.
		col := &ast.ColName{StartPos: startPos, EndPos: p.cur.Pos, Parts: []string{tbl}}
		expr := p.continueQualifiedExpr(col)
		_ = save
		return p.finishSelectExpr(startPos, expr)
	}

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return p.finishSelectExpr(startPos, expr)
}

func (p *Parser) finishSelectExpr(startPos token.Pos, expr ast.Expr) ast.SelectExpr {
	alias := ""
	if p.curIs(token.AS) {
		p.advance()
		if p.curIsIdent() {
			alias = p.cur.Value
			p.advance()
		}
	} else if p.curIsIdent() && !isClauseKeyword(p.cur.Type) {
		alias = p.cur.Value
		p.advance()
	}
	return &ast.AliasedExpr{StartPos: startPos, EndPos: p.cur.Pos, Expr: expr, Alias: alias}
}

// continueQualifiedExpr builds on an already-lexed qualified column name,
// extending it with further .part segments and then handing off to the
// ordinary binary-operator precedence climb.
func (p *Parser) continueQualifiedExpr(col *ast.ColName) ast.Expr {
	for p.curIs(token.DOT) {
		p.advance()
		if p.curIsIdent() {
			col.Parts = append(col.Parts, p.cur.Value)
			col.EndPos = p.cur.Pos
			p.advance()
		} else {
			break
		}
	}
	return p.parseExprContinuation(col, precLowest)
}

func (p *Parser) parseTableExpr() ast.TableExpr {
	left := p.parseTablePrimary()
	for {
		joinType, ok := p.checkJoinKeyword()
		if !ok {
			if p.curIs(token.COMMA) {
				p.advance()
				right := p.parseTablePrimary()
				left = &ast.JoinExpr{Type: ast.JoinCross, Left: left, Right: right}
				continue
			}
			break
		}
		p.consumeJoinKeywords()
		right := p.parseTablePrimary()
		join := &ast.JoinExpr{Type: joinType, Left: left, Right: right}
		if p.curIs(token.ON) {
			p.advance()
			join.On = p.parseExpr()
		} else if p.curIs(token.USING) {
			p.advance()
			p.expect(token.LPAREN)
			join.Using = p.parseColumnNameListBody()
			p.expect(token.RPAREN)
		}
		left = join
	}
	return left
}

func (p *Parser) parseColumnNameListBody() []string {
	var names []string
	for {
		if !p.curIsIdent() {
			break
		}
		names = append(names, p.cur.Value)
		p.advance()
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return names
}

func (p *Parser) checkJoinKeyword() (ast.JoinType, bool) {
	switch p.cur.Type {
	case token.JOIN:
		return ast.JoinInner, true
	case token.INNER:
		return ast.JoinInner, true
	case token.LEFT:
		return ast.JoinLeft, true
	case token.RIGHT:
		return ast.JoinRight, true
	case token.FULL:
		return ast.JoinFull, true
	case token.CROSS:
		return ast.JoinCross, true
	default:
		return ast.JoinInner, false
	}
}

func (p *Parser) consumeJoinKeywords() {
	switch p.cur.Type {
	case token.INNER:
		p.advance()
		p.expect(token.JOIN)
	case token.LEFT, token.RIGHT, token.FULL:
		p.advance()
		if p.curIs(token.OUTER) {
			p.advance()
		}
		p.expect(token.JOIN)
	case token.CROSS:
		p.advance()
		p.expect(token.JOIN)
	case token.JOIN:
		p.advance()
	}
}

func (p *Parser) parseTablePrimary() ast.TableExpr {
	startPos := p.cur.Pos

	if p.curIs(token.LPAREN) {
		p.advance()
		if p.curIs(token.SELECT) || p.curIs(token.WITH) {
			var inner ast.Statement
			if p.curIs(token.WITH) {
				inner = p.parseWith()
			} else {
				inner = p.parseSelect()
			}
			p.expect(token.RPAREN)
			sub := &ast.Subquery{StartPos: startPos, EndPos: p.cur.Pos, Select: inner}
			return p.parseTableAlias(sub)
		}
		inner := p.parseTableExpr()
		p.expect(token.RPAREN)
		return p.parseTableAlias(inner)
	}

	if p.curIs(token.VALUES) {
		p.advance()
		rows := p.parseValuesList()
		vs := &ast.ValuesStmt{StartPos: startPos, EndPos: p.cur.Pos, Rows: rows}
		return p.parseTableAlias(vs)
	}

	name := p.parseTableName()
	return p.parseTableAlias(name)
}

func (p *Parser) parseTableAlias(expr ast.TableExpr) ast.TableExpr {
	alias := ""
	if p.curIs(token.AS) {
		p.advance()
		if p.curIsIdent() {
			alias = p.cur.Value
			p.advance()
		}
	} else if p.curIsIdent() && !isClauseKeyword(p.cur.Type) {
		alias = p.cur.Value
		p.advance()
	}
	if alias == "" {
		return expr
	}
	if p.curIs(token.LPAREN) {
		// column alias list, e.g. AS t(a, b): discarded, columns are
		// re-derivable from the query and do not affect the fingerprint.
		p.parseColumnNameList()
	}
	return &ast.AliasedTableExpr{Expr: expr, Alias: alias}
}

func (p *Parser) parseOrderBy() []*ast.OrderByExpr {
	p.advance() // ORDER
	p.expect(token.BY)

	var items []*ast.OrderByExpr
	for {
		startPos := p.cur.Pos
		expr := p.parseExpr()
		if expr == nil {
			break
		}
		ob := &ast.OrderByExpr{StartPos: startPos, Expr: expr}
		if p.curIs(token.ASC) {
			p.advance()
		} else if p.curIs(token.DESC) {
			ob.Desc = true
			p.advance()
		}
		if p.curIs(token.NULLS) {
			if p.Dialect != nil && !p.Dialect.HasNullsOrdering {
				p.errorf("NULLS FIRST/LAST is not supported by dialect %s", p.Dialect.Name)
				return items
			}
			p.advance()
			if p.curIs(token.FIRST) {
				t := true
				ob.NullsFirst = &t
				p.advance()
			} else if p.curIs(token.LAST) {
				f := false
				ob.NullsFirst = &f
				p.advance()
			}
		}
		ob.EndPos = p.cur.Pos
		items = append(items, ob)

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return items
}

// parseLimit handles both "LIMIT count OFFSET n" and the MySQL
// "LIMIT offset, count" form.
func (p *Parser) parseLimit() *ast.Limit {
	startPos := p.cur.Pos
	p.advance() // LIMIT

	lim := &ast.Limit{StartPos: startPos}
	first := p.parseExpr()

	if p.curIs(token.COMMA) {
		p.advance()
		second := p.parseExpr()
		lim.Offset = first
		lim.Count = second
	} else {
		lim.Count = first
		if p.curIs(token.OFFSET) {
			p.advance()
			lim.Offset = p.parseExpr()
		}
	}

	lim.EndPos = p.cur.Pos
	return lim
}

// parseFetchFirst handles the ANSI "OFFSET n ROWS FETCH FIRST m ROWS ONLY"
// clause (parsed only for dialects with HasFetchFirst, i.e. Oracle),
// normalizing it to the same *ast.Limit shape
// produced by LIMIT/OFFSET dialects.
func (p *Parser) parseFetchFirst() *ast.Limit {
	startPos := p.cur.Pos
	lim := &ast.Limit{StartPos: startPos}

	if p.curIs(token.OFFSET) {
		p.advance()
		lim.Offset = p.parseExpr()
		if p.curIs(token.ROW) || p.curIs(token.ROWS) {
			p.advance()
		}
	}

	if p.curIs(token.FETCH) {
		p.advance()
		if p.curIs(token.FIRST) || p.curIs(token.NEXT) {
			p.advance()
		}
		lim.Count = p.parseExpr()
		if p.curIs(token.ROW) || p.curIs(token.ROWS) {
			p.advance()
		}
		if p.curIs(token.ONLY) {
			p.advance()
		}
	}

	lim.EndPos = p.cur.Pos
	return lim
}

// parseLockClause parses FOR UPDATE/FOR SHARE with optional NOWAIT or
// SKIP LOCKED modifiers. SHARE/NOWAIT/SKIP/LOCKED are not reserved
// keywords in the token set; they are recognized here by identifier
// text so ordinary identifiers elsewhere are unaffected.
func (p *Parser) parseLockClause() string {
	p.advance() // FOR

	lock := ""
	if p.curIs(token.UPDATE) {
		lock = "UPDATE"
		p.advance()
	} else if p.curIsIdent() && eqFold(p.cur.Value, "SHARE") {
		lock = "SHARE"
		p.advance()
	} else {
		return ""
	}

	if p.curIsIdent() && eqFold(p.cur.Value, "NOWAIT") {
		lock += " NOWAIT"
		p.advance()
	} else if p.curIsIdent() && eqFold(p.cur.Value, "SKIP") {
		p.advance()
		if p.curIsIdent() && eqFold(p.cur.Value, "LOCKED") {
			lock += " SKIP LOCKED"
			p.advance()
		}
	}
	return lock
}

func (p *Parser) parseWindowDefs() []*ast.WindowDef {
	p.advance() // WINDOW
	var defs []*ast.WindowDef
	for {
		if !p.curIsIdent() {
			break
		}
		name := p.cur.Value
		p.advance()
		p.expect(token.AS)
		spec := p.parseWindowSpecBody()
		defs = append(defs, &ast.WindowDef{Name: name, Spec: spec})

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return defs
}

func eqFold(s, t string) bool {
	if len(s) != len(t) {
		return false
	}
	for i := 0; i < len(s); i++ {
		a, b := s[i], t[i]
		if 'a' <= a && a <= 'z' {
			a -= 'a' - 'A'
		}
		if 'a' <= b && b <= 'z' {
			b -= 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// isClauseKeyword reports whether t is a keyword that cannot start a bare
// (AS-less) alias, used to disambiguate "expr alias" from "expr FROM ...".
func isClauseKeyword(t token.Token) bool {
	switch t {
	case token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER,
		token.LIMIT, token.OFFSET, token.FETCH, token.UNION, token.INTERSECT,
		token.EXCEPT, token.WINDOW, token.FOR, token.ON, token.USING,
		token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL,
		token.CROSS, token.RETURNING, token.SET, token.VALUES, token.DO,
		token.COMMA, token.RPAREN, token.EOF, token.SEMICOLON, token.AND, token.OR:
		return true
	default:
		return false
	}
}
