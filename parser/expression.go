package parser

import (
	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/token"
)

// Operator precedence, lowest to highest. IS/IN/BETWEEN/LIKE are handled
// as special cases in parseExprContinuation rather than through the
// generic binary-operator table, since they take non-expression operands
// (a subquery, a value list, a second bound) or unusual keyword shapes.
const (
	precLowest = iota
	precOr
	precAnd
	precComparison
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precJSON
	precAdditive
	precMultiply
	precUnary
	precCast
)

func precedence(t token.Token) int {
	switch t {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE:
		return precComparison
	case token.BITOR:
		return precBitOr
	case token.BITXOR:
		return precBitXor
	case token.BITAND:
		return precBitAnd
	case token.LSHIFT, token.RSHIFT:
		return precShift
	case token.ARROW, token.DARROW, token.QUESTIONOR, token.QUESTIONAND, token.HASHGT, token.HASHDGT:
		return precJSON
	case token.PLUS, token.MINUS, token.CONCAT:
		return precAdditive
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return precMultiply
	default:
		return precLowest - 1 // not a binary operator
	}
}

func isBinaryOp(t token.Token) bool {
	return precedence(t) >= precLowest
}

// parseExpr parses a full expression at the lowest precedence.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprPrec(precLowest)
}

func (p *Parser) parseExprPrec(minPrec int) ast.Expr {
	left := p.parsePrimaryExpr()
	if left == nil {
		return nil
	}
	return p.parseExprContinuation(left, minPrec)
}

// parseExprContinuation extends an already-parsed left operand with any
// trailing binary operators, IS/IN/BETWEEN/LIKE predicates, or the
// PostgreSQL "::" cast shorthand, honoring operator precedence.
func (p *Parser) parseExprContinuation(left ast.Expr, minPrec int) ast.Expr {
	for {
		// PostgreSQL :: cast shorthand binds tighter than anything else.
		if p.curIs(token.DCOLON) {
			if p.Dialect != nil && !p.Dialect.HasDoubleColonCast {
				p.errorf("the :: cast shorthand is not supported by dialect %s", p.Dialect.Name)
				return left
			}
			p.advance()
			dt := p.parseDataTypeName()
			left = &ast.CastExpr{StartPos: left.Pos(), EndPos: p.cur.Pos, Expr: left, Type: dt}
			continue
		}

		if p.curIs(token.NOT) || p.curIs(token.IN) || p.curIs(token.BETWEEN) ||
			p.curIs(token.LIKE) || p.curIs(token.ILIKE) {
			if precComparison < minPrec {
				break
			}
			negated := false
			if p.curIs(token.NOT) {
				negated = true
				p.advance()
			}
			switch {
			case p.curIs(token.IN):
				left = p.parseInExpr(left, negated)
			case p.curIs(token.BETWEEN):
				left = p.parseBetweenExpr(left, negated)
			case p.curIs(token.LIKE) || p.curIs(token.ILIKE):
				errs := len(p.errors)
				left = p.parseLikeExpr(left, negated)
				if len(p.errors) > errs {
					return left
				}
			default:
				p.errorf("expected IN, BETWEEN, or LIKE after NOT")
				return left
			}
			continue
		}

		if p.curIs(token.IS) {
			if precComparison < minPrec {
				break
			}
			left = p.parseIsExpr(left)
			continue
		}

		if !isBinaryOp(p.cur.Type) {
			break
		}
		opPrec := precedence(p.cur.Type)
		if opPrec < minPrec {
			break
		}
		op := p.cur.Type
		startPos := left.Pos()
		p.advance()
		right := p.parseExprPrec(opPrec + 1)
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{StartPos: startPos, EndPos: p.cur.Pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	startPos := p.cur.Pos

	switch p.cur.Type {
	case token.INT, token.FLOAT, token.STRING, token.NULL, token.TRUE, token.FALSE:
		return p.parseLiteral()

	case token.PARAM:
		return p.parseParam()

	case token.IDENT:
		return p.parseIdentifierOrFunc()

	case token.LPAREN:
		return p.parseParenOrSubqueryOrTuple()

	case token.NOT:
		p.advance()
		operand := p.parseExprPrec(precUnary)
		return &ast.UnaryExpr{StartPos: startPos, EndPos: p.cur.Pos, Op: token.NOT, Operand: operand}

	case token.MINUS, token.PLUS:
		op := p.cur.Type
		p.advance()
		operand := p.parseExprPrec(precUnary)
		return &ast.UnaryExpr{StartPos: startPos, EndPos: p.cur.Pos, Op: op, Operand: operand}

	case token.BITNOT:
		p.advance()
		operand := p.parseExprPrec(precUnary)
		return &ast.UnaryExpr{StartPos: startPos, EndPos: p.cur.Pos, Op: token.BITNOT, Operand: operand}

	case token.EXISTS:
		return p.parseExistsExpr()

	case token.CASE:
		return p.parseCaseExpr()

	case token.CAST:
		return p.parseCastExpr()

	case token.INTERVAL:
		return p.parseIntervalExpr()

	case token.ARRAY:
		return p.parseArrayExpr()

	case token.ASTERISK:
		p.advance()
		return &ast.StarExpr{StartPos: startPos, EndPos: p.cur.Pos}

	case token.DEFAULT:
		p.advance()
		return &ast.Literal{StartPos: startPos, EndPos: p.cur.Pos, Type: ast.LiteralNull, Value: "DEFAULT"}

	case token.ROWNUM:
		p.advance()
		return &ast.ColName{StartPos: startPos, EndPos: p.cur.Pos, Parts: []string{"ROWNUM"}}

	case token.SYSDATE, token.SYSTIMESTAMP:
		name := p.cur.Value
		p.advance()
		return &ast.FuncExpr{StartPos: startPos, EndPos: p.cur.Pos, Name: name}

	default:
		if p.cur.Type.IsKeyword() {
			// Allow non-reserved keywords to double as bare identifiers
			// (e.g. column named "key").
			return p.parseIdentifierOrFunc()
		}
		p.errorf("unexpected token %v in expression", p.cur.Type)
		p.advance()
		return nil
	}
}

func (p *Parser) parseLiteral() *ast.Literal {
	startPos := p.cur.Pos
	lit := &ast.Literal{StartPos: startPos, Value: p.cur.Value}
	switch p.cur.Type {
	case token.INT:
		lit.Type = ast.LiteralInt
	case token.FLOAT:
		lit.Type = ast.LiteralFloat
	case token.STRING:
		lit.Type = ast.LiteralString
	case token.NULL:
		lit.Type = ast.LiteralNull
	case token.TRUE, token.FALSE:
		lit.Type = ast.LiteralBool
	}
	p.advance()
	lit.EndPos = p.cur.Pos
	return lit
}

func (p *Parser) parseParam() *ast.Param {
	startPos := p.cur.Pos
	param := &ast.Param{StartPos: startPos}
	val := p.cur.Value

	switch {
	case val == "?":
		param.Type = ast.ParamQuestion
	case len(val) > 0 && val[0] == '$':
		param.Type = ast.ParamDollar
		param.Index = parseInt(val[1:])
	case len(val) > 0 && val[0] == ':':
		param.Type = ast.ParamColon
		param.Name = val[1:]
	case len(val) > 0 && val[0] == '@':
		param.Type = ast.ParamAt
		param.Name = val[1:]
	}

	p.advance()
	param.EndPos = p.cur.Pos
	return param
}

// parseIdentifierOrFunc parses a (possibly qualified) column reference,
// a "table.*" star, or a function call.
func (p *Parser) parseIdentifierOrFunc() ast.Expr {
	startPos := p.cur.Pos
	parts := []string{p.cur.Value}
	p.advance()

	for p.curIs(token.DOT) {
		p.advance()
		if p.curIs(token.ASTERISK) {
			p.advance()
			return &ast.StarExpr{StartPos: startPos, EndPos: p.cur.Pos, TableName: parts[len(parts)-1], HasQualifier: true}
		}
		if p.curIsIdent() {
			parts = append(parts, p.cur.Value)
			p.advance()
		} else {
			break
		}
	}

	if len(parts) == 1 && p.curIs(token.LPAREN) {
		return p.parseFuncCall(startPos, parts[0])
	}

	return &ast.ColName{StartPos: startPos, EndPos: p.cur.Pos, Parts: parts}
}

func (p *Parser) parseFuncCall(startPos token.Pos, name string) ast.Expr {
	p.advance() // consume (

	fn := &ast.FuncExpr{StartPos: startPos, Name: name}

	if p.curIs(token.DISTINCT) {
		fn.Distinct = true
		p.advance()
	}

	if p.curIs(token.ASTERISK) {
		astPos := p.cur.Pos
		p.advance()
		fn.Args = append(fn.Args, &ast.StarExpr{StartPos: astPos, EndPos: p.cur.Pos})
	} else if !p.curIs(token.RPAREN) {
		fn.Args = p.parseExprList()
		if p.curIs(token.ORDER) {
			fn.OrderBy = p.parseOrderBy()
		}
	}

	p.expect(token.RPAREN)

	if p.curIs(token.FILTER) {
		p.advance()
		p.expect(token.LPAREN)
		p.expect(token.WHERE)
		fn.Filter = p.parseExpr()
		p.expect(token.RPAREN)
	}

	if p.curIs(token.OVER) {
		p.advance()
		fn.Over = p.parseWindowSpec()
	}

	fn.EndPos = p.cur.Pos
	return fn
}

func (p *Parser) parseWindowSpec() *ast.WindowSpec {
	if p.curIsIdent() {
		startPos := p.cur.Pos
		name := p.cur.Value
		p.advance()
		return &ast.WindowSpec{StartPos: startPos, EndPos: p.cur.Pos, Name: name}
	}
	p.expect(token.LPAREN)
	spec := p.parseWindowSpecBody()
	p.expect(token.RPAREN)
	return spec
}

func (p *Parser) parseWindowSpecBody() *ast.WindowSpec {
	startPos := p.cur.Pos
	if !p.curIs(token.LPAREN) {
		return p.parseWindowSpec()
	}
	p.advance() // consume (

	spec := &ast.WindowSpec{StartPos: startPos}

	if p.curIs(token.PARTITION) {
		p.advance()
		p.expect(token.BY)
		spec.PartitionBy = p.parseExprList()
	}

	if p.curIs(token.ORDER) {
		spec.OrderBy = p.parseOrderBy()
	}

	if p.curIs(token.ROWS) || p.curIs(token.RANGE) {
		spec.Frame = p.parseWindowFrame()
	}

	p.expect(token.RPAREN)
	spec.EndPos = p.cur.Pos
	return spec
}

func (p *Parser) parseWindowFrame() *ast.WindowFrame {
	frame := &ast.WindowFrame{}
	if p.curIs(token.ROWS) {
		frame.Type = ast.FrameRows
	} else if p.curIs(token.RANGE) {
		frame.Type = ast.FrameRange
	}
	p.advance()

	if p.curIs(token.BETWEEN) {
		p.advance()
		frame.Start = p.parseFrameBound()
		p.expect(token.AND)
		frame.End = p.parseFrameBound()
	} else {
		frame.Start = p.parseFrameBound()
	}
	return frame
}

func (p *Parser) parseFrameBound() *ast.FrameBound {
	if p.curIsIdent() && eqFold(p.cur.Value, "UNBOUNDED") {
		p.advance()
		if p.curIs(token.PRECEDING) {
			p.advance()
			return &ast.FrameBound{Type: ast.BoundUnboundedPreceding}
		}
		if p.curIs(token.FOLLOWING) {
			p.advance()
			return &ast.FrameBound{Type: ast.BoundUnboundedFollowing}
		}
	}
	if p.curIs(token.CURRENT) {
		p.advance()
		p.expect(token.ROW)
		return &ast.FrameBound{Type: ast.BoundCurrentRow}
	}
	offset := p.parseExpr()
	if p.curIs(token.PRECEDING) {
		p.advance()
		return &ast.FrameBound{Type: ast.BoundPreceding, Offset: offset}
	}
	if p.curIs(token.FOLLOWING) {
		p.advance()
		return &ast.FrameBound{Type: ast.BoundFollowing, Offset: offset}
	}
	return &ast.FrameBound{Type: ast.BoundCurrentRow, Offset: offset}
}

// parseParenOrSubqueryOrTuple disambiguates "(" into a parenthesized
// expression, a subquery, or a row-value tuple such as (a, b).
func (p *Parser) parseParenOrSubqueryOrTuple() ast.Expr {
	startPos := p.cur.Pos
	p.advance() // consume (

	if p.curIs(token.SELECT) || p.curIs(token.WITH) {
		var inner ast.Statement
		if p.curIs(token.WITH) {
			inner = p.parseWith()
		} else {
			inner = p.parseSelect()
		}
		p.expect(token.RPAREN)
		return &ast.Subquery{StartPos: startPos, EndPos: p.cur.Pos, Select: inner}
	}

	first := p.parseExpr()
	if p.curIs(token.COMMA) {
		elems := []ast.Expr{first}
		for p.curIs(token.COMMA) {
			p.advance()
			elems = append(elems, p.parseExpr())
		}
		p.expect(token.RPAREN)
		return &ast.TupleExpr{StartPos: startPos, EndPos: p.cur.Pos, Elements: elems}
	}

	p.expect(token.RPAREN)
	return &ast.ParenExpr{StartPos: startPos, EndPos: p.cur.Pos, Expr: first}
}

func (p *Parser) parseExistsExpr() *ast.ExistsExpr {
	startPos := p.cur.Pos
	p.advance() // consume EXISTS

	p.expect(token.LPAREN)
	subStart := p.cur.Pos
	var inner ast.Statement
	if p.curIs(token.WITH) {
		inner = p.parseWith()
	} else {
		inner = p.parseSelect()
	}
	p.expect(token.RPAREN)

	return &ast.ExistsExpr{
		StartPos: startPos,
		EndPos:   p.cur.Pos,
		Subquery: &ast.Subquery{StartPos: subStart, EndPos: p.cur.Pos, Select: inner},
	}
}

func (p *Parser) parseCaseExpr() *ast.CaseExpr {
	startPos := p.cur.Pos
	p.advance() // consume CASE

	c := &ast.CaseExpr{StartPos: startPos}
	if !p.curIs(token.WHEN) {
		c.Operand = p.parseExpr()
	}

	for p.curIs(token.WHEN) {
		p.advance()
		cond := p.parseExpr()
		p.expect(token.THEN)
		result := p.parseExpr()
		c.Whens = append(c.Whens, &ast.When{Cond: cond, Result: result})
	}

	if p.curIs(token.ELSE) {
		p.advance()
		c.Else = p.parseExpr()
	}

	p.expect(token.END)
	c.EndPos = p.cur.Pos
	return c
}

func (p *Parser) parseCastExpr() *ast.CastExpr {
	startPos := p.cur.Pos
	p.advance() // consume CAST
	p.expect(token.LPAREN)
	expr := p.parseExpr()
	p.expect(token.AS)
	dt := p.parseDataTypeName()
	p.expect(token.RPAREN)
	return &ast.CastExpr{StartPos: startPos, EndPos: p.cur.Pos, Expr: expr, Type: dt}
}

// parseDataTypeName parses a type name used in CAST(... AS type) and the
// "::" shorthand, e.g. INTEGER, NUMERIC(10, 2), VARCHAR(255), TIMESTAMP
// WITH TIME ZONE.
func (p *Parser) parseDataTypeName() *ast.DataType {
	dt := &ast.DataType{}
	if p.curIsIdent() {
		dt.Name = p.cur.Value
		p.advance()
	} else {
		p.errorf("expected type name")
		return dt
	}

	for p.curIs(token.IDENT) || p.curIs(token.WITH) {
		dt.Name += " " + p.cur.Value
		p.advance()
	}

	if p.curIs(token.LPAREN) {
		p.advance()
		dt.Params = p.parseExprList()
		p.expect(token.RPAREN)
	}

	return dt
}

func (p *Parser) parseIntervalExpr() *ast.IntervalExpr {
	startPos := p.cur.Pos
	p.advance() // consume INTERVAL

	value := p.parseExpr()
	unit := ""
	if p.curIsIdent() {
		unit = p.cur.Value
		p.advance()
	}
	return &ast.IntervalExpr{StartPos: startPos, EndPos: p.cur.Pos, Value: value, Unit: unit}
}

func (p *Parser) parseArrayExpr() *ast.ArrayExpr {
	startPos := p.cur.Pos
	p.advance() // consume ARRAY
	p.expect(token.LBRACKET)

	arr := &ast.ArrayExpr{StartPos: startPos}
	if !p.curIs(token.RBRACKET) {
		arr.Elements = p.parseExprList()
	}
	p.expect(token.RBRACKET)
	arr.EndPos = p.cur.Pos
	return arr
}

func (p *Parser) parseIsExpr(expr ast.Expr) ast.Expr {
	startPos := expr.Pos()
	p.advance() // consume IS

	not := false
	if p.curIs(token.NOT) {
		not = true
		p.advance()
	}

	is := &ast.IsExpr{StartPos: startPos, Expr: expr, Not: not}
	switch p.cur.Type {
	case token.NULL:
		is.What = ast.IsNull
		p.advance()
	case token.TRUE:
		is.What = ast.IsTrue
		p.advance()
	case token.FALSE:
		is.What = ast.IsFalse
		p.advance()
	default:
		if p.curIsIdent() && eqFold(p.cur.Value, "UNKNOWN") {
			is.What = ast.IsUnknown
			p.advance()
		} else {
			p.errorf("expected NULL, TRUE, FALSE, or UNKNOWN after IS")
		}
	}
	is.EndPos = p.cur.Pos
	return is
}

func (p *Parser) parseInExpr(expr ast.Expr, not bool) ast.Expr {
	startPos := expr.Pos()
	p.advance() // consume IN
	p.expect(token.LPAREN)

	in := &ast.InExpr{StartPos: startPos, Expr: expr, Not: not}
	if p.curIs(token.SELECT) || p.curIs(token.WITH) {
		if p.curIs(token.WITH) {
			in.Select = p.parseWith()
		} else {
			in.Select = p.parseSelect()
		}
	} else {
		in.Values = p.parseExprList()
	}

	p.expect(token.RPAREN)
	in.EndPos = p.cur.Pos
	return in
}

func (p *Parser) parseBetweenExpr(expr ast.Expr, not bool) ast.Expr {
	startPos := expr.Pos()
	p.advance() // consume BETWEEN

	low := p.parseExprPrec(precComparison + 1)
	p.expect(token.AND)
	high := p.parseExprPrec(precComparison + 1)

	return &ast.BetweenExpr{StartPos: startPos, EndPos: p.cur.Pos, Expr: expr, Not: not, Low: low, High: high}
}

func (p *Parser) parseLikeExpr(expr ast.Expr, not bool) ast.Expr {
	startPos := expr.Pos()
	ilike := p.curIs(token.ILIKE)
	if ilike && p.Dialect != nil && !p.Dialect.HasILike {
		p.errorf("ILIKE is not supported by dialect %s", p.Dialect.Name)
		return expr
	}
	p.advance() // consume LIKE/ILIKE

	pattern := p.parseExprPrec(precComparison + 1)
	like := &ast.LikeExpr{StartPos: startPos, Expr: expr, Not: not, Pattern: pattern, ILike: ilike}

	if p.curIsIdent() && eqFold(p.cur.Value, "ESCAPE") {
		p.advance()
		like.Escape = p.parseExprPrec(precComparison + 1)
	}

	like.EndPos = p.cur.Pos
	return like
}

func (p *Parser) parseExprList() []ast.Expr {
	var exprs []ast.Expr
	for {
		e := p.parseExpr()
		if e == nil {
			break
		}
		exprs = append(exprs, e)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return exprs
}
