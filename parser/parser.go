// Package parser provides a dialect-aware recursive descent SQL parser
// that produces a normalized-friendly AST (see package ast).
package parser

import (
	"fmt"
	"sync"

	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/dialect"
	"github.com/mstute/sqlfp/lexer"
	"github.com/mstute/sqlfp/token"
)

// Parser is a recursive descent SQL parser. Both the lexer (quoting style)
// and the parser itself (grammar: TOP, RETURNING, ON CONFLICT, DISTINCT ON,
// ...) consult Dialect to decide what the bound dialect accepts.
type Parser struct {
	lexer   *lexer.Lexer
	Dialect *dialect.Descriptor
	errors  []ParseError
	cur     token.Item
}

// ParseError represents a parse error with position.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// New creates a new parser for the given input and dialect.
func New(input string, d *dialect.Descriptor) *Parser {
	p := &Parser{
		lexer:   lexer.New(input, d),
		Dialect: d,
	}
	p.advance()
	return p
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// Get returns a parser from the pool for the given input and dialect.
// Call Put(p) when done to return it to the pool.
func Get(input string, d *dialect.Descriptor) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input, d)
	p.Dialect = d
	p.errors = p.errors[:0]
	p.cur = token.Item{}
	p.advance()
	return p
}

// Put returns the parser and its lexer to the pool.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	p.Dialect = nil
	parserPool.Put(p)
}

// Parse parses a single statement.
func (p *Parser) Parse() (ast.Statement, error) {
	p.skipComments()
	if p.curIs(token.EOF) {
		return nil, nil
	}
	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	p.skipComments()
	for p.curIs(token.SEMICOLON) {
		p.advance()
		p.skipComments()
	}
	if !p.curIs(token.EOF) {
		p.errorf("unexpected token %v after statement", p.cur.Type)
		return nil, p.errors[0]
	}
	return stmt, nil
}

// Token navigation methods

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
	for p.cur.Type == token.COMMENT {
		p.cur = p.lexer.Next()
	}
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur.Type == t
}

func (p *Parser) curIsIdent() bool {
	return p.cur.Type == token.IDENT || p.cur.Type.IsKeyword()
}

func (p *Parser) curIdentValue() string {
	return p.cur.Value
}

func (p *Parser) peek() token.Item {
	for p.lexer.Peek().Type == token.COMMENT {
		p.lexer.Next()
	}
	return p.lexer.Peek()
}

func (p *Parser) peekIs(t token.Token) bool {
	return p.peek().Type == t
}

func (p *Parser) expect(t token.Token) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.errorf("expected %v, got %v", t, p.cur.Type)
	return false
}

func (p *Parser) skipComments() {
	for p.curIs(token.COMMENT) {
		p.advance()
	}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{
		Pos:     p.cur.Pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// parseStatement dispatches to the appropriate statement parser. DDL is
// out of scope: only SELECT/INSERT/UPDATE/DELETE and WITH-prefixed forms
// of those are recognized.
func (p *Parser) parseStatement() ast.Statement {
	p.skipComments()
	switch p.cur.Type {
	case token.SELECT:
		return p.parseSelect()
	case token.INSERT, token.REPLACE:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.WITH:
		return p.parseWith()
	case token.LPAREN:
		return p.parseParenthesizedStatement()
	default:
		p.errorf("unexpected token %v at start of statement", p.cur.Type)
		p.advance()
		return nil
	}
}

func (p *Parser) parseParenthesizedStatement() ast.Statement {
	p.advance() // consume (
	stmt := p.parseStatement()
	p.expect(token.RPAREN)
	return stmt
}

func isWithBodyStart(t token.Token) bool {
	switch t {
	case token.SELECT, token.INSERT, token.REPLACE, token.UPDATE, token.DELETE:
		return true
	default:
		return false
	}
}

// parseWith handles a WITH clause (CTEs) prefixing a SELECT, INSERT,
// UPDATE, or DELETE.
func (p *Parser) parseWith() ast.Statement {
	withClause := p.parseWithClause()

	p.skipComments()
	if !isWithBodyStart(p.cur.Type) {
		p.errorf("expected SELECT, INSERT, UPDATE, or DELETE after WITH")
		return nil
	}
	stmt := p.parseStatement()
	attachWith(stmt, withClause)
	return stmt
}

// attachWith attaches a WITH clause to whichever concrete statement type
// stmt holds, descending through a SetOp to its left-most SelectStmt.
func attachWith(stmt ast.Statement, with *ast.WithClause) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		s.With = with
	case *ast.SetOp:
		attachWith(s.Left, with)
	case *ast.InsertStmt:
		if s != nil {
			s.With = with
		}
	case *ast.UpdateStmt:
		if s != nil {
			s.With = with
		}
	case *ast.DeleteStmt:
		if s != nil {
			s.With = with
		}
	}
}

func (p *Parser) parseWithClause() *ast.WithClause {
	p.advance() // consume WITH

	with := &ast.WithClause{}

	if p.curIs(token.RECURSIVE) {
		if p.Dialect != nil && !p.Dialect.HasRecursiveCTE {
			p.errorf("WITH RECURSIVE is not supported by dialect %s", p.Dialect.Name)
			return with
		}
		with.Recursive = true
		p.advance()
	}

	for {
		cte := p.parseCTE()
		if cte != nil {
			with.CTEs = append(with.CTEs, cte)
		}
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}

	return with
}

func (p *Parser) parseCTE() *ast.CTE {
	if !p.curIs(token.IDENT) {
		p.errorf("expected CTE name")
		return nil
	}

	cte := &ast.CTE{Name: p.cur.Value}
	p.advance()

	if p.curIs(token.LPAREN) {
		cte.Columns = p.parseColumnNameList()
	}

	if !p.expect(token.AS) {
		return nil
	}
	if !p.expect(token.LPAREN) {
		return nil
	}
	cte.Query = p.parseStatement()
	if !p.expect(token.RPAREN) {
		return nil
	}

	return cte
}

func (p *Parser) parseColumnNameList() []string {
	p.advance() // consume (

	var names []string
	for {
		if !p.curIs(token.IDENT) {
			break
		}
		names = append(names, p.cur.Value)
		p.advance()

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}

	p.expect(token.RPAREN)
	return names
}

func (p *Parser) parseTableName() *ast.TableName {
	startPos := p.cur.Pos
	if !p.curIsIdent() {
		p.errorf("expected table name")
		return nil
	}
	parts := []string{p.cur.Value}
	p.advance()

	for p.curIs(token.DOT) {
		p.advance()
		if p.curIsIdent() {
			parts = append(parts, p.cur.Value)
			p.advance()
		} else {
			break
		}
	}

	return &ast.TableName{StartPos: startPos, EndPos: p.cur.Pos, Parts: parts}
}

func parseInt(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
