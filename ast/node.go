// Package ast defines the abstract syntax tree produced by the parser and
// consumed by the normalizer and formatter.
package ast

import "github.com/mstute/sqlfp/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Statement represents a top-level SQL statement.
type Statement interface {
	Node
	statementNode()
}

// Expr represents a value expression.
type Expr interface {
	Node
	exprNode()
}

// TableExpr represents a table expression appearing in a FROM clause.
type TableExpr interface {
	Node
	tableExprNode()
}

// SelectExpr represents one item of a SELECT column list.
type SelectExpr interface {
	Node
	selectExprNode()
}
