// Package normalize rewrites a parsed AST into the canonical shape the
// formatter renders, making the resulting fingerprint insensitive to
// surface-level differences that don't change a query's meaning: literal
// values, bind-parameter spelling, redundant parentheses, and equivalent
// pagination syntax.
package normalize

import (
	"strconv"
	"strings"

	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/token"
	"github.com/mstute/sqlfp/visitor"
)

// Result is the outcome of a normalization pass: the rewritten tree ready
// for formatting, plus the literal values it extracted in left-to-right
// AST order.
type Result struct {
	Statement ast.Statement
	Params    []string
}

// Normalize rewrites stmt so that every literal and bind parameter is
// replaced by a placeholder, redundant parentheses are discarded, and
// dialect-specific pagination syntax is folded to a single shape.
// placeholder is the text every extracted value collapses to. The
// returned Params slice holds the literals' normalized textual values,
// ordered by their position in the original (pre-rewrite) parse tree.
func Normalize(stmt ast.Statement, placeholder string) Result {
	if stmt == nil {
		return Result{}
	}
	params := collectLiterals(stmt)
	foldPagination(stmt)

	result := visitor.Rewrite(stmt, func(n ast.Node) ast.Node {
		switch e := n.(type) {
		case *ast.Literal:
			return &ast.Placeholder{StartPos: e.StartPos, EndPos: e.EndPos, Text: placeholder}
		case *ast.Param:
			return &ast.Placeholder{StartPos: e.StartPos, EndPos: e.EndPos, Text: placeholder}
		case *ast.ParenExpr:
			// Discard every parenthesization present in source; the
			// formatter alone decides where parens are grammatically
			// required on the way back out.
			return e.Expr
		case *ast.UnaryExpr:
			if e.Op == token.PLUS {
				// Unary plus never changes meaning.
				return e.Operand
			}
			return e
		default:
			return n
		}
	})
	if result == nil {
		return Result{Params: params}
	}
	return Result{Statement: result.(ast.Statement), Params: params}
}

// collectLiterals walks stmt pre-order, left-to-right, and records the
// normalized textual value of every Literal node. IS NULL/IS NOT NULL is
// represented by *ast.IsExpr rather than a Literal, so it never appears
// here — only literals occupying a value position are extracted.
func collectLiterals(stmt ast.Statement) []string {
	var params []string
	visitor.Inspect(stmt, func(n ast.Node) bool {
		if lit, ok := n.(*ast.Literal); ok {
			params = append(params, literalText(lit))
		}
		return true
	})
	return params
}

// literalText renders a Literal's AST value as the normalized textual
// form recorded in params: leading zeros stripped from integers, quotes
// stripped from strings, booleans lowercased.
func literalText(lit *ast.Literal) string {
	switch lit.Type {
	case ast.LiteralInt:
		trimmed := strings.TrimLeft(lit.Value, "0")
		if trimmed == "" || trimmed == "-" {
			return "0"
		}
		if _, err := strconv.Atoi(trimmed); err != nil {
			return lit.Value
		}
		return trimmed
	case ast.LiteralBool:
		return strings.ToLower(lit.Value)
	case ast.LiteralNull:
		return "null"
	default:
		return lit.Value
	}
}

// foldPagination rewrites SQL Server SELECT TOP n into the same *ast.Limit
// shape used by LIMIT/OFFSET and FETCH FIRST dialects, so that equivalent
// pagination fingerprints identically regardless of surface syntax.
func foldPagination(stmt ast.Statement) {
	visitor.Inspect(stmt, func(n ast.Node) bool {
		if s, ok := n.(*ast.SelectStmt); ok {
			if s.Top != nil && s.Limit == nil {
				s.Limit = &ast.Limit{Count: s.Top}
				s.Top = nil
			}
		}
		return true
	})
}
