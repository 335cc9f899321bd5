package format

import "github.com/mstute/sqlfp/ast"

// Precedence levels used to decide where parentheses must be reinserted.
// Mirrors the parser's climbing order; kept independent of the parser
// package so format has no dependency on it.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precComparison
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precJSON
	precAdditive
	precMultiply
	precUnary
	precPostfix
	precAtom
)

func binaryPrecedence(op interface{ String() string }) int {
	switch op.String() {
	case "OR":
		return precOr
	case "AND":
		return precAnd
	case "=", "!=", "<>", "<", ">", "<=", ">=":
		return precComparison
	case "|":
		return precBitOr
	case "^":
		return precBitXor
	case "&":
		return precBitAnd
	case "<<", ">>":
		return precShift
	case "->", "->>", "?|", "?&", "#>", "#>>":
		return precJSON
	case "+", "-", "||":
		return precAdditive
	case "*", "/", "%":
		return precMultiply
	default:
		return precAtom
	}
}

// exprPrec returns the precedence of expr's outermost operator, or -1 if
// expr is an atom that never needs parenthesizing around itself (only its
// children might).
func exprPrec(expr ast.Expr) int {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		return binaryPrecedence(e.Op)
	case *ast.UnaryExpr:
		return precUnary
	case *ast.IsExpr, *ast.InExpr, *ast.BetweenExpr, *ast.LikeExpr:
		return precComparison
	default:
		return -1
	}
}
