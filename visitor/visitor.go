// Package visitor provides the AST traversal and rewriting utilities used
// by the normalizer.
package visitor

import "github.com/mstute/sqlfp/ast"

// Visitor is the interface for AST traversal. Visit is called once per
// node; returning nil stops descent into that node's children.
type Visitor interface {
	Visit(node ast.Node) Visitor
}

// Walk traverses an AST in depth-first, pre-order fashion. Each node type
// reports its own children via childrenOf, so Walk itself never needs to
// know the shape of any particular node.
func Walk(v Visitor, node ast.Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range childrenOf(node) {
		Walk(v, child)
	}
}

// nodes collects a variadic list of possibly-nil AST nodes into a slice,
// dropping any nils. Interface-typed fields (Expr, TableExpr, Statement)
// compare correctly against nil since they're only ever assigned a
// concrete value or left untouched, never boxed around a nil pointer.
func nodes(ns ...ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func exprNodes(exprs []ast.Expr) []ast.Node {
	out := make([]ast.Node, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, e)
	}
	return out
}

func selectExprNodes(exprs []ast.SelectExpr) []ast.Node {
	out := make([]ast.Node, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, e)
	}
	return out
}

func orderByNodes(items []*ast.OrderByExpr) []ast.Node {
	out := make([]ast.Node, 0, len(items))
	for _, ob := range items {
		out = append(out, ob.Expr)
	}
	return out
}

func ctesOf(with *ast.WithClause) []ast.Node {
	if with == nil {
		return nil
	}
	out := make([]ast.Node, 0, len(with.CTEs))
	for _, cte := range with.CTEs {
		out = append(out, cte.Query)
	}
	return out
}

func updateExprNodes(exprs []*ast.UpdateExpr) []ast.Node {
	out := make([]ast.Node, 0, len(exprs)*2)
	for _, ue := range exprs {
		out = append(out, ue.Column, ue.Expr)
	}
	return out
}

func windowSpecNodes(spec *ast.WindowSpec) []ast.Node {
	if spec == nil {
		return nil
	}
	var out []ast.Node
	out = append(out, exprNodes(spec.PartitionBy)...)
	out = append(out, orderByNodes(spec.OrderBy)...)
	if spec.Frame != nil {
		if spec.Frame.Start != nil {
			out = append(out, nodes(spec.Frame.Start.Offset)...)
		}
		if spec.Frame.End != nil {
			out = append(out, nodes(spec.Frame.End.Offset)...)
		}
	}
	return out
}

func limitNodes(lim *ast.Limit) []ast.Node {
	if lim == nil {
		return nil
	}
	return nodes(lim.Count, lim.Offset)
}

// childrenOf reports the direct AST children of node, in traversal order.
// A node type absent from the switch (leaves like *ast.ColName, literals,
// placeholders, params, *ast.TableName, *ast.StarExpr) simply has no
// children to report.
func childrenOf(node ast.Node) []ast.Node {
	switch n := node.(type) {
	case *ast.SelectStmt:
		var out []ast.Node
		out = append(out, ctesOf(n.With)...)
		out = append(out, exprNodes(n.DistinctOn)...)
		out = append(out, nodes(n.Top)...)
		out = append(out, selectExprNodes(n.Columns)...)
		out = append(out, nodes(n.From, n.Where)...)
		out = append(out, exprNodes(n.GroupBy)...)
		out = append(out, nodes(n.Having)...)
		for _, wd := range n.WindowDefs {
			out = append(out, windowSpecNodes(wd.Spec)...)
		}
		out = append(out, orderByNodes(n.OrderBy)...)
		out = append(out, limitNodes(n.Limit)...)
		return out

	case *ast.InsertStmt:
		var out []ast.Node
		out = append(out, ctesOf(n.With)...)
		out = append(out, nodes(n.Table)...)
		for _, col := range n.Columns {
			out = append(out, col)
		}
		for _, row := range n.Values {
			out = append(out, exprNodes(row)...)
		}
		out = append(out, nodes(n.Select)...)
		out = append(out, updateExprNodes(n.OnDuplicateUpdate)...)
		if n.OnConflict != nil {
			out = append(out, nodes(n.OnConflict.Where)...)
			out = append(out, updateExprNodes(n.OnConflict.Updates)...)
		}
		out = append(out, selectExprNodes(n.Returning)...)
		return out

	case *ast.UpdateStmt:
		var out []ast.Node
		out = append(out, ctesOf(n.With)...)
		out = append(out, nodes(n.Table)...)
		out = append(out, updateExprNodes(n.Set)...)
		out = append(out, nodes(n.From, n.Where)...)
		out = append(out, orderByNodes(n.OrderBy)...)
		out = append(out, selectExprNodes(n.Returning)...)
		return out

	case *ast.DeleteStmt:
		var out []ast.Node
		out = append(out, ctesOf(n.With)...)
		out = append(out, nodes(n.Table, n.Using, n.Where)...)
		out = append(out, orderByNodes(n.OrderBy)...)
		out = append(out, selectExprNodes(n.Returning)...)
		return out

	case *ast.SetOp:
		out := nodes(n.Left, n.Right)
		return append(out, orderByNodes(n.OrderBy)...)

	case *ast.ValuesStmt:
		var out []ast.Node
		for _, row := range n.Rows {
			out = append(out, exprNodes(row)...)
		}
		return out

	case *ast.BinaryExpr:
		return nodes(n.Left, n.Right)

	case *ast.UnaryExpr:
		return nodes(n.Operand)

	case *ast.ParenExpr:
		return nodes(n.Expr)

	case *ast.TupleExpr:
		return exprNodes(n.Elements)

	case *ast.FuncExpr:
		out := exprNodes(n.Args)
		out = append(out, orderByNodes(n.OrderBy)...)
		out = append(out, nodes(n.Filter)...)
		out = append(out, windowSpecNodes(n.Over)...)
		return out

	case *ast.CaseExpr:
		out := nodes(n.Operand)
		for _, w := range n.Whens {
			out = append(out, w.Cond, w.Result)
		}
		return append(out, nodes(n.Else)...)

	case *ast.InExpr:
		out := nodes(n.Expr)
		out = append(out, exprNodes(n.Values)...)
		return append(out, nodes(n.Select)...)

	case *ast.BetweenExpr:
		return nodes(n.Expr, n.Low, n.High)

	case *ast.LikeExpr:
		return nodes(n.Expr, n.Pattern, n.Escape)

	case *ast.IsExpr:
		return nodes(n.Expr)

	case *ast.CastExpr:
		out := nodes(n.Expr)
		return append(out, exprNodes(n.Type.Params)...)

	case *ast.Subquery:
		return nodes(n.Select)

	case *ast.ExistsExpr:
		return nodes(n.Subquery)

	case *ast.AliasedExpr:
		return nodes(n.Expr)

	case *ast.AliasedTableExpr:
		return nodes(n.Expr)

	case *ast.JoinExpr:
		return nodes(n.Left, n.Right, n.On)

	case *ast.IntervalExpr:
		return nodes(n.Value)

	case *ast.ArrayExpr:
		return exprNodes(n.Elements)

	default:
		// leaves: *ast.ColName, *ast.Literal, *ast.Placeholder, *ast.Param,
		// *ast.StarExpr, *ast.TableName
		return nil
	}
}

// WalkFunc calls fn for every node reachable from node, stopping descent
// into a subtree wherever fn returns false.
func WalkFunc(node ast.Node, fn func(ast.Node) bool) {
	Walk(&funcVisitor{fn: fn}, node)
}

type funcVisitor struct {
	fn func(ast.Node) bool
}

func (v *funcVisitor) Visit(node ast.Node) Visitor {
	if v.fn(node) {
		return v
	}
	return nil
}

// Inspect calls f for every node in the AST rooted at node.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	WalkFunc(node, f)
}
