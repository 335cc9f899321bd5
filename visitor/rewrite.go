package visitor

import "github.com/mstute/sqlfp/ast"

// ApplyFunc is called once per node in post-order (children rewritten
// first, then the node itself). Returning a different node replaces it
// in the tree; returning the same node leaves it unchanged.
type ApplyFunc func(ast.Node) ast.Node

// Rewrite traverses the AST rooted at node, rewriting every child before
// applying f to node itself, and returns the (possibly replaced) node.
func Rewrite(node ast.Node, f ApplyFunc) ast.Node {
	if node == nil {
		return nil
	}
	rewriteChildren(node, f)
	return f(node)
}

func rewriteChildren(node ast.Node, f ApplyFunc) {
	switch n := node.(type) {
	case *ast.SelectStmt:
		if n.With != nil {
			for i, cte := range n.With.CTEs {
				if r := Rewrite(cte.Query, f); r != nil {
					n.With.CTEs[i].Query = r.(ast.Statement)
				}
			}
		}
		for i, e := range n.DistinctOn {
			if r := Rewrite(e, f); r != nil {
				n.DistinctOn[i] = r.(ast.Expr)
			}
		}
		for i, col := range n.Columns {
			if r := Rewrite(col, f); r != nil {
				n.Columns[i] = r.(ast.SelectExpr)
			}
		}
		if n.From != nil {
			if r := Rewrite(n.From, f); r != nil {
				n.From = r.(ast.TableExpr)
			}
		}
		if n.Where != nil {
			if r := Rewrite(n.Where, f); r != nil {
				n.Where = r.(ast.Expr)
			}
		}
		for i, e := range n.GroupBy {
			if r := Rewrite(e, f); r != nil {
				n.GroupBy[i] = r.(ast.Expr)
			}
		}
		if n.Having != nil {
			if r := Rewrite(n.Having, f); r != nil {
				n.Having = r.(ast.Expr)
			}
		}
		for i, ob := range n.OrderBy {
			if r := Rewrite(ob.Expr, f); r != nil {
				n.OrderBy[i].Expr = r.(ast.Expr)
			}
		}
		if n.Limit != nil {
			if n.Limit.Count != nil {
				if r := Rewrite(n.Limit.Count, f); r != nil {
					n.Limit.Count = r.(ast.Expr)
				}
			}
			if n.Limit.Offset != nil {
				if r := Rewrite(n.Limit.Offset, f); r != nil {
					n.Limit.Offset = r.(ast.Expr)
				}
			}
		}
		if n.Top != nil {
			if r := Rewrite(n.Top, f); r != nil {
				n.Top = r.(ast.Expr)
			}
		}

	case *ast.InsertStmt:
		if n.With != nil {
			for i, cte := range n.With.CTEs {
				if r := Rewrite(cte.Query, f); r != nil {
					n.With.CTEs[i].Query = r.(ast.Statement)
				}
			}
		}
		if r := Rewrite(n.Table, f); r != nil {
			n.Table = r.(*ast.TableName)
		}
		for i, row := range n.Values {
			for j, val := range row {
				if r := Rewrite(val, f); r != nil {
					n.Values[i][j] = r.(ast.Expr)
				}
			}
		}
		if n.Select != nil {
			if r := Rewrite(n.Select, f); r != nil {
				n.Select = r.(ast.Statement)
			}
		}
		for i, ue := range n.OnDuplicateUpdate {
			if r := Rewrite(ue.Expr, f); r != nil {
				n.OnDuplicateUpdate[i].Expr = r.(ast.Expr)
			}
		}
		if n.OnConflict != nil {
			if n.OnConflict.Where != nil {
				if r := Rewrite(n.OnConflict.Where, f); r != nil {
					n.OnConflict.Where = r.(ast.Expr)
				}
			}
			for i, ue := range n.OnConflict.Updates {
				if r := Rewrite(ue.Expr, f); r != nil {
					n.OnConflict.Updates[i].Expr = r.(ast.Expr)
				}
			}
		}
		for i, se := range n.Returning {
			if r := Rewrite(se, f); r != nil {
				n.Returning[i] = r.(ast.SelectExpr)
			}
		}

	case *ast.UpdateStmt:
		if n.With != nil {
			for i, cte := range n.With.CTEs {
				if r := Rewrite(cte.Query, f); r != nil {
					n.With.CTEs[i].Query = r.(ast.Statement)
				}
			}
		}
		if r := Rewrite(n.Table, f); r != nil {
			n.Table = r.(ast.TableExpr)
		}
		for i, ue := range n.Set {
			if r := Rewrite(ue.Expr, f); r != nil {
				n.Set[i].Expr = r.(ast.Expr)
			}
		}
		if n.From != nil {
			if r := Rewrite(n.From, f); r != nil {
				n.From = r.(ast.TableExpr)
			}
		}
		if n.Where != nil {
			if r := Rewrite(n.Where, f); r != nil {
				n.Where = r.(ast.Expr)
			}
		}
		for i, se := range n.Returning {
			if r := Rewrite(se, f); r != nil {
				n.Returning[i] = r.(ast.SelectExpr)
			}
		}

	case *ast.DeleteStmt:
		if n.With != nil {
			for i, cte := range n.With.CTEs {
				if r := Rewrite(cte.Query, f); r != nil {
					n.With.CTEs[i].Query = r.(ast.Statement)
				}
			}
		}
		if r := Rewrite(n.Table, f); r != nil {
			n.Table = r.(ast.TableExpr)
		}
		if n.Using != nil {
			if r := Rewrite(n.Using, f); r != nil {
				n.Using = r.(ast.TableExpr)
			}
		}
		if n.Where != nil {
			if r := Rewrite(n.Where, f); r != nil {
				n.Where = r.(ast.Expr)
			}
		}
		for i, se := range n.Returning {
			if r := Rewrite(se, f); r != nil {
				n.Returning[i] = r.(ast.SelectExpr)
			}
		}

	case *ast.SetOp:
		if r := Rewrite(n.Left, f); r != nil {
			n.Left = r.(ast.Statement)
		}
		if r := Rewrite(n.Right, f); r != nil {
			n.Right = r.(ast.Statement)
		}

	case *ast.ValuesStmt:
		for i, row := range n.Rows {
			for j, val := range row {
				if r := Rewrite(val, f); r != nil {
					n.Rows[i][j] = r.(ast.Expr)
				}
			}
		}

	case *ast.BinaryExpr:
		if r := Rewrite(n.Left, f); r != nil {
			n.Left = r.(ast.Expr)
		}
		if r := Rewrite(n.Right, f); r != nil {
			n.Right = r.(ast.Expr)
		}

	case *ast.UnaryExpr:
		if r := Rewrite(n.Operand, f); r != nil {
			n.Operand = r.(ast.Expr)
		}

	case *ast.ParenExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.Expr)
		}

	case *ast.TupleExpr:
		for i, e := range n.Elements {
			if r := Rewrite(e, f); r != nil {
				n.Elements[i] = r.(ast.Expr)
			}
		}

	case *ast.FuncExpr:
		for i, arg := range n.Args {
			if r := Rewrite(arg, f); r != nil {
				n.Args[i] = r.(ast.Expr)
			}
		}
		if n.Filter != nil {
			if r := Rewrite(n.Filter, f); r != nil {
				n.Filter = r.(ast.Expr)
			}
		}

	case *ast.CaseExpr:
		if n.Operand != nil {
			if r := Rewrite(n.Operand, f); r != nil {
				n.Operand = r.(ast.Expr)
			}
		}
		for i, w := range n.Whens {
			if r := Rewrite(w.Cond, f); r != nil {
				n.Whens[i].Cond = r.(ast.Expr)
			}
			if r := Rewrite(w.Result, f); r != nil {
				n.Whens[i].Result = r.(ast.Expr)
			}
		}
		if n.Else != nil {
			if r := Rewrite(n.Else, f); r != nil {
				n.Else = r.(ast.Expr)
			}
		}

	case *ast.InExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.Expr)
		}
		for i, val := range n.Values {
			if r := Rewrite(val, f); r != nil {
				n.Values[i] = r.(ast.Expr)
			}
		}
		if n.Select != nil {
			if r := Rewrite(n.Select, f); r != nil {
				n.Select = r.(ast.Statement)
			}
		}

	case *ast.BetweenExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.Expr)
		}
		if r := Rewrite(n.Low, f); r != nil {
			n.Low = r.(ast.Expr)
		}
		if r := Rewrite(n.High, f); r != nil {
			n.High = r.(ast.Expr)
		}

	case *ast.LikeExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.Expr)
		}
		if r := Rewrite(n.Pattern, f); r != nil {
			n.Pattern = r.(ast.Expr)
		}
		if n.Escape != nil {
			if r := Rewrite(n.Escape, f); r != nil {
				n.Escape = r.(ast.Expr)
			}
		}

	case *ast.IsExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.Expr)
		}

	case *ast.CastExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.Expr)
		}

	case *ast.Subquery:
		if r := Rewrite(n.Select, f); r != nil {
			n.Select = r.(ast.Statement)
		}

	case *ast.ExistsExpr:
		if r := Rewrite(n.Subquery, f); r != nil {
			n.Subquery = r.(*ast.Subquery)
		}

	case *ast.AliasedExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.Expr)
		}

	case *ast.AliasedTableExpr:
		if r := Rewrite(n.Expr, f); r != nil {
			n.Expr = r.(ast.TableExpr)
		}

	case *ast.JoinExpr:
		if r := Rewrite(n.Left, f); r != nil {
			n.Left = r.(ast.TableExpr)
		}
		if r := Rewrite(n.Right, f); r != nil {
			n.Right = r.(ast.TableExpr)
		}
		if n.On != nil {
			if r := Rewrite(n.On, f); r != nil {
				n.On = r.(ast.Expr)
			}
		}

	case *ast.IntervalExpr:
		if r := Rewrite(n.Value, f); r != nil {
			n.Value = r.(ast.Expr)
		}

	case *ast.ArrayExpr:
		for i, e := range n.Elements {
			if r := Rewrite(e, f); r != nil {
				n.Elements[i] = r.(ast.Expr)
			}
		}
	}
}

// RewriteExpr rewrites only expressions, skipping nodes f does not
// understand as an ast.Expr.
func RewriteExpr(expr ast.Expr, f func(ast.Expr) ast.Expr) ast.Expr {
	result := Rewrite(expr, func(n ast.Node) ast.Node {
		if e, ok := n.(ast.Expr); ok {
			return f(e)
		}
		return n
	})
	if result == nil {
		return nil
	}
	return result.(ast.Expr)
}
