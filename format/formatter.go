// Package format renders a normalized AST back to deterministic, canonical
// SQL text. Every ParenExpr has already been discarded by the normalizer;
// this package alone decides where parentheses are grammatically required,
// based on operator precedence, so two equivalent inputs that differ only
// in redundant parenthesization render identically.
package format

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/token"
)

// Formatter renders AST nodes to canonical SQL text. Zero value is usable.
type Formatter struct {
	buf bytes.Buffer
}

// New creates a new Formatter.
func New() *Formatter {
	return &Formatter{}
}

// String renders node to canonical SQL.
func String(node ast.Node) string {
	var f Formatter
	f.Format(node)
	return f.buf.String()
}

func (f *Formatter) String() string { return f.buf.String() }

// --- low-level writers -----------------------------------------------

func (f *Formatter) raw(s string) { f.buf.WriteString(s) }
func (f *Formatter) sp()          { f.buf.WriteByte(' ') }

func (f *Formatter) kw(word string) { f.buf.WriteString(strings.ToUpper(word)) }

// wkw writes a space, the keyword, and a trailing space — the shape every
// "<space>KEYWORD<space> body" clause introducer in this file needs.
func (f *Formatter) wkw(word string) {
	f.sp()
	f.kw(word)
	f.sp()
}

// ident never quotes: the normalizer treats quoting style as insignificant
// to the fingerprint, so every identifier renders bare regardless of how
// (or whether) it was quoted in source.
func (f *Formatter) ident(id string) { f.buf.WriteString(id) }

// commaSep calls emit(i) for each of n elements, separating with ", ".
func (f *Formatter) commaSep(n int, emit func(i int)) {
	for i := 0; i < n; i++ {
		if i > 0 {
			f.raw(", ")
		}
		emit(i)
	}
}

func (f *Formatter) identList(names []string) {
	f.commaSep(len(names), func(i int) { f.ident(names[i]) })
}

func (f *Formatter) exprList(exprs []ast.Expr) {
	f.commaSep(len(exprs), func(i int) { f.Format(exprs[i]) })
}

// optClause renders " KEYWORD body" only when present is true.
func (f *Formatter) optClause(present bool, keyword string, body func()) {
	if !present {
		return
	}
	f.wkw(keyword)
	body()
}

// --- entry points ------------------------------------------------------

// Format renders a single node to the internal buffer.
func (f *Formatter) Format(node ast.Node) {
	f.formatPrec(node, precLowest)
}

// formatPrec renders node, parenthesizing it when its own precedence is
// lower than the minimum precedence its parent context requires.
func (f *Formatter) formatPrec(node ast.Node, minPrec int) {
	if node == nil {
		return
	}
	if e, ok := node.(ast.Expr); ok {
		if ep := exprPrec(e); ep >= 0 && ep < minPrec {
			f.raw("(")
			f.dispatch(node)
			f.raw(")")
			return
		}
	}
	f.dispatch(node)
}

func (f *Formatter) dispatch(node ast.Node) {
	switch n := node.(type) {
	case *ast.SelectStmt:
		f.writeSelect(n)
	case *ast.InsertStmt:
		f.writeInsert(n)
	case *ast.UpdateStmt:
		f.writeUpdate(n)
	case *ast.DeleteStmt:
		f.writeDelete(n)
	case *ast.SetOp:
		f.writeSetOp(n)
	case *ast.ValuesStmt:
		f.writeValuesStmt(n)
	case *ast.BinaryExpr:
		f.writeBinaryExpr(n)
	case *ast.UnaryExpr:
		f.writeUnaryExpr(n)
	case *ast.TupleExpr:
		f.writeTupleExpr(n)
	case *ast.FuncExpr:
		f.writeFuncExpr(n)
	case *ast.CaseExpr:
		f.writeCaseExpr(n)
	case *ast.CastExpr:
		f.writeCastExpr(n)
	case *ast.ColName:
		f.writeParts(n.Parts)
	case *ast.Literal:
		f.writeLiteral(n)
	case *ast.Placeholder:
		f.raw(n.Text)
	case *ast.Param:
		f.writeParam(n)
	case *ast.TableName:
		f.writeParts(n.Parts)
	case *ast.AliasedTableExpr:
		f.writeAliasedTableExpr(n)
	case *ast.JoinExpr:
		f.writeJoinExpr(n)
	case *ast.Subquery:
		f.raw("(")
		f.Format(n.Select)
		f.raw(")")
	case *ast.AliasedExpr:
		f.Format(n.Expr)
		if n.Alias != "" {
			f.wkw("AS")
			f.ident(n.Alias)
		}
	case *ast.StarExpr:
		if n.HasQualifier {
			f.ident(n.TableName)
			f.raw(".")
		}
		f.raw("*")
	case *ast.InExpr:
		f.writeInExpr(n)
	case *ast.BetweenExpr:
		f.writeBetweenExpr(n)
	case *ast.LikeExpr:
		f.writeLikeExpr(n)
	case *ast.IsExpr:
		f.writeIsExpr(n)
	case *ast.ExistsExpr:
		f.writeExistsExpr(n)
	case *ast.IntervalExpr:
		f.writeIntervalExpr(n)
	case *ast.ArrayExpr:
		f.writeArrayExpr(n)
	case *ast.ParenExpr:
		// Only reachable formatting a tree that bypassed normalize.Normalize,
		// which discards ParenExpr outright.
		f.raw("(")
		f.Format(n.Expr)
		f.raw(")")
	}
}

// --- statements ---------------------------------------------------------

func (f *Formatter) writeSelect(s *ast.SelectStmt) {
	if s.With != nil {
		f.writeWithClause(s.With)
		f.sp()
	}
	f.kw("SELECT")

	if s.Distinct {
		f.wkw("DISTINCT")
		if len(s.DistinctOn) > 0 {
			f.kw("ON")
			f.raw(" (")
			f.exprList(s.DistinctOn)
			f.raw(")")
		}
	}
	if s.Top != nil {
		f.wkw("TOP")
		f.Format(s.Top)
	}

	f.sp()
	f.commaSep(len(s.Columns), func(i int) { f.Format(s.Columns[i]) })

	f.optClause(s.From != nil, "FROM", func() { f.Format(s.From) })
	f.optClause(s.Where != nil, "WHERE", func() { f.Format(s.Where) })
	f.optClause(len(s.GroupBy) > 0, "GROUP BY", func() { f.exprList(s.GroupBy) })
	f.optClause(s.Having != nil, "HAVING", func() { f.Format(s.Having) })

	for _, wd := range s.WindowDefs {
		f.wkw("WINDOW")
		f.ident(wd.Name)
		f.wkw("AS")
		f.writeWindowSpec(wd.Spec)
	}

	f.writeOrderBy(s.OrderBy)
	f.writeLimit(s.Limit)

	f.optClause(s.Lock != "", "FOR", func() { f.kw(s.Lock) })
}

func (f *Formatter) writeOrderBy(items []*ast.OrderByExpr) {
	if len(items) == 0 {
		return
	}
	f.wkw("ORDER BY")
	f.commaSep(len(items), func(i int) {
		ob := items[i]
		f.Format(ob.Expr)
		if ob.Desc {
			f.sp()
			f.kw("DESC")
		}
		if ob.NullsFirst != nil {
			f.sp()
			f.kw("NULLS")
			f.sp()
			if *ob.NullsFirst {
				f.kw("FIRST")
			} else {
				f.kw("LAST")
			}
		}
	})
}

func (f *Formatter) writeLimit(lim *ast.Limit) {
	if lim == nil {
		return
	}
	f.optClause(lim.Count != nil, "LIMIT", func() { f.Format(lim.Count) })
	f.optClause(lim.Offset != nil, "OFFSET", func() { f.Format(lim.Offset) })
}

func (f *Formatter) writeWithClause(w *ast.WithClause) {
	f.kw("WITH")
	if w.Recursive {
		f.wkw("RECURSIVE")
	} else {
		f.sp()
	}
	f.commaSep(len(w.CTEs), func(i int) {
		cte := w.CTEs[i]
		f.ident(cte.Name)
		if len(cte.Columns) > 0 {
			f.raw(" (")
			f.identList(cte.Columns)
			f.raw(")")
		}
		f.wkw("AS")
		f.raw("(")
		f.Format(cte.Query)
		f.raw(")")
	})
}

func (f *Formatter) writeInsert(s *ast.InsertStmt) {
	if s.With != nil {
		f.writeWithClause(s.With)
		f.sp()
	}
	if s.Replace {
		f.kw("REPLACE")
	} else {
		f.kw("INSERT")
	}
	f.sp()
	if s.Ignore {
		f.kw("IGNORE")
		f.sp()
	}
	f.kw("INTO")
	f.sp()
	f.Format(s.Table)

	if len(s.Columns) > 0 {
		f.raw(" (")
		f.commaSep(len(s.Columns), func(i int) { f.Format(s.Columns[i]) })
		f.raw(")")
	}

	switch {
	case s.Select != nil:
		f.sp()
		f.Format(s.Select)
	case len(s.Values) > 0:
		f.wkw("VALUES")
		f.writeRows(s.Values)
	default:
		f.wkw("DEFAULT VALUES")
	}

	if len(s.OnDuplicateUpdate) > 0 {
		f.wkw("ON DUPLICATE KEY UPDATE")
		f.writeAssignments(s.OnDuplicateUpdate)
	}

	if s.OnConflict != nil {
		f.writeOnConflict(s.OnConflict)
	}

	f.writeReturning(s.Returning)
}

func (f *Formatter) writeOnConflict(oc *ast.OnConflict) {
	f.sp()
	f.kw("ON CONFLICT")
	if len(oc.Columns) > 0 {
		f.raw(" (")
		f.identList(oc.Columns)
		f.raw(")")
	}
	f.optClause(oc.Where != nil, "WHERE", func() { f.Format(oc.Where) })
	f.wkw("DO")
	if oc.DoNothing {
		f.kw("NOTHING")
	} else {
		f.kw("UPDATE SET")
		f.sp()
		f.writeAssignments(oc.Updates)
	}
}

func (f *Formatter) writeRows(rows [][]ast.Expr) {
	f.commaSep(len(rows), func(i int) {
		f.raw("(")
		f.exprList(rows[i])
		f.raw(")")
	})
}

func (f *Formatter) writeValuesStmt(s *ast.ValuesStmt) {
	f.kw("VALUES")
	f.sp()
	f.writeRows(s.Rows)
}

func (f *Formatter) writeAssignments(exprs []*ast.UpdateExpr) {
	f.commaSep(len(exprs), func(i int) {
		f.Format(exprs[i].Column)
		f.raw(" = ")
		f.Format(exprs[i].Expr)
	})
}

func (f *Formatter) writeReturning(exprs []ast.SelectExpr) {
	if len(exprs) == 0 {
		return
	}
	f.wkw("RETURNING")
	f.commaSep(len(exprs), func(i int) { f.Format(exprs[i]) })
}

func (f *Formatter) writeUpdate(s *ast.UpdateStmt) {
	if s.With != nil {
		f.writeWithClause(s.With)
		f.sp()
	}
	f.kw("UPDATE")
	f.sp()
	f.Format(s.Table)
	f.wkw("SET")
	f.writeAssignments(s.Set)

	f.optClause(s.From != nil, "FROM", func() { f.Format(s.From) })
	f.optClause(s.Where != nil, "WHERE", func() { f.Format(s.Where) })
	f.writeOrderBy(s.OrderBy)
	f.writeLimit(s.Limit)
	f.writeReturning(s.Returning)
}

func (f *Formatter) writeDelete(s *ast.DeleteStmt) {
	if s.With != nil {
		f.writeWithClause(s.With)
		f.sp()
	}
	f.kw("DELETE FROM")
	f.sp()
	f.Format(s.Table)

	f.optClause(s.Using != nil, "USING", func() { f.Format(s.Using) })
	f.optClause(s.Where != nil, "WHERE", func() { f.Format(s.Where) })
	f.writeOrderBy(s.OrderBy)
	f.writeLimit(s.Limit)
	f.writeReturning(s.Returning)
}

func (f *Formatter) writeSetOp(s *ast.SetOp) {
	f.formatPrec(s.Left, precLowest)
	f.sp()
	switch s.Type {
	case ast.Union:
		f.kw("UNION")
	case ast.Intersect:
		f.kw("INTERSECT")
	case ast.Except:
		f.kw("EXCEPT")
	}
	if s.All {
		f.wkw("ALL")
	} else {
		f.sp()
	}
	f.formatPrec(s.Right, precLowest)
	f.writeOrderBy(s.OrderBy)
	f.writeLimit(s.Limit)
}

// --- expressions ---------------------------------------------------------

func (f *Formatter) writeBinaryExpr(e *ast.BinaryExpr) {
	p := binaryPrecedence(e.Op)
	f.formatPrec(e.Left, p)
	f.wkw(e.Op.String())
	// The right operand of a left-associative operator at the same
	// precedence needs parens to preserve grouping (a - (b - c)).
	f.formatPrec(e.Right, p+1)
}

func (f *Formatter) writeUnaryExpr(e *ast.UnaryExpr) {
	switch e.Op {
	case token.NOT:
		f.kw("NOT")
		f.sp()
	case token.MINUS:
		f.raw("-")
	case token.PLUS:
		f.raw("+")
	case token.BITNOT:
		f.raw("~")
	}
	f.formatPrec(e.Operand, precUnary)
}

func (f *Formatter) writeTupleExpr(e *ast.TupleExpr) {
	f.raw("(")
	f.exprList(e.Elements)
	f.raw(")")
}

func (f *Formatter) writeFuncExpr(e *ast.FuncExpr) {
	f.ident(e.Name)
	f.raw("(")
	if e.Distinct {
		f.kw("DISTINCT")
		f.sp()
	}
	f.exprList(e.Args)
	f.raw(")")
	if len(e.OrderBy) > 0 {
		f.writeOrderBy(e.OrderBy)
	}
	if e.Filter != nil {
		f.sp()
		f.kw("FILTER")
		f.raw(" (")
		f.kw("WHERE")
		f.sp()
		f.Format(e.Filter)
		f.raw(")")
	}
	if e.Over != nil {
		f.wkw("OVER")
		f.writeWindowSpec(e.Over)
	}
}

func (f *Formatter) writeWindowSpec(spec *ast.WindowSpec) {
	if spec.Name != "" && len(spec.PartitionBy) == 0 && len(spec.OrderBy) == 0 && spec.Frame == nil {
		f.ident(spec.Name)
		return
	}
	f.raw("(")
	if spec.Name != "" {
		f.ident(spec.Name)
		f.sp()
	}
	if len(spec.PartitionBy) > 0 {
		f.kw("PARTITION BY")
		f.sp()
		f.exprList(spec.PartitionBy)
		if len(spec.OrderBy) > 0 || spec.Frame != nil {
			f.sp()
		}
	}
	if len(spec.OrderBy) > 0 {
		f.kw("ORDER BY")
		f.sp()
		f.commaSep(len(spec.OrderBy), func(i int) {
			ob := spec.OrderBy[i]
			f.Format(ob.Expr)
			if ob.Desc {
				f.sp()
				f.kw("DESC")
			}
		})
		if spec.Frame != nil {
			f.sp()
		}
	}
	if spec.Frame != nil {
		f.writeWindowFrame(spec.Frame)
	}
	f.raw(")")
}

func (f *Formatter) writeWindowFrame(frame *ast.WindowFrame) {
	switch frame.Type {
	case ast.FrameRows:
		f.kw("ROWS")
	case ast.FrameRange:
		f.kw("RANGE")
	case ast.FrameGroups:
		f.kw("GROUPS")
	}
	f.sp()
	if frame.End != nil {
		f.kw("BETWEEN")
		f.sp()
		f.writeFrameBound(frame.Start)
		f.wkw("AND")
		f.writeFrameBound(frame.End)
	} else {
		f.writeFrameBound(frame.Start)
	}
}

func (f *Formatter) writeFrameBound(b *ast.FrameBound) {
	switch b.Type {
	case ast.BoundCurrentRow:
		f.kw("CURRENT ROW")
	case ast.BoundUnboundedPreceding:
		f.kw("UNBOUNDED PRECEDING")
	case ast.BoundUnboundedFollowing:
		f.kw("UNBOUNDED FOLLOWING")
	case ast.BoundPreceding:
		f.Format(b.Offset)
		f.sp()
		f.kw("PRECEDING")
	case ast.BoundFollowing:
		f.Format(b.Offset)
		f.sp()
		f.kw("FOLLOWING")
	}
}

func (f *Formatter) writeCaseExpr(e *ast.CaseExpr) {
	f.kw("CASE")
	if e.Operand != nil {
		f.sp()
		f.Format(e.Operand)
	}
	for _, w := range e.Whens {
		f.wkw("WHEN")
		f.Format(w.Cond)
		f.wkw("THEN")
		f.Format(w.Result)
	}
	f.optClause(e.Else != nil, "ELSE", func() { f.Format(e.Else) })
	f.sp()
	f.kw("END")
}

func (f *Formatter) writeCastExpr(e *ast.CastExpr) {
	f.kw("CAST")
	f.raw("(")
	f.Format(e.Expr)
	f.wkw("AS")
	f.writeDataType(e.Type)
	f.raw(")")
}

func (f *Formatter) writeDataType(dt *ast.DataType) {
	f.raw(strings.ToUpper(dt.Name))
	if len(dt.Params) > 0 {
		f.raw("(")
		f.commaSep(len(dt.Params), func(i int) { f.Format(dt.Params[i]) })
		f.raw(")")
	}
}

func (f *Formatter) writeParts(parts []string) {
	for i, part := range parts {
		if i > 0 {
			f.raw(".")
		}
		f.ident(part)
	}
}

func (f *Formatter) writeLiteral(l *ast.Literal) {
	switch l.Type {
	case ast.LiteralNull:
		f.kw("NULL")
	case ast.LiteralString:
		f.writeStringLiteral(l.Value)
	case ast.LiteralBool:
		f.kw(l.Value)
	default:
		f.raw(l.Value)
	}
}

func (f *Formatter) writeStringLiteral(s string) {
	f.raw("'")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "''")
	f.raw(s)
	f.raw("'")
}

func (f *Formatter) writeParam(p *ast.Param) {
	switch p.Type {
	case ast.ParamQuestion:
		f.raw("?")
	case ast.ParamDollar:
		f.raw("$" + strconv.Itoa(p.Index))
	case ast.ParamColon:
		f.raw(":" + p.Name)
	case ast.ParamAt:
		f.raw("@" + p.Name)
	}
}

func (f *Formatter) writeAliasedTableExpr(a *ast.AliasedTableExpr) {
	f.Format(a.Expr)
	if a.Alias != "" {
		f.sp()
		f.ident(a.Alias)
	}
}

var joinKeywords = map[ast.JoinType]string{
	ast.JoinInner: "JOIN",
	ast.JoinLeft:  "LEFT JOIN",
	ast.JoinRight: "RIGHT JOIN",
	ast.JoinFull:  "FULL JOIN",
	ast.JoinCross: "CROSS JOIN",
}

func (f *Formatter) writeJoinExpr(j *ast.JoinExpr) {
	f.Format(j.Left)
	f.sp()
	if j.Natural {
		f.kw("NATURAL")
		f.sp()
	}
	f.kw(joinKeywords[j.Type])
	f.sp()
	f.Format(j.Right)
	f.optClause(j.On != nil, "ON", func() { f.Format(j.On) })
	if len(j.Using) > 0 {
		f.sp()
		f.kw("USING")
		f.raw(" (")
		f.identList(j.Using)
		f.raw(")")
	}
}

func (f *Formatter) writeInExpr(e *ast.InExpr) {
	f.formatPrec(e.Expr, precComparison+1)
	if e.Not {
		f.sp()
		f.kw("NOT")
	}
	f.sp()
	f.kw("IN")
	f.raw(" (")
	if e.Select != nil {
		f.Format(e.Select)
	} else {
		f.exprList(e.Values)
	}
	f.raw(")")
}

func (f *Formatter) writeBetweenExpr(e *ast.BetweenExpr) {
	f.formatPrec(e.Expr, precComparison+1)
	if e.Not {
		f.sp()
		f.kw("NOT")
	}
	f.wkw("BETWEEN")
	f.formatPrec(e.Low, precComparison+1)
	f.wkw("AND")
	f.formatPrec(e.High, precComparison+1)
}

func (f *Formatter) writeLikeExpr(e *ast.LikeExpr) {
	f.formatPrec(e.Expr, precComparison+1)
	if e.Not {
		f.sp()
		f.kw("NOT")
	}
	f.sp()
	if e.ILike {
		f.kw("ILIKE")
	} else {
		f.kw("LIKE")
	}
	f.sp()
	f.formatPrec(e.Pattern, precComparison+1)
	f.optClause(e.Escape != nil, "ESCAPE", func() { f.Format(e.Escape) })
}

func (f *Formatter) writeIsExpr(e *ast.IsExpr) {
	f.formatPrec(e.Expr, precComparison+1)
	f.wkw("IS")
	if e.Not {
		f.kw("NOT")
		f.sp()
	}
	switch e.What {
	case ast.IsNull:
		f.kw("NULL")
	case ast.IsTrue:
		f.kw("TRUE")
	case ast.IsFalse:
		f.kw("FALSE")
	case ast.IsUnknown:
		f.kw("UNKNOWN")
	}
}

func (f *Formatter) writeExistsExpr(e *ast.ExistsExpr) {
	if e.Not {
		f.kw("NOT")
		f.sp()
	}
	f.kw("EXISTS")
	f.raw(" (")
	f.Format(e.Subquery.Select)
	f.raw(")")
}

func (f *Formatter) writeIntervalExpr(e *ast.IntervalExpr) {
	f.kw("INTERVAL")
	f.sp()
	f.Format(e.Value)
	if e.Unit != "" {
		f.sp()
		f.kw(e.Unit)
	}
}

func (f *Formatter) writeArrayExpr(e *ast.ArrayExpr) {
	f.kw("ARRAY")
	f.raw("[")
	f.exprList(e.Elements)
	f.raw("]")
}
