package ast

import "github.com/mstute/sqlfp/token"

// ColName represents a column reference with optional qualifiers.
// Supports multi-level identifiers such as schema.table.column.
type ColName struct {
	StartPos token.Pos
	EndPos   token.Pos
	Parts    []string // e.g. ["table", "column"] or just ["column"]
}

func (*ColName) exprNode()        {}
func (c *ColName) Pos() token.Pos { return c.StartPos }
func (c *ColName) End() token.Pos { return c.EndPos }

// Name returns the column name (last part).
func (c *ColName) Name() string {
	if len(c.Parts) == 0 {
		return ""
	}
	return c.Parts[len(c.Parts)-1]
}

// Table returns the table qualifier (second-to-last part), or "".
func (c *ColName) Table() string {
	if len(c.Parts) < 2 {
		return ""
	}
	return c.Parts[len(c.Parts)-2]
}

// Schema returns the schema qualifier (third-to-last part), or "".
func (c *ColName) Schema() string {
	if len(c.Parts) < 3 {
		return ""
	}
	return c.Parts[len(c.Parts)-3]
}

// Literal represents a literal value as it appeared in source. The
// normalizer replaces every Literal with a Placeholder; a formatted tree
// should never contain a Literal once normalized.
type Literal struct {
	StartPos token.Pos
	EndPos   token.Pos
	Type     LiteralType
	Value    string
}

// LiteralType indicates the kind of literal.
type LiteralType int

const (
	LiteralNull LiteralType = iota
	LiteralInt
	LiteralFloat
	LiteralString
	LiteralBool
	LiteralBlob
)

func (*Literal) exprNode()        {}
func (l *Literal) Pos() token.Pos { return l.StartPos }
func (l *Literal) End() token.Pos { return l.EndPos }

// Placeholder replaces a Literal or Param node during normalization. Text
// is the caller-supplied placeholder rendering (e.g. "?").
type Placeholder struct {
	StartPos token.Pos
	EndPos   token.Pos
	Text     string
}

func (*Placeholder) exprNode()        {}
func (p *Placeholder) Pos() token.Pos { return p.StartPos }
func (p *Placeholder) End() token.Pos { return p.EndPos }

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Op       token.Token
	Left     Expr
	Right    Expr
}

func (*BinaryExpr) exprNode()        {}
func (b *BinaryExpr) Pos() token.Pos { return b.StartPos }
func (b *BinaryExpr) End() token.Pos { return b.EndPos }

// UnaryExpr represents a unary operation (NOT, -, +, ~).
type UnaryExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Op       token.Token
	Operand  Expr
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) Pos() token.Pos { return u.StartPos }
func (u *UnaryExpr) End() token.Pos { return u.EndPos }

// ParenExpr represents a parenthesized expression as it appeared in
// source. The normalizer discards every ParenExpr; the formatter alone
// decides where parentheses are grammatically required on the way back
// out, based on operator precedence.
type ParenExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
}

func (*ParenExpr) exprNode()        {}
func (p *ParenExpr) Pos() token.Pos { return p.StartPos }
func (p *ParenExpr) End() token.Pos { return p.EndPos }

// TupleExpr represents a parenthesized row value, e.g. (a, b) in
// WHERE (a, b) IN (...). Unlike ParenExpr its parentheses are part of
// the grammar, not redundant grouping, so it survives normalization and
// is always formatted with parentheses.
type TupleExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Elements []Expr
}

func (*TupleExpr) exprNode()        {}
func (t *TupleExpr) Pos() token.Pos { return t.StartPos }
func (t *TupleExpr) End() token.Pos { return t.EndPos }

// FuncExpr represents a function call.
type FuncExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Name     string
	Distinct bool // COUNT(DISTINCT ...)
	Args     []Expr
	OrderBy  []*OrderByExpr // aggregate ORDER BY
	Filter   Expr           // FILTER (WHERE ...)
	Over     *WindowSpec    // window function OVER clause
}

func (*FuncExpr) exprNode()        {}
func (f *FuncExpr) Pos() token.Pos { return f.StartPos }
func (f *FuncExpr) End() token.Pos { return f.EndPos }

// DataType represents a type name used in CAST(expr AS type) and similar
// positions.
type DataType struct {
	Name   string
	Params []Expr // e.g. NUMERIC(10, 2)
}

// CastExpr represents CAST(expr AS type) or the PostgreSQL expr::type
// shorthand; the formatter always renders the CAST(... AS ...) form.
type CastExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Type     *DataType
}

func (*CastExpr) exprNode()        {}
func (c *CastExpr) Pos() token.Pos { return c.StartPos }
func (c *CastExpr) End() token.Pos { return c.EndPos }

// CaseExpr represents a CASE expression, simple or searched.
type CaseExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Operand  Expr // simple CASE operand (optional)
	Whens    []*When
	Else     Expr // optional
}

func (*CaseExpr) exprNode()        {}
func (c *CaseExpr) Pos() token.Pos { return c.StartPos }
func (c *CaseExpr) End() token.Pos { return c.EndPos }

// When represents a single WHEN clause of a CaseExpr.
type When struct {
	Cond   Expr
	Result Expr
}

// InExpr represents [NOT] IN against a value list or a subquery.
type InExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Not      bool
	Values   []Expr    // value list (alternative to Select)
	Select   Statement // subquery, *SelectStmt or *SetOp (alternative to Values)
}

func (*InExpr) exprNode()        {}
func (i *InExpr) Pos() token.Pos { return i.StartPos }
func (i *InExpr) End() token.Pos { return i.EndPos }

// BetweenExpr represents [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Not      bool
	Low      Expr
	High     Expr
}

func (*BetweenExpr) exprNode()        {}
func (b *BetweenExpr) Pos() token.Pos { return b.StartPos }
func (b *BetweenExpr) End() token.Pos { return b.EndPos }

// LikeExpr represents [NOT] LIKE/ILIKE.
type LikeExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Pattern  Expr
	Not      bool
	Escape   Expr // ESCAPE character (optional)
	ILike    bool // case-insensitive (Postgres)
}

func (*LikeExpr) exprNode()        {}
func (l *LikeExpr) Pos() token.Pos { return l.StartPos }
func (l *LikeExpr) End() token.Pos { return l.EndPos }

// IsExpr represents IS [NOT] NULL/TRUE/FALSE/UNKNOWN.
type IsExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Not      bool
	What     IsType
}

// IsType indicates what an IsExpr tests for.
type IsType int

const (
	IsNull IsType = iota
	IsTrue
	IsFalse
	IsUnknown
)

func (*IsExpr) exprNode()        {}
func (i *IsExpr) Pos() token.Pos { return i.StartPos }
func (i *IsExpr) End() token.Pos { return i.EndPos }

// Subquery represents a parenthesized SELECT (or set operation) used as
// an expression or table expression.
type Subquery struct {
	StartPos token.Pos
	EndPos   token.Pos
	Select   Statement // *SelectStmt or *SetOp
}

func (*Subquery) exprNode()        {}
func (*Subquery) tableExprNode()   {}
func (s *Subquery) Pos() token.Pos { return s.StartPos }
func (s *Subquery) End() token.Pos { return s.EndPos }

// ExistsExpr represents [NOT] EXISTS (subquery).
type ExistsExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Not      bool
	Subquery *Subquery
}

func (*ExistsExpr) exprNode()        {}
func (e *ExistsExpr) Pos() token.Pos { return e.StartPos }
func (e *ExistsExpr) End() token.Pos { return e.EndPos }

// Param represents a bind parameter as it appeared in source (?, $1,
// :name, @name). The normalizer folds every Param into a Placeholder,
// same as it does for Literal, so a query's fingerprint does not depend
// on how its bind parameters were spelled.
type Param struct {
	StartPos token.Pos
	EndPos   token.Pos
	Type     ParamType
	Name     string // for named params
	Index    int    // for positional params
}

// ParamType indicates the bind-parameter spelling.
type ParamType int

const (
	ParamQuestion ParamType = iota // ?
	ParamDollar                    // $1, $2
	ParamColon                     // :name
	ParamAt                        // @name (MySQL user variable style)
)

func (*Param) exprNode()        {}
func (p *Param) Pos() token.Pos { return p.StartPos }
func (p *Param) End() token.Pos { return p.EndPos }

// ArrayExpr represents an ARRAY[...] constructor (Postgres).
type ArrayExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Elements []Expr
}

func (*ArrayExpr) exprNode()        {}
func (a *ArrayExpr) Pos() token.Pos { return a.StartPos }
func (a *ArrayExpr) End() token.Pos { return a.EndPos }

// IntervalExpr represents an INTERVAL literal (e.g. INTERVAL '1' DAY).
type IntervalExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Value    Expr
	Unit     string // YEAR, MONTH, DAY, etc.
}

func (*IntervalExpr) exprNode()        {}
func (i *IntervalExpr) Pos() token.Pos { return i.StartPos }
func (i *IntervalExpr) End() token.Pos { return i.EndPos }
