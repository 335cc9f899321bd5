package parser

import (
	"testing"

	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/dialect"
)

func mustParse(t *testing.T, sql string, dialectName string) ast.Statement {
	t.Helper()
	d, ok := dialect.Lookup(dialectName)
	if !ok {
		t.Fatalf("unknown dialect %q", dialectName)
	}
	stmt, err := New(sql, d).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	return stmt
}

func TestParseSelectVariants(t *testing.T) {
	tests := []string{
		"SELECT * FROM users",
		"SELECT DISTINCT name FROM users",
		"SELECT a, b AS c FROM t",
		"SELECT * FROM a JOIN b ON a.id = b.a_id",
		"SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.a_id",
		"SELECT * FROM t WHERE id IN (1, 2, 3)",
		"SELECT * FROM t WHERE id BETWEEN 1 AND 10",
		"SELECT * FROM t ORDER BY id DESC, name",
		"SELECT * FROM t GROUP BY a HAVING COUNT(*) > 1",
		"WITH cte AS (SELECT 1) SELECT * FROM cte",
		"SELECT CASE WHEN a = 1 THEN 'x' ELSE 'y' END FROM t",
		"SELECT CAST(a AS INTEGER) FROM t",
		"SELECT * FROM t WHERE EXISTS (SELECT 1 FROM u WHERE u.t_id = t.id)",
	}
	for _, sql := range tests {
		t.Run(sql, func(t *testing.T) {
			mustParse(t, sql, "ansi")
		})
	}
}

func TestParseSetOpBuildsBothSides(t *testing.T) {
	stmt := mustParse(t, "SELECT a FROM t1 UNION SELECT a FROM t2", "ansi")
	setOp, ok := stmt.(*ast.SetOp)
	if !ok {
		t.Fatalf("expected *ast.SetOp, got %T", stmt)
	}
	if setOp.Type != ast.Union {
		t.Errorf("expected Union, got %v", setOp.Type)
	}
	if _, ok := setOp.Left.(*ast.SelectStmt); !ok {
		t.Errorf("Left = %T, want *ast.SelectStmt", setOp.Left)
	}
	if _, ok := setOp.Right.(*ast.SelectStmt); !ok {
		t.Errorf("Right = %T, want *ast.SelectStmt; the right-hand side of the set operation must not be dropped", setOp.Right)
	}
}

func TestParseSetOpChainIsLeftAssociative(t *testing.T) {
	stmt := mustParse(t, "SELECT a FROM t1 UNION SELECT a FROM t2 INTERSECT SELECT a FROM t3", "ansi")
	outer, ok := stmt.(*ast.SetOp)
	if !ok {
		t.Fatalf("expected *ast.SetOp, got %T", stmt)
	}
	if outer.Type != ast.Intersect {
		t.Errorf("outermost op = %v, want Intersect", outer.Type)
	}
	inner, ok := outer.Left.(*ast.SetOp)
	if !ok {
		t.Fatalf("expected nested *ast.SetOp on the left, got %T", outer.Left)
	}
	if inner.Type != ast.Union {
		t.Errorf("inner op = %v, want Union", inner.Type)
	}
}

func TestParseWithAttachesToSetOpLeftmostSelect(t *testing.T) {
	stmt := mustParse(t, "WITH cte AS (SELECT 1) SELECT a FROM cte UNION SELECT a FROM t2", "ansi")
	setOp, ok := stmt.(*ast.SetOp)
	if !ok {
		t.Fatalf("expected *ast.SetOp, got %T", stmt)
	}
	left, ok := setOp.Left.(*ast.SelectStmt)
	if !ok {
		t.Fatalf("expected *ast.SelectStmt on the left, got %T", setOp.Left)
	}
	if left.With == nil {
		t.Error("expected WITH clause to attach to the leftmost SELECT")
	}
}

func TestParseMySQLLimitOffsetCountForm(t *testing.T) {
	stmt := mustParse(t, "SELECT * FROM t LIMIT 5, 10", "mysql")
	sel := stmt.(*ast.SelectStmt)
	if sel.Limit == nil || sel.Limit.Offset == nil || sel.Limit.Count == nil {
		t.Fatalf("expected both offset and count populated, got %+v", sel.Limit)
	}
}

func TestParseOracleFetchFirst(t *testing.T) {
	stmt := mustParse(t, "SELECT * FROM t OFFSET 5 ROWS FETCH FIRST 10 ROWS ONLY", "oracle")
	sel := stmt.(*ast.SelectStmt)
	if sel.Limit == nil || sel.Limit.Count == nil || sel.Limit.Offset == nil {
		t.Fatalf("expected Limit folded from FETCH FIRST, got %+v", sel.Limit)
	}
}

func TestParseMSSQLTop(t *testing.T) {
	stmt := mustParse(t, "SELECT TOP 10 * FROM t", "mssql")
	sel := stmt.(*ast.SelectStmt)
	if sel.Top == nil {
		t.Fatal("expected Top to be populated")
	}
}

func TestParseRowValueIn(t *testing.T) {
	stmt := mustParse(t, "SELECT * FROM t WHERE (a, b) IN ((1, 2), (3, 4))", "postgres")
	sel := stmt.(*ast.SelectStmt)
	in, ok := sel.Where.(*ast.InExpr)
	if !ok {
		t.Fatalf("expected *ast.InExpr, got %T", sel.Where)
	}
	if _, ok := in.Expr.(*ast.TupleExpr); !ok {
		t.Errorf("expected row-value tuple on the left of IN, got %T", in.Expr)
	}
}

func TestParseLockClause(t *testing.T) {
	stmt := mustParse(t, "SELECT * FROM t WHERE id = 1 FOR UPDATE", "postgres")
	sel := stmt.(*ast.SelectStmt)
	if sel.Lock == "" {
		t.Error("expected a lock clause to be recorded")
	}

	stmt2 := mustParse(t, "SELECT * FROM t FOR SHARE SKIP LOCKED", "postgres")
	sel2 := stmt2.(*ast.SelectStmt)
	if sel2.Lock == "" {
		t.Error("expected FOR SHARE SKIP LOCKED to be recognized")
	}
}

func TestParseInsertOnConflict(t *testing.T) {
	stmt := mustParse(t, "INSERT INTO t (a) VALUES (1) ON CONFLICT (a) DO NOTHING", "postgres")
	ins, ok := stmt.(*ast.InsertStmt)
	if !ok {
		t.Fatalf("expected *ast.InsertStmt, got %T", stmt)
	}
	if ins.OnConflict == nil || !ins.OnConflict.DoNothing {
		t.Fatalf("expected OnConflict.DoNothing, got %+v", ins.OnConflict)
	}
}

func TestParseInsertOnDuplicateKeyUpdate(t *testing.T) {
	stmt := mustParse(t, "INSERT INTO t (a) VALUES (1) ON DUPLICATE KEY UPDATE a = 2", "mysql")
	ins := stmt.(*ast.InsertStmt)
	if len(ins.OnDuplicateUpdate) != 1 {
		t.Fatalf("expected one update expr, got %+v", ins.OnDuplicateUpdate)
	}
}

func TestParseReturning(t *testing.T) {
	stmt := mustParse(t, "DELETE FROM t WHERE id = 1 RETURNING id", "postgres")
	del := stmt.(*ast.DeleteStmt)
	if len(del.Returning) != 1 {
		t.Fatalf("expected one RETURNING column, got %+v", del.Returning)
	}
}

func TestParseUnexpectedTokenReturnsError(t *testing.T) {
	d, _ := dialect.Lookup("mysql")
	_, err := New("SELECT * TROM", d).Parse()
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func mustReject(t *testing.T, sql string, dialectName string) {
	t.Helper()
	d, ok := dialect.Lookup(dialectName)
	if !ok {
		t.Fatalf("unknown dialect %q", dialectName)
	}
	_, err := New(sql, d).Parse()
	if err == nil {
		t.Fatalf("expected %s to reject %q, got no error", dialectName, sql)
	}
}

// TestDialectRejectsUnsupportedConstructs walks the dialect compatibility
// matrix's negative space: each of these must fail to parse under a
// dialect that doesn't support the construct, even though the same SQL
// parses cleanly under a dialect that does.
func TestDialectRejectsUnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		dialect string
	}{
		{"fetch first under ansi", "SELECT * FROM t OFFSET 1 ROWS FETCH FIRST 2 ROWS ONLY", "ansi"},
		{"fetch first under mssql", "SELECT * FROM t OFFSET 1 ROWS FETCH FIRST 2 ROWS ONLY", "mssql"},
		{"fetch first under postgres", "SELECT * FROM t OFFSET 1 ROWS FETCH FIRST 2 ROWS ONLY", "postgres"},
		{"fetch first under mysql", "SELECT * FROM t OFFSET 1 ROWS FETCH FIRST 2 ROWS ONLY", "mysql"},
		{"fetch first under sqlite", "SELECT * FROM t OFFSET 1 ROWS FETCH FIRST 2 ROWS ONLY", "sqlite"},

		{"nulls last under mysql", "SELECT id FROM t ORDER BY id NULLS LAST", "mysql"},
		{"nulls last under sqlite", "SELECT id FROM t ORDER BY id NULLS LAST", "sqlite"},
		{"nulls last under ansi", "SELECT id FROM t ORDER BY id NULLS LAST", "ansi"},
		{"nulls last under mssql", "SELECT id FROM t ORDER BY id NULLS LAST", "mssql"},

		{"double colon cast under mysql", "SELECT a::int FROM t", "mysql"},
		{"double colon cast under sqlite", "SELECT a::int FROM t", "sqlite"},
		{"double colon cast under oracle", "SELECT a::int FROM t", "oracle"},

		{"ilike under mysql", "SELECT * FROM t WHERE a ILIKE 'x'", "mysql"},
		{"ilike under sqlite", "SELECT * FROM t WHERE a ILIKE 'x'", "sqlite"},
		{"not ilike under mysql", "SELECT * FROM t WHERE a NOT ILIKE 'x'", "mysql"},

		{"returning under mysql", "DELETE FROM t WHERE id = 1 RETURNING id", "mysql"},
		{"returning under sqlite", "DELETE FROM t WHERE id = 1 RETURNING id", "sqlite"},
		{"returning under ansi", "INSERT INTO t (a) VALUES (1) RETURNING a", "ansi"},

		{"on conflict under mysql", "INSERT INTO t (a) VALUES (1) ON CONFLICT (a) DO NOTHING", "mysql"},
		{"on conflict under oracle", "INSERT INTO t (a) VALUES (1) ON CONFLICT (a) DO NOTHING", "oracle"},

		{"on duplicate key update under postgres", "INSERT INTO t (a) VALUES (1) ON DUPLICATE KEY UPDATE a = 2", "postgres"},
		{"on duplicate key update under sqlite", "INSERT INTO t (a) VALUES (1) ON DUPLICATE KEY UPDATE a = 2", "sqlite"},

		{"insert ignore under postgres", "INSERT IGNORE INTO t (a) VALUES (1)", "postgres"},
		{"insert ignore under sqlite", "INSERT IGNORE INTO t (a) VALUES (1)", "sqlite"},
		{"replace into under postgres", "REPLACE INTO t (a) VALUES (1)", "postgres"},
		{"replace into under oracle", "REPLACE INTO t (a) VALUES (1)", "oracle"},

		{"distinct on under mysql", "SELECT DISTINCT ON (a) a, b FROM t", "mysql"},
		{"distinct on under sqlite", "SELECT DISTINCT ON (a) a, b FROM t", "sqlite"},

		{"with recursive under oracle", "WITH RECURSIVE cte AS (SELECT 1) SELECT * FROM cte", "oracle"},
		{"with recursive under ansi", "WITH RECURSIVE cte AS (SELECT 1) SELECT * FROM cte", "ansi"},
		{"with recursive under mssql", "WITH RECURSIVE cte AS (SELECT 1) SELECT * FROM cte", "mssql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustReject(t, tt.sql, tt.dialect)
		})
	}
}

// TestDialectAcceptsSupportedConstructs is the positive counterpart: each
// construct above must still parse under the dialect(s) that do support it,
// so the rejection tests aren't vacuously true from an over-broad gate.
func TestDialectAcceptsSupportedConstructs(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		dialect string
	}{
		{"fetch first under oracle", "SELECT * FROM t OFFSET 1 ROWS FETCH FIRST 2 ROWS ONLY", "oracle"},
		{"nulls last under postgres", "SELECT id FROM t ORDER BY id NULLS LAST", "postgres"},
		{"nulls last under oracle", "SELECT id FROM t ORDER BY id NULLS LAST", "oracle"},
		{"double colon cast under postgres", "SELECT a::int FROM t", "postgres"},
		{"ilike under postgres", "SELECT * FROM t WHERE a ILIKE 'x'", "postgres"},
		{"returning under postgres", "DELETE FROM t WHERE id = 1 RETURNING id", "postgres"},
		{"on conflict under postgres", "INSERT INTO t (a) VALUES (1) ON CONFLICT (a) DO NOTHING", "postgres"},
		{"on conflict under sqlite", "INSERT INTO t (a) VALUES (1) ON CONFLICT (a) DO NOTHING", "sqlite"},
		{"on duplicate key update under mysql", "INSERT INTO t (a) VALUES (1) ON DUPLICATE KEY UPDATE a = 2", "mysql"},
		{"insert ignore under mysql", "INSERT IGNORE INTO t (a) VALUES (1)", "mysql"},
		{"replace into under mysql", "REPLACE INTO t (a) VALUES (1)", "mysql"},
		{"with recursive under postgres", "WITH RECURSIVE cte AS (SELECT 1) SELECT * FROM cte", "postgres"},
		{"with recursive under mysql", "WITH RECURSIVE cte AS (SELECT 1) SELECT * FROM cte", "mysql"},
		{"with recursive under sqlite", "WITH RECURSIVE cte AS (SELECT 1) SELECT * FROM cte", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustParse(t, tt.sql, tt.dialect)
		})
	}
}
