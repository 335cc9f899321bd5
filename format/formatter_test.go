package format_test

import (
	"testing"

	"github.com/mstute/sqlfp/dialect"
	"github.com/mstute/sqlfp/format"
	"github.com/mstute/sqlfp/normalize"
	"github.com/mstute/sqlfp/parser"
)

func render(t *testing.T, sql string, dialectName string) string {
	t.Helper()
	d, ok := dialect.Lookup(dialectName)
	if !ok {
		t.Fatalf("unknown dialect %q", dialectName)
	}
	stmt, err := parser.New(sql, d).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	return format.String(stmt)
}

// renderNormalized parses, runs the normalizer (which discards every
// ParenExpr), and formats — the shape the real pipeline runs in, and the
// only path under which redundant parentheses actually disappear.
func renderNormalized(t *testing.T, sql string, dialectName string) string {
	t.Helper()
	d, ok := dialect.Lookup(dialectName)
	if !ok {
		t.Fatalf("unknown dialect %q", dialectName)
	}
	stmt, err := parser.New(sql, d).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	result := normalize.Normalize(stmt, "?")
	return format.String(result.Statement)
}

func TestFormatRoundTrip(t *testing.T) {
	tests := []string{
		"SELECT * FROM users",
		"SELECT id, name FROM users WHERE status = 'active'",
		"SELECT a.id, b.name FROM a JOIN b ON a.id = b.a_id",
		"SELECT * FROM a LEFT JOIN b ON a.id = b.a_id",
		"SELECT * FROM users WHERE id IN (SELECT user_id FROM orders)",
		"INSERT INTO users (id, name) VALUES (1, 'test')",
		"UPDATE users SET name = 'new' WHERE id = 1",
		"DELETE FROM users WHERE id = 1",
		"SELECT * FROM t WHERE a = 1 UNION SELECT * FROM t2 WHERE b = 2",
	}

	d, _ := dialect.Lookup("ansi")
	for _, sql := range tests {
		t.Run(sql, func(t *testing.T) {
			stmt, err := parser.New(sql, d).Parse()
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			formatted := format.String(stmt)
			if formatted == "" {
				t.Fatal("formatted output is empty")
			}
			stmt2, err := parser.New(formatted, d).Parse()
			if err != nil {
				t.Fatalf("re-parse error: %v\nformatted: %s", err, formatted)
			}
			formatted2 := format.String(stmt2)
			if formatted != formatted2 {
				t.Errorf("round-trip mismatch:\nfirst:  %s\nsecond: %s", formatted, formatted2)
			}
		})
	}
}

func TestFormatPreservesExplicitParensWithoutNormalizing(t *testing.T) {
	got := render(t, "SELECT * FROM t WHERE (a + b) * c = 1", "ansi")
	want := "SELECT * FROM t WHERE (a + b) * c = 1"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNormalizedFormatDropsRedundantParens(t *testing.T) {
	got := renderNormalized(t, "SELECT * FROM t WHERE a + (b * c) = ?", "ansi")
	want := "SELECT * FROM t WHERE a + b * c = ?"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNormalizedFormatKeepsRequiredParens(t *testing.T) {
	got := renderNormalized(t, "SELECT * FROM t WHERE (a + b) * c = ?", "ansi")
	want := "SELECT * FROM t WHERE (a + b) * c = ?"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNormalizedFormatKeepsRightAssociativeParens(t *testing.T) {
	got := renderNormalized(t, "SELECT a - (b - c) FROM t", "ansi")
	want := "SELECT a - (b - c) FROM t"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNormalizedFormatDropsLeftAssociativeParens(t *testing.T) {
	got := renderNormalized(t, "SELECT (a - b) - c FROM t", "ansi")
	want := "SELECT a - b - c FROM t"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFormatCountStarCanonicalization(t *testing.T) {
	got := render(t, "SELECT COUNT( * ) FROM t", "ansi")
	want := "SELECT COUNT(*) FROM t"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFormatTupleExprAlwaysParenthesized(t *testing.T) {
	got := render(t, "SELECT * FROM t WHERE (a, b) IN ((1, 2), (3, 4))", "postgres")
	want := "SELECT * FROM t WHERE (a, b) IN ((1, 2), (3, 4))"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFormatNeverQuotesIdentifiers(t *testing.T) {
	got := render(t, `SELECT "name" FROM "users"`, "postgres")
	want := "SELECT name FROM users"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}

	got = render(t, "SELECT `name` FROM `users`", "mysql")
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
