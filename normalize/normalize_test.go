package normalize

import (
	"testing"

	"github.com/mstute/sqlfp/ast"
	"github.com/mstute/sqlfp/dialect"
	"github.com/mstute/sqlfp/format"
	"github.com/mstute/sqlfp/parser"
)

func normalizeString(t *testing.T, sql string, dialectName string, placeholder string) (string, []string) {
	t.Helper()
	d, ok := dialect.Lookup(dialectName)
	if !ok {
		t.Fatalf("unknown dialect %q", dialectName)
	}
	stmt, err := parser.New(sql, d).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	result := Normalize(stmt, placeholder)
	return format.String(result.Statement), result.Params
}

func TestNormalizeReplacesLiteralsWithPlaceholder(t *testing.T) {
	got, params := normalizeString(t, "SELECT * FROM t WHERE a = 1 AND b = 'x'", "ansi", "?")
	want := "SELECT * FROM t WHERE a = ? AND b = ?"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
	if len(params) != 2 || params[0] != "1" || params[1] != "x" {
		t.Errorf("params = %v", params)
	}
}

func TestNormalizeStripsLeadingZeros(t *testing.T) {
	_, params := normalizeString(t, "SELECT * FROM t WHERE id = 00010", "ansi", "?")
	if len(params) != 1 || params[0] != "10" {
		t.Errorf("params = %v", params)
	}
}

func TestNormalizeIsNullNotExtracted(t *testing.T) {
	got, params := normalizeString(t, "SELECT * FROM t WHERE a IS NULL", "ansi", "?")
	if len(params) != 0 {
		t.Errorf("expected no extracted params for a structural NULL, got %v", params)
	}
	if got != "SELECT * FROM t WHERE a IS NULL" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeFlattensRedundantParens(t *testing.T) {
	got, _ := normalizeString(t, "SELECT * FROM t WHERE ((a = 1))", "ansi", "?")
	want := "SELECT * FROM t WHERE a = ?"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNormalizeKeepsRequiredParens(t *testing.T) {
	got, _ := normalizeString(t, "SELECT * FROM t WHERE a = 1 AND (b = 2 OR c = 3)", "ansi", "?")
	want := "SELECT * FROM t WHERE a = ? AND (b = ? OR c = ?)"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNormalizeFoldsTopIntoLimit(t *testing.T) {
	d, _ := dialect.Lookup("mssql")
	stmt, err := parser.New("SELECT TOP 10 * FROM t", d).Parse()
	if err != nil {
		t.Fatal(err)
	}
	result := Normalize(stmt, "?")
	s, ok := result.Statement.(*ast.SelectStmt)
	if !ok {
		t.Fatalf("expected *ast.SelectStmt, got %T", result.Statement)
	}
	if s.Top != nil {
		t.Errorf("expected Top to be folded away, got %v", s.Top)
	}
	if s.Limit == nil {
		t.Fatal("expected Limit to be populated from Top")
	}
}

func TestNormalizeDropsUnaryPlus(t *testing.T) {
	got, _ := normalizeString(t, "SELECT * FROM t WHERE a = +5", "ansi", "?")
	want := "SELECT * FROM t WHERE a = ?"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
