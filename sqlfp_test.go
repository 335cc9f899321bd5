package sqlfp

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestNormalizeBasicScenarios(t *testing.T) {
	result, err := Normalize("SELECT * FROM users WHERE id = 123", "postgres", "?")
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if result.Normalized != "SELECT * FROM users WHERE id = ?" {
		t.Errorf("normalized = %q", result.Normalized)
	}
	if len(result.Params) != 1 || result.Params[0] != "123" {
		t.Errorf("params = %v", result.Params)
	}
	sum := sha256.Sum256([]byte(result.Normalized))
	if result.Hash != hex.EncodeToString(sum[:]) {
		t.Errorf("hash does not match SHA256(normalized)")
	}
}

func TestNormalizeCustomPlaceholder(t *testing.T) {
	withQuestion, err := Normalize("SELECT * FROM users WHERE id = 123", "postgres", "?")
	if err != nil {
		t.Fatal(err)
	}
	withVal, err := Normalize("SELECT * FROM users WHERE id = 123", "postgres", "<val>")
	if err != nil {
		t.Fatal(err)
	}
	want := strings.ReplaceAll(withQuestion.Normalized, "?", "<val>")
	if withVal.Normalized != want {
		t.Errorf("placeholder substitution mismatch: got %q want %q", withVal.Normalized, want)
	}
}

func TestNormalizeParenthesesEquivalence(t *testing.T) {
	a, err := Normalize("SELECT 1;", "mysql", "?")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Normalize("SELECT (1);", "mysql", "?")
	if err != nil {
		t.Fatal(err)
	}
	if a.Normalized != b.Normalized || a.Hash != b.Hash {
		t.Errorf("expected identical fingerprints, got %q vs %q", a.Normalized, b.Normalized)
	}
}

func TestNormalizePaginationEquivalence(t *testing.T) {
	a, err := Normalize("SELECT id FROM users ORDER BY id LIMIT 00010;", "postgres", "?")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Normalize("SELECT id FROM users ORDER BY id ASC LIMIT 10", "postgres", "?")
	if err != nil {
		t.Fatal(err)
	}
	if a.Normalized != b.Normalized || a.Hash != b.Hash {
		t.Errorf("expected identical fingerprints, got %q vs %q", a.Normalized, b.Normalized)
	}
	if len(a.Params) != 1 || a.Params[0] != "10" {
		t.Errorf("params = %v", a.Params)
	}
}

func TestNormalizeCommentAndWhitespaceIrrelevance(t *testing.T) {
	a, err := Normalize("SELECT id FROM users WHERE id = 1", "ansi", "?")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Normalize("SELECT   id  /* comment */ FROM users\nWHERE /* x */ id = 1", "ansi", "?")
	if err != nil {
		t.Fatal(err)
	}
	if a.Normalized != b.Normalized {
		t.Errorf("comment/whitespace should not affect output: %q vs %q", a.Normalized, b.Normalized)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize("select id from users where id=1 order by id asc", "ansi", "?")
	if err != nil {
		t.Fatal(err)
	}
	second, err := Normalize(first.Normalized, "ansi", "?")
	if err != nil {
		t.Fatal(err)
	}
	if first.Normalized != second.Normalized {
		t.Errorf("normalization is not a fixed point: %q vs %q", first.Normalized, second.Normalized)
	}
}

func TestNormalizeUnknownDialect(t *testing.T) {
	_, err := Normalize("SELECT 1", "not_a_dialect", "?")
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*UnknownDialectError); !ok {
		t.Errorf("expected *UnknownDialectError, got %T", err)
	}
}

func TestNormalizeParseError(t *testing.T) {
	_, err := Normalize("SELECT * TROM", "mysql", "?")
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*ParseErrorKind)
	if !ok {
		t.Fatalf("expected *ParseErrorKind, got %T", err)
	}
	if !strings.HasPrefix(pe.Error(), "Parse error: ") {
		t.Errorf("message missing prefix: %q", pe.Error())
	}
}

func TestNormalizeEquivalenceClass(t *testing.T) {
	variants := []string{
		"SELECT * FROM t WHERE (a = 1 OR b = 2) AND c = 'x'",
		"select * from t where (a=1 or b=2) and c='x'",
		"SELECT * FROM t WHERE ((a = 1 OR b = 2)) AND c = 'x'",
		"SELECT *\nFROM t\nWHERE (a = 1 OR b = 2)\n  AND c = 'x'",
	}
	var first Result
	for i, v := range variants {
		r, err := Normalize(v, "postgres", "?")
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if i == 0 {
			first = r
			continue
		}
		if r.Normalized != first.Normalized || r.Hash != first.Hash {
			t.Errorf("variant %d diverged: %q vs %q", i, r.Normalized, first.Normalized)
		}
	}
}

func TestFingerprintConvenienceWrapper(t *testing.T) {
	hash, err := Fingerprint("SELECT 1", "ansi")
	if err != nil {
		t.Fatal(err)
	}
	result, err := Normalize("SELECT 1", "ansi", DefaultPlaceholder)
	if err != nil {
		t.Fatal(err)
	}
	if hash != result.Hash {
		t.Errorf("Fingerprint and Normalize disagree: %q vs %q", hash, result.Hash)
	}
}
