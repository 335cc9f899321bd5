package sqlfp

import "testing"

// fixtures pairs case names with the expected hash and normalized form for
// the first variant of each equivalence class, plus every other variant
// expected to collapse to the same fingerprint. A change here is a
// regression unless the normalization rules themselves changed.
var fixtures = []struct {
	name     string
	dialect  string
	variants []string
	wantNorm string
	wantHash string
}{
	{
		name:     "literal_comparison",
		dialect:  "postgres",
		variants: []string{"SELECT * FROM users WHERE id = 123"},
		wantNorm: "SELECT * FROM users WHERE id = ?",
		wantHash: "6f540be5517aaffe1774bebe9a2c0eba835e11cd8e1b07ea44046ae795008704",
	},
	{
		name:    "pagination_leading_zero_and_default_asc",
		dialect: "postgres",
		variants: []string{
			"SELECT id FROM users ORDER BY id LIMIT 00010;",
			"SELECT id FROM users ORDER BY id ASC LIMIT 10",
		},
		wantNorm: "SELECT id FROM users ORDER BY id LIMIT ?",
		wantHash: "7d09730fb0d3e986e984ee71eaffa74e74098a790f360f4f1fd07bbf3cc9a57c",
	},
	{
		name:     "bare_literal_select",
		dialect:  "mysql",
		variants: []string{"SELECT 1;", "SELECT (1);"},
		wantNorm: "SELECT ?",
		wantHash: "66cbb3a40d4bbd150b75825ad291a6545399f3098fc1079e4d8b5bb061a6a481",
	},
	{
		name:    "parentheses_and_or_string_variants",
		dialect: "postgres",
		variants: []string{
			"SELECT * FROM t WHERE (a = 1 OR b = 2) AND c = 'x'",
			"select * from t where (a=1 or b=2) and c='x'",
			"SELECT * FROM t WHERE ((a = 1 OR b = 2)) AND c = 'x'",
			"SELECT *\nFROM t\nWHERE (a = 1 OR b = 2)\n  AND c = 'x'",
		},
		wantNorm: "SELECT * FROM t WHERE (a = ? OR b = ?) AND c = ?",
		wantHash: "1cf4b3baf6ad9d92fcc7514cadaeef98880c92c49e7eb6ac59cb817c58b82e5d",
	},
}

func TestFixtures(t *testing.T) {
	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			for i, variant := range fx.variants {
				result, err := Normalize(variant, fx.dialect, "?")
				if err != nil {
					t.Fatalf("variant %d: %v", i, err)
				}
				if result.Normalized != fx.wantNorm {
					t.Errorf("variant %d normalized = %q, want %q", i, result.Normalized, fx.wantNorm)
				}
				if result.Hash != fx.wantHash {
					t.Errorf("variant %d hash = %q, want %q", i, result.Hash, fx.wantHash)
				}
			}
		})
	}
}
