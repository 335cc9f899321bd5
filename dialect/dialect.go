// Package dialect describes the SQL dialects the parser and formatter can
// target, and the surface-syntax differences between them.
package dialect

import "strings"

// Name identifies a supported SQL dialect.
type Name string

const (
	Postgres Name = "postgres"
	MySQL    Name = "mysql"
	SQLite   Name = "sqlite"
	ANSI     Name = "ansi"
	MSSQL    Name = "mssql"
	Oracle   Name = "oracle"
)

// Descriptor captures the surface-syntax quirks of a dialect that the
// parser and formatter need to know about. It is immutable once built.
type Descriptor struct {
	Name Name

	// QuotedIdent is the preferred identifier-quoting style.
	QuotedIdent byte // '"', '`', or 0 for bracket-style ([])

	// AllowBacktickIdent permits `ident` quoting (MySQL/MariaDB only).
	AllowBacktickIdent bool
	// AllowBracketIdent permits [ident] quoting (SQL Server).
	AllowBracketIdent bool
	// AllowDoubleQuoteString treats "..." as a string literal rather
	// than a quoted identifier (MySQL ANSI_QUOTES-off default).
	AllowDoubleQuoteString bool

	// HasReturning reports whether RETURNING is supported on
	// INSERT/UPDATE/DELETE (Postgres only).
	HasReturning bool
	// HasOnConflict reports whether INSERT ... ON CONFLICT is supported
	// (Postgres, SQLite).
	HasOnConflict bool
	// HasOnDuplicateKeyUpdate reports whether INSERT ... ON DUPLICATE
	// KEY UPDATE is supported (MySQL/MariaDB).
	HasOnDuplicateKeyUpdate bool
	// HasLimitOffset reports whether the LIMIT [OFFSET] clause form is
	// supported (Postgres, MySQL, SQLite).
	HasLimitOffset bool
	// HasFetchFirst reports whether the OFFSET ... FETCH FIRST clause
	// form is supported (Oracle only).
	HasFetchFirst bool
	// HasTop reports whether SELECT TOP n is supported (MSSQL).
	HasTop bool
	// HasRownum reports whether the pseudo-column ROWNUM is recognized
	// (Oracle).
	HasRownum bool
	// HasILike reports whether the ILIKE operator is supported
	// (Postgres).
	HasILike bool
	// HasDistinctOn reports whether SELECT DISTINCT ON (...) is
	// supported (Postgres).
	HasDistinctOn bool
	// HasDoubleColonCast reports whether the "expr::type" cast shorthand
	// is supported (Postgres).
	HasDoubleColonCast bool
	// HasNullsOrdering reports whether ORDER BY ... NULLS FIRST/LAST is
	// supported (Postgres, Oracle).
	HasNullsOrdering bool
	// HasInsertModifiers reports whether INSERT IGNORE and REPLACE INTO
	// are supported (MySQL/MariaDB only).
	HasInsertModifiers bool
	// HasRecursiveCTE reports whether WITH RECURSIVE is supported
	// (Postgres, MySQL, SQLite).
	HasRecursiveCTE bool
}

var registry = map[Name]*Descriptor{
	Postgres: {
		Name:               Postgres,
		QuotedIdent:        '"',
		HasReturning:       true,
		HasOnConflict:      true,
		HasLimitOffset:     true,
		HasILike:           true,
		HasDistinctOn:      true,
		HasDoubleColonCast: true,
		HasNullsOrdering:   true,
		HasRecursiveCTE:    true,
	},
	MySQL: {
		Name:                    MySQL,
		QuotedIdent:             '`',
		AllowBacktickIdent:      true,
		AllowDoubleQuoteString:  true,
		HasOnDuplicateKeyUpdate: true,
		HasLimitOffset:          true,
		HasInsertModifiers:      true,
		HasRecursiveCTE:         true,
	},
	SQLite: {
		Name:            SQLite,
		QuotedIdent:     '"',
		HasOnConflict:   true,
		HasLimitOffset:  true,
		HasRecursiveCTE: true,
	},
	ANSI: {
		Name:        ANSI,
		QuotedIdent: '"',
	},
	MSSQL: {
		Name:              MSSQL,
		QuotedIdent:       '"',
		AllowBracketIdent: true,
		HasTop:            true,
	},
	Oracle: {
		Name:             Oracle,
		QuotedIdent:      '"',
		HasFetchFirst:    true,
		HasRownum:        true,
		HasNullsOrdering: true,
	},
}

// aliases maps alternate spellings onto canonical dialect names.
var aliases = map[string]Name{
	"postgresql": Postgres,
	"pg":         Postgres,
	"mariadb":    MySQL,
	"mysql":      MySQL,
	"sqlite3":    SQLite,
}

// Lookup resolves a dialect name (case-insensitive, with known aliases)
// to its Descriptor. ok is false for unrecognized names.
func Lookup(name string) (*Descriptor, bool) {
	n := Name(strings.ToLower(strings.TrimSpace(name)))
	if canon, ok := aliases[string(n)]; ok {
		n = canon
	}
	d, ok := registry[n]
	return d, ok
}

// Names returns the canonical dialect names, for use in error messages.
func Names() []Name {
	return []Name{Postgres, MySQL, SQLite, ANSI, MSSQL, Oracle}
}
