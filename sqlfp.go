// Package sqlfp fingerprints SQL statements: it parses a statement under a
// chosen dialect, rewrites the AST to erase everything that doesn't change
// the query's meaning (literal values, whitespace, comments, optional
// keyword spelling, redundant parentheses), re-emits the result as a single
// canonical string, and hashes it. Two statements that differ only in those
// superficial ways fingerprint identically; statements that differ
// structurally do not.
package sqlfp

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mstute/sqlfp/dialect"
	"github.com/mstute/sqlfp/format"
	"github.com/mstute/sqlfp/normalize"
	"github.com/mstute/sqlfp/parser"
)

// DefaultDialect is used when Normalize is called with an empty dialect
// name.
const DefaultDialect = "ansi"

// DefaultPlaceholder is used when Normalize is called with an empty
// placeholder string.
const DefaultPlaceholder = "?"

// Result is the immutable record returned by Normalize.
type Result struct {
	// Original is the verbatim input string.
	Original string
	// Normalized is the canonical single-line form of the statement.
	Normalized string
	// Params is the ordered sequence of the textual forms of the
	// literals that were replaced by placeholders, left-to-right in
	// AST order.
	Params []string
	// Hash is the lowercase hex-encoded SHA-256 digest of the UTF-8
	// bytes of Normalized.
	Hash string
}

// UnknownDialectError reports a dialect name that does not resolve to a
// known Descriptor.
type UnknownDialectError struct {
	Dialect string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown dialect: %q", e.Dialect)
}

// ParseErrorKind reports that the parser frontend could not consume the
// input. Its message always begins with the literal prefix "Parse error: ".
type ParseErrorKind struct {
	msg string
}

func (e *ParseErrorKind) Error() string {
	return e.msg
}

// Normalize parses sql under the named dialect, rewrites it to canonical
// form, and returns the fingerprinted Result. dialectName defaults to
// "ansi" and placeholder defaults to "?" when passed as the empty string.
//
// Normalize returns an *UnknownDialectError if dialectName does not
// resolve, or a *ParseErrorKind if sql cannot be parsed under the resolved
// dialect. It performs no I/O, mutates no package-level state, and is safe
// to call concurrently from multiple goroutines.
func Normalize(sql string, dialectName string, placeholder string) (Result, error) {
	if dialectName == "" {
		dialectName = DefaultDialect
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	d, ok := dialect.Lookup(dialectName)
	if !ok {
		return Result{}, &UnknownDialectError{Dialect: dialectName}
	}

	p := parser.Get(sql, d)
	defer parser.Put(p)

	stmt, err := p.Parse()
	if err != nil {
		return Result{}, &ParseErrorKind{msg: "Parse error: " + err.Error()}
	}

	rewritten := normalize.Normalize(stmt, placeholder)
	normalized := format.String(rewritten.Statement)
	sum := sha256.Sum256([]byte(normalized))

	return Result{
		Original:   sql,
		Normalized: normalized,
		Params:     rewritten.Params,
		Hash:       hex.EncodeToString(sum[:]),
	}, nil
}

// Fingerprint is a convenience wrapper around Normalize that returns only
// the hex-encoded hash.
func Fingerprint(sql string, dialectName string) (string, error) {
	result, err := Normalize(sql, dialectName, DefaultPlaceholder)
	if err != nil {
		return "", err
	}
	return result.Hash, nil
}
