// Package lexer tokenizes SQL source text. Unlike a single-grammar scanner,
// it is bound to a dialect.Descriptor at construction and uses it to decide
// how to treat the three ambiguous quoting styles SQL dialects disagree on:
// backtick identifiers, bracket identifiers, and double-quoted strings vs.
// identifiers. A nil Descriptor accepts backtick and bracket identifiers
// and reads double quotes as identifier quotes, for callers that only need
// a raw token stream.
package lexer

import (
	"sync"

	"github.com/mstute/sqlfp/dialect"
	"github.com/mstute/sqlfp/token"
)

// Lexer scans one token at a time from input under a bound dialect.
type Lexer struct {
	input   string
	dialect *dialect.Descriptor

	start int // byte offset where the current token begins
	pos   int // byte offset of the scan cursor

	row  int // current line, 1-indexed
	col0 int // byte offset where the current line begins

	item   token.Item
	peeked bool
}

var pool = sync.Pool{New: func() any { return &Lexer{} }}

// New returns a Lexer scanning input under dialect d. d may be nil.
func New(input string, d *dialect.Descriptor) *Lexer {
	l := &Lexer{}
	l.Reset(input, d)
	return l
}

// Get returns a pooled Lexer reset to scan input under dialect d.
func Get(input string, d *dialect.Descriptor) *Lexer {
	l := pool.Get().(*Lexer)
	l.Reset(input, d)
	return l
}

// Put returns l to the pool. Callers must not use l afterward.
func Put(l *Lexer) {
	pool.Put(l)
}

// Reset reinitializes the lexer to scan new input under dialect d.
func (l *Lexer) Reset(input string, d *dialect.Descriptor) {
	l.input = input
	l.dialect = d
	l.start, l.pos = 0, 0
	l.row, l.col0 = 1, 0
	l.item = token.Item{}
	l.peeked = false
}

// Next consumes and returns the next token.
func (l *Lexer) Next() token.Item {
	if l.peeked {
		l.peeked = false
		return l.item
	}
	l.item = l.scan()
	return l.item
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Item {
	if !l.peeked {
		l.item = l.scan()
		l.peeked = true
	}
	return l.item
}

// singleByteTokens covers the characters whose meaning never depends on
// what comes next, so they skip the dispatch switch entirely.
var singleByteTokens = map[byte]token.Token{
	'(': token.LPAREN,
	')': token.RPAREN,
	']': token.RBRACKET,
	',': token.COMMA,
	';': token.SEMICOLON,
	'+': token.PLUS,
	'*': token.ASTERISK,
	'%': token.PERCENT,
	'~': token.BITNOT,
	'^': token.BITXOR,
	'&': token.BITAND,
}

func (l *Lexer) scan() token.Item {
	l.skipSpace()
	l.start = l.pos

	if l.pos >= len(l.input) {
		return l.emit(token.EOF, "")
	}

	ch := l.input[l.pos]

	if tok, ok := singleByteTokens[ch]; ok {
		l.pos++
		return l.emit(tok, string(ch))
	}

	switch ch {
	case '[':
		return l.scanLeftBracket()
	case '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) && !(l.pos > 0 && l.input[l.pos-1] == '.') {
			return l.scanNumber()
		}
		l.pos++
		return l.emit(token.DOT, ".")
	case '-':
		return l.scanMinus()
	case '/':
		return l.scanSlash()
	case '\'':
		return l.scanQuoted('\'', token.STRING, true)
	case '"':
		return l.scanDoubleQuote()
	case '`':
		return l.scanBacktick()
	case '=':
		l.pos++
		return l.emit(token.EQ, "=")
	case '<':
		return l.scanLessThan()
	case '>':
		return l.scanGreaterThan()
	case '!':
		return l.scanBang()
	case '|':
		return l.scanPipe()
	case '?':
		return l.scanQuestion()
	case '$':
		return l.scanDollar()
	case ':':
		return l.scanColon()
	case '#':
		return l.scanHash()
	case '@':
		return l.scanAt()
	}

	switch {
	case isIdentStart(ch):
		return l.scanIdent()
	case isDigit(ch):
		return l.scanNumber()
	}

	l.pos++
	return l.emit(token.ILLEGAL, string(ch))
}

func (l *Lexer) emit(t token.Token, value string) token.Item {
	return token.Item{
		Type:  t,
		Value: value,
		Pos: token.Pos{
			Offset: l.start,
			Line:   l.row,
			Column: l.start - l.col0 + 1,
		},
	}
}

func (l *Lexer) newline() {
	l.row++
	l.col0 = l.pos + 1
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		case '\n':
			l.newline()
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) scanIdent() token.Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	val := l.input[l.start:l.pos]
	return l.emit(token.LookupIdent(val), val)
}

func (l *Lexer) scanNumber() token.Item {
	if l.isHexPrefix() {
		l.pos += 2
		l.consumeWhile(isHexDigit)
		return l.emit(token.INT, l.input[l.start:l.pos])
	}

	kind := token.INT
	l.consumeWhile(isDigit)

	if l.pos < len(l.input) && l.input[l.pos] == '.' && !l.isRangeDot() {
		kind = token.FLOAT
		l.pos++
		l.consumeWhile(isDigit)
	}

	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		kind = token.FLOAT
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		l.consumeWhile(isDigit)
	}

	return l.emit(kind, l.input[l.start:l.pos])
}

func (l *Lexer) isHexPrefix() bool {
	return l.pos+1 < len(l.input) && l.input[l.pos] == '0' &&
		(l.input[l.pos+1] == 'x' || l.input[l.pos+1] == 'X')
}

// isRangeDot reports whether the dot at l.pos is the first of a ".."
// range operator rather than a decimal point.
func (l *Lexer) isRangeDot() bool {
	return l.pos+1 < len(l.input) && l.input[l.pos+1] == '.'
}

func (l *Lexer) consumeWhile(pred func(byte) bool) {
	for l.pos < len(l.input) && pred(l.input[l.pos]) {
		l.pos++
	}
}

// quoteAllowance distinguishes the three dialect-gated quoting styles.
type quoteAllowance int

const (
	backtickIdent quoteAllowance = iota
	bracketIdent
	doubleQuotedString
)

// allows reports whether the bound dialect accepts the given quoting
// style. A nil dialect accepts both identifier quoting styles and treats
// double quotes as identifier quotes, for callers that want a raw token
// stream without committing to one dialect's rules.
func (l *Lexer) allows(style quoteAllowance) bool {
	if l.dialect == nil {
		return style != doubleQuotedString
	}
	switch style {
	case backtickIdent:
		return l.dialect.AllowBacktickIdent
	case bracketIdent:
		return l.dialect.AllowBracketIdent
	case doubleQuotedString:
		return l.dialect.AllowDoubleQuoteString
	default:
		return false
	}
}

func (l *Lexer) scanDoubleQuote() token.Item {
	if l.allows(doubleQuotedString) {
		return l.scanQuoted('"', token.STRING, true)
	}
	return l.scanQuoted('"', token.IDENT, false)
}

func (l *Lexer) scanBacktick() token.Item {
	if !l.allows(backtickIdent) {
		l.pos++
		return l.emit(token.ILLEGAL, "`")
	}
	return l.scanQuoted('`', token.IDENT, false)
}

func (l *Lexer) scanLeftBracket() token.Item {
	if l.allows(bracketIdent) && l.looksLikeBracketIdent() {
		return l.scanQuoted(']', token.IDENT, false)
	}
	l.pos++
	return l.emit(token.LBRACKET, "[")
}

// looksLikeBracketIdent reports whether "[" opens a SQL Server
// [identifier], as opposed to an array-subscript "[" (e.g. a[1]): the
// former is always followed directly by an identifier-start character or
// a temp-table/variable sigil, never by another expression.
func (l *Lexer) looksLikeBracketIdent() bool {
	if l.pos+1 >= len(l.input) {
		return false
	}
	next := l.input[l.pos+1]
	return isIdentStart(next) || next == '#' || next == '@'
}

// scanQuoted scans a token delimited by a single open/close byte (already
// positioned at l.pos), honoring doubled-delimiter escaping ('' or `` or
// ]] or ""). When interpretEscapes is set, backslash sequences are also
// decoded — used for string literals, never for quoted identifiers.
func (l *Lexer) scanQuoted(closeByte byte, kind token.Token, interpretEscapes bool) token.Item {
	l.pos++
	var buf []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == closeByte && l.pos+1 < len(l.input) && l.input[l.pos+1] == closeByte:
			buf = append(buf, closeByte)
			l.pos += 2
		case ch == closeByte:
			l.pos++
			if buf == nil {
				return l.emit(kind, l.input[l.start+1:l.pos-1])
			}
			return l.emit(kind, string(buf))
		case interpretEscapes && ch == '\\' && l.pos+1 < len(l.input):
			buf = append(buf, decodeEscape(l.input[l.pos+1])...)
			l.pos += 2
		default:
			if ch == '\n' {
				l.newline()
			}
			buf = append(buf, ch)
			l.pos++
		}
	}
	return l.emit(token.ILLEGAL, l.input[l.start:l.pos])
}

func decodeEscape(next byte) []byte {
	switch next {
	case 'n':
		return []byte{'\n'}
	case 't':
		return []byte{'\t'}
	case 'r':
		return []byte{'\r'}
	case '\\':
		return []byte{'\\'}
	case '\'':
		return []byte{'\''}
	case '"':
		return []byte{'"'}
	default:
		return []byte{'\\', next}
	}
}

func (l *Lexer) scanMinus() token.Item {
	l.pos++
	if l.pos >= len(l.input) {
		return l.emit(token.MINUS, "-")
	}
	switch l.input[l.pos] {
	case '-':
		return l.scanLineComment()
	case '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '>' {
			l.pos++
			return l.emit(token.DARROW, "->>")
		}
		return l.emit(token.ARROW, "->")
	default:
		return l.emit(token.MINUS, "-")
	}
}

func (l *Lexer) scanSlash() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '*' {
		return l.scanBlockComment()
	}
	return l.emit(token.SLASH, "/")
}

func (l *Lexer) scanLineComment() token.Item {
	l.pos++
	l.consumeWhile(func(b byte) bool { return b != '\n' })
	return l.emit(token.COMMENT, l.input[l.start:l.pos])
}

func (l *Lexer) scanBlockComment() token.Item {
	l.pos++
	for l.pos < len(l.input) {
		if l.input[l.pos] == '*' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/' {
			l.pos += 2
			return l.emit(token.COMMENT, l.input[l.start:l.pos])
		}
		if l.input[l.pos] == '\n' {
			l.newline()
		}
		l.pos++
	}
	return l.emit(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanLessThan() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '=':
			l.pos++
			return l.emit(token.LTE, "<=")
		case '>':
			l.pos++
			return l.emit(token.NEQ, "<>")
		case '<':
			l.pos++
			return l.emit(token.LSHIFT, "<<")
		}
	}
	return l.emit(token.LT, "<")
}

func (l *Lexer) scanGreaterThan() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '=':
			l.pos++
			return l.emit(token.GTE, ">=")
		case '>':
			l.pos++
			return l.emit(token.RSHIFT, ">>")
		}
	}
	return l.emit(token.GT, ">")
}

func (l *Lexer) scanBang() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '=' {
		l.pos++
		return l.emit(token.NEQ, "!=")
	}
	return l.emit(token.ILLEGAL, "!")
}

func (l *Lexer) scanPipe() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '|' {
		l.pos++
		return l.emit(token.CONCAT, "||")
	}
	return l.emit(token.BITOR, "|")
}

func (l *Lexer) scanQuestion() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '|':
			l.pos++
			return l.emit(token.QUESTIONOR, "?|")
		case '&':
			l.pos++
			return l.emit(token.QUESTIONAND, "?&")
		}
	}
	return l.emit(token.PARAM, "?")
}

func (l *Lexer) scanDollar() token.Item {
	l.pos++
	if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.consumeWhile(isDigit)
		return l.emit(token.PARAM, l.input[l.start:l.pos])
	}
	if l.pos >= len(l.input) {
		return l.emit(token.ILLEGAL, "$")
	}

	var tag string
	switch {
	case l.input[l.pos] == '$':
		l.pos++
	case isIdentStart(l.input[l.pos]):
		tagStart := l.pos
		l.consumeWhile(isTagChar)
		if l.pos >= len(l.input) || l.input[l.pos] != '$' {
			l.pos = l.start + 1
			return l.emit(token.ILLEGAL, "$")
		}
		tag = l.input[tagStart:l.pos]
		l.pos++
	default:
		return l.emit(token.ILLEGAL, "$")
	}
	return l.scanDollarQuoted(tag)
}

func (l *Lexer) scanDollarQuoted(tag string) token.Item {
	contentStart := l.pos
	closer := "$" + tag + "$"
	for l.pos < len(l.input) {
		if l.input[l.pos] == '$' && l.pos+len(closer) <= len(l.input) &&
			l.input[l.pos:l.pos+len(closer)] == closer {
			content := l.input[contentStart:l.pos]
			l.pos += len(closer)
			return l.emit(token.STRING, content)
		}
		if l.input[l.pos] == '\n' {
			l.newline()
		}
		l.pos++
	}
	return l.emit(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanColon() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		if l.input[l.pos] == ':' {
			l.pos++
			return l.emit(token.DCOLON, "::")
		}
		if isIdentStart(l.input[l.pos]) {
			l.consumeWhile(isIdentChar)
			return l.emit(token.PARAM, l.input[l.start:l.pos])
		}
	}
	return l.emit(token.COLON, ":")
}

func (l *Lexer) scanHash() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch {
		case l.input[l.pos] == '>':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '>' {
				l.pos++
				return l.emit(token.HASHDGT, "#>>")
			}
			return l.emit(token.HASHGT, "#>")
		case l.input[l.pos] == '#':
			l.pos++
			if l.pos < len(l.input) && isIdentStart(l.input[l.pos]) {
				l.consumeWhile(isIdentChar)
				return l.emit(token.IDENT, l.input[l.start:l.pos])
			}
			l.pos -= 2
		case isIdentStart(l.input[l.pos]):
			l.consumeWhile(isIdentChar)
			return l.emit(token.IDENT, l.input[l.start:l.pos])
		}
	}
	l.consumeWhile(func(b byte) bool { return b != '\n' })
	return l.emit(token.COMMENT, l.input[l.start:l.pos])
}

func (l *Lexer) scanAt() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		if l.input[l.pos] == '@' {
			l.pos++
			return l.emit(token.ATAT, "@@")
		}
		if isIdentStart(l.input[l.pos]) {
			l.consumeWhile(isIdentChar)
			return l.emit(token.PARAM, l.input[l.start:l.pos])
		}
	}
	return l.emit(token.AT, "@")
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}

func isTagChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
