package token

// keywords maps lowercase keyword strings to token types.
var keywords map[string]Token

func init() {
	keywords = map[string]Token{
		"select":   SELECT,
		"from":     FROM,
		"where":    WHERE,
		"and":      AND,
		"or":       OR,
		"not":      NOT,
		"in":       IN,
		"like":     LIKE,
		"ilike":    ILIKE,
		"between":  BETWEEN,
		"is":       IS,
		"null":     NULL,
		"true":     TRUE,
		"false":    FALSE,
		"as":       AS,
		"all":      ALL,
		"distinct": DISTINCT,
		"on":       ON,

		"join":  JOIN,
		"inner": INNER,
		"left":  LEFT,
		"right": RIGHT,
		"full":  FULL,
		"outer": OUTER,
		"cross": CROSS,
		"using": USING,

		"order":  ORDER,
		"by":     BY,
		"asc":    ASC,
		"desc":   DESC,
		"nulls":  NULLS,
		"first":  FIRST,
		"last":   LAST,
		"next":   NEXT,
		"group":  GROUP,
		"having": HAVING,

		"limit":  LIMIT,
		"offset": OFFSET,
		"fetch":  FETCH,
		"row":    ROW,
		"rows":   ROWS,
		"only":   ONLY,

		"union":     UNION,
		"intersect": INTERSECT,
		"except":    EXCEPT,

		"insert":    INSERT,
		"into":      INTO,
		"values":    VALUES,
		"default":   DEFAULT,
		"returning": RETURNING,
		"replace":   REPLACE,
		"ignore":    IGNORE,
		"duplicate": DUPLICATE,
		"key":       KEY,
		"update":    UPDATE,

		"set":    SET,
		"delete": DELETE,

		"case":      CASE,
		"when":      WHEN,
		"then":      THEN,
		"else":      ELSE,
		"end":       END,
		"cast":      CAST,
		"over":      OVER,
		"partition": PARTITION,
		"window":    WINDOW,
		"filter":    FILTER,

		"with":      WITH,
		"recursive": RECURSIVE,

		"conflict": CONFLICT,
		"do":       DO,
		"nothing":  NOTHING,

		"for": FOR,

		"array":  ARRAY,
		"any":    ANY,
		"exists": EXISTS,

		"interval":  INTERVAL,
		"range":     RANGE,
		"preceding": PRECEDING,
		"following": FOLLOWING,
		"current":   CURRENT,

		"rownum":       ROWNUM,
		"sysdate":      SYSDATE,
		"systimestamp": SYSTIMESTAMP,
		"top":          TOP,
	}
}

// LookupIdent returns the token type for an identifier.
// If the identifier is a keyword, returns the keyword token.
// Otherwise returns IDENT. Avoids allocation on the common
// already-lowercase path.
func LookupIdent(ident string) Token {
	if isLowercase(ident) {
		if tok, ok := keywords[ident]; ok {
			return tok
		}
		return IDENT
	}

	if len(ident) <= 32 {
		var buf [32]byte
		for i := 0; i < len(ident); i++ {
			c := ident[i]
			if c >= 'A' && c <= 'Z' {
				buf[i] = c + 32
			} else {
				buf[i] = c
			}
		}
		lower := string(buf[:len(ident)])
		if tok, ok := keywords[lower]; ok {
			return tok
		}
		return IDENT
	}

	return IDENT
}

// isLowercase reports whether s has no uppercase ASCII letters.
func isLowercase(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			return false
		}
	}
	return true
}

// IsKeyword reports whether ident is a reserved SQL keyword.
func IsKeyword(ident string) bool {
	return LookupIdent(ident) != IDENT
}
