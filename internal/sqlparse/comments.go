package sqlparse

import "strings"

// StripComments removes single-line (--) and block (/* */) comments from sql.
// Comment-like sequences inside string literals are left untouched. Each
// comment is replaced with a single space so surrounding tokens keep their
// boundaries; a semicolon following a comment on the same line still
// terminates its statement.
func StripComments(sql string) string {
	if sql == "" {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql))
	for _, tok := range Tokenize(sql) {
		if tok.Kind == TokenComment {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(tok.Raw)
	}
	return b.String()
}
