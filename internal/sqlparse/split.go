package sqlparse

import "strings"

// ParseStatements splits sql into independently executable statements.
// Comments are stripped first, then the token stream is cut at every
// semicolon that sits outside string literals at parenthesis depth zero.
// Returned statements are trimmed and never carry the terminating semicolon;
// empty segments (whitespace, lone semicolons, comment-only text) are
// dropped, so input consisting only of those yields a nil slice.
func ParseStatements(sql string) []string {
	if strings.TrimSpace(sql) == "" {
		return nil
	}

	var stmts []string
	var buf strings.Builder
	depth := 0

	flush := func() {
		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}

	for _, tok := range Tokenize(StripComments(sql)) {
		if tok.Kind == TokenPunct {
			switch tok.Raw {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			case ";":
				if depth == 0 {
					flush()
					continue
				}
			}
		}
		buf.WriteString(tok.Raw)
	}
	flush()

	return stmts
}
