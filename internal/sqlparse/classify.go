package sqlparse

import "github.com/iyuangang/sql-batch-runner/pkg/models"

// fetchKeywords are the leading keywords of statements that return rows.
// Anything else defaults to execute: running a non-query as execute never
// mis-renders a result set.
var fetchKeywords = map[string]bool{
	"SELECT":   true,
	"VALUES":   true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
	"DESC":     true,
	"DESCRIBE": true,
}

// DetectStatementType classifies one statement as fetch or execute by its
// first significant keyword. Statements starting with WITH are classified by
// the main statement that follows the CTE definitions, not the CTE bodies:
// WITH x AS (SELECT ...) INSERT ... is an execute even though its body reads.
//
// A malformed CTE preamble (missing AS, unbalanced parens, truncated input)
// falls back to fetch, matching the long-standing behavior callers depend on.
func DetectStatementType(stmt string) models.StatementType {
	toks := significant(Tokenize(stmt))
	if len(toks) == 0 {
		return models.StatementExecute
	}

	first := toks[0]
	if first.Kind != TokenWord || first.Norm != "WITH" {
		if first.Kind == TokenWord && fetchKeywords[first.Norm] {
			return models.StatementFetch
		}
		return models.StatementExecute
	}

	kw, ok := mainStatementKeyword(toks)
	if !ok {
		return models.StatementFetch
	}
	if fetchKeywords[kw] {
		return models.StatementFetch
	}
	return models.StatementExecute
}

// mainStatementKeyword scans past a CTE preamble and returns the keyword of
// the main statement. The preamble is one or more definitions of the shape
// name [(col, ...)] AS ( body ), joined by commas, after an optional
// RECURSIVE. ok is false when the shape cannot be followed.
func mainStatementKeyword(toks []Token) (string, bool) {
	i := 1 // past WITH
	if i < len(toks) && toks[i].Norm == "RECURSIVE" {
		i++
	}

	for {
		// CTE name.
		if i >= len(toks) || (toks[i].Kind != TokenWord && toks[i].Kind != TokenQuotedIdent) {
			return "", false
		}
		i++

		// Optional column list.
		if i < len(toks) && toks[i].Raw == "(" {
			var ok bool
			i, ok = skipBalanced(toks, i)
			if !ok {
				return "", false
			}
		}

		if i >= len(toks) || toks[i].Norm != "AS" {
			return "", false
		}
		i++

		// CTE body.
		if i >= len(toks) || toks[i].Raw != "(" {
			return "", false
		}
		var ok bool
		i, ok = skipBalanced(toks, i)
		if !ok {
			return "", false
		}

		// A comma means another CTE definition follows.
		if i < len(toks) && toks[i].Raw == "," {
			i++
			continue
		}
		break
	}

	if i >= len(toks) {
		return "", false
	}
	return toks[i].Norm, true
}

// skipBalanced advances past the balanced paren group opening at toks[i].
// It returns the index just after the matching close paren.
func skipBalanced(toks []Token, i int) (int, bool) {
	depth := 1
	i++
	for i < len(toks) && depth > 0 {
		switch toks[i].Raw {
		case "(":
			depth++
		case ")":
			depth--
		}
		i++
	}
	return i, depth == 0
}
