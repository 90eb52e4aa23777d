// Package sqlparse implements statement segmentation and classification for
// SQL batches: a small lexer, a comment stripper, a top-level semicolon
// splitter, and a fetch-vs-execute classifier.
package sqlparse

import (
	"strings"
	"unicode"
)

// TokenKind tags a lexical unit.
type TokenKind int

const (
	TokenWhitespace TokenKind = iota
	TokenWord
	TokenNumber
	TokenString
	TokenQuotedIdent
	TokenComment
	TokenPunct
)

// Token is a lexical unit. Raw is the original text, Norm the trimmed
// upper-cased form used for keyword comparison.
type Token struct {
	Kind TokenKind
	Raw  string
	Norm string
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isWordPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '#'
}

// Tokenize scans sql into a flat token stream. It never fails: unterminated
// strings and block comments consume the remainder of the input.
func Tokenize(sql string) []Token {
	var tokens []Token
	runes := []rune(sql)
	n := len(runes)

	emit := func(kind TokenKind, start, end int) {
		raw := string(runes[start:end])
		norm := raw
		if kind == TokenWord {
			norm = strings.ToUpper(raw)
		}
		tokens = append(tokens, Token{Kind: kind, Raw: raw, Norm: norm})
	}

	i := 0
	for i < n {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			start := i
			for i < n && unicode.IsSpace(runes[i]) {
				i++
			}
			emit(TokenWhitespace, start, i)

		case r == '-' && i+1 < n && runes[i+1] == '-':
			// Line comment runs to (but not including) the newline, so the
			// line boundary survives as whitespace.
			start := i
			for i < n && runes[i] != '\n' {
				i++
			}
			emit(TokenComment, start, i)

		case r == '/' && i+1 < n && runes[i+1] == '*':
			start := i
			i += 2
			for i < n {
				if runes[i] == '*' && i+1 < n && runes[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
			emit(TokenComment, start, i)

		case r == '\'':
			// Single-quoted literal, '' escapes an embedded quote.
			start := i
			i++
			for i < n {
				if runes[i] == '\'' {
					if i+1 < n && runes[i+1] == '\'' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
			emit(TokenString, start, i)

		case r == '"':
			// Quoted identifier, "" escapes an embedded quote.
			start := i
			i++
			for i < n {
				if runes[i] == '"' {
					if i+1 < n && runes[i+1] == '"' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
			emit(TokenQuotedIdent, start, i)

		case isWordStart(r):
			start := i
			for i < n && isWordPart(runes[i]) {
				i++
			}
			emit(TokenWord, start, i)

		case unicode.IsDigit(r):
			start := i
			for i < n && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			emit(TokenNumber, start, i)

		default:
			emit(TokenPunct, i, i+1)
			i++
		}
	}

	return tokens
}

// significant filters out whitespace and comment tokens.
func significant(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == TokenWhitespace || t.Kind == TokenComment {
			continue
		}
		out = append(out, t)
	}
	return out
}
