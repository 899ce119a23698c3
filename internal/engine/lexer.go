// Lexer for the calculation formula language.

package engine

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

// lex tokenizes a formula string. Whitespace is insignificant. The lexer is
// permissive about identifiers — it accepts any run of
// [A-Za-z_][A-Za-z0-9_.]* as an identifier, including function names; the
// parser distinguishes calls from refs by the following '('.
func lex(formula string) ([]token, error) {
	var toks []token
	r := []rune(formula)
	i := 0
	n := len(r)

	isDigit := func(c rune) bool { return c >= '0' && c <= '9' }
	isAlpha := func(c rune) bool {
		return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	}

	for i < n {
		c := r[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < n && isDigit(r[i+1])):
			start := i
			for i < n && (isDigit(r[i]) || r[i] == '.') {
				i++
			}
			toks = append(toks, token{tokNumber, string(r[start:i])})
		case isAlpha(c):
			start := i
			for i < n && (isAlpha(r[i]) || isDigit(r[i]) || r[i] == '.') {
				i++
			}
			toks = append(toks, token{tokIdent, string(r[start:i])})
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '>' || c == '<' || c == '!' || c == '=':
			start := i
			i++
			if i < n && r[i] == '=' {
				i++
			}
			toks = append(toks, token{tokOp, string(r[start:i])})
		case strings.ContainsRune("+-*/^&|%", c):
			toks = append(toks, token{tokOp, string(c)})
			i++
		default:
			return nil, fmt.Errorf("engine: unexpected character %q at offset %d in formula %q", c, i, formula)
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks, nil
}
