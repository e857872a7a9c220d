package ddl

import (
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// token is one lexical unit scanned by sqlparser.Tokenizer, with its byte
// span in the source so clauses and default expressions can be copied verbatim.
type token struct {
	typ   int
	text  string // unquoted identifier or string value; source text otherwise
	ident bool   // quoted identifier or string, never a keyword
	start int
	end   int
}

func (t token) upper() string {
	if t.ident {
		return ""
	}
	return strings.ToUpper(t.text)
}

func (t token) is(ch byte) bool {
	return t.typ == int(ch)
}

// lex scans s with the sqlparser tokenizer. Comments are dropped.
func lex(s string) ([]token, error) {
	tkn := sqlparser.NewStringTokenizer(s)
	var toks []token
	prev := 0
	for {
		typ, val := tkn.Scan()

		// The tokenizer keeps one byte of lookahead, so the scanned token ends
		// just before Position-1.
		end := min(max(tkn.Position-1, prev), len(s))
		start := prev
		for start < end && isBlank(s[start]) {
			start++
		}
		prev = end

		switch typ {
		case 0:
			return toks, nil
		case sqlparser.LEX_ERROR:
			return toks, fmt.Errorf("unexpected %q at offset %d", val, start)
		case sqlparser.COMMENT:
			continue
		}

		t := token{typ: typ, text: s[start:end], start: start, end: end}
		if start < end && (s[start] == '`' || s[start] == '"' || s[start] == '\'') {
			t.text = string(val)
			t.ident = true
		}
		if t.text == "" || strings.HasPrefix(t.text, "/*") {
			// Tokens replayed from a /*! */ comment have no span of their own.
			t.text = string(val)
		}
		toks = append(toks, t)
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// closing returns the index of the ')' matching the '(' at toks[open], or -1.
func closing(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].is('('):
			depth++
		case toks[i].is(')'):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits toks on commas outside parentheses.
func splitTopLevel(toks []token) [][]token {
	var parts [][]token
	depth, start := 0, 0
	for i, t := range toks {
		switch {
		case t.is('('):
			depth++
		case t.is(')'):
			if depth > 0 {
				depth--
			}
		case t.is(',') && depth == 0:
			parts = append(parts, toks[start:i])
			start = i + 1
		}
	}
	return append(parts, toks[start:])
}

// span returns the source text covered by toks.
func span(src string, toks []token) string {
	if len(toks) == 0 {
		return ""
	}
	start, end := toks[0].start, toks[len(toks)-1].end
	if start >= end || end > len(src) {
		parts := make([]string, len(toks))
		for i, t := range toks {
			parts[i] = t.text
		}
		return strings.Join(parts, " ")
	}
	return src[start:end]
}

// valueEnd returns the index just past the value starting at toks[i]: a
// single token, a function call or parenthesized expression, a signed number,
// or a charset-introduced string.
func valueEnd(toks []token, i int) int {
	if i >= len(toks) {
		return i
	}
	t := toks[i]
	switch {
	case t.is('('):
		if end := closing(toks, i); end > 0 {
			return end + 1
		}
		return len(toks)
	case (t.is('-') || t.is('+')) && i+1 < len(toks):
		return i + 2
	case !t.ident && !isPunct(t) && i+1 < len(toks) && toks[i+1].typ == sqlparser.STRING &&
		(toks[i+1].start == t.end || strings.HasPrefix(t.text, "_")):
		// Charset introducer or literal prefix such as _utf8mb4'x' or b'1'.
		return i + 2
	case i+1 < len(toks) && toks[i+1].is('(') && toks[i+1].start == t.end:
		if end := closing(toks, i+1); end > 0 {
			return end + 1
		}
		return len(toks)
	}
	return i + 1
}

// columnList reads the names in a "(`a`(10), `b` DESC)" group starting at toks[open].
func columnList(toks []token, open int) []string {
	end := closing(toks, open)
	if end < 0 {
		end = len(toks)
	}
	var cols []string
	for _, part := range splitTopLevel(toks[open+1 : end]) {
		if len(part) == 0 || part[0].is('(') {
			continue
		}
		cols = append(cols, part[0].text)
	}
	return cols
}

// typeSuffix returns the text inside the parentheses following toks[i], if any,
// and the index of the first token after it.
func typeSuffix(src string, toks []token, i int) (string, int) {
	if i >= len(toks) || !toks[i].is('(') {
		return "", i
	}
	end := closing(toks, i)
	if end < 0 {
		return strings.TrimSpace(span(src, toks[i+1:])), len(toks)
	}
	if end == i+1 {
		return "", end + 1
	}
	return strings.TrimSpace(span(src, toks[i+1:end])), end + 1
}
