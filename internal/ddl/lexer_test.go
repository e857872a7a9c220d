package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(toks []token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.text
	}
	return out
}

func TestLex(t *testing.T) {
	src := "`my col` varchar(10) DEFAULT 'x y' /* note */ COMMENT 'it''s' -- trailing\n"
	toks, err := lex(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"my col", "varchar", "(", "10", ")", "DEFAULT", "x y", "COMMENT", "it's"}, texts(toks))
	assert.True(t, toks[0].ident)
	assert.Empty(t, toks[0].upper())
	assert.Equal(t, "DEFAULT", toks[5].upper())
	assert.True(t, toks[2].is('('))
	assert.Equal(t, "'x y'", src[toks[6].start:toks[6].end])
}

func TestLex_KeepsSourceCase(t *testing.T) {
	toks, err := lex("CREATE TABLE Orders (Id INT)")
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE", "TABLE", "Orders", "(", "Id", "INT", ")"}, texts(toks))
}

func TestLex_Error(t *testing.T) {
	toks, err := lex("a int, b 'unterminated")
	require.Error(t, err)
	assert.Equal(t, []string{"a", "int", ",", "b"}, texts(toks))
}

func TestSplitTopLevel(t *testing.T) {
	src := "a int, b decimal(10,2), c enum('x,y','z'), `d,e` text"
	toks, err := lex(src)
	require.NoError(t, err)

	var parts []string
	for _, part := range splitTopLevel(toks) {
		parts = append(parts, span(src, part))
	}
	assert.Equal(t, []string{"a int", "b decimal(10,2)", "c enum('x,y','z')", "`d,e` text"}, parts)
}

func TestColumnList(t *testing.T) {
	tests := map[string][]string{
		"(`a`(10), `b` DESC)": {"a", "b"},
		"(id)":                {"id"},
		"()":                  nil,
	}
	for src, want := range tests {
		toks, err := lex(src)
		require.NoError(t, err)
		assert.Equal(t, want, columnList(toks, 0), src)
	}
}

func TestTypeSuffix(t *testing.T) {
	tests := []struct {
		in, suffix string
		next       int
	}{
		{"varchar(50) NOT", "50", 4},
		{"decimal(10, 2)", "10, 2", 6},
		{"int NOT", "", 1},
		{"enum('a','b')", "'a','b'", 6},
	}
	for _, tt := range tests {
		toks, err := lex(tt.in)
		require.NoError(t, err)
		suffix, next := typeSuffix(tt.in, toks, 1)
		assert.Equal(t, tt.suffix, suffix, tt.in)
		assert.Equal(t, tt.next, next, tt.in)
	}
}

func TestValueEnd(t *testing.T) {
	tests := map[string]string{
		"CURRENT_TIMESTAMP(3) ON": "CURRENT_TIMESTAMP(3)",
		"-1 NOT":                  "-1",
		"_utf8mb4'abc' COMMENT":   "_utf8mb4'abc'",
		"(uuid()) NOT":            "(uuid())",
		"'a, b' COMMENT 'x'":      "'a, b'",
		"b'1'":                    "b'1'",
		"NULL ON UPDATE":          "NULL",
	}
	for src, want := range tests {
		toks, err := lex(src)
		require.NoError(t, err)
		assert.Equal(t, want, span(src, toks[:valueEnd(toks, 0)]), src)
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := map[string]string{
		"users":      "users",
		"_tmp1":      "_tmp1",
		"order":      `"order"`,
		"Select":     `"Select"`,
		"full name":  `"full name"`,
		"1st":        `"1st"`,
		`odd"name`:   `"odd""name"`,
		"created_at": "created_at",
	}
	for in, want := range tests {
		assert.Equal(t, want, QuoteIdent(in), in)
	}
}

func TestDefaultExpr(t *testing.T) {
	tests := map[string]string{
		"CURRENT_TIMESTAMP":    "CURRENT_TIMESTAMP",
		"current_timestamp(6)": "CURRENT_TIMESTAMP",
		"b'1'":                 "1",
		"b'101'":               "5",
		"_utf8mb4'abc'":        "'abc'",
		"'0'":                  "'0'",
		"NULL":                 "NULL",
		"-1":                   "-1",
	}
	for in, want := range tests {
		assert.Equal(t, want, defaultExpr(in), in)
	}
}
