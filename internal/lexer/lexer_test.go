package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eac-lang/eac/internal/keyword"
	"github.com/eac-lang/eac/internal/lexer"
	"github.com/eac-lang/eac/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

// S1 — Lexer comment terminator.
func TestCommentTerminator(t *testing.T) {
	toks, err := lexer.New("Set x to 1. -- trailing\n", "s1.eac", keyword.Table()).All()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.KEYWORD, token.IDENT, token.KEYWORD, token.NUMBER, token.DOT, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "Set", toks[0].Value)
	assert.Equal(t, "x", toks[1].Value)
	assert.Equal(t, "to", toks[2].Value)
	assert.Equal(t, "1", toks[3].Value)
}

func TestTrailingDotNotConsumedAsDecimal(t *testing.T) {
	toks, err := lexer.New("Set x to 1.\n", "a.eac", keyword.Table()).All()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.KEYWORD, token.IDENT, token.KEYWORD, token.NUMBER, token.DOT, token.NEWLINE, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "1", toks[3].Value)
}

func TestFractionalNumber(t *testing.T) {
	toks, err := lexer.New("Set x to 1.50.\n", "b.eac", keyword.Table()).All()
	require.NoError(t, err)
	assert.Equal(t, "1.50", toks[3].Value)
	assert.Equal(t, token.NUMBER, toks[3].Kind)
	assert.Equal(t, token.DOT, toks[4].Kind)
}

func TestIndentationBalanced(t *testing.T) {
	src := "For each row in Invoices:\n    Set v to row.Amount.\n"
	toks, err := lexer.New(src, "c.eac", keyword.Table()).All()
	require.NoError(t, err)

	depth := 0
	maxDepth := 0
	for _, k := range kinds(toks) {
		switch k {
		case token.INDENT:
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case token.DEDENT:
			depth--
		}
	}
	assert.Equal(t, 0, depth, "INDENT/DEDENT must balance")
	assert.Equal(t, 1, maxDepth)
}

func TestNestedIndentationBalancedAcrossMultipleLevels(t *testing.T) {
	src := "For each row in Invoices:\n" +
		"    If row.Balance > 0:\n" +
		"        Set v to row.Balance.\n" +
		"    Else:\n" +
		"        Set v to 0.\n"
	toks, err := lexer.New(src, "nested.eac", keyword.Table()).All()
	require.NoError(t, err)

	depth := 0
	maxDepth := 0
	for _, k := range kinds(toks) {
		switch k {
		case token.INDENT:
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case token.DEDENT:
			depth--
		}
	}
	assert.Equal(t, 0, depth, "INDENT/DEDENT must balance across nested blocks")
	assert.Equal(t, 2, maxDepth, "if/else body nested inside for-each reaches depth 2")
}

func TestBlankLinesDoNotAffectIndentStack(t *testing.T) {
	src := "For each row in Invoices:\n    Set v to row.Amount.\n\n    Set w to row.Amount.\n"
	toks, err := lexer.New(src, "d.eac", keyword.Table()).All()
	require.NoError(t, err)
	indents, dedents := 0, 0
	for _, k := range kinds(toks) {
		if k == token.INDENT {
			indents++
		}
		if k == token.DEDENT {
			dedents++
		}
	}
	assert.Equal(t, 1, indents)
	assert.Equal(t, 1, dedents)
}

func TestStringEscape(t *testing.T) {
	toks, err := lexer.New(`Open workbook "a\"b\\c".`+"\n", "e.eac", keyword.Table()).All()
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[2].Kind)
	assert.Equal(t, `a"b\c`, toks[2].Value)
}

func TestUnterminatedStringEndsAtEOF(t *testing.T) {
	toks, err := lexer.New(`Open workbook "abc`, "f.eac", keyword.Table()).All()
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[2].Kind)
	assert.Equal(t, "abc", toks[2].Value)
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestRangeSpecColonForm(t *testing.T) {
	src := `In sheet "S", treat range A1:G999 as table T.` + "\n"
	toks, err := lexer.New(src, "g.eac", keyword.Table()).All()
	require.NoError(t, err)
	var rangeTok token.Token
	found := false
	for _, tk := range toks {
		if tk.Kind == token.IDENT && tk.Value == "A1:G999" {
			rangeTok = tk
			found = true
		}
	}
	require.True(t, found, "expected a single IDENT token 'A1:G999'")
	assert.Equal(t, "A1:G999", rangeTok.Value)
}

func TestUnknownCharacterIsError(t *testing.T) {
	_, err := lexer.New("Set x to 1 ~ 2.\n", "h.eac", keyword.Table()).All()
	require.Error(t, err)
	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, "h.eac", lexErr.Path)
}

func TestComparisonOperators(t *testing.T) {
	toks, err := lexer.New("Filter T where T.Balance >= 1 and T.Balance != 2.\n", "i.eac", keyword.Table()).All()
	require.NoError(t, err)
	var seen []token.Kind
	for _, tk := range toks {
		switch tk.Kind {
		case token.GTE, token.NE:
			seen = append(seen, tk.Kind)
		}
	}
	assert.Equal(t, []token.Kind{token.GTE, token.NE}, seen)
}
