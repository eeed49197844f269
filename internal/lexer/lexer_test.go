package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allTokens(input string) []Token {
	l := New(input, "<test>")
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == EOF {
			return out
		}
	}
}

func TestLexerTokenizesKeywordsAndIdents(t *testing.T) {
	toks := allTokens("fn add struct Point")
	types := []TokenType{FN, IDENT, STRUCT, IDENT, EOF}
	require.Len(t, toks, len(types))
	for i, want := range types {
		require.Equal(t, want, toks[i].Type, "token %d", i)
	}
}

func TestLexerTokenizesIntAndFloat(t *testing.T) {
	toks := allTokens("42 3.14")
	require.Equal(t, INT, toks[0].Type)
	require.Equal(t, "42", toks[0].Literal)
	require.Equal(t, FLOAT, toks[1].Type)
	require.Equal(t, "3.14", toks[1].Literal)
}

func TestLexerTokenizesStringLiteral(t *testing.T) {
	toks := allTokens(`"hello world"`)
	require.Equal(t, STRING, toks[0].Type)
	require.Equal(t, "hello world", toks[0].Literal)
}

func TestLexerTokenizesBlockID(t *testing.T) {
	toks := allTokens("BLOCK-PY-0001")
	require.Equal(t, BLOCK_ID, toks[0].Type)
}

func TestLexerTokenizesOperators(t *testing.T) {
	toks := allTokens("== != <= >= && || |> -> =>")
	types := []TokenType{EQ, NEQ, LTE, GTE, AND, OR, PIPELINE, ARROW, FARROW, EOF}
	require.Len(t, toks, len(types))
	for i, want := range types {
		require.Equal(t, want, toks[i].Type, "token %d", i)
	}
}

func TestLexerTracksLineAndColumn(t *testing.T) {
	toks := allTokens("a\nb")
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[1].Line)
}

func TestLexerNormalizesUnicodeIdentifiers(t *testing.T) {
	// Precomposed (NFC, a single "e with acute" rune U+00E9) and decomposed
	// (NFD, plain "e" U+0065 followed by a combining acute accent U+0301)
	// spellings of "cafe" are distinct byte sequences that must lex to the
	// same identifier literal once run through Normalize, which
	// module.Loader applies to every file it reads.
	precomposed := "caf\u00e9"
	decomposed := "cafe\u0301"
	require.NotEqual(t, precomposed, decomposed, "test fixture must use distinct byte sequences")

	toks1 := allTokens(string(Normalize([]byte(precomposed))))
	toks2 := allTokens(string(Normalize([]byte(decomposed))))
	require.Equal(t, toks1[0].Literal, toks2[0].Literal)
}

func TestNormalizeStripsUTF8BOM(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	out := Normalize(append(bom, []byte("let x = 5")...))
	require.Equal(t, "let x = 5", string(out))
}
