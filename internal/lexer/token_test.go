package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupIdentReturnsKeywordForKnownWords(t *testing.T) {
	require.Equal(t, LET, LookupIdent("let"))
	require.Equal(t, RETURN, LookupIdent("return"))
	require.Equal(t, IDENT, LookupIdent("notAKeyword"))
}

func TestTokenPrecedenceOrdersOperatorsCorrectly(t *testing.T) {
	mul := Token{Type: STAR}
	add := Token{Type: PLUS}
	and := Token{Type: AND}
	assign := Token{Type: ASSIGN}

	require.Greater(t, mul.Precedence(), add.Precedence())
	require.Greater(t, add.Precedence(), and.Precedence())
	require.Greater(t, and.Precedence(), assign.Precedence())
	require.Equal(t, 0, Token{Type: COMMA}.Precedence())
}

func TestTokenRightAssociativeOnlyForAssign(t *testing.T) {
	require.True(t, Token{Type: ASSIGN}.RightAssociative())
	require.False(t, Token{Type: PLUS}.RightAssociative())
}

func TestTokenStringIncludesTypeLiteralAndPosition(t *testing.T) {
	tok := NewToken(IDENT, "x", 3, 7, "main.naab")
	require.Equal(t, "main.naab:3:7", tok.Position())
	require.Contains(t, tok.String(), "x")
	require.Contains(t, tok.String(), "main.naab:3:7")
}

func TestTokenTypeStringFallsBackForUnknownType(t *testing.T) {
	unknown := TokenType(9999)
	require.Contains(t, unknown.String(), "TokenType")
}
