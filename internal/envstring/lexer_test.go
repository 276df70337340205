package envstring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexer_Tokens(t *testing.T) {
	l := NewLexer("/ [C] (#) _ tʃa+")

	want := []struct {
		typ TokenType
		lit string
	}{
		{TokenSlash, "/"},
		{TokenClass, "C"},
		{TokenLParen, "("},
		{TokenHash, "#"},
		{TokenRParen, ")"},
		{TokenUnderscore, "_"},
		{TokenLiteral, "tʃa"},
		{TokenPlus, "+"},
		{TokenEOF, ""},
	}
	for i, w := range want {
		tok := l.NextToken()
		require.Equal(t, w.typ, tok.Type, "token %d", i)
		require.Equal(t, w.lit, tok.Literal, "token %d", i)
	}
}

func TestLexer_ClassWithReduplication(t *testing.T) {
	tok := NewLexer("[V^1]").NextToken()
	require.Equal(t, TokenClass, tok.Type)
	require.Equal(t, "V", tok.Literal)
	require.True(t, tok.Redup)
}

func TestLexer_UnterminatedClass(t *testing.T) {
	l := NewLexer("a [C")
	require.Equal(t, TokenLiteral, l.NextToken().Type)
	tok := l.NextToken()
	require.Equal(t, TokenIllegal, tok.Type)
	require.Equal(t, "[C", tok.Literal)
	require.Equal(t, 2, tok.Pos)
	require.Equal(t, TokenEOF, l.NextToken().Type)
}

func TestLexer_PositionsAreByteOffsets(t *testing.T) {
	l := NewLexer("ʃ _")
	require.Equal(t, 0, l.NextToken().Pos)
	require.Equal(t, len("ʃ "), l.NextToken().Pos)
}
