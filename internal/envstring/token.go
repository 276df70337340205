// Package envstring parses and formats the environment notation of regular
// rules: "/ left _ right", where each side is a run of phoneme literals,
// natural classes in brackets ("[C]"), boundaries ("#", "+") and optional
// groups in parentheses.
package envstring

// TokenType represents the type of lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenSlash      // /
	TokenUnderscore // _
	TokenHash       // #
	TokenPlus       // +
	TokenLParen     // (
	TokenRParen     // )
	TokenClass      // [abbr] or [abbr^1]; Literal holds the abbreviation
	TokenLiteral    // run of phoneme symbols
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "end of input",
	TokenIllegal:    "illegal",
	TokenSlash:      "'/'",
	TokenUnderscore: "'_'",
	TokenHash:       "'#'",
	TokenPlus:       "'+'",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenClass:      "natural class",
	TokenLiteral:    "phonemes",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "unknown"
}

// Token is a lexical token. Pos is the byte offset of its first character.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
	// Redup is set on class tokens carrying a reduplication marker.
	Redup bool
}
