package envstring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes environment strings. It works on runes because phoneme
// symbols are rarely ASCII.
type Lexer struct {
	input string
	pos   int  // byte offset of ch
	next  int  // byte offset after ch
	ch    rune // current character, 0 at end of input
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		return tok
	case '/':
		tok.Type, tok.Literal = TokenSlash, "/"
	case '_':
		tok.Type, tok.Literal = TokenUnderscore, "_"
	case '#':
		tok.Type, tok.Literal = TokenHash, "#"
	case '+':
		tok.Type, tok.Literal = TokenPlus, "+"
	case '(':
		tok.Type, tok.Literal = TokenLParen, "("
	case ')':
		tok.Type, tok.Literal = TokenRParen, ")"
	case ']':
		tok.Type, tok.Literal = TokenIllegal, "]"
	case '[':
		return l.readClass()
	default:
		tok.Type = TokenLiteral
		tok.Literal = l.readLiteral()
		return tok
	}
	l.readChar()
	return tok
}

func (l *Lexer) readChar() {
	if l.next >= len(l.input) {
		l.pos = len(l.input)
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.next:])
	l.pos = l.next
	l.ch = r
	l.next += size
}

func (l *Lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readClass reads "[abbr]" with an optional reduplication marker "^n" before
// the closing bracket. An unterminated bracket is illegal up to the end of
// input.
func (l *Lexer) readClass() Token {
	tok := Token{Pos: l.pos}
	start := l.pos
	l.readChar() // [
	var abbr strings.Builder
	for l.ch != ']' && l.ch != 0 {
		if l.ch == '^' {
			tok.Redup = true
			for l.peekChar() >= '0' && l.peekChar() <= '9' {
				l.readChar()
			}
		} else if !unicode.IsSpace(l.ch) {
			abbr.WriteRune(l.ch)
		}
		l.readChar()
	}
	if l.ch == 0 {
		tok.Type = TokenIllegal
		tok.Literal = l.input[start:]
		return tok
	}
	l.readChar() // ]
	tok.Type = TokenClass
	tok.Literal = abbr.String()
	return tok
}

func isSpecial(ch rune) bool {
	switch ch {
	case '/', '_', '#', '+', '(', ')', '[', ']', 0:
		return true
	}
	return unicode.IsSpace(ch)
}

func (l *Lexer) readLiteral() string {
	start := l.pos
	for !isSpecial(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}
