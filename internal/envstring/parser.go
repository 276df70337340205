package envstring

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
)

// Lookup resolves the symbols of an environment string against an
// inventory.
type Lookup interface {
	PhonemeBySymbol(symbol string) (*domain.Phoneme, bool)
	ClassByAbbreviation(abbr string) (*domain.NaturalClass, bool)
	BoundaryBySymbol(symbol string) (*domain.BoundaryMarker, bool)
}

// Severity grades a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityInfo
)

func (s Severity) String() string {
	if s == SeverityInfo {
		return "info"
	}
	return "warning"
}

// Diagnostic reports a span of the input the parser skipped or
// reinterpreted.
type Diagnostic struct {
	Pos      int
	Text     string
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d: %s: %s", d.Pos, d.Severity, d.Message)
}

// Diagnostics is the list of problems found while parsing.
type Diagnostics []Diagnostic

// Warnings returns the diagnostics that dropped input.
func (ds Diagnostics) Warnings() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Environment is a parsed environment: the items to the left and right of
// the focus.
type Environment struct {
	Left  []domain.Context
	Right []domain.Context
}

// Parser parses environment strings. It never fails: unknown or malformed
// spans are dropped and reported.
type Parser struct {
	lexer  *Lexer
	lookup Lookup
	cur    Token
	diags  Diagnostics
}

// NewParser creates a parser for input.
func NewParser(input string, lookup Lookup) *Parser {
	p := &Parser{lexer: NewLexer(input), lookup: lookup}
	p.nextToken()
	return p
}

// Parse parses input with a fresh parser.
func Parse(input string, lookup Lookup) (*Environment, Diagnostics) {
	return NewParser(input, lookup).Parse()
}

// Parse reads "/ left _ right". A missing slash or underscore is reported;
// without an underscore everything is read as the left side.
func (p *Parser) Parse() (*Environment, Diagnostics) {
	env := &Environment{}
	if p.cur.Type == TokenSlash {
		p.nextToken()
	} else {
		p.info(p.cur, "missing '/' before environment")
	}
	env.Left = p.parseSide(TokenUnderscore)
	if p.cur.Type == TokenUnderscore {
		p.nextToken()
		env.Right = p.parseSide(TokenEOF)
	} else {
		p.warn(p.cur, "missing '_' between left and right environment")
	}
	if len(p.diags) > 0 {
		log.Debug(log.CatEnv, "parsed with diagnostics", "count", len(p.diags))
	}
	return env, p.diags
}

func (p *Parser) nextToken() {
	p.cur = p.lexer.NextToken()
}

func (p *Parser) warn(tok Token, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Pos: tok.Pos, Text: tok.Literal, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) info(tok Token, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Pos: tok.Pos, Text: tok.Literal, Message: fmt.Sprintf(format, args...), Severity: SeverityInfo})
}

func (p *Parser) parseSide(stop TokenType) []domain.Context {
	var out []domain.Context
	for p.cur.Type != TokenEOF && p.cur.Type != stop {
		out = append(out, p.parseItem()...)
	}
	return out
}

func (p *Parser) parseItem() []domain.Context {
	tok := p.cur
	switch tok.Type {
	case TokenHash, TokenPlus:
		p.nextToken()
		b, ok := p.lookup.BoundaryBySymbol(tok.Literal)
		if !ok {
			p.warn(tok, "no boundary marker %q in the inventory", tok.Literal)
			return nil
		}
		return []domain.Context{domain.NewBoundary(b)}
	case TokenClass:
		p.nextToken()
		if tok.Redup {
			p.info(tok, "reduplication marker on [%s] ignored", tok.Literal)
		}
		nc, ok := p.lookup.ClassByAbbreviation(tok.Literal)
		if !ok {
			p.warn(tok, "unknown natural class [%s]", tok.Literal)
			return nil
		}
		return []domain.Context{domain.NewClass(nc)}
	case TokenLiteral:
		p.nextToken()
		return p.splitLiteral(tok)
	case TokenLParen:
		return p.parseGroup()
	case TokenRParen:
		p.warn(tok, "unmatched ')'")
	case TokenSlash, TokenUnderscore:
		p.warn(tok, "unexpected %s", tok.Type)
	default:
		p.warn(tok, "unrecognized %q", tok.Literal)
	}
	p.nextToken()
	return nil
}

// parseGroup reads "( items )" as an optional occurrence of the items.
func (p *Parser) parseGroup() []domain.Context {
	open := p.cur
	p.nextToken()
	var inner []domain.Context
	for p.cur.Type != TokenRParen && p.cur.Type != TokenEOF && p.cur.Type != TokenUnderscore {
		inner = append(inner, p.parseItem()...)
	}
	if p.cur.Type == TokenRParen {
		p.nextToken()
	} else {
		p.warn(open, "unclosed '('")
	}
	var member domain.Context
	switch len(inner) {
	case 0:
		p.warn(open, "empty group dropped")
		return nil
	case 1:
		member = inner[0]
	default:
		member = domain.NewSequence(inner...)
	}
	return []domain.Context{domain.NewIteration(member, 0, 1)}
}

// splitLiteral matches a run of characters against the phoneme inventory,
// taking the longest known symbol at each position. Matching works on
// grapheme clusters so a base letter is never split from its diacritics.
func (p *Parser) splitLiteral(tok Token) []domain.Context {
	var clusters []string
	var offsets []int
	gr := uniseg.NewGraphemes(tok.Literal)
	for gr.Next() {
		from, _ := gr.Positions()
		clusters = append(clusters, gr.Str())
		offsets = append(offsets, from)
	}

	var out []domain.Context
	for i := 0; i < len(clusters); {
		matched := 0
		for j := len(clusters); j > i; j-- {
			if ph, ok := p.lookup.PhonemeBySymbol(strings.Join(clusters[i:j], "")); ok {
				out = append(out, domain.NewSegment(ph))
				matched = j - i
				break
			}
		}
		if matched == 0 {
			p.warn(Token{Pos: tok.Pos + offsets[i], Literal: clusters[i]}, "unknown phoneme %q", clusters[i])
			i++
			continue
		}
		i += matched
	}
	return out
}
