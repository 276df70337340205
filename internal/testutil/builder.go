// Package testutil provides builders for inventories, rules and test
// databases.
package testutil

import (
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/phonrule/internal/domain"
)

// Builder creates contexts and rules against one inventory and registers
// them in its PhonData the way the editor would.
type Builder struct {
	t    TB
	Data *domain.PhonData
}

// TB is what a Builder fails through: a *testing.T, or a *rapid.T inside a
// property.
type TB interface {
	require.TestingT
	Helper()
}

// NewBuilder creates a builder over the standard test inventory.
func NewBuilder(t TB) *Builder {
	t.Helper()
	return &Builder{t: t, Data: Inventory()}
}

// Phoneme returns the inventory phoneme spelled sym.
func (b *Builder) Phoneme(sym string) *domain.Phoneme {
	b.t.Helper()
	p, ok := b.Data.PhonemeBySymbol(sym)
	require.True(b.t, ok, "no phoneme %q in test inventory", sym)
	return p
}

// NaturalClass returns the inventory class abbreviated abbr.
func (b *Builder) NaturalClass(abbr string) *domain.NaturalClass {
	b.t.Helper()
	nc, ok := b.Data.ClassByAbbreviation(abbr)
	require.True(b.t, ok, "no natural class %q in test inventory", abbr)
	return nc
}

// Seg returns a new segment context for sym.
func (b *Builder) Seg(sym string) *domain.SegmentContext {
	b.t.Helper()
	return domain.NewSegment(b.Phoneme(sym))
}

// Class returns a new natural class context for abbr.
func (b *Builder) Class(abbr string) *domain.ClassContext {
	b.t.Helper()
	return domain.NewClass(b.NaturalClass(abbr))
}

// WordBoundary returns a new "#" context.
func (b *Builder) WordBoundary() *domain.BoundaryContext {
	return domain.NewBoundary(b.Data.Boundary(domain.WordBoundary))
}

// MorphemeBoundary returns a new "+" context.
func (b *Builder) MorphemeBoundary() *domain.BoundaryContext {
	return domain.NewBoundary(b.Data.Boundary(domain.MorphemeBoundary))
}

// Seq returns a sequence of members, registering them in the pool.
func (b *Builder) Seq(members ...domain.Context) *domain.SequenceContext {
	for _, m := range members {
		b.Data.AddToPool(m)
	}
	return domain.NewSequence(members...)
}

// Metathesis adds a metathesis rule whose zones have the given lengths.
func (b *Builder) Metathesis(name string, zones domain.Zones, sd ...domain.Context) *domain.MetathesisRule {
	b.t.Helper()
	r := domain.NewMetathesisRule(name)
	r.StrucDesc = sd
	r.Zones = zones
	require.NoError(b.t, r.Validate())
	b.Data.AddRule(r)
	return r
}

// Regular adds a regular rule with one right-hand side.
func (b *Builder) Regular(name string, opts ...RegularOption) *domain.RegularRule {
	r := domain.NewRegularRule(name)
	for _, opt := range opts {
		opt(r)
	}
	b.Data.AddRule(r)
	return r
}

// Affix adds an affix process rule in its initial shape, then appends the
// given input columns.
func (b *Builder) Affix(name string, columns ...domain.Context) *domain.AffixProcessRule {
	r := domain.NewAffixProcessRule(name)
	r.Input = append(r.Input, columns...)
	b.Data.AddRule(r)
	return r
}
