package domain

import (
	"fmt"
	"strings"
)

// ContextKind identifies the concrete type of a Context.
type ContextKind int

const (
	KindSequence ContextKind = iota
	KindIteration
	KindSegment
	KindNaturalClass
	KindBoundary
	KindVariable
)

func (k ContextKind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindIteration:
		return "iteration"
	case KindSegment:
		return "segment"
	case KindNaturalClass:
		return "natural-class"
	case KindBoundary:
		return "boundary"
	case KindVariable:
		return "variable"
	}
	return fmt.Sprintf("ContextKind(%d)", int(k))
}

// Context is a node of a rule's context tree. The implementations are the six
// types in this file and no others.
type Context interface {
	Object
	Kind() ContextKind
	sealed()
}

// Unbounded is the IterationContext.Max value meaning "no upper limit".
const Unbounded = -1

// SequenceContext is an ordered list of contexts. An empty sequence is valid
// and renders as an empty bracket pair.
type SequenceContext struct {
	base
	Members []Context
}

// IterationContext repeats its member between Min and Max times.
type IterationContext struct {
	base
	Member Context
	Min    int
	Max    int
}

// SegmentContext matches a single phoneme.
type SegmentContext struct {
	base
	Phoneme *Phoneme
}

// ClassContext matches any member of a natural class, optionally narrowed by
// alpha-variable feature constraints.
type ClassContext struct {
	base
	Class            *NaturalClass
	PlusConstraints  []*FeatureConstraint
	MinusConstraints []*FeatureConstraint
}

// BoundaryContext matches a word or morpheme boundary.
type BoundaryContext struct {
	base
	Marker *BoundaryMarker
}

// Variable stands for an arbitrary stretch of the input in affix rules.
type Variable struct {
	base
}

func (*SequenceContext) Kind() ContextKind  { return KindSequence }
func (*IterationContext) Kind() ContextKind { return KindIteration }
func (*SegmentContext) Kind() ContextKind   { return KindSegment }
func (*ClassContext) Kind() ContextKind     { return KindNaturalClass }
func (*BoundaryContext) Kind() ContextKind  { return KindBoundary }
func (*Variable) Kind() ContextKind         { return KindVariable }

func (*SequenceContext) sealed()  {}
func (*IterationContext) sealed() {}
func (*SegmentContext) sealed()   {}
func (*ClassContext) sealed()     {}
func (*BoundaryContext) sealed()  {}
func (*Variable) sealed()         {}

// NewSequence creates a sequence holding members. The caller is responsible
// for registering the members in the context pool.
func NewSequence(members ...Context) *SequenceContext {
	return &SequenceContext{base: newBase(), Members: members}
}

// NewIteration wraps member in an iteration.
func NewIteration(member Context, min, max int) *IterationContext {
	return &IterationContext{base: newBase(), Member: member, Min: min, Max: max}
}

// NewSegment creates a segment context. A nil phoneme is a placeholder.
func NewSegment(p *Phoneme) *SegmentContext {
	return &SegmentContext{base: newBase(), Phoneme: p}
}

// NewClass creates a natural class context.
func NewClass(nc *NaturalClass) *ClassContext {
	return &ClassContext{base: newBase(), Class: nc}
}

// NewBoundary creates a boundary context.
func NewBoundary(m *BoundaryMarker) *BoundaryContext {
	return &BoundaryContext{base: newBase(), Marker: m}
}

// NewVariable creates a variable.
func NewVariable() *Variable {
	return &Variable{base: newBase()}
}

// IsWordBoundary reports whether c is a boundary context for a word boundary.
func IsWordBoundary(c Context) bool {
	b, ok := c.(*BoundaryContext)
	return ok && b.Marker != nil && b.Marker.Kind == WordBoundary
}

// Members returns the children of c when c is a sequence, or c itself.
func Members(c Context) []Context {
	if c == nil {
		return nil
	}
	if seq, ok := c.(*SequenceContext); ok {
		return seq.Members
	}
	return []Context{c}
}

// Label returns the text a formula shows for c.
func Label(c Context) string {
	switch n := c.(type) {
	case *SequenceContext:
		parts := make([]string, len(n.Members))
		for i, m := range n.Members {
			parts[i] = Label(m)
		}
		return "{" + strings.Join(parts, " ") + "}"
	case *IterationContext:
		inner := "?"
		if n.Member != nil {
			inner = Label(n.Member)
		}
		return "(" + inner + ")" + occurrence(n.Min, n.Max)
	case *SegmentContext:
		if n.Phoneme == nil {
			return "?"
		}
		return n.Phoneme.Symbol()
	case *ClassContext:
		if n.Class == nil {
			return "[?]"
		}
		var b strings.Builder
		b.WriteString("[")
		b.WriteString(n.Class.Abbreviation)
		for _, fc := range n.PlusConstraints {
			b.WriteString(" +α" + fc.Feature)
		}
		for _, fc := range n.MinusConstraints {
			b.WriteString(" -α" + fc.Feature)
		}
		b.WriteString("]")
		return b.String()
	case *BoundaryContext:
		if n.Marker == nil {
			return "?"
		}
		return n.Marker.Symbol
	case *Variable:
		return "X"
	}
	return "?"
}

func occurrence(min, max int) string {
	switch {
	case min == 0 && max == 1:
		return ""
	case max == Unbounded:
		return fmt.Sprintf("%d+", min)
	default:
		return fmt.Sprintf("%d..%d", min, max)
	}
}
