package formula

import "github.com/zjrosen/phonrule/internal/domain"

// InsertKind is the kind of item an insertion creates.
type InsertKind int

const (
	InsertPhoneme InsertKind = iota
	InsertNaturalClass
	InsertFeatures
	InsertWordBoundary
	InsertMorphemeBoundary
	InsertVariable
	InsertIndex
	InsertColumn
)

// AllKinds lists every insert kind in menu order.
var AllKinds = []InsertKind{
	InsertPhoneme,
	InsertNaturalClass,
	InsertFeatures,
	InsertWordBoundary,
	InsertMorphemeBoundary,
	InsertVariable,
	InsertIndex,
	InsertColumn,
}

func (k InsertKind) String() string {
	switch k {
	case InsertPhoneme:
		return "phoneme"
	case InsertNaturalClass:
		return "natural-class"
	case InsertFeatures:
		return "features"
	case InsertWordBoundary:
		return "word-boundary"
	case InsertMorphemeBoundary:
		return "morpheme-boundary"
	case InsertVariable:
		return "variable"
	case InsertIndex:
		return "index"
	case InsertColumn:
		return "column"
	}
	return "unknown"
}

// ParseInsertKind maps a kind name back to its value.
func ParseInsertKind(s string) (InsertKind, bool) {
	for _, k := range AllKinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// NoOptionsMessage is shown when nothing can be inserted at the cursor.
const NoOptionsMessage = "Nothing can be inserted at this position."

// Ref carries the inventory object or input index an insertion refers to.
// A zero Ref inserts a placeholder leaf.
type Ref struct {
	Phoneme *domain.Phoneme
	Class   *domain.NaturalClass
	// Index is the 1-based input column for InsertIndex.
	Index int
}

// PhonemeRef refers to a phoneme.
func PhonemeRef(p *domain.Phoneme) Ref { return Ref{Phoneme: p} }

// ClassRef refers to a natural class.
func ClassRef(nc *domain.NaturalClass) Ref { return Ref{Class: nc} }

// IndexRef refers to a 1-based input column.
func IndexRef(n int) Ref { return Ref{Index: n} }

// envOffer reports whether kind fits at index of a left or right
// environment holding items. A word boundary goes only at the outer edge
// and at most once; nothing is placed outside one.
func envOffer(kind InsertKind, items []domain.Context, index int, left bool) bool {
	edge := index == len(items)
	outer := len(items) > 0 && domain.IsWordBoundary(items[len(items)-1])
	if left {
		edge = index == 0
		outer = len(items) > 0 && domain.IsWordBoundary(items[0])
	}
	switch kind {
	case InsertPhoneme, InsertNaturalClass, InsertFeatures, InsertMorphemeBoundary:
		return !edge || !outer
	case InsertWordBoundary:
		if !edge {
			return false
		}
		for _, c := range items {
			if domain.IsWordBoundary(c) {
				return false
			}
		}
		return true
	}
	return false
}
