package domain

// Phoneme is an inventory phoneme. The first representation is the symbol
// used when displaying and serializing rules.
type Phoneme struct {
	ID              ID
	Name            string
	Representations []string
}

// Symbol returns the display symbol of the phoneme.
func (p *Phoneme) Symbol() string {
	if p == nil || len(p.Representations) == 0 {
		return "?"
	}
	return p.Representations[0]
}

// HasRepresentation reports whether s is one of the phoneme's spellings.
func (p *Phoneme) HasRepresentation(s string) bool {
	for _, r := range p.Representations {
		if r == s {
			return true
		}
	}
	return false
}

// NaturalClass is an inventory natural class, either an explicit list of
// phonemes or a feature-defined class.
type NaturalClass struct {
	ID           ID
	Name         string
	Abbreviation string
	// Features marks a class defined by a feature bundle rather than by a
	// phoneme list.
	Features bool
	Phonemes []*Phoneme
}

// BoundaryKind distinguishes word and morpheme boundaries.
type BoundaryKind int

const (
	WordBoundary BoundaryKind = iota
	MorphemeBoundary
)

func (k BoundaryKind) String() string {
	if k == MorphemeBoundary {
		return "morpheme"
	}
	return "word"
}

// BoundaryMarker is an inventory boundary symbol.
type BoundaryMarker struct {
	ID     ID
	Name   string
	Kind   BoundaryKind
	Symbol string
}

// FeatureConstraint is an alpha-variable feature constraint ("alpha voice")
// referenced by natural class contexts. Constraints are owned by PhonData.
type FeatureConstraint struct {
	ID      ID
	Feature string
}

// NewPhoneme creates a phoneme with the given name and spellings.
func NewPhoneme(name string, reps ...string) *Phoneme {
	if len(reps) == 0 {
		reps = []string{name}
	}
	return &Phoneme{ID: NewID(), Name: name, Representations: reps}
}

// NewNaturalClass creates a phoneme-list natural class.
func NewNaturalClass(name, abbr string, phonemes ...*Phoneme) *NaturalClass {
	return &NaturalClass{ID: NewID(), Name: name, Abbreviation: abbr, Phonemes: phonemes}
}

// NewBoundaryMarker creates a boundary marker.
func NewBoundaryMarker(name string, kind BoundaryKind, symbol string) *BoundaryMarker {
	return &BoundaryMarker{ID: NewID(), Name: name, Kind: kind, Symbol: symbol}
}
