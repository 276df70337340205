package domain

import "strings"

// PhonData is the phonological data of a language: the inventory, the shared
// context pool, the feature constraints and the rules.
type PhonData struct {
	Phonemes       []*Phoneme
	NaturalClasses []*NaturalClass
	Boundaries     []*BoundaryMarker

	// Contexts is the shared pool owning every member of every sequence.
	Contexts []Context
	// FeatureConstraints owns the constraints referenced by class contexts.
	FeatureConstraints []*FeatureConstraint

	Rules []Rule
}

// NewPhonData returns an empty data set with the standard word (#) and
// morpheme (+) boundary markers.
func NewPhonData() *PhonData {
	return &PhonData{
		Boundaries: []*BoundaryMarker{
			NewBoundaryMarker("word", WordBoundary, "#"),
			NewBoundaryMarker("morpheme", MorphemeBoundary, "+"),
		},
	}
}

// AddToPool registers c in the shared context pool. Adding twice is a no-op.
func (d *PhonData) AddToPool(c Context) {
	if c == nil || d.InPool(c) {
		return
	}
	d.Contexts = append(d.Contexts, c)
}

// RemoveFromPool unregisters c without deleting it, for a context that moves
// back into a rule field.
func (d *PhonData) RemoveFromPool(c Context) bool {
	var ok bool
	d.Contexts, ok = Remove(d.Contexts, c)
	return ok
}

// InPool reports whether c is owned by the shared pool.
func (d *PhonData) InPool(c Context) bool {
	return IndexOf(d.Contexts, c) >= 0
}

// DeleteContext destroys c and everything it owns. Cross-references are
// unlinked first: sequence and iteration children are deleted, inventory
// references are cleared, and feature constraints no other live context uses
// are dropped. The caller detaches c from its parent field.
func (d *PhonData) DeleteContext(c Context) {
	if c == nil || !c.Live() {
		return
	}
	var released []*FeatureConstraint
	switch n := c.(type) {
	case *SequenceContext:
		members := n.Members
		n.Members = nil
		for _, m := range members {
			d.DeleteContext(m)
		}
	case *IterationContext:
		member := n.Member
		n.Member = nil
		d.DeleteContext(member)
	case *SegmentContext:
		n.Phoneme = nil
	case *ClassContext:
		released = append(append(released, n.PlusConstraints...), n.MinusConstraints...)
		n.Class = nil
		n.PlusConstraints = nil
		n.MinusConstraints = nil
	case *BoundaryContext:
		n.Marker = nil
	case *Variable:
	}
	d.RemoveFromPool(c)
	c.(killable).kill()
	for _, fc := range released {
		if !d.constraintInUse(fc) {
			d.FeatureConstraints, _ = Remove(d.FeatureConstraints, fc)
		}
	}
}

// DeleteMapping destroys m. Mapping contents belong to the rule input and
// are left alone.
func (d *PhonData) DeleteMapping(m Mapping) {
	if m == nil || !m.Live() {
		return
	}
	switch x := m.(type) {
	case *CopyFromInput:
		x.Content = nil
	case *ModifyFromInput:
		x.Content = nil
		x.Modification = nil
	case *InsertPhones:
		x.Phonemes = nil
	case *InsertNaturalClass:
		x.Class = nil
	}
	m.(killable).kill()
}

// Constraint returns the pooled constraint for feature, creating it on first
// use.
func (d *PhonData) Constraint(feature string) *FeatureConstraint {
	for _, fc := range d.FeatureConstraints {
		if fc.Feature == feature {
			return fc
		}
	}
	fc := &FeatureConstraint{ID: NewID(), Feature: feature}
	d.FeatureConstraints = append(d.FeatureConstraints, fc)
	return fc
}

func (d *PhonData) constraintInUse(fc *FeatureConstraint) bool {
	used := false
	d.Walk(func(c Context) bool {
		if cc, ok := c.(*ClassContext); ok && cc.Live() {
			if IndexOf(cc.PlusConstraints, fc) >= 0 || IndexOf(cc.MinusConstraints, fc) >= 0 {
				used = true
			}
		}
		return !used
	})
	return used
}

// Walk visits every context reachable from the pool and the rules, depth
// first. Returning false from fn stops the walk.
func (d *PhonData) Walk(fn func(Context) bool) {
	seen := make(map[Context]bool)
	var visit func(c Context) bool
	visit = func(c Context) bool {
		if c == nil || seen[c] {
			return true
		}
		seen[c] = true
		if !fn(c) {
			return false
		}
		switch n := c.(type) {
		case *SequenceContext:
			for _, m := range n.Members {
				if !visit(m) {
					return false
				}
			}
		case *IterationContext:
			return visit(n.Member)
		}
		return true
	}
	for _, r := range d.Rules {
		for _, c := range r.Roots() {
			if !visit(c) {
				return
			}
		}
	}
	for _, c := range d.Contexts {
		if !visit(c) {
			return
		}
	}
}

// PhonemeBySymbol finds a phoneme by one of its representations.
func (d *PhonData) PhonemeBySymbol(symbol string) (*Phoneme, bool) {
	for _, p := range d.Phonemes {
		if p.HasRepresentation(symbol) {
			return p, true
		}
	}
	return nil, false
}

// ClassByAbbreviation finds a natural class by abbreviation, ignoring case.
func (d *PhonData) ClassByAbbreviation(abbr string) (*NaturalClass, bool) {
	for _, nc := range d.NaturalClasses {
		if strings.EqualFold(nc.Abbreviation, abbr) {
			return nc, true
		}
	}
	return nil, false
}

// BoundaryBySymbol finds a boundary marker by symbol.
func (d *PhonData) BoundaryBySymbol(symbol string) (*BoundaryMarker, bool) {
	for _, b := range d.Boundaries {
		if b.Symbol == symbol {
			return b, true
		}
	}
	return nil, false
}

// Boundary returns the first marker of the given kind, or nil.
func (d *PhonData) Boundary(kind BoundaryKind) *BoundaryMarker {
	for _, b := range d.Boundaries {
		if b.Kind == kind {
			return b
		}
	}
	return nil
}

// AddRule appends r to the rule list.
func (d *PhonData) AddRule(r Rule) {
	d.Rules = append(d.Rules, r)
}

// Rule returns the rule with the given identity.
func (d *PhonData) Rule(id ID) (Rule, error) {
	for _, r := range d.Rules {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, &RuleNotFoundError{Key: string(id)}
}

// RuleByName returns the first rule named name.
func (d *PhonData) RuleByName(name string) (Rule, error) {
	for _, r := range d.Rules {
		if r.Name() == name {
			return r, nil
		}
	}
	return nil, &RuleNotFoundError{Key: name}
}

// RemoveRule deletes r and every context it holds.
func (d *PhonData) RemoveRule(r Rule) bool {
	var ok bool
	d.Rules, ok = Remove(d.Rules, r)
	if !ok {
		return false
	}
	for _, c := range r.Roots() {
		d.DeleteContext(c)
	}
	r.(killable).kill()
	return true
}
