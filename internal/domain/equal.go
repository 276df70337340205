package domain

// Equal reports whether a and b are structurally equal. Identity is ignored;
// inventory references compare by pointer. A one-member sequence is equal to
// its member, because promotion and demotion convert between the two forms
// without changing what the rule matches.
func Equal(a, b Context) bool {
	a, b = unwrap(a), unwrap(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *SequenceContext:
		y := b.(*SequenceContext)
		return EqualSlices(x.Members, y.Members)
	case *IterationContext:
		y := b.(*IterationContext)
		return x.Min == y.Min && x.Max == y.Max && Equal(x.Member, y.Member)
	case *SegmentContext:
		return x.Phoneme == b.(*SegmentContext).Phoneme
	case *ClassContext:
		y := b.(*ClassContext)
		return x.Class == y.Class &&
			sameConstraints(x.PlusConstraints, y.PlusConstraints) &&
			sameConstraints(x.MinusConstraints, y.MinusConstraints)
	case *BoundaryContext:
		return x.Marker == b.(*BoundaryContext).Marker
	case *Variable:
		return true
	}
	return false
}

// EqualSlices compares two context lists element by element with Equal.
func EqualSlices(a, b []Context) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func unwrap(c Context) Context {
	for {
		seq, ok := c.(*SequenceContext)
		if !ok || len(seq.Members) != 1 {
			return c
		}
		c = seq.Members[0]
	}
}

func sameConstraints(a, b []*FeatureConstraint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Feature != b[i].Feature {
			return false
		}
	}
	return true
}
