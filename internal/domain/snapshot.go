package domain

// Snapshot is a deep copy of the mutable part of PhonData: the context pool,
// the feature constraints and the content of every rule. Inventory objects
// are shared, not copied.
type Snapshot struct {
	contexts    []Context
	constraints []*FeatureConstraint
	rules       []Rule
}

// Snapshot captures the current state.
func (d *PhonData) Snapshot() *Snapshot {
	c := newCloner()
	s := &Snapshot{
		constraints: append([]*FeatureConstraint(nil), d.FeatureConstraints...),
		rules:       make([]Rule, len(d.Rules)),
	}
	for i, r := range d.Rules {
		s.rules[i] = r.clone(c)
	}
	s.contexts = c.contexts(d.Contexts)
	return s
}

// Restore rolls the state back to s. Rule objects keep their identity: the
// content of each live rule is replaced in place, so editors bound to a rule
// stay valid. Context objects are replaced by copies, so context pointers read
// before the call must be read again. s can be restored more than once.
func (d *PhonData) Restore(s *Snapshot) {
	c := newCloner()
	rules := make(map[ID]Rule, len(s.rules))
	for _, r := range s.rules {
		cr := r.clone(c)
		rules[cr.ID()] = cr
	}
	d.Contexts = c.contexts(s.contexts)
	d.FeatureConstraints = append([]*FeatureConstraint(nil), s.constraints...)
	for _, r := range d.Rules {
		if cr, ok := rules[r.ID()]; ok {
			r.restore(cr)
		}
	}
}

// cloner copies contexts and mappings while keeping identities, and makes
// sure a node reachable along several paths (a pooled sequence member, a
// column referenced by a mapping) is copied once.
type cloner struct {
	seen map[ID]Context
}

func newCloner() *cloner {
	return &cloner{seen: make(map[ID]Context)}
}

func (c *cloner) contexts(in []Context) []Context {
	if in == nil {
		return nil
	}
	out := make([]Context, len(in))
	for i, x := range in {
		out[i] = c.context(x)
	}
	return out
}

func (c *cloner) context(in Context) Context {
	if in == nil {
		return nil
	}
	if out, ok := c.seen[in.ID()]; ok {
		return out
	}
	var out Context
	switch n := in.(type) {
	case *SequenceContext:
		seq := &SequenceContext{base: n.base}
		c.seen[in.ID()] = seq
		seq.Members = c.contexts(n.Members)
		return seq
	case *IterationContext:
		it := &IterationContext{base: n.base, Min: n.Min, Max: n.Max}
		c.seen[in.ID()] = it
		it.Member = c.context(n.Member)
		return it
	case *SegmentContext:
		out = &SegmentContext{base: n.base, Phoneme: n.Phoneme}
	case *ClassContext:
		out = &ClassContext{
			base:             n.base,
			Class:            n.Class,
			PlusConstraints:  append([]*FeatureConstraint(nil), n.PlusConstraints...),
			MinusConstraints: append([]*FeatureConstraint(nil), n.MinusConstraints...),
		}
	case *BoundaryContext:
		out = &BoundaryContext{base: n.base, Marker: n.Marker}
	case *Variable:
		out = &Variable{base: n.base}
	}
	c.seen[in.ID()] = out
	return out
}

func (c *cloner) mapping(in Mapping) Mapping {
	switch m := in.(type) {
	case *CopyFromInput:
		return &CopyFromInput{base: m.base, Content: c.context(m.Content)}
	case *ModifyFromInput:
		return &ModifyFromInput{base: m.base, Content: c.context(m.Content), Modification: m.Modification}
	case *InsertPhones:
		return &InsertPhones{base: m.base, Phonemes: append([]*Phoneme(nil), m.Phonemes...)}
	case *InsertNaturalClass:
		return &InsertNaturalClass{base: m.base, Class: m.Class}
	}
	return in
}
