package domain

// RightHandSide is one rewrite of a regular rule: the structural change and
// the optional environment it applies in.
type RightHandSide struct {
	base
	StrucChange  []Context
	LeftContext  Context
	RightContext Context
}

// NewRightHandSide creates an empty right-hand side.
func NewRightHandSide() *RightHandSide {
	return &RightHandSide{base: newBase()}
}

// RegularRule rewrites StrucDesc as described by each right-hand side.
type RegularRule struct {
	ruleBase
	StrucDesc      []Context
	RightHandSides []*RightHandSide
}

// NewRegularRule creates a rule with one empty right-hand side.
func NewRegularRule(name string) *RegularRule {
	return &RegularRule{
		ruleBase:       ruleBase{base: newBase(), name: name},
		RightHandSides: []*RightHandSide{NewRightHandSide()},
	}
}

func (r *RegularRule) Kind() RuleKind { return RuleRegular }

func (r *RegularRule) Roots() []Context {
	out := append([]Context(nil), r.StrucDesc...)
	for _, rhs := range r.RightHandSides {
		out = append(out, rhs.StrucChange...)
		if rhs.LeftContext != nil {
			out = append(out, rhs.LeftContext)
		}
		if rhs.RightContext != nil {
			out = append(out, rhs.RightContext)
		}
	}
	return out
}

func (r *RegularRule) clone(c *cloner) Rule {
	out := &RegularRule{ruleBase: r.ruleBase, StrucDesc: c.contexts(r.StrucDesc)}
	out.RightHandSides = make([]*RightHandSide, len(r.RightHandSides))
	for i, rhs := range r.RightHandSides {
		out.RightHandSides[i] = &RightHandSide{
			base:         rhs.base,
			StrucChange:  c.contexts(rhs.StrucChange),
			LeftContext:  c.context(rhs.LeftContext),
			RightContext: c.context(rhs.RightContext),
		}
	}
	return out
}

// restore copies field values into the existing right-hand side objects so
// editors bound to a right-hand side keep a valid pointer.
func (r *RegularRule) restore(from Rule) {
	src := from.(*RegularRule)
	r.name = src.name
	r.StrucDesc = src.StrucDesc
	byID := make(map[ID]*RightHandSide, len(r.RightHandSides))
	for _, rhs := range r.RightHandSides {
		byID[rhs.id] = rhs
	}
	out := make([]*RightHandSide, len(src.RightHandSides))
	for i, s := range src.RightHandSides {
		if cur, ok := byID[s.id]; ok {
			cur.StrucChange = s.StrucChange
			cur.LeftContext = s.LeftContext
			cur.RightContext = s.RightContext
			cur.dead = s.dead
			out[i] = cur
			continue
		}
		out[i] = s
	}
	r.RightHandSides = out
}
