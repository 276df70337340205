package ruledoc

import (
	"fmt"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
)

// Decode builds the rule described by doc against data's inventory and adds
// it to data. Sequence members go to the shared pool. Nothing is added when
// decoding fails.
func Decode(data *domain.PhonData, doc Doc) (domain.Rule, error) {
	d := &decoder{data: data}
	constraints := len(data.FeatureConstraints)
	r, err := d.rule(doc)
	if err != nil {
		// Constraint only appends, so this drops the ones created here.
		data.FeatureConstraints = data.FeatureConstraints[:constraints]
		return nil, fmt.Errorf("rule %s: %w", doc.Name, err)
	}
	for _, c := range d.pooled {
		data.AddToPool(c)
	}
	data.AddRule(r)
	return r, nil
}

type decoder struct {
	data   *domain.PhonData
	pooled []domain.Context
}

func (d *decoder) rule(doc Doc) (domain.Rule, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	switch doc.Kind {
	case domain.RuleAffixProcess:
		return d.affix(doc)
	case domain.RuleMetathesis:
		return d.metathesis(doc)
	case domain.RuleRegular:
		return d.regular(doc)
	}
	return nil, fmt.Errorf("unknown rule kind %q", doc.Kind)
}

func (d *decoder) affix(doc Doc) (domain.Rule, error) {
	r := domain.NewAffixProcessRule(doc.Name)
	input, err := d.nodes(doc.Input)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	r.Input = input
	r.Output = nil

	column := func(i, n int) (domain.Context, error) {
		if n < 1 || n > len(input) {
			return nil, fmt.Errorf("output %d: no input column %d", i+1, n)
		}
		return input[n-1], nil
	}
	for i, m := range doc.Output {
		switch {
		case m.Copy > 0:
			c, err := column(i, m.Copy)
			if err != nil {
				return nil, err
			}
			r.Output = append(r.Output, domain.NewCopyFromInput(c))
		case m.Modify > 0:
			c, err := column(i, m.Modify)
			if err != nil {
				return nil, err
			}
			var nc *domain.NaturalClass
			if m.Class != "" {
				if nc, err = d.class(m.Class); err != nil {
					return nil, fmt.Errorf("output %d: %w", i+1, err)
				}
			}
			r.Output = append(r.Output, domain.NewModifyFromInput(c, nc))
		case len(m.Phones) > 0:
			phones := make([]*domain.Phoneme, len(m.Phones))
			for j, sym := range m.Phones {
				p, ok := d.data.PhonemeBySymbol(sym)
				if !ok {
					return nil, fmt.Errorf("output %d: unknown phoneme %q", i+1, sym)
				}
				phones[j] = p
			}
			r.Output = append(r.Output, domain.NewInsertPhones(phones...))
		case m.Class != "":
			nc, err := d.class(m.Class)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i+1, err)
			}
			r.Output = append(r.Output, domain.NewInsertNaturalClass(nc))
		default:
			return nil, fmt.Errorf("output %d: empty mapping", i+1)
		}
	}
	return r, nil
}

func (d *decoder) metathesis(doc Doc) (domain.Rule, error) {
	r := domain.NewMetathesisRule(doc.Name)
	sd, err := d.nodes(doc.StrucDesc)
	if err != nil {
		return nil, fmt.Errorf("struc_desc: %w", err)
	}
	r.StrucDesc = sd
	r.MiddleWithLeftSwitch = doc.MiddleWithLeftSwitch

	switch {
	case doc.Zones != nil && doc.Indices != nil:
		return nil, fmt.Errorf("give zones or indices, not both")
	case doc.Zones != nil:
		r.Zones = *doc.Zones
	case doc.Indices != nil:
		zs, err := domain.ZonesFromIndices(*doc.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		r.Zones = zs
	default:
		// Without zones everything is environment.
		r.Zones[domain.ZoneLeftEnv] = len(sd)
	}
	for _, z := range domain.AllZones {
		if r.Zones.Len(z) < 0 {
			return nil, fmt.Errorf("zone %s has negative length", z)
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (d *decoder) regular(doc Doc) (domain.Rule, error) {
	r := domain.NewRegularRule(doc.Name)
	sd, err := d.nodes(doc.StrucDesc)
	if err != nil {
		return nil, fmt.Errorf("struc_desc: %w", err)
	}
	r.StrucDesc = sd
	if len(doc.RightHandSides) == 0 {
		return r, nil
	}

	r.RightHandSides = nil
	for i, rd := range doc.RightHandSides {
		rhs, err := d.rhs(rd)
		if err != nil {
			return nil, fmt.Errorf("rhs %d: %w", i+1, err)
		}
		r.RightHandSides = append(r.RightHandSides, rhs)
	}
	return r, nil
}

func (d *decoder) rhs(rd RightHandSide) (*domain.RightHandSide, error) {
	rhs := domain.NewRightHandSide()
	sc, err := d.nodes(rd.StrucChange)
	if err != nil {
		return nil, fmt.Errorf("struc_change: %w", err)
	}
	rhs.StrucChange = sc

	if rd.Env != "" {
		if rd.Left != nil || rd.Right != nil {
			return nil, fmt.Errorf("give env or left/right, not both")
		}
		env, diags := envstring.Parse(rd.Env, d.data)
		if w := diags.Warnings(); len(w) > 0 {
			return nil, fmt.Errorf("env %q: %s", rd.Env, w[0])
		}
		rhs.LeftContext = d.side(env.Left)
		rhs.RightContext = d.side(env.Right)
		return rhs, nil
	}
	if rd.Left != nil {
		if rhs.LeftContext, err = d.node(*rd.Left); err != nil {
			return nil, fmt.Errorf("left: %w", err)
		}
	}
	if rd.Right != nil {
		if rhs.RightContext, err = d.node(*rd.Right); err != nil {
			return nil, fmt.Errorf("right: %w", err)
		}
	}
	return rhs, nil
}

// side shapes parsed environment items into one context, pooling the
// members of every sequence.
func (d *decoder) side(items []domain.Context) domain.Context {
	c := side(items)
	d.adopt(c)
	return c
}

func (d *decoder) adopt(c domain.Context) {
	switch n := c.(type) {
	case *domain.SequenceContext:
		for _, m := range n.Members {
			d.pooled = append(d.pooled, m)
			d.adopt(m)
		}
	case *domain.IterationContext:
		d.adopt(n.Member)
	}
}

func (d *decoder) nodes(ns []Node) ([]domain.Context, error) {
	out := make([]domain.Context, 0, len(ns))
	for i, n := range ns {
		c, err := d.node(n)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *decoder) node(n Node) (domain.Context, error) {
	set := 0
	for _, on := range []bool{n.Seg != "", n.Class != "", n.Boundary != "", n.Var, n.Seq != nil, n.Iter != nil, n.Placeholder != ""} {
		if on {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("a node sets exactly one of seg, class, boundary, var, seq, iter, placeholder")
	}
	if (len(n.Plus) > 0 || len(n.Minus) > 0) && n.Class == "" {
		return nil, fmt.Errorf("feature constraints need a class")
	}

	switch {
	case n.Seg != "":
		p, ok := d.data.PhonemeBySymbol(n.Seg)
		if !ok {
			return nil, fmt.Errorf("unknown phoneme %q", n.Seg)
		}
		return domain.NewSegment(p), nil
	case n.Class != "":
		nc, err := d.class(n.Class)
		if err != nil {
			return nil, err
		}
		cc := domain.NewClass(nc)
		for _, f := range n.Plus {
			cc.PlusConstraints = append(cc.PlusConstraints, d.data.Constraint(f))
		}
		for _, f := range n.Minus {
			cc.MinusConstraints = append(cc.MinusConstraints, d.data.Constraint(f))
		}
		return cc, nil
	case n.Boundary != "":
		b, ok := d.data.BoundaryBySymbol(n.Boundary)
		if !ok {
			return nil, fmt.Errorf("unknown boundary %q", n.Boundary)
		}
		return domain.NewBoundary(b), nil
	case n.Var:
		return domain.NewVariable(), nil
	case n.Seq != nil:
		members, err := d.nodes(*n.Seq)
		if err != nil {
			return nil, err
		}
		d.pooled = append(d.pooled, members...)
		return domain.NewSequence(members...), nil
	case n.Iter != nil:
		if n.Iter.Min < 0 || (n.Iter.Max != domain.Unbounded && n.Iter.Max < n.Iter.Min) {
			return nil, fmt.Errorf("bad occurrence %d..%d", n.Iter.Min, n.Iter.Max)
		}
		member, err := d.node(n.Iter.Of)
		if err != nil {
			return nil, err
		}
		return domain.NewIteration(member, n.Iter.Min, n.Iter.Max), nil
	}

	switch n.Placeholder {
	case PlaceholderSegment:
		return domain.NewSegment(nil), nil
	case PlaceholderClass:
		return domain.NewClass(nil), nil
	case PlaceholderBoundary:
		return domain.NewBoundary(nil), nil
	}
	return nil, fmt.Errorf("unknown placeholder %q", n.Placeholder)
}

func (d *decoder) class(abbr string) (*domain.NaturalClass, error) {
	nc, ok := d.data.ClassByAbbreviation(abbr)
	if !ok {
		return nil, fmt.Errorf("unknown natural class %q", abbr)
	}
	return nc, nil
}
