package ruledoc

import (
	"fmt"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
)

// Encode returns the document form of r. Regular rule environments are
// written as environment strings when the string parses back to the same
// contexts against lookup.
func Encode(r domain.Rule, lookup envstring.Lookup) (Doc, error) {
	doc := Doc{Name: r.Name(), Kind: r.Kind()}
	var err error
	switch x := r.(type) {
	case *domain.AffixProcessRule:
		err = encodeAffix(&doc, x)
	case *domain.MetathesisRule:
		if verr := x.Validate(); verr != nil {
			return Doc{}, fmt.Errorf("rule %s: %w", r.Name(), verr)
		}
		doc.StrucDesc = encodeNodes(x.StrucDesc)
		zones := x.Zones
		doc.Zones = &zones
		doc.MiddleWithLeftSwitch = x.MiddleWithLeftSwitch
	case *domain.RegularRule:
		doc.StrucDesc = encodeNodes(x.StrucDesc)
		for _, rhs := range x.RightHandSides {
			doc.RightHandSides = append(doc.RightHandSides, encodeRHS(rhs, lookup))
		}
	default:
		err = fmt.Errorf("unsupported rule kind %s", r.Kind())
	}
	if err != nil {
		return Doc{}, fmt.Errorf("rule %s: %w", r.Name(), err)
	}
	return doc, nil
}

func encodeAffix(doc *Doc, r *domain.AffixProcessRule) error {
	doc.Input = encodeNodes(r.Input)
	doc.Output = []Mapping{}
	for i, m := range r.Output {
		var out Mapping
		switch x := m.(type) {
		case *domain.CopyFromInput:
			col := r.InputIndex(x.Content)
			if col < 0 {
				return fmt.Errorf("output %d copies a context outside the input", i+1)
			}
			out.Copy = col + 1
		case *domain.ModifyFromInput:
			col := r.InputIndex(x.Content)
			if col < 0 {
				return fmt.Errorf("output %d modifies a context outside the input", i+1)
			}
			out.Modify = col + 1
			if x.Modification != nil {
				out.Class = x.Modification.Abbreviation
			}
		case *domain.InsertPhones:
			for _, p := range x.Phonemes {
				out.Phones = append(out.Phones, p.Symbol())
			}
			if len(out.Phones) == 0 {
				return fmt.Errorf("output %d inserts no phones", i+1)
			}
		case *domain.InsertNaturalClass:
			if x.Class == nil {
				return fmt.Errorf("output %d inserts an unset natural class", i+1)
			}
			out.Class = x.Class.Abbreviation
		}
		doc.Output = append(doc.Output, out)
	}
	return nil
}

func encodeRHS(rhs *domain.RightHandSide, lookup envstring.Lookup) RightHandSide {
	out := RightHandSide{StrucChange: encodeNodes(rhs.StrucChange)}
	if rhs.LeftContext == nil && rhs.RightContext == nil {
		return out
	}
	if env, ok := expressible(rhs.LeftContext, rhs.RightContext, lookup); ok {
		out.Env = env
		return out
	}
	if rhs.LeftContext != nil {
		n := encodeNode(rhs.LeftContext)
		out.Left = &n
	}
	if rhs.RightContext != nil {
		n := encodeNode(rhs.RightContext)
		out.Right = &n
	}
	return out
}

// expressible formats the environment and checks it parses back unchanged.
func expressible(left, right domain.Context, lookup envstring.Lookup) (string, bool) {
	if lookup == nil {
		return "", false
	}
	env, err := envstring.Format(left, right)
	if err != nil {
		return "", false
	}
	parsed, diags := envstring.Parse(env, lookup)
	if len(diags.Warnings()) > 0 {
		return "", false
	}
	if !domain.Equal(side(parsed.Left), left) || !domain.Equal(side(parsed.Right), right) {
		return "", false
	}
	return env, true
}

// side shapes parsed items the way a regular rule holds them.
func side(items []domain.Context) domain.Context {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}
	return domain.NewSequence(items...)
}

func encodeNodes(cs []domain.Context) []Node {
	out := make([]Node, len(cs))
	for i, c := range cs {
		out[i] = encodeNode(c)
	}
	return out
}

func encodeNode(c domain.Context) Node {
	switch n := c.(type) {
	case *domain.SequenceContext:
		members := encodeNodes(n.Members)
		return Node{Seq: &members}
	case *domain.IterationContext:
		return Node{Iter: &IterNode{Min: n.Min, Max: n.Max, Of: encodeNode(n.Member)}}
	case *domain.SegmentContext:
		if n.Phoneme == nil {
			return Node{Placeholder: PlaceholderSegment}
		}
		return Node{Seg: n.Phoneme.Symbol()}
	case *domain.ClassContext:
		if n.Class == nil {
			return Node{Placeholder: PlaceholderClass}
		}
		out := Node{Class: n.Class.Abbreviation}
		for _, fc := range n.PlusConstraints {
			out.Plus = append(out.Plus, fc.Feature)
		}
		for _, fc := range n.MinusConstraints {
			out.Minus = append(out.Minus, fc.Feature)
		}
		return out
	case *domain.BoundaryContext:
		if n.Marker == nil {
			return Node{Placeholder: PlaceholderBoundary}
		}
		return Node{Boundary: n.Marker.Symbol}
	case *domain.Variable:
		return Node{Var: true}
	}
	return Node{}
}
