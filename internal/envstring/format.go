package envstring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/phonrule/internal/domain"
)

// ErrNotExpressible is returned by Format for contexts the notation cannot
// write: placeholders, variables, feature constraints and iterations other
// than an optional occurrence.
var ErrNotExpressible = errors.New("context cannot be written as an environment string")

// Format writes an environment as "/ left _ right". Parsing the result
// yields contexts equal to left and right.
func Format(left, right domain.Context) (string, error) {
	parts := []string{"/"}
	l, err := formatSide(left)
	if err != nil {
		return "", err
	}
	r, err := formatSide(right)
	if err != nil {
		return "", err
	}
	parts = append(parts, l...)
	parts = append(parts, "_")
	parts = append(parts, r...)
	return strings.Join(parts, " "), nil
}

func formatSide(c domain.Context) ([]string, error) {
	var out []string
	for _, m := range domain.Members(c) {
		s, err := formatItem(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func formatItem(c domain.Context) (string, error) {
	switch n := c.(type) {
	case *domain.SegmentContext:
		if n.Phoneme == nil {
			return "", fmt.Errorf("%w: phoneme placeholder", ErrNotExpressible)
		}
		return n.Phoneme.Symbol(), nil
	case *domain.ClassContext:
		if n.Class == nil {
			return "", fmt.Errorf("%w: natural class placeholder", ErrNotExpressible)
		}
		if len(n.PlusConstraints)+len(n.MinusConstraints) > 0 {
			return "", fmt.Errorf("%w: feature constraints on [%s]", ErrNotExpressible, n.Class.Abbreviation)
		}
		return "[" + n.Class.Abbreviation + "]", nil
	case *domain.BoundaryContext:
		if n.Marker == nil {
			return "", fmt.Errorf("%w: boundary placeholder", ErrNotExpressible)
		}
		return n.Marker.Symbol, nil
	case *domain.IterationContext:
		if n.Min != 0 || n.Max != 1 {
			return "", fmt.Errorf("%w: occurrence %d..%d", ErrNotExpressible, n.Min, n.Max)
		}
		inner, err := formatSide(n.Member)
		if err != nil {
			return "", err
		}
		if len(inner) == 0 {
			return "", fmt.Errorf("%w: empty optional group", ErrNotExpressible)
		}
		return "(" + strings.Join(inner, " ") + ")", nil
	case *domain.SequenceContext:
		inner, err := formatSide(n)
		if err != nil {
			return "", err
		}
		return strings.Join(inner, " "), nil
	case *domain.Variable:
		return "", fmt.Errorf("%w: variable", ErrNotExpressible)
	}
	return "", ErrNotExpressible
}
