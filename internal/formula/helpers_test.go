package formula

import (
	"context"
	"errors"
)

func point(e *Editor, cell CellID, i int, place Placement) Selection {
	return Point(e.AnchorAt(cell, i, place))
}

func span(e *Editor, cell CellID, from, to int) Selection {
	return Span(e.AnchorAt(cell, from, PlaceInitial), e.AnchorAt(cell, to, PlaceFinal))
}

var errFailingUnit = errors.New("unit failed")

type failingUnit struct{ calls int }

func (u *failingUnit) Do(context.Context, string, func(context.Context) error) error {
	u.calls++
	return errFailingUnit
}
