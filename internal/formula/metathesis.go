package formula

import (
	"context"

	"github.com/zjrosen/phonrule/internal/domain"
)

// MetathesisEditor edits a metathesis rule. The flat structural description
// is shown as four cells: left environment, left switch, right switch and
// right environment. The middle zone joins whichever switch cell the rule
// says.
type MetathesisEditor struct {
	*Editor
	cells *metathesisCells
}

// NewMetathesisEditor returns an editor for r.
func NewMetathesisEditor(data *domain.PhonData, r *domain.MetathesisRule, opts ...Option) *MetathesisEditor {
	m := &metathesisCells{data: data, r: r}
	return &MetathesisEditor{Editor: newEditor(data, m, opts), cells: m}
}

// MetathesisRule returns the edited rule.
func (e *MetathesisEditor) MetathesisRule() *domain.MetathesisRule { return e.cells.r }

// SetMiddleWithLeftSwitch moves the middle zone to the left or right switch
// cell. The structural description itself is unchanged.
func (e *MetathesisEditor) SetMiddleWithLeftSwitch(ctx context.Context, left bool) error {
	return e.uow.Do(ctx, "set middle placement", func(ctx context.Context) error {
		e.cells.r.MiddleWithLeftSwitch = left
		return nil
	})
}

type metathesisCells struct {
	data *domain.PhonData
	r    *domain.MetathesisRule
}

var metathesisLayout = []CellID{CellLeftEnv, CellLeftSwitch, CellRightSwitch, CellRightEnv}

func (m *metathesisCells) rule() domain.Rule { return m.r }

func (m *metathesisCells) cells() []CellID { return metathesisLayout }

// zones returns the zones shown in cell, in structural description order.
func (m *metathesisCells) zones(cell CellID) []domain.Zone {
	switch cell {
	case CellLeftEnv:
		return []domain.Zone{domain.ZoneLeftEnv}
	case CellLeftSwitch:
		if m.r.MiddleWithLeftSwitch {
			return []domain.Zone{domain.ZoneLeftSwitch, domain.ZoneMiddle}
		}
		return []domain.Zone{domain.ZoneLeftSwitch}
	case CellRightSwitch:
		if m.r.MiddleWithLeftSwitch {
			return []domain.Zone{domain.ZoneRightSwitch}
		}
		return []domain.Zone{domain.ZoneMiddle, domain.ZoneRightSwitch}
	case CellRightEnv:
		return []domain.Zone{domain.ZoneRightEnv}
	}
	return nil
}

func (m *metathesisCells) cellOfZone(z domain.Zone) CellID {
	for _, c := range metathesisLayout {
		for _, cz := range m.zones(c) {
			if cz == z {
				return c
			}
		}
	}
	return CellNone
}

func (m *metathesisCells) bounds(cell CellID) (int, int) {
	zs := m.zones(cell)
	if len(zs) == 0 {
		return 0, 0
	}
	start := m.r.Zones.Offset(zs[0])
	n := 0
	for _, z := range zs {
		n += m.r.Zones.Len(z)
	}
	return start, n
}

func (m *metathesisCells) items(cell CellID) []domain.Object {
	start, n := m.bounds(cell)
	if n == 0 {
		return nil
	}
	return objects(m.r.StrucDesc[start : start+n])
}

func (m *metathesisCells) path(cell CellID, index int) LevelPath {
	start, n := m.bounds(cell)
	if !inRange(index, n) {
		return nil
	}
	return LevelPath{{Field: FieldStrucDesc, Index: start + index}}
}

func (m *metathesisCells) root(st PathStep) (domain.Object, bool) {
	if st.Field == FieldStrucDesc && inRange(st.Index, len(m.r.StrucDesc)) {
		return m.r.StrucDesc[st.Index], true
	}
	return nil, false
}

func (m *metathesisCells) locate(path LevelPath) (CellID, int, bool) {
	if path[0].Field != FieldStrucDesc {
		return CellNone, -1, false
	}
	z, ok := m.r.Zones.ZoneAt(path[0].Index)
	if !ok {
		return CellNone, -1, false
	}
	cell := m.cellOfZone(z)
	start, _ := m.bounds(cell)
	return cell, path[0].Index - start, true
}

func (m *metathesisCells) edge(e Edge) (CellID, bool) {
	if e == EdgeRuleEnd {
		return CellRightEnv, true
	}
	return CellLeftEnv, false
}

func (m *metathesisCells) label(obj domain.Object) string {
	if c, ok := obj.(domain.Context); ok {
		return domain.Label(c)
	}
	return "?"
}

func (m *metathesisCells) offer(kind InsertKind, cell CellID, index int) bool {
	switch cell {
	case CellLeftEnv, CellRightEnv:
		start, n := m.bounds(cell)
		return envOffer(kind, m.r.StrucDesc[start:start+n], index, cell == CellLeftEnv)
	}
	switch kind {
	case InsertPhoneme, InsertNaturalClass, InsertFeatures, InsertMorphemeBoundary:
		return true
	}
	return false
}

func (m *metathesisCells) precheck(InsertKind, Ref) error { return nil }

// insertZone picks the zone that grows when inserting at index in cell. In a
// cell showing two zones, the position between them belongs to the switch
// zone; positions strictly inside the middle zone grow the middle.
func (m *metathesisCells) insertZone(cell CellID, index int) domain.Zone {
	zs := m.zones(cell)
	if len(zs) == 1 {
		return zs[0]
	}
	first := m.r.Zones.Len(zs[0])
	switch {
	case index < first:
		return zs[0]
	case index > first:
		return zs[1]
	}
	if zs[0] == domain.ZoneMiddle {
		return zs[1]
	}
	return zs[0]
}

func (m *metathesisCells) insert(cell CellID, index int, kind InsertKind, ref Ref) (domain.Object, error) {
	leaf := newLeaf(m.data, kind, ref)
	start, _ := m.bounds(cell)
	z := m.insertZone(cell, index)
	m.r.StrucDesc = domain.InsertAt(m.r.StrucDesc, start+index, leaf)
	m.r.Zones = m.r.Zones.Grow(z, 1)
	return leaf, nil
}

func (m *metathesisCells) remove(obj domain.Object) removal {
	c, ok := obj.(domain.Context)
	if !ok {
		return removal{cell: CellNone, index: -1}
	}
	p := domain.IndexOf(m.r.StrucDesc, c)
	z, ok := m.r.Zones.ZoneAt(p)
	if !ok {
		return removal{cell: CellNone, index: -1}
	}
	cell := m.cellOfZone(z)
	start, _ := m.bounds(cell)
	m.r.StrucDesc = domain.RemoveAt(m.r.StrucDesc, p)
	m.r.Zones = m.r.Zones.Grow(z, -1)
	m.data.DeleteContext(c)
	return removal{cell: cell, index: p - start - 1}
}

// redirectEmpty moves the cursor to the end of the closest earlier cell
// that still has content.
func (m *metathesisCells) redirectEmpty(cell CellID) (CellID, int, bool) {
	i := domain.IndexOf(metathesisLayout, cell)
	for j := i - 1; j >= 0; j-- {
		if _, n := m.bounds(metathesisLayout[j]); n > 0 {
			return metathesisLayout[j], n - 1, true
		}
	}
	return CellNone, -1, false
}

func (m *metathesisCells) guard([]domain.Object) error { return nil }

func (m *metathesisCells) prune(*domain.SequenceContext) (CellID, CellID, int) {
	return CellNone, CellNone, -1
}
