package session

import (
	"github.com/zjrosen/phonrule/internal/formula"
	"github.com/zjrosen/phonrule/internal/ui/formulaview"
)

// positions lists every caret stop in display order: the start of each cell
// and the end of each of its items.
func (s *Session) positions() []formulaview.Cursor {
	if s.ed == nil {
		return nil
	}
	var out []formulaview.Cursor
	for _, cell := range s.ed.Cells() {
		out = append(out, formulaview.Cursor{Cell: cell, Index: -1})
		for i := 0; i < s.ed.ItemCount(cell); i++ {
			out = append(out, formulaview.Cursor{Cell: cell, Index: i, Placement: formula.PlaceFinal})
		}
	}
	return out
}

// normalize writes "before item i" as "after item i-1" and every cell start
// as index -1.
func normalize(c formulaview.Cursor) formulaview.Cursor {
	if c.Placement == formula.PlaceInitial {
		c.Index--
		c.Placement = formula.PlaceFinal
	}
	if c.Index < 0 {
		return formulaview.Cursor{Cell: c.Cell, Index: -1}
	}
	return c
}

func (s *Session) stop() int {
	cur := normalize(s.cursor)
	for i, p := range s.positions() {
		if p == cur {
			return i
		}
	}
	return -1
}

// Move shifts the caret by delta stops, stopping at either end.
func (s *Session) Move(delta int) {
	ps := s.positions()
	if len(ps) == 0 {
		return
	}
	i := s.stop() + delta
	s.cursor = ps[min(max(i, 0), len(ps)-1)]
}

// Home moves the caret to the start of the formula.
func (s *Session) Home() { s.Move(-len(s.positions())) }

// End moves the caret to the end of the formula.
func (s *Session) End() { s.Move(len(s.positions())) }

// MoveToCell puts the caret at the end of cell.
func (s *Session) MoveToCell(cell formula.CellID) bool {
	if s.ed == nil {
		return false
	}
	for _, c := range s.ed.Cells() {
		if c == cell {
			s.cursor = normalize(formulaview.Cursor{Cell: cell, Index: s.ed.ItemCount(cell) - 1, Placement: formula.PlaceFinal})
			return true
		}
	}
	return false
}

// SetCursor places the caret, clamped to the formula.
func (s *Session) SetCursor(c formulaview.Cursor) {
	s.cursor = s.clamp(c)
}

// clamp keeps c on an existing stop: a vanished cell falls back to the
// first cell, an index past the end to the cell's end.
func (s *Session) clamp(c formulaview.Cursor) formulaview.Cursor {
	c = normalize(c)
	cells := s.ed.Cells()
	found := false
	for _, cell := range cells {
		if cell == c.Cell {
			found = true
			break
		}
	}
	if !found {
		return formulaview.Cursor{Cell: cells[0], Index: -1}
	}
	if n := s.ed.ItemCount(c.Cell); c.Index >= n {
		c.Index = n - 1
	}
	return normalize(c)
}

// selection is the insertion point at the caret.
func (s *Session) selection() formula.Selection {
	return s.cursor.Selection(s.ed)
}

// span selects items from..to (0-based, inclusive) of the caret's cell.
func (s *Session) span(from, to int) formula.Selection {
	cell := s.cursor.Cell
	return formula.Span(
		s.ed.AnchorAt(cell, from, formula.PlaceInitial),
		s.ed.AnchorAt(cell, to, formula.PlaceFinal),
	)
}

// cellByName finds the cell the legend calls name.
func (s *Session) cellByName(name string) (formula.CellID, bool) {
	for _, cell := range s.ed.Cells() {
		if formulaview.CellName(s.ed, cell) == name {
			return cell, true
		}
	}
	return formula.CellNone, false
}
