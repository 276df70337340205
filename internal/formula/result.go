package formula

import "github.com/zjrosen/phonrule/internal/domain"

// Placement says whether the cursor goes before or after the indexed item.
type Placement int

const (
	PlaceInitial Placement = iota
	PlaceFinal
)

func (p Placement) String() string {
	if p == PlaceFinal {
		return "final"
	}
	return "initial"
}

// Result tells the rendering surface where to put the cursor after an edit.
// Index -1 with PlaceInitial means the start of the cell.
type Result struct {
	Cell      CellID
	Index     int
	Path      LevelPath
	Placement Placement
	// Pruned lists sequences emptied and deleted by the edit.
	Pruned []domain.ID
}

// OK reports whether the edit happened.
func (r Result) OK() bool { return r.Cell.Valid() }

var noResult = Result{Cell: CellNone, Index: -1}
