package formula

import (
	"context"
	"unicode/utf8"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
)

// UnitOfWork runs fn as one all-or-nothing change. Implementations roll back
// every change fn made when it returns an error.
type UnitOfWork interface {
	Do(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// immediate runs units without rollback. Used when no manager is configured.
type immediate struct{}

func (immediate) Do(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

// cellModel is the rule-specific half of an editor.
type cellModel interface {
	rule() domain.Rule
	// cells lists the cells in display order.
	cells() []CellID
	items(cell CellID) []domain.Object
	path(cell CellID, index int) LevelPath
	root(st PathStep) (domain.Object, bool)
	// locate maps a resolvable path to its cell and item index. Index -1
	// means the path addresses the cell's container rather than an item.
	locate(path LevelPath) (CellID, int, bool)
	// edge names the cell a rule-outer edge redirects to, and whether the
	// cursor goes to its end.
	edge(e Edge) (CellID, bool)
	label(obj domain.Object) string
	offer(kind InsertKind, cell CellID, index int) bool
	precheck(kind InsertKind, ref Ref) error
	insert(cell CellID, index int, kind InsertKind, ref Ref) (domain.Object, error)
	remove(obj domain.Object) removal
	// guard refuses removing victims when that breaks a rule invariant.
	guard(victims []domain.Object) error
	// prune deletes an emptied sequence and reports the cell it occupied
	// and where a cursor in that cell moves.
	prune(seq *domain.SequenceContext) (from, to CellID, index int)
}

// removal is the cursor position a model suggests after removing one item.
type removal struct {
	cell    CellID
	index   int
	emptied *domain.SequenceContext
}

// emptyRedirector is implemented by models that move the cursor out of a
// cell left empty by a removal.
type emptyRedirector interface {
	redirectEmpty(cell CellID) (CellID, int, bool)
}

// Editor holds the insertion and removal algorithms shared by all rule
// types. Use NewAffixEditor, NewMetathesisEditor or NewRegularEditor.
type Editor struct {
	data   *domain.PhonData
	model  cellModel
	uow    UnitOfWork
	lookup envstring.Lookup
}

// Option configures an Editor.
type Option func(*Editor)

// WithUnitOfWork runs every mutation through u.
func WithUnitOfWork(u UnitOfWork) Option {
	return func(e *Editor) { e.uow = u }
}

// WithLookup resolves environment strings against l instead of the
// editor's PhonData.
func WithLookup(l envstring.Lookup) Option {
	return func(e *Editor) { e.lookup = l }
}

func newEditor(data *domain.PhonData, model cellModel, opts []Option) *Editor {
	e := &Editor{data: data, model: model, uow: immediate{}, lookup: data}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Data returns the phonological data the editor mutates.
func (e *Editor) Data() *domain.PhonData { return e.data }

// Rule returns the edited rule.
func (e *Editor) Rule() domain.Rule { return e.model.rule() }

// Cells lists the cells of the formula in display order.
func (e *Editor) Cells() []CellID { return e.model.cells() }

// ItemCount returns the number of items in cell.
func (e *Editor) ItemCount(cell CellID) int { return len(e.model.items(cell)) }

// Items returns the items of cell in order.
func (e *Editor) Items(cell CellID) []domain.Object { return e.model.items(cell) }

// LevelPath returns the path of the item at index in cell, or nil.
func (e *Editor) LevelPath(cell CellID, index int) LevelPath {
	return e.model.path(cell, index)
}

// Label returns the display text of an item.
func (e *Editor) Label(obj domain.Object) string { return e.model.label(obj) }

// Resolve returns the object path addresses.
func (e *Editor) Resolve(path LevelPath) (domain.Object, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur, ok := e.model.root(path[0])
	if !ok {
		return nil, false
	}
	for _, st := range path[1:] {
		if cur, ok = descend(cur, st); !ok {
			return nil, false
		}
	}
	return cur, true
}

// Locate maps a path to its cell and item index.
func (e *Editor) Locate(path LevelPath) (CellID, int, bool) {
	if _, ok := e.Resolve(path); !ok {
		return CellNone, -1, false
	}
	return e.model.locate(path)
}

// Find returns the cell and index of obj. A column heading context that is
// not itself an item resolves to its column with index -1.
func (e *Editor) Find(obj domain.Object) (CellID, int, bool) {
	for _, c := range e.model.cells() {
		for i, it := range e.model.items(c) {
			if it == obj {
				return c, i, true
			}
		}
	}
	if ctx, ok := obj.(domain.Context); ok {
		if cell := ColumnCell(ctx.ID()); e.hasCell(cell) {
			return cell, -1, true
		}
	}
	return CellNone, -1, false
}

// AnchorAt builds the anchor a rendering surface would report for the cursor
// before (PlaceInitial) or after (PlaceFinal) the item at index. Empty cells
// and index -1 yield the cell start.
func (e *Editor) AnchorAt(cell CellID, index int, place Placement) Anchor {
	items := e.model.items(cell)
	if len(items) == 0 {
		return Anchor{Cell: cell}
	}
	if index < 0 {
		index, place = 0, PlaceInitial
	}
	if index >= len(items) {
		index, place = len(items)-1, PlaceFinal
	}
	n := utf8.RuneCountInString(e.model.label(items[index]))
	a := Anchor{Cell: cell, Path: e.model.path(cell, index), Length: n}
	if place == PlaceFinal {
		a.Offset = n
	}
	return a
}

// AnchorFor returns the cursor anchor for an edit result.
func (e *Editor) AnchorFor(r Result) Anchor {
	return e.AnchorAt(r.Cell, r.Index, r.Placement)
}

// ResolveCell maps a selection to a cell. With LimitBoth a range spanning
// two cells is CellAmbiguous.
func (e *Editor) ResolveCell(sel Selection, limit Limit) CellID {
	sel = e.normalize(sel)
	top, _ := e.cellOf(sel.Top)
	bottom, _ := e.cellOf(sel.Bottom)
	switch limit {
	case LimitTop:
		return top
	case LimitBottom:
		return bottom
	}
	if top == CellNone || bottom == CellNone {
		return CellNone
	}
	if top != bottom {
		return CellAmbiguous
	}
	return top
}

// ShouldOffer reports whether kind can be inserted at sel.
func (e *Editor) ShouldOffer(kind InsertKind, sel Selection) bool {
	sel = e.normalize(sel)
	cell := e.ResolveCell(sel, LimitBoth)
	if !cell.Valid() {
		return false
	}
	return e.model.offer(kind, cell, e.insertionIndex(sel))
}

// Options lists the kinds that can be inserted at sel. An empty list means
// the surface shows NoOptionsMessage.
func (e *Editor) Options(sel Selection) []InsertKind {
	var out []InsertKind
	for _, k := range AllKinds {
		if e.ShouldOffer(k, sel) {
			out = append(out, k)
		}
	}
	return out
}

func (e *Editor) hasCell(cell CellID) bool {
	for _, c := range e.model.cells() {
		if c == cell {
			return true
		}
	}
	return false
}

// normalize redirects bracket and rule edges to the nearest editable
// position.
func (e *Editor) normalize(sel Selection) Selection {
	return Selection{Top: e.normalizeAnchor(sel.Top), Bottom: e.normalizeAnchor(sel.Bottom)}
}

func (e *Editor) normalizeAnchor(a Anchor) Anchor {
	switch a.Edge {
	case EdgeRuleStart, EdgeRuleEnd:
		cell, atEnd := e.model.edge(a.Edge)
		if atEnd {
			return e.AnchorAt(cell, e.ItemCount(cell)-1, PlaceFinal)
		}
		return e.AnchorAt(cell, 0, PlaceInitial)
	case EdgeLeftBracket:
		if !e.hasCell(a.Cell) {
			return Anchor{Cell: CellNone}
		}
		return e.AnchorAt(a.Cell, 0, PlaceInitial)
	case EdgeRightBracket:
		if !e.hasCell(a.Cell) {
			return Anchor{Cell: CellNone}
		}
		return e.AnchorAt(a.Cell, e.ItemCount(a.Cell)-1, PlaceFinal)
	}
	return a
}

// cellOf returns the cell of an anchor and the index of the item under it,
// or -1 for anchors on a cell rather than an item.
func (e *Editor) cellOf(a Anchor) (CellID, int) {
	if len(a.Path) == 0 {
		if e.hasCell(a.Cell) {
			return a.Cell, -1
		}
		return CellNone, -1
	}
	cell, idx, ok := e.Locate(a.Path)
	if !ok {
		return CellNone, -1
	}
	return cell, idx
}

// insertionIndex is the index of the top node when the cursor is before it,
// and the next index otherwise.
func (e *Editor) insertionIndex(sel Selection) int {
	_, idx := e.cellOf(sel.Top)
	if idx < 0 {
		return 0
	}
	if sel.Top.AtStart() {
		return idx
	}
	return idx + 1
}

// span returns the inclusive range of items a range selection fully covers.
// A node is covered at the top only when the selection starts before it, and
// at the bottom only when the selection ends after it.
func (e *Editor) span(sel Selection) (int, int) {
	_, t := e.cellOf(sel.Top)
	_, b := e.cellOf(sel.Bottom)
	lo, hi := 0, -1
	if t >= 0 {
		lo = t
		if !sel.Top.AtStart() {
			lo = t + 1
		}
	}
	if b >= 0 {
		hi = b
		if !sel.Bottom.AtEnd() {
			hi = b - 1
		}
	}
	return lo, hi
}

func placementFor(index int) Placement {
	if index < 0 {
		return PlaceInitial
	}
	return PlaceFinal
}

// finish fills in the level path of a result.
func (e *Editor) finish(r Result) Result {
	if r.Index >= 0 {
		r.Path = e.model.path(r.Cell, r.Index)
	} else if e.ItemCount(r.Cell) > 0 {
		r.Path = e.model.path(r.Cell, 0)
	}
	return r
}

// prune deletes sequences emptied by an edit, retargeting the result when
// it pointed into a pruned cell.
func (e *Editor) prune(r Result, emptied []*domain.SequenceContext) Result {
	for _, seq := range emptied {
		if !seq.Live() || len(seq.Members) > 0 {
			continue
		}
		id := seq.ID()
		from, to, index := e.model.prune(seq)
		r.Pruned = append(r.Pruned, id)
		if r.Cell == from {
			r.Cell, r.Index, r.Placement = to, index, placementFor(index)
		}
	}
	return r
}
