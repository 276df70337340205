package formula

import (
	"context"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
)

// Remove deletes the nodes a range selection covers, or the node next to an
// insertion point. For an insertion point the victim depends on which side
// of its node the cursor is and the direction: after a node, forward removes
// the next node and backward the node itself; before a node, forward removes
// the node itself and backward the previous one. Nothing happens at the ends
// of a cell.
//
// The result puts the cursor after the item preceding the first victim, or
// at the start of the cell.
func (e *Editor) Remove(ctx context.Context, sel Selection, forward bool) (Result, error) {
	sel = e.normalize(sel)
	cell := e.ResolveCell(sel, LimitBoth)
	if !cell.Valid() {
		log.Debug(log.CatFormula, "remove ignored", "cell", cell)
		return noResult, nil
	}
	items := e.model.items(cell)

	lo, hi := -1, -1
	if sel.IsRange() {
		lo, hi = e.span(sel)
	} else if _, idx := e.cellOf(sel.Top); idx >= 0 {
		lo = victimIndex(idx, sel.Top.AtStart(), forward)
		hi = lo
	}
	if lo < 0 || hi >= len(items) || lo > hi {
		log.Debug(log.CatFormula, "remove at cell edge", "cell", cell, "forward", forward)
		return noResult, nil
	}
	victims := append([]domain.Object(nil), items[lo:hi+1]...)
	if err := e.model.guard(victims); err != nil {
		log.Info(log.CatFormula, "remove refused", "cell", cell, "reason", err)
		return noResult, err
	}
	var before domain.Object
	if lo > 0 {
		before = items[lo-1]
	}

	var res Result
	err := e.uow.Do(ctx, "remove", func(ctx context.Context) error {
		last := removal{cell: cell, index: lo - 1}
		var emptied []*domain.SequenceContext
		for _, v := range victims {
			// Earlier removals may have cascaded to later victims.
			if !v.Live() {
				continue
			}
			last = e.model.remove(v)
			if last.emptied != nil {
				emptied = append(emptied, last.emptied)
			}
		}
		res = e.prune(e.after(before, last), emptied)
		return nil
	})
	if err != nil {
		return noResult, err
	}
	res = e.finish(res)
	log.Debug(log.CatFormula, "removed", "count", len(victims), "cell", res.Cell, "index", res.Index)
	return res, nil
}

func victimIndex(idx int, atStart, forward bool) int {
	switch {
	case !atStart && forward:
		return idx + 1
	case !atStart:
		return idx
	case forward:
		return idx
	default:
		return idx - 1
	}
}

// after computes the cursor position following a removal.
func (e *Editor) after(before domain.Object, last removal) Result {
	if before != nil && before.Live() {
		if c, i, ok := e.Find(before); ok && i >= 0 {
			return Result{Cell: c, Index: i, Placement: PlaceFinal}
		}
	}
	cell, index := last.cell, last.index
	if index < 0 && e.ItemCount(cell) == 0 {
		if r, ok := e.model.(emptyRedirector); ok {
			if c, i, ok := r.redirectEmpty(cell); ok {
				cell, index = c, i
			}
		}
	}
	return Result{Cell: cell, Index: index, Placement: placementFor(index)}
}
