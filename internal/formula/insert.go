package formula

import (
	"context"
	"fmt"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
)

// Insert adds an item of the given kind at sel. A range selection replaces
// the nodes it fully covers: they are removed after the new item is in
// place. Selections that do not resolve to one cell, and kinds the cell does
// not offer, are ignored and reported as CellNone with a nil error.
func (e *Editor) Insert(ctx context.Context, kind InsertKind, ref Ref, sel Selection) (Result, error) {
	sel = e.normalize(sel)
	cell := e.ResolveCell(sel, LimitBoth)
	if !cell.Valid() {
		log.Debug(log.CatFormula, "insert ignored", "kind", kind, "cell", cell)
		return noResult, nil
	}
	index := e.insertionIndex(sel)
	if !e.model.offer(kind, cell, index) {
		log.Debug(log.CatFormula, "insert not offered", "kind", kind, "cell", cell, "index", index)
		return noResult, nil
	}
	if err := e.model.precheck(kind, ref); err != nil {
		return noResult, err
	}

	var covered []domain.Object
	if sel.IsRange() {
		items := e.model.items(cell)
		if lo, hi := e.span(sel); lo <= hi && hi < len(items) {
			covered = append(covered, items[lo:hi+1]...)
		}
	}
	if len(covered) > 0 {
		if err := e.model.guard(covered); err != nil {
			log.Info(log.CatFormula, "insert refused", "kind", kind, "reason", err)
			return noResult, err
		}
	}

	var res Result
	err := e.uow.Do(ctx, "insert "+kind.String(), func(ctx context.Context) error {
		obj, err := e.model.insert(cell, index, kind, ref)
		if err != nil {
			return err
		}
		var emptied []*domain.SequenceContext
		for _, v := range covered {
			if !v.Live() {
				continue
			}
			if rm := e.model.remove(v); rm.emptied != nil {
				emptied = append(emptied, rm.emptied)
			}
		}
		c, i, ok := e.Find(obj)
		if !ok {
			return fmt.Errorf("inserted %s not found in rule %q", kind, e.model.rule().Name())
		}
		res = e.prune(Result{Cell: c, Index: i, Placement: placementFor(i)}, emptied)
		return nil
	})
	if err != nil {
		return noResult, err
	}
	res = e.finish(res)
	log.Debug(log.CatFormula, "inserted", "kind", kind, "cell", res.Cell, "index", res.Index)
	return res, nil
}

// newLeaf creates the context for a leaf insert kind.
func newLeaf(data *domain.PhonData, kind InsertKind, ref Ref) domain.Context {
	switch kind {
	case InsertPhoneme:
		return domain.NewSegment(ref.Phoneme)
	case InsertNaturalClass, InsertFeatures:
		return domain.NewClass(ref.Class)
	case InsertWordBoundary:
		return domain.NewBoundary(data.Boundary(domain.WordBoundary))
	case InsertMorphemeBoundary:
		return domain.NewBoundary(data.Boundary(domain.MorphemeBoundary))
	case InsertVariable:
		return domain.NewVariable()
	}
	return nil
}

func objects(cs []domain.Context) []domain.Object {
	out := make([]domain.Object, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}
