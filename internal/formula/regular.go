package formula

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
	"github.com/zjrosen/phonrule/internal/log"
)

// ErrBadOccurrence rejects iteration bounds that match nothing.
var ErrBadOccurrence = errors.New("invalid occurrence bounds")

// RegularEditor edits one right-hand side of a regular rule. The formula
// shows the structural description, the structural change and the left and
// right environment; an empty environment side is shown as a sentinel cell.
type RegularEditor struct {
	*Editor
	cells *regularCells
}

// NewRegularEditor returns an editor for the right-hand side at rhs.
func NewRegularEditor(data *domain.PhonData, r *domain.RegularRule, rhs int, opts ...Option) (*RegularEditor, error) {
	if !inRange(rhs, len(r.RightHandSides)) {
		return nil, fmt.Errorf("rule %q has no right-hand side %d", r.Name(), rhs)
	}
	m := &regularCells{data: data, r: r, rhs: r.RightHandSides[rhs]}
	return &RegularEditor{Editor: newEditor(data, m, opts), cells: m}, nil
}

// RegularRule returns the edited rule.
func (e *RegularEditor) RegularRule() *domain.RegularRule { return e.cells.r }

// RightHandSide returns the right-hand side the editor is bound to.
func (e *RegularEditor) RightHandSide() *domain.RightHandSide { return e.cells.rhs }

// SetOccurrence sets how often the selected environment context may occur.
// Bounds other than exactly once wrap the context in an iteration; setting
// exactly once on an iteration unwraps it. max may be domain.Unbounded.
func (e *RegularEditor) SetOccurrence(ctx context.Context, sel Selection, min, max int) (Result, error) {
	if min < 0 || max == 0 || (max != domain.Unbounded && max < min) {
		return noResult, ErrBadOccurrence
	}
	sel = e.normalize(sel)
	cell, i := e.cellOf(sel.Top)
	slot := e.cells.slot(cell)
	if slot == nil || i < 0 {
		return noResult, ErrNotApplicable
	}
	item := e.cells.items(cell)[i].(domain.Context)

	var target domain.Context
	err := e.uow.Do(ctx, "set occurrence", func(ctx context.Context) error {
		it, isIter := item.(*domain.IterationContext)
		switch {
		case isIter && min == 1 && max == 1:
			member := it.Member
			it.Member = nil
			e.cells.replace(slot, item, member)
			e.data.DeleteContext(it)
			target = member
		case isIter:
			it.Min, it.Max = min, max
			target = it
		case min == 1 && max == 1:
			target = item
		default:
			wrapped := domain.NewIteration(item, min, max)
			e.cells.replace(slot, item, wrapped)
			target = wrapped
		}
		return nil
	})
	if err != nil {
		return noResult, err
	}
	c, idx, _ := e.Find(target)
	return e.finish(Result{Cell: c, Index: idx, Placement: PlaceFinal}), nil
}

// SetEnvironment replaces both environment sides with the contexts parsed
// from env, for example "/ [C] (#) _ a". Unrecognized parts are skipped and
// reported in the diagnostics.
func (e *RegularEditor) SetEnvironment(ctx context.Context, env string) (envstring.Diagnostics, error) {
	parsed, diags := envstring.Parse(env, e.lookup)
	if len(diags) > 0 {
		log.Debug(log.CatFormula, "environment diagnostics", "count", len(diags), "env", env)
	}
	err := e.uow.Do(ctx, "set environment", func(ctx context.Context) error {
		rhs := e.cells.rhs
		e.data.DeleteContext(rhs.LeftContext)
		e.data.DeleteContext(rhs.RightContext)
		rhs.LeftContext = e.cells.build(parsed.Left)
		rhs.RightContext = e.cells.build(parsed.Right)
		return nil
	})
	return diags, err
}

// Environment renders the environment of the right-hand side as a string.
func (e *RegularEditor) Environment() (string, error) {
	return envstring.Format(e.cells.rhs.LeftContext, e.cells.rhs.RightContext)
}

type regularCells struct {
	data *domain.PhonData
	r    *domain.RegularRule
	rhs  *domain.RightHandSide
}

func (m *regularCells) rule() domain.Rule { return m.r }

func (m *regularCells) leftCell() CellID {
	if m.rhs.LeftContext == nil {
		return CellLeftEmpty
	}
	return CellLeftContext
}

func (m *regularCells) rightCell() CellID {
	if m.rhs.RightContext == nil {
		return CellRightEmpty
	}
	return CellRightContext
}

func (m *regularCells) cells() []CellID {
	return []CellID{CellStrucDesc, CellStrucChange, m.leftCell(), m.rightCell()}
}

// slot returns the environment field behind cell, or nil for the other cells.
func (m *regularCells) slot(cell CellID) *domain.Context {
	switch cell {
	case CellLeftContext, CellLeftEmpty:
		return &m.rhs.LeftContext
	case CellRightContext, CellRightEmpty:
		return &m.rhs.RightContext
	}
	return nil
}

func (m *regularCells) list(cell CellID) []domain.Context {
	switch cell {
	case CellStrucDesc:
		return m.r.StrucDesc
	case CellStrucChange:
		return m.rhs.StrucChange
	}
	if slot := m.slot(cell); slot != nil {
		return domain.Members(*slot)
	}
	return nil
}

func (m *regularCells) items(cell CellID) []domain.Object {
	return objects(m.list(cell))
}

func (m *regularCells) path(cell CellID, index int) LevelPath {
	switch cell {
	case CellStrucDesc:
		if inRange(index, len(m.r.StrucDesc)) {
			return LevelPath{{Field: FieldStrucDesc, Index: index}}
		}
		return nil
	case CellStrucChange:
		if inRange(index, len(m.rhs.StrucChange)) {
			return LevelPath{{Field: FieldStrucChange, Index: index}}
		}
		return nil
	}
	slot := m.slot(cell)
	if slot == nil || *slot == nil {
		return nil
	}
	field := FieldLeftContext
	if slot == &m.rhs.RightContext {
		field = FieldRightContext
	}
	if seq, ok := (*slot).(*domain.SequenceContext); ok {
		if !inRange(index, len(seq.Members)) {
			return nil
		}
		return LevelPath{{Field: field, Index: 0}, {Field: FieldMembers, Index: index}}
	}
	if index != 0 {
		return nil
	}
	return LevelPath{{Field: field, Index: 0}}
}

func (m *regularCells) root(st PathStep) (domain.Object, bool) {
	switch st.Field {
	case FieldStrucDesc:
		if inRange(st.Index, len(m.r.StrucDesc)) {
			return m.r.StrucDesc[st.Index], true
		}
	case FieldStrucChange:
		if inRange(st.Index, len(m.rhs.StrucChange)) {
			return m.rhs.StrucChange[st.Index], true
		}
	case FieldLeftContext:
		if st.Index == 0 && m.rhs.LeftContext != nil {
			return m.rhs.LeftContext, true
		}
	case FieldRightContext:
		if st.Index == 0 && m.rhs.RightContext != nil {
			return m.rhs.RightContext, true
		}
	}
	return nil, false
}

func (m *regularCells) locate(path LevelPath) (CellID, int, bool) {
	var slot domain.Context
	var cell CellID
	switch path[0].Field {
	case FieldStrucDesc:
		return CellStrucDesc, path[0].Index, true
	case FieldStrucChange:
		return CellStrucChange, path[0].Index, true
	case FieldLeftContext:
		slot, cell = m.rhs.LeftContext, CellLeftContext
	case FieldRightContext:
		slot, cell = m.rhs.RightContext, CellRightContext
	default:
		return CellNone, -1, false
	}
	if _, ok := slot.(*domain.SequenceContext); ok {
		if len(path) > 1 && path[1].Field == FieldMembers {
			return cell, path[1].Index, true
		}
		return cell, -1, true
	}
	return cell, 0, true
}

func (m *regularCells) edge(e Edge) (CellID, bool) {
	if e == EdgeRuleEnd {
		return m.rightCell(), true
	}
	return m.leftCell(), false
}

func (m *regularCells) label(obj domain.Object) string {
	if c, ok := obj.(domain.Context); ok {
		return domain.Label(c)
	}
	return "?"
}

func (m *regularCells) offer(kind InsertKind, cell CellID, index int) bool {
	switch cell {
	case CellStrucDesc, CellStrucChange:
		switch kind {
		case InsertPhoneme, InsertNaturalClass, InsertFeatures:
			return true
		}
		return false
	case CellLeftContext, CellLeftEmpty:
		return envOffer(kind, m.list(cell), index, true)
	case CellRightContext, CellRightEmpty:
		return envOffer(kind, m.list(cell), index, false)
	}
	return false
}

func (m *regularCells) precheck(InsertKind, Ref) error { return nil }

func (m *regularCells) insert(cell CellID, index int, kind InsertKind, ref Ref) (domain.Object, error) {
	leaf := newLeaf(m.data, kind, ref)
	switch cell {
	case CellStrucDesc:
		m.r.StrucDesc = domain.InsertAt(m.r.StrucDesc, index, leaf)
		return leaf, nil
	case CellStrucChange:
		m.rhs.StrucChange = domain.InsertAt(m.rhs.StrucChange, index, leaf)
		return leaf, nil
	}
	slot := m.slot(cell)
	if slot == nil {
		return nil, fmt.Errorf("cell %s is not editable", cell)
	}
	switch cur := (*slot).(type) {
	case nil:
		*slot = leaf
	case *domain.SequenceContext:
		m.data.AddToPool(leaf)
		cur.Members = domain.InsertAt(cur.Members, index, leaf)
	default:
		seq := m.promote(slot)
		m.data.AddToPool(leaf)
		seq.Members = domain.InsertAt(seq.Members, index, leaf)
	}
	return leaf, nil
}

// promote wraps the lone context in slot in a sequence, moving the context
// into the shared pool.
func (m *regularCells) promote(slot *domain.Context) *domain.SequenceContext {
	old := *slot
	seq := domain.NewSequence(old)
	m.data.AddToPool(old)
	*slot = seq
	return seq
}

func (m *regularCells) remove(obj domain.Object) removal {
	c, ok := obj.(domain.Context)
	if !ok {
		return removal{cell: CellNone, index: -1}
	}
	if i := domain.IndexOf(m.r.StrucDesc, c); i >= 0 {
		m.r.StrucDesc = domain.RemoveAt(m.r.StrucDesc, i)
		m.data.DeleteContext(c)
		return removal{cell: CellStrucDesc, index: i - 1}
	}
	if i := domain.IndexOf(m.rhs.StrucChange, c); i >= 0 {
		m.rhs.StrucChange = domain.RemoveAt(m.rhs.StrucChange, i)
		m.data.DeleteContext(c)
		return removal{cell: CellStrucChange, index: i - 1}
	}
	sides := []struct {
		slot        *domain.Context
		full, empty CellID
	}{
		{&m.rhs.LeftContext, CellLeftContext, CellLeftEmpty},
		{&m.rhs.RightContext, CellRightContext, CellRightEmpty},
	}
	for _, side := range sides {
		if *side.slot == c {
			*side.slot = nil
			m.data.DeleteContext(c)
			return removal{cell: side.empty, index: -1}
		}
		seq, ok := (*side.slot).(*domain.SequenceContext)
		if !ok {
			continue
		}
		i := domain.IndexOf(seq.Members, c)
		if i < 0 {
			continue
		}
		seq.Members = domain.RemoveAt(seq.Members, i)
		m.data.DeleteContext(c)
		switch len(seq.Members) {
		case 0:
			return removal{cell: side.full, index: -1, emptied: seq}
		case 1:
			member := seq.Members[0]
			m.data.RemoveFromPool(member)
			seq.Members = nil
			*side.slot = member
			m.data.DeleteContext(seq)
			return removal{cell: side.full, index: min(i-1, 0)}
		}
		return removal{cell: side.full, index: i - 1}
	}
	return removal{cell: CellNone, index: -1}
}

func (m *regularCells) guard([]domain.Object) error { return nil }

func (m *regularCells) prune(seq *domain.SequenceContext) (CellID, CellID, int) {
	if m.rhs.LeftContext == domain.Context(seq) {
		m.rhs.LeftContext = nil
		m.data.DeleteContext(seq)
		return CellLeftContext, CellLeftEmpty, -1
	}
	if m.rhs.RightContext == domain.Context(seq) {
		m.rhs.RightContext = nil
		m.data.DeleteContext(seq)
		return CellRightContext, CellRightEmpty, -1
	}
	return CellNone, CellNone, -1
}

// replace swaps old for repl wherever old sits in slot, keeping pool
// ownership with the position.
func (m *regularCells) replace(slot *domain.Context, old, repl domain.Context) {
	if *slot == old {
		*slot = repl
		return
	}
	seq, ok := (*slot).(*domain.SequenceContext)
	if !ok {
		return
	}
	if i := domain.IndexOf(seq.Members, old); i >= 0 {
		seq.Members[i] = repl
		m.data.RemoveFromPool(old)
		m.data.AddToPool(repl)
	}
}

// build turns parsed environment items into the content of one side. Members
// of every sequence, including sequences inside optional groups, go to the
// shared pool.
func (m *regularCells) build(items []domain.Context) domain.Context {
	var side domain.Context
	switch len(items) {
	case 0:
		return nil
	case 1:
		side = items[0]
	default:
		side = domain.NewSequence(items...)
	}
	m.adopt(side)
	return side
}

func (m *regularCells) adopt(c domain.Context) {
	switch n := c.(type) {
	case *domain.SequenceContext:
		for _, member := range n.Members {
			m.data.AddToPool(member)
			m.adopt(member)
		}
	case *domain.IterationContext:
		m.adopt(n.Member)
	}
}
