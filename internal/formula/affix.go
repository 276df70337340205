package formula

import (
	"context"
	"strconv"
	"strings"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
)

// AffixEditor edits an affix process rule. The formula shows one cell per
// input column between two empty sentinel cells, followed by the output.
type AffixEditor struct {
	*Editor
	cells *affixCells
}

// NewAffixEditor returns an editor for r.
func NewAffixEditor(data *domain.PhonData, r *domain.AffixProcessRule, opts ...Option) *AffixEditor {
	m := &affixCells{data: data, r: r}
	return &AffixEditor{Editor: newEditor(data, m, opts), cells: m}
}

// AffixRule returns the edited rule.
func (e *AffixEditor) AffixRule() *domain.AffixProcessRule { return e.cells.r }

// InsertColumn adds an empty input column next to the selected one.
func (e *AffixEditor) InsertColumn(ctx context.Context, sel Selection) (Result, error) {
	return e.Insert(ctx, InsertColumn, Ref{}, sel)
}

// RemoveColumn deletes the selected input column together with the output
// mappings that refer to it.
func (e *AffixEditor) RemoveColumn(ctx context.Context, sel Selection) (Result, error) {
	cell := e.ResolveCell(sel, LimitBoth)
	k, col := e.cells.column(cell)
	if col == nil {
		return noResult, nil
	}
	if err := e.cells.guard([]domain.Object{col}); err != nil {
		return noResult, err
	}
	var res Result
	err := e.uow.Do(ctx, "remove column", func(ctx context.Context) error {
		rm := e.cells.removeColumn(k)
		res = Result{Cell: rm.cell, Index: rm.index, Placement: placementFor(rm.index)}
		return nil
	})
	if err != nil {
		return noResult, err
	}
	return e.finish(res), nil
}

// SetMappingModification turns the selected copy mapping into a modifying
// copy using the features of nc, or back into a plain copy when nc is nil.
func (e *AffixEditor) SetMappingModification(ctx context.Context, sel Selection, nc *domain.NaturalClass) (Result, error) {
	sel = e.normalize(sel)
	cell, i := e.cellOf(sel.Top)
	if cell != CellOutput || i < 0 {
		return noResult, ErrNotApplicable
	}
	old := e.cells.r.Output[i]
	var res Result
	err := e.uow.Do(ctx, "set modification", func(ctx context.Context) error {
		var repl domain.Mapping
		switch m := old.(type) {
		case *domain.CopyFromInput:
			if nc == nil {
				return nil
			}
			repl = domain.NewModifyFromInput(m.Content, nc)
		case *domain.ModifyFromInput:
			if nc != nil {
				m.Modification = nc
				return nil
			}
			repl = domain.NewCopyFromInput(m.Content)
		default:
			return ErrNotApplicable
		}
		e.cells.r.Output[i] = repl
		e.data.DeleteMapping(old)
		return nil
	})
	if err != nil {
		return noResult, err
	}
	res = Result{Cell: CellOutput, Index: i, Placement: PlaceFinal}
	return e.finish(res), nil
}

// UpdateMappings redirects every output mapping referring to old so it
// refers to repl, and returns how many were changed.
func (e *AffixEditor) UpdateMappings(old, repl domain.Context) int {
	return e.cells.updateMappings(old, repl)
}

// IsLastVariable reports whether c is the only variable column of the input.
func (e *AffixEditor) IsLastVariable(c domain.Context) bool {
	_, ok := c.(*domain.Variable)
	return ok && e.cells.r.InputIndex(c) >= 0 && e.cells.variableCount() == 1
}

// IsFinalLastVariableMapping reports whether m is the only output mapping
// copying a variable.
func (e *AffixEditor) IsFinalLastVariableMapping(m domain.Mapping) bool {
	if _, ok := domain.MappingContent(m).(*domain.Variable); !ok {
		return false
	}
	return e.cells.variableMappingCount() == 1
}

type affixCells struct {
	data *domain.PhonData
	r    *domain.AffixProcessRule
}

func (m *affixCells) rule() domain.Rule { return m.r }

func (m *affixCells) cells() []CellID {
	out := make([]CellID, 0, len(m.r.Input)+3)
	out = append(out, CellLeftEmpty)
	for _, c := range m.r.Input {
		out = append(out, ColumnCell(c.ID()))
	}
	return append(out, CellRightEmpty, CellOutput)
}

func (m *affixCells) column(cell CellID) (int, domain.Context) {
	if !cell.IsColumn() {
		return -1, nil
	}
	for i, c := range m.r.Input {
		if c.ID() == cell.Node() {
			return i, c
		}
	}
	return -1, nil
}

func (m *affixCells) items(cell CellID) []domain.Object {
	if cell == CellOutput {
		out := make([]domain.Object, len(m.r.Output))
		for i, mp := range m.r.Output {
			out[i] = mp
		}
		return out
	}
	_, col := m.column(cell)
	return objects(domain.Members(col))
}

func (m *affixCells) path(cell CellID, index int) LevelPath {
	if cell == CellOutput {
		if !inRange(index, len(m.r.Output)) {
			return nil
		}
		return LevelPath{{Field: FieldOutput, Index: index}}
	}
	k, col := m.column(cell)
	switch c := col.(type) {
	case nil:
		return nil
	case *domain.SequenceContext:
		if !inRange(index, len(c.Members)) {
			return nil
		}
		return LevelPath{{Field: FieldInput, Index: k}, {Field: FieldMembers, Index: index}}
	}
	if index != 0 {
		return nil
	}
	return LevelPath{{Field: FieldInput, Index: k}}
}

func (m *affixCells) root(st PathStep) (domain.Object, bool) {
	switch st.Field {
	case FieldInput:
		if inRange(st.Index, len(m.r.Input)) {
			return m.r.Input[st.Index], true
		}
	case FieldOutput:
		if inRange(st.Index, len(m.r.Output)) {
			return m.r.Output[st.Index], true
		}
	}
	return nil, false
}

func (m *affixCells) locate(path LevelPath) (CellID, int, bool) {
	switch path[0].Field {
	case FieldOutput:
		return CellOutput, path[0].Index, true
	case FieldInput:
		col := m.r.Input[path[0].Index]
		cell := ColumnCell(col.ID())
		if _, ok := col.(*domain.SequenceContext); ok {
			if len(path) > 1 && path[1].Field == FieldMembers {
				return cell, path[1].Index, true
			}
			return cell, -1, true
		}
		return cell, 0, true
	}
	return CellNone, -1, false
}

func (m *affixCells) edge(e Edge) (CellID, bool) {
	if e == EdgeRuleEnd {
		return CellRightEmpty, false
	}
	return CellLeftEmpty, false
}

func (m *affixCells) label(obj domain.Object) string {
	switch x := obj.(type) {
	case domain.Context:
		return domain.Label(x)
	case *domain.CopyFromInput:
		return m.inputNumber(x.Content)
	case *domain.ModifyFromInput:
		abbr := "?"
		if x.Modification != nil {
			abbr = x.Modification.Abbreviation
		}
		return m.inputNumber(x.Content) + "[" + abbr + "]"
	case *domain.InsertPhones:
		if len(x.Phonemes) == 0 {
			return "?"
		}
		syms := make([]string, len(x.Phonemes))
		for i, p := range x.Phonemes {
			syms[i] = p.Symbol()
		}
		return strings.Join(syms, "")
	case *domain.InsertNaturalClass:
		if x.Class == nil {
			return "[?]"
		}
		return "[" + x.Class.Abbreviation + "]"
	}
	return "?"
}

func (m *affixCells) inputNumber(c domain.Context) string {
	if i := m.r.InputIndex(c); i >= 0 {
		return strconv.Itoa(i + 1)
	}
	return "?"
}

// replaceable reports whether a variable may replace col: a lone non-variable
// context or an empty sequence.
func replaceable(col domain.Context) bool {
	switch c := col.(type) {
	case *domain.SequenceContext:
		return len(c.Members) == 0
	case *domain.Variable:
		return false
	}
	return col != nil
}

func (m *affixCells) offer(kind InsertKind, cell CellID, _ int) bool {
	switch {
	case cell == CellOutput:
		switch kind {
		case InsertPhoneme, InsertNaturalClass, InsertFeatures:
			return true
		case InsertIndex:
			return len(m.r.Input) > 0
		}
		return false
	case cell == CellLeftEmpty || cell == CellRightEmpty:
		switch kind {
		case InsertPhoneme, InsertNaturalClass, InsertFeatures, InsertVariable, InsertColumn:
			return true
		}
		return false
	}
	_, col := m.column(cell)
	if col == nil {
		return false
	}
	switch kind {
	case InsertColumn:
		return true
	case InsertVariable:
		return replaceable(col)
	case InsertPhoneme, InsertNaturalClass, InsertFeatures:
		_, isVar := col.(*domain.Variable)
		return !isVar
	}
	return false
}

func (m *affixCells) precheck(kind InsertKind, ref Ref) error {
	if kind == InsertIndex && (ref.Index < 1 || ref.Index > len(m.r.Input)) {
		return ErrBadIndex
	}
	return nil
}

func (m *affixCells) insert(cell CellID, index int, kind InsertKind, ref Ref) (domain.Object, error) {
	if cell == CellOutput {
		var mp domain.Mapping
		switch kind {
		case InsertPhoneme:
			if ref.Phoneme != nil {
				mp = domain.NewInsertPhones(ref.Phoneme)
			} else {
				mp = domain.NewInsertPhones()
			}
		case InsertIndex:
			mp = domain.NewCopyFromInput(m.r.Input[ref.Index-1])
		default:
			mp = domain.NewInsertNaturalClass(ref.Class)
		}
		m.r.Output = domain.InsertAt(m.r.Output, index, mp)
		return mp, nil
	}

	if kind == InsertColumn {
		seq := domain.NewSequence()
		m.r.Input = domain.InsertAt(m.r.Input, m.columnInsertAt(cell, index), domain.Context(seq))
		return seq, nil
	}

	if cell == CellLeftEmpty || cell == CellRightEmpty {
		leaf := newLeaf(m.data, kind, ref)
		at := 0
		if cell == CellRightEmpty {
			at = len(m.r.Input)
		}
		m.r.Input = domain.InsertAt(m.r.Input, at, leaf)
		return leaf, nil
	}

	k, col := m.column(cell)
	if kind == InsertVariable {
		v := domain.NewVariable()
		m.r.Input[k] = v
		m.updateMappings(col, v)
		m.data.DeleteContext(col)
		return v, nil
	}

	leaf := newLeaf(m.data, kind, ref)
	seq, ok := col.(*domain.SequenceContext)
	if !ok {
		seq = m.promote(k, col)
	}
	m.data.AddToPool(leaf)
	seq.Members = domain.InsertAt(seq.Members, index, leaf)
	return leaf, nil
}

// columnInsertAt places a new column before the selected one when the cursor
// is at the start of its first item, and after it otherwise.
func (m *affixCells) columnInsertAt(cell CellID, index int) int {
	switch cell {
	case CellLeftEmpty:
		return 0
	case CellRightEmpty:
		return len(m.r.Input)
	}
	k, col := m.column(cell)
	if index == 0 && len(domain.Members(col)) > 0 {
		return k
	}
	return k + 1
}

// promote wraps the lone context of column k in a sequence. The context moves
// into the shared pool and mappings follow the column to the sequence.
func (m *affixCells) promote(k int, col domain.Context) *domain.SequenceContext {
	seq := domain.NewSequence(col)
	m.data.AddToPool(col)
	m.r.Input[k] = seq
	m.updateMappings(col, seq)
	return seq
}

// demote replaces a one-member sequence column by its member.
func (m *affixCells) demote(k int, seq *domain.SequenceContext) domain.Context {
	member := seq.Members[0]
	m.data.RemoveFromPool(member)
	seq.Members = nil
	m.r.Input[k] = member
	m.updateMappings(seq, member)
	m.data.DeleteContext(seq)
	return member
}

func (m *affixCells) updateMappings(old, repl domain.Context) int {
	n := 0
	for _, mp := range m.r.Output {
		switch x := mp.(type) {
		case *domain.CopyFromInput:
			if x.Content == old {
				x.Content = repl
				n++
			}
		case *domain.ModifyFromInput:
			if x.Content == old {
				x.Content = repl
				n++
			}
		}
	}
	if n > 0 {
		log.Debug(log.CatFormula, "mappings updated", "count", n, "from", old.ID(), "to", repl.ID())
	}
	return n
}

func (m *affixCells) remove(obj domain.Object) removal {
	switch x := obj.(type) {
	case domain.Mapping:
		i := domain.IndexOf(m.r.Output, x)
		m.r.Output = domain.RemoveAt(m.r.Output, i)
		m.data.DeleteMapping(x)
		return removal{cell: CellOutput, index: i - 1}
	case domain.Context:
		if k := m.r.InputIndex(x); k >= 0 {
			return m.removeColumn(k)
		}
		k, seq := m.owner(x)
		if seq == nil {
			return removal{cell: CellNone, index: -1}
		}
		i := domain.IndexOf(seq.Members, x)
		seq.Members = domain.RemoveAt(seq.Members, i)
		m.data.DeleteContext(x)
		switch len(seq.Members) {
		case 0:
			return removal{cell: ColumnCell(seq.ID()), index: -1, emptied: seq}
		case 1:
			member := m.demote(k, seq)
			return removal{cell: ColumnCell(member.ID()), index: min(i-1, 0)}
		}
		return removal{cell: ColumnCell(seq.ID()), index: i - 1}
	}
	return removal{cell: CellNone, index: -1}
}

// owner finds the sequence column holding c.
func (m *affixCells) owner(c domain.Context) (int, *domain.SequenceContext) {
	for k, col := range m.r.Input {
		if seq, ok := col.(*domain.SequenceContext); ok && domain.IndexOf(seq.Members, c) >= 0 {
			return k, seq
		}
	}
	return -1, nil
}

// removeColumn deletes column k and the mappings referring to it, and
// suggests the end of the previous column for the cursor.
func (m *affixCells) removeColumn(k int) removal {
	col := m.r.Input[k]
	for _, mp := range append([]domain.Mapping(nil), m.r.Output...) {
		if domain.MappingContent(mp) == col {
			m.r.Output, _ = domain.Remove(m.r.Output, mp)
			m.data.DeleteMapping(mp)
		}
	}
	m.r.Input = domain.RemoveAt(m.r.Input, k)
	m.data.DeleteContext(col)

	switch {
	case k > 0:
		prev := m.r.Input[k-1]
		return removal{cell: ColumnCell(prev.ID()), index: len(domain.Members(prev)) - 1}
	case len(m.r.Input) > 0:
		return removal{cell: ColumnCell(m.r.Input[0].ID()), index: -1}
	}
	return removal{cell: CellLeftEmpty, index: -1}
}

func (m *affixCells) prune(seq *domain.SequenceContext) (CellID, CellID, int) {
	from := ColumnCell(seq.ID())
	k := m.r.InputIndex(seq)
	if k < 0 {
		return from, CellNone, -1
	}
	rm := m.removeColumn(k)
	return from, rm.cell, rm.index
}

func (m *affixCells) variableCount() int {
	n := 0
	for _, c := range m.r.Input {
		if _, ok := c.(*domain.Variable); ok {
			n++
		}
	}
	return n
}

func (m *affixCells) variableMappingCount() int {
	n := 0
	for _, mp := range m.r.Output {
		if _, ok := domain.MappingContent(mp).(*domain.Variable); ok {
			n++
		}
	}
	return n
}

// guard refuses removals that would leave the input without a variable or
// the output without a mapping copying one. Removing a column also removes
// the mappings that refer to it.
func (m *affixCells) guard(victims []domain.Object) error {
	gone := make(map[domain.Object]bool, len(victims))
	for _, v := range victims {
		gone[v] = true
	}
	if vars := m.variableCount(); vars > 0 {
		removed := 0
		for _, c := range m.r.Input {
			if _, ok := c.(*domain.Variable); ok && gone[c] {
				removed++
			}
		}
		if removed >= vars {
			return ErrLastVariable
		}
	}
	if maps := m.variableMappingCount(); maps > 0 {
		removed := 0
		for _, mp := range m.r.Output {
			content := domain.MappingContent(mp)
			if _, ok := content.(*domain.Variable); ok && (gone[mp] || gone[content]) {
				removed++
			}
		}
		if removed >= maps {
			return ErrLastVariableMapping
		}
	}
	return nil
}
