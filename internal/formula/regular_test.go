package formula

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/testutil"
)

func newRegular(t testutil.TB, b *testutil.Builder, r *domain.RegularRule) *RegularEditor {
	t.Helper()
	e, err := NewRegularEditor(b.Data, r, 0)
	require.NoError(t, err)
	return e
}

func TestNewRegularEditor_BadRightHandSide(t *testing.T) {
	b := testutil.NewBuilder(t)
	_, err := NewRegularEditor(b.Data, b.Regular("r"), 1)
	require.Error(t, err)
}

func TestRegular_LeftContextPromotion(t *testing.T) {
	b := testutil.NewBuilder(t)
	a := b.Seg("a")
	r := b.Regular("r", testutil.Left(a))
	e := newRegular(t, b, r)

	res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("k")), point(e.Editor, CellLeftContext, 0, PlaceFinal))
	require.NoError(t, err)

	seq, ok := r.RightHandSides[0].LeftContext.(*domain.SequenceContext)
	require.True(t, ok, "lone context promoted to a sequence")
	require.Len(t, seq.Members, 2)
	require.Same(t, a, seq.Members[0], "existing context keeps its place at the left")
	require.Equal(t, "k", domain.Label(seq.Members[1]))
	require.True(t, b.Data.InPool(a), "promoted context moves into the pool")

	require.Equal(t, CellLeftContext, res.Cell)
	require.Equal(t, 1, res.Index)
	require.Equal(t, PlaceFinal, res.Placement)
	require.Equal(t, LevelPath{{Field: FieldLeftContext, Index: 0}, {Field: FieldMembers, Index: 1}}, res.Path)
}

func TestRegular_PromotionAtLeftEdge(t *testing.T) {
	b := testutil.NewBuilder(t)
	a := b.Seg("a")
	r := b.Regular("r", testutil.Right(a))
	e := newRegular(t, b, r)

	res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("k")), point(e.Editor, CellRightContext, 0, PlaceInitial))
	require.NoError(t, err)

	seq := r.RightHandSides[0].RightContext.(*domain.SequenceContext)
	require.Equal(t, "k", domain.Label(seq.Members[0]))
	require.Same(t, a, seq.Members[1])
	require.Equal(t, 0, res.Index)
}

func TestRegular_RemovalUndoesPromotion(t *testing.T) {
	b := testutil.NewBuilder(t)
	a := b.Seg("a")
	r := b.Regular("r", testutil.Left(a))
	e := newRegular(t, b, r)
	rhs := r.RightHandSides[0]
	before := rhs.LeftContext

	res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("k")), point(e.Editor, CellLeftContext, 0, PlaceFinal))
	require.NoError(t, err)
	res, err = e.Remove(t.Context(), Point(e.AnchorFor(res)), false)
	require.NoError(t, err)

	require.True(t, domain.Equal(before, rhs.LeftContext))
	require.Same(t, a, rhs.LeftContext, "the sequence is demoted back to its member")
	require.Empty(t, b.Data.Contexts)
	require.Equal(t, CellLeftContext, res.Cell)
	require.Equal(t, 0, res.Index)
}

func TestRegular_InsertIntoEmptySide(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r")
	e := newRegular(t, b, r)
	require.Equal(t, []CellID{CellStrucDesc, CellStrucChange, CellLeftEmpty, CellRightEmpty}, e.Cells())

	res, err := e.Insert(t.Context(), InsertNaturalClass, ClassRef(b.NaturalClass("V")), Point(Anchor{Cell: CellLeftEmpty}))
	require.NoError(t, err)

	require.IsType(t, &domain.ClassContext{}, r.RightHandSides[0].LeftContext)
	require.Equal(t, CellLeftContext, res.Cell)
	require.Equal(t, LevelPath{{Field: FieldLeftContext, Index: 0}}, res.Path)
	require.Empty(t, b.Data.Contexts, "a lone context is owned by the rule, not the pool")
}

func TestRegular_RemoveLastContextShowsSentinel(t *testing.T) {
	b := testutil.NewBuilder(t)
	a := b.Seg("a")
	r := b.Regular("r", testutil.Left(a))
	e := newRegular(t, b, r)

	res, err := e.Remove(t.Context(), point(e.Editor, CellLeftContext, 0, PlaceFinal), false)
	require.NoError(t, err)

	require.Nil(t, r.RightHandSides[0].LeftContext)
	require.False(t, a.Live())
	require.Equal(t, CellLeftEmpty, res.Cell)
	require.Equal(t, PlaceInitial, res.Placement)
}

func TestRegular_RangeRemovalAcrossSequence(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.Left(b.Seq(b.Seg("a"), b.Seg("k"))))
	e := newRegular(t, b, r)

	res, err := e.Remove(t.Context(), span(e.Editor, CellLeftContext, 0, 1), true)
	require.NoError(t, err)

	require.Nil(t, r.RightHandSides[0].LeftContext)
	require.Empty(t, b.Data.Contexts)
	require.Equal(t, CellLeftEmpty, res.Cell)
}

func TestRegular_EmptiedSequenceIsPruned(t *testing.T) {
	b := testutil.NewBuilder(t)
	seq := b.Seq(b.Seg("a"))
	r := b.Regular("r", testutil.Left(seq))
	e := newRegular(t, b, r)

	res, err := e.Remove(t.Context(), point(e.Editor, CellLeftContext, 0, PlaceFinal), false)
	require.NoError(t, err)

	require.Nil(t, r.RightHandSides[0].LeftContext)
	require.False(t, seq.Live())
	require.Equal(t, []domain.ID{seq.ID()}, res.Pruned)
	require.Equal(t, CellLeftEmpty, res.Cell, "cursor leaves the pruned cell")
}

func TestRegular_PointRemovalDirections(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		place   Placement
		forward bool
		want    []string
		cell    CellID
		at      int
	}{
		{"after node forward removes next", 1, PlaceFinal, true, []string{"p", "t"}, CellStrucDesc, 1},
		{"after node backward removes it", 1, PlaceFinal, false, []string{"p", "k"}, CellStrucDesc, 0},
		{"before node forward removes it", 1, PlaceInitial, true, []string{"p", "k"}, CellStrucDesc, 0},
		{"before node backward removes previous", 1, PlaceInitial, false, []string{"t", "k"}, CellStrucDesc, -1},
		{"start of cell backward is a no-op", 0, PlaceInitial, false, []string{"p", "t", "k"}, CellNone, -1},
		{"end of cell forward is a no-op", 2, PlaceFinal, true, []string{"p", "t", "k"}, CellNone, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBuilder(t)
			r := b.Regular("r", testutil.LHS(b.Seg("p"), b.Seg("t"), b.Seg("k")))
			e := newRegular(t, b, r)

			res, err := e.Remove(t.Context(), point(e.Editor, CellStrucDesc, tt.index, tt.place), tt.forward)
			require.NoError(t, err)

			var got []string
			for _, c := range r.StrucDesc {
				got = append(got, domain.Label(c))
			}
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.cell, res.Cell)
			require.Equal(t, tt.at, res.Index)
		})
	}
}

func TestRegular_RangeInsertReplacesCoveredNodes(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p"), b.Seg("t"), b.Seg("k")))
	e := newRegular(t, b, r)
	victim := r.StrucDesc[1]

	res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("a")), span(e.Editor, CellStrucDesc, 1, 1))
	require.NoError(t, err)

	require.Len(t, r.StrucDesc, 3)
	require.Equal(t, "a", domain.Label(r.StrucDesc[1]))
	require.False(t, victim.Live())
	require.Equal(t, 1, res.Index)
}

func TestRegular_PartialRangeCoversNothingAtEdges(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p"), b.Seg("t")))
	e := newRegular(t, b, r)

	// From after p to before t: nothing is fully covered.
	sel := Span(e.AnchorAt(CellStrucDesc, 0, PlaceFinal), e.AnchorAt(CellStrucDesc, 1, PlaceInitial))
	res, err := e.Remove(t.Context(), sel, true)
	require.NoError(t, err)
	require.False(t, res.OK())
	require.Len(t, r.StrucDesc, 2)
}

func TestRegular_AmbiguousSelectionIsIgnored(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p")), testutil.Change(b.Seg("b")))
	e := newRegular(t, b, r)
	sel := Span(e.AnchorAt(CellStrucDesc, 0, PlaceInitial), e.AnchorAt(CellStrucChange, 0, PlaceFinal))

	require.Equal(t, CellAmbiguous, e.ResolveCell(sel, LimitBoth))
	require.Equal(t, CellStrucDesc, e.ResolveCell(sel, LimitTop))
	require.Equal(t, CellStrucChange, e.ResolveCell(sel, LimitBottom))

	res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("a")), sel)
	require.NoError(t, err)
	require.Equal(t, CellNone, res.Cell)
	res, err = e.Remove(t.Context(), sel, true)
	require.NoError(t, err)
	require.Equal(t, CellNone, res.Cell)
	require.Len(t, r.StrucDesc, 1)
	require.Len(t, r.RightHandSides[0].StrucChange, 1)
}

func TestRegular_Offers(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p")), testutil.Left(b.Seg("a")))
	e := newRegular(t, b, r)

	require.Equal(t,
		[]InsertKind{InsertPhoneme, InsertNaturalClass, InsertFeatures},
		e.Options(point(e.Editor, CellStrucDesc, 0, PlaceFinal)))
	require.Equal(t,
		[]InsertKind{InsertPhoneme, InsertNaturalClass, InsertFeatures, InsertWordBoundary, InsertMorphemeBoundary},
		e.Options(point(e.Editor, CellLeftContext, 0, PlaceInitial)),
		"word boundary at the outer edge of the left context")
	require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftContext, 0, PlaceFinal)))
	require.True(t, e.ShouldOffer(InsertWordBoundary, Point(Anchor{Cell: CellRightEmpty})))
	require.False(t, e.ShouldOffer(InsertVariable, Point(Anchor{Cell: CellRightEmpty})))

	_, err := e.Insert(t.Context(), InsertWordBoundary, Ref{}, point(e.Editor, CellLeftContext, 0, PlaceInitial))
	require.NoError(t, err)
	require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftContext, 0, PlaceInitial)),
		"only one word boundary per edge")
}

func TestRegular_OneWordBoundaryAtTheOuterEdge(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p")), testutil.Right(b.Seg("e")))
	e := newRegular(t, b, r)
	ctx := t.Context()
	rhs := r.RightHandSides[0]

	_, err := e.Insert(ctx, InsertWordBoundary, Ref{}, point(e.Editor, CellRightContext, 0, PlaceFinal))
	require.NoError(t, err)
	require.Equal(t, "{e #}", domain.Label(rhs.RightContext))

	end := point(e.Editor, CellRightContext, 1, PlaceFinal)
	require.Empty(t, e.Options(end), "nothing goes outside the boundary")
	res, err := e.Insert(ctx, InsertMorphemeBoundary, Ref{}, end)
	require.NoError(t, err)
	require.False(t, res.OK())

	between := point(e.Editor, CellRightContext, 0, PlaceFinal)
	require.True(t, e.ShouldOffer(InsertMorphemeBoundary, between))
	require.False(t, e.ShouldOffer(InsertWordBoundary, between))
	_, err = e.Insert(ctx, InsertMorphemeBoundary, Ref{}, between)
	require.NoError(t, err)

	require.Equal(t, "{e + #}", domain.Label(rhs.RightContext))
	for i := range e.ItemCount(CellRightContext) {
		for _, place := range []Placement{PlaceInitial, PlaceFinal} {
			require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellRightContext, i, place)))
		}
	}
}

func TestRegular_NotOfferedKindIsIgnored(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p")))
	e := newRegular(t, b, r)

	res, err := e.Insert(t.Context(), InsertWordBoundary, Ref{}, point(e.Editor, CellStrucDesc, 0, PlaceFinal))
	require.NoError(t, err)
	require.False(t, res.OK())
	require.Len(t, r.StrucDesc, 1)
}

func TestRegular_LevelPathRoundTrip(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r",
		testutil.LHS(b.Seg("p"), b.Seg("t")),
		testutil.Change(b.Seg("b")),
		testutil.Left(b.Seq(b.Seg("a"), b.Seg("k"))),
		testutil.Right(b.Seg("e")))
	e := newRegular(t, b, r)

	for _, cell := range e.Cells() {
		for i, item := range e.Items(cell) {
			path := e.LevelPath(cell, i)
			gotCell, gotIndex, ok := e.Locate(path)
			require.True(t, ok, "%s[%d]", cell, i)
			require.Equal(t, cell, gotCell)
			require.Equal(t, i, gotIndex)
			obj, ok := e.Resolve(path)
			require.True(t, ok)
			require.Equal(t, item, obj)
		}
	}
	require.Len(t, e.LevelPath(CellRightContext, 0), 1, "a lone context has a one-step path")
	require.Len(t, e.LevelPath(CellLeftContext, 1), 2, "a sequence member adds a step")
	require.Nil(t, e.LevelPath(CellStrucDesc, 5))
}

func TestRegular_StalePathResolvesToNothing(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p")))
	e := newRegular(t, b, r)

	sel := Point(Anchor{Path: LevelPath{{Field: FieldStrucDesc, Index: 4}}})
	require.Equal(t, CellNone, e.ResolveCell(sel, LimitBoth))
}

func TestRegular_BracketEdgesRedirect(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p"), b.Seg("t")))
	e := newRegular(t, b, r)

	_, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("k")), Point(Anchor{Cell: CellStrucDesc, Edge: EdgeRightBracket}))
	require.NoError(t, err)
	_, err = e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("s")), Point(Anchor{Cell: CellStrucDesc, Edge: EdgeLeftBracket}))
	require.NoError(t, err)

	var got []string
	for _, c := range r.StrucDesc {
		got = append(got, domain.Label(c))
	}
	require.Equal(t, []string{"s", "p", "t", "k"}, got)
}

func TestRegular_RuleEdgesRedirectToEnvironment(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r")
	e := newRegular(t, b, r)

	require.Equal(t, CellLeftEmpty, e.ResolveCell(Point(Anchor{Edge: EdgeRuleStart}), LimitBoth))
	require.Equal(t, CellRightEmpty, e.ResolveCell(Point(Anchor{Edge: EdgeRuleEnd}), LimitBoth))
}

func TestRegular_SetEnvironment(t *testing.T) {
	b := testutil.NewBuilder(t)
	old := b.Seg("a")
	r := b.Regular("r", testutil.Right(old))
	e := newRegular(t, b, r)

	diags, err := e.SetEnvironment(t.Context(), "/ [C] (#) _")
	require.NoError(t, err)
	require.Empty(t, diags)

	rhs := r.RightHandSides[0]
	seq, ok := rhs.LeftContext.(*domain.SequenceContext)
	require.True(t, ok)
	require.Len(t, seq.Members, 2)
	require.True(t, b.Data.InPool(seq.Members[0]))
	require.IsType(t, &domain.IterationContext{}, seq.Members[1])
	require.Nil(t, rhs.RightContext)
	require.False(t, old.Live())

	env, err := e.Environment()
	require.NoError(t, err)
	require.Equal(t, "/ [C] (#) _", env)
}

func TestRegular_SetEnvironmentReportsDiagnostics(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r")
	e := newRegular(t, b, r)

	diags, err := e.SetEnvironment(t.Context(), "/ [Q] a _ x")
	require.NoError(t, err)
	require.Len(t, diags, 2)
	require.Equal(t, "a", domain.Label(r.RightHandSides[0].LeftContext))
	require.Nil(t, r.RightHandSides[0].RightContext)
}

func TestRegular_SetOccurrence(t *testing.T) {
	b := testutil.NewBuilder(t)
	a := b.Seg("a")
	r := b.Regular("r", testutil.LHS(b.Seg("p")), testutil.Left(a))
	e := newRegular(t, b, r)
	rhs := r.RightHandSides[0]

	res, err := e.SetOccurrence(t.Context(), point(e.Editor, CellLeftContext, 0, PlaceFinal), 0, 1)
	require.NoError(t, err)
	it, ok := rhs.LeftContext.(*domain.IterationContext)
	require.True(t, ok)
	require.Same(t, a, it.Member)
	require.Equal(t, CellLeftContext, res.Cell)

	_, err = e.SetOccurrence(t.Context(), Point(e.AnchorFor(res)), 1, domain.Unbounded)
	require.NoError(t, err)
	require.Equal(t, domain.Unbounded, it.Max)

	_, err = e.SetOccurrence(t.Context(), Point(e.AnchorFor(res)), 1, 1)
	require.NoError(t, err)
	require.Same(t, a, rhs.LeftContext, "exactly once unwraps the iteration")
	require.False(t, it.Live())

	_, err = e.SetOccurrence(t.Context(), Point(e.AnchorFor(res)), 2, 1)
	require.ErrorIs(t, err, ErrBadOccurrence)
	_, err = e.SetOccurrence(t.Context(), point(e.Editor, CellStrucDesc, 0, PlaceFinal), 0, 1)
	require.ErrorIs(t, err, ErrNotApplicable)
}

func TestRegular_SetOccurrenceInsideSequenceKeepsPool(t *testing.T) {
	b := testutil.NewBuilder(t)
	a, k := b.Seg("a"), b.Seg("k")
	r := b.Regular("r", testutil.Left(b.Seq(a, k)))
	e := newRegular(t, b, r)

	_, err := e.SetOccurrence(t.Context(), point(e.Editor, CellLeftContext, 1, PlaceFinal), 0, 1)
	require.NoError(t, err)

	seq := r.RightHandSides[0].LeftContext.(*domain.SequenceContext)
	wrapped := seq.Members[1]
	require.True(t, b.Data.InPool(wrapped))
	require.False(t, b.Data.InPool(k), "the wrapped context belongs to the iteration")
}

func TestRegular_FailedUnitReportsError(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p")))
	u := &failingUnit{}
	e, err := NewRegularEditor(b.Data, r, 0, WithUnitOfWork(u))
	require.NoError(t, err)

	res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("a")), point(e.Editor, CellStrucDesc, 0, PlaceFinal))
	require.ErrorIs(t, err, errFailingUnit)
	require.False(t, res.OK())
	require.Equal(t, 1, u.calls)
}
