package formula

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/testutil"
)

func TestCellID(t *testing.T) {
	id := domain.NewID()
	col := ColumnCell(id)

	require.True(t, col.Valid())
	require.True(t, col.IsColumn())
	require.Equal(t, id, col.Node())
	require.Equal(t, "column:"+string(id), col.String())
	require.False(t, CellNone.Valid())
	require.False(t, CellAmbiguous.Valid())
	require.Equal(t, "left-switch", CellLeftSwitch.String())
	require.NotEqual(t, col, ColumnCell(domain.NewID()))
}

func TestLevelPath(t *testing.T) {
	p := LevelPath{{Field: FieldInput, Index: 1}, {Field: FieldMembers, Index: 0}}

	require.Equal(t, "input[1]/members[0]", p.String())
	require.True(t, p.Equal(LevelPath{{Field: FieldInput, Index: 1}, {Field: FieldMembers, Index: 0}}))
	require.False(t, p.Equal(p[:1]))
	require.False(t, p.Equal(LevelPath{{Field: FieldInput, Index: 1}, {Field: FieldMembers, Index: 1}}))
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		name           string
		a              Anchor
		atStart, atEnd bool
		isPlaceholder  bool
	}{
		{"before node", Anchor{Path: LevelPath{{Field: FieldStrucDesc}}, Length: 2}, true, false, false},
		{"inside node", Anchor{Path: LevelPath{{Field: FieldStrucDesc}}, Offset: 1, Length: 2}, false, false, false},
		{"after node", Anchor{Path: LevelPath{{Field: FieldStrucDesc}}, Offset: 2, Length: 2}, false, true, false},
		{"empty cell", Anchor{Cell: CellLeftEmpty}, true, true, true},
		{"bracket", Anchor{Cell: CellStrucDesc, Edge: EdgeLeftBracket}, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.atStart, tt.a.AtStart())
			require.Equal(t, tt.atEnd, tt.a.AtEnd())
			require.Equal(t, tt.isPlaceholder, tt.a.IsPlaceholder())
		})
	}
}

func TestInsertKindNames(t *testing.T) {
	for _, k := range AllKinds {
		got, ok := ParseInsertKind(k.String())
		require.True(t, ok, k.String())
		require.Equal(t, k, got)
	}
	_, ok := ParseInsertKind("syllable")
	require.False(t, ok)
}

func TestOptions_NothingToOffer(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p")), testutil.Change(b.Seg("b")))
	e := newRegular(t, b, r)

	sel := Span(e.AnchorAt(CellStrucDesc, 0, PlaceInitial), e.AnchorAt(CellStrucChange, 0, PlaceFinal))
	require.Empty(t, e.Options(sel))
	require.NotEmpty(t, NoOptionsMessage)
}

func TestAnchorAt(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Regular("r", testutil.LHS(b.Seg("p"), b.Seg("tʃ")))
	e := newRegular(t, b, r)

	a := e.AnchorAt(CellStrucDesc, 1, PlaceFinal)
	require.Equal(t, 2, a.Length, "length counts characters, not bytes")
	require.Equal(t, 2, a.Offset)

	a = e.AnchorAt(CellStrucDesc, 7, PlaceInitial)
	require.Equal(t, LevelPath{{Field: FieldStrucDesc, Index: 1}}, a.Path, "index past the end clamps to the last item")
	require.True(t, a.AtEnd())

	a = e.AnchorAt(CellLeftEmpty, 0, PlaceFinal)
	require.Equal(t, Anchor{Cell: CellLeftEmpty}, a)
}

func TestFind(t *testing.T) {
	b := testutil.NewBuilder(t)
	col := domain.NewSequence()
	r := b.Affix("plural", col)
	e := NewAffixEditor(b.Data, r)

	cell, i, ok := e.Find(r.Input[0])
	require.True(t, ok)
	require.Equal(t, ColumnCell(r.Input[0].ID()), cell)
	require.Equal(t, 0, i)

	cell, i, ok = e.Find(col)
	require.True(t, ok, "an empty column is found by its heading")
	require.Equal(t, ColumnCell(col.ID()), cell)
	require.Equal(t, -1, i)

	_, _, ok = e.Find(b.Seg("a"))
	require.False(t, ok)
}

// TestRemovalUndoesInsertion inserts a phoneme anywhere in a regular rule and
// removes it again; every rule field must be equal to what it was.
func TestRemovalUndoesInsertion(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := testutil.NewBuilder(rt)
		r := b.Regular("r",
			testutil.LHS(b.Seg("p"), b.Seg("t")),
			testutil.Change(b.Seg("b")),
			testutil.Left(b.Seg("a")),
			testutil.Right(b.Seq(b.Seg("e"), b.Class("N"))))
		e := newRegular(rt, b, r)
		rhs := r.RightHandSides[0]

		sd := append([]domain.Context(nil), r.StrucDesc...)
		sc := append([]domain.Context(nil), rhs.StrucChange...)
		left, right := rhs.LeftContext, domain.Label(rhs.RightContext)
		pool := len(b.Data.Contexts)

		cell := rapid.SampledFrom(e.Cells()).Draw(rt, "cell")
		i := rapid.IntRange(0, e.ItemCount(cell)-1).Draw(rt, "index")
		place := rapid.SampledFrom([]Placement{PlaceInitial, PlaceFinal}).Draw(rt, "place")

		res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("k")), point(e.Editor, cell, i, place))
		require.NoError(rt, err)
		require.True(rt, res.OK())
		_, err = e.Remove(t.Context(), Point(e.AnchorFor(res)), false)
		require.NoError(rt, err)

		require.True(rt, domain.EqualSlices(sd, r.StrucDesc))
		require.True(rt, domain.EqualSlices(sc, rhs.StrucChange))
		require.True(rt, domain.Equal(left, rhs.LeftContext))
		require.Equal(rt, right, domain.Label(rhs.RightContext))
		require.Len(rt, b.Data.Contexts, pool)
	})
}
