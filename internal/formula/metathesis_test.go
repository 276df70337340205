package formula

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/testutil"
)

func labels(cs []domain.Context) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = domain.Label(c)
	}
	return out
}

func TestMetathesis_RemoveEmptiesSwitch(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Metathesis("swap", domain.Zones{1, 1, 0, 1, 1}, b.Seg("a"), b.Seg("p"), b.Seg("t"), b.Seg("e"))
	e := NewMetathesisEditor(b.Data, r)

	res, err := e.Remove(t.Context(), point(e.Editor, CellLeftSwitch, 0, PlaceInitial), true)
	require.NoError(t, err)

	require.Equal(t, []string{"a", "t", "e"}, labels(r.StrucDesc))
	require.Equal(t, domain.Zones{1, 0, 0, 1, 1}, r.Zones)
	require.Equal(t, domain.LegacyIndices{{0, 1}, {-1, -1}, {-1, -1}, {1, 2}, {2, 3}}, r.Zones.Indices())
	require.Equal(t, CellLeftEnv, res.Cell, "cursor moves out of the emptied cell")
	require.Equal(t, 0, res.Index)
	require.Equal(t, PlaceFinal, res.Placement)
	require.Equal(t, LevelPath{{Field: FieldStrucDesc, Index: 0}}, res.Path)
}

func TestMetathesis_Cells(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Metathesis("swap", domain.Zones{1, 1, 1, 1, 1}, b.Seg("a"), b.Seg("p"), b.Seg("o"), b.Seg("t"), b.Seg("e"))
	e := NewMetathesisEditor(b.Data, r)

	require.Equal(t, []CellID{CellLeftEnv, CellLeftSwitch, CellRightSwitch, CellRightEnv}, e.Cells())
	require.Equal(t, 1, e.ItemCount(CellLeftSwitch))
	require.Equal(t, 2, e.ItemCount(CellRightSwitch), "middle shows with the right switch by default")

	require.NoError(t, e.SetMiddleWithLeftSwitch(t.Context(), true))
	require.Equal(t, 2, e.ItemCount(CellLeftSwitch))
	require.Equal(t, 1, e.ItemCount(CellRightSwitch))
	require.Equal(t, LevelPath{{Field: FieldStrucDesc, Index: 2}}, e.LevelPath(CellLeftSwitch, 1))

	for _, cell := range e.Cells() {
		for i := range e.ItemCount(cell) {
			c, idx, ok := e.Locate(e.LevelPath(cell, i))
			require.True(t, ok)
			require.Equal(t, cell, c)
			require.Equal(t, i, idx)
		}
	}
}

func TestMetathesis_InsertZone(t *testing.T) {
	tests := []struct {
		name       string
		middleLeft bool
		cell       CellID
		index      int
		place      Placement
		want       domain.Zones
	}{
		{"left env end", false, CellLeftEnv, 0, PlaceFinal, domain.Zones{2, 1, 1, 1, 1}},
		{"right switch start with middle", false, CellRightSwitch, 0, PlaceInitial, domain.Zones{1, 1, 2, 1, 1}},
		{"between middle and right switch", false, CellRightSwitch, 0, PlaceFinal, domain.Zones{1, 1, 1, 2, 1}},
		{"between left switch and middle", true, CellLeftSwitch, 0, PlaceFinal, domain.Zones{1, 2, 1, 1, 1}},
		{"after middle in left cell", true, CellLeftSwitch, 1, PlaceFinal, domain.Zones{1, 1, 2, 1, 1}},
		{"right env start", false, CellRightEnv, 0, PlaceInitial, domain.Zones{1, 1, 1, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBuilder(t)
			r := b.Metathesis("swap", domain.Zones{1, 1, 1, 1, 1}, b.Seg("a"), b.Seg("p"), b.Seg("o"), b.Seg("t"), b.Seg("e"))
			r.MiddleWithLeftSwitch = tt.middleLeft
			e := NewMetathesisEditor(b.Data, r)

			res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("s")), point(e.Editor, tt.cell, tt.index, tt.place))
			require.NoError(t, err)
			require.Equal(t, tt.want, r.Zones)
			require.NoError(t, r.Validate())
			require.Equal(t, tt.cell, res.Cell)
		})
	}
}

func TestMetathesis_InsertIntoEmptyRule(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Metathesis("swap", domain.Zones{})
	e := NewMetathesisEditor(b.Data, r)

	_, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("a")), Point(Anchor{Edge: EdgeRuleStart}))
	require.NoError(t, err)
	_, err = e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("i")), Point(Anchor{Cell: CellRightSwitch}))
	require.NoError(t, err)
	_, err = e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("u")), Point(Anchor{Edge: EdgeRuleEnd}))
	require.NoError(t, err)

	require.Equal(t, []string{"a", "i", "u"}, labels(r.StrucDesc))
	require.Equal(t, domain.Zones{1, 0, 0, 1, 1}, r.Zones)
}

func TestMetathesis_WordBoundaryOffers(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Metathesis("swap", domain.Zones{1, 1, 0, 1, 1}, b.Seg("a"), b.Seg("p"), b.Seg("t"), b.Seg("e"))
	e := NewMetathesisEditor(b.Data, r)

	require.True(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftEnv, 0, PlaceInitial)))
	require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftEnv, 0, PlaceFinal)))
	require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftSwitch, 0, PlaceInitial)))
	require.True(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellRightEnv, 0, PlaceFinal)))
	require.False(t, e.ShouldOffer(InsertVariable, point(e.Editor, CellRightEnv, 0, PlaceFinal)))

	_, err := e.Insert(t.Context(), InsertWordBoundary, Ref{}, point(e.Editor, CellLeftEnv, 0, PlaceInitial))
	require.NoError(t, err)
	require.True(t, domain.IsWordBoundary(r.StrucDesc[0]))
	require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftEnv, 0, PlaceInitial)))
}

func TestMetathesis_NothingOutsideWordBoundary(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Metathesis("swap", domain.Zones{1, 1, 0, 1, 1}, b.Seg("a"), b.Seg("p"), b.Seg("t"), b.Seg("e"))
	e := NewMetathesisEditor(b.Data, r)
	ctx := t.Context()

	_, err := e.Insert(ctx, InsertWordBoundary, Ref{}, point(e.Editor, CellLeftEnv, 0, PlaceInitial))
	require.NoError(t, err)
	outside := point(e.Editor, CellLeftEnv, 0, PlaceInitial)
	require.False(t, e.ShouldOffer(InsertPhoneme, outside))
	require.False(t, e.ShouldOffer(InsertMorphemeBoundary, outside))

	res, err := e.Insert(ctx, InsertPhoneme, PhonemeRef(b.Phoneme("s")), outside)
	require.NoError(t, err)
	require.False(t, res.OK())

	// Inside the boundary is still open.
	res, err = e.Insert(ctx, InsertPhoneme, PhonemeRef(b.Phoneme("s")), point(e.Editor, CellLeftEnv, 0, PlaceFinal))
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Equal(t, []string{"#", "s", "a", "p", "t", "e"}, labels(r.StrucDesc))
	require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftEnv, 0, PlaceInitial)))
	require.False(t, e.ShouldOffer(InsertWordBoundary, point(e.Editor, CellLeftEnv, 1, PlaceFinal)))

	_, err = e.Insert(ctx, InsertWordBoundary, Ref{}, point(e.Editor, CellRightEnv, 0, PlaceFinal))
	require.NoError(t, err)
	end := point(e.Editor, CellRightEnv, 1, PlaceFinal)
	require.False(t, e.ShouldOffer(InsertPhoneme, end))
	require.False(t, e.ShouldOffer(InsertWordBoundary, end))
	require.True(t, e.ShouldOffer(InsertPhoneme, point(e.Editor, CellRightEnv, 0, PlaceFinal)))
	require.Equal(t, domain.Zones{3, 1, 0, 1, 2}, r.Zones)
}

func TestMetathesis_RangeRemovalInsideCell(t *testing.T) {
	b := testutil.NewBuilder(t)
	r := b.Metathesis("swap", domain.Zones{0, 1, 2, 1, 0}, b.Seg("p"), b.Seg("a"), b.Seg("e"), b.Seg("t"))
	e := NewMetathesisEditor(b.Data, r)

	// The right switch cell shows the middle a e and then t.
	res, err := e.Remove(t.Context(), span(e.Editor, CellRightSwitch, 1, 2), true)
	require.NoError(t, err)

	require.Equal(t, []string{"p", "a"}, labels(r.StrucDesc))
	require.Equal(t, domain.Zones{0, 1, 1, 0, 0}, r.Zones)
	require.Equal(t, CellRightSwitch, res.Cell)
	require.Equal(t, 0, res.Index)
}

func TestMetathesis_ZonesPartitionStructuralDescription(t *testing.T) {
	ctx := t.Context()
	rapid.Check(t, func(rt *rapid.T) {
		b := testutil.NewBuilder(rt)
		r := b.Metathesis("swap", domain.Zones{1, 1, 0, 1, 1}, b.Seg("a"), b.Seg("p"), b.Seg("t"), b.Seg("e"))
		r.MiddleWithLeftSwitch = rapid.Bool().Draw(rt, "middleLeft")
		e := NewMetathesisEditor(b.Data, r)

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for range steps {
			cell := rapid.SampledFrom(e.Cells()).Draw(rt, "cell")
			i := rapid.IntRange(-1, e.ItemCount(cell)).Draw(rt, "index")
			place := rapid.SampledFrom([]Placement{PlaceInitial, PlaceFinal}).Draw(rt, "place")
			sel := point(e.Editor, cell, i, place)
			if rapid.Bool().Draw(rt, "insert") {
				kind := rapid.SampledFrom([]InsertKind{InsertPhoneme, InsertWordBoundary, InsertMorphemeBoundary}).Draw(rt, "kind")
				_, err := e.Insert(ctx, kind, PhonemeRef(b.Phoneme("s")), sel)
				require.NoError(rt, err)
			} else {
				_, err := e.Remove(ctx, sel, rapid.Bool().Draw(rt, "forward"))
				require.NoError(rt, err)
			}

			require.NoError(rt, r.Validate())
			next := 0
			for _, z := range domain.AllZones {
				start, limit := r.Zones.Start(z), r.Zones.Limit(z)
				if r.Zones.Len(z) == 0 {
					require.Equal(rt, -1, start)
					require.Equal(rt, -1, limit)
					continue
				}
				require.Equal(rt, next, start, "zone %s starts where the previous one ends", z)
				next = limit
			}
			require.Equal(rt, len(r.StrucDesc), next)
		}
	})
}

func TestMetathesis_RemovalRestoresValue(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := testutil.NewBuilder(rt)
		r := b.Metathesis("swap", domain.Zones{1, 1, 1, 1, 1}, b.Seg("a"), b.Seg("p"), b.Seg("o"), b.Seg("t"), b.Seg("e"))
		e := NewMetathesisEditor(b.Data, r)
		before := append([]domain.Context(nil), r.StrucDesc...)
		zones := r.Zones

		cell := rapid.SampledFrom(e.Cells()).Draw(rt, "cell")
		i := rapid.IntRange(0, e.ItemCount(cell)-1).Draw(rt, "index")
		res, err := e.Insert(t.Context(), InsertPhoneme, PhonemeRef(b.Phoneme("s")), point(e.Editor, cell, i, PlaceFinal))
		require.NoError(rt, err)
		_, err = e.Remove(t.Context(), Point(e.AnchorFor(res)), false)
		require.NoError(rt, err)

		require.True(rt, domain.EqualSlices(before, r.StrucDesc))
		require.Equal(rt, zones, r.Zones)
	})
}
