package envstring

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/testutil"
)

func TestParse_ClassThenOptionalBoundary(t *testing.T) {
	b := testutil.NewBuilder(t)

	env, diags := Parse("/ [C] (#) _", b.Data)

	require.Empty(t, diags)
	require.Empty(t, env.Right)
	require.Len(t, env.Left, 2)
	cls, ok := env.Left[0].(*domain.ClassContext)
	require.True(t, ok)
	require.Equal(t, "C", cls.Class.Abbreviation)
	it, ok := env.Left[1].(*domain.IterationContext)
	require.True(t, ok)
	require.Equal(t, 0, it.Min)
	require.Equal(t, 1, it.Max)
	require.True(t, domain.IsWordBoundary(it.Member))
}

func TestParse_GreedyLongestMatch(t *testing.T) {
	b := testutil.NewBuilder(t)

	env, diags := Parse("/ _ tʃats", b.Data)

	require.Empty(t, diags)
	want := []domain.Context{b.Seg("tʃ"), b.Seg("a"), b.Seg("ts")}
	require.True(t, domain.EqualSlices(want, env.Right), "got %v", labels(env.Right))
}

func TestParse_GroupOfSeveralItems(t *testing.T) {
	b := testutil.NewBuilder(t)

	env, diags := Parse("/ (a [N]) _ +", b.Data)

	require.Empty(t, diags)
	require.Len(t, env.Left, 1)
	it := env.Left[0].(*domain.IterationContext)
	seq, ok := it.Member.(*domain.SequenceContext)
	require.True(t, ok)
	require.Len(t, seq.Members, 2)
	require.Len(t, env.Right, 1)
	require.Equal(t, "+", domain.Label(env.Right[0]))
}

func TestParse_Diagnostics(t *testing.T) {
	b := testutil.NewBuilder(t)

	tests := []struct {
		name      string
		input     string
		wantLeft  int
		wantRight int
		messages  []string
	}{
		{"unknown class dropped", "/ [Q] a _", 1, 0, []string{"unknown natural class [Q]"}},
		{"unknown phoneme dropped", "/ _ axe", 0, 2, []string{`unknown phoneme "x"`}},
		{"reduplication ignored", "/ [C^1] _", 1, 0, []string{"reduplication marker on [C] ignored"}},
		{"unmatched close paren", "/ a ) _", 1, 0, []string{"unmatched ')'"}},
		{"unclosed group", "/ (a _ e", 1, 1, []string{"unclosed '('"}},
		{"empty group", "/ () _", 0, 0, []string{"empty group dropped"}},
		{"missing slash", "a _", 1, 0, []string{"missing '/' before environment"}},
		{"missing underscore", "/ a e", 2, 0, []string{"missing '_' between left and right environment"}},
		{"second underscore", "/ a _ e _ i", 1, 2, []string{"unexpected '_'"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, diags := Parse(tt.input, b.Data)
			require.Len(t, env.Left, tt.wantLeft)
			require.Len(t, env.Right, tt.wantRight)
			var got []string
			for _, d := range diags {
				got = append(got, d.Message)
			}
			require.Equal(t, tt.messages, got)
		})
	}
}

func TestDiagnostics_Warnings(t *testing.T) {
	b := testutil.NewBuilder(t)
	_, diags := Parse("[C^] x _", b.Data)
	require.Len(t, diags, 3)
	require.Len(t, diags.Warnings(), 1, "only the unknown phoneme dropped input")
	require.Equal(t, "x", diags.Warnings()[0].Text)
}

func TestFormat(t *testing.T) {
	b := testutil.NewBuilder(t)
	left := b.Seq(b.Class("C"), domain.NewIteration(b.WordBoundary(), 0, 1))

	s, err := Format(left, nil)
	require.NoError(t, err)
	require.Equal(t, "/ [C] (#) _", s)

	s, err = Format(nil, b.Seg("a"))
	require.NoError(t, err)
	require.Equal(t, "/ _ a", s)
}

func TestFormat_NotExpressible(t *testing.T) {
	b := testutil.NewBuilder(t)

	_, err := Format(domain.NewVariable(), nil)
	require.ErrorIs(t, err, ErrNotExpressible)

	_, err = Format(nil, domain.NewIteration(b.Seg("a"), 1, domain.Unbounded))
	require.ErrorIs(t, err, ErrNotExpressible)

	_, err = Format(domain.NewSegment(nil), nil)
	require.ErrorIs(t, err, ErrNotExpressible)
}

// TestFormat_RoundTrip checks that parsing a formatted environment gives
// back equal contexts.
func TestFormat_RoundTrip(t *testing.T) {
	symbols := []string{"a", "e", "t", "s", "ts", "tʃ", "m"}
	classes := []string{"C", "V", "N", "voi"}

	rapid.Check(t, func(rt *rapid.T) {
		b := testutil.NewBuilder(rt)
		item := func(label string) domain.Context {
			switch rapid.IntRange(0, 4).Draw(rt, label) {
			case 0:
				return b.Class(rapid.SampledFrom(classes).Draw(rt, label+"-class"))
			case 1:
				return b.MorphemeBoundary()
			case 2:
				return domain.NewIteration(b.Seg(rapid.SampledFrom(symbols).Draw(rt, label+"-opt")), 0, 1)
			default:
				return b.Seg(rapid.SampledFrom(symbols).Draw(rt, label+"-seg"))
			}
		}
		side := func(label string) []domain.Context {
			n := rapid.IntRange(0, 4).Draw(rt, label)
			out := make([]domain.Context, n)
			for i := range out {
				out[i] = item(label)
			}
			return out
		}
		left, right := side("left"), side("right")

		s, err := Format(domain.NewSequence(left...), domain.NewSequence(right...))
		if err != nil {
			rt.Fatalf("format: %v", err)
		}
		env, diags := Parse(s, b.Data)
		if len(diags) > 0 {
			rt.Fatalf("%q: unexpected diagnostics %v", s, diags)
		}
		if !domain.EqualSlices(left, env.Left) || !domain.EqualSlices(right, env.Right) {
			rt.Fatalf("%q parsed as %v _ %v", s, labels(env.Left), labels(env.Right))
		}
	})
}

func labels(cs []domain.Context) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = domain.Label(c)
	}
	return out
}
