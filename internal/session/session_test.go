package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/formula"
	"github.com/zjrosen/phonrule/internal/testutil"
	"github.com/zjrosen/phonrule/internal/ui/formulaview"
)

func newSession(t *testing.T, b *testutil.Builder) *Session {
	t.Helper()
	s := New(Config{Data: b.Data})
	t.Cleanup(s.Close)
	return s
}

func nasalSession(t *testing.T) *Session {
	t.Helper()
	b := testutil.NewBuilder(t)
	b.Regular("nasal",
		testutil.LHS(b.Class("N")),
		testutil.Change(b.Seg("m")),
		testutil.Right(b.Seg("p")),
	)
	return newSession(t, b)
}

func run(t *testing.T, s *Session, lines ...string) Outcome {
	t.Helper()
	var out Outcome
	for _, line := range lines {
		var err error
		out, err = s.Exec(t.Context(), line)
		require.NoError(t, err, "command %q", line)
	}
	return out
}

func plain(s *Session) string {
	return formulaview.Plain(s.Editor())
}

func TestNew_SelectsFirstRule(t *testing.T) {
	s := nasalSession(t)

	require.NotNil(t, s.Rule())
	assert.Equal(t, "nasal", s.Rule().Name())
	assert.Equal(t, formulaview.Cursor{Cell: formula.CellStrucDesc, Index: -1}, s.Cursor())
}

func TestNew_NoRules(t *testing.T) {
	s := newSession(t, testutil.NewBuilder(t))

	assert.Nil(t, s.Rule())
	assert.Empty(t, s.Render(formulaview.Options{Plain: true}))
	_, err := s.Exec(t.Context(), "ins variable")
	require.ErrorIs(t, err, ErrNoRule)
}

func TestExec_BuildRegularRule(t *testing.T) {
	s := newSession(t, testutil.NewBuilder(t))

	run(t, s,
		"new regular nasal assimilation",
		"ins natural-class N",
		"cell SC",
		"ins phoneme m",
	)
	out := run(t, s, "env / _ p")
	assert.Empty(t, out.Diagnostics.Warnings())

	assert.Equal(t, "nasal assimilation", s.Rule().Name())
	assert.Equal(t, "[N] → m / _ p", plain(s))
	assert.Equal(t, "/ _ p", run(t, s, "env").Message)
}

func TestExec_EnvironmentDiagnostics(t *testing.T) {
	s := nasalSession(t)

	out := run(t, s, "env / [C] zz _")
	assert.NotEmpty(t, out.Diagnostics.Warnings())
	assert.Contains(t, out.Message, "skipped")
}

func TestExec_Move(t *testing.T) {
	s := nasalSession(t)
	render := func() string { return s.Render(formulaview.Options{Plain: true}) }

	run(t, s, "right")
	assert.Equal(t, "[N]▏ → m / _ p", render())

	run(t, s, "end")
	assert.Equal(t, "[N] → m / _ p▏", render())

	run(t, s, "left 2")
	assert.Equal(t, "[N] → m / ▏ _ p", render())

	run(t, s, "home", "left")
	assert.Equal(t, "▏[N] → m / _ p", render())

	run(t, s, "cell right")
	assert.Equal(t, "[N] → m / _ p▏", render())

	_, err := s.Exec(t.Context(), "cell nowhere")
	require.Error(t, err)
}

func TestExec_RemoveAndUndo(t *testing.T) {
	s := nasalSession(t)

	run(t, s, "cell SC", "bs")
	assert.Equal(t, "[N] → ∅ / _ p", plain(s))

	out := run(t, s, "undo")
	assert.Equal(t, "undid remove", out.Message)
	assert.Equal(t, "[N] → m / _ p", plain(s))

	run(t, s, "redo")
	assert.Equal(t, "[N] → ∅ / _ p", plain(s))
	assert.Equal(t, []string{"remove"}, s.History())
}

func TestExec_UndoEmptyHistory(t *testing.T) {
	s := nasalSession(t)

	_, err := s.Exec(t.Context(), "undo")
	require.Error(t, err)
}

func TestExec_RemoveRange(t *testing.T) {
	b := testutil.NewBuilder(t)
	b.Regular("r", testutil.LHS(b.Seg("a"), b.Seg("e"), b.Seg("i")))
	s := newSession(t, b)

	run(t, s, "rm 1 2")
	assert.Equal(t, "i → ∅ / _", plain(s))

	for _, line := range []string{"rm 0 1", "rm 2 1", "rm 1 5", "rm x y", "rm 1"} {
		_, err := s.Exec(t.Context(), line)
		assert.Error(t, err, line)
	}
}

func TestExec_Occurrence(t *testing.T) {
	b := testutil.NewBuilder(t)
	b.Regular("r", testutil.LHS(b.Seg("a")), testutil.Left(b.Seq(b.WordBoundary(), b.Class("C"))))
	s := newSession(t, b)

	run(t, s, "cell left", "occ 0 1")
	assert.Equal(t, "a → ∅ / # ([C]) _", plain(s))

	run(t, s, "occ 1 *")
	assert.Equal(t, "a → ∅ / # ([C])1+ _", plain(s))

	run(t, s, "occ 1 1")
	assert.Equal(t, "a → ∅ / # [C] _", plain(s))

	_, err := s.Exec(t.Context(), "occ 2 1")
	require.ErrorIs(t, err, formula.ErrBadOccurrence)

	run(t, s, "cell SD")
	_, err = s.Exec(t.Context(), "occ 0 1")
	require.ErrorIs(t, err, formula.ErrNotApplicable)
}

func TestExec_RightHandSides(t *testing.T) {
	s := nasalSession(t)

	out := run(t, s, "addrhs")
	assert.Equal(t, "editing right-hand side 2", out.Message)
	assert.Equal(t, 1, s.RHS())
	assert.Equal(t, "[N] → ∅ / _", plain(s))
	assert.Len(t, Describe(s.Data(), s.Rule()), 2)

	run(t, s, "rhs 1")
	assert.Equal(t, "[N] → m / _ p", plain(s))

	run(t, s, "rhs 2", "undo")
	assert.Equal(t, 0, s.RHS(), "right-hand side index clamped after undo")
	assert.Equal(t, []string{"[N] → m / _ p"}, Describe(s.Data(), s.Rule()))

	_, err := s.Exec(t.Context(), "rhs 3")
	require.Error(t, err)
}

func TestExec_Affix(t *testing.T) {
	s := newSession(t, testutil.NewBuilder(t))

	run(t, s, "new affix-process aff")
	assert.Equal(t, "| X | → 1", plain(s))

	run(t, s, "ins phoneme p")
	assert.Equal(t, "| p | X | → 2", plain(s))

	run(t, s, "end", "ins index 2")
	assert.Equal(t, "| p | X | → 2 2", plain(s))

	run(t, s, "mod voi")
	assert.Equal(t, "| p | X | → 2 2[voi]", plain(s))
	run(t, s, "mod -")
	assert.Equal(t, "| p | X | → 2 2", plain(s))

	_, err := s.Exec(t.Context(), "ins index 9")
	require.ErrorIs(t, err, formula.ErrBadIndex)

	run(t, s, "cell 2")
	_, err = s.Exec(t.Context(), "rmcol")
	require.ErrorIs(t, err, formula.ErrLastVariable)

	run(t, s, "cell 1", "rmcol")
	assert.Equal(t, "| X | → 1 1", plain(s))

	run(t, s, "col")
	assert.Len(t, s.Rule().(*domain.AffixProcessRule).Input, 2)
}

func TestExec_AffixOnlyCommands(t *testing.T) {
	s := nasalSession(t)

	for _, line := range []string{"col", "rmcol", "mod voi", "middle left"} {
		_, err := s.Exec(t.Context(), line)
		require.ErrorIs(t, err, formula.ErrNotApplicable, line)
	}
}

func TestExec_Metathesis(t *testing.T) {
	s := newSession(t, testutil.NewBuilder(t))

	run(t, s,
		"new metathesis swap",
		"cell sw1", "ins phoneme a",
		"cell sw2", "ins phoneme t",
		"cell renv", "ins word-boundary",
	)
	assert.Equal(t, "∅ | a | t | #", plain(s))

	r := s.Rule().(*domain.MetathesisRule)
	require.NoError(t, r.Validate())

	run(t, s, "middle left")
	assert.True(t, r.MiddleWithLeftSwitch)

	_, err := s.Exec(t.Context(), "middle up")
	require.Error(t, err)
}

func TestExec_Insert(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		wantErr bool
	}{
		{name: "phoneme", line: "ins phoneme tʃ", want: "tʃ → ∅ / _"},
		{name: "placeholder phoneme", line: "ins phoneme", want: "? → ∅ / _"},
		{name: "feature class", line: "ins features voi", want: "[voi] → ∅ / _"},
		{name: "unknown phoneme", line: "ins phoneme zz", wantErr: true},
		{name: "unknown class", line: "ins natural-class Q", wantErr: true},
		{name: "unknown kind", line: "ins vowel a", wantErr: true},
		{name: "not offered", line: "ins column", wantErr: true},
		{name: "missing kind", line: "ins", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, testutil.NewBuilder(t))
			run(t, s, "new regular r")

			_, err := s.Exec(t.Context(), tt.line)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "∅ → ∅ / _", plain(s))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, plain(s))
		})
	}
}

func TestExec_Options(t *testing.T) {
	s := nasalSession(t)

	out := run(t, s, "opts")
	assert.Contains(t, out.Message, "phoneme")
	assert.NotContains(t, out.Message, "column")
}

func TestExec_UnknownCommand(t *testing.T) {
	s := nasalSession(t)

	_, err := s.Exec(t.Context(), "frobnicate")
	require.ErrorIs(t, err, ErrUnknownCommand)

	out, err := s.Exec(t.Context(), "   ")
	require.NoError(t, err)
	assert.Empty(t, out.Message)
}

func TestNewRule_Rejects(t *testing.T) {
	s := nasalSession(t)

	_, err := s.NewRule(domain.RuleRegular, "nasal")
	require.Error(t, err)
	_, err = s.NewRule(domain.RuleRegular, "")
	require.Error(t, err)
	_, err = s.NewRule("tone", "t")
	require.Error(t, err)
	assert.Len(t, s.Data().Rules, 1)
}

type recordingSaver struct {
	saved []string
	err   error
}

func (r *recordingSaver) SaveAll(_ *domain.PhonData, rules []domain.Rule) error {
	for _, rule := range rules {
		r.saved = append(r.saved, rule.Name())
	}
	return r.err
}

func TestExec_Save(t *testing.T) {
	b := testutil.NewBuilder(t)
	b.Regular("one")
	b.Regular("two")

	t.Run("without store", func(t *testing.T) {
		s := newSession(t, b)
		_, err := s.Exec(t.Context(), "save")
		require.ErrorIs(t, err, ErrNoRepository)
	})

	t.Run("stores every rule", func(t *testing.T) {
		saver := &recordingSaver{}
		s := New(Config{Data: b.Data, Store: saver})
		t.Cleanup(s.Close)

		out := run(t, s, "save")
		assert.Equal(t, "saved 2 rules", out.Message)
		assert.Equal(t, []string{"one", "two"}, saver.saved)
	})

	t.Run("store error", func(t *testing.T) {
		boom := errors.New("disk full")
		s := New(Config{Data: b.Data, Store: &recordingSaver{err: boom}})
		t.Cleanup(s.Close)

		_, err := s.Exec(t.Context(), "save")
		require.ErrorIs(t, err, boom)
	})
}

func TestUsage(t *testing.T) {
	lines := Usage()

	require.Len(t, lines, len(commands))
	assert.True(t, strings.HasPrefix(lines[0], "addrhs"))
}
