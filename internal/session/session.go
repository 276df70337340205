// Package session drives formula editors from text commands. A Session
// holds the phonological data, one unit-of-work manager for undo and redo,
// the rule being edited and a cursor into its formula. The playground and
// the edit command are both front ends to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
	"github.com/zjrosen/phonrule/internal/formula"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/pubsub"
	"github.com/zjrosen/phonrule/internal/txn"
	"github.com/zjrosen/phonrule/internal/ui/formulaview"
)

var (
	ErrNoRule       = errors.New("no rule selected")
	ErrNoRepository = errors.New("no rule store configured")
)

// Saver stores a batch of rules.
type Saver interface {
	SaveAll(data *domain.PhonData, rules []domain.Rule) error
}

// Config configures a Session.
type Config struct {
	Data *domain.PhonData
	// Lookup resolves symbols for insertions and environment strings.
	// Defaults to Data.
	Lookup envstring.Lookup
	// Store is optional; without it save fails with ErrNoRepository.
	Store        Saver
	HistoryLimit int
	Tracer       trace.Tracer
}

// Session is not safe for concurrent use.
type Session struct {
	data   *domain.PhonData
	lookup envstring.Lookup
	store  Saver
	uow    *txn.Manager

	rule    domain.Rule
	rhs     int
	ed      *formula.Editor
	affix   *formula.AffixEditor
	regular *formula.RegularEditor
	meta    *formula.MetathesisEditor
	cursor  formulaview.Cursor
}

// New creates a session over cfg.Data. The first rule, if any, is selected.
func New(cfg Config) *Session {
	s := &Session{data: cfg.Data, lookup: cfg.Lookup, store: cfg.Store}
	if s.lookup == nil {
		s.lookup = cfg.Data
	}
	opts := []txn.Option{
		txn.WithDescriber(s.describe),
		txn.WithMiddleware(txn.LoggingMiddleware()),
	}
	if cfg.HistoryLimit > 0 {
		opts = append(opts, txn.WithLimit(cfg.HistoryLimit))
	}
	if cfg.Tracer != nil {
		opts = append(opts, txn.WithTracer(cfg.Tracer))
	}
	s.uow = txn.NewManager(cfg.Data, opts...)
	if len(cfg.Data.Rules) > 0 {
		_ = s.selectRule(cfg.Data.Rules[0], 0)
	}
	return s
}

// Data returns the edited data.
func (s *Session) Data() *domain.PhonData { return s.data }

// Rule returns the selected rule, or nil.
func (s *Session) Rule() domain.Rule { return s.rule }

// RHS returns the selected right-hand side of a regular rule.
func (s *Session) RHS() int { return s.rhs }

// Editor returns the editor of the selected rule, or nil.
func (s *Session) Editor() *formula.Editor { return s.ed }

// Cursor returns the caret position.
func (s *Session) Cursor() formulaview.Cursor { return s.cursor }

// Changes publishes committed, undone and redone units.
func (s *Session) Changes() *pubsub.Broker[txn.Change] { return s.uow.Changes() }

// History lists the undoable units, oldest first.
func (s *Session) History() []string { return s.uow.History() }

// Close releases the change broker.
func (s *Session) Close() { s.uow.Close() }

// Render draws the selected rule with the cursor.
func (s *Session) Render(opts formulaview.Options) string {
	if s.ed == nil {
		return ""
	}
	cur := s.cursor
	opts.Cursor = &cur
	return formulaview.Render(s.ed, opts)
}

// Select makes the rule named name current.
func (s *Session) Select(name string) error {
	r, err := s.data.RuleByName(name)
	if err != nil {
		return err
	}
	return s.selectRule(r, 0)
}

// SelectRHS binds the editor to right-hand side i of the current regular
// rule.
func (s *Session) SelectRHS(i int) error {
	if s.rule == nil {
		return ErrNoRule
	}
	return s.selectRule(s.rule, i)
}

func (s *Session) selectRule(r domain.Rule, rhs int) error {
	opts := []formula.Option{formula.WithUnitOfWork(s.uow), formula.WithLookup(s.lookup)}
	s.affix, s.regular, s.meta = nil, nil, nil
	switch x := r.(type) {
	case *domain.AffixProcessRule:
		s.affix = formula.NewAffixEditor(s.data, x, opts...)
		s.ed = s.affix.Editor
	case *domain.MetathesisRule:
		s.meta = formula.NewMetathesisEditor(s.data, x, opts...)
		s.ed = s.meta.Editor
	case *domain.RegularRule:
		ed, err := formula.NewRegularEditor(s.data, x, rhs, opts...)
		if err != nil {
			return err
		}
		s.regular = ed
		s.ed = ed.Editor
	default:
		return fmt.Errorf("unsupported rule kind %s", r.Kind())
	}
	s.rule, s.rhs = r, rhs
	s.cursor = formulaview.Cursor{Cell: s.ed.Cells()[0], Index: -1}
	log.Debug(log.CatUI, "selected rule", "rule", r.Name(), "kind", r.Kind(), "rhs", rhs)
	return nil
}

// NewRule adds an empty rule of kind and selects it. Adding a rule is not
// a unit of work and cannot be undone.
func (s *Session) NewRule(kind domain.RuleKind, name string) (domain.Rule, error) {
	if name == "" {
		return nil, errors.New("a rule needs a name")
	}
	if _, err := s.data.RuleByName(name); err == nil {
		return nil, fmt.Errorf("rule %q already exists", name)
	}
	var r domain.Rule
	switch kind {
	case domain.RuleAffixProcess:
		r = domain.NewAffixProcessRule(name)
	case domain.RuleMetathesis:
		r = domain.NewMetathesisRule(name)
	case domain.RuleRegular:
		r = domain.NewRegularRule(name)
	default:
		return nil, fmt.Errorf("unknown rule kind %q", kind)
	}
	s.data.AddRule(r)
	return r, s.selectRule(r, 0)
}

// Undo reverts the last unit and keeps the cursor on a live cell.
func (s *Session) Undo(ctx context.Context) (txn.Unit, error) {
	u, err := s.uow.Undo(ctx)
	if err == nil {
		s.refresh()
	}
	return u, err
}

// Redo reapplies the last undone unit.
func (s *Session) Redo(ctx context.Context) (txn.Unit, error) {
	u, err := s.uow.Redo(ctx)
	if err == nil {
		s.refresh()
	}
	return u, err
}

// refresh rebinds the editor after the data changed under it.
func (s *Session) refresh() {
	if s.rule == nil {
		return
	}
	rhs := s.rhs
	if reg, ok := s.rule.(*domain.RegularRule); ok && rhs >= len(reg.RightHandSides) {
		rhs = len(reg.RightHandSides) - 1
	}
	cur := s.cursor
	if err := s.selectRule(s.rule, rhs); err != nil {
		log.ErrorErr(log.CatUI, "rebinding editor failed", err)
		return
	}
	s.cursor = s.clamp(cur)
}

// Save stores every rule.
func (s *Session) Save() error {
	if s.store == nil {
		return ErrNoRepository
	}
	return s.store.SaveAll(s.data, s.data.Rules)
}

// describe renders every rule; the unit-of-work manager diffs it.
func (s *Session) describe() string {
	var b strings.Builder
	for _, r := range s.data.Rules {
		for _, ed := range plainEditors(s.data, r) {
			b.WriteString(formulaview.Describer(ed)())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// plainEditors returns read-only editors for r, one per right-hand side of
// a regular rule.
func plainEditors(data *domain.PhonData, r domain.Rule) []*formula.Editor {
	switch x := r.(type) {
	case *domain.AffixProcessRule:
		return []*formula.Editor{formula.NewAffixEditor(data, x).Editor}
	case *domain.MetathesisRule:
		return []*formula.Editor{formula.NewMetathesisEditor(data, x).Editor}
	case *domain.RegularRule:
		var out []*formula.Editor
		for i := range x.RightHandSides {
			if ed, err := formula.NewRegularEditor(data, x, i); err == nil {
				out = append(out, ed.Editor)
			}
		}
		return out
	}
	return nil
}

// Describe renders every right-hand side of r as plain text, one per line.
func Describe(data *domain.PhonData, r domain.Rule) []string {
	var out []string
	for _, ed := range plainEditors(data, r) {
		out = append(out, formulaview.Plain(ed))
	}
	return out
}
