// Package txn runs rule edits as units of work. A unit either completes or
// leaves the phonological data exactly as it found it; completed units go on
// an undo history.
package txn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/pubsub"
	"github.com/zjrosen/phonrule/internal/tracing"
)

// DefaultLimit is the number of units kept on the undo history.
const DefaultLimit = 100

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrPanic wraps a panic raised inside a unit. The unit is rolled back.
	ErrPanic = errors.New("unit of work panicked")
)

// Snapshotter captures and restores the state units change. It is
// implemented by *domain.PhonData.
type Snapshotter interface {
	Snapshot() *domain.Snapshot
	Restore(*domain.Snapshot)
}

// Describer renders the state as text. The manager diffs the text before and
// after each unit to describe the change.
type Describer func() string

// Unit identifies one unit of work.
type Unit struct {
	ID   uuid.UUID
	Name string

	work func(ctx context.Context) error
}

// Change is published after a unit commits and after undo or redo.
type Change struct {
	Unit Unit
	// Diff marks removed text as [-text-] and added text as {+text+}.
	Diff string
	At   time.Time
}

type entry struct {
	unit          Unit
	before, after *domain.Snapshot
	diff          string
}

// Manager runs units of work against one Snapshotter. It implements
// formula.UnitOfWork. A Manager is not safe for concurrent use.
type Manager struct {
	state    Snapshotter
	describe Describer
	handler  Handler
	broker   *pubsub.Broker[Change]
	limit    int

	undo, redo []entry
	depth      int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the undo history.
func WithLimit(n int) Option {
	return func(m *Manager) { m.limit = n }
}

// WithDescriber enables change diffs.
func WithDescriber(d Describer) Option {
	return func(m *Manager) { m.describe = d }
}

// WithMiddleware wraps unit execution. The first middleware is outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(m *Manager) { m.handler = Chain(m.handler, mws...) }
}

// WithTracer records a span per unit.
func WithTracer(tr trace.Tracer) Option {
	return WithMiddleware(TracingMiddleware(tr))
}

// NewManager returns a manager over state.
func NewManager(state Snapshotter, opts ...Option) *Manager {
	m := &Manager{
		state:   state,
		handler: HandlerFunc(run),
		broker:  pubsub.NewBroker[Change](),
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Changes returns the broker on which committed, undone and redone changes
// are published.
func (m *Manager) Changes() *pubsub.Broker[Change] { return m.broker }

// Do runs fn as one unit of work. When fn returns an error or panics every
// change it made is rolled back and the error is returned. A Do nested in
// another unit joins the outer unit.
func (m *Manager) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if m.depth > 0 {
		return fn(ctx)
	}

	u := Unit{ID: uuid.New(), Name: name, work: fn}
	before := m.state.Snapshot()
	var text string
	if m.describe != nil {
		text = m.describe()
	}

	m.depth++
	err := m.handler.Handle(ctx, u)
	m.depth--
	if err != nil {
		m.state.Restore(before)
		return err
	}

	e := entry{unit: u, before: before, after: m.state.Snapshot()}
	if m.describe != nil {
		e.diff = Diff(text, m.describe())
	}
	m.undo = append(m.undo, e)
	if over := len(m.undo) - m.limit; m.limit > 0 && over > 0 {
		m.undo = m.undo[over:]
	}
	m.redo = nil
	m.publish(pubsub.CommittedEvent, e)
	return nil
}

// run is the innermost handler.
func run(ctx context.Context, u Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPanic, u.Name, r)
		}
	}()
	return u.work(ctx)
}

// Undo reverts the most recent unit.
func (m *Manager) Undo(ctx context.Context) (Unit, error) {
	if len(m.undo) == 0 {
		return Unit{}, ErrNothingToUndo
	}
	e := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.state.Restore(e.before)
	m.redo = append(m.redo, e)
	log.Debug(log.CatTxn, "undo", "unit", e.unit.Name, "id", e.unit.ID)
	trace.SpanFromContext(ctx).AddEvent(tracing.EventUndo)
	m.publish(pubsub.UndoneEvent, e)
	return e.unit, nil
}

// Redo reapplies the most recently undone unit.
func (m *Manager) Redo(ctx context.Context) (Unit, error) {
	if len(m.redo) == 0 {
		return Unit{}, ErrNothingToRedo
	}
	e := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.state.Restore(e.after)
	m.undo = append(m.undo, e)
	log.Debug(log.CatTxn, "redo", "unit", e.unit.Name, "id", e.unit.ID)
	trace.SpanFromContext(ctx).AddEvent(tracing.EventRedo)
	m.publish(pubsub.RedoneEvent, e)
	return e.unit, nil
}

// CanUndo reports whether Undo has something to revert.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo has something to reapply.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// History returns the names of the undoable units, oldest first.
func (m *Manager) History() []string {
	out := make([]string, len(m.undo))
	for i, e := range m.undo {
		out[i] = e.unit.Name
	}
	return out
}

func (m *Manager) publish(t pubsub.EventType, e entry) {
	m.broker.Publish(t, Change{Unit: e.unit, Diff: e.diff, At: time.Now()})
}

// Close closes the change broker.
func (m *Manager) Close() { m.broker.Close() }
