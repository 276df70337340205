package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/infrastructure/sqlite"
	"github.com/zjrosen/phonrule/internal/inventory"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/session"
	"github.com/zjrosen/phonrule/internal/tracing"
)

// workspace is what the rule commands open: the inventory, every stored
// rule decoded against it, and the store.
type workspace struct {
	data  *domain.PhonData
	index *inventory.Index
	db    *sqlite.DB
	repo  *sqlite.RuleRepository
}

// openWorkspace loads the configured inventory and stored rules. Stored
// rules that no longer decode, typically after an inventory change, are
// reported to warn and skipped.
func openWorkspace(warn io.Writer) (*workspace, error) {
	data, err := inventory.Load(cfg.Inventory.Path)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.NewDB(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening rule store: %w", err)
	}
	ws := &workspace{
		data:  data,
		index: inventory.NewIndex(data, cfg.Inventory.CacheTTL),
		db:    db,
		repo:  db.RuleRepository(),
	}

	stored, err := ws.repo.List()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, s := range stored {
		if _, err := ws.repo.Load(data, s.Name); err != nil {
			log.ErrorErr(log.CatStore, "Skipping stored rule", err, "rule", s.Name)
			_, _ = fmt.Fprintf(warn, "warning: skipping %s: %v\n", s.Name, err)
		}
	}
	return ws, nil
}

// rules returns the named rules, or every rule when names is empty.
func (ws *workspace) rules(names []string) ([]domain.Rule, error) {
	if len(names) == 0 {
		return ws.data.Rules, nil
	}
	out := make([]domain.Rule, 0, len(names))
	for _, name := range names {
		r, err := ws.data.RuleByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// session starts an editing session over the workspace.
func (ws *workspace) session(tracer trace.Tracer) *session.Session {
	return session.New(session.Config{
		Data:         ws.data,
		Lookup:       ws.index,
		Store:        ws.repo,
		HistoryLimit: cfg.Editor.HistoryLimit,
		Tracer:       tracer,
	})
}

func (ws *workspace) Close() error {
	return ws.db.Close()
}

// startTracing builds the configured tracer provider. The returned
// function flushes it.
func startTracing() (trace.Tracer, func(), error) {
	p, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("starting tracing: %w", err)
	}
	return p.Tracer(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "Tracing shutdown failed", err)
		}
	}, nil
}
