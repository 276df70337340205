package txn

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/tracing"
)

// Handler executes a unit of work.
type Handler interface {
	Handle(ctx context.Context, u Unit) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, u Unit) error

func (f HandlerFunc) Handle(ctx context.Context, u Unit) error { return f(ctx, u) }

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Chain wraps h so the first middleware runs outermost:
// Chain(h, a, b) is a(b(h)).
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// LoggingMiddleware logs every unit with its duration. Rolled back units
// log at warn level.
func LoggingMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, u Unit) error {
			start := time.Now()
			err := next.Handle(ctx, u)
			if err != nil {
				log.Warn(log.CatTxn, "unit rolled back",
					"unit", u.Name,
					"id", u.ID.String(),
					"duration", time.Since(start),
					"error", err.Error(),
				)
				return err
			}
			log.Debug(log.CatTxn, "unit committed",
				"unit", u.Name,
				"id", u.ID.String(),
				"duration", time.Since(start),
			)
			return nil
		})
	}
}

// TracingMiddleware records a span per unit. A nil tracer disables it.
func TracingMiddleware(tr trace.Tracer) Middleware {
	if tr == nil {
		return func(next Handler) Handler { return next }
	}
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, u Unit) error {
			ctx, span := tr.Start(ctx, tracing.SpanPrefixUnit+u.Name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String(tracing.AttrUnitID, u.ID.String()),
					attribute.String(tracing.AttrUnitName, u.Name),
				),
			)
			defer span.End()

			err := next.Handle(ctx, u)
			if err != nil {
				span.RecordError(err)
				span.AddEvent(tracing.EventRolledBack)
				span.SetAttributes(attribute.Bool(tracing.AttrRolledBack, true))
				span.SetStatus(codes.Error, err.Error())
				return err
			}
			span.SetStatus(codes.Ok, "")
			return nil
		})
	}
}
