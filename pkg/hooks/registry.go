// Package hooks is the mutation-reconciliation core of the index: handlers
// subscribed to entity mutations that run synchronously inside the writer's
// execution context. Handlers are independent of one another; the first
// error aborts the triggering write.
package hooks

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// Event describes a single entity mutation. Created and Deleted are mutually
// exclusive; an event carrying both is an internal-consistency failure.
type Event struct {
	Entity  models.Entity
	Created bool
	Deleted bool
}

// Kind returns the entity kind the event routes on.
func (e Event) Kind() models.EntityKind { return e.Entity.Kind() }

// Handler processes one mutation event. Handlers run in the writer's
// goroutine; blocking work must be kept to fail-fast store and queue calls.
type Handler func(ctx context.Context, ev Event) error

// Registry routes mutation events to the handlers registered for the entity
// kind. Registration happens at startup; dispatch is read-only thereafter.
type Registry struct {
	mu       sync.RWMutex
	handlers map[models.EntityKind][]Handler
	log      *slog.Logger
	tracer   trace.Tracer
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[models.EntityKind][]Handler),
		log:      log,
		tracer:   otel.Tracer("safeindex.hooks"),
	}
}

// Register subscribes a handler to an entity kind.
func (r *Registry) Register(kind models.EntityKind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], h)
}

// Saved fires the handlers for a saved entity. created distinguishes fresh
// inserts from overwrites.
func (r *Registry) Saved(ctx context.Context, entity models.Entity, created bool) error {
	return r.dispatch(ctx, Event{Entity: entity, Created: created})
}

// Deleted fires the handlers for a removed entity.
func (r *Registry) Deleted(ctx context.Context, entity models.Entity) error {
	return r.dispatch(ctx, Event{Entity: entity, Deleted: true})
}

func (r *Registry) dispatch(ctx context.Context, ev Event) error {
	kind := ev.Kind()

	ctx, span := r.tracer.Start(ctx, "hooks.dispatch",
		trace.WithAttributes(
			attribute.String("entity.kind", string(kind)),
			attribute.Bool("event.created", ev.Created),
			attribute.Bool("event.deleted", ev.Deleted),
		),
	)
	defer span.End()

	r.mu.RLock()
	handlers := r.handlers[kind]
	r.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			span.RecordError(err)
			return err
		}
	}

	r.log.DebugContext(ctx, "dispatched mutation event",
		"kind", kind,
		"created", ev.Created,
		"deleted", ev.Deleted,
		"handlers", len(handlers),
		"addresses", AddressesInvolved(ev.Entity),
	)
	return nil
}
