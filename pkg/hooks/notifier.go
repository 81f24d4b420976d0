package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyon-labs/safeindex/pkg/models"
	"github.com/halcyon-labs/safeindex/pkg/notify"
	"github.com/halcyon-labs/safeindex/pkg/observability"
)

// ErrCreatedAndDeleted signals a mutation event flagged as both a creation
// and a removal. This cannot happen at runtime; seeing it means a writer is
// constructing events incorrectly and the event must be aborted loudly.
var ErrCreatedAndDeleted = errors.New("mutation event flagged as both created and deleted")

// Notifier fans a watched mutation out to the deferred task queue and the
// real-time event bus. The two channels are independent and best-effort:
// failure of either is logged, never propagated to the writer.
type Notifier struct {
	builder    notify.PayloadBuilder
	classifier notify.RelevanceClassifier
	queue      notify.TaskQueue
	bus        notify.EventBus
	delay      time.Duration
	priority   int
	metrics    *observability.Metrics
	log        *slog.Logger
}

// NewNotifier wires the fan-out. delay <= 0 falls back to the stock 5s
// deferral; priority is fixed at low so mutation bursts cannot starve
// higher-priority deliveries.
func NewNotifier(
	builder notify.PayloadBuilder,
	classifier notify.RelevanceClassifier,
	queue notify.TaskQueue,
	bus notify.EventBus,
	delay time.Duration,
	metrics *observability.Metrics,
	log *slog.Logger,
) *Notifier {
	if delay <= 0 {
		delay = notify.DefaultDelay
	}
	return &Notifier{
		builder:    builder,
		classifier: classifier,
		queue:      queue,
		bus:        bus,
		delay:      delay,
		priority:   notify.PriorityLow,
		metrics:    metrics,
		log:        log,
	}
}

// Register subscribes the notifier to every watched entity kind.
func (n *Notifier) Register(r *Registry) {
	for _, kind := range []models.EntityKind{
		models.KindMultisigTransaction,
		models.KindMultisigConfirmation,
		models.KindTokenTransfer,
		models.KindInternalTx,
	} {
		r.Register(kind, n.Handle)
	}
}

// Handle builds candidate payloads, filters them by relevance, and
// dispatches the survivors on both channels. Builder and classifier failures
// surface to the writer; a bug there must not masquerade as "not relevant".
func (n *Notifier) Handle(ctx context.Context, ev Event) error {
	if ev.Created && ev.Deleted {
		return fmt.Errorf("%w: kind=%s", ErrCreatedAndDeleted, ev.Kind())
	}

	payloads, err := n.builder.BuildPayloads(ctx, ev.Entity, ev.Deleted)
	if err != nil {
		return fmt.Errorf("building payloads for %s: %w", ev.Kind(), err)
	}

	for _, p := range payloads {
		if p.Address == "" {
			continue
		}

		relevant, err := n.classifier.IsRelevant(ctx, ev.Entity, ev.Created)
		if err != nil {
			return fmt.Errorf("classifying %s mutation: %w", ev.Kind(), err)
		}
		if !relevant {
			n.metrics.AddSuppressed(ctx)
			n.log.DebugContext(ctx, "notification suppressed",
				"kind", ev.Kind(),
				"created", ev.Created,
				"address", p.Address,
			)
			continue
		}

		// Channel failures are independent: a dead queue must not silence
		// the bus, and neither may fail the triggering write.
		if err := n.queue.Enqueue(ctx, p.Address, p, n.delay, n.priority); err != nil {
			n.log.ErrorContext(ctx, "failed to enqueue notification",
				"kind", ev.Kind(),
				"address", p.Address,
				"err", err,
			)
		} else {
			n.metrics.AddEnqueued(ctx)
		}

		if err := n.bus.Publish(ctx, p); err != nil {
			n.log.ErrorContext(ctx, "failed to publish event",
				"kind", ev.Kind(),
				"address", p.Address,
				"err", err,
			)
		} else {
			n.metrics.AddPublished(ctx)
		}
	}
	return nil
}
