package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyon-labs/safeindex/pkg/models"
	"github.com/halcyon-labs/safeindex/pkg/observability"
	"github.com/halcyon-labs/safeindex/pkg/store"
)

// HistoryRecorder appends an immutable SafeStatus snapshot on every write of
// a SafeLastStatus row, creation or overwrite alike. No relevance filtering.
type HistoryRecorder struct {
	statuses store.StatusStore
	metrics  *observability.Metrics
	log      *slog.Logger
}

func NewHistoryRecorder(statuses store.StatusStore, metrics *observability.Metrics, log *slog.Logger) *HistoryRecorder {
	return &HistoryRecorder{statuses: statuses, metrics: metrics, log: log}
}

func (h *HistoryRecorder) Register(r *Registry) {
	r.Register(models.KindSafeLastStatus, h.Handle)
}

func (h *HistoryRecorder) Handle(ctx context.Context, ev Event) error {
	last, ok := ev.Entity.(*models.SafeLastStatus)
	if !ok || ev.Deleted {
		return nil
	}
	_, err := h.Record(ctx, last)
	return err
}

// Record derives a value-copied snapshot and appends it, returning the new
// row with its assigned ID.
func (h *HistoryRecorder) Record(ctx context.Context, last *models.SafeLastStatus) (*models.SafeStatus, error) {
	snapshot := models.NewSafeStatus(last, time.Now().UTC())
	if err := h.statuses.Append(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("appending status snapshot for %s: %w", last.Address, err)
	}

	h.metrics.AddSnapshot(ctx)
	h.log.DebugContext(ctx, "recorded status snapshot",
		"address", last.Address,
		"nonce", last.Nonce,
		"snapshot_id", snapshot.ID,
	)
	return snapshot, nil
}
