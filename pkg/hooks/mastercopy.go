package hooks

import (
	"context"
	"log/slog"

	"github.com/halcyon-labs/safeindex/pkg/cache"
	"github.com/halcyon-labs/safeindex/pkg/models"
)

// CacheInvalidator clears the memoized master-copy version lookup whenever a
// registry entry is written. The cache repopulates lazily from durable
// storage on the next lookup.
type CacheInvalidator struct {
	versions *cache.VersionCache
	log      *slog.Logger
}

func NewCacheInvalidator(versions *cache.VersionCache, log *slog.Logger) *CacheInvalidator {
	return &CacheInvalidator{versions: versions, log: log}
}

func (ci *CacheInvalidator) Register(r *Registry) {
	r.Register(models.KindMasterCopy, ci.Handle)
}

func (ci *CacheInvalidator) Handle(ctx context.Context, ev Event) error {
	ci.versions.Clear()
	ci.log.DebugContext(ctx, "cleared master copy version cache", "kind", ev.Kind())
	return nil
}
