package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/confspace/conference-service/internal/registry"
	"github.com/confspace/conference-service/internal/store"
)

// Reaper deletes rooms idle beyond the threshold. It walks the store's
// room-index set and deletes through the registry, so a sweep is safe
// against concurrent live traffic; a room that empties organically mid-sweep
// is simply not found again.
type Reaper struct {
	registry  *registry.Registry
	store     store.RoomStore
	interval  time.Duration
	threshold time.Duration
}

func New(reg *registry.Registry, st store.RoomStore, interval, threshold time.Duration) *Reaper {
	return &Reaper{
		registry:  reg,
		store:     st,
		interval:  interval,
		threshold: threshold,
	}
}

// Run sweeps once eagerly, covering rooms that outlived a restart, then on
// the fixed interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	r.Sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep visits every room id in the index set once. Idempotent; deleting an
// already-gone room is a no-op.
func (r *Reaper) Sweep(ctx context.Context) {
	ids, err := r.store.ListRoomIDs(ctx)
	if err != nil {
		slog.Warn("reaper list rooms failed", "err", err)
		return
	}

	reaped := 0
	for _, id := range ids {
		if r.registry.ReapStale(ctx, id, r.threshold) {
			reaped++
		}
	}
	if reaped > 0 {
		slog.Info("reaper sweep complete", "checked", len(ids), "reaped", reaped)
	}
}
