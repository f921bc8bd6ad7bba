package trash

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Reaper periodically purges expired, unrestored trash. Each record is
// purged in its own transaction, so one failure never blocks the rest
// of the sweep, and re-running a sweep is a no-op once everything
// eligible is gone.
type Reaper struct {
	trash    *Service
	interval time.Duration
}

func NewReaper(trash *Service, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reaper{
		trash:    trash,
		interval: interval,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	log.Info().
		Dur("interval", r.interval).
		Dur("retention", r.trash.Retention()).
		Msg("trash reaper started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("trash reaper stopped")
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				log.Error().Err(err).Msg("trash sweep failed")
			}
		}
	}
}

// Sweep purges every expired record and reports how many went. Failures
// on individual records are logged and skipped.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	records, err := r.trash.ExpiredRecords(ctx)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, record := range records {
		if err := r.trash.Purge(ctx, record.ID); err != nil {
			log.Error().
				Err(err).
				Int64("trashId", record.ID).
				Msg("failed to purge trash record")
			continue
		}
		purged++
	}

	if purged > 0 {
		log.Info().Int("purged", purged).Msg("trash sweep finished")
	}
	return purged, nil
}
