package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/services"
)

// Overlap added behind the last recorded sync so charges written while the
// previous run was in flight are picked up again. Reprocessing is safe; the
// bridge converges.
const backfillOverlap = 15 * time.Minute

// ChargeBackfillJob periodically sweeps recently modified charges through
// the bridge, catching any change events the feed dropped.
type ChargeBackfillJob struct {
	backfillSvc *services.BackfillService
	syncRepo    *repositories.SyncHistoryRepo
}

// NewChargeBackfillJob creates a new charge backfill job instance
func NewChargeBackfillJob(backfillSvc *services.BackfillService, syncRepo *repositories.SyncHistoryRepo) *ChargeBackfillJob {
	return &ChargeBackfillJob{
		backfillSvc: backfillSvc,
		syncRepo:    syncRepo,
	}
}

// Run executes one backfill sweep from the last recorded sync point.
func (j *ChargeBackfillJob) Run(ctx context.Context) error {
	start := time.Now()
	log.Printf("[ChargeBackfillJob] Starting charge backfill at %s", start.Format(time.RFC3339))

	cutoff, err := j.resolveCutoff(ctx)
	if err != nil {
		log.Printf("[ChargeBackfillJob] Error resolving cutoff: %v. Doing full sweep.", err)
		cutoff = time.Time{}
	}

	result, err := j.backfillSvc.Run(ctx, cutoff)
	if err != nil {
		if errors.Is(err, services.ErrBackfillRunning) {
			log.Printf("[ChargeBackfillJob] Skipping: another backfill holds the lock")
			return nil
		}
		return fmt.Errorf("backfill failed: %w", err)
	}

	log.Printf("[ChargeBackfillJob] Completed in %s. Processed: %d, Updated: %d, Created: %d, Failed: %d",
		time.Since(start).Truncate(time.Millisecond),
		result.Processed, result.Updated, result.Created, result.Failed)
	return nil
}

// resolveCutoff derives the sweep window start from sync history.
func (j *ChargeBackfillJob) resolveCutoff(ctx context.Context) (time.Time, error) {
	last, err := j.syncRepo.GetLastSyncTimeForEvent(ctx, constants.SyncEventChargeBackfill)
	if err != nil {
		return time.Time{}, err
	}
	if last == nil {
		// No sync history: sweep everything.
		return time.Time{}, nil
	}
	return last.Add(-backfillOverlap), nil
}

// RunScheduled runs the backfill job on a schedule
func (j *ChargeBackfillJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	if err := j.Run(ctx); err != nil {
		log.Printf("[ChargeBackfillJob] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[ChargeBackfillJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[ChargeBackfillJob] Shutting down scheduled backfill")
			return
		}
	}
}
