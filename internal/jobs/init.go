package jobs

import (
	"context"
	"time"

	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/services"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	backfillSvc *services.BackfillService,
	syncRepo *repositories.SyncHistoryRepo,
) *ChargeBackfillJob {
	backfillJob := NewChargeBackfillJob(backfillSvc, syncRepo)

	// Start scheduled backfill sweep in background
	go backfillJob.RunScheduled(ctx, 1*time.Hour)

	return backfillJob
}
