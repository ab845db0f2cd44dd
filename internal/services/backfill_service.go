package services

import (
	"context"
	"errors"
	"time"

	"tidewater/harbormaster/internal/bridge"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/metrics"
	"tidewater/harbormaster/internal/models/dtos"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrBackfillRunning means another backfill holds the lock.
var ErrBackfillRunning = errors.New("a backfill run is already in progress")

const (
	backfillLockKey = "lock:charge-backfill"
	// Lock TTL bounds how long a crashed run can block the next one.
	backfillLockTTL = 10 * time.Minute
)

// BackfillService runs the charge backfill under a distributed lock, so a
// manually triggered run and the scheduled job can never overlap.
type BackfillService struct {
	bridge  *bridge.Bridge
	locker  *redislock.Client
	metrics *metrics.MetricsRegistry
}

// NewBackfillService creates a new backfill service
func NewBackfillService(b *bridge.Bridge, redisClient *redis.Client, metricsReg *metrics.MetricsRegistry) *BackfillService {
	return &BackfillService{
		bridge:  b,
		locker:  redislock.New(redisClient),
		metrics: metricsReg,
	}
}

// Run executes one backfill from the cutoff, holding the lock for the
// duration.
func (s *BackfillService) Run(ctx context.Context, cutoff time.Time) (*dtos.BackfillResult, error) {
	lock, err := s.locker.Obtain(ctx, backfillLockKey, backfillLockTTL, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrBackfillRunning
		}
		return nil, err
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logging.Warn("Failed to release backfill lock", "error", err.Error())
		}
	}()

	start := time.Now()
	result, err := s.bridge.Backfill(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BackfillDuration.Observe(time.Since(start).Seconds())
	}
	return result, nil
}
