package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/metrics"
	"tidewater/harbormaster/internal/models/dtos"
	gormModels "tidewater/harbormaster/internal/models/gorm"
	"tidewater/harbormaster/internal/reconcile"
)

// ErrNoFeedSnapshot means reconciliation was requested before any feed
// extraction has run.
var ErrNoFeedSnapshot = errors.New("no feed snapshot ingested yet")

const reconViewCacheKey = string(constants.CachePrefixReconciliation) + "view"

// ReconciliationService assembles the review payload: the cross-source
// classification plus the snapshot-over-snapshot change highlighting. The
// computation is pure; this service only loads inputs and caches output.
type ReconciliationService struct {
	feedRepo  *repositories.FeedSnapshotRepo
	visitRepo *repositories.VisitRepo
	cache     common.CacheInterface
	metrics   *metrics.MetricsRegistry
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	feedRepo *repositories.FeedSnapshotRepo,
	visitRepo *repositories.VisitRepo,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) *ReconciliationService {
	return &ReconciliationService{
		feedRepo:  feedRepo,
		visitRepo: visitRepo,
		cache:     cache,
		metrics:   metricsReg,
	}
}

// GetView returns the reconciliation payload, serving a cached copy for up
// to a minute. Review is a human-paced surface; slight staleness is fine.
func (s *ReconciliationService) GetView(ctx context.Context) (*dtos.ReconciliationView, error) {
	val, err := s.cache.GetOrSet(reconViewCacheKey, time.Minute, func() (any, error) {
		return s.computeView(ctx)
	})
	if err != nil {
		return nil, err
	}

	view, ok := val.(*dtos.ReconciliationView)
	if !ok {
		return nil, fmt.Errorf("unexpected cached type %T", val)
	}
	return view, nil
}

// InvalidateView drops the cached payload after a write that changes it
// (reconciliation accept, snapshot ingest).
func (s *ReconciliationService) InvalidateView() {
	s.cache.Delete(reconViewCacheKey)
}

func (s *ReconciliationService) computeView(ctx context.Context) (*dtos.ReconciliationView, error) {
	start := time.Now()

	current, previous, err := s.feedRepo.LatestGenerations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve snapshot generations: %w", err)
	}
	if current == 0 {
		return nil, ErrNoFeedSnapshot
	}

	feedShips, err := s.feedRepo.ShipsForGeneration(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("failed to load current snapshot: %w", err)
	}

	var prevShips []gormModels.FeedShip
	if previous != 0 {
		prevShips, err = s.feedRepo.ShipsForGeneration(ctx, previous)
		if err != nil {
			return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
		}
	}

	visits, err := s.visitRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active visits: %w", err)
	}

	view := &dtos.ReconciliationView{
		Results:         reconcile.Classify(feedShips, visits),
		SnapshotChanges: reconcile.SnapshotDiff(feedShips, prevShips),
		FeedGeneration:  current,
	}

	if s.metrics != nil {
		s.metrics.ReconciliationDuration.Observe(time.Since(start).Seconds())
	}
	return view, nil
}
