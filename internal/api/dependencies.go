package api

import (
	"tidewater/harbormaster/internal/audit"
	"tidewater/harbormaster/internal/bridge"
	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/db"
	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/fanout"
	"tidewater/harbormaster/internal/metrics"
	"tidewater/harbormaster/internal/services"

	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Ships   *repositories.ShipRepo
	Visits  *repositories.VisitRepo
	Trips   *repositories.TripRepo
	Charges *repositories.ChargeRepo
	Feed    *repositories.FeedSnapshotRepo
	Sync    *repositories.SyncHistoryRepo
	Audit   *repositories.AuditLogRepo
	Keys    *repositories.KeysRepo
}

type Services struct {
	Cache    *common.CacheService
	Queue    *common.ChangeQueueService
	Recon    *services.ReconciliationService
	Intake   *services.IntakeService
	Backfill *services.BackfillService
}

type Dependencies struct {
	Repo        *Repositories
	Services    *Services
	Bridge      *bridge.Bridge
	Propagator  *fanout.Propagator
	AuditLogger *audit.Logger
	Redis       *redis.Client
	Metrics     *metrics.MetricsRegistry
}

// InitDependencies wires repositories, consumers and services onto the
// already-initialized database handles.
func InitDependencies(redisClient *redis.Client, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	queue := common.NewChangeQueueService(redisClient)

	repos := &Repositories{
		Ships:   repositories.NewShipRepo(db.PgDB, queue),
		Visits:  repositories.NewVisitRepo(db.PgDB, queue),
		Trips:   repositories.NewTripRepo(db.PgDB, queue),
		Charges: repositories.NewChargeRepo(db.PgDB, queue),
		Feed:    repositories.NewFeedSnapshotRepo(db.PgDB),
		Sync:    repositories.NewSyncHistoryRepo(db.PgDB),
		Audit:   repositories.NewAuditLogRepo(db.DB),
		Keys:    repositories.NewApiKeysRepo(db.DB),
	}

	cacheSvc := common.NewCacheService(60, 600)

	chargeBridge := bridge.NewBridge(repos.Charges, repos.Trips, repos.Sync)
	propagator := fanout.NewPropagator(repos.Visits, repos.Trips, queue)
	auditLogger := audit.NewLogger(repos.Audit)

	reconSvc := services.NewReconciliationService(repos.Feed, repos.Visits, cacheSvc, metricsReg)

	svcs := &Services{
		Cache:    cacheSvc,
		Queue:    queue,
		Recon:    reconSvc,
		Intake:   services.NewIntakeService(repos.Feed, repos.Ships, repos.Visits, reconSvc),
		Backfill: services.NewBackfillService(chargeBridge, redisClient, metricsReg),
	}

	return &Dependencies{
		Repo:        repos,
		Services:    svcs,
		Bridge:      chargeBridge,
		Propagator:  propagator,
		AuditLogger: auditLogger,
		Redis:       redisClient,
		Metrics:     metricsReg,
	}, nil
}
