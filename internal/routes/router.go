package routes

import (
	"context"
	"net/http"
	"time"

	"tidewater/harbormaster/internal/api"
	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/db"
	"tidewater/harbormaster/internal/jobs"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/metrics"
	"tidewater/harbormaster/internal/middleware"
	"tidewater/harbormaster/internal/workers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Operator-Id", "X-Client-Surface"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	redisClient := common.NewRedisClient()

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(redisClient, metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// health check and metrics
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, redisClient, upSince))
	r.Handle("/metrics", promhttp.Handler())

	// Start the change feed consumers: bridge, fan-out, audit.
	workers.InitWorkers(
		deps.Services.Queue,
		deps.Bridge,
		deps.Propagator,
		deps.AuditLogger,
		metricsReg,
	)

	// Scheduled backfill sweep catches events the feed dropped.
	jobs.InitializeJobs(
		context.Background(),
		deps.Services.Backfill,
		deps.Repo.Sync,
	)

	RegisterAPIRoutes(r, metricsReg, deps)

	return r
}
