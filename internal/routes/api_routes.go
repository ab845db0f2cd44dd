package routes

import (
	"tidewater/harbormaster/internal/api"
	"tidewater/harbormaster/internal/metrics"
	"tidewater/harbormaster/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies) {

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(deps.Repo.Keys)) // global: all routes must be authenticated

		// Reconciliation review surface
		v1.Get("/reconciliation", api.GetReconciliationHandler(deps.Services.Recon))
		v1.Post("/reconciliation/accept", api.AcceptShipHandler(deps.Services.Intake))

		// Master data
		v1.Post("/ships", api.CreateShipHandler(deps.Repo.Ships))
		v1.Get("/ships/{id}", api.GetShipHandler(deps.Repo.Ships))
		v1.Put("/ships/{id}", api.UpdateShipHandler(deps.Repo.Ships))

		// Port calls and movements
		v1.Post("/visits", api.CreateVisitHandler(deps.Repo.Visits, deps.Repo.Ships))
		v1.Put("/visits/{id}", api.UpdateVisitHandler(deps.Repo.Visits))
		v1.Get("/visits/{id}/trips", api.ListVisitTripsHandler(deps.Repo.Trips))
		v1.Post("/trips", api.CreateTripHandler(deps.Repo.Trips, deps.Repo.Visits))
		v1.Patch("/trips/{id}", api.PatchTripHandler(deps.Repo.Trips))

		// Legacy billing ingest
		v1.Put("/charges/{id}", api.UpsertChargeHandler(deps.Repo.Charges))

		// Change history
		v1.Get("/audit/{collection}/{docId}", api.AuditTrailHandler(deps.Repo.Audit))

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.IsAdminMiddleware())

			admin.Post("/admin/backfill", api.BackfillHandler(deps.Services.Backfill))
			admin.Post("/admin/feed/snapshot", api.IngestFeedSnapshotHandler(deps.Repo.Feed, deps.Services.Recon))
		})
	})
}
