package api

import (
	"encoding/json"
	"net/http"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	gormModels "tidewater/harbormaster/internal/models/gorm"
	"tidewater/harbormaster/internal/services"
)

type feedSnapshotRequest struct {
	Ships []gormModels.FeedShip `json:"ships"`
}

type feedSnapshotResult struct {
	Generation int64 `json:"generation"`
	Ships      int   `json:"ships"`
}

// IngestFeedSnapshotHandler handles POST /feed/snapshot
//
// Receives one extraction cycle's structured output from the PDF pipeline
// and replaces the current snapshot generation with it. Admin only.
func IngestFeedSnapshotHandler(feedRepo *repositories.FeedSnapshotRepo, reconSvc *services.ReconciliationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req feedSnapshotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}
		if len(req.Ships) == 0 {
			RespondWithError(w, http.StatusBadRequest, "Snapshot has no ships", constants.ReasonInvalidInput)
			return
		}

		gen, err := feedRepo.ReplaceSnapshot(r.Context(), req.Ships)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, constants.StatusInsertFailed, constants.ReasonInternalError)
			return
		}

		// A new snapshot invalidates the cached review payload.
		reconSvc.InvalidateView()

		result := feedSnapshotResult{Generation: gen, Ships: len(req.Ships)}
		RespondWithSuccess(w, http.StatusOK, &result)
	}
}
