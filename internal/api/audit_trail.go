package api

import (
	"net/http"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/models/entities"

	"github.com/go-chi/chi/v5"
)

var auditableCollections = map[string]bool{
	string(constants.CollectionShips):  true,
	string(constants.CollectionVisits): true,
	string(constants.CollectionTrips):  true,
}

// AuditTrailHandler handles GET /audit/{collection}/{docId}
//
// Returns the change history for one document, newest first.
func AuditTrailHandler(auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		collection := chi.URLParam(r, "collection")
		docID := chi.URLParam(r, "docId")

		if !auditableCollections[collection] {
			RespondWithError(w, http.StatusBadRequest, "Unknown collection", constants.ReasonInvalidInput)
			return
		}

		entries, err := auditRepo.ForDoc(r.Context(), collection, docID)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}
		if entries == nil {
			entries = []entities.AuditLogEntry{}
		}

		RespondWithSuccess(w, http.StatusOK, &entries)
	}
}
