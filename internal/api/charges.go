package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	gormModels "tidewater/harbormaster/internal/models/gorm"

	"github.com/go-chi/chi/v5"
)

// UpsertChargeHandler handles PUT /charges/{id}
//
// Ingest surface for the legacy billing system. The raw document is stored
// as received; the change event it publishes is what drives the bridge.
func UpsertChargeHandler(chargeRepo *repositories.ChargeRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			RespondWithError(w, http.StatusBadRequest, "Charge id required", constants.ReasonInvalidInput)
			return
		}

		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}

		raw, err := json.Marshal(fields)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}

		charge := &gormModels.Charge{
			ID:     id,
			Fields: raw,
		}
		if createdBy, ok := fields["createdBy"].(string); ok {
			charge.CreatedBy = createdBy
		}

		if err := chargeRepo.Upsert(r.Context(), charge); err != nil {
			RespondWithError(w, http.StatusInternalServerError, constants.StatusInsertFailed, constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusOK, charge)
	}
}
