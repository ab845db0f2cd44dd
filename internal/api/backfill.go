package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/matching"
	"tidewater/harbormaster/internal/models/dtos"
	"tidewater/harbormaster/internal/services"
)

// BackfillHandler handles POST /admin/backfill
//
// Runs the charge backfill from the requested cutoff. Admin only; the
// route carries the admin middleware so a refused call has no side
// effects. Returns the per-outcome counts so the caller can report
// partial success directly.
func BackfillHandler(backfillSvc *services.BackfillService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req dtos.BackfillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}

		cutoff := matching.ParseFlexibleTime(req.Cutoff)
		if cutoff == nil {
			RespondWithError(w, http.StatusBadRequest, constants.MsgInvalidCutoff, constants.ReasonInvalidInput)
			return
		}

		result, err := backfillSvc.Run(r.Context(), *cutoff)
		if err != nil {
			if errors.Is(err, services.ErrBackfillRunning) {
				RespondWithError(w, http.StatusLocked, constants.StatusBackfillRunning, constants.ReasonLocked)
				return
			}
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusOK, result)
	}
}
