package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tidewater/harbormaster/internal/auth"
	"tidewater/harbormaster/internal/constants"
	reqcontext "tidewater/harbormaster/internal/context"
	"tidewater/harbormaster/internal/models/dtos"
	"tidewater/harbormaster/internal/services"
)

// GetReconciliationHandler handles GET /reconciliation
//
// Returns the full review payload: cross-source classification of every
// ship name plus the change highlighting between the latest two feed
// snapshots.
func GetReconciliationHandler(reconSvc *services.ReconciliationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		view, err := reconSvc.GetView(r.Context())
		if err != nil {
			if errors.Is(err, services.ErrNoFeedSnapshot) {
				RespondWithError(w, http.StatusNotFound, constants.MsgNoFeedSnapshot, constants.ReasonNotFound)
				return
			}
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusOK, view)
	}
}

// AcceptShipHandler handles POST /reconciliation/accept
//
// Adopts a pdf-only ship from the latest feed snapshot as an internal ship
// plus a Due visit. Explicitly user-triggered; the reconciliation view
// itself never writes.
func AcceptShipHandler(intakeSvc *services.IntakeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req dtos.AcceptShipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}
		if strings.TrimSpace(req.ShipName) == "" {
			RespondWithError(w, http.StatusBadRequest, "shipName is required", constants.ReasonInvalidInput)
			return
		}

		actor := auth.ActorFor(reqcontext.GetUserClaims(r.Context()))

		result, err := intakeSvc.AcceptShip(r.Context(), req.ShipName, actor)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrShipNotInFeed):
				RespondWithError(w, http.StatusNotFound, constants.MsgShipNotFound, constants.ReasonNotFound)
			case errors.Is(err, services.ErrVisitExists):
				RespondWithError(w, http.StatusConflict, constants.StatusVisitExists, constants.ReasonInvalidInput)
			default:
				RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			}
			return
		}

		RespondWithSuccess(w, http.StatusCreated, result)
	}
}
