package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"tidewater/harbormaster/internal/auth"
	"tidewater/harbormaster/internal/constants"
	reqcontext "tidewater/harbormaster/internal/context"
	"tidewater/harbormaster/internal/db/repositories"
	gormModels "tidewater/harbormaster/internal/models/gorm"

	"github.com/go-chi/chi/v5"
)

// stampBookkeeping fills the actor and surface bookkeeping fields every UI
// write must carry. The audit logger reads and strips them downstream.
func stampBookkeeping(r *http.Request) (updatedBy, updatedFrom string) {
	actor := auth.ActorFor(reqcontext.GetUserClaims(r.Context()))

	surface := r.Header.Get("X-Client-Surface")
	if surface == "" {
		surface = string(constants.RequestSourceAPI)
	}
	return actor.String(), surface
}

// CreateShipHandler handles POST /ships
func CreateShipHandler(shipRepo *repositories.ShipRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var ship gormModels.Ship
		if err := json.NewDecoder(r.Body).Decode(&ship); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}
		if strings.TrimSpace(ship.Name) == "" {
			RespondWithError(w, http.StatusBadRequest, "name is required", constants.ReasonInvalidInput)
			return
		}

		ship.ID = ""
		ship.UpdatedBy, ship.UpdatedFrom = stampBookkeeping(r)

		if err := shipRepo.Create(r.Context(), &ship); err != nil {
			RespondWithError(w, http.StatusInternalServerError, constants.StatusInsertFailed, constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusCreated, &ship)
	}
}

// UpdateShipHandler handles PUT /ships/{id}
//
// Saving a corrected name or tonnage here is what kicks off the fan-out to
// dependent visits and trips.
func UpdateShipHandler(shipRepo *repositories.ShipRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id := chi.URLParam(r, "id")

		existing, err := shipRepo.FindByID(r.Context(), id)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}
		if existing == nil {
			RespondWithError(w, http.StatusNotFound, "Ship not found", constants.ReasonNotFound)
			return
		}

		var ship gormModels.Ship
		if err := json.NewDecoder(r.Body).Decode(&ship); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}
		if strings.TrimSpace(ship.Name) == "" {
			RespondWithError(w, http.StatusBadRequest, "name is required", constants.ReasonInvalidInput)
			return
		}

		ship.ID = id
		ship.CreatedAt = existing.CreatedAt
		ship.UpdatedBy, ship.UpdatedFrom = stampBookkeeping(r)

		if err := shipRepo.Update(r.Context(), &ship); err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusOK, &ship)
	}
}

// GetShipHandler handles GET /ships/{id}
func GetShipHandler(shipRepo *repositories.ShipRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		ship, err := shipRepo.FindByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}
		if ship == nil {
			RespondWithError(w, http.StatusNotFound, "Ship not found", constants.ReasonNotFound)
			return
		}

		RespondWithSuccess(w, http.StatusOK, ship)
	}
}
