package api

import (
	"encoding/json"
	"net/http"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	gormModels "tidewater/harbormaster/internal/models/gorm"

	"github.com/go-chi/chi/v5"
)

// CreateVisitHandler handles POST /visits
func CreateVisitHandler(visitRepo *repositories.VisitRepo, shipRepo *repositories.ShipRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var visit gormModels.Visit
		if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}

		ship, err := shipRepo.FindByID(r.Context(), visit.ShipID)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}
		if ship == nil {
			RespondWithError(w, http.StatusBadRequest, "Unknown ship", constants.ReasonInvalidInput)
			return
		}

		// Denormalized fields always come from the ship record, not the
		// request; the fan-out keeps them consistent afterwards.
		visit.ID = ""
		visit.ShipName = ship.Name
		visit.Tonnage = ship.Tonnage
		if visit.Status == "" {
			visit.Status = constants.VisitStatusDue
		}
		if visit.Source == "" {
			visit.Source = constants.SourceManual
		}
		visit.UpdatedBy, visit.UpdatedFrom = stampBookkeeping(r)

		if err := visitRepo.Create(r.Context(), &visit); err != nil {
			RespondWithError(w, http.StatusInternalServerError, constants.StatusInsertFailed, constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusCreated, &visit)
	}
}

// UpdateVisitHandler handles PUT /visits/{id}
func UpdateVisitHandler(visitRepo *repositories.VisitRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id := chi.URLParam(r, "id")

		existing, err := visitRepo.FindByID(r.Context(), id)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}
		if existing == nil {
			RespondWithError(w, http.StatusNotFound, "Visit not found", constants.ReasonNotFound)
			return
		}

		var visit gormModels.Visit
		if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}

		visit.ID = id
		visit.ShipID = existing.ShipID
		visit.ShipName = existing.ShipName
		visit.Tonnage = existing.Tonnage
		visit.CreatedAt = existing.CreatedAt
		visit.UpdatedBy, visit.UpdatedFrom = stampBookkeeping(r)

		if err := visitRepo.Update(r.Context(), &visit); err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusOK, &visit)
	}
}
