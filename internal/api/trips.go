package api

import (
	"encoding/json"
	"net/http"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	gormModels "tidewater/harbormaster/internal/models/gorm"

	"github.com/go-chi/chi/v5"
)

// Columns a pilot may touch through the generic PATCH endpoint. Billing
// fields are deliberately absent: confirmation is owned by the bridge.
var patchableTripColumns = map[string]bool{
	"pilot":              true,
	"port":               true,
	"boarding":           true,
	"notes":              true,
	"extra_charge_notes": true,
	"attachment_url":     true,
	"attachment_path":    true,
	"attachment_type":    true,
}

// CreateTripHandler handles POST /trips
func CreateTripHandler(tripRepo *repositories.TripRepo, visitRepo *repositories.VisitRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var trip gormModels.Trip
		if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}
		if trip.VisitID == nil {
			RespondWithError(w, http.StatusBadRequest, "visitId is required", constants.ReasonInvalidInput)
			return
		}

		visit, err := visitRepo.FindByID(r.Context(), *trip.VisitID)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}
		if visit == nil {
			RespondWithError(w, http.StatusBadRequest, "Unknown visit", constants.ReasonInvalidInput)
			return
		}

		trip.ID = ""
		trip.ShipID = &visit.ShipID
		trip.ShipName = visit.ShipName
		trip.Tonnage = visit.Tonnage
		// New trips are always unconfirmed; only the bridge confirms.
		trip.IsConfirmed = false
		trip.ConfirmedBy = nil
		trip.ConfirmedAt = nil
		if trip.Source == "" {
			trip.Source = constants.SourceManual
		}
		trip.UpdatedBy, trip.UpdatedFrom = stampBookkeeping(r)

		if err := tripRepo.Create(r.Context(), &trip); err != nil {
			RespondWithError(w, http.StatusInternalServerError, constants.StatusInsertFailed, constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusCreated, &trip)
	}
}

// PatchTripHandler handles PATCH /trips/{id}
//
// Applies a field-scoped update of the operational columns. The payload
// keys are store column names; anything outside the whitelist is refused.
func PatchTripHandler(tripRepo *repositories.TripRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id := chi.URLParam(r, "id")

		existing, err := tripRepo.FindByID(r.Context(), id)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}
		if existing == nil {
			RespondWithError(w, http.StatusNotFound, "Trip not found", constants.ReasonNotFound)
			return
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body", constants.ReasonInvalidInput)
			return
		}
		if len(payload) == 0 {
			RespondWithError(w, http.StatusBadRequest, "Empty payload", constants.ReasonInvalidInput)
			return
		}

		for column := range payload {
			if !patchableTripColumns[column] {
				RespondWithError(w, http.StatusBadRequest, "Field not patchable: "+column, constants.ReasonInvalidInput)
				return
			}
		}

		payload["updated_by"], payload["updated_from"] = stampBookkeeping(r)

		if err := tripRepo.UpdateFields(r.Context(), id, payload); err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}

		updated, err := tripRepo.FindByID(r.Context(), id)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusOK, updated)
	}
}

// ListVisitTripsHandler handles GET /visits/{id}/trips
func ListVisitTripsHandler(tripRepo *repositories.TripRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		trips, err := tripRepo.FindByVisit(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, err.Error(), constants.ReasonInternalError)
			return
		}

		RespondWithSuccess(w, http.StatusOK, &trips)
	}
}
