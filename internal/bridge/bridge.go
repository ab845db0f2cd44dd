package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/matching"
	"tidewater/harbormaster/internal/models/dtos"
	gormModels "tidewater/harbormaster/internal/models/gorm"
)

// Action reports what a single charge write resulted in.
type Action string

const (
	ActionUpdated Action = "updated"
	ActionCreated Action = "created"
	ActionSkipped Action = "skipped"
)

// Bridge reacts to legacy charge writes and guarantees a corresponding
// confirmed trip carries the charge's billing data. Charges are read-only
// input; the bridge never writes back to them.
type Bridge struct {
	chargeRepo *repositories.ChargeRepo
	tripRepo   *repositories.TripRepo
	syncRepo   *repositories.SyncHistoryRepo
}

// NewBridge creates a new charge-to-trip bridge
func NewBridge(
	chargeRepo *repositories.ChargeRepo,
	tripRepo *repositories.TripRepo,
	syncRepo *repositories.SyncHistoryRepo,
) *Bridge {
	return &Bridge{
		chargeRepo: chargeRepo,
		tripRepo:   tripRepo,
		syncRepo:   syncRepo,
	}
}

// HandleChargeChange processes one charge change event. Deletions are
// logged and never actioned: the legacy system is being retired and its
// deletes must not destroy billing data here.
func (b *Bridge) HandleChargeChange(ctx context.Context, ev *common.ChangeEvent) (Action, error) {
	if ev.Kind == common.ChangeDeleted {
		logging.Info("Ignoring charge deletion", "charge_id", ev.DocID)
		return ActionSkipped, nil
	}

	var charge gormModels.Charge
	if err := json.Unmarshal(ev.After, &charge); err != nil {
		return ActionSkipped, fmt.Errorf("failed to decode charge %s: %w", ev.DocID, err)
	}

	return b.processCharge(ctx, &charge)
}

// processCharge runs the matching engine for one charge and applies the
// update-or-fabricate decision. Safe to reapply: a repeated write finds
// the trip it previously bound and converges on the same state.
func (b *Bridge) processCharge(ctx context.Context, charge *gormModels.Charge) (Action, error) {
	var fields map[string]interface{}
	if len(charge.Fields) > 0 {
		if err := json.Unmarshal(charge.Fields, &fields); err != nil {
			return ActionSkipped, fmt.Errorf("charge %s has malformed fields: %w", charge.ID, err)
		}
	}

	createdAt := charge.CreatedAt
	normalized := matching.NormalizeCharge(charge.ID, fields, charge.CreatedBy, &createdAt)

	// A reapplied write goes back to the trip it already bound.
	if prior, err := b.tripRepo.FindByChargeID(ctx, charge.ID); err != nil {
		return ActionSkipped, err
	} else if prior != nil {
		if err := b.confirmTrip(ctx, prior.ID, normalized); err != nil {
			return ActionSkipped, err
		}
		return ActionUpdated, nil
	}

	match, err := b.findMatch(ctx, normalized)
	if err != nil {
		return ActionSkipped, err
	}

	if match != nil {
		if err := b.confirmTrip(ctx, match.ID, normalized); err != nil {
			return ActionSkipped, err
		}
		logging.Info("Bridged charge onto existing trip",
			"charge_id", charge.ID, "trip_id", match.ID)
		return ActionUpdated, nil
	}

	trip, err := b.fabricateTrip(ctx, normalized)
	if err != nil {
		return ActionSkipped, err
	}
	logging.Info("Fabricated standalone trip for unmatched charge",
		"charge_id", charge.ID, "trip_id", trip.ID)
	return ActionCreated, nil
}

// findMatch gathers the candidate sets and runs the pure matching engine.
func (b *Bridge) findMatch(ctx context.Context, charge matching.NormalizedCharge) (*gormModels.Trip, error) {
	var visitTrips []gormModels.Trip
	if charge.VisitID != "" {
		var err error
		visitTrips, err = b.tripRepo.FindByVisit(ctx, charge.VisitID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch visit trips: %w", err)
		}
	}

	var windowTrips []gormModels.Trip
	if charge.ShipName != "" && charge.Date != nil {
		var err error
		windowTrips, err = b.tripRepo.FindByBoardingWindow(ctx,
			charge.Date.Add(-matching.BoardingWindow),
			charge.Date.Add(matching.BoardingWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch window trips: %w", err)
		}
	}

	return matching.FindMatchingTrip(charge, visitTrips, windowTrips), nil
}

// confirmTrip applies the charge's billing data onto a trip. The payload
// is a pure function of the charge, so reapplying it is a no-op write.
func (b *Bridge) confirmTrip(ctx context.Context, tripID string, charge matching.NormalizedCharge) error {
	payload := map[string]interface{}{
		"is_confirmed": true,
		"confirmed_at": confirmationTime(charge),
		"updated_by":   constants.WriterChargeBridge,
		"charge_id":    charge.ID,
	}
	if charge.CreatedBy != "" {
		payload["confirmed_by"] = charge.CreatedBy
	}
	if charge.ShipName != "" {
		payload["ship_name"] = charge.ShipName
	}
	if charge.Tonnage != nil {
		payload["tonnage"] = *charge.Tonnage
	}

	return b.tripRepo.UpdateFields(ctx, tripID, payload)
}

// fabricateTrip creates a standalone confirmed trip so billing data is
// never silently dropped when nothing matches. The resolved charge date
// serves as both boarding and confirmation time; only a date-less charge
// falls back to its creation time.
func (b *Bridge) fabricateTrip(ctx context.Context, charge matching.NormalizedCharge) (*gormModels.Trip, error) {
	confirmedAt := confirmationTime(charge)
	if charge.Date != nil {
		confirmedAt = *charge.Date
	}
	chargeID := charge.ID

	trip := &gormModels.Trip{
		TripType:    charge.TripType,
		Boarding:    charge.Date,
		IsConfirmed: true,
		ShipName:    charge.ShipName,
		ConfirmedAt: &confirmedAt,
		ChargeID:    &chargeID,
		Source:      constants.SourceBridge,
		UpdatedBy:   constants.WriterChargeBridge,
	}
	if charge.Tonnage != nil {
		trip.Tonnage = *charge.Tonnage
	}
	if charge.CreatedBy != "" {
		createdBy := charge.CreatedBy
		trip.ConfirmedBy = &createdBy
	}

	if err := b.tripRepo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create standalone trip: %w", err)
	}
	return trip, nil
}

// confirmationTime prefers the charge's own creation time over "now" so
// backfilled history confirms with the original billing date.
func confirmationTime(charge matching.NormalizedCharge) time.Time {
	if charge.CreatedAt != nil && !charge.CreatedAt.IsZero() {
		return *charge.CreatedAt
	}
	return time.Now().UTC()
}

// Backfill applies the per-charge bridge logic to every charge modified on
// or after the cutoff. One bad charge never halts the run: failures are
// counted and skipped, matching how the scheduled sync loops behave.
func (b *Bridge) Backfill(ctx context.Context, cutoff time.Time) (*dtos.BackfillResult, error) {
	start := time.Now()
	logging.Info("Starting charge backfill", "cutoff", cutoff.Format(time.RFC3339))

	charges, err := b.chargeRepo.FindModifiedSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch charges: %w", err)
	}

	result := &dtos.BackfillResult{}
	for i := range charges {
		result.Processed++
		action, err := b.processCharge(ctx, &charges[i])
		if err != nil {
			logging.Warn("Backfill: charge failed, continuing",
				"charge_id", charges[i].ID, "error", err.Error())
			result.Failed++
			continue
		}
		switch action {
		case ActionUpdated:
			result.Updated++
		case ActionCreated:
			result.Created++
		}
	}

	if b.syncRepo != nil {
		if err := b.syncRepo.RecordSync(ctx, constants.SyncEventChargeBackfill); err != nil {
			logging.Warn("Backfill: failed to record sync history", "error", err.Error())
		}
	}

	logging.Info("Completed charge backfill",
		"duration", time.Since(start).Truncate(time.Millisecond).String(),
		"processed", result.Processed,
		"updated", result.Updated,
		"created", result.Created,
		"failed", result.Failed,
	)

	return result, nil
}
