package repositories

import (
	"context"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// TripRepo handles trips table operations
type TripRepo struct {
	db  *gormlib.DB
	pub common.ChangePublisher
}

// NewTripRepo creates a new trip repository
func NewTripRepo(db *gormlib.DB, pub common.ChangePublisher) *TripRepo {
	return &TripRepo{db: db, pub: pub}
}

// Create inserts a trip, assigning an ID when absent.
func (r *TripRepo) Create(ctx context.Context, trip *gorm.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return err
	}

	r.publish(ctx, common.ChangeCreated, trip.ID, nil, trip)
	return nil
}

// Update saves a trip and publishes the before/after pair.
func (r *TripRepo) Update(ctx context.Context, trip *gorm.Trip) error {
	before, err := r.FindByID(ctx, trip.ID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Save(trip).Error; err != nil {
		return err
	}

	r.publish(ctx, common.ChangeUpdated, trip.ID, before, trip)
	return nil
}

// UpdateFields applies a field-scoped payload to a single trip and
// publishes the before/after pair. The payload is a pure function of its
// inputs, so reapplying it converges rather than diverging.
func (r *TripRepo) UpdateFields(ctx context.Context, id string, payload map[string]interface{}) error {
	before, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Model(&gorm.Trip{}).
		Where("id = ?", id).
		Updates(payload).Error
	if err != nil {
		return err
	}

	after, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	r.publish(ctx, common.ChangeUpdated, id, before, after)
	return nil
}

// FindByID finds a trip by ID
func (r *TripRepo) FindByID(ctx context.Context, id string) (*gorm.Trip, error) {
	var trip gorm.Trip

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&trip).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &trip, nil
}

// FindByVisit returns all trips belonging to a visit in a stable order, so
// "first match wins" in the matching engine is deterministic.
func (r *TripRepo) FindByVisit(ctx context.Context, visitID string) ([]gorm.Trip, error) {
	var trips []gorm.Trip

	err := r.db.WithContext(ctx).
		Where("visit_id = ?", visitID).
		Order("boarding ASC, id ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}

	return trips, nil
}

// FindByBoardingWindow returns trips whose boarding time falls inside
// [from, to], in a stable order. Trips with no boarding time are excluded.
func (r *TripRepo) FindByBoardingWindow(ctx context.Context, from, to time.Time) ([]gorm.Trip, error) {
	var trips []gorm.Trip

	err := r.db.WithContext(ctx).
		Where("boarding IS NOT NULL AND boarding >= ? AND boarding <= ?", from, to).
		Order("boarding ASC, id ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}

	return trips, nil
}

// FindByShipBoardingSince returns trips for a ship boarded on or after the
// given instant. Null boarding times are not yet real billing events and
// are excluded.
func (r *TripRepo) FindByShipBoardingSince(ctx context.Context, shipID string, since time.Time) ([]gorm.Trip, error) {
	var trips []gorm.Trip

	err := r.db.WithContext(ctx).
		Where("ship_id = ? AND boarding IS NOT NULL AND boarding >= ?", shipID, since).
		Find(&trips).Error
	if err != nil {
		return nil, err
	}

	return trips, nil
}

// FindByChargeID returns the trip the bridge previously bound to a legacy
// charge, if any.
func (r *TripRepo) FindByChargeID(ctx context.Context, chargeID string) (*gorm.Trip, error) {
	var trip gorm.Trip

	err := r.db.WithContext(ctx).
		Where("charge_id = ?", chargeID).
		Order("created_at ASC").
		First(&trip).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &trip, nil
}

// BulkUpdateFields applies the same field-scoped payload to a set of trips
// in one statement. Events are published by the caller.
func (r *TripRepo) BulkUpdateFields(ctx context.Context, ids []string, payload map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&gorm.Trip{}).
		Where("id IN ?", ids).
		Updates(payload).Error
}

func (r *TripRepo) publish(ctx context.Context, kind common.ChangeKind, id string, before, after *gorm.Trip) {
	if r.pub == nil {
		return
	}
	ev := &common.ChangeEvent{
		Collection: constants.CollectionTrips,
		Kind:       kind,
		DocID:      id,
		OccurredAt: time.Now().UTC(),
	}
	if before != nil {
		ev.Before = marshalSnapshot(before)
	}
	if after != nil {
		ev.After = marshalSnapshot(after)
	}
	if err := r.pub.PublishChange(ctx, ev); err != nil {
		logging.Warn("Failed to publish trip change event", "doc_id", id, "error", err.Error())
	}
}
