package repositories

import (
	"context"
	"strings"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// VisitRepo handles visits table operations
type VisitRepo struct {
	db  *gormlib.DB
	pub common.ChangePublisher
}

// NewVisitRepo creates a new visit repository
func NewVisitRepo(db *gormlib.DB, pub common.ChangePublisher) *VisitRepo {
	return &VisitRepo{db: db, pub: pub}
}

// Create inserts a visit, assigning an ID and the lowercase name companion.
func (r *VisitRepo) Create(ctx context.Context, visit *gorm.Visit) error {
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	visit.ShipNameLower = strings.ToLower(visit.ShipName)

	if err := r.db.WithContext(ctx).Create(visit).Error; err != nil {
		return err
	}

	r.publish(ctx, common.ChangeCreated, visit.ID, nil, visit)
	return nil
}

// Update saves a visit and publishes the before/after pair.
func (r *VisitRepo) Update(ctx context.Context, visit *gorm.Visit) error {
	before, err := r.FindByID(ctx, visit.ID)
	if err != nil {
		return err
	}

	visit.ShipNameLower = strings.ToLower(visit.ShipName)
	if err := r.db.WithContext(ctx).Save(visit).Error; err != nil {
		return err
	}

	r.publish(ctx, common.ChangeUpdated, visit.ID, before, visit)
	return nil
}

// FindByID finds a visit by ID
func (r *VisitRepo) FindByID(ctx context.Context, id string) (*gorm.Visit, error) {
	var visit gorm.Visit

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&visit).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &visit, nil
}

// FindActiveByShip returns all visits for a ship in an active status,
// regardless of age.
func (r *VisitRepo) FindActiveByShip(ctx context.Context, shipID string) ([]gorm.Visit, error) {
	var visits []gorm.Visit

	err := r.db.WithContext(ctx).
		Where("ship_id = ? AND status IN ?", shipID, constants.ActiveVisitStatuses).
		Find(&visits).Error
	if err != nil {
		return nil, err
	}

	return visits, nil
}

// FindByShipETAWindow returns all visits for a ship whose initial ETA
// falls inside the window, regardless of status. The upper bound keeps
// closed visits with a future ETA (cancelled, rescheduled) out of the set.
func (r *VisitRepo) FindByShipETAWindow(ctx context.Context, shipID string, from, to time.Time) ([]gorm.Visit, error) {
	var visits []gorm.Visit

	err := r.db.WithContext(ctx).
		Where("ship_id = ? AND eta IS NOT NULL AND eta >= ? AND eta <= ?", shipID, from, to).
		Find(&visits).Error
	if err != nil {
		return nil, err
	}

	return visits, nil
}

// FindActive returns every visit currently in an active status, ordered by
// ship name. This is the internal-record side of the reconciliation view.
func (r *VisitRepo) FindActive(ctx context.Context) ([]gorm.Visit, error) {
	var visits []gorm.Visit

	err := r.db.WithContext(ctx).
		Where("status IN ?", constants.ActiveVisitStatuses).
		Order("ship_name_lower ASC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}

	return visits, nil
}

// FindByShipNameActive returns active visits matching a ship name
// case-insensitively.
func (r *VisitRepo) FindByShipNameActive(ctx context.Context, name string) ([]gorm.Visit, error) {
	var visits []gorm.Visit

	err := r.db.WithContext(ctx).
		Where("ship_name_lower = ? AND status IN ?", strings.ToLower(strings.TrimSpace(name)), constants.ActiveVisitStatuses).
		Find(&visits).Error
	if err != nil {
		return nil, err
	}

	return visits, nil
}

// BulkUpdateFields applies the same field-scoped payload to a set of visits
// in one statement. Used by the fan-out propagator; events for the touched
// documents are published by the caller, which already holds the before
// snapshots.
func (r *VisitRepo) BulkUpdateFields(ctx context.Context, ids []string, payload map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&gorm.Visit{}).
		Where("id IN ?", ids).
		Updates(payload).Error
}

func (r *VisitRepo) publish(ctx context.Context, kind common.ChangeKind, id string, before, after *gorm.Visit) {
	if r.pub == nil {
		return
	}
	ev := &common.ChangeEvent{
		Collection: constants.CollectionVisits,
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
		logging.Warn("Failed to publish visit change event", "doc_id", id, "error", err.Error())
	}
}
