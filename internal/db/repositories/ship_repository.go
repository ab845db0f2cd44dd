package repositories

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// ShipRepo handles ships table operations. Every mutation captures a
// before/after pair and publishes it to the ships change stream, which
// feeds the fan-out propagator and the audit logger.
type ShipRepo struct {
	db  *gormlib.DB
	pub common.ChangePublisher
}

// NewShipRepo creates a new ship repository
func NewShipRepo(db *gormlib.DB, pub common.ChangePublisher) *ShipRepo {
	return &ShipRepo{db: db, pub: pub}
}

// Create inserts a ship, assigning an ID and the lowercase name companion.
func (r *ShipRepo) Create(ctx context.Context, ship *gorm.Ship) error {
	if ship.ID == "" {
		ship.ID = uuid.NewString()
	}
	ship.NameLower = strings.ToLower(ship.Name)

	if err := r.db.WithContext(ctx).Create(ship).Error; err != nil {
		return err
	}

	r.publish(ctx, common.ChangeCreated, ship.ID, nil, ship)
	return nil
}

// Update saves a ship and publishes the before/after pair.
func (r *ShipRepo) Update(ctx context.Context, ship *gorm.Ship) error {
	before, err := r.FindByID(ctx, ship.ID)
	if err != nil {
		return err
	}

	ship.NameLower = strings.ToLower(ship.Name)
	if err := r.db.WithContext(ctx).Save(ship).Error; err != nil {
		return err
	}

	r.publish(ctx, common.ChangeUpdated, ship.ID, before, ship)
	return nil
}

// FindByID finds a ship by ID
func (r *ShipRepo) FindByID(ctx context.Context, id string) (*gorm.Ship, error) {
	var ship gorm.Ship

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ship).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &ship, nil
}

// FindByName finds a ship by case-insensitive name equality
func (r *ShipRepo) FindByName(ctx context.Context, name string) (*gorm.Ship, error) {
	var ship gorm.Ship

	err := r.db.WithContext(ctx).
		Where("name_lower = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&ship).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &ship, nil
}

func (r *ShipRepo) publish(ctx context.Context, kind common.ChangeKind, id string, before, after *gorm.Ship) {
	if r.pub == nil {
		return
	}
	ev := &common.ChangeEvent{
		Collection: constants.CollectionShips,
		Kind:       kind,
		DocID:      id,
		Before:     marshalSnapshot(before),
		After:      marshalSnapshot(after),
		OccurredAt: time.Now().UTC(),
	}
	if err := r.pub.PublishChange(ctx, ev); err != nil {
		logging.Warn("Failed to publish ship change event", "doc_id", id, "error", err.Error())
	}
}

// marshalSnapshot renders a document for the change feed. A nil document
// (missing side of a create/delete) marshals to nil, not "null".
func marshalSnapshot(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return nil
	}
	return data
}
