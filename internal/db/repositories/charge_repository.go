package repositories

import (
	"context"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChargeRepo handles the legacy charges table. The legacy system is the
// only writer of charge payloads; this repo exists so its writes land in
// our store and flow onto the charges change stream for the bridge.
type ChargeRepo struct {
	db  *gormlib.DB
	pub common.ChangePublisher
}

// NewChargeRepo creates a new charge repository
func NewChargeRepo(db *gormlib.DB, pub common.ChangePublisher) *ChargeRepo {
	return &ChargeRepo{db: db, pub: pub}
}

// Upsert inserts or replaces a charge by legacy ID and publishes the write.
// ON CONFLICT (id) DO UPDATE
func (r *ChargeRepo) Upsert(ctx context.Context, charge *gorm.Charge) error {
	before, err := r.FindByID(ctx, charge.ID)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"fields", "created_by", "updated_at",
			}),
		}).
		Create(charge).Error
	if err != nil {
		return err
	}

	kind := common.ChangeUpdated
	if before == nil {
		kind = common.ChangeCreated
	}
	r.publish(ctx, kind, charge.ID, before, charge)
	return nil
}

// FindByID finds a charge by its legacy identifier
func (r *ChargeRepo) FindByID(ctx context.Context, id string) (*gorm.Charge, error) {
	var charge gorm.Charge

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&charge).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &charge, nil
}

// FindModifiedSince returns charges modified on or after the cutoff, oldest
// first, for the backfill loop.
func (r *ChargeRepo) FindModifiedSince(ctx context.Context, cutoff time.Time) ([]gorm.Charge, error) {
	var charges []gorm.Charge

	err := r.db.WithContext(ctx).
		Where("updated_at >= ?", cutoff).
		Order("updated_at ASC").
		Find(&charges).Error
	if err != nil {
		return nil, err
	}

	return charges, nil
}

func (r *ChargeRepo) publish(ctx context.Context, kind common.ChangeKind, id string, before, after *gorm.Charge) {
	if r.pub == nil {
		return
	}
	ev := &common.ChangeEvent{
		Collection: constants.CollectionCharges,
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
		logging.Warn("Failed to publish charge change event", "doc_id", id, "error", err.Error())
	}
}
