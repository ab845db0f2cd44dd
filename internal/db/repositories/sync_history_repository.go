package repositories

import (
	"context"
	"time"

	"tidewater/harbormaster/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// SyncHistoryRepo tracks when server-side sync operations last ran
type SyncHistoryRepo struct {
	db *gormlib.DB
}

// NewSyncHistoryRepo creates a new sync history repository
func NewSyncHistoryRepo(db *gormlib.DB) *SyncHistoryRepo {
	return &SyncHistoryRepo{db: db}
}

// RecordSync records a completed sync operation for an event type
func (r *SyncHistoryRepo) RecordSync(ctx context.Context, event string) error {
	now := time.Now().UTC()
	rec := &gorm.SyncHistory{
		ID:         uuid.NewString(),
		Event:      event,
		LastSyncAt: &now,
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// GetLastSyncTimeForEvent returns the most recent sync time for an event
// type, or nil if the event has never run.
func (r *SyncHistoryRepo) GetLastSyncTimeForEvent(ctx context.Context, event string) (*time.Time, error) {
	var rec gorm.SyncHistory

	err := r.db.WithContext(ctx).
		Where("event = ?", event).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return rec.LastSyncAt, nil
}
