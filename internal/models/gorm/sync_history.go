package gorm

import "time"

// SyncHistory tracks server-side sync operations (charge backfills, feed
// snapshot ingests) so incremental runs know where to resume.
type SyncHistory struct {
	ID         string     `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Event      string     `gorm:"column:event;type:varchar(50);not null;index" json:"event"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	LastSyncAt *time.Time `gorm:"column:last_sync_at" json:"lastSyncAt,omitempty"`
}

// TableName specifies the table name for GORM
func (SyncHistory) TableName() string {
	return "sync_history"
}
