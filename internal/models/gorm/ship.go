package gorm

import "time"

// Ship is the master record for a vessel. One row per hull; visits and
// trips carry denormalized copies of name and tonnage that the fan-out
// propagator keeps consistent when this record changes.
type Ship struct {
	ID   string `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Name string `gorm:"column:name;type:varchar(200);not null" json:"name"`
	// Lowercase companion kept for case-insensitive equality search.
	NameLower   string  `gorm:"column:name_lower;type:varchar(200);not null;index" json:"nameLower"`
	Tonnage     int     `gorm:"column:tonnage;type:integer;not null" json:"tonnage"`
	IMO         *string `gorm:"column:imo;type:varchar(20)" json:"imo,omitempty"`
	TrackingURL *string `gorm:"column:tracking_url;type:text" json:"trackingUrl,omitempty"`
	Notes       *string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Bookkeeping fields set by the UI layer on every write. Transport
	// metadata, stripped from audit snapshots.
	UpdatedBy   string `gorm:"column:updated_by;type:varchar(100)" json:"updatedBy,omitempty"`
	UpdatedFrom string `gorm:"column:updated_from;type:varchar(100)" json:"updatedFrom,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Ship) TableName() string {
	return "ships"
}
