package gorm

import "time"

// Charge is a flat billing record from the legacy system being phased out.
// Field names are inconsistent across records (ship identity, category and
// date each appear under several keys, dates as timestamps or strings), so
// the payload is stored as raw JSON and normalized by the matching package.
// The bridge only ever reads charges; it never creates or mutates them.
type Charge struct {
	ID string `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`

	// Raw legacy document as received.
	Fields []byte `gorm:"column:fields;type:jsonb;not null" json:"fields"`

	CreatedBy string    `gorm:"column:created_by;type:varchar(100)" json:"createdBy,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime;index" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Charge) TableName() string {
	return "charges"
}
