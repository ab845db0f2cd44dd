package gorm

import (
	"time"

	"tidewater/harbormaster/internal/constants"
)

// Visit is one port call: a ship's stay from first expectation to sailing.
type Visit struct {
	ID     string `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	ShipID string `gorm:"column:ship_id;type:uuid;not null;index" json:"shipId"`

	// Denormalized ship fields, kept consistent by the fan-out propagator.
	ShipName      string `gorm:"column:ship_name;type:varchar(200);not null" json:"shipName"`
	ShipNameLower string `gorm:"column:ship_name_lower;type:varchar(200);not null;index" json:"shipNameLower"`
	Tonnage       int    `gorm:"column:tonnage;type:integer" json:"tonnage"`

	Status constants.VisitStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	ETA    *time.Time            `gorm:"column:eta;index" json:"eta,omitempty"`
	Berth  *string               `gorm:"column:berth;type:varchar(50)" json:"berth,omitempty"`
	Notes  *string               `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Which feed produced this visit (manual entry, pdf-feed accept).
	Source string `gorm:"column:source;type:varchar(30)" json:"source,omitempty"`

	UpdatedBy   string `gorm:"column:updated_by;type:varchar(100)" json:"updatedBy,omitempty"`
	UpdatedFrom string `gorm:"column:updated_from;type:varchar(100)" json:"updatedFrom,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Visit) TableName() string {
	return "visits"
}
