package gorm

import (
	"time"

	"tidewater/harbormaster/internal/constants"
)

// Trip is a single billable pilotage movement. Normally it belongs to a
// visit; the charge bridge fabricates standalone confirmed trips (no visit
// reference) when a legacy charge cannot be matched, so billing data is
// never silently dropped.
type Trip struct {
	ID      string  `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	VisitID *string `gorm:"column:visit_id;type:uuid;index" json:"visitId,omitempty"`
	ShipID  *string `gorm:"column:ship_id;type:uuid;index" json:"shipId,omitempty"`

	TripType constants.TripType `gorm:"column:trip_type;type:varchar(20);not null" json:"typeTrip"`
	// Nullable until the pilot actually boards.
	Boarding *time.Time `gorm:"column:boarding;index" json:"boarding,omitempty"`
	Pilot    string     `gorm:"column:pilot;type:varchar(100)" json:"pilot,omitempty"`
	Port     string     `gorm:"column:port;type:varchar(50)" json:"port,omitempty"`

	Notes            *string `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ExtraChargeNotes *string `gorm:"column:extra_charge_notes;type:text" json:"extraChargeNotes,omitempty"`

	// Billing fields. Authoritative once IsConfirmed flips to true; only
	// the legacy charge bridge may still overwrite them for reconciliation.
	IsConfirmed bool       `gorm:"column:is_confirmed;not null;default:false" json:"isConfirmed"`
	ShipName    string     `gorm:"column:ship_name;type:varchar(200)" json:"shipName,omitempty"`
	Tonnage     int        `gorm:"column:tonnage;type:integer" json:"gt,omitempty"`
	ConfirmedBy *string    `gorm:"column:confirmed_by;type:varchar(100)" json:"confirmedBy,omitempty"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at" json:"confirmedAt,omitempty"`

	// Opaque reference to an attached docket document; the blob itself
	// lives in external storage.
	AttachmentURL  *string `gorm:"column:attachment_url;type:text" json:"attachmentUrl,omitempty"`
	AttachmentPath *string `gorm:"column:attachment_path;type:text" json:"attachmentPath,omitempty"`
	AttachmentType *string `gorm:"column:attachment_type;type:varchar(50)" json:"attachmentType,omitempty"`

	// Legacy charge this trip's billing data came from, when the bridge
	// wrote it. Lets a reapplied charge write find its own earlier work.
	ChargeID *string `gorm:"column:charge_id;type:varchar(64);index" json:"chargeId,omitempty"`

	Source string `gorm:"column:source;type:varchar(30)" json:"source,omitempty"`

	UpdatedBy   string `gorm:"column:updated_by;type:varchar(100)" json:"updatedBy,omitempty"`
	UpdatedFrom string `gorm:"column:updated_from;type:varchar(100)" json:"updatedFrom,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Trip) TableName() string {
	return "trips"
}
