package gorm

import "time"

// FeedShip is one ship row from an extracted arrivals-PDF snapshot. The
// whole generation is replaced on each successful extraction cycle; the
// previous generation is retained to support change highlighting.
type FeedShip struct {
	ID         string `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Generation int64  `gorm:"column:generation;not null;index" json:"generation"`

	Name      string `gorm:"column:name;type:varchar(200);not null" json:"name"`
	NameLower string `gorm:"column:name_lower;type:varchar(200);not null;index" json:"nameLower"`
	Tonnage   *int   `gorm:"column:tonnage;type:integer" json:"tonnage,omitempty"`
	Port      string `gorm:"column:port;type:varchar(50)" json:"port,omitempty"`

	// ISO 8601 as extracted; kept as text because the extractor does not
	// guarantee a parseable value.
	ETA    *string `gorm:"column:eta;type:varchar(40)" json:"eta,omitempty"`
	Status string  `gorm:"column:status;type:varchar(20)" json:"status,omitempty"`
	Notes  *string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	OutwardTime *string `gorm:"column:outward_time;type:varchar(40)" json:"outwardTime,omitempty"`
	PilotCode   *string `gorm:"column:pilot_code;type:varchar(20)" json:"pilotCode,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for GORM
func (FeedShip) TableName() string {
	return "feed_ships"
}
