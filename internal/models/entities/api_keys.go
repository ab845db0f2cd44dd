package entities

import "tidewater/harbormaster/internal/constants"

type ApiKey struct {
	Key      string             `db:"key"`
	IsActive bool               `db:"is_active"`
	Role     constants.PortRole `db:"role"`
}
