package constants

import (
	"database/sql/driver"
	"fmt"
)

// PortRole mirrors the Postgres ENUM 'port_role'
type PortRole string

const (
	RolePilot      PortRole = "pilot"
	RoleOperations PortRole = "operations"
	RoleAdmin      PortRole = "admin"
)

// Stringer ­– convenient for fmt / logs
func (r PortRole) String() string { return string(r) }

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *PortRole) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = PortRole(v)
	case []byte:
		*r = PortRole(v)
	default:
		return fmt.Errorf("PortRole: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r PortRole) Value() (driver.Value, error) { return string(r), nil }
