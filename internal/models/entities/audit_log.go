package entities

import "time"

// AuditLogEntry is the sqlx shape of an audit_log row. The append path
// goes through named queries rather than the ORM; the table is insert-only.
type AuditLogEntry struct {
	ID           string     `db:"id"`
	Collection   string     `db:"collection"`
	DocID        string     `db:"doc_id"`
	Action       string     `db:"action"`
	Actor        string     `db:"actor"`
	ActorContext string     `db:"actor_context"`
	Changes      []byte     `db:"changes"`
	CreatedAt    time.Time  `db:"created_at"`
	ExpiresAt    *time.Time `db:"expires_at"`
}
