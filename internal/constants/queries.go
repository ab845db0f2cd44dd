package constants

const (
	InsertAuditLogEntry = `
	INSERT INTO audit_log (id, collection, doc_id, action, actor, actor_context, changes, created_at, expires_at)
	VALUES (:id, :collection, :doc_id, :action, :actor, :actor_context, :changes, :created_at, :expires_at)
	`

	GetAuditLogForDoc = `
	SELECT * FROM audit_log WHERE collection = $1 AND doc_id = $2 ORDER BY created_at DESC
	`

	GetApiKeyStatus = `
	SELECT key, is_active, role FROM api_keys WHERE key = $1
	`
)
