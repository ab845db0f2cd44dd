package repositories

import (
	"context"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// AuditLogRepo appends to and reads the audit_log table. The table is
// insert-only; entries are never updated or deleted by the application.
type AuditLogRepo struct {
	db *sqlx.DB
}

func NewAuditLogRepo(db *sqlx.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// Append writes one immutable audit entry.
func (r *AuditLogRepo) Append(ctx context.Context, entry *entities.AuditLogEntry) error {
	_, err := r.db.NamedExecContext(ctx, constants.InsertAuditLogEntry, entry)
	return err
}

// ForDoc returns the audit trail for one document, newest first.
func (r *AuditLogRepo) ForDoc(ctx context.Context, collection, docID string) ([]entities.AuditLogEntry, error) {
	var entries []entities.AuditLogEntry

	err := r.db.SelectContext(ctx, &entries, constants.GetAuditLogForDoc, collection, docID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
