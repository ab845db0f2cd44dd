package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tidewater/harbormaster/internal/auth"
	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/models/entities"

	"github.com/google/uuid"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Appender is the audit store's write side.
type Appender interface {
	Append(ctx context.Context, entry *entities.AuditLogEntry) error
}

// Logger turns document change events into immutable audit entries.
// Updates carry a per-field delta; creates and deletes record the action
// and actor only. A save that changed nothing meaningful produces no
// entry at all.
type Logger struct {
	store Appender
}

// NewLogger creates a new audit logger
func NewLogger(store Appender) *Logger {
	return &Logger{store: store}
}

// HandleChange processes one change event. Returns whether an entry was
// written.
func (l *Logger) HandleChange(ctx context.Context, ev *common.ChangeEvent) (bool, error) {
	createdAt := ev.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	entry := &entities.AuditLogEntry{
		ID:         uuid.NewString(),
		Collection: string(ev.Collection),
		DocID:      ev.DocID,
		CreatedAt:  createdAt,
	}

	switch ev.Kind {
	case common.ChangeCreated:
		entry.Action = ActionCreate
		entry.Actor, entry.ActorContext = actorOf(ev.After)

	case common.ChangeDeleted:
		entry.Action = ActionDelete
		entry.Actor, entry.ActorContext = actorOf(ev.Before)

	case common.ChangeUpdated:
		delta, err := ComputeDelta(ev.Before, ev.After)
		if err != nil {
			return false, err
		}
		if len(delta) == 0 {
			// Ghost save: the document was rewritten byte-for-byte.
			logging.Debug("Suppressing ghost save",
				"collection", ev.Collection, "doc_id", ev.DocID)
			return false, nil
		}

		changes, err := json.Marshal(delta)
		if err != nil {
			return false, fmt.Errorf("failed to encode delta: %w", err)
		}
		entry.Action = ActionUpdate
		entry.Changes = changes
		entry.Actor, entry.ActorContext = actorOf(ev.After)

	default:
		return false, fmt.Errorf("unknown change kind %q", ev.Kind)
	}

	// Trip history is only needed for one billing cycle; a scheduled
	// purge removes expired rows.
	if ev.Collection == constants.CollectionTrips {
		expires := createdAt.AddDate(1, 0, 0)
		entry.ExpiresAt = &expires
	}

	if err := l.store.Append(ctx, entry); err != nil {
		return false, fmt.Errorf("failed to append audit entry: %w", err)
	}
	return true, nil
}

// actorOf pulls the writing identity out of a document snapshot's
// bookkeeping fields.
func actorOf(snapshot json.RawMessage) (actor, actorContext string) {
	var doc struct {
		UpdatedBy   string `json:"updatedBy"`
		UpdatedFrom string `json:"updatedFrom"`
	}
	if len(snapshot) > 0 {
		// Best effort; a broken snapshot attributes to the system actor.
		_ = json.Unmarshal(snapshot, &doc)
	}
	return auth.ActorFromField(doc.UpdatedBy).String(), doc.UpdatedFrom
}
