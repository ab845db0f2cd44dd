package common

import (
	"context"
	"encoding/json"
	"time"

	"tidewater/harbormaster/internal/constants"
)

// ChangeKind classifies a document write.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent is one document write captured at the repository layer and
// delivered to the per-collection streams. Before/After are the JSON
// snapshots of the document around the write; Before is nil on create,
// After is nil on delete. Delivery is at-least-once, so every consumer
// must be idempotent.
type ChangeEvent struct {
	Collection constants.Collection `json:"collection"`
	Kind       ChangeKind           `json:"kind"`
	DocID      string               `json:"docId"`
	Before     json.RawMessage      `json:"before,omitempty"`
	After      json.RawMessage      `json:"after,omitempty"`
	OccurredAt time.Time            `json:"occurredAt"`
}

// ChangePublisher is the repository-facing side of the change feed.
type ChangePublisher interface {
	PublishChange(ctx context.Context, ev *ChangeEvent) error
	PublishChangeBatch(ctx context.Context, evs []*ChangeEvent) error
}

// StreamFor maps a collection to its Redis stream name.
func StreamFor(c constants.Collection) string {
	return "changes:" + string(c)
}
