package dtos

// Classification of a ship name across the two live sources (external
// arrivals feed vs internally recorded visits).
type MatchClassification string

const (
	ClassPDFOnly    MatchClassification = "pdf-only"
	ClassSystemOnly MatchClassification = "system-only"
	ClassMatched    MatchClassification = "matched"
	ClassMismatch   MatchClassification = "mismatch"
)

// displayRank orders classifications so records needing human action
// surface first. Consuming surfaces rely on this ordering.
var displayRank = map[MatchClassification]int{
	ClassPDFOnly:    0,
	ClassMismatch:   1,
	ClassMatched:    2,
	ClassSystemOnly: 3,
}

// Rank returns the display priority of the classification (lower first).
func (c MatchClassification) Rank() int { return displayRank[c] }

// FieldDiscrepancy is one differing field between the feed row and the
// internal record, both values rendered as display strings.
type FieldDiscrepancy struct {
	Field       string `json:"field"`
	FeedValue   string `json:"feedValue"`
	SystemValue string `json:"systemValue"`
}

// ReconciliationResult is the derived, non-persisted classification for one
// distinct ship name across the two sources.
type ReconciliationResult struct {
	ShipName       string              `json:"shipName"`
	Classification MatchClassification `json:"classification"`
	Discrepancies  []FieldDiscrepancy  `json:"discrepancies,omitempty"`
	FeedETA        *string             `json:"feedEta,omitempty"`
	SystemVisitID  string              `json:"systemVisitId,omitempty"`
}

// SnapshotChangeKind classifies a ship between the current and previous
// feed snapshots.
type SnapshotChangeKind string

const (
	SnapshotNew       SnapshotChangeKind = "new"
	SnapshotRemoved   SnapshotChangeKind = "removed"
	SnapshotModified  SnapshotChangeKind = "modified"
	SnapshotUnchanged SnapshotChangeKind = "unchanged"
)

// SnapshotChange is the change-highlighting entry for one ship between the
// latest two feed snapshots.
type SnapshotChange struct {
	ShipName      string             `json:"shipName"`
	Change        SnapshotChangeKind `json:"change"`
	ChangedFields []string           `json:"changedFields,omitempty"`
}

// ReconciliationView is the full payload served to the review surface.
type ReconciliationView struct {
	Results         []ReconciliationResult `json:"results"`
	SnapshotChanges []SnapshotChange       `json:"snapshotChanges"`
	FeedGeneration  int64                  `json:"feedGeneration"`
}
