package dtos

// BackfillResult is the aggregate outcome of a charge backfill run. Counts
// are returned so the calling surface can report partial success without
// re-deriving it.
type BackfillResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// AcceptShipResult reports what the accept operation actually did.
type AcceptShipResult struct {
	ShipID      string `json:"shipId"`
	ShipCreated bool   `json:"shipCreated"`
	VisitID     string `json:"visitId"`
}
