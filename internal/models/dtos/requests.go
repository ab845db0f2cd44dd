package dtos

// AcceptShipRequest asks the system to adopt a pdf-only feed ship as an
// internal visit. Explicit user action; never automatic.
type AcceptShipRequest struct {
	ShipName string `json:"shipName"`
}

// BackfillRequest triggers a charge backfill from the given cutoff date
// (RFC 3339 or YYYY-MM-DD). Admin only.
type BackfillRequest struct {
	Cutoff string `json:"cutoff"`
}
