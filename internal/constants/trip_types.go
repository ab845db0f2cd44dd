package constants

// TripType is the canonical pilotage movement category. Legacy charge
// records carry free-text categories; matching.NormalizeTripType is the
// only place that maps raw text onto these values.
type TripType string

const (
	TripTypeIn        TripType = "In"
	TripTypeOut       TripType = "Out"
	TripTypeShift     TripType = "Shift"
	TripTypeAnchorage TripType = "Anchorage"
	TripTypeOther     TripType = "Other"
)

func (t TripType) String() string { return string(t) }
