package constants

const (
	StatusError            = "Error"
	StatusNotAdmin         = "Caller is not an administrator"
	StatusShipNotInFeed    = "Ship not present in latest feed snapshot"
	StatusVisitExists      = "Visit already exists for ship"
	StatusInsertFailed     = "Unable to insert"
	StatusBackfillRunning  = "A backfill run is already in progress"
	StatusBackfillComplete = "Backfill completed"
)

const (
	MsgShipNotFound     = "Ship not found in feed snapshot"
	MsgNoFeedSnapshot   = "No feed snapshot has been ingested yet"
	MsgInvalidCutoff    = "Invalid cutoff date"
	MsgDuplicateRequest = "Duplicate accept request for ship"
)

// Machine-readable rejection reason codes surfaced in API error payloads.
const (
	ReasonNotAdmin      = "NOT_ADMIN"
	ReasonInvalidInput  = "INVALID_INPUT"
	ReasonNotFound      = "NOT_FOUND"
	ReasonLocked        = "LOCKED"
	ReasonInternalError = "INTERNAL_ERROR"
)
