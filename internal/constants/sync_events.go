package constants

// Sync event types for the sync_history table
const (
	SyncEventChargeBackfill = "CHARGE_BACKFILL"
	SyncEventFeedSnapshot   = "FEED_SNAPSHOT"
)
