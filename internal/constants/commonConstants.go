package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
	Collection    string
)

const (
	RequestSourceAPI       RequestSource = "API"
	RequestSourceWebClient RequestSource = "WEB_CLIENT"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixReconciliation CachePrefix = "RECON_"
	CachePrefixFeedSnapshot   CachePrefix = "FEED_SNAP_"
	CachePrefixShipLookup     CachePrefix = "SHIP_"
)

// Collections whose writes flow through the change feed.
const (
	CollectionShips   Collection = "ships"
	CollectionVisits  Collection = "visits"
	CollectionTrips   Collection = "trips"
	CollectionCharges Collection = "charges"
)

// Writer markers stamped by the server-side consumers so downstream
// audit entries attribute the write correctly.
const (
	WriterChargeBridge = "charge-bridge"
	WriterShipFanout   = "ship-fanout"
)

// Source tags recorded on visits/trips to identify which feed produced them.
const (
	SourceManual  = "manual"
	SourcePDFFeed = "pdf-feed"
	SourceBridge  = "charge-bridge"
)
