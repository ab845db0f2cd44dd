package matching

import (
	"strconv"
	"strings"
	"time"

	"tidewater/harbormaster/internal/constants"
)

// NormalizeTripType maps a free-text legacy charge category onto a
// canonical trip type by case-insensitive substring containment. This is
// the single place the rule lives; every trip-type comparison and every
// trip creation goes through it. The containment rule is deliberate legacy
// behavior: "INWARD", "inward" and "In" all normalize to In because each
// contains "in". That also means a future category containing "in" inside
// an unrelated word would misclassify; tightening the rule here is safe
// for call sites but changes compatibility.
func NormalizeTripType(raw string) constants.TripType {
	lower := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.Contains(lower, "in"):
		return constants.TripTypeIn
	case strings.Contains(lower, "out"):
		return constants.TripTypeOut
	case strings.Contains(lower, "shift"):
		return constants.TripTypeShift
	case strings.Contains(lower, "anchor"):
		return constants.TripTypeAnchorage
	default:
		return constants.TripTypeOther
	}
}

// timeLayouts are tried in order when a legacy date arrives as a string.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFlexibleTime interprets the heterogeneous timestamp representations
// the legacy system produces: native timestamps, epoch milliseconds, or
// strings in a handful of layouts. Returns nil when nothing parses.
func ParseFlexibleTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return &parsed
			}
		}
		return nil
	case float64:
		// JSON numbers decode as float64; legacy exports use epoch millis.
		parsed := time.UnixMilli(int64(t)).UTC()
		return &parsed
	case int64:
		parsed := time.UnixMilli(t).UTC()
		return &parsed
	default:
		return nil
	}
}

// NormalizedCharge is the canonical internal form of a legacy charge
// record. All alias resolution happens in NormalizeCharge; nothing
// downstream looks at raw field names again.
type NormalizedCharge struct {
	ID       string
	VisitID  string
	ShipName string
	Tonnage  *int
	TripType constants.TripType
	// Resolved date: "boarding" preferred, generic "date" as fallback.
	// Nil when neither is present or parseable; that disables the
	// heuristic matching strategy but not the visit-id strategy.
	Date      *time.Time
	CreatedBy string
	CreatedAt *time.Time
}

// Aliases under which the legacy system records each logical field.
var (
	shipAliases  = []string{"ship", "shipName"}
	typeAliases  = []string{"typeTrip", "type", "category"}
	dateAliases  = []string{"boarding", "date"}
	visitAliases = []string{"visitid", "visitId"}
	gtAliases    = []string{"gt", "tonnage"}
)

// NormalizeCharge resolves a raw legacy charge document into the canonical
// form. Missing or malformed fields degrade to zero values; they disable
// matching strategies rather than failing the whole record.
func NormalizeCharge(id string, fields map[string]interface{}, createdBy string, createdAt *time.Time) NormalizedCharge {
	c := NormalizedCharge{
		ID:        id,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}

	c.VisitID = firstString(fields, visitAliases)
	c.ShipName = firstString(fields, shipAliases)
	c.TripType = NormalizeTripType(firstString(fields, typeAliases))
	c.Tonnage = firstInt(fields, gtAliases)

	for _, key := range dateAliases {
		if raw, ok := fields[key]; ok {
			if parsed := ParseFlexibleTime(raw); parsed != nil {
				c.Date = parsed
				break
			}
		}
	}

	return c
}

func firstString(fields map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func firstInt(fields map[string]interface{}, keys []string) *int {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			n := int(v)
			return &n
		case int:
			n := v
			return &n
		case string:
			// Tolerate "50,000" style thousands separators from
			// spreadsheet exports.
			s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
			if s == "" {
				continue
			}
			if n, err := strconv.Atoi(s); err == nil {
				return &n
			}
		}
	}
	return nil
}
