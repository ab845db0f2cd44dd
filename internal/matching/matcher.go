package matching

import (
	"strings"
	"time"

	"tidewater/harbormaster/internal/models/gorm"
)

// BoardingWindow is how far a trip's boarding time may sit from the
// charge's resolved date for the heuristic fallback to consider it.
const BoardingWindow = 24 * time.Hour

// FindMatchingTrip selects the single best trip for a legacy charge, or
// nil when none exists. Pure and deterministic: the same charge and the
// same candidate slices always produce the same answer.
//
// Strategy A (primary): when the charge carries a visit id, the first trip
// among that visit's trips whose normalized type equals the charge's type
// wins. Strategy B (heuristic fallback): when A found nothing and the
// charge has both a ship name and a resolved date, the first trip boarded
// within ±24h whose ship name matches case-insensitively, substring in
// either direction, wins. Callers fabricate a standalone trip when both
// strategies come up empty.
func FindMatchingTrip(charge NormalizedCharge, visitTrips, windowTrips []gorm.Trip) *gorm.Trip {
	if charge.VisitID != "" {
		for i := range visitTrips {
			if visitTrips[i].TripType == charge.TripType {
				return &visitTrips[i]
			}
		}
	}

	if charge.ShipName == "" || charge.Date == nil {
		return nil
	}

	for i := range windowTrips {
		t := &windowTrips[i]
		if t.Boarding == nil {
			continue
		}
		if !withinWindow(*t.Boarding, *charge.Date, BoardingWindow) {
			continue
		}
		if ShipNamesMatch(t.ShipName, charge.ShipName) {
			return t
		}
	}

	return nil
}

// ShipNamesMatch compares ship names case-insensitively with substring
// containment in either direction, so "MSC Oscar" matches "Oscar" and
// vice versa. Same legacy-compatibility caveat as NormalizeTripType.
func ShipNamesMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
