package reconcile

import (
	"sort"
	"strings"
	"time"

	"tidewater/harbormaster/internal/matching"
	"tidewater/harbormaster/internal/models/dtos"
	gormModels "tidewater/harbormaster/internal/models/gorm"
)

// Everything in this package is derivational: it reads two already-loaded
// data sets and produces a view, never a write. Acceptance of a feed-only
// ship into the system is a separate, user-triggered operation.

// SnapshotDiff classifies every ship across the latest two feed snapshots.
// Matching is by case-insensitive exact name. Results are ordered by ship
// name for stable rendering.
func SnapshotDiff(current, previous []gormModels.FeedShip) []dtos.SnapshotChange {
	prevByName := make(map[string]*gormModels.FeedShip, len(previous))
	for i := range previous {
		prevByName[feedKey(&previous[i])] = &previous[i]
	}

	seen := make(map[string]bool, len(current))
	changes := make([]dtos.SnapshotChange, 0, len(current))

	for i := range current {
		cur := &current[i]
		key := feedKey(cur)
		if seen[key] {
			continue
		}
		seen[key] = true

		prev, ok := prevByName[key]
		if !ok {
			changes = append(changes, dtos.SnapshotChange{
				ShipName: cur.Name,
				Change:   dtos.SnapshotNew,
			})
			continue
		}

		changed := changedSnapshotFields(prev, cur)
		if len(changed) == 0 {
			changes = append(changes, dtos.SnapshotChange{
				ShipName: cur.Name,
				Change:   dtos.SnapshotUnchanged,
			})
			continue
		}
		changes = append(changes, dtos.SnapshotChange{
			ShipName:      cur.Name,
			Change:        dtos.SnapshotModified,
			ChangedFields: changed,
		})
	}

	for i := range previous {
		if seen[feedKey(&previous[i])] {
			continue
		}
		seen[feedKey(&previous[i])] = true
		changes = append(changes, dtos.SnapshotChange{
			ShipName: previous[i].Name,
			Change:   dtos.SnapshotRemoved,
		})
	}

	sort.Slice(changes, func(i, j int) bool {
		return strings.ToLower(changes[i].ShipName) < strings.ToLower(changes[j].ShipName)
	})
	return changes
}

func changedSnapshotFields(prev, cur *gormModels.FeedShip) []string {
	var changed []string
	if prev.Name != cur.Name {
		changed = append(changed, "name")
	}
	if !intPtrEqual(prev.Tonnage, cur.Tonnage) {
		changed = append(changed, "tonnage")
	}
	if prev.Port != cur.Port {
		changed = append(changed, "port")
	}
	if !strings.EqualFold(prev.Status, cur.Status) {
		changed = append(changed, "status")
	}
	if !etaTextEqual(prev.ETA, cur.ETA) {
		changed = append(changed, "eta")
	}
	return changed
}

// Classify runs the cross-source reconciliation: every ship name appearing
// in the feed or in the internal active visits gets exactly one of the four
// classifications. Results come back in display order: feed-only ships
// first, then mismatches, then clean matches, then system-only records.
func Classify(feed []gormModels.FeedShip, visits []gormModels.Visit) []dtos.ReconciliationResult {
	visitByName := make(map[string]*gormModels.Visit, len(visits))
	for i := range visits {
		key := strings.ToLower(strings.TrimSpace(visits[i].ShipName))
		if _, ok := visitByName[key]; !ok {
			visitByName[key] = &visits[i]
		}
	}

	seen := make(map[string]bool, len(feed)+len(visits))
	results := make([]dtos.ReconciliationResult, 0, len(feed)+len(visits))

	for i := range feed {
		row := &feed[i]
		key := feedKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true

		visit, ok := visitByName[key]
		if !ok {
			results = append(results, dtos.ReconciliationResult{
				ShipName:       row.Name,
				Classification: dtos.ClassPDFOnly,
				FeedETA:        row.ETA,
			})
			continue
		}

		discrepancies := compareSources(row, visit)
		result := dtos.ReconciliationResult{
			ShipName:      row.Name,
			FeedETA:       row.ETA,
			SystemVisitID: visit.ID,
		}
		if len(discrepancies) == 0 {
			result.Classification = dtos.ClassMatched
		} else {
			result.Classification = dtos.ClassMismatch
			result.Discrepancies = discrepancies
		}
		results = append(results, result)
	}

	for i := range visits {
		key := strings.ToLower(strings.TrimSpace(visits[i].ShipName))
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, dtos.ReconciliationResult{
			ShipName:       visits[i].ShipName,
			Classification: dtos.ClassSystemOnly,
			SystemVisitID:  visits[i].ID,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i].Classification.Rank(), results[j].Classification.Rank()
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(results[i].ShipName) < strings.ToLower(results[j].ShipName)
	})
	return results
}

// compareSources produces the per-field discrepancy list for a ship present
// in both sources. Both sides render as display strings so the review
// surface can show them verbatim.
func compareSources(row *gormModels.FeedShip, visit *gormModels.Visit) []dtos.FieldDiscrepancy {
	var out []dtos.FieldDiscrepancy

	// Names already matched case-insensitively; an exact-case difference is
	// still worth surfacing since the feed casing is often the correction.
	if row.Name != visit.ShipName {
		out = append(out, dtos.FieldDiscrepancy{
			Field: "name", FeedValue: row.Name, SystemValue: visit.ShipName,
		})
	}

	if !etasAgree(row.ETA, visit.ETA) {
		out = append(out, dtos.FieldDiscrepancy{
			Field:       "eta",
			FeedValue:   strPtrDisplay(row.ETA),
			SystemValue: timePtrDisplay(visit.ETA),
		})
	}

	if !strings.EqualFold(row.Status, string(visit.Status)) {
		out = append(out, dtos.FieldDiscrepancy{
			Field: "status", FeedValue: row.Status, SystemValue: string(visit.Status),
		})
	}

	berth := ""
	if visit.Berth != nil {
		berth = *visit.Berth
	}
	if !strings.EqualFold(row.Port, berth) {
		out = append(out, dtos.FieldDiscrepancy{
			Field: "port", FeedValue: row.Port, SystemValue: berth,
		})
	}

	return out
}

// etasAgree compares the feed's textual ETA with the visit's timestamp to
// minute precision. An unparseable feed value can never agree.
func etasAgree(feedETA *string, visitETA *time.Time) bool {
	if feedETA == nil && visitETA == nil {
		return true
	}
	if feedETA == nil || visitETA == nil {
		return false
	}

	parsed := matching.ParseFlexibleTime(*feedETA)
	if parsed == nil {
		return false
	}
	return parsed.UTC().Truncate(time.Minute).Equal(visitETA.UTC().Truncate(time.Minute))
}

// etaTextEqual compares two snapshot ETA texts, tolerating formatting
// drift between extraction runs when both parse.
func etaTextEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	pa, pb := matching.ParseFlexibleTime(*a), matching.ParseFlexibleTime(*b)
	if pa != nil && pb != nil {
		return pa.UTC().Truncate(time.Minute).Equal(pb.UTC().Truncate(time.Minute))
	}
	return strings.TrimSpace(*a) == strings.TrimSpace(*b)
}

func feedKey(row *gormModels.FeedShip) string {
	if row.NameLower != "" {
		return row.NameLower
	}
	return strings.ToLower(strings.TrimSpace(row.Name))
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrDisplay(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timePtrDisplay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
