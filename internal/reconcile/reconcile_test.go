package reconcile

import (
	"testing"
	"time"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/models/dtos"
	gormModels "tidewater/harbormaster/internal/models/gorm"
)

func feedShip(name string, mutate ...func(*gormModels.FeedShip)) gormModels.FeedShip {
	row := gormModels.FeedShip{Name: name}
	for _, m := range mutate {
		m(&row)
	}
	return row
}

func withETA(eta string) func(*gormModels.FeedShip) {
	return func(r *gormModels.FeedShip) { r.ETA = &eta }
}

func withPort(port string) func(*gormModels.FeedShip) {
	return func(r *gormModels.FeedShip) { r.Port = port }
}

func withStatus(status string) func(*gormModels.FeedShip) {
	return func(r *gormModels.FeedShip) { r.Status = status }
}

func withTonnage(t int) func(*gormModels.FeedShip) {
	return func(r *gormModels.FeedShip) { r.Tonnage = &t }
}

func visit(id, name string, mutate ...func(*gormModels.Visit)) gormModels.Visit {
	v := gormModels.Visit{ID: id, ShipName: name, Status: constants.VisitStatusDue}
	for _, m := range mutate {
		m(&v)
	}
	return v
}

func visitETA(t time.Time) func(*gormModels.Visit) {
	return func(v *gormModels.Visit) { v.ETA = &t }
}

func visitStatus(s constants.VisitStatus) func(*gormModels.Visit) {
	return func(v *gormModels.Visit) { v.Status = s }
}

func visitBerth(b string) func(*gormModels.Visit) {
	return func(v *gormModels.Visit) { v.Berth = &b }
}

func findResult(t *testing.T, results []dtos.ReconciliationResult, name string) dtos.ReconciliationResult {
	t.Helper()
	for _, r := range results {
		if r.ShipName == name {
			return r
		}
	}
	t.Fatalf("No result for %s", name)
	return dtos.ReconciliationResult{}
}

func TestClassify_EveryNameGetsExactlyOneClassification(t *testing.T) {
	feed := []gormModels.FeedShip{
		feedShip("Alpha"),
		feedShip("Beta"),
	}
	visits := []gormModels.Visit{
		visit("v-beta", "BETA"),
		visit("v-gamma", "Gamma"),
	}

	results := Classify(feed, visits)
	if len(results) != 3 {
		t.Fatalf("Expected 3 results for 3 distinct names, got %d", len(results))
	}

	counts := map[string]int{}
	for _, r := range results {
		counts[r.ShipName]++
		hasDiscrepancies := len(r.Discrepancies) > 0
		isMismatch := r.Classification == dtos.ClassMismatch
		if hasDiscrepancies != isMismatch {
			t.Errorf("%s: discrepancy list must be non-empty iff mismatch, got %s with %d",
				r.ShipName, r.Classification, len(r.Discrepancies))
		}
	}
	for name, n := range counts {
		if n != 1 {
			t.Errorf("Expected %s to appear once, got %d", name, n)
		}
	}

	if got := findResult(t, results, "Alpha").Classification; got != dtos.ClassPDFOnly {
		t.Errorf("Expected Alpha pdf-only, got %s", got)
	}
	if got := findResult(t, results, "Gamma").Classification; got != dtos.ClassSystemOnly {
		t.Errorf("Expected Gamma system-only, got %s", got)
	}
}

func TestClassify_ETAMismatchProducesSingleDiscrepancy(t *testing.T) {
	feed := []gormModels.FeedShip{
		feedShip("Karim", withETA("2026-01-03T10:00"), withStatus("Due")),
	}
	systemETA := time.Date(2026, 1, 3, 14, 0, 0, 0, time.UTC)
	visits := []gormModels.Visit{
		visit("v-karim", "Karim", visitETA(systemETA)),
	}

	results := Classify(feed, visits)
	r := findResult(t, results, "Karim")

	if r.Classification != dtos.ClassMismatch {
		t.Fatalf("Expected mismatch, got %s", r.Classification)
	}
	if len(r.Discrepancies) != 1 {
		t.Fatalf("Expected exactly one discrepancy, got %v", r.Discrepancies)
	}
	d := r.Discrepancies[0]
	if d.Field != "eta" {
		t.Errorf("Expected eta discrepancy, got %s", d.Field)
	}
	if d.FeedValue != "2026-01-03T10:00" {
		t.Errorf("Expected feed value verbatim, got %q", d.FeedValue)
	}
	if d.SystemValue != "2026-01-03 14:00" {
		t.Errorf("Expected system value rendered to the minute, got %q", d.SystemValue)
	}
	if r.SystemVisitID != "v-karim" {
		t.Errorf("Expected visit id carried through, got %q", r.SystemVisitID)
	}
}

func TestClassify_MatchedWhenAllFieldsAgree(t *testing.T) {
	eta := time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC)
	feed := []gormModels.FeedShip{
		feedShip("Karim", withETA("2026-01-03T10:00"), withStatus("due"), withPort("North")),
	}
	visits := []gormModels.Visit{
		visit("v-karim", "Karim", visitETA(eta), visitStatus(constants.VisitStatusDue), visitBerth("north")),
	}

	results := Classify(feed, visits)
	r := findResult(t, results, "Karim")
	if r.Classification != dtos.ClassMatched {
		t.Errorf("Expected matched, got %s with %v", r.Classification, r.Discrepancies)
	}
}

func TestClassify_UnparseableFeedETAIsAMismatch(t *testing.T) {
	eta := time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC)
	feed := []gormModels.FeedShip{
		feedShip("Karim", withETA("early tide"), withStatus("Due")),
	}
	visits := []gormModels.Visit{
		visit("v-karim", "Karim", visitETA(eta)),
	}

	r := findResult(t, Classify(feed, visits), "Karim")
	if r.Classification != dtos.ClassMismatch {
		t.Fatalf("Expected mismatch, got %s", r.Classification)
	}
	if r.Discrepancies[0].Field != "eta" {
		t.Errorf("Expected eta discrepancy, got %s", r.Discrepancies[0].Field)
	}
}

func TestClassify_DisplayOrdering(t *testing.T) {
	eta := time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC)
	feed := []gormModels.FeedShip{
		feedShip("Matched Ship", withETA("2026-01-03T10:00"), withStatus("Due")),
		feedShip("Zulu Newcomer"),
		feedShip("Mismatch Ship", withETA("2026-01-03T10:00"), withStatus("Alongside")),
	}
	visits := []gormModels.Visit{
		visit("v-m", "Matched Ship", visitETA(eta), visitStatus(constants.VisitStatusDue)),
		visit("v-x", "Mismatch Ship", visitETA(eta), visitStatus(constants.VisitStatusDue)),
		visit("v-s", "Abandoned Record"),
	}

	results := Classify(feed, visits)

	var order []dtos.MatchClassification
	for _, r := range results {
		order = append(order, r.Classification)
	}
	want := []dtos.MatchClassification{
		dtos.ClassPDFOnly, dtos.ClassMismatch, dtos.ClassMatched, dtos.ClassSystemOnly,
	}
	if len(order) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestSnapshotDiff_ClassifiesAllFourKinds(t *testing.T) {
	current := []gormModels.FeedShip{
		feedShip("Newcomer"),
		feedShip("Steady", withPort("North"), withTonnage(30000)),
		feedShip("Shifted", withPort("South")),
	}
	previous := []gormModels.FeedShip{
		feedShip("Steady", withPort("North"), withTonnage(30000)),
		feedShip("Shifted", withPort("North")),
		feedShip("Departed"),
	}

	changes := SnapshotDiff(current, previous)
	byName := map[string]dtos.SnapshotChange{}
	for _, c := range changes {
		byName[c.ShipName] = c
	}

	if byName["Newcomer"].Change != dtos.SnapshotNew {
		t.Errorf("Expected Newcomer new, got %s", byName["Newcomer"].Change)
	}
	if byName["Departed"].Change != dtos.SnapshotRemoved {
		t.Errorf("Expected Departed removed, got %s", byName["Departed"].Change)
	}
	if byName["Steady"].Change != dtos.SnapshotUnchanged {
		t.Errorf("Expected Steady unchanged, got %s", byName["Steady"].Change)
	}

	shifted := byName["Shifted"]
	if shifted.Change != dtos.SnapshotModified {
		t.Fatalf("Expected Shifted modified, got %s", shifted.Change)
	}
	if len(shifted.ChangedFields) != 1 || shifted.ChangedFields[0] != "port" {
		t.Errorf("Expected exactly [port] changed, got %v", shifted.ChangedFields)
	}
}

func TestSnapshotDiff_MatchesNamesCaseInsensitively(t *testing.T) {
	current := []gormModels.FeedShip{feedShip("EVERGREEN", withPort("North"))}
	previous := []gormModels.FeedShip{feedShip("Evergreen", withPort("North"))}

	changes := SnapshotDiff(current, previous)
	if len(changes) != 1 {
		t.Fatalf("Expected one entry, got %d", len(changes))
	}
	if changes[0].Change != dtos.SnapshotModified {
		t.Fatalf("Expected modified, got %s", changes[0].Change)
	}
	if len(changes[0].ChangedFields) != 1 || changes[0].ChangedFields[0] != "name" {
		t.Errorf("Expected casing flagged as a name change, got %v", changes[0].ChangedFields)
	}
}

func TestSnapshotDiff_ETAFormattingDriftIsNotAChange(t *testing.T) {
	current := []gormModels.FeedShip{feedShip("Karim", withETA("2026-01-03T10:00:00Z"))}
	previous := []gormModels.FeedShip{feedShip("Karim", withETA("2026-01-03T10:00"))}

	changes := SnapshotDiff(current, previous)
	if changes[0].Change != dtos.SnapshotUnchanged {
		t.Errorf("Expected formatting drift ignored, got %s with %v",
			changes[0].Change, changes[0].ChangedFields)
	}
}
