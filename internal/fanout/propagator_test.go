package fanout

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	gormModels "tidewater/harbormaster/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&gormModels.Ship{}, &gormModels.Visit{}, &gormModels.Trip{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

// recordingPublisher captures published change events for assertions.
type recordingPublisher struct {
	events []*common.ChangeEvent
}

func (p *recordingPublisher) PublishChange(_ context.Context, ev *common.ChangeEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) PublishChangeBatch(_ context.Context, evs []*common.ChangeEvent) error {
	p.events = append(p.events, evs...)
	return nil
}

func newTestPropagator(db *gorm.DB, pub common.ChangePublisher) *Propagator {
	visitRepo := repositories.NewVisitRepo(db, nil)
	tripRepo := repositories.NewTripRepo(db, nil)
	return NewPropagator(visitRepo, tripRepo, pub)
}

func shipChangeEvent(t *testing.T, before, after *gormModels.Ship) *common.ChangeEvent {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		t.Fatalf("Failed to marshal before-state: %v", err)
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		t.Fatalf("Failed to marshal after-state: %v", err)
	}
	return &common.ChangeEvent{
		Collection: constants.CollectionShips,
		Kind:       common.ChangeUpdated,
		DocID:      after.ID,
		Before:     beforeJSON,
		After:      afterJSON,
		OccurredAt: time.Now(),
	}
}

func TestChunk(t *testing.T) {
	if got := Chunk([]int{}, 3); got != nil {
		t.Errorf("Expected nil for empty input, got %v", got)
	}
	if got := Chunk([]int{1, 2}, 0); got != nil {
		t.Errorf("Expected nil for zero size, got %v", got)
	}

	got := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(got) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(got))
	}
	if len(got[0]) != 2 || len(got[1]) != 2 || len(got[2]) != 1 {
		t.Errorf("Unexpected chunk sizes: %v", got)
	}

	got = Chunk([]int{1, 2, 3}, 3)
	if len(got) != 1 || len(got[0]) != 3 {
		t.Errorf("Expected a single full chunk, got %v", got)
	}
}

func TestHandleShipChange_NoopWhenNameAndTonnageUnchanged(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordingPublisher{}
	p := newTestPropagator(db, pub)

	db.Create(&gormModels.Visit{
		ID:       "v-1",
		ShipID:   "ship-1",
		ShipName: "Evergreen",
		Status:   constants.VisitStatusDue,
	})

	notes := "berth preference updated"
	before := &gormModels.Ship{ID: "ship-1", Name: "Evergreen", Tonnage: 30000}
	after := &gormModels.Ship{ID: "ship-1", Name: "Evergreen", Tonnage: 30000, Notes: &notes}

	updated, err := p.HandleShipChange(context.Background(), shipChangeEvent(t, before, after))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated != 0 {
		t.Errorf("Expected zero dependent writes, got %d", updated)
	}
	if len(pub.events) != 0 {
		t.Errorf("Expected no published events, got %d", len(pub.events))
	}

	var v gormModels.Visit
	db.First(&v, "id = ?", "v-1")
	if v.UpdatedBy != "" {
		t.Errorf("Expected visit untouched, got updated_by %q", v.UpdatedBy)
	}
}

func TestHandleShipChange_IgnoresCreates(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPropagator(db, nil)

	ship := &gormModels.Ship{ID: "ship-1", Name: "Evergreen", Tonnage: 30000}
	afterJSON, _ := json.Marshal(ship)
	ev := &common.ChangeEvent{
		Collection: constants.CollectionShips,
		Kind:       common.ChangeCreated,
		DocID:      ship.ID,
		After:      afterJSON,
		OccurredAt: time.Now(),
	}

	updated, err := p.HandleShipChange(context.Background(), ev)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated != 0 {
		t.Errorf("Expected no writes for a create, got %d", updated)
	}
}

func TestHandleShipChange_ScopesDependents(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPropagator(db, nil)
	now := time.Now().UTC()

	oldETA := now.Add(-61 * 24 * time.Hour)
	ancientETA := now.Add(-400 * 24 * time.Hour)
	recentETA := now.Add(-10 * 24 * time.Hour)

	// Sailed long ago: outside the window, inactive, must stay frozen.
	db.Create(&gormModels.Visit{
		ID: "v-old-sailed", ShipID: "ship-1",
		ShipName: "Old Name", ShipNameLower: "old name",
		Status: constants.VisitStatusSailed, ETA: &oldETA,
	})
	// Still alongside after 400 days: active status keeps it dependent.
	db.Create(&gormModels.Visit{
		ID: "v-ancient-alongside", ShipID: "ship-1",
		ShipName: "Old Name", ShipNameLower: "old name",
		Status: constants.VisitStatusAlongside, ETA: &ancientETA,
	})
	// Sailed recently: inactive but inside the window.
	db.Create(&gormModels.Visit{
		ID: "v-recent-sailed", ShipID: "ship-1",
		ShipName: "Old Name", ShipNameLower: "old name",
		Status: constants.VisitStatusSailed, ETA: &recentETA,
	})
	// Cancelled with a future ETA: neither active nor inside the window.
	futureETA := now.Add(7 * 24 * time.Hour)
	db.Create(&gormModels.Visit{
		ID: "v-cancelled-future", ShipID: "ship-1",
		ShipName: "Old Name", ShipNameLower: "old name",
		Status: constants.VisitStatusCancelled, ETA: &futureETA,
	})
	// Another ship entirely.
	db.Create(&gormModels.Visit{
		ID: "v-other-ship", ShipID: "ship-2",
		ShipName: "Bystander", ShipNameLower: "bystander",
		Status: constants.VisitStatusDue, ETA: &recentETA,
	})

	oldBoarding := now.Add(-90 * 24 * time.Hour)
	recentBoarding := now.Add(-5 * 24 * time.Hour)
	db.Create(&gormModels.Trip{
		ID: "t-old", ShipID: strPtr("ship-1"), ShipName: "Old Name",
		TripType: constants.TripTypeIn, Boarding: &oldBoarding,
	})
	db.Create(&gormModels.Trip{
		ID: "t-recent", ShipID: strPtr("ship-1"), ShipName: "Old Name",
		TripType: constants.TripTypeOut, Boarding: &recentBoarding,
	})
	db.Create(&gormModels.Trip{
		ID: "t-unboarded", ShipID: strPtr("ship-1"), ShipName: "Old Name",
		TripType: constants.TripTypeIn,
	})

	before := &gormModels.Ship{ID: "ship-1", Name: "Old Name", Tonnage: 30000}
	after := &gormModels.Ship{ID: "ship-1", Name: "New Name", Tonnage: 30000}

	updated, err := p.HandleShipChange(context.Background(), shipChangeEvent(t, before, after))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated != 3 {
		t.Errorf("Expected 3 dependent writes, got %d", updated)
	}

	assertVisitName := func(id, want string) {
		t.Helper()
		var v gormModels.Visit
		db.First(&v, "id = ?", id)
		if v.ShipName != want {
			t.Errorf("Visit %s: expected name %q, got %q", id, want, v.ShipName)
		}
	}
	assertVisitName("v-old-sailed", "Old Name")
	assertVisitName("v-ancient-alongside", "New Name")
	assertVisitName("v-recent-sailed", "New Name")
	assertVisitName("v-cancelled-future", "Old Name")
	assertVisitName("v-other-ship", "Bystander")

	var v gormModels.Visit
	db.First(&v, "id = ?", "v-ancient-alongside")
	if v.ShipNameLower != "new name" {
		t.Errorf("Expected lowercase companion to follow, got %q", v.ShipNameLower)
	}
	if v.UpdatedBy != constants.WriterShipFanout {
		t.Errorf("Expected fan-out writer marker, got %q", v.UpdatedBy)
	}

	assertTripName := func(id, want string) {
		t.Helper()
		var tr gormModels.Trip
		db.First(&tr, "id = ?", id)
		if tr.ShipName != want {
			t.Errorf("Trip %s: expected name %q, got %q", id, want, tr.ShipName)
		}
	}
	assertTripName("t-old", "Old Name")
	assertTripName("t-recent", "New Name")
	assertTripName("t-unboarded", "Old Name")
}

func TestHandleShipChange_TonnageChangeUpdatesOnlyActiveVisit(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordingPublisher{}
	p := newTestPropagator(db, pub)
	now := time.Now().UTC()

	dueETA := now.Add(24 * time.Hour)
	sailedETA := now.Add(-90 * 24 * time.Hour)

	db.Create(&gormModels.Visit{
		ID: "v-due", ShipID: "ship-ev",
		ShipName: "Evergreen", ShipNameLower: "evergreen",
		Tonnage: 30000, Status: constants.VisitStatusDue, ETA: &dueETA,
	})
	db.Create(&gormModels.Visit{
		ID: "v-sailed", ShipID: "ship-ev",
		ShipName: "Evergreen", ShipNameLower: "evergreen",
		Tonnage: 30000, Status: constants.VisitStatusSailed, ETA: &sailedETA,
	})

	before := &gormModels.Ship{ID: "ship-ev", Name: "Evergreen", Tonnage: 30000}
	after := &gormModels.Ship{ID: "ship-ev", Name: "Evergreen", Tonnage: 32000}

	updated, err := p.HandleShipChange(context.Background(), shipChangeEvent(t, before, after))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated != 1 {
		t.Errorf("Expected exactly one dependent write, got %d", updated)
	}

	var due, sailed gormModels.Visit
	db.First(&due, "id = ?", "v-due")
	db.First(&sailed, "id = ?", "v-sailed")

	if due.Tonnage != 32000 {
		t.Errorf("Expected active visit tonnage 32000, got %d", due.Tonnage)
	}
	if due.ShipName != "Evergreen" {
		t.Errorf("Expected name untouched, got %q", due.ShipName)
	}
	if sailed.Tonnage != 30000 {
		t.Errorf("Expected historical visit frozen at 30000, got %d", sailed.Tonnage)
	}

	// One audit pair for the one touched document.
	if len(pub.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Collection != constants.CollectionVisits || ev.DocID != "v-due" {
		t.Errorf("Unexpected event target: %s/%s", ev.Collection, ev.DocID)
	}
	var afterDoc gormModels.Visit
	if err := json.Unmarshal(ev.After, &afterDoc); err != nil {
		t.Fatalf("Failed to decode after snapshot: %v", err)
	}
	if afterDoc.Tonnage != 32000 {
		t.Errorf("Expected after snapshot tonnage 32000, got %d", afterDoc.Tonnage)
	}
}

func strPtr(s string) *string { return &s }
