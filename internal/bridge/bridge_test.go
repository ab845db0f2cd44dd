package bridge

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

	if err := db.AutoMigrate(&gormModels.Charge{}, &gormModels.Trip{}, &gormModels.Visit{}, &gormModels.SyncHistory{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func newTestBridge(db *gorm.DB) *Bridge {
	chargeRepo := repositories.NewChargeRepo(db, nil)
	tripRepo := repositories.NewTripRepo(db, nil)
	syncRepo := repositories.NewSyncHistoryRepo(db)
	return NewBridge(chargeRepo, tripRepo, syncRepo)
}

func chargeEvent(t *testing.T, charge *gormModels.Charge, kind common.ChangeKind) *common.ChangeEvent {
	after, err := json.Marshal(charge)
	if err != nil {
		t.Fatalf("Failed to marshal charge: %v", err)
	}
	return &common.ChangeEvent{
		Collection: constants.CollectionCharges,
		Kind:       kind,
		DocID:      charge.ID,
		After:      after,
		OccurredAt: time.Now(),
	}
}

func mustFields(t *testing.T, fields map[string]interface{}) []byte {
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Failed to marshal fields: %v", err)
	}
	return data
}

func TestHandleChargeChange_UpdatesMatchingVisitTrip(t *testing.T) {
	db := setupTestDB(t)
	b := newTestBridge(db)
	ctx := context.Background()

	visitID := "V1"
	trip := &gormModels.Trip{
		ID:       "trip-1",
		VisitID:  &visitID,
		TripType: constants.TripTypeIn,
	}
	db.Create(trip)

	charge := &gormModels.Charge{
		ID: "charge-1",
		Fields: mustFields(t, map[string]interface{}{
			"visitid":  "V1",
			"typeTrip": "Inward",
			"ship":     "MSC Oscar",
			"gt":       50000,
		}),
		CreatedBy: "legacy-clerk",
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	action, err := b.HandleChargeChange(ctx, chargeEvent(t, charge, common.ChangeCreated))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if action != ActionUpdated {
		t.Fatalf("Expected updated, got %s", action)
	}

	var got gormModels.Trip
	if err := db.First(&got, "id = ?", "trip-1").Error; err != nil {
		t.Fatalf("Trip not found: %v", err)
	}
	if !got.IsConfirmed {
		t.Error("Expected trip to be confirmed")
	}
	if got.ShipName != "MSC Oscar" {
		t.Errorf("Expected ship name MSC Oscar, got %s", got.ShipName)
	}
	if got.Tonnage != 50000 {
		t.Errorf("Expected tonnage 50000, got %d", got.Tonnage)
	}
	if got.ConfirmedBy == nil || *got.ConfirmedBy != "legacy-clerk" {
		t.Errorf("Expected confirming actor legacy-clerk, got %v", got.ConfirmedBy)
	}
	if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(charge.CreatedAt) {
		t.Errorf("Expected confirmation time to prefer charge creation time, got %v", got.ConfirmedAt)
	}
	if got.UpdatedBy != constants.WriterChargeBridge {
		t.Errorf("Expected bridge writer marker, got %s", got.UpdatedBy)
	}
}

func TestHandleChargeChange_FabricatesStandaloneTrip(t *testing.T) {
	db := setupTestDB(t)
	b := newTestBridge(db)
	ctx := context.Background()

	charge := &gormModels.Charge{
		ID: "charge-2",
		Fields: mustFields(t, map[string]interface{}{
			"ship":     "Atlantic Star",
			"boarding": "2024-03-01T10:00:00Z",
			"type":     "Out",
		}),
		CreatedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	action, err := b.HandleChargeChange(ctx, chargeEvent(t, charge, common.ChangeCreated))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if action != ActionCreated {
		t.Fatalf("Expected created, got %s", action)
	}

	var trips []gormModels.Trip
	db.Find(&trips)
	if len(trips) != 1 {
		t.Fatalf("Expected exactly one trip, got %d", len(trips))
	}

	got := trips[0]
	if got.TripType != constants.TripTypeOut {
		t.Errorf("Expected type Out, got %s", got.TripType)
	}
	if !got.IsConfirmed {
		t.Error("Expected fabricated trip to be confirmed")
	}
	if got.VisitID != nil {
		t.Errorf("Expected standalone trip without visit, got %v", *got.VisitID)
	}
	if got.Boarding == nil || got.Boarding.UTC().Format(time.RFC3339) != "2024-03-01T10:00:00Z" {
		t.Errorf("Expected boarding from resolved date, got %v", got.Boarding)
	}
	if got.ConfirmedAt == nil || got.ConfirmedAt.UTC().Format(time.RFC3339) != "2024-03-01T10:00:00Z" {
		t.Errorf("Expected confirmation time to carry the resolved date, got %v", got.ConfirmedAt)
	}
	if got.Source != constants.SourceBridge {
		t.Errorf("Expected bridge source tag, got %s", got.Source)
	}
}

func TestHandleChargeChange_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	b := newTestBridge(db)
	ctx := context.Background()

	charge := &gormModels.Charge{
		ID: "charge-3",
		Fields: mustFields(t, map[string]interface{}{
			"ship":     "Evergreen",
			"boarding": "2024-03-01T10:00:00Z",
			"type":     "In",
			"gt":       30000,
		}),
	}

	ev := chargeEvent(t, charge, common.ChangeCreated)
	if _, err := b.HandleChargeChange(ctx, ev); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	action, err := b.HandleChargeChange(ctx, ev)
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if action != ActionUpdated {
		t.Errorf("Expected reapply to update, got %s", action)
	}

	var count int64
	db.Model(&gormModels.Trip{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly one trip after reapply, got %d", count)
	}
}

func TestHandleChargeChange_IgnoresDeletes(t *testing.T) {
	db := setupTestDB(t)
	b := newTestBridge(db)
	ctx := context.Background()

	ev := &common.ChangeEvent{
		Collection: constants.CollectionCharges,
		Kind:       common.ChangeDeleted,
		DocID:      "charge-gone",
		OccurredAt: time.Now(),
	}

	action, err := b.HandleChargeChange(ctx, ev)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if action != ActionSkipped {
		t.Errorf("Expected skipped, got %s", action)
	}

	var count int64
	db.Model(&gormModels.Trip{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no trips from a delete, got %d", count)
	}
}

func TestBackfill_CountsAndIsolatesFailures(t *testing.T) {
	db := setupTestDB(t)
	b := newTestBridge(db)
	ctx := context.Background()

	visitID := "V9"
	db.Create(&gormModels.Trip{
		ID:       "trip-9",
		VisitID:  &visitID,
		TripType: constants.TripTypeIn,
	})

	cutoff := time.Now().Add(-time.Hour)
	db.Create(&gormModels.Charge{
		ID: "bf-1",
		Fields: mustFields(t, map[string]interface{}{
			"visitid":  "V9",
			"typeTrip": "In",
			"ship":     "Karim",
		}),
	})
	db.Create(&gormModels.Charge{
		ID: "bf-2",
		Fields: mustFields(t, map[string]interface{}{
			"ship":     "Atlantic Star",
			"boarding": "2024-05-05T10:00:00Z",
			"type":     "Out",
		}),
	})
	// Malformed payload must not halt the run.
	db.Create(&gormModels.Charge{
		ID:     "bf-bad",
		Fields: []byte("{not json"),
	})

	result, err := b.Backfill(ctx, cutoff)
	if err != nil {
		t.Fatalf("Backfill failed: %v", err)
	}

	if result.Processed != 3 {
		t.Errorf("Expected 3 processed, got %d", result.Processed)
	}
	if result.Updated != 1 {
		t.Errorf("Expected 1 updated, got %d", result.Updated)
	}
	if result.Created != 1 {
		t.Errorf("Expected 1 created, got %d", result.Created)
	}
	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", result.Failed)
	}
}
