package matching

import (
	"testing"
	"time"

	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/models/gorm"
)

func tp(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestFindMatchingTrip_StrategyA(t *testing.T) {
	charge := NormalizedCharge{
		ID:       "c1",
		VisitID:  "V1",
		ShipName: "MSC Oscar",
		TripType: constants.TripTypeIn,
	}

	visitTrips := []gorm.Trip{
		{ID: "t-out", TripType: constants.TripTypeOut},
		{ID: "t-in", TripType: constants.TripTypeIn},
	}

	got := FindMatchingTrip(charge, visitTrips, nil)
	if got == nil || got.ID != "t-in" {
		t.Fatalf("expected t-in, got %v", got)
	}
}

func TestFindMatchingTrip_StrategyA_FirstMatchWins(t *testing.T) {
	charge := NormalizedCharge{VisitID: "V1", TripType: constants.TripTypeIn}

	visitTrips := []gorm.Trip{
		{ID: "t-1", TripType: constants.TripTypeIn},
		{ID: "t-2", TripType: constants.TripTypeIn},
	}

	got := FindMatchingTrip(charge, visitTrips, nil)
	if got == nil || got.ID != "t-1" {
		t.Fatalf("expected first candidate t-1, got %v", got)
	}
}

func TestFindMatchingTrip_FallthroughToStrategyB(t *testing.T) {
	charge := NormalizedCharge{
		VisitID:  "V1",
		ShipName: "Atlantic Star",
		TripType: constants.TripTypeOut,
		Date:     tp("2024-03-01T10:00:00Z"),
	}

	// Visit has trips but none of the right type.
	visitTrips := []gorm.Trip{
		{ID: "t-shift", TripType: constants.TripTypeShift},
	}
	windowTrips := []gorm.Trip{
		{ID: "t-near", ShipName: "ATLANTIC STAR", Boarding: tp("2024-03-01T20:00:00Z")},
	}

	got := FindMatchingTrip(charge, visitTrips, windowTrips)
	if got == nil || got.ID != "t-near" {
		t.Fatalf("expected fallthrough to t-near, got %v", got)
	}
}

func TestFindMatchingTrip_StrategyB_WindowBounds(t *testing.T) {
	charge := NormalizedCharge{
		ShipName: "Atlantic Star",
		Date:     tp("2024-03-01T10:00:00Z"),
	}

	windowTrips := []gorm.Trip{
		{ID: "t-far", ShipName: "Atlantic Star", Boarding: tp("2024-03-03T10:00:00Z")},
		{ID: "t-null", ShipName: "Atlantic Star"},
		{ID: "t-ok", ShipName: "Atlantic Star", Boarding: tp("2024-03-02T09:00:00Z")},
	}

	got := FindMatchingTrip(charge, nil, windowTrips)
	if got == nil || got.ID != "t-ok" {
		t.Fatalf("expected t-ok inside the 24h window, got %v", got)
	}
}

func TestFindMatchingTrip_StrategyB_SubstringEitherDirection(t *testing.T) {
	charge := NormalizedCharge{
		ShipName: "Oscar",
		Date:     tp("2024-03-01T10:00:00Z"),
	}

	windowTrips := []gorm.Trip{
		{ID: "t-sub", ShipName: "MSC Oscar", Boarding: tp("2024-03-01T12:00:00Z")},
	}

	got := FindMatchingTrip(charge, nil, windowTrips)
	if got == nil || got.ID != "t-sub" {
		t.Fatalf("expected substring match, got %v", got)
	}
}

func TestFindMatchingTrip_NoDateDisablesStrategyB(t *testing.T) {
	charge := NormalizedCharge{
		ShipName: "Atlantic Star",
		TripType: constants.TripTypeOut,
	}

	windowTrips := []gorm.Trip{
		{ID: "t-1", ShipName: "Atlantic Star", Boarding: tp("2024-03-01T10:00:00Z")},
	}

	if got := FindMatchingTrip(charge, nil, windowTrips); got != nil {
		t.Fatalf("expected no match without a resolved date, got %v", got)
	}
}

func TestFindMatchingTrip_Deterministic(t *testing.T) {
	charge := NormalizedCharge{
		VisitID:  "V1",
		ShipName: "Evergreen",
		TripType: constants.TripTypeIn,
		Date:     tp("2024-03-01T10:00:00Z"),
	}
	visitTrips := []gorm.Trip{
		{ID: "t-a", TripType: constants.TripTypeIn},
		{ID: "t-b", TripType: constants.TripTypeIn},
	}
	windowTrips := []gorm.Trip{
		{ID: "t-c", ShipName: "Evergreen", Boarding: tp("2024-03-01T11:00:00Z")},
	}

	first := FindMatchingTrip(charge, visitTrips, windowTrips)
	for i := 0; i < 10; i++ {
		again := FindMatchingTrip(charge, visitTrips, windowTrips)
		if again == nil || first == nil || again.ID != first.ID {
			t.Fatalf("expected deterministic result, run %d got %v vs %v", i, again, first)
		}
	}
}
