package matching

import (
	"testing"
	"time"

	"tidewater/harbormaster/internal/constants"
)

func TestNormalizeTripType_Variants(t *testing.T) {
	cases := map[string]constants.TripType{
		"In":         constants.TripTypeIn,
		"INWARD":     constants.TripTypeIn,
		"inward":     constants.TripTypeIn,
		"Out":        constants.TripTypeOut,
		"Outward":    constants.TripTypeOut,
		"Shift":      constants.TripTypeShift,
		"shift berth": constants.TripTypeShift,
		"Anchorage":  constants.TripTypeAnchorage,
		"to anchor":  constants.TripTypeAnchorage,
		"Survey":     constants.TripTypeOther,
		"":           constants.TripTypeOther,
	}

	for raw, want := range cases {
		if got := NormalizeTripType(raw); got != want {
			t.Errorf("NormalizeTripType(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeTripType_Idempotent(t *testing.T) {
	for _, tt := range []constants.TripType{
		constants.TripTypeIn,
		constants.TripTypeOut,
		constants.TripTypeShift,
		constants.TripTypeAnchorage,
		constants.TripTypeOther,
	} {
		if got := NormalizeTripType(string(tt)); got != tt {
			t.Errorf("NormalizeTripType(%q) = %q, expected normalization to be idempotent", tt, got)
		}
	}
}

func TestParseFlexibleTime_Layouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	got := ParseFlexibleTime("2024-03-01T10:00:00Z")
	if got == nil || !got.Equal(want) {
		t.Errorf("RFC3339 parse = %v, want %v", got, want)
	}

	got = ParseFlexibleTime("2024-03-01T10:00")
	if got == nil || !got.Equal(want) {
		t.Errorf("minute-precision parse = %v, want %v", got, want)
	}

	got = ParseFlexibleTime(float64(want.UnixMilli()))
	if got == nil || !got.Equal(want) {
		t.Errorf("epoch millis parse = %v, want %v", got, want)
	}

	if got := ParseFlexibleTime("not a date"); got != nil {
		t.Errorf("expected nil for unparseable string, got %v", got)
	}

	if got := ParseFlexibleTime(nil); got != nil {
		t.Errorf("expected nil for nil input, got %v", got)
	}
}

func TestNormalizeCharge_Aliases(t *testing.T) {
	fields := map[string]interface{}{
		"visitid":  "V1",
		"ship":     "MSC Oscar",
		"typeTrip": "Inward",
		"gt":       float64(50000),
		"boarding": "2024-03-01T10:00:00Z",
	}

	c := NormalizeCharge("c1", fields, "legacy-user", nil)

	if c.VisitID != "V1" {
		t.Errorf("VisitID = %q, want V1", c.VisitID)
	}
	if c.ShipName != "MSC Oscar" {
		t.Errorf("ShipName = %q, want MSC Oscar", c.ShipName)
	}
	if c.TripType != constants.TripTypeIn {
		t.Errorf("TripType = %q, want In", c.TripType)
	}
	if c.Tonnage == nil || *c.Tonnage != 50000 {
		t.Errorf("Tonnage = %v, want 50000", c.Tonnage)
	}
	if c.Date == nil {
		t.Fatal("expected resolved date")
	}
}

func TestNormalizeCharge_DateFallback(t *testing.T) {
	fields := map[string]interface{}{
		"ship": "Atlantic Star",
		"type": "Out",
		"date": "2024-03-01",
	}

	c := NormalizeCharge("c2", fields, "", nil)
	if c.Date == nil {
		t.Fatal("expected generic date field to resolve")
	}
	if c.Date.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("Date = %v, want 2024-03-01", c.Date)
	}
}

func TestNormalizeCharge_UnparseableDate(t *testing.T) {
	fields := map[string]interface{}{
		"ship":     "Atlantic Star",
		"type":     "Out",
		"boarding": "soon",
	}

	c := NormalizeCharge("c3", fields, "", nil)
	if c.Date != nil {
		t.Errorf("expected nil date for unparseable input, got %v", c.Date)
	}
}
