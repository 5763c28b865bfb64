package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testPreparation(t *testing.T, id PreparationID, totalML, remainingML string, expiry *time.Time) *Preparation {
	t.Helper()
	prep, err := NewPreparation(
		id,
		1,
		map[IngredientID]decimal.Decimal{1: decimal.RequireFromString("5000")},
		decimal.RequireFromString(totalML),
		decimal.RequireFromString(remainingML),
		expiry,
	)
	if err != nil {
		t.Fatalf("Expected valid preparation creation to succeed: %v", err)
	}
	return prep
}

func TestNewPreparation_DerivesConcentration(t *testing.T) {
	prep := testPreparation(t, 1, "2", "2", nil)

	// 5000 mcg in 2 ml = 2500 mcg/ml
	want := decimal.RequireFromString("2500")
	if !prep.Concentration[1].Equal(want) {
		t.Errorf("Expected concentration %s mcg/ml, got %s", want, prep.Concentration[1])
	}
}

func TestNewPreparation_Validation(t *testing.T) {
	composition := map[IngredientID]decimal.Decimal{1: decimal.RequireFromString("5000")}

	testCases := []struct {
		name        string
		id          PreparationID
		composition map[IngredientID]decimal.Decimal
		total       string
		remaining   string
		expectError string
	}{
		{"zero id", 0, composition, "2", "2", "preparation id must be positive, got 0"},
		{"empty composition", 1, nil, "2", "2", "preparation composition cannot be empty"},
		{"zero volume", 1, composition, "0", "0", "total volume must be positive, got 0"},
		{"negative remaining", 1, composition, "2", "-0.5", "remaining volume cannot be negative, got -0.5"},
		{"remaining above total", 1, composition, "2", "2.5", "remaining volume 2.5 exceeds total volume 2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPreparation(
				tc.id, 1, tc.composition,
				decimal.RequireFromString(tc.total),
				decimal.RequireFromString(tc.remaining),
				nil,
			)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestPreparation_DrawKeepsVolumeWithinBounds(t *testing.T) {
	prep := testPreparation(t, 1, "2", "2", nil)

	depleted, err := prep.Draw(decimal.RequireFromString("0.5"))
	if err != nil {
		t.Fatalf("Expected draw to succeed: %v", err)
	}
	if depleted {
		t.Error("Expected preparation to stay active after partial draw")
	}
	if !prep.VolumeRemaining.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("Expected 1.5 ml remaining, got %s", prep.VolumeRemaining)
	}

	if _, err := prep.Draw(decimal.RequireFromString("2")); err == nil {
		t.Error("Expected overdraw beyond remaining volume to fail")
	}
	if !prep.VolumeRemaining.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("Expected failed draw to leave volume untouched, got %s", prep.VolumeRemaining)
	}
}

func TestPreparation_DrawToZeroTransitionsToDepleted(t *testing.T) {
	prep := testPreparation(t, 1, "2", "1", nil)

	depleted, err := prep.Draw(decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Expected draw to succeed: %v", err)
	}
	if !depleted {
		t.Error("Expected draw to report depletion")
	}
	if prep.Status != StatusDepleted {
		t.Errorf("Expected status depleted, got %s", prep.Status)
	}

	if _, err := prep.Draw(decimal.NewFromInt(1)); err == nil {
		t.Error("Expected draw from depleted preparation to fail")
	}
}

func TestPreparation_MarkDepletedRecordsWastage(t *testing.T) {
	prep := testPreparation(t, 5, "2", "0.4", nil)

	if err := prep.MarkDepleted(WastageMeasurementError, "vial empty after 4 doses"); err != nil {
		t.Fatalf("Expected mark depleted to succeed: %v", err)
	}

	if prep.Status != StatusDepleted {
		t.Errorf("Expected status depleted, got %s", prep.Status)
	}
	if !prep.VolumeRemaining.IsZero() {
		t.Errorf("Expected remaining volume zeroed, got %s", prep.VolumeRemaining)
	}
	if prep.Wastage == nil {
		t.Fatal("Expected wastage record to be set")
	}
	if !prep.Wastage.VolumeML.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("Expected 0.4 ml wastage, got %s", prep.Wastage.VolumeML)
	}
	if prep.Wastage.Reason != WastageMeasurementError {
		t.Errorf("Expected measurement_error reason, got %s", prep.Wastage.Reason)
	}
}

func TestPreparation_TransitionsAreForwardOnly(t *testing.T) {
	prep := testPreparation(t, 1, "2", "1", nil)

	if err := prep.MarkDiscarded(WastageOther, ""); err != nil {
		t.Fatalf("Expected discard to succeed: %v", err)
	}
	if err := prep.MarkDepleted(WastageOther, ""); err == nil {
		t.Error("Expected transition out of discarded to fail")
	}
	if err := prep.MarkExpired(); err == nil {
		t.Error("Expected transition out of discarded to fail")
	}
}

func TestPreparation_RecordWastageAccumulates(t *testing.T) {
	prep := testPreparation(t, 1, "2", "2", nil)

	if err := prep.RecordWastage(decimal.RequireFromString("0.1"), WastageSpillage, "dripped"); err != nil {
		t.Fatalf("Expected wastage record to succeed: %v", err)
	}
	if err := prep.RecordWastage(decimal.RequireFromString("0.2"), WastageSpillage, ""); err != nil {
		t.Fatalf("Expected wastage record to succeed: %v", err)
	}

	if prep.Status != StatusActive {
		t.Errorf("Expected preparation to stay active, got %s", prep.Status)
	}
	if !prep.VolumeRemaining.Equal(decimal.RequireFromString("1.7")) {
		t.Errorf("Expected 1.7 ml remaining, got %s", prep.VolumeRemaining)
	}
	if !prep.Wastage.VolumeML.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("Expected 0.3 ml accumulated wastage, got %s", prep.Wastage.VolumeML)
	}
}

func TestPreparation_ExpiryIsReadTimeFilter(t *testing.T) {
	expiry := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	prep := testPreparation(t, 1, "2", "2", &expiry)

	// Persisted status still active, but expiry has passed.
	if prep.Status != StatusActive {
		t.Fatalf("Expected persisted status to stay active, got %s", prep.Status)
	}

	onExpiry := time.Date(2025, 1, 15, 13, 30, 0, 0, time.UTC)
	if prep.IsExpired(onExpiry) {
		t.Error("Expected preparation to be usable on its expiry date")
	}
	if !prep.AvailableOn(onExpiry) {
		t.Error("Expected preparation to be available on its expiry date")
	}

	dayAfter := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	if !prep.IsExpired(dayAfter) {
		t.Error("Expected preparation to be expired the day after its expiry date")
	}
	if prep.AvailableOn(dayAfter) {
		t.Error("Expected expired preparation to be unavailable")
	}
}

func TestPreparation_AvailableMassProration(t *testing.T) {
	// 5 mg diluted in 10 ml, 2 ml remaining: 5 mg * (2/10) = 1 mg = 1000 mcg
	prep, err := NewPreparation(
		1, 30,
		map[IngredientID]decimal.Decimal{1: decimal.RequireFromString("5000")},
		decimal.NewFromInt(10),
		decimal.NewFromInt(2),
		nil,
	)
	if err != nil {
		t.Fatalf("Expected valid preparation creation to succeed: %v", err)
	}

	want := decimal.RequireFromString("1000")
	if !prep.AvailableMass(1).Equal(want) {
		t.Errorf("Expected %s mcg available, got %s", want, prep.AvailableMass(1))
	}
	if !prep.AvailableMass(99).IsZero() {
		t.Errorf("Expected zero mass for absent ingredient, got %s", prep.AvailableMass(99))
	}
}
