package dosing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

func mix(t *testing.T, id entities.BatchID, name string, perVialMcg map[entities.IngredientID]string, vials int64) *entities.MixBatch {
	t.Helper()
	composition := make(map[entities.IngredientID]decimal.Decimal, len(perVialMcg))
	for ingredientID, mass := range perVialMcg {
		composition[ingredientID] = decimal.RequireFromString(mass)
	}
	batch, err := entities.NewMixBatch(id, name, composition, vials)
	if err != nil {
		t.Fatalf("Expected valid batch creation to succeed: %v", err)
	}
	return batch
}

func TestMatchRequirement_CompleteMixCoversBothIngredients(t *testing.T) {
	// Two ingredients at 5000 mcg per administration; one mix with
	// 5 vials at 5 mg/vial of each: 5 supported administrations and
	// 25 mg available per ingredient.
	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	requirement := Requirement{
		1: decimal.NewFromInt(5000),
		2: decimal.NewFromInt(5000),
	}
	batch := mix(t, 10, "Mix BPC+TB", map[entities.IngredientID]string{1: "5000", 2: "5000"}, 5)

	report := MatchRequirement(requirement, nil, []*entities.MixBatch{batch}, asOf)

	for _, ingredientID := range []entities.IngredientID{1, 2} {
		coverage := report.PerIngredient[ingredientID]
		if !coverage.AvailableMcg.Equal(decimal.NewFromInt(25000)) {
			t.Errorf("Ingredient %d: expected 25000 mcg available, got %s", ingredientID, coverage.AvailableMcg)
		}
		if !coverage.ShortfallMcg.IsZero() {
			t.Errorf("Ingredient %d: expected zero shortfall, got %s", ingredientID, coverage.ShortfallMcg)
		}
	}

	if len(report.Mixes) != 1 {
		t.Fatalf("Expected one mix coverage entry, got %d", len(report.Mixes))
	}
	if report.Mixes[0].SupportedAdministrations != 5 {
		t.Errorf("Expected 5 supported administrations, got %d", report.Mixes[0].SupportedAdministrations)
	}
	if !report.Covered() {
		t.Error("Expected requirement to be covered")
	}
}

func TestMatchRequirement_ProratesPreparationsAndSumsMixes(t *testing.T) {
	// Mix: 10 mg/vial of ingredient 1 and 2 mg/vial of ingredient 2,
	// 3 vials. Preparation: 5 mg of ingredient 1 in 10 ml, 2 ml left.
	// Ingredient 1: 30 mg + 1 mg; ingredient 2: 6 mg.
	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	requirement := Requirement{
		1: decimal.NewFromInt(2000),
		2: decimal.NewFromInt(1000),
	}
	batch := mix(t, 20, "Mix A+B", map[entities.IngredientID]string{1: "10000", 2: "2000"}, 3)

	prep, err := entities.NewPreparation(
		1, 30,
		map[entities.IngredientID]decimal.Decimal{1: decimal.NewFromInt(5000)},
		decimal.NewFromInt(10),
		decimal.NewFromInt(2),
		nil,
	)
	if err != nil {
		t.Fatalf("Expected valid preparation creation to succeed: %v", err)
	}

	report := MatchRequirement(requirement, []*entities.Preparation{prep}, []*entities.MixBatch{batch}, asOf)

	if !report.PerIngredient[1].AvailableMcg.Equal(decimal.NewFromInt(31000)) {
		t.Errorf("Expected 31000 mcg of ingredient 1, got %s", report.PerIngredient[1].AvailableMcg)
	}
	if !report.PerIngredient[2].AvailableMcg.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("Expected 6000 mcg of ingredient 2, got %s", report.PerIngredient[2].AvailableMcg)
	}

	// min(floor(30000/2000), floor(6000/1000)) = min(15, 6) = 6
	if len(report.Mixes) != 1 || report.Mixes[0].SupportedAdministrations != 6 {
		t.Errorf("Expected 6 supported administrations, got %+v", report.Mixes)
	}
}

func TestMatchRequirement_PartialMixGetsNoFeasibilityCount(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	requirement := Requirement{
		1: decimal.NewFromInt(1000),
		2: decimal.NewFromInt(1000),
	}
	// Supplies only ingredient 1.
	partial := mix(t, 7, "Solo A", map[entities.IngredientID]string{1: "5000"}, 2)

	report := MatchRequirement(requirement, nil, []*entities.MixBatch{partial}, asOf)

	if len(report.Mixes) != 0 {
		t.Errorf("Expected no standalone feasibility count for a partial mix, got %+v", report.Mixes)
	}
	// The partial mix still contributes to the aggregate.
	if !report.PerIngredient[1].AvailableMcg.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected 10000 mcg of ingredient 1, got %s", report.PerIngredient[1].AvailableMcg)
	}
	if !report.PerIngredient[2].ShortfallMcg.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected full shortfall for ingredient 2, got %s", report.PerIngredient[2].ShortfallMcg)
	}
	if report.Covered() {
		t.Error("Expected requirement not to be covered")
	}
}

func TestMatchRequirement_ExpiredPreparationsExcluded(t *testing.T) {
	asOf := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	prep, err := entities.NewPreparation(
		1, 1,
		map[entities.IngredientID]decimal.Decimal{1: decimal.NewFromInt(5000)},
		decimal.NewFromInt(2),
		decimal.NewFromInt(2),
		&expiry,
	)
	if err != nil {
		t.Fatalf("Expected valid preparation creation to succeed: %v", err)
	}

	requirement := Requirement{1: decimal.NewFromInt(1000)}
	report := MatchRequirement(requirement, []*entities.Preparation{prep}, nil, asOf)

	if !report.PerIngredient[1].AvailableMcg.IsZero() {
		t.Errorf("Expected expired preparation excluded, got %s available", report.PerIngredient[1].AvailableMcg)
	}
	if !report.PerIngredient[1].ShortfallMcg.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected 1000 mcg shortfall, got %s", report.PerIngredient[1].ShortfallMcg)
	}
}

func TestMatchRequirement_IsIdempotent(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	requirement := Requirement{1: decimal.NewFromInt(4000)}
	batch := mix(t, 3, "Mix", map[entities.IngredientID]string{1: "5000"}, 2)

	prep, err := entities.NewPreparation(
		1, 1,
		map[entities.IngredientID]decimal.Decimal{1: decimal.NewFromInt(5000)},
		decimal.NewFromInt(2),
		decimal.NewFromInt(1),
		nil,
	)
	if err != nil {
		t.Fatalf("Expected valid preparation creation to succeed: %v", err)
	}

	first := MatchRequirement(requirement, []*entities.Preparation{prep}, []*entities.MixBatch{batch}, asOf)
	second := MatchRequirement(requirement, []*entities.Preparation{prep}, []*entities.MixBatch{batch}, asOf)

	if !first.PerIngredient[1].AvailableMcg.Equal(second.PerIngredient[1].AvailableMcg) ||
		!first.PerIngredient[1].ShortfallMcg.Equal(second.PerIngredient[1].ShortfallMcg) {
		t.Error("Expected identical reports from repeated matching without draws")
	}
	if len(first.Mixes) != len(second.Mixes) ||
		first.Mixes[0].SupportedAdministrations != second.Mixes[0].SupportedAdministrations {
		t.Error("Expected identical mix coverage from repeated matching")
	}
}
