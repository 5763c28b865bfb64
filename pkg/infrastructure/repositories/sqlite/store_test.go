package sqlite

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testPrep(t *testing.T, id entities.PreparationID, volumeML string, expiry *time.Time) *entities.Preparation {
	t.Helper()
	volume, err := decimal.NewFromString(volumeML)
	if err != nil {
		t.Fatalf("bad volume %q: %v", volumeML, err)
	}
	prep, err := entities.NewPreparation(
		id, 1,
		map[entities.IngredientID]decimal.Decimal{1: decimal.NewFromInt(5000)},
		volume, volume, expiry,
	)
	if err != nil {
		t.Fatalf("Failed to create preparation: %v", err)
	}
	return prep
}

func dateOf(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestStore_PreparationRoundTrip(t *testing.T) {
	store := newTestStore(t)

	prep := testPrep(t, 1, "3", dateOf(2025, 4, 1))
	if err := prep.RecordWastage(decimal.NewFromFloat(0.4), entities.WastageSpillage, "knocked over"); err != nil {
		t.Fatalf("Failed to record wastage: %v", err)
	}
	if err := store.Save(prep); err != nil {
		t.Fatalf("Failed to save preparation: %v", err)
	}

	loaded, err := store.GetPreparation(1)
	if err != nil {
		t.Fatalf("Failed to load preparation: %v", err)
	}
	if !loaded.VolumeRemaining.Equal(decimal.NewFromFloat(2.6)) {
		t.Errorf("Expected remaining volume 2.6, got %s", loaded.VolumeRemaining)
	}
	if loaded.Status != entities.StatusActive {
		t.Errorf("Expected active status, got %s", loaded.Status)
	}
	if loaded.ExpiryDate == nil || !loaded.ExpiryDate.Equal(*dateOf(2025, 4, 1)) {
		t.Errorf("Expected expiry 2025-04-01, got %v", loaded.ExpiryDate)
	}
	if loaded.Wastage == nil {
		t.Fatal("Expected wastage record to survive the round trip")
	}
	if !loaded.Wastage.VolumeML.Equal(decimal.NewFromFloat(0.4)) {
		t.Errorf("Expected wastage 0.4 ml, got %s", loaded.Wastage.VolumeML)
	}
	if loaded.Wastage.Reason != entities.WastageSpillage {
		t.Errorf("Expected spillage reason, got %s", loaded.Wastage.Reason)
	}
	// Concentration is re-derived from composition and total volume.
	conc := loaded.Concentration[1]
	if !conc.Equal(decimal.NewFromInt(5000).Div(decimal.NewFromInt(3))) {
		t.Errorf("Expected concentration 5000/3 mcg/ml, got %s", conc)
	}
}

func TestStore_GetActivePreparationsFiltersExpiryAtReadTime(t *testing.T) {
	store := newTestStore(t)

	err := store.LoadPreparations([]*entities.Preparation{
		testPrep(t, 1, "3", dateOf(2025, 3, 10)), // usable through its expiry date
		testPrep(t, 2, "3", dateOf(2025, 3, 9)),
		testPrep(t, 3, "3", nil),
	})
	if err != nil {
		t.Fatalf("Failed to load preparations: %v", err)
	}

	active, err := store.GetActivePreparations(time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Failed to get active preparations: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("Expected 2 active preparations, got %d", len(active))
	}
	if active[0].ID != 1 || active[1].ID != 3 {
		t.Errorf("Expected preparations [1 3], got [%d %d]", active[0].ID, active[1].ID)
	}
}

func TestStore_CycleRoundTrip(t *testing.T) {
	store := newTestStore(t)

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	cycle, err := entities.NewCycle(1, "Morning stack", entities.CycleActive, start, dateOf(2025, 3, 31), 2)
	if err != nil {
		t.Fatalf("Failed to create cycle: %v", err)
	}
	cycle.DurationWeeks = 12
	cycle.Weekdays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	cycle.Ramp = []entities.RampStep{
		{Week: 1, Percent: decimal.NewFromInt(50)},
		{Week: 3, Percent: decimal.NewFromInt(100)},
	}
	cycle.Requirement = map[entities.IngredientID]decimal.Decimal{
		1: decimal.NewFromInt(250),
		2: decimal.NewFromInt(500),
	}

	if err := store.SaveCycle(cycle); err != nil {
		t.Fatalf("Failed to save cycle: %v", err)
	}

	loaded, err := store.GetCycle(1)
	if err != nil {
		t.Fatalf("Failed to load cycle: %v", err)
	}
	if loaded.Name != "Morning stack" || loaded.Status != entities.CycleActive {
		t.Errorf("Unexpected cycle header: %q %s", loaded.Name, loaded.Status)
	}
	if loaded.DailyFrequency != 2 || loaded.DurationWeeks != 12 {
		t.Errorf("Expected frequency 2 and 12 weeks, got %d and %d", loaded.DailyFrequency, loaded.DurationWeeks)
	}
	if len(loaded.Weekdays) != 3 || loaded.Weekdays[1] != time.Wednesday {
		t.Errorf("Expected weekday set to survive, got %v", loaded.Weekdays)
	}
	if len(loaded.Ramp) != 2 || loaded.Ramp[1].Week != 3 {
		t.Errorf("Expected ramp schedule to survive, got %v", loaded.Ramp)
	}
	if !loaded.Requirement[2].Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected requirement for ingredient 2 to be 500, got %s", loaded.Requirement[2])
	}
}

func TestStore_CompleteEnded(t *testing.T) {
	store := newTestStore(t)
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	ended, err := entities.NewCycle(1, "Ended", entities.CycleActive, start, dateOf(2025, 2, 2), 1)
	if err != nil {
		t.Fatalf("Failed to create cycle: %v", err)
	}
	open, err := entities.NewCycle(2, "Open", entities.CycleActive, start, nil, 1)
	if err != nil {
		t.Fatalf("Failed to create cycle: %v", err)
	}
	if err := store.LoadCycles([]*entities.Cycle{ended, open}); err != nil {
		t.Fatalf("Failed to load cycles: %v", err)
	}

	completed, err := store.CompleteEnded(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Failed to complete ended cycles: %v", err)
	}
	if completed != 1 {
		t.Errorf("Expected 1 cycle completed, got %d", completed)
	}

	loaded, err := store.GetCycle(1)
	if err != nil {
		t.Fatalf("Failed to load cycle: %v", err)
	}
	if loaded.Status != entities.CycleCompleted {
		t.Errorf("Expected completed status, got %s", loaded.Status)
	}
}

func TestStore_CommitDrawPersistsVolumesAndRecordsTogether(t *testing.T) {
	store := newTestStore(t)

	prep := testPrep(t, 1, "3", nil)
	if err := store.Save(prep); err != nil {
		t.Fatalf("Failed to save preparation: %v", err)
	}

	// Apply the draw in memory, then persist the paired intent.
	if _, err := prep.Draw(decimal.NewFromFloat(0.5)); err != nil {
		t.Fatalf("Failed to draw: %v", err)
	}
	cycleID := entities.CycleID(7)
	admin, err := entities.NewAdministration(
		uuid.New(), &cycleID, 1, decimal.NewFromFloat(0.5),
		time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), "morning dose")
	if err != nil {
		t.Fatalf("Failed to create administration: %v", err)
	}

	err = store.CommitDraw([]*entities.Preparation{prep}, []*entities.Administration{admin})
	if err != nil {
		t.Fatalf("Failed to commit draw: %v", err)
	}

	loaded, err := store.GetPreparation(1)
	if err != nil {
		t.Fatalf("Failed to load preparation: %v", err)
	}
	if !loaded.VolumeRemaining.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("Expected remaining volume 2.5, got %s", loaded.VolumeRemaining)
	}

	admins, err := store.GetByCycle(cycleID)
	if err != nil {
		t.Fatalf("Failed to load administrations: %v", err)
	}
	if len(admins) != 1 || !admins[0].VolumeML.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("Expected one 0.5 ml administration, got %v", admins)
	}
}

func TestStore_CommitDrawRollsBackOnConflict(t *testing.T) {
	store := newTestStore(t)

	prep := testPrep(t, 1, "3", nil)
	if err := store.Save(prep); err != nil {
		t.Fatalf("Failed to save preparation: %v", err)
	}

	admin, err := entities.NewAdministration(
		uuid.New(), nil, 1, decimal.NewFromFloat(0.5),
		time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("Failed to create administration: %v", err)
	}

	if _, err := prep.Draw(decimal.NewFromFloat(0.5)); err != nil {
		t.Fatalf("Failed to draw: %v", err)
	}
	err = store.CommitDraw([]*entities.Preparation{prep}, []*entities.Administration{admin})
	if err != nil {
		t.Fatalf("Failed to commit first draw: %v", err)
	}

	// Re-committing the same administration hits the primary key; the
	// second volume deduction must roll back with it.
	if _, err := prep.Draw(decimal.NewFromFloat(0.5)); err != nil {
		t.Fatalf("Failed to draw: %v", err)
	}
	err = store.CommitDraw([]*entities.Preparation{prep}, []*entities.Administration{admin})
	if err == nil {
		t.Fatal("Expected duplicate administration to fail the commit")
	}

	loaded, err := store.GetPreparation(1)
	if err != nil {
		t.Fatalf("Failed to load preparation: %v", err)
	}
	if !loaded.VolumeRemaining.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("Expected stored volume unchanged at 2.5 after rollback, got %s", loaded.VolumeRemaining)
	}
}
