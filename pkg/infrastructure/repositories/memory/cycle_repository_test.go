package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

func newCycle(t *testing.T, id entities.CycleID, status entities.CycleStatus, start time.Time, end *time.Time) *entities.Cycle {
	t.Helper()
	cycle, err := entities.NewCycle(id, "Test cycle", status, start, end, 1)
	if err != nil {
		t.Fatalf("Failed to create cycle: %v", err)
	}
	return cycle
}

func TestCycleRepository_GetActiveReturnsOnlyActiveCycles(t *testing.T) {
	repo := NewCycleRepository()
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	err := repo.LoadCycles([]*entities.Cycle{
		newCycle(t, 1, entities.CycleActive, start, nil),
		newCycle(t, 2, entities.CyclePlanned, start, nil),
		newCycle(t, 3, entities.CyclePaused, start, nil),
		newCycle(t, 4, entities.CycleActive, start, nil),
	})
	if err != nil {
		t.Fatalf("Failed to load cycles: %v", err)
	}

	active, err := repo.GetActive()
	if err != nil {
		t.Fatalf("Failed to get active cycles: %v", err)
	}
	if len(active) != 2 || active[0].ID != 1 || active[1].ID != 4 {
		t.Errorf("Expected active cycles [1 4], got %v", active)
	}
}

func TestCycleRepository_CompleteEndedClosesPastEndDates(t *testing.T) {
	repo := NewCycleRepository()
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	ended := newCycle(t, 1, entities.CycleActive, start, dateOf(2025, 2, 2))
	running := newCycle(t, 2, entities.CycleActive, start, dateOf(2025, 3, 1))
	openEnded := newCycle(t, 3, entities.CycleActive, start, nil)

	err := repo.LoadCycles([]*entities.Cycle{ended, running, openEnded})
	if err != nil {
		t.Fatalf("Failed to load cycles: %v", err)
	}

	completed, err := repo.CompleteEnded(asOf)
	if err != nil {
		t.Fatalf("Failed to complete ended cycles: %v", err)
	}
	if completed != 1 {
		t.Errorf("Expected 1 cycle completed, got %d", completed)
	}
	if ended.Status != entities.CycleCompleted {
		t.Errorf("Expected ended cycle completed, got %s", ended.Status)
	}
	if running.Status != entities.CycleActive || openEnded.Status != entities.CycleActive {
		t.Error("Expected running and open-ended cycles to stay active")
	}

	// A second sweep finds nothing left to close.
	completed, err = repo.CompleteEnded(asOf)
	if err != nil {
		t.Fatalf("Failed to re-run sweep: %v", err)
	}
	if completed != 0 {
		t.Errorf("Expected idempotent sweep, got %d newly completed", completed)
	}
}

func TestAdministrationRepository_RecordAndQuery(t *testing.T) {
	repo := NewAdministrationRepository()
	cycleID := entities.CycleID(7)
	drawID := uuid.New()

	first, err := entities.NewAdministration(
		drawID, &cycleID, 1, decimal.NewFromFloat(0.8),
		time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("Failed to create administration: %v", err)
	}
	second, err := entities.NewAdministration(
		drawID, &cycleID, 2, decimal.NewFromFloat(0.2),
		time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("Failed to create administration: %v", err)
	}
	unlinked, err := entities.NewAdministration(
		uuid.New(), nil, 1, decimal.NewFromFloat(0.5),
		time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC), "ad hoc")
	if err != nil {
		t.Fatalf("Failed to create administration: %v", err)
	}

	if err := repo.Record([]*entities.Administration{first, second, unlinked}); err != nil {
		t.Fatalf("Failed to record administrations: %v", err)
	}

	byCycle, err := repo.GetByCycle(cycleID)
	if err != nil {
		t.Fatalf("Failed to get administrations by cycle: %v", err)
	}
	if len(byCycle) != 2 {
		t.Errorf("Expected 2 administrations for cycle, got %d", len(byCycle))
	}
	for _, admin := range byCycle {
		if admin.DrawID != drawID {
			t.Error("Expected cycle administrations to share the draw id")
		}
	}

	byPrep, err := repo.GetByPreparation(1)
	if err != nil {
		t.Fatalf("Failed to get administrations by preparation: %v", err)
	}
	if len(byPrep) != 2 {
		t.Fatalf("Expected 2 administrations for preparation 1, got %d", len(byPrep))
	}
	if !byPrep[0].AdministeredAt.Before(byPrep[1].AdministeredAt) {
		t.Error("Expected administrations ordered oldest first")
	}
}
