package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/dosing"
)

// DailyPlan is the complete output of a daily planning run: one entry
// per active cycle, evaluated against the inventory on hand.
type DailyPlan struct {
	Date            time.Time
	CompletedCycles int // cycles auto-closed because their end date passed
	Cycles          []CyclePlan
}

// CyclePlan is the per-cycle slice of a daily plan.
type CyclePlan struct {
	CycleID            entities.CycleID
	Name               string
	Week               int
	Verdict            dosing.Verdict
	AdministrationsDue int
	Requirement        dosing.Requirement // ramped per-administration targets, mcg
	Stock              *dosing.StockReport
	PlannedRemaining   int // administrations left until the cycle's planned end, 0 if open-ended
}

// DoseRecord is the outcome of a recorded dose: the administration rows
// persisted for it, grouped by a shared draw id, and the preparations
// the draw emptied.
type DoseRecord struct {
	DrawID          uuid.UUID
	Administrations []*entities.Administration
	Depleted        []entities.PreparationID
}
