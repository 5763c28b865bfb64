package dosing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// Engine ties the scheduling, ramp, matching, and draw components
// together over collections already loaded by the caller. It holds no
// connection state; persistence is a capability injected upstream.
type Engine struct {
	distributor *Distributor
	now         func() time.Time
}

// NewEngine creates an Engine using the wall clock.
func NewEngine() *Engine {
	return NewEngineWithClock(time.Now)
}

// NewEngineWithClock creates an Engine with an injected date source.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{
		distributor: NewDistributor(),
		now:         now,
	}
}

// Today returns the engine's current calendar date.
func (e *Engine) Today() time.Time {
	return entities.Day(e.now())
}

// DueToday answers whether the cycle calls for dosing on the engine's
// current date.
func (e *Engine) DueToday(cycle *entities.Cycle) (DueResult, error) {
	return DueStatus(cycle, e.Today())
}

// EffectiveDoses returns the ramped per-administration targets for the
// cycle on the given date.
func (e *Engine) EffectiveDoses(cycle *entities.Cycle, asOf time.Time) (Requirement, error) {
	return EffectiveRequirement(cycle, asOf)
}

// StockReportFor matches the cycle's ramped requirement for the date
// against the inventory snapshot. Read-only.
func (e *Engine) StockReportFor(
	cycle *entities.Cycle,
	preps []*entities.Preparation,
	mixes []*entities.MixBatch,
	asOf time.Time,
) (*StockReport, error) {
	requirement, err := EffectiveRequirement(cycle, asOf)
	if err != nil {
		return nil, err
	}
	return MatchRequirement(requirement, preps, mixes, asOf), nil
}

// DrawResult is the paired intent a committed draw emits: the volume
// deductions already applied in memory, the administration records to
// persist, and the preparations that crossed into depleted. The storage
// collaborator must persist the deductions and the administrations in
// one transaction.
type DrawResult struct {
	DrawID          uuid.UUID
	Administrations []*entities.Administration
	Depleted        []entities.PreparationID
}

// CommitDraw applies a previously planned draw against the pool and
// builds one administration record per drawn preparation, grouped under
// a shared draw id. All-or-nothing: on error no volume has moved and no
// records are produced.
func (e *Engine) CommitDraw(
	plan *DrawPlan,
	pool []*entities.Preparation,
	cycleID *entities.CycleID,
	at time.Time,
	notes string,
) (*DrawResult, error) {
	if len(plan.Allocations) == 0 {
		return nil, fmt.Errorf("draw plan has no allocations")
	}

	drawID := uuid.New()
	admins := make([]*entities.Administration, 0, len(plan.Allocations))
	for _, alloc := range plan.Allocations {
		admin, err := entities.NewAdministration(drawID, cycleID, alloc.PreparationID, alloc.VolumeML, at, notes)
		if err != nil {
			return nil, fmt.Errorf("build administration for preparation %d: %w", alloc.PreparationID, err)
		}
		admins = append(admins, admin)
	}

	depleted, err := e.distributor.Commit(plan, pool)
	if err != nil {
		return nil, err
	}

	return &DrawResult{
		DrawID:          drawID,
		Administrations: admins,
		Depleted:        depleted,
	}, nil
}

// PlanAndCommit is the convenience path for recording a dose now: plan
// against the pool as of the administration date, then commit.
func (e *Engine) PlanAndCommit(
	requiredML decimal.Decimal,
	pool []*entities.Preparation,
	cycleID *entities.CycleID,
	at time.Time,
	notes string,
) (*DrawResult, error) {
	plan, err := PlanDraw(requiredML, pool, at)
	if err != nil {
		return nil, err
	}
	return e.CommitDraw(plan, pool, cycleID, at, notes)
}
