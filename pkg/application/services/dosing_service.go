package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/application/dto"
	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/domain/repositories"
	"github.com/mrossi/peptrack/pkg/dosing"
	"github.com/mrossi/peptrack/pkg/infrastructure/events"
)

// DrawCommitter persists the paired intent of a committed draw: the
// updated preparations and the administration records, atomically.
// The SQLite store satisfies this directly; the in-memory path is
// covered by MemoryCommitter.
type DrawCommitter interface {
	CommitDraw(preps []*entities.Preparation, admins []*entities.Administration) error
}

// MemoryCommitter is the DrawCommitter for in-memory repositories, where
// volume deductions are already visible through shared pointers and only
// the administration records need recording.
type MemoryCommitter struct {
	Preparations    repositories.PreparationRepository
	Administrations repositories.AdministrationRepository
}

// Verify interface compliance
var _ DrawCommitter = MemoryCommitter{}

func (c MemoryCommitter) CommitDraw(preps []*entities.Preparation, admins []*entities.Administration) error {
	for _, prep := range preps {
		if err := c.Preparations.Save(prep); err != nil {
			return err
		}
	}
	return c.Administrations.Record(admins)
}

// DosingService orchestrates the daily dosing workflow: sweeping ended
// cycles, evaluating due status and stock per cycle, and recording
// doses through a transactional storage collaborator.
type DosingService struct {
	engine *dosing.Engine
	events events.EventStore
}

// NewDosingService creates a service using the wall clock and no event trail.
func NewDosingService() *DosingService {
	return &DosingService{engine: dosing.NewEngine()}
}

// NewDosingServiceWith creates a service with an injected date source
// and an optional event store (nil disables the event trail).
func NewDosingServiceWith(now func() time.Time, store events.EventStore) *DosingService {
	return &DosingService{
		engine: dosing.NewEngineWithClock(now),
		events: store,
	}
}

// Engine exposes the underlying dosing engine for callers that need the
// lower-level planning primitives.
func (s *DosingService) Engine() *dosing.Engine {
	return s.engine
}

// DailyPlan evaluates every active cycle for the given date: first the
// ended-cycle sweep, then per cycle the due verdict, the ramped
// per-administration targets, and a stock report against the inventory
// on hand.
func (s *DosingService) DailyPlan(
	ctx context.Context,
	asOf time.Time,
	cycleRepo repositories.CycleRepository,
	prepRepo repositories.PreparationRepository,
	batchRepo repositories.BatchRepository,
) (*dto.DailyPlan, error) {
	day := entities.Day(asOf)

	// Emit completion events before the sweep flips the statuses.
	active, err := cycleRepo.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active cycles: %w", err)
	}
	if s.events != nil {
		for _, cycle := range active {
			if cycle.Ended(day) {
				s.emit(events.NewCycleCompletedEvent(cycle))
			}
		}
	}

	completed, err := cycleRepo.CompleteEnded(day)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep ended cycles: %w", err)
	}

	active, err = cycleRepo.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active cycles: %w", err)
	}
	preps, err := prepRepo.GetActive(day)
	if err != nil {
		return nil, fmt.Errorf("failed to load active preparations: %w", err)
	}
	mixes, err := batchRepo.GetAvailableMixes()
	if err != nil {
		return nil, fmt.Errorf("failed to load mix batches: %w", err)
	}

	plan := &dto.DailyPlan{Date: day, CompletedCycles: completed}
	for _, cycle := range active {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := s.planCycle(cycle, preps, mixes, day)
		if err != nil {
			return nil, fmt.Errorf("failed to plan cycle %d: %w", cycle.ID, err)
		}
		plan.Cycles = append(plan.Cycles, entry)
	}
	return plan, nil
}

func (s *DosingService) planCycle(
	cycle *entities.Cycle,
	preps []*entities.Preparation,
	mixes []*entities.MixBatch,
	day time.Time,
) (dto.CyclePlan, error) {
	entry := dto.CyclePlan{
		CycleID:          cycle.ID,
		Name:             cycle.Name,
		Week:             cycle.CurrentWeek(day),
		PlannedRemaining: dosing.RemainingAdministrations(cycle, day),
	}

	due, err := dosing.DueStatus(cycle, day)
	if err != nil {
		// The sweep already closed ended cycles; an inactive verdict
		// here means a status raced in, report it rather than fail.
		var inactive *dosing.InactiveCycleError
		if !errors.As(err, &inactive) {
			return dto.CyclePlan{}, err
		}
	}
	entry.Verdict = due.Verdict
	entry.AdministrationsDue = due.Administrations
	if due.Verdict == dosing.VerdictInactive {
		return entry, nil
	}

	requirement, err := dosing.EffectiveRequirement(cycle, day)
	if err != nil {
		return dto.CyclePlan{}, err
	}
	entry.Requirement = requirement
	entry.Stock = dosing.MatchRequirement(requirement, preps, mixes, day)

	if s.events != nil {
		for ingredientID, coverage := range entry.Stock.PerIngredient {
			if coverage.ShortfallMcg.GreaterThan(decimal.Zero) {
				s.emit(events.NewShortfallIdentifiedEvent(cycle.ID, ingredientID, coverage.ShortfallMcg))
			}
		}
	}
	return entry, nil
}

// RecordDose plans a draw against the active preparations of one batch,
// commits the volume deductions, and persists the paired administration
// records through the committer.
func (s *DosingService) RecordDose(
	cycleID *entities.CycleID,
	batchID entities.BatchID,
	requiredML decimal.Decimal,
	at time.Time,
	notes string,
	prepRepo repositories.PreparationRepository,
	committer DrawCommitter,
) (*dto.DoseRecord, error) {
	pool, err := prepRepo.GetActiveByBatch(batchID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to load preparations for batch %d: %w", batchID, err)
	}

	result, err := s.engine.PlanAndCommit(requiredML, pool, cycleID, at, notes)
	if err != nil {
		return nil, err
	}

	// Persist only the preparations the draw touched.
	byID := make(map[entities.PreparationID]*entities.Preparation, len(pool))
	for _, prep := range pool {
		byID[prep.ID] = prep
	}
	var touched []*entities.Preparation
	for _, admin := range result.Administrations {
		touched = append(touched, byID[admin.PreparationID])
	}

	if err := committer.CommitDraw(touched, result.Administrations); err != nil {
		return nil, fmt.Errorf("failed to persist draw %s: %w", result.DrawID, err)
	}

	if s.events != nil {
		s.emit(events.NewDrawCommittedEvent(result.DrawID, cycleID, requiredML, result.Administrations))
		for _, prepID := range result.Depleted {
			s.emit(events.NewPreparationDepletedEvent(prepID, byID[prepID].Wastage))
		}
	}

	return &dto.DoseRecord{
		DrawID:          result.DrawID,
		Administrations: result.Administrations,
		Depleted:        result.Depleted,
	}, nil
}

// MarkPreparationDepleted writes off an active preparation: the
// remaining volume becomes wastage and the status moves to depleted.
func (s *DosingService) MarkPreparationDepleted(
	prepID entities.PreparationID,
	reason entities.WastageReason,
	notes string,
	prepRepo repositories.PreparationRepository,
) error {
	prep, err := prepRepo.GetByID(prepID)
	if err != nil {
		return err
	}
	if err := prep.MarkDepleted(reason, notes); err != nil {
		return err
	}
	if err := prepRepo.Save(prep); err != nil {
		return fmt.Errorf("failed to persist preparation %d: %w", prepID, err)
	}
	if s.events != nil {
		s.emit(events.NewPreparationDepletedEvent(prepID, prep.Wastage))
	}
	return nil
}

// RecordWastage records a partial spill against an active preparation
// without closing it. The preparation transitions to depleted if the
// spill empties it.
func (s *DosingService) RecordWastage(
	prepID entities.PreparationID,
	volumeML decimal.Decimal,
	reason entities.WastageReason,
	notes string,
	prepRepo repositories.PreparationRepository,
) error {
	prep, err := prepRepo.GetByID(prepID)
	if err != nil {
		return err
	}
	if err := prep.RecordWastage(volumeML, reason, notes); err != nil {
		return err
	}
	if err := prepRepo.Save(prep); err != nil {
		return fmt.Errorf("failed to persist preparation %d: %w", prepID, err)
	}
	if s.events != nil {
		s.emit(events.NewWastageRecordedEvent(prepID, volumeML, reason, notes))
		if prep.Status == entities.StatusDepleted {
			s.emit(events.NewPreparationDepletedEvent(prepID, prep.Wastage))
		}
	}
	return nil
}

// emit appends an event to the trail. The trail is advisory; append
// failures do not fail the operation that produced the event.
func (s *DosingService) emit(event events.Event) {
	_ = s.events.AppendEvent(event.StreamID(), event)
}
