package dosing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// InsufficientVolumeError reports that a draw could not be fully covered
// by the candidate pool. Recoverable: the caller may re-plan after
// restocking. No partial deduction has happened when it is returned.
type InsufficientVolumeError struct {
	RequiredML  decimal.Decimal
	AvailableML decimal.Decimal
}

func (e *InsufficientVolumeError) Error() string {
	return fmt.Sprintf("insufficient volume: required %s ml, available %s ml",
		e.RequiredML, e.AvailableML)
}

// InactiveCycleError reports that scheduling was queried against a cycle
// that is not active or whose end date has passed. Always surfaced,
// never folded into "not due today".
type InactiveCycleError struct {
	CycleID entities.CycleID
	Status  entities.CycleStatus
	Ended   bool
}

func (e *InactiveCycleError) Error() string {
	if e.Ended {
		return fmt.Sprintf("cycle %d has ended", e.CycleID)
	}
	return fmt.Sprintf("cycle %d is not active (status: %s)", e.CycleID, e.Status)
}

// InvalidRampScheduleError reports a ramp schedule whose week numbers are
// not monotonically non-decreasing. Fatal to that cycle's ramp
// computation; callers choosing to degrade gracefully may fall back to
// full dose, but the condition must be surfaced first.
type InvalidRampScheduleError struct {
	CycleID  entities.CycleID
	Position int
	Week     int
	PrevWeek int
}

func (e *InvalidRampScheduleError) Error() string {
	return fmt.Sprintf(
		"invalid ramp schedule for cycle %d: week %d at position %d follows week %d",
		e.CycleID, e.Week, e.Position, e.PrevWeek)
}
