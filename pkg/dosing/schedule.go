package dosing

import (
	"time"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// DueStatus decides whether the cycle calls for dosing on the given
// date, and how many administrations are due.
//
// A cycle that is not active, or whose end date has passed, yields
// VerdictInactive together with an InactiveCycleError so that callers
// can distinguish "finished" from "off day".
func DueStatus(cycle *entities.Cycle, date time.Time) (DueResult, error) {
	if cycle.Status != entities.CycleActive || cycle.Ended(date) {
		return DueResult{Verdict: VerdictInactive}, &InactiveCycleError{
			CycleID: cycle.ID,
			Status:  cycle.Status,
			Ended:   cycle.Ended(date),
		}
	}

	if !dueOn(cycle, date) {
		return DueResult{Verdict: VerdictOffDay}, nil
	}
	return DueResult{
		Verdict:         VerdictDue,
		Administrations: cycle.DailyFrequency,
	}, nil
}

// IsDue reports whether the date is a dosing day for the cycle.
func IsDue(cycle *entities.Cycle, date time.Time) (bool, error) {
	result, err := DueStatus(cycle, date)
	if err != nil {
		return false, err
	}
	return result.Verdict == VerdictDue, nil
}

// AdministrationsDue returns the number of administrations due on the
// date: the cycle's daily frequency on a dosing day, zero otherwise.
func AdministrationsDue(cycle *entities.Cycle, date time.Time) (int, error) {
	result, err := DueStatus(cycle, date)
	if err != nil {
		return 0, err
	}
	return result.Administrations, nil
}

// dueOn applies the cycle's on/off pattern. The three forms are checked
// in order: five-on/two-off, explicit weekday set, then the
// days-on/days-off counters relative to the start date.
func dueOn(cycle *entities.Cycle, date time.Time) bool {
	day := entities.Day(date)

	// The five-on/two-off pattern is calendar Mon-Fri regardless of the
	// cycle start date. This diverges from the start-relative counters
	// below and is preserved from the observed behavior.
	if cycle.FiveOnTwoOff {
		weekday := day.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}

	if cycle.HasWeekdayPattern() {
		return cycle.OnWeekday(day.Weekday())
	}

	elapsed := entities.DaysBetween(cycle.StartDate, day)
	if elapsed < 0 {
		return false
	}
	if cycle.DaysOff <= 0 {
		return true
	}
	cycleLength := cycle.DaysOn + cycle.DaysOff
	return elapsed%cycleLength < cycle.DaysOn
}

// PlannedAdministrations counts the total administrations the cycle
// calls for over its whole span: from the start date through the end
// date, or through DurationWeeks whole weeks when no end date is set.
// Returns zero when the span is open-ended.
func PlannedAdministrations(cycle *entities.Cycle) int {
	start := entities.Day(cycle.StartDate)

	var last time.Time
	switch {
	case cycle.EndDate != nil:
		last = *cycle.EndDate
	case cycle.DurationWeeks > 0:
		last = start.AddDate(0, 0, cycle.DurationWeeks*7-1)
	default:
		return 0
	}

	total := 0
	for day := start; !day.After(last); day = day.AddDate(0, 0, 1) {
		if dueOn(cycle, day) {
			total += cycle.DailyFrequency
		}
	}
	return total
}

// RemainingAdministrations counts the administrations the cycle still
// calls for from the given date (inclusive) through its planned end.
// Returns zero when the span is open-ended.
func RemainingAdministrations(cycle *entities.Cycle, asOf time.Time) int {
	start := entities.Day(cycle.StartDate)
	from := entities.Day(asOf)
	if from.Before(start) {
		from = start
	}

	var last time.Time
	switch {
	case cycle.EndDate != nil:
		last = *cycle.EndDate
	case cycle.DurationWeeks > 0:
		last = start.AddDate(0, 0, cycle.DurationWeeks*7-1)
	default:
		return 0
	}

	total := 0
	for day := from; !day.After(last); day = day.AddDate(0, 0, 1) {
		if dueOn(cycle, day) {
			total += cycle.DailyFrequency
		}
	}
	return total
}
