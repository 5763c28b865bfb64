package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CycleID uniquely identifies a live run of a dosing regimen.
type CycleID int64

// CycleStatus represents the status of a cycle.
type CycleStatus int

const (
	CyclePlanned CycleStatus = iota
	CycleActive
	CyclePaused
	CycleCompleted
	CycleCancelled
)

// String method for CycleStatus enum
func (s CycleStatus) String() string {
	switch s {
	case CyclePlanned:
		return "planned"
	case CycleActive:
		return "active"
	case CyclePaused:
		return "paused"
	case CycleCompleted:
		return "completed"
	case CycleCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseCycleStatus converts a stored status string to the enum.
func ParseCycleStatus(s string) (CycleStatus, error) {
	switch s {
	case "planned":
		return CyclePlanned, nil
	case "active":
		return CycleActive, nil
	case "paused":
		return CyclePaused, nil
	case "completed":
		return CycleCompleted, nil
	case "cancelled":
		return CycleCancelled, nil
	default:
		return 0, fmt.Errorf("unknown cycle status: %q", s)
	}
}

// RampStep is one entry of a week-indexed ramp-up curve. Percent is the
// share of the full target dose for that week, e.g. 50 for half dose.
type RampStep struct {
	Week    int
	Percent decimal.Decimal
}

// Cycle represents an active instantiation of a protocol: a start date,
// an on/off pattern, a daily frequency, an optional ramp-up curve, and a
// snapshot of the per-administration ingredient targets.
//
// The on/off pattern is one of three mutually exclusive forms, checked in
// this order: FiveOnTwoOff (calendar Mon-Fri, weekend off, independent of
// the start date), an explicit weekday set, or days-on/days-off counters
// relative to the start date.
type Cycle struct {
	ID             CycleID
	Name           string
	Status         CycleStatus
	StartDate      time.Time
	EndDate        *time.Time
	DurationWeeks  int
	DaysOn         int
	DaysOff        int
	Weekdays       []time.Weekday
	FiveOnTwoOff   bool
	DailyFrequency int
	Ramp           []RampStep
	Requirement    map[IngredientID]decimal.Decimal // target mass per administration, mcg
}

// NewCycle creates a validated Cycle. The ramp schedule ordering is not
// checked here; it is validated at load time by the scheduling engine so
// that a malformed ramp can be surfaced without rejecting the whole row.
func NewCycle(
	id CycleID,
	name string,
	status CycleStatus,
	startDate time.Time,
	endDate *time.Time,
	dailyFrequency int,
) (*Cycle, error) {
	if id <= 0 {
		return nil, fmt.Errorf("cycle id must be positive, got %d", id)
	}
	if name == "" {
		return nil, fmt.Errorf("cycle name cannot be empty")
	}
	if startDate.IsZero() {
		return nil, fmt.Errorf("cycle start date cannot be zero")
	}
	if dailyFrequency < 1 {
		return nil, fmt.Errorf("daily frequency must be at least 1, got %d", dailyFrequency)
	}

	var end *time.Time
	if endDate != nil {
		d := Day(*endDate)
		if d.Before(Day(startDate)) {
			return nil, fmt.Errorf("cycle end date %s precedes start date %s",
				d.Format("2006-01-02"), Day(startDate).Format("2006-01-02"))
		}
		end = &d
	}

	return &Cycle{
		ID:             id,
		Name:           name,
		Status:         status,
		StartDate:      Day(startDate),
		EndDate:        end,
		DailyFrequency: dailyFrequency,
	}, nil
}

// CurrentWeek returns the 1-indexed week of the cycle at the given date.
// Dates before the start date are treated as week 1.
func (c *Cycle) CurrentWeek(asOf time.Time) int {
	elapsed := DaysBetween(c.StartDate, asOf)
	if elapsed < 0 {
		return 1
	}
	return elapsed/7 + 1
}

// Ended reports whether the cycle's end date has passed as of the date.
func (c *Cycle) Ended(asOf time.Time) bool {
	if c.EndDate == nil {
		return false
	}
	return c.EndDate.Before(Day(asOf))
}

// HasWeekdayPattern reports whether an explicit weekday set is configured.
func (c *Cycle) HasWeekdayPattern() bool {
	return len(c.Weekdays) > 0
}

// OnWeekday reports whether the given weekday belongs to the explicit
// weekday set.
func (c *Cycle) OnWeekday(day time.Weekday) bool {
	for _, w := range c.Weekdays {
		if w == day {
			return true
		}
	}
	return false
}
