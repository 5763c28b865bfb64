package dosing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// ValidateRampSchedule checks a cycle's ramp curve at load time. Week
// numbers must be positive and non-decreasing in list order; duplicate
// week numbers are allowed, in which case the last-defined entry wins.
func ValidateRampSchedule(cycle *entities.Cycle) error {
	prevWeek := 0
	for i, step := range cycle.Ramp {
		if step.Week < 1 {
			return &InvalidRampScheduleError{
				CycleID:  cycle.ID,
				Position: i,
				Week:     step.Week,
				PrevWeek: prevWeek,
			}
		}
		if step.Week < prevWeek {
			return &InvalidRampScheduleError{
				CycleID:  cycle.ID,
				Position: i,
				Week:     step.Week,
				PrevWeek: prevWeek,
			}
		}
		if step.Percent.LessThanOrEqual(decimal.Zero) || step.Percent.GreaterThan(hundred) {
			return fmt.Errorf(
				"ramp percentage for cycle %d week %d must be in (0, 100], got %s",
				cycle.ID, step.Week, step.Percent)
		}
		prevWeek = step.Week
	}
	return nil
}

// RampFraction returns the effective dose multiplier for the cycle at
// the given date, as a fraction in (0, 1].
//
// With no ramp schedule the multiplier is always 1. Otherwise the last
// entry whose week is at or before the current week applies; dates
// beyond the final entry clamp to it, and dates before the first entry
// use the first entry (no negative-week extrapolation).
func RampFraction(cycle *entities.Cycle, asOf time.Time) (decimal.Decimal, error) {
	if err := ValidateRampSchedule(cycle); err != nil {
		return decimal.Zero, err
	}
	if len(cycle.Ramp) == 0 {
		return decimal.NewFromInt(1), nil
	}

	currentWeek := cycle.CurrentWeek(asOf)

	percent := cycle.Ramp[0].Percent
	for _, step := range cycle.Ramp {
		if step.Week > currentWeek {
			break
		}
		percent = step.Percent
	}

	return percent.Div(hundred), nil
}

// EffectiveDose scales a per-administration target by the ramp fraction
// for the date.
func EffectiveDose(cycle *entities.Cycle, targetMcg decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	fraction, err := RampFraction(cycle, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return targetMcg.Mul(fraction), nil
}

// EffectiveRequirement scales every ingredient target in the cycle's
// requirement snapshot by the ramp fraction for the date.
func EffectiveRequirement(cycle *entities.Cycle, asOf time.Time) (Requirement, error) {
	fraction, err := RampFraction(cycle, asOf)
	if err != nil {
		return nil, err
	}
	return Requirement(cycle.Requirement).Scale(fraction), nil
}
