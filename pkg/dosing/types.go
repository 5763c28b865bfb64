package dosing

import (
	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// Requirement maps each ingredient to its target mass per administration
// in mcg. It is produced from a protocol or cycle snapshot and is
// independent of how it will be filled.
type Requirement map[entities.IngredientID]decimal.Decimal

// Scale returns a copy of the requirement with every target multiplied
// by the given fraction.
func (r Requirement) Scale(fraction decimal.Decimal) Requirement {
	scaled := make(Requirement, len(r))
	for ingredientID, target := range r {
		scaled[ingredientID] = target.Mul(fraction)
	}
	return scaled
}

// DrawAllocation is one preparation's share of a planned draw.
type DrawAllocation struct {
	PreparationID entities.PreparationID
	VolumeML      decimal.Decimal
}

// DrawPlan is the ordered result of planning a draw across one or more
// preparations. A plan carries no side effects until committed.
type DrawPlan struct {
	RequiredML  decimal.Decimal
	Allocations []DrawAllocation
}

// TotalML returns the summed volume across all allocations.
func (p *DrawPlan) TotalML() decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range p.Allocations {
		total = total.Add(alloc.VolumeML)
	}
	return total
}

// Verdict is the outcome of the due-today check. Inactive is distinct
// from an off day so callers can tell a finished cycle from a rest day.
type Verdict int

const (
	VerdictInactive Verdict = iota
	VerdictOffDay
	VerdictDue
)

// String method for Verdict enum
func (v Verdict) String() string {
	switch v {
	case VerdictInactive:
		return "inactive"
	case VerdictOffDay:
		return "off"
	case VerdictDue:
		return "due"
	default:
		return "unknown"
	}
}

// DueResult is the schedule generator's answer for one cycle and date.
type DueResult struct {
	Verdict         Verdict
	Administrations int
}

// IngredientCoverage compares one ingredient's per-administration target
// against the mass available across the whole inventory.
type IngredientCoverage struct {
	IngredientID entities.IngredientID
	TargetMcg    decimal.Decimal
	AvailableMcg decimal.Decimal
	ShortfallMcg decimal.Decimal
}

// MixCoverage reports how many full administrations a single complete
// mix batch could cover on its own.
type MixCoverage struct {
	BatchID                  entities.BatchID
	ProductName              string
	SupportedAdministrations int64
}

// StockReport is the read-only output of matching a requirement against
// inventory. It is advisory, not a reservation.
type StockReport struct {
	PerIngredient map[entities.IngredientID]IngredientCoverage
	Mixes         []MixCoverage
}

// Covered reports whether every ingredient's shortfall is zero.
func (r *StockReport) Covered() bool {
	for _, coverage := range r.PerIngredient {
		if coverage.ShortfallMcg.GreaterThan(decimal.Zero) {
			return false
		}
	}
	return true
}
