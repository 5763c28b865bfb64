package dosing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// MatchRequirement aggregates available ingredient mass across live
// preparations and mix batches, and compares it to a per-administration
// requirement.
//
// For every required ingredient the report carries the target, the total
// available mass, and the shortfall (zero when covered). Separately,
// every mix batch supplying all required ingredients is scored with the
// number of full administrations it could cover alone; mixes supplying
// only some ingredients contribute to the aggregate mass but get no
// standalone feasibility count.
//
// The match is read-only and safe to run against a point-in-time
// snapshot concurrently with draws; a slightly stale report is advisory,
// not a reservation.
func MatchRequirement(
	requirement Requirement,
	preps []*entities.Preparation,
	mixes []*entities.MixBatch,
	asOf time.Time,
) *StockReport {
	report := &StockReport{
		PerIngredient: make(map[entities.IngredientID]IngredientCoverage, len(requirement)),
	}

	for ingredientID, target := range requirement {
		available := decimal.Zero
		for _, prep := range preps {
			if prep.AvailableOn(asOf) {
				available = available.Add(prep.AvailableMass(ingredientID))
			}
		}
		for _, mix := range mixes {
			available = available.Add(mix.AvailableMass(ingredientID))
		}

		shortfall := target.Sub(available)
		if shortfall.IsNegative() {
			shortfall = decimal.Zero
		}
		report.PerIngredient[ingredientID] = IngredientCoverage{
			IngredientID: ingredientID,
			TargetMcg:    target,
			AvailableMcg: available,
			ShortfallMcg: shortfall,
		}
	}

	for _, mix := range mixes {
		count, complete := supportedAdministrations(requirement, mix)
		if complete {
			report.Mixes = append(report.Mixes, MixCoverage{
				BatchID:                  mix.ID,
				ProductName:              mix.ProductName,
				SupportedAdministrations: count,
			})
		}
	}
	sort.Slice(report.Mixes, func(i, j int) bool {
		return report.Mixes[i].BatchID < report.Mixes[j].BatchID
	})

	return report
}

// supportedAdministrations computes how many full administrations one
// batch alone could cover: the minimum over required ingredients of
// floor(mass_per_vial * vials / target). Targets of zero mass do not
// constrain the count. Returns complete=false when the batch is missing
// any required ingredient.
func supportedAdministrations(requirement Requirement, mix *entities.MixBatch) (int64, bool) {
	if len(requirement) == 0 {
		return 0, false
	}

	supported := int64(-1)
	for ingredientID, target := range requirement {
		if target.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if !mix.Contains(ingredientID) {
			return 0, false
		}
		count := mix.AvailableMass(ingredientID).Div(target).Floor().IntPart()
		if supported < 0 || count < supported {
			supported = count
		}
	}
	if supported < 0 {
		// Every target was zero; nothing constrains the batch.
		return 0, false
	}
	return supported, true
}
