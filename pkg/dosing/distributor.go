package dosing

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// PlanDraw selects preparations soonest-expiry-first and splits the
// required volume across them. The candidate pool must already be
// restricted to preparations of the right product; this function only
// decides how much to draw from which, in what order.
//
// Planning is pure: it never mutates the pool, so repeated calls with
// the same inputs return identical plans. When the pool cannot cover
// the requirement an InsufficientVolumeError is returned and no plan is
// produced.
func PlanDraw(requiredML decimal.Decimal, pool []*entities.Preparation, asOf time.Time) (*DrawPlan, error) {
	if requiredML.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("required volume must be positive, got %s", requiredML)
	}

	candidates := make([]*entities.Preparation, 0, len(pool))
	for _, prep := range pool {
		if prep.AvailableOn(asOf) {
			candidates = append(candidates, prep)
		}
	}
	sortByExpiry(candidates)

	plan := &DrawPlan{RequiredML: requiredML}
	remaining := requiredML
	available := decimal.Zero

	for _, prep := range candidates {
		available = available.Add(prep.VolumeRemaining)
		if remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}
		draw := decimal.Min(remaining, prep.VolumeRemaining)
		plan.Allocations = append(plan.Allocations, DrawAllocation{
			PreparationID: prep.ID,
			VolumeML:      draw,
		})
		remaining = remaining.Sub(draw)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, &InsufficientVolumeError{
			RequiredML:  requiredML,
			AvailableML: available,
		}
	}
	return plan, nil
}

// sortByExpiry orders preparations soonest-to-expire first. Preparations
// with no expiry date sort last, in ascending id order among themselves;
// equal expiry dates also tie-break by ascending id, so the order is
// fully deterministic.
func sortByExpiry(preps []*entities.Preparation) {
	sort.Slice(preps, func(i, j int) bool {
		a, b := preps[i], preps[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.ID < b.ID
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ID < b.ID
		default:
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	})
}

// Distributor applies draw plans to preparation pools. Commit runs under
// a lock so two concurrent draws cannot both read the same remaining
// volume and overdraw past zero.
type Distributor struct {
	mu sync.Mutex
}

// NewDistributor creates a Distributor.
func NewDistributor() *Distributor {
	return &Distributor{}
}

// Commit applies a draw plan against the pool, deducting volume from
// every allocated preparation. The commit is all-or-nothing: every
// allocation is re-verified under the lock before any volume moves, and
// a stale plan (a preparation gone missing, inactive, or short) fails
// without partial deduction.
//
// Returns the ids of preparations that crossed into depleted.
func (d *Distributor) Commit(plan *DrawPlan, pool []*entities.Preparation) ([]entities.PreparationID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byID := make(map[entities.PreparationID]*entities.Preparation, len(pool))
	for _, prep := range pool {
		byID[prep.ID] = prep
	}

	// Verify the whole plan before touching any volume.
	for _, alloc := range plan.Allocations {
		prep, ok := byID[alloc.PreparationID]
		if !ok {
			return nil, fmt.Errorf("preparation %d in plan is not in the pool", alloc.PreparationID)
		}
		if prep.Status != entities.StatusActive {
			return nil, fmt.Errorf(
				"preparation %d is no longer active (status: %s)",
				prep.ID, prep.Status)
		}
		if alloc.VolumeML.GreaterThan(prep.VolumeRemaining) {
			return nil, &InsufficientVolumeError{
				RequiredML:  plan.RequiredML,
				AvailableML: plan.TotalML().Sub(alloc.VolumeML).Add(prep.VolumeRemaining),
			}
		}
	}

	var depleted []entities.PreparationID
	for _, alloc := range plan.Allocations {
		emptied, err := byID[alloc.PreparationID].Draw(alloc.VolumeML)
		if err != nil {
			// Unreachable after verification; surfaced for safety.
			return depleted, fmt.Errorf("draw from preparation %d: %w", alloc.PreparationID, err)
		}
		if emptied {
			depleted = append(depleted, alloc.PreparationID)
		}
	}
	return depleted, nil
}
