package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PreparationID uniquely identifies a diluted preparation.
type PreparationID int64

// PreparationStatus represents the lifecycle status of a preparation.
// Transitions are forward-only: once a preparation leaves Active it
// never returns.
type PreparationStatus int

const (
	StatusActive PreparationStatus = iota
	StatusDepleted
	StatusExpired
	StatusDiscarded
)

// String method for PreparationStatus enum
func (s PreparationStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDepleted:
		return "depleted"
	case StatusExpired:
		return "expired"
	case StatusDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// ParsePreparationStatus converts a stored status string to the enum.
func ParsePreparationStatus(s string) (PreparationStatus, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "depleted":
		return StatusDepleted, nil
	case "expired":
		return StatusExpired, nil
	case "discarded":
		return StatusDiscarded, nil
	default:
		return 0, fmt.Errorf("unknown preparation status: %q", s)
	}
}

// WastageReason represents the reason a preparation's volume was written off.
type WastageReason int

const (
	WastageMeasurementError WastageReason = iota
	WastageSpillage
	WastageContamination
	WastageOther
)

// String method for WastageReason enum
func (r WastageReason) String() string {
	switch r {
	case WastageMeasurementError:
		return "measurement_error"
	case WastageSpillage:
		return "spillage"
	case WastageContamination:
		return "contamination"
	case WastageOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParseWastageReason converts a stored reason code to the enum.
func ParseWastageReason(s string) (WastageReason, error) {
	switch s {
	case "measurement_error":
		return WastageMeasurementError, nil
	case "spillage":
		return WastageSpillage, nil
	case "contamination":
		return WastageContamination, nil
	case "other":
		return WastageOther, nil
	default:
		return 0, fmt.Errorf("unknown wastage reason: %q", s)
	}
}

// WastageRecord captures volume written off when a preparation exits
// the active state, or through a partial spill while still active.
type WastageRecord struct {
	VolumeML decimal.Decimal
	Reason   WastageReason
	Notes    string
}

// Container is anything that holds a measured quantity of one or more
// ingredients and exposes mass per usable unit (per ml for preparations,
// per vial for mix batches).
type Container interface {
	MassPerUnit() map[IngredientID]decimal.Decimal
}

// Preparation represents one diluted, ready-to-use solution derived from
// a batch. Concentration is derived at construction and never recomputed
// at call sites.
type Preparation struct {
	ID              PreparationID
	BatchID         BatchID
	Composition     map[IngredientID]decimal.Decimal // total mass diluted in, mcg
	VolumeTotalML   decimal.Decimal
	VolumeRemaining decimal.Decimal
	Concentration   map[IngredientID]decimal.Decimal // mcg per ml, derived
	ExpiryDate      *time.Time
	Status          PreparationStatus
	Wastage         *WastageRecord
}

// NewPreparation creates a validated Preparation with derived concentration.
// volumeRemaining may be lower than volumeTotal for partially used
// preparations loaded from storage.
func NewPreparation(
	id PreparationID,
	batchID BatchID,
	composition map[IngredientID]decimal.Decimal,
	volumeTotalML decimal.Decimal,
	volumeRemainingML decimal.Decimal,
	expiryDate *time.Time,
) (*Preparation, error) {
	if id <= 0 {
		return nil, fmt.Errorf("preparation id must be positive, got %d", id)
	}
	if len(composition) == 0 {
		return nil, fmt.Errorf("preparation composition cannot be empty")
	}
	if volumeTotalML.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("total volume must be positive, got %s", volumeTotalML)
	}
	if volumeRemainingML.IsNegative() {
		return nil, fmt.Errorf("remaining volume cannot be negative, got %s", volumeRemainingML)
	}
	if volumeRemainingML.GreaterThan(volumeTotalML) {
		return nil, fmt.Errorf(
			"remaining volume %s exceeds total volume %s",
			volumeRemainingML, volumeTotalML,
		)
	}

	concentration := make(map[IngredientID]decimal.Decimal, len(composition))
	for ingredientID, mass := range composition {
		if mass.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf(
				"composition mass for ingredient %d must be positive, got %s",
				ingredientID, mass,
			)
		}
		concentration[ingredientID] = mass.Div(volumeTotalML)
	}

	var expiry *time.Time
	if expiryDate != nil {
		d := Day(*expiryDate)
		expiry = &d
	}

	return &Preparation{
		ID:              id,
		BatchID:         batchID,
		Composition:     composition,
		VolumeTotalML:   volumeTotalML,
		VolumeRemaining: volumeRemainingML,
		Concentration:   concentration,
		ExpiryDate:      expiry,
		Status:          StatusActive,
	}, nil
}

// MassPerUnit implements Container: mass per ml of solution.
func (p *Preparation) MassPerUnit() map[IngredientID]decimal.Decimal {
	return p.Concentration
}

// IsExpired reports whether the expiry date has passed as of the given
// date. Expiry is a read-time check: the persisted status can lag real
// time, so callers must never trust a cached expired status alone.
func (p *Preparation) IsExpired(asOf time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	return p.ExpiryDate.Before(Day(asOf))
}

// AvailableOn reports whether the preparation is visible to allocation
// and matching: active status, volume left, and not expired as of date.
func (p *Preparation) AvailableOn(asOf time.Time) bool {
	return p.Status == StatusActive &&
		p.VolumeRemaining.GreaterThan(decimal.Zero) &&
		!p.IsExpired(asOf)
}

// AvailableMass returns the mass of an ingredient still held in the
// remaining volume, prorated through the derived concentration.
func (p *Preparation) AvailableMass(ingredientID IngredientID) decimal.Decimal {
	concentration, ok := p.Concentration[ingredientID]
	if !ok {
		return decimal.Zero
	}
	return concentration.Mul(p.VolumeRemaining)
}

// Draw deducts volume from the preparation. The preparation transitions
// to depleted when the remaining volume reaches zero. Returns whether
// this draw depleted the preparation.
func (p *Preparation) Draw(volumeML decimal.Decimal) (bool, error) {
	if p.Status != StatusActive {
		return false, fmt.Errorf("preparation %d is not active (status: %s)", p.ID, p.Status)
	}
	if volumeML.LessThanOrEqual(decimal.Zero) {
		return false, fmt.Errorf("draw volume must be positive, got %s", volumeML)
	}
	if volumeML.GreaterThan(p.VolumeRemaining) {
		return false, fmt.Errorf(
			"draw volume %s exceeds remaining volume %s of preparation %d",
			volumeML, p.VolumeRemaining, p.ID,
		)
	}

	p.VolumeRemaining = p.VolumeRemaining.Sub(volumeML)
	if p.VolumeRemaining.IsZero() {
		if err := p.transition(StatusDepleted); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// MarkDepleted closes out an active preparation, recording the remaining
// volume as wastage and zeroing it.
func (p *Preparation) MarkDepleted(reason WastageReason, notes string) error {
	if err := p.transition(StatusDepleted); err != nil {
		return err
	}
	p.Wastage = &WastageRecord{
		VolumeML: p.VolumeRemaining,
		Reason:   reason,
		Notes:    notes,
	}
	p.VolumeRemaining = decimal.Zero
	return nil
}

// MarkDiscarded removes the preparation from all allocation and matching.
func (p *Preparation) MarkDiscarded(reason WastageReason, notes string) error {
	if err := p.transition(StatusDiscarded); err != nil {
		return err
	}
	p.Wastage = &WastageRecord{
		VolumeML: p.VolumeRemaining,
		Reason:   reason,
		Notes:    notes,
	}
	p.VolumeRemaining = decimal.Zero
	return nil
}

// MarkExpired records the expired status in storage. Queries never rely
// on this flag alone; see IsExpired.
func (p *Preparation) MarkExpired() error {
	return p.transition(StatusExpired)
}

// RecordWastage deducts a partial spill without closing the preparation.
// The preparation transitions to depleted if the spill empties it.
func (p *Preparation) RecordWastage(volumeML decimal.Decimal, reason WastageReason, notes string) error {
	if _, err := p.Draw(volumeML); err != nil {
		return err
	}
	record := &WastageRecord{VolumeML: volumeML, Reason: reason, Notes: notes}
	if p.Wastage != nil {
		record.VolumeML = record.VolumeML.Add(p.Wastage.VolumeML)
	}
	p.Wastage = record
	return nil
}

// transition enforces the forward-only lifecycle: active is the only
// state with outgoing edges.
func (p *Preparation) transition(to PreparationStatus) error {
	if p.Status != StatusActive {
		return fmt.Errorf(
			"invalid status transition for preparation %d: %s -> %s",
			p.ID, p.Status, to,
		)
	}
	if to == StatusActive {
		return fmt.Errorf("preparation %d cannot transition back to active", p.ID)
	}
	p.Status = to
	return nil
}
