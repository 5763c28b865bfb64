package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BatchID uniquely identifies a purchased lot.
type BatchID int64

// MixBatch represents an un-diluted purchased lot containing one or more
// ingredients at a fixed mass per vial. Mix batches are read-only for
// allocation purposes: vials are never physically split, so they are
// matched for feasibility but never drawn.
type MixBatch struct {
	ID             BatchID
	ProductName    string
	MassPerVial    map[IngredientID]decimal.Decimal // mcg per vial
	VialsRemaining int64
}

// NewMixBatch creates a validated MixBatch.
func NewMixBatch(
	id BatchID,
	productName string,
	massPerVial map[IngredientID]decimal.Decimal,
	vialsRemaining int64,
) (*MixBatch, error) {
	if id <= 0 {
		return nil, fmt.Errorf("batch id must be positive, got %d", id)
	}
	if productName == "" {
		return nil, fmt.Errorf("product name cannot be empty")
	}
	if len(massPerVial) == 0 {
		return nil, fmt.Errorf("batch composition cannot be empty")
	}
	for ingredientID, mass := range massPerVial {
		if mass.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf(
				"per-vial mass for ingredient %d must be positive, got %s",
				ingredientID, mass,
			)
		}
	}
	if vialsRemaining < 0 {
		return nil, fmt.Errorf("vials remaining cannot be negative, got %d", vialsRemaining)
	}

	return &MixBatch{
		ID:             id,
		ProductName:    productName,
		MassPerVial:    massPerVial,
		VialsRemaining: vialsRemaining,
	}, nil
}

// MassPerUnit implements Container: mass per vial.
func (b *MixBatch) MassPerUnit() map[IngredientID]decimal.Decimal {
	return b.MassPerVial
}

// Contains reports whether the batch supplies the given ingredient.
func (b *MixBatch) Contains(ingredientID IngredientID) bool {
	_, ok := b.MassPerVial[ingredientID]
	return ok
}

// AvailableMass returns the total mass of an ingredient across all
// remaining vials.
func (b *MixBatch) AvailableMass(ingredientID IngredientID) decimal.Decimal {
	mass, ok := b.MassPerVial[ingredientID]
	if !ok {
		return decimal.Zero
	}
	return mass.Mul(decimal.NewFromInt(b.VialsRemaining))
}
