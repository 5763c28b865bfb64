package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Administration is an immutable record of a dose drawn from one
// preparation at a specific time. A dose split across multiple
// preparations produces one Administration per preparation, grouped by a
// shared DrawID.
type Administration struct {
	ID             uuid.UUID
	DrawID         uuid.UUID
	CycleID        *CycleID
	PreparationID  PreparationID
	VolumeML       decimal.Decimal
	AdministeredAt time.Time
	Notes          string
}

// NewAdministration creates a validated Administration record.
func NewAdministration(
	drawID uuid.UUID,
	cycleID *CycleID,
	preparationID PreparationID,
	volumeML decimal.Decimal,
	administeredAt time.Time,
	notes string,
) (*Administration, error) {
	if drawID == uuid.Nil {
		return nil, fmt.Errorf("draw id cannot be nil")
	}
	if preparationID <= 0 {
		return nil, fmt.Errorf("preparation id must be positive, got %d", preparationID)
	}
	if volumeML.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("administered volume must be positive, got %s", volumeML)
	}
	if administeredAt.IsZero() {
		return nil, fmt.Errorf("administration time cannot be zero")
	}

	return &Administration{
		ID:             uuid.New(),
		DrawID:         drawID,
		CycleID:        cycleID,
		PreparationID:  preparationID,
		VolumeML:       volumeML,
		AdministeredAt: administeredAt,
		Notes:          notes,
	}, nil
}
