package events

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

const (
	DrawCommittedEvent        = "draw.committed"
	PreparationDepletedEvent  = "preparation.depleted"
	WastageRecordedEvent      = "preparation.wastage_recorded"
	CycleCompletedEvent       = "cycle.completed"
	ShortfallIdentifiedEvent  = "stock.shortfall_identified"
	AdministrationLinkedEvent = "cycle.administration_linked"
)

// DrawCommitted records one committed draw plan: the administrations it
// produced and the total volume that moved.
type DrawCommitted struct {
	DrawID          uuid.UUID          `json:"draw_id"`
	CycleID         *entities.CycleID  `json:"cycle_id,omitempty"`
	TotalVolumeML   decimal.Decimal    `json:"total_volume_ml"`
	Administrations []uuid.UUID        `json:"administrations"`
	Preparations    []entities.PreparationID `json:"preparations"`
}

// PreparationDepleted records a preparation crossing into depleted,
// either by a draw reaching zero or an explicit write-off.
type PreparationDepleted struct {
	PreparationID entities.PreparationID `json:"preparation_id"`
	WastageML     decimal.Decimal        `json:"wastage_ml"`
	Reason        string                 `json:"reason,omitempty"`
}

// WastageRecorded records a partial spill against a still-active
// preparation.
type WastageRecorded struct {
	PreparationID entities.PreparationID `json:"preparation_id"`
	VolumeML      decimal.Decimal        `json:"volume_ml"`
	Reason        string                 `json:"reason"`
	Notes         string                 `json:"notes,omitempty"`
}

// CycleCompleted records a cycle closed because its end date passed.
type CycleCompleted struct {
	CycleID entities.CycleID `json:"cycle_id"`
	Name    string           `json:"name"`
}

// ShortfallIdentified records an ingredient the inventory cannot cover.
type ShortfallIdentified struct {
	CycleID      entities.CycleID      `json:"cycle_id"`
	IngredientID entities.IngredientID `json:"ingredient_id"`
	ShortfallMcg decimal.Decimal       `json:"shortfall_mcg"`
}

func NewDrawCommittedEvent(drawID uuid.UUID, cycleID *entities.CycleID, totalML decimal.Decimal, admins []*entities.Administration) Event {
	adminIDs := make([]uuid.UUID, 0, len(admins))
	prepIDs := make([]entities.PreparationID, 0, len(admins))
	for _, admin := range admins {
		adminIDs = append(adminIDs, admin.ID)
		prepIDs = append(prepIDs, admin.PreparationID)
	}
	return NewEvent(DrawCommittedEvent, drawID.String(), DrawCommitted{
		DrawID:          drawID,
		CycleID:         cycleID,
		TotalVolumeML:   totalML,
		Administrations: adminIDs,
		Preparations:    prepIDs,
	})
}

func NewPreparationDepletedEvent(prepID entities.PreparationID, wastage *entities.WastageRecord) Event {
	data := PreparationDepleted{PreparationID: prepID, WastageML: decimal.Zero}
	if wastage != nil {
		data.WastageML = wastage.VolumeML
		data.Reason = wastage.Reason.String()
	}
	return NewEvent(PreparationDepletedEvent, preparationStream(prepID), data)
}

func NewWastageRecordedEvent(prepID entities.PreparationID, volumeML decimal.Decimal, reason entities.WastageReason, notes string) Event {
	return NewEvent(WastageRecordedEvent, preparationStream(prepID), WastageRecorded{
		PreparationID: prepID,
		VolumeML:      volumeML,
		Reason:        reason.String(),
		Notes:         notes,
	})
}

func NewCycleCompletedEvent(cycle *entities.Cycle) Event {
	return NewEvent(CycleCompletedEvent, cycleStream(cycle.ID), CycleCompleted{
		CycleID: cycle.ID,
		Name:    cycle.Name,
	})
}

func NewShortfallIdentifiedEvent(cycleID entities.CycleID, ingredientID entities.IngredientID, shortfallMcg decimal.Decimal) Event {
	return NewEvent(ShortfallIdentifiedEvent, cycleStream(cycleID), ShortfallIdentified{
		CycleID:      cycleID,
		IngredientID: ingredientID,
		ShortfallMcg: shortfallMcg,
	})
}

func preparationStream(id entities.PreparationID) string {
	return fmt.Sprintf("preparation:%d", id)
}

func cycleStream(id entities.CycleID) string {
	return fmt.Sprintf("cycle:%d", id)
}
