package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/application/services"
	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/infrastructure/events"
	"github.com/mrossi/peptrack/pkg/infrastructure/repositories/sqlite"
)

// DoseConfig holds configuration for the dose command
type DoseConfig struct {
	Database string
	CycleID  int64
	BatchID  int64
	VolumeML string
	Notes    string
	Verbose  bool
}

// DoseCommand records a dose: it plans a draw across the active
// preparations of one batch and persists the deductions together with
// the administration records.
type DoseCommand struct {
	config DoseConfig
}

// NewDoseCommand creates a new dose command with the given configuration
func NewDoseCommand(config DoseConfig) *DoseCommand {
	return &DoseCommand{config: config}
}

// Execute runs the dose command
func (c *DoseCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	volume, err := decimal.NewFromString(c.config.VolumeML)
	if err != nil || volume.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("validation error: invalid volume %q (expected a positive ml amount)", c.config.VolumeML)
	}

	store, err := sqlite.NewStore(c.config.Database)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer store.Close()

	var cycleID *entities.CycleID
	if c.config.CycleID > 0 {
		id := entities.CycleID(c.config.CycleID)
		cycleID = &id
	}

	service := services.NewDosingServiceWith(time.Now, events.NewInMemoryEventStore())
	record, err := service.RecordDose(
		cycleID, entities.BatchID(c.config.BatchID), volume,
		time.Now(), c.config.Notes,
		store.Preparations(), store,
	)
	if err != nil {
		return fmt.Errorf("error recording dose: %w", err)
	}

	fmt.Printf("💉 Dose recorded (draw %s)\n", record.DrawID)
	for _, admin := range record.Administrations {
		fmt.Printf("  %s ml from preparation %d\n", admin.VolumeML, admin.PreparationID)
	}
	for _, prepID := range record.Depleted {
		fmt.Printf("  🫙 Preparation %d is now depleted\n", prepID)
	}
	return nil
}

// validateInputs validates the command configuration
func (c *DoseCommand) validateInputs() error {
	if c.config.Database == "" {
		return fmt.Errorf("must specify -db database")
	}
	if c.config.BatchID <= 0 {
		return fmt.Errorf("must specify a positive -batch id")
	}
	if c.config.VolumeML == "" {
		return fmt.Errorf("must specify -volume in ml")
	}
	return nil
}
