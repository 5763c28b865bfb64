package repositories

import (
	"time"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// CycleRepository provides access to dosing cycles.
type CycleRepository interface {
	GetActive() ([]*entities.Cycle, error)
	GetByID(id entities.CycleID) (*entities.Cycle, error)
	Save(cycle *entities.Cycle) error
	LoadCycles(cycles []*entities.Cycle) error

	// CompleteEnded marks active cycles whose end date has passed as
	// completed and returns how many were closed.
	CompleteEnded(asOf time.Time) (int, error)
}

// AdministrationRepository provides access to recorded administrations.
type AdministrationRepository interface {
	GetByCycle(cycleID entities.CycleID) ([]*entities.Administration, error)
	GetByPreparation(prepID entities.PreparationID) ([]*entities.Administration, error)
	Record(admins []*entities.Administration) error
}
