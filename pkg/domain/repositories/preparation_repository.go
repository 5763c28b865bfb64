package repositories

import (
	"time"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// PreparationRepository provides access to diluted preparations.
type PreparationRepository interface {
	// GetActive returns preparations visible to allocation and matching
	// as of the given date: active status, volume left, not expired.
	GetActive(asOf time.Time) ([]*entities.Preparation, error)

	// GetActiveByBatch narrows GetActive to preparations of one batch,
	// the pool a draw for that product is planned against.
	GetActiveByBatch(batchID entities.BatchID, asOf time.Time) ([]*entities.Preparation, error)

	GetByID(id entities.PreparationID) (*entities.Preparation, error)
	GetAll() ([]*entities.Preparation, error)
	Save(prep *entities.Preparation) error
	LoadPreparations(preps []*entities.Preparation) error
}

// BatchRepository provides access to purchased mix batches.
type BatchRepository interface {
	// GetAvailableMixes returns batches with at least one vial remaining.
	GetAvailableMixes() ([]*entities.MixBatch, error)

	GetByID(id entities.BatchID) (*entities.MixBatch, error)
	LoadMixBatches(batches []*entities.MixBatch) error
}
