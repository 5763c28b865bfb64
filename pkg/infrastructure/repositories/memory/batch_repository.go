package memory

import (
	"fmt"
	"sort"

	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/domain/repositories"
)

// BatchRepository provides in-memory mix batch storage
type BatchRepository struct {
	batches map[entities.BatchID]*entities.MixBatch
}

// NewBatchRepository creates a new in-memory batch repository
func NewBatchRepository() *BatchRepository {
	return &BatchRepository{
		batches: make(map[entities.BatchID]*entities.MixBatch),
	}
}

// Verify interface compliance
var _ repositories.BatchRepository = (*BatchRepository)(nil)

// LoadMixBatches loads mix batches into the repository
func (r *BatchRepository) LoadMixBatches(batches []*entities.MixBatch) error {
	for _, batch := range batches {
		if batch == nil {
			return fmt.Errorf("cannot load nil mix batch")
		}
		r.batches[batch.ID] = batch
	}
	return nil
}

// GetByID returns the mix batch with the given ID
func (r *BatchRepository) GetByID(id entities.BatchID) (*entities.MixBatch, error) {
	batch, exists := r.batches[id]
	if !exists {
		return nil, fmt.Errorf("mix batch not found: %d", id)
	}
	return batch, nil
}

// GetAvailableMixes returns batches with at least one vial remaining, ordered by ID
func (r *BatchRepository) GetAvailableMixes() ([]*entities.MixBatch, error) {
	var available []*entities.MixBatch
	for _, batch := range r.batches {
		if batch.VialsRemaining > 0 {
			available = append(available, batch)
		}
	}
	sort.Slice(available, func(i, j int) bool {
		return available[i].ID < available[j].ID
	})
	return available, nil
}
