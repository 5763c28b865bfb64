package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/domain/repositories"
)

// PreparationRepository provides in-memory preparation storage.
//
// Preparations are stored by pointer: the allocation path mutates
// remaining volume in place and commits are visible to every reader.
type PreparationRepository struct {
	preps map[entities.PreparationID]*entities.Preparation
}

// NewPreparationRepository creates a new in-memory preparation repository
func NewPreparationRepository() *PreparationRepository {
	return &PreparationRepository{
		preps: make(map[entities.PreparationID]*entities.Preparation),
	}
}

// Verify interface compliance
var _ repositories.PreparationRepository = (*PreparationRepository)(nil)

// LoadPreparations loads preparations into the repository
func (r *PreparationRepository) LoadPreparations(preps []*entities.Preparation) error {
	for _, prep := range preps {
		if err := r.Save(prep); err != nil {
			return err
		}
	}
	return nil
}

// Save stores a preparation, replacing any existing one with the same ID
func (r *PreparationRepository) Save(prep *entities.Preparation) error {
	if prep == nil {
		return fmt.Errorf("cannot save nil preparation")
	}
	r.preps[prep.ID] = prep
	return nil
}

// GetByID returns the preparation with the given ID
func (r *PreparationRepository) GetByID(id entities.PreparationID) (*entities.Preparation, error) {
	prep, exists := r.preps[id]
	if !exists {
		return nil, fmt.Errorf("preparation not found: %d", id)
	}
	return prep, nil
}

// GetAll returns every preparation regardless of status, ordered by ID
func (r *PreparationRepository) GetAll() ([]*entities.Preparation, error) {
	preps := make([]*entities.Preparation, 0, len(r.preps))
	for _, prep := range r.preps {
		preps = append(preps, prep)
	}
	sort.Slice(preps, func(i, j int) bool {
		return preps[i].ID < preps[j].ID
	})
	return preps, nil
}

// GetActive returns preparations usable as of the given date: active
// status, volume remaining, and not past their expiry date.
func (r *PreparationRepository) GetActive(asOf time.Time) ([]*entities.Preparation, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	var active []*entities.Preparation
	for _, prep := range all {
		if prep.AvailableOn(asOf) {
			active = append(active, prep)
		}
	}
	return active, nil
}

// GetActiveByBatch narrows GetActive to preparations diluted from one batch
func (r *PreparationRepository) GetActiveByBatch(batchID entities.BatchID, asOf time.Time) ([]*entities.Preparation, error) {
	active, err := r.GetActive(asOf)
	if err != nil {
		return nil, err
	}

	var matched []*entities.Preparation
	for _, prep := range active {
		if prep.BatchID == batchID {
			matched = append(matched, prep)
		}
	}
	return matched, nil
}
