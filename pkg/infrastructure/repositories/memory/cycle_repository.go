package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/domain/repositories"
)

// CycleRepository provides in-memory dosing cycle storage
type CycleRepository struct {
	cycles map[entities.CycleID]*entities.Cycle
}

// NewCycleRepository creates a new in-memory cycle repository
func NewCycleRepository() *CycleRepository {
	return &CycleRepository{
		cycles: make(map[entities.CycleID]*entities.Cycle),
	}
}

// Verify interface compliance
var _ repositories.CycleRepository = (*CycleRepository)(nil)

// LoadCycles loads cycles into the repository
func (r *CycleRepository) LoadCycles(cycles []*entities.Cycle) error {
	for _, cycle := range cycles {
		if err := r.Save(cycle); err != nil {
			return err
		}
	}
	return nil
}

// Save stores a cycle, replacing any existing one with the same ID
func (r *CycleRepository) Save(cycle *entities.Cycle) error {
	if cycle == nil {
		return fmt.Errorf("cannot save nil cycle")
	}
	r.cycles[cycle.ID] = cycle
	return nil
}

// GetByID returns the cycle with the given ID
func (r *CycleRepository) GetByID(id entities.CycleID) (*entities.Cycle, error) {
	cycle, exists := r.cycles[id]
	if !exists {
		return nil, fmt.Errorf("cycle not found: %d", id)
	}
	return cycle, nil
}

// GetActive returns active cycles ordered by ID
func (r *CycleRepository) GetActive() ([]*entities.Cycle, error) {
	var active []*entities.Cycle
	for _, cycle := range r.cycles {
		if cycle.Status == entities.CycleActive {
			active = append(active, cycle)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].ID < active[j].ID
	})
	return active, nil
}

// CompleteEnded marks active cycles whose end date has passed as completed
func (r *CycleRepository) CompleteEnded(asOf time.Time) (int, error) {
	active, err := r.GetActive()
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, cycle := range active {
		if cycle.Ended(asOf) {
			cycle.Status = entities.CycleCompleted
			completed++
		}
	}
	return completed, nil
}
