package sqlite

import (
	"time"

	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/domain/repositories"
)

// The repository interfaces share method names (GetByID, GetActive,
// Save), so the Store cannot implement them all directly. Each view is
// a zero-cost adapter binding one interface to the Store.

// PreparationView adapts Store to repositories.PreparationRepository
type PreparationView struct{ store *Store }

// Preparations returns the preparation repository view of the store
func (s *Store) Preparations() PreparationView { return PreparationView{store: s} }

// Verify interface compliance
var _ repositories.PreparationRepository = PreparationView{}

func (v PreparationView) GetActive(asOf time.Time) ([]*entities.Preparation, error) {
	return v.store.GetActivePreparations(asOf)
}

func (v PreparationView) GetActiveByBatch(batchID entities.BatchID, asOf time.Time) ([]*entities.Preparation, error) {
	return v.store.GetActiveByBatch(batchID, asOf)
}

func (v PreparationView) GetByID(id entities.PreparationID) (*entities.Preparation, error) {
	return v.store.GetPreparation(id)
}

func (v PreparationView) GetAll() ([]*entities.Preparation, error) {
	return v.store.GetAllPreparations()
}

func (v PreparationView) Save(prep *entities.Preparation) error {
	return v.store.Save(prep)
}

func (v PreparationView) LoadPreparations(preps []*entities.Preparation) error {
	return v.store.LoadPreparations(preps)
}

// BatchView adapts Store to repositories.BatchRepository
type BatchView struct{ store *Store }

// Batches returns the mix batch repository view of the store
func (s *Store) Batches() BatchView { return BatchView{store: s} }

// Verify interface compliance
var _ repositories.BatchRepository = BatchView{}

func (v BatchView) GetAvailableMixes() ([]*entities.MixBatch, error) {
	return v.store.GetAvailableMixes()
}

func (v BatchView) GetByID(id entities.BatchID) (*entities.MixBatch, error) {
	return v.store.GetMixBatch(id)
}

func (v BatchView) LoadMixBatches(batches []*entities.MixBatch) error {
	return v.store.LoadMixBatches(batches)
}

// CycleView adapts Store to repositories.CycleRepository
type CycleView struct{ store *Store }

// Cycles returns the cycle repository view of the store
func (s *Store) Cycles() CycleView { return CycleView{store: s} }

// Verify interface compliance
var _ repositories.CycleRepository = CycleView{}

func (v CycleView) GetActive() ([]*entities.Cycle, error) {
	return v.store.GetActiveCycles()
}

func (v CycleView) GetByID(id entities.CycleID) (*entities.Cycle, error) {
	return v.store.GetCycle(id)
}

func (v CycleView) Save(cycle *entities.Cycle) error {
	return v.store.SaveCycle(cycle)
}

func (v CycleView) LoadCycles(cycles []*entities.Cycle) error {
	return v.store.LoadCycles(cycles)
}

func (v CycleView) CompleteEnded(asOf time.Time) (int, error) {
	return v.store.CompleteEnded(asOf)
}

// AdministrationView adapts Store to repositories.AdministrationRepository
type AdministrationView struct{ store *Store }

// Administrations returns the administration repository view of the store
func (s *Store) Administrations() AdministrationView { return AdministrationView{store: s} }

// Verify interface compliance
var _ repositories.AdministrationRepository = AdministrationView{}

func (v AdministrationView) GetByCycle(cycleID entities.CycleID) ([]*entities.Administration, error) {
	return v.store.GetByCycle(cycleID)
}

func (v AdministrationView) GetByPreparation(prepID entities.PreparationID) ([]*entities.Administration, error) {
	return v.store.GetByPreparation(prepID)
}

func (v AdministrationView) Record(admins []*entities.Administration) error {
	return v.store.RecordAdministrations(admins)
}
