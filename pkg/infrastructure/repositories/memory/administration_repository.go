package memory

import (
	"fmt"
	"sort"

	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/domain/repositories"
)

// AdministrationRepository provides in-memory administration log storage
type AdministrationRepository struct {
	admins []*entities.Administration
}

// NewAdministrationRepository creates a new in-memory administration repository
func NewAdministrationRepository() *AdministrationRepository {
	return &AdministrationRepository{}
}

// Verify interface compliance
var _ repositories.AdministrationRepository = (*AdministrationRepository)(nil)

// Record appends administrations to the log
func (r *AdministrationRepository) Record(admins []*entities.Administration) error {
	for _, admin := range admins {
		if admin == nil {
			return fmt.Errorf("cannot record nil administration")
		}
	}
	r.admins = append(r.admins, admins...)
	return nil
}

// GetByCycle returns administrations linked to a cycle, oldest first
func (r *AdministrationRepository) GetByCycle(cycleID entities.CycleID) ([]*entities.Administration, error) {
	var matched []*entities.Administration
	for _, admin := range r.admins {
		if admin.CycleID != nil && *admin.CycleID == cycleID {
			matched = append(matched, admin)
		}
	}
	sortByTime(matched)
	return matched, nil
}

// GetByPreparation returns administrations drawn from a preparation, oldest first
func (r *AdministrationRepository) GetByPreparation(prepID entities.PreparationID) ([]*entities.Administration, error) {
	var matched []*entities.Administration
	for _, admin := range r.admins {
		if admin.PreparationID == prepID {
			matched = append(matched, admin)
		}
	}
	sortByTime(matched)
	return matched, nil
}

func sortByTime(admins []*entities.Administration) {
	sort.Slice(admins, func(i, j int) bool {
		return admins[i].AdministeredAt.Before(admins[j].AdministeredAt)
	})
}
