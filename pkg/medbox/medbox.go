package medbox

import (
	"encoding/json"
	"errors"
	"fmt"

	"prabhas.dev/medication-box-service/pkg/models"
	"prabhas.dev/medication-box-service/pkg/store"
)

// NumCompartments is fixed by the physical box.
const NumCompartments = 4

// ErrInvalidArgument marks caller mistakes (bad compartment id, battery out
// of range) as opposed to store failures.
var ErrInvalidArgument = errors.New("invalid argument")

type IStatus interface {
	GetStatus() (json.RawMessage, error)
	ReportBattery(percentage int) error
}

type ISchedule interface {
	GetCompartments() (map[string]json.RawMessage, error)
	GetCompartment(id int) (*models.Compartment, error)
	UpdateCompartment(id int, partial json.RawMessage) error
	ReplaceCompartment(id int, compartment *models.Compartment) error
	SaveSchedule(id int, input *models.ScheduleInput) error
	ResetCompartments() error
}

type MedBox struct {
	Store store.Store

	Status   IStatus
	Schedule ISchedule
}

type ServiceOpts struct {
	Status   IStatus
	Schedule ISchedule
}

func (m *MedBox) WithServices(opts ServiceOpts) *MedBox {
	if opts.Status != nil {
		m.Status = opts.Status
	}
	if opts.Schedule != nil {
		m.Schedule = opts.Schedule
	}
	return m
}

func validateCompartmentID(id int) error {
	if id < 1 || id > NumCompartments {
		return fmt.Errorf("%w: compartment id must be between 1 and %d", ErrInvalidArgument, NumCompartments)
	}
	return nil
}
