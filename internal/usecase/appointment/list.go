package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	userID uint,
	role string,
) ([]models.Appointment, error) {

	switch role {
	case "doctor":
		return uc.repo.ListAppointmentsByDoctor(ctx, userID)
	case "patient":
		return uc.repo.ListAppointmentsByPatient(ctx, userID)
	default:
		return nil, httperr.ErrBusiness("forbidden")
	}
}

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

// Execute returns the appointment when the requester is its patient or the
// doctor who owns its slot. Anyone else gets appointment_not_found, not
// forbidden: existence is not leaked.
func (uc *GetAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	userID uint,
	role string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentDetail(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	switch role {
	case "doctor":
		if ap.Slot.DoctorID != userID {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
	case "patient":
		if ap.PatientID != userID {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
	default:
		return nil, httperr.ErrBusiness("forbidden")
	}

	return ap, nil
}
