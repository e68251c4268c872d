package appointment

import (
	"context"

	"github.com/BruksfildServices01/hms-scheduler/internal/audit"
	domainap "github.com/BruksfildServices01/hms-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

type NoShowAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewNoShowAppointment(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *NoShowAppointment {
	return &NoShowAppointment{
		repo:  repo,
		audit: auditDispatcher,
	}
}

// Execute records that the patient did not show up. Same rules as
// completion: doctor-only, after the window, slot stays booked.
func (uc *NoShowAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	doctorID uint,
) (*models.Appointment, error) {

	var marked *models.Appointment

	err := uc.repo.InTransaction(ctx, func(tx domain.Tx) error {

		ap, err := tx.AppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}

		slot, err := tx.SlotForUpdate(ctx, ap.SlotID)
		if err != nil {
			return err
		}

		if slot.DoctorID != doctorID {
			return httperr.ErrBusiness("appointment_not_found")
		}

		now := timezone.Now()
		if slot.EndTime.After(now) {
			return httperr.ErrBusiness("not_elapsed")
		}

		if err := domainap.NoShow(ap, now); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		marked = ap
		return nil
	})

	if err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			DoctorID: doctorID,
			UserID:   &doctorID,
			Action:   "appointment_no_show",
			Entity:   "appointment",
			EntityID: &marked.ID,
		})
	}

	return marked, nil
}
