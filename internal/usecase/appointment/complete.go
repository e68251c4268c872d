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

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteAppointment(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: auditDispatcher,
	}
}

// Execute records that the appointment took place. Only the slot's doctor
// may record it, and only after the slot's window has ended. The slot stays
// booked: a completed appointment does not free the interval.
func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	doctorID uint,
) (*models.Appointment, error) {

	var completed *models.Appointment

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

		if err := domainap.Complete(ap, now); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		completed = ap
		return nil
	})

	if err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			DoctorID: doctorID,
			UserID:   &doctorID,
			Action:   "appointment_completed",
			Entity:   "appointment",
			EntityID: &completed.ID,
		})
	}

	return completed, nil
}
