package booking

import (
	"context"

	"github.com/BruksfildServices01/hms-scheduler/internal/audit"
	domainap "github.com/BruksfildServices01/hms-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/sideeffect"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

type CancelAppointment struct {
	repo    domain.Repository
	effects *sideeffect.Dispatcher
	audit   *audit.Dispatcher
}

func NewCancelAppointment(
	repo domain.Repository,
	effects *sideeffect.Dispatcher,
	auditDispatcher *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:    repo,
		effects: effects,
		audit:   auditDispatcher,
	}
}

// Execute cancels the patient's appointment and releases its slot. Status
// flip and slot release commit in the same transaction: no crash window can
// leave one without the other.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	patientID uint,
) (*models.Appointment, error) {

	var cancelled *models.Appointment
	var doctorID uint

	err := uc.repo.InTransaction(ctx, func(tx domain.Tx) error {

		ap, err := tx.AppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}

		if ap.PatientID != patientID {
			return httperr.ErrBusiness("forbidden")
		}

		slot, err := tx.SlotForUpdate(ctx, ap.SlotID)
		if err != nil {
			return err
		}

		now := timezone.Now()
		if !slot.StartTime.After(now) {
			return httperr.ErrBusiness("already_past")
		}

		if err := domainap.Cancel(ap, now); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		if err := tx.MarkAvailable(ctx, slot); err != nil {
			return err
		}

		ap.Slot = *slot
		cancelled = ap
		doctorID = slot.DoctorID
		return nil
	})

	if err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			DoctorID: doctorID,
			UserID:   &patientID,
			Action:   "appointment_cancelled",
			Entity:   "appointment",
			EntityID: &cancelled.ID,
		})
	}

	uc.effects.Dispatch(sideeffect.Event{
		Kind:          sideeffect.BookingCancelled,
		AppointmentID: cancelled.ID,
	})

	return cancelled, nil
}
