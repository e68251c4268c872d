package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/hms-scheduler/internal/audit"
	domainap "github.com/BruksfildServices01/hms-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/sideeffect"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

// MinLeadTime is how far in the future a slot must start to still be
// bookable. Zero keeps the source behavior: bookable until the exact start
// instant.
const MinLeadTime time.Duration = 0

const maxReasonLen = 500

// ======================================================
// INPUT
// ======================================================

type ReserveInput struct {
	SlotID    uint
	PatientID uint
	Reason    string
}

// ======================================================
// USE CASE
// ======================================================

type ReserveAppointment struct {
	repo    domain.Repository
	effects *sideeffect.Dispatcher
	audit   *audit.Dispatcher
}

func NewReserveAppointment(
	repo domain.Repository,
	effects *sideeffect.Dispatcher,
	auditDispatcher *audit.Dispatcher,
) *ReserveAppointment {
	return &ReserveAppointment{
		repo:    repo,
		effects: effects,
		audit:   auditDispatcher,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute reserves the slot for the patient. Concurrent calls for the same
// slot serialize on the row lock; exactly one commits, the rest see
// slot_already_taken. Side effects run after commit and can never undo the
// reservation.
func (uc *ReserveAppointment) Execute(
	ctx context.Context,
	in ReserveInput,
) (*models.Appointment, error) {

	if in.PatientID == 0 || in.SlotID == 0 {
		return nil, httperr.ErrBusiness("invalid_request")
	}
	if len(in.Reason) > maxReasonLen {
		return nil, httperr.ErrBusiness("invalid_request")
	}

	var created *models.Appointment
	var doctorID uint

	err := uc.repo.InTransaction(ctx, func(tx domain.Tx) error {

		slot, err := tx.SlotForUpdate(ctx, in.SlotID)
		if err != nil {
			return err
		}

		// Re-check on the locked read. Whatever the caller saw before
		// (an availability listing, a booking page) is stale by now.
		if slot.Booked {
			return httperr.ErrBusiness("slot_already_taken")
		}

		now := timezone.Now()
		if !slot.StartTime.After(now.Add(MinLeadTime)) {
			return httperr.ErrBusiness("slot_expired")
		}

		if err := tx.MarkBooked(ctx, slot); err != nil {
			return err
		}

		ap := &models.Appointment{
			Ref:       uuid.NewString(),
			PatientID: in.PatientID,
			SlotID:    slot.ID,
			Status:    string(domainap.InitialStatus()),
			Reason:    in.Reason,
		}

		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		ap.Slot = *slot
		created = ap
		doctorID = slot.DoctorID
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Committed. Everything below is best-effort and must not fail the call.
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			DoctorID: doctorID,
			UserID:   &in.PatientID,
			Action:   "appointment_created",
			Entity:   "appointment",
			EntityID: &created.ID,
		})
	}

	uc.effects.Dispatch(sideeffect.Event{
		Kind:          sideeffect.BookingCreated,
		AppointmentID: created.ID,
	})

	return created, nil
}
