package slot

import (
	"context"

	"github.com/BruksfildServices01/hms-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
)

type DeleteSlot struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteSlot(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *DeleteSlot {
	return &DeleteSlot{
		repo:  repo,
		audit: auditDispatcher,
	}
}

// Execute removes an unbooked slot owned by the doctor. A booked slot
// cannot be deleted; cancel the appointment first.
func (uc *DeleteSlot) Execute(
	ctx context.Context,
	slotID uint,
	doctorID uint,
) error {

	if err := uc.repo.DeleteSlot(ctx, slotID, doctorID); err != nil {
		return err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			DoctorID: doctorID,
			UserID:   &doctorID,
			Action:   "slot_deleted",
			Entity:   "slot",
			EntityID: &slotID,
		})
	}

	return nil
}
