package slot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/hms-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateSlotInput struct {
	DoctorID uint

	Date      string // 2006-01-02
	StartTime string // 15:04
	EndTime   string // 15:04
}

// ======================================================
// USE CASE
// ======================================================

type CreateSlot struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	tz    string
}

func NewCreateSlot(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
	tz string,
) *CreateSlot {
	return &CreateSlot{
		repo:  repo,
		audit: auditDispatcher,
		tz:    tz,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateSlot) Execute(
	ctx context.Context,
	in CreateSlotInput,
) (*models.Slot, error) {

	loc := timezone.Location(uc.tz)

	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.StartTime, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_request")
	}

	end, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.EndTime, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_request")
	}

	if !start.Before(end) {
		return nil, httperr.ErrBusiness("invalid_request")
	}

	s := &models.Slot{
		Ref:       uuid.NewString(),
		DoctorID:  in.DoctorID,
		StartTime: start,
		EndTime:   end,
	}

	// past_date and time_conflict surface from the store
	if err := uc.repo.CreateSlot(ctx, s); err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			DoctorID: in.DoctorID,
			UserID:   &in.DoctorID,
			Action:   "slot_created",
			Entity:   "slot",
			EntityID: &s.ID,
		})
	}

	return s, nil
}
