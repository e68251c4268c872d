package slot

import (
	"context"

	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

type ListSlots struct {
	repo domain.Repository
}

func NewListSlots(repo domain.Repository) *ListSlots {
	return &ListSlots{repo: repo}
}

// ByDoctor returns every slot the doctor owns, booked or not.
func (uc *ListSlots) ByDoctor(
	ctx context.Context,
	doctorID uint,
) ([]models.Slot, error) {
	return uc.repo.ListSlotsByDoctor(ctx, doctorID)
}

// OpenForDoctor returns the doctor's unbooked future slots, the view a
// patient books from. The listing is a hint only: reservation re-checks
// everything under the row lock.
func (uc *ListSlots) OpenForDoctor(
	ctx context.Context,
	doctorID uint,
) ([]models.Slot, error) {
	return uc.repo.ListOpenSlotsByDoctor(ctx, doctorID, timezone.Now())
}
