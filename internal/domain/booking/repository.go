package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/hms-scheduler/internal/models"
)

// Tx is the view of the store available inside a transaction. SlotForUpdate
// is the serialization point: it holds an exclusive lock on the slot row
// until the transaction commits or aborts, so at most one caller at a time
// gets past it for a given slot. Everything read through Tx after that call
// is authoritative; reads taken before the lock must not be trusted.
type Tx interface {
	SlotForUpdate(ctx context.Context, slotID uint) (*models.Slot, error)
	AppointmentForUpdate(ctx context.Context, appointmentID uint) (*models.Appointment, error)

	// MarkBooked / MarkAvailable mutate the booked flag and bump the
	// version counter. Only call them on a slot returned by SlotForUpdate
	// in the same transaction.
	MarkBooked(ctx context.Context, slot *models.Slot) error
	MarkAvailable(ctx context.Context, slot *models.Slot) error

	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
}

type Repository interface {
	// InTransaction runs fn inside a single database transaction. Any error
	// from fn aborts the transaction and leaves all state unchanged. A lock
	// wait exceeding the configured bound returns the "busy" business error.
	InTransaction(ctx context.Context, fn func(tx Tx) error) error

	// -------- Slot management --------
	CreateSlot(ctx context.Context, slot *models.Slot) error
	DeleteSlot(ctx context.Context, slotID uint, doctorID uint) error
	ListSlotsByDoctor(ctx context.Context, doctorID uint) ([]models.Slot, error)
	ListOpenSlotsByDoctor(ctx context.Context, doctorID uint, from time.Time) ([]models.Slot, error)

	// -------- Reads --------
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetAppointmentDetail(ctx context.Context, id uint) (*models.Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error)

	// -------- Best-effort enrichment --------
	SaveCalendarEventIDs(ctx context.Context, ap *models.Appointment) error
}
