package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

// slotCreateLockClass is the advisory-lock keyspace for per-doctor slot
// creation, so the (class, doctor_id) pair cannot collide with other
// advisory locks on the same database.
const slotCreateLockClass = 2161

type BookingGormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewBookingGormRepository(db *gorm.DB, lockTimeout time.Duration) *BookingGormRepository {
	return &BookingGormRepository{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

// --------------------------------------------------
// Transaction scope
// --------------------------------------------------

type gormTx struct {
	tx *gorm.DB
}

func (r *BookingGormRepository) InTransaction(
	ctx context.Context,
	fn func(tx domain.Tx) error,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(timeout).Error; err != nil {
				return err
			}
		}
		return fn(&gormTx{tx: tx})
	})

	return mapLockError(err)
}

// mapLockError turns a lock-wait expiry into the "busy" business code so
// callers can tell it apart from slot_already_taken.
func mapLockError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 55P03 lock_not_available, 57014 query_canceled (lock_timeout)
		if pgErr.Code == "55P03" || pgErr.Code == "57014" {
			return httperr.ErrBusiness("busy")
		}
	}

	return err
}

func (t *gormTx) SlotForUpdate(
	ctx context.Context,
	slotID uint,
) (*models.Slot, error) {

	var slot models.Slot
	if err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, slotID).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("slot_not_found")
		}
		return nil, err
	}

	return &slot, nil
}

func (t *gormTx) AppointmentForUpdate(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, appointmentID).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}

	return &ap, nil
}

func (t *gormTx) MarkBooked(ctx context.Context, slot *models.Slot) error {
	slot.Booked = true
	slot.Version++
	return t.tx.WithContext(ctx).Save(slot).Error
}

func (t *gormTx) MarkAvailable(ctx context.Context, slot *models.Slot) error {
	slot.Booked = false
	slot.Version++
	return t.tx.WithContext(ctx).Save(slot).Error
}

func (t *gormTx) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return t.tx.WithContext(ctx).Create(ap).Error
}

func (t *gormTx) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return t.tx.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Slot management
// --------------------------------------------------

func (r *BookingGormRepository) CreateSlot(
	ctx context.Context,
	slot *models.Slot,
) error {

	if !slot.StartTime.Before(slot.EndTime) {
		return httperr.ErrBusiness("invalid_request")
	}

	// The day boundary is midnight in the slot's own timezone, not UTC's.
	loc := slot.StartTime.Location()
	now := timezone.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if slot.StartTime.Before(today) {
		return httperr.ErrBusiness("past_date")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// Serialize slot creation per doctor for the rest of the
		// transaction. Row locks cannot cover this check: two inserts
		// into an empty window have no existing row to contend on.
		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(?, ?)",
			slotCreateLockClass, int64(slot.DoctorID),
		).Error; err != nil {
			return err
		}

		var conflicts []models.Slot
		if err := tx.
			Where(
				"doctor_id = ? AND start_time < ? AND end_time > ?",
				slot.DoctorID, slot.EndTime, slot.StartTime,
			).
			Find(&conflicts).Error; err != nil {
			return err
		}

		if len(conflicts) > 0 {
			return httperr.ErrBusiness("time_conflict")
		}

		return tx.Create(slot).Error
	})

	return mapLockError(err)
}

func (r *BookingGormRepository) DeleteSlot(
	ctx context.Context,
	slotID uint,
	doctorID uint,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var slot models.Slot
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND doctor_id = ?", slotID, doctorID).
			First(&slot).Error; err != nil {

			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrBusiness("slot_not_found")
			}
			return err
		}

		if slot.Booked {
			return httperr.ErrBusiness("slot_booked")
		}

		return tx.Delete(&slot).Error
	})

	return mapLockError(err)
}

func (r *BookingGormRepository) ListSlotsByDoctor(
	ctx context.Context,
	doctorID uint,
) ([]models.Slot, error) {

	var slots []models.Slot
	if err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *BookingGormRepository) ListOpenSlotsByDoctor(
	ctx context.Context,
	doctorID uint,
	from time.Time,
) ([]models.Slot, error) {

	var slots []models.Slot
	if err := r.db.WithContext(ctx).
		Where(
			"doctor_id = ? AND booked = ? AND start_time > ?",
			doctorID, false, from,
		).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *BookingGormRepository) GetUserByID(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("user_not_found")
		}
		return nil, err
	}

	return &user, nil
}

func (r *BookingGormRepository) GetAppointmentDetail(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Slot").
		Preload("Slot.Doctor").
		First(&ap, id).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}

	return &ap, nil
}

func (r *BookingGormRepository) ListAppointmentsByPatient(
	ctx context.Context,
	patientID uint,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Slot").
		Preload("Slot.Doctor").
		Joins("JOIN slots ON slots.id = appointments.slot_id").
		Where("appointments.patient_id = ?", patientID).
		Order("slots.start_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

func (r *BookingGormRepository) ListAppointmentsByDoctor(
	ctx context.Context,
	doctorID uint,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Slot").
		Joins("JOIN slots ON slots.id = appointments.slot_id").
		Where("slots.doctor_id = ?", doctorID).
		Order("slots.start_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

// --------------------------------------------------
// Best-effort enrichment
// --------------------------------------------------

func (r *BookingGormRepository) SaveCalendarEventIDs(
	ctx context.Context,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", ap.ID).
		Updates(map[string]any{
			"google_event_id_doctor":  ap.GoogleEventIDDoctor,
			"google_event_id_patient": ap.GoogleEventIDPatient,
		}).Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
