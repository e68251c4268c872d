package booking_test

import (
	"context"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/hms-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

// fakeRepo is an in-memory booking.Repository. A single mutex plays the
// part of the row lock: transactions serialize, and an error from fn rolls
// the whole snapshot back, matching the store's all-or-nothing contract.
type fakeRepo struct {
	mu sync.Mutex

	slots        map[uint]models.Slot
	appointments map[uint]models.Appointment
	users        map[uint]models.User

	nextSlotID uint
	nextApID   uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		slots:        make(map[uint]models.Slot),
		appointments: make(map[uint]models.Appointment),
		users:        make(map[uint]models.User),
	}
}

func (f *fakeRepo) addUser(u models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return u
}

func (f *fakeRepo) addSlot(s models.Slot) models.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == 0 {
		f.nextSlotID++
		s.ID = f.nextSlotID
	}
	f.slots[s.ID] = s
	return s
}

func (f *fakeRepo) slotByID(id uint) models.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[id]
}

func (f *fakeRepo) appointmentByID(id uint) models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appointments[id]
}

// -------- transactions --------

type fakeTx struct {
	r *fakeRepo
}

func (f *fakeRepo) InTransaction(ctx context.Context, fn func(tx domain.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slotSnap := make(map[uint]models.Slot, len(f.slots))
	for k, v := range f.slots {
		slotSnap[k] = v
	}
	apSnap := make(map[uint]models.Appointment, len(f.appointments))
	for k, v := range f.appointments {
		apSnap[k] = v
	}
	nextAp := f.nextApID

	if err := fn(&fakeTx{r: f}); err != nil {
		f.slots = slotSnap
		f.appointments = apSnap
		f.nextApID = nextAp
		return err
	}
	return nil
}

func (t *fakeTx) SlotForUpdate(ctx context.Context, slotID uint) (*models.Slot, error) {
	s, ok := t.r.slots[slotID]
	if !ok {
		return nil, httperr.ErrBusiness("slot_not_found")
	}
	cp := s
	return &cp, nil
}

func (t *fakeTx) AppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	ap, ok := t.r.appointments[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	cp := ap
	return &cp, nil
}

func (t *fakeTx) MarkBooked(ctx context.Context, slot *models.Slot) error {
	slot.Booked = true
	slot.Version++
	t.r.slots[slot.ID] = *slot
	return nil
}

func (t *fakeTx) MarkAvailable(ctx context.Context, slot *models.Slot) error {
	slot.Booked = false
	slot.Version++
	t.r.slots[slot.ID] = *slot
	return nil
}

func (t *fakeTx) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	t.r.nextApID++
	ap.ID = t.r.nextApID
	ap.CreatedAt = time.Now()
	t.r.appointments[ap.ID] = *ap
	return nil
}

func (t *fakeTx) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	t.r.appointments[ap.ID] = *ap
	return nil
}

// -------- slot management --------

func (f *fakeRepo) CreateSlot(ctx context.Context, slot *models.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	loc := slot.StartTime.Location()
	now := timezone.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if slot.StartTime.Before(today) {
		return httperr.ErrBusiness("past_date")
	}
	for _, s := range f.slots {
		if s.DoctorID == slot.DoctorID &&
			s.StartTime.Before(slot.EndTime) && s.EndTime.After(slot.StartTime) {
			return httperr.ErrBusiness("time_conflict")
		}
	}

	f.nextSlotID++
	slot.ID = f.nextSlotID
	f.slots[slot.ID] = *slot
	return nil
}

func (f *fakeRepo) DeleteSlot(ctx context.Context, slotID uint, doctorID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.slots[slotID]
	if !ok || s.DoctorID != doctorID {
		return httperr.ErrBusiness("slot_not_found")
	}
	if s.Booked {
		return httperr.ErrBusiness("slot_booked")
	}
	delete(f.slots, slotID)
	return nil
}

func (f *fakeRepo) ListSlotsByDoctor(ctx context.Context, doctorID uint) ([]models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Slot
	for _, s := range f.slots {
		if s.DoctorID == doctorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListOpenSlotsByDoctor(ctx context.Context, doctorID uint, from time.Time) ([]models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Slot
	for _, s := range f.slots {
		if s.DoctorID == doctorID && !s.Booked && s.StartTime.After(from) {
			out = append(out, s)
		}
	}
	return out, nil
}

// -------- reads --------

func (f *fakeRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	cp := u
	return &cp, nil
}

func (f *fakeRepo) GetAppointmentDetail(ctx context.Context, id uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ap, ok := f.appointments[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	ap.Slot = f.slots[ap.SlotID]
	ap.Slot.Doctor = f.users[ap.Slot.DoctorID]
	ap.Patient = f.users[ap.PatientID]
	return &ap, nil
}

func (f *fakeRepo) ListAppointmentsByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.PatientID == patientID {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAppointmentsByDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Appointment
	for _, ap := range f.appointments {
		if f.slots[ap.SlotID].DoctorID == doctorID {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveCalendarEventIDs(ctx context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.appointments[ap.ID]
	if !ok {
		return httperr.ErrBusiness("appointment_not_found")
	}
	stored.GoogleEventIDDoctor = ap.GoogleEventIDDoctor
	stored.GoogleEventIDPatient = ap.GoogleEventIDPatient
	f.appointments[ap.ID] = stored
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)
