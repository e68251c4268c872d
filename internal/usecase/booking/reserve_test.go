package booking_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	ucbooking "github.com/BruksfildServices01/hms-scheduler/internal/usecase/booking"
)

func futureSlot(doctorID uint, startIn time.Duration) models.Slot {
	start := time.Now().Add(startIn)
	return models.Slot{
		Ref:       "slot-ref",
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	}
}

func TestReserveBooksOpenSlot(t *testing.T) {
	repo := newFakeRepo()
	doctor, patient := seedParties(repo)
	slot := repo.addSlot(futureSlot(doctor.ID, 24*time.Hour))

	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, newFakeCalendar(), &fakeNotifier{}), nil)

	ap, err := uc.Execute(context.Background(), ucbooking.ReserveInput{
		SlotID:    slot.ID,
		PatientID: patient.ID,
		Reason:    "Back pain",
	})
	require.NoError(t, err)

	assert.Equal(t, "confirmed", ap.Status)
	assert.Equal(t, slot.ID, ap.SlotID)
	assert.Equal(t, patient.ID, ap.PatientID)
	assert.NotEmpty(t, ap.Ref)

	stored := repo.slotByID(slot.ID)
	assert.True(t, stored.Booked)
	assert.Equal(t, slot.Version+1, stored.Version)
}

func TestReserveRejectsBookedSlot(t *testing.T) {
	repo := newFakeRepo()
	doctor, patient := seedParties(repo)
	s := futureSlot(doctor.ID, 24*time.Hour)
	s.Booked = true
	slot := repo.addSlot(s)

	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, newFakeCalendar(), &fakeNotifier{}), nil)

	_, err := uc.Execute(context.Background(), ucbooking.ReserveInput{SlotID: slot.ID, PatientID: patient.ID})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "slot_already_taken"))
}

func TestReserveRejectsStartedSlot(t *testing.T) {
	repo := newFakeRepo()
	doctor, patient := seedParties(repo)
	slot := repo.addSlot(futureSlot(doctor.ID, -time.Minute))

	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, newFakeCalendar(), &fakeNotifier{}), nil)

	_, err := uc.Execute(context.Background(), ucbooking.ReserveInput{SlotID: slot.ID, PatientID: patient.ID})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "slot_expired"))

	// rejection must not leave the slot half-booked
	assert.False(t, repo.slotByID(slot.ID).Booked)
}

func TestReserveUnknownSlot(t *testing.T) {
	repo := newFakeRepo()
	_, patient := seedParties(repo)

	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, newFakeCalendar(), &fakeNotifier{}), nil)

	_, err := uc.Execute(context.Background(), ucbooking.ReserveInput{SlotID: 99, PatientID: patient.ID})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "slot_not_found"))
}

func TestReserveValidatesInput(t *testing.T) {
	repo := newFakeRepo()
	doctor, patient := seedParties(repo)
	slot := repo.addSlot(futureSlot(doctor.ID, 24*time.Hour))

	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, newFakeCalendar(), &fakeNotifier{}), nil)

	cases := []ucbooking.ReserveInput{
		{SlotID: 0, PatientID: patient.ID},
		{SlotID: slot.ID, PatientID: 0},
		{SlotID: slot.ID, PatientID: patient.ID, Reason: strings.Repeat("x", 501)},
	}
	for _, in := range cases {
		_, err := uc.Execute(context.Background(), in)
		require.Error(t, err)
		assert.True(t, httperr.IsBusiness(err, "invalid_request"))
	}
}

// Many patients race for the same slot: exactly one reservation commits and
// everyone else gets slot_already_taken.
func TestReserveConcurrentSingleWinner(t *testing.T) {
	repo := newFakeRepo()
	doctor, _ := seedParties(repo)
	slot := repo.addSlot(futureSlot(doctor.ID, 24*time.Hour))

	const racers = 20
	for i := 0; i < racers; i++ {
		repo.addUser(models.User{ID: uint(100 + i), Name: "Patient", Email: "p@example.test", Role: "patient"})
	}

	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, newFakeCalendar(), &fakeNotifier{}), nil)

	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), ucbooking.ReserveInput{
				SlotID:    slot.ID,
				PatientID: uint(100 + i),
			})
		}(i)
	}
	wg.Wait()

	wins, taken := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case httperr.IsBusiness(err, "slot_already_taken"):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, taken)
	assert.True(t, repo.slotByID(slot.ID).Booked)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.appointments, 1)
}

// A failing calendar must not fail or undo the reservation, and the emails
// still go out.
func TestReserveSurvivesCalendarFailure(t *testing.T) {
	repo := newFakeRepo()
	doctor, patient := seedParties(repo)
	slot := repo.addSlot(futureSlot(doctor.ID, 24*time.Hour))

	cal := newFakeCalendar()
	cal.connect(doctor.ID)
	cal.connect(patient.ID)
	cal.createErr = assert.AnError

	note := &fakeNotifier{}
	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, cal, note), nil)

	ap, err := uc.Execute(context.Background(), ucbooking.ReserveInput{SlotID: slot.ID, PatientID: patient.ID})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return note.sentCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, repo.slotByID(slot.ID).Booked)
	stored := repo.appointmentByID(ap.ID)
	assert.Equal(t, "confirmed", stored.Status)
	assert.Empty(t, stored.GoogleEventIDDoctor)
	assert.Empty(t, stored.GoogleEventIDPatient)
}

// With working collaborators the event ids land on the stored appointment.
func TestReservePersistsCalendarEventIDs(t *testing.T) {
	repo := newFakeRepo()
	doctor, patient := seedParties(repo)
	slot := repo.addSlot(futureSlot(doctor.ID, 24*time.Hour))

	cal := newFakeCalendar()
	cal.connect(doctor.ID)
	cal.connect(patient.ID)

	uc := ucbooking.NewReserveAppointment(repo, newEffects(repo, cal, &fakeNotifier{}), nil)

	ap, err := uc.Execute(context.Background(), ucbooking.ReserveInput{SlotID: slot.ID, PatientID: patient.ID})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored := repo.appointmentByID(ap.ID)
		return stored.GoogleEventIDDoctor != "" && stored.GoogleEventIDPatient != ""
	}, 2*time.Second, 10*time.Millisecond)
}
