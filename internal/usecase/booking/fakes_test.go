package booking_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/BruksfildServices01/hms-scheduler/internal/calendar"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/sideeffect"
)

type fakeCalendar struct {
	mu sync.Mutex

	creds     map[uint]*calendar.Credential
	createErr error
	created   int
	deleted   []string
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{creds: make(map[uint]*calendar.Credential)}
}

func (f *fakeCalendar) connect(userID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds[userID] = &calendar.Credential{UserID: userID, AccessToken: "tok"}
}

func (f *fakeCalendar) Credential(ctx context.Context, userID uint) (*calendar.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds[userID], nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, cred *calendar.Credential, in calendar.EventInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created++
	return fmt.Sprintf("evt-%d-%d", cred.UserID, f.created), nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, cred *calendar.Credential, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeNotifier struct {
	mu sync.Mutex

	sendErr error
	sent    []string // "<action> <to>"
}

func (f *fakeNotifier) Send(ctx context.Context, action, toEmail string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, action+" "+toEmail)
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newEffects(store *fakeRepo, cal *fakeCalendar, note *fakeNotifier) *sideeffect.Dispatcher {
	return sideeffect.NewDispatcher(store, cal, note, nil, "UTC")
}

func seedParties(f *fakeRepo) (doctor, patient models.User) {
	doctor = f.addUser(models.User{ID: 1, Name: "House", Email: "house@clinic.test", Role: "doctor"})
	patient = f.addUser(models.User{ID: 2, Name: "Ana", Email: "ana@example.test", Role: "patient"})
	return doctor, patient
}
