package sideeffect

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/hms-scheduler/internal/audit"
	"github.com/BruksfildServices01/hms-scheduler/internal/calendar"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/notify"
)

type Kind string

const (
	BookingCreated   Kind = "booking_created"
	BookingCancelled Kind = "booking_cancelled"
)

type Event struct {
	Kind          Kind
	AppointmentID uint
}

// Store is the slice of the booking repository the dispatcher needs.
type Store interface {
	GetAppointmentDetail(ctx context.Context, id uint) (*models.Appointment, error)
	SaveCalendarEventIDs(ctx context.Context, ap *models.Appointment) error
}

// Calendar is the remote calendar collaborator.
type Calendar interface {
	Credential(ctx context.Context, userID uint) (*calendar.Credential, error)
	CreateEvent(ctx context.Context, cred *calendar.Credential, in calendar.EventInput) (string, error)
	DeleteEvent(ctx context.Context, cred *calendar.Credential, eventID string) error
}

// Notifier is the email collaborator.
type Notifier interface {
	Send(ctx context.Context, action, toEmail string, fields map[string]string) error
}

// AuditSink records integration failures for observability.
type AuditSink interface {
	Dispatch(ev audit.Event)
}

// Dispatcher fans out the side effects of a committed booking or
// cancellation: remote calendar events and notification emails for both
// parties. Every call is individually fault-isolated; nothing here can fail
// a reservation that has already committed.
type Dispatcher struct {
	store    Store
	calendar Calendar
	notifier Notifier
	audit    AuditSink

	tz    string
	queue chan Event
}

const handleTimeout = 30 * time.Second

func NewDispatcher(store Store, cal Calendar, notifier Notifier, sink AuditSink, tz string) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		calendar: cal,
		notifier: notifier,
		audit:    sink,
		tz:       tz,
		queue:    make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		d.handle(ctx, ev)
		cancel()
	}
}

// Dispatch enqueues an event without ever blocking the caller.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// full queue: drop side effects rather than block the booking path
		log.Warn().
			Str("kind", string(ev.Kind)).
			Uint("appointment_id", ev.AppointmentID).
			Msg("side-effect queue full, dropping event")
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	ap, err := d.store.GetAppointmentDetail(ctx, ev.AppointmentID)
	if err != nil {
		log.Error().Err(err).
			Uint("appointment_id", ev.AppointmentID).
			Msg("side effect: load appointment failed")
		return
	}

	switch ev.Kind {
	case BookingCreated:
		d.handleCreated(ctx, ap)
	case BookingCancelled:
		d.handleCancelled(ctx, ap)
	}
}

// --------------------------------------------------
// BookingCreated
// --------------------------------------------------

func (d *Dispatcher) handleCreated(ctx context.Context, ap *models.Appointment) {

	doctor := ap.Slot.Doctor
	patient := ap.Patient

	if id, ok := d.createEventFor(ctx, ap, doctor.ID, calendar.EventInput{
		Summary:       fmt.Sprintf("Appointment with %s", patient.Name),
		Description:   eventDescription(ap, patient.Name),
		Start:         ap.Slot.StartTime,
		End:           ap.Slot.EndTime,
		Timezone:      d.tz,
		AttendeeEmail: patient.Email,
	}); ok {
		ap.GoogleEventIDDoctor = id
	}

	if id, ok := d.createEventFor(ctx, ap, patient.ID, calendar.EventInput{
		Summary:       fmt.Sprintf("Appointment with Dr. %s", doctor.Name),
		Description:   eventDescription(ap, "Dr. "+doctor.Name),
		Start:         ap.Slot.StartTime,
		End:           ap.Slot.EndTime,
		Timezone:      d.tz,
		AttendeeEmail: doctor.Email,
	}); ok {
		ap.GoogleEventIDPatient = id
	}

	if ap.GoogleEventIDDoctor != "" || ap.GoogleEventIDPatient != "" {
		if err := d.store.SaveCalendarEventIDs(ctx, ap); err != nil {
			// enrichment only, the appointment is valid without the ids
			log.Warn().Err(err).
				Uint("appointment_id", ap.ID).
				Msg("side effect: persist event ids failed")
		}
	}

	fields := notificationFields(ap)
	d.sendTo(ctx, ap, notify.ActionBookingConfirmation, patient.ID, patient.Email, fields)
	d.sendTo(ctx, ap, notify.ActionBookingConfirmation, doctor.ID, doctor.Email, fields)
}

// --------------------------------------------------
// BookingCancelled
// --------------------------------------------------

func (d *Dispatcher) handleCancelled(ctx context.Context, ap *models.Appointment) {

	doctor := ap.Slot.Doctor
	patient := ap.Patient

	d.deleteEventFor(ctx, ap, doctor.ID, ap.GoogleEventIDDoctor)
	d.deleteEventFor(ctx, ap, patient.ID, ap.GoogleEventIDPatient)

	fields := notificationFields(ap)
	d.sendTo(ctx, ap, notify.ActionBookingCancellation, patient.ID, patient.Email, fields)
	d.sendTo(ctx, ap, notify.ActionBookingCancellation, doctor.ID, doctor.Email, fields)
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func (d *Dispatcher) createEventFor(
	ctx context.Context,
	ap *models.Appointment,
	userID uint,
	in calendar.EventInput,
) (string, bool) {

	cred, err := d.calendar.Credential(ctx, userID)
	if err != nil {
		d.recordFailure(ap, "calendar_sync_failed", userID, err)
		return "", false
	}
	if cred == nil {
		// user never connected a calendar, nothing to do
		return "", false
	}

	id, err := d.calendar.CreateEvent(ctx, cred, in)
	if err != nil {
		d.recordFailure(ap, "calendar_sync_failed", userID, err)
		return "", false
	}

	return id, true
}

func (d *Dispatcher) deleteEventFor(
	ctx context.Context,
	ap *models.Appointment,
	userID uint,
	eventID string,
) {
	if eventID == "" {
		return
	}

	cred, err := d.calendar.Credential(ctx, userID)
	if err != nil || cred == nil {
		if err != nil {
			d.recordFailure(ap, "calendar_sync_failed", userID, err)
		}
		return
	}

	if err := d.calendar.DeleteEvent(ctx, cred, eventID); err != nil {
		d.recordFailure(ap, "calendar_sync_failed", userID, err)
	}
}

func (d *Dispatcher) sendTo(
	ctx context.Context,
	ap *models.Appointment,
	action string,
	recipientID uint,
	toEmail string,
	fields map[string]string,
) {
	if err := d.notifier.Send(ctx, action, toEmail, fields); err != nil {
		d.recordFailure(ap, "notification_failed", recipientID, err)
	}
}

func (d *Dispatcher) recordFailure(ap *models.Appointment, action string, userID uint, err error) {
	log.Warn().Err(err).
		Str("action", action).
		Uint("appointment_id", ap.ID).
		Uint("user_id", userID).
		Msg("side effect failed")

	if d.audit == nil {
		return
	}

	uid := userID
	apID := ap.ID
	d.audit.Dispatch(audit.Event{
		DoctorID: ap.Slot.DoctorID,
		UserID:   &uid,
		Action:   action,
		Entity:   "appointment",
		EntityID: &apID,
		Metadata: map[string]any{"error": err.Error()},
	})
}

func eventDescription(ap *models.Appointment, withName string) string {
	reason := ap.Reason
	if reason == "" {
		reason = "General Consultation"
	}
	return fmt.Sprintf("HMS Appointment\n\nWith: %s\nReason: %s", withName, reason)
}

func notificationFields(ap *models.Appointment) map[string]string {
	reason := ap.Reason
	if reason == "" {
		reason = "General Consultation"
	}

	return map[string]string{
		"patient_name":     ap.Patient.Name,
		"doctor_name":      "Dr. " + ap.Slot.Doctor.Name,
		"appointment_date": ap.Slot.StartTime.Format("Monday, January 2, 2006"),
		"appointment_time": fmt.Sprintf(
			"%s - %s",
			ap.Slot.StartTime.Format("3:04 PM"),
			ap.Slot.EndTime.Format("3:04 PM"),
		),
		"reason": reason,
	}
}
