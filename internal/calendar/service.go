package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Service talks to the Google Calendar API on behalf of connected users.
// Every call is fallible and non-authoritative: callers must treat a failure
// here as a logged fact, never as a reason to unwind a booking.
type Service struct {
	db  *gorm.DB
	rdb *redis.Client

	httpClient *http.Client

	clientID     string
	clientSecret string

	apiBaseURL string
	tokenURL   string
}

func NewService(db *gorm.DB, rdb *redis.Client, clientID, clientSecret string) *Service {
	return &Service{
		db:  db,
		rdb: rdb,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		clientID:     clientID,
		clientSecret: clientSecret,
		apiBaseURL:   "https://www.googleapis.com/calendar/v3",
		tokenURL:     "https://oauth2.googleapis.com/token",
	}
}

// EventInput describes a calendar event for one attendee pair.
type EventInput struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	Timezone      string
	AttendeeEmail string
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventAttendee struct {
	Email string `json:"email"`
}

type eventBody struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Start       eventDateTime   `json:"start"`
	End         eventDateTime   `json:"end"`
	Attendees   []eventAttendee `json:"attendees,omitempty"`
	Reminders   struct {
		UseDefault bool `json:"useDefault"`
		Overrides  []struct {
			Method  string `json:"method"`
			Minutes int    `json:"minutes"`
		} `json:"overrides"`
	} `json:"reminders"`
}

type eventResponse struct {
	ID string `json:"id"`
}

// CreateEvent inserts an event on the user's primary calendar and returns
// the remote event id.
func (s *Service) CreateEvent(ctx context.Context, cred *Credential, in EventInput) (string, error) {

	body := eventBody{
		Summary:     in.Summary,
		Description: in.Description,
		Start: eventDateTime{
			DateTime: in.Start.Format(time.RFC3339),
			TimeZone: in.Timezone,
		},
		End: eventDateTime{
			DateTime: in.End.Format(time.RFC3339),
			TimeZone: in.Timezone,
		},
	}
	if in.AttendeeEmail != "" {
		body.Attendees = []eventAttendee{{Email: in.AttendeeEmail}}
	}
	body.Reminders.UseDefault = false
	body.Reminders.Overrides = []struct {
		Method  string `json:"method"`
		Minutes int    `json:"minutes"`
	}{
		{Method: "email", Minutes: 24 * 60},
		{Method: "popup", Minutes: 30},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/calendars/primary/events?sendUpdates=all", s.apiBaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, string(raw))
	}

	var created eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("calendar API returned no event id")
	}

	return created.ID, nil
}

// DeleteEvent removes an event from the user's primary calendar. An event
// already gone remotely counts as success.
func (s *Service) DeleteEvent(ctx context.Context, cred *Credential, eventID string) error {
	if eventID == "" {
		return nil
	}

	url := fmt.Sprintf("%s/calendars/primary/events/%s?sendUpdates=all", s.apiBaseURL, eventID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar API returned %d", resp.StatusCode)
	}

	return nil
}
