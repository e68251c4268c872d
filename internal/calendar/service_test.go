package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(apiURL string) *Service {
	s := NewService(nil, nil, "client-id", "client-secret")
	s.apiBaseURL = apiURL
	return s
}

func TestCreateEventPostsToPrimaryCalendar(t *testing.T) {
	var gotAuth string
	var gotBody eventBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]string{"id": "evt-123"})
	}))
	defer srv.Close()

	start := time.Date(2030, 6, 15, 9, 0, 0, 0, time.UTC)
	cred := &Credential{UserID: 1, AccessToken: "tok-abc"}

	id, err := testService(srv.URL).CreateEvent(context.Background(), cred, EventInput{
		Summary:       "Appointment with Ana",
		Description:   "Back pain",
		Start:         start,
		End:           start.Add(30 * time.Minute),
		Timezone:      "UTC",
		AttendeeEmail: "ana@example.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "evt-123", id)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Equal(t, "Appointment with Ana", gotBody.Summary)
	assert.Equal(t, start.Format(time.RFC3339), gotBody.Start.DateTime)
	assert.Equal(t, "UTC", gotBody.Start.TimeZone)
	require.Len(t, gotBody.Attendees, 1)
	assert.Equal(t, "ana@example.test", gotBody.Attendees[0].Email)
	assert.False(t, gotBody.Reminders.UseDefault)
}

func TestCreateEventSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testService(srv.URL).CreateEvent(context.Background(), &Credential{AccessToken: "stale"}, EventInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateEventRejectsEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := testService(srv.URL).CreateEvent(context.Background(), &Credential{AccessToken: "tok"}, EventInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no event id")
}

func TestDeleteEventTreatsGoneAsSuccess(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotFound, http.StatusGone} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/calendars/primary/events/evt-123", r.URL.Path)
			w.WriteHeader(status)
		}))

		err := testService(srv.URL).DeleteEvent(context.Background(), &Credential{AccessToken: "tok"}, "evt-123")
		assert.NoError(t, err, "status %d", status)
		srv.Close()
	}
}

func TestDeleteEventSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := testService(srv.URL).DeleteEvent(context.Background(), &Credential{AccessToken: "tok"}, "evt-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDeleteEventSkipsEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty event id")
	}))
	defer srv.Close()

	err := testService(srv.URL).DeleteEvent(context.Background(), &Credential{AccessToken: "tok"}, "")
	assert.NoError(t, err)
}
