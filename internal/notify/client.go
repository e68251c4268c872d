package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BruksfildServices01/hms-scheduler/internal/validators"
)

// Actions understood by the email service.
const (
	ActionSignupWelcome       = "SIGNUP_WELCOME"
	ActionBookingConfirmation = "BOOKING_CONFIRMATION"
	ActionBookingCancellation = "BOOKING_CANCELLATION"
)

var ErrNotConfigured = errors.New("email service URL not configured")

// Client posts notification payloads to the serverless email service.
// Fire-and-forget from the caller's perspective: a returned error is for
// logging, not for propagation.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Send posts {action, to_email, ...fields} as flat JSON.
func (c *Client) Send(ctx context.Context, action, toEmail string, fields map[string]string) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	if !validators.IsValidAddress(toEmail) {
		return fmt.Errorf("invalid recipient address %q", toEmail)
	}

	payload := map[string]string{
		"action":   action,
		"to_email": toEmail,
	}
	for k, v := range fields {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email service returned %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}
