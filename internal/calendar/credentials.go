package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/hms-scheduler/internal/models"
	"github.com/BruksfildServices01/hms-scheduler/internal/timezone"
)

// Credential is a usable access token for one user's calendar.
type Credential struct {
	UserID      uint      `json:"user_id"`
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry"`
}

// expirySlack keeps us from handing out a token about to die mid-request.
const expirySlack = 30 * time.Second

func credentialKey(userID uint) string {
	return fmt.Sprintf("calendar:cred:%d", userID)
}

// Credential returns a valid access token for the user, refreshing it when
// expired. Returns (nil, nil) when the user never connected a calendar.
func (s *Service) Credential(ctx context.Context, userID uint) (*Credential, error) {

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, credentialKey(userID)).Result(); err == nil {
			var cred Credential
			if json.Unmarshal([]byte(raw), &cred) == nil &&
				cred.Expiry.After(timezone.Now().Add(expirySlack)) {
				return &cred, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			// cache trouble is not fatal, fall through to the store
		}
	}

	var stored models.CalendarCredential
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&stored).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if stored.RefreshToken == "" {
		return nil, nil
	}

	if !stored.TokenExpiry.After(timezone.Now().Add(expirySlack)) {
		if err := s.refresh(ctx, &stored); err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
	}

	cred := &Credential{
		UserID:      userID,
		AccessToken: stored.AccessToken,
		Expiry:      stored.TokenExpiry,
	}

	s.cache(ctx, cred)

	return cred, nil
}

func (s *Service) cache(ctx context.Context, cred *Credential) {
	if s.rdb == nil {
		return
	}

	ttl := time.Until(cred.Expiry) - expirySlack
	if ttl <= 0 {
		return
	}

	if b, err := json.Marshal(cred); err == nil {
		_ = s.rdb.Set(ctx, credentialKey(cred.UserID), b, ttl).Err()
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// refresh exchanges the stored refresh token for a fresh access token and
// persists it.
func (s *Service) refresh(ctx context.Context, stored *models.CalendarCredential) error {

	form := url.Values{}
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("refresh_token", stored.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return errors.New("token endpoint returned empty access_token")
	}

	stored.AccessToken = tok.AccessToken
	stored.TokenExpiry = timezone.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	if err := s.db.WithContext(ctx).
		Model(&models.CalendarCredential{}).
		Where("id = ?", stored.ID).
		Updates(map[string]any{
			"access_token": stored.AccessToken,
			"token_expiry": stored.TokenExpiry,
		}).Error; err != nil {
		return err
	}

	if s.rdb != nil {
		_ = s.rdb.Del(ctx, credentialKey(stored.UserID)).Err()
	}

	return nil
}
