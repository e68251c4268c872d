package models

import "time"

// CalendarCredential holds the stored OAuth token pair for a user's Google
// Calendar. The authorization-code exchange that writes the first row lives
// in the identity service; this service only reads and refreshes.
type CalendarCredential struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	AccessToken  string `gorm:"size:2048" json:"-"`
	RefreshToken string `gorm:"size:512" json:"-"`

	TokenExpiry time.Time `json:"token_expiry"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
