package models

import (
	"time"
)

const (
	PlatformLinkedIn = "linkedin"
	PlatformTwitter  = "twitter"
	PlatformFacebook = "facebook"
)

const (
	AccountStatusActive  = "active"
	AccountStatusExpired = "expired"
)

// SocialAccount links a user to one publishing platform. Token columns hold
// vault ciphertext, never plaintext, and are not serialized to clients.
type SocialAccount struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Platform       string    `db:"platform" json:"platform"`
	ProfileID      string    `db:"profile_id" json:"profile_id"`
	ProfileName    string    `db:"profile_name" json:"profile_name"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	AccountStatus  string    `db:"account_status" json:"account_status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func IsValidPlatform(platform string) bool {
	switch platform {
	case PlatformLinkedIn, PlatformTwitter, PlatformFacebook:
		return true
	}
	return false
}
