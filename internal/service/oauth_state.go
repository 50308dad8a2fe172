package service

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// StateCookieMaxAge bounds how long an issued state token stays valid; the
// browser drops the cookie after this window.
const StateCookieMaxAge = 600

// OAuthStateService issues and verifies the per-platform CSRF state token
// that rides along the authorization redirect. The token lives only in an
// httpOnly cookie scoped to the platform and is consumed exactly once.
type OAuthStateService interface {
	Issue() string
	Verify(receivedState, cookieState string) error
}

type oauthStateService struct{}

func NewOAuthStateService() OAuthStateService {
	return &oauthStateService{}
}

func (s *oauthStateService) Issue() string {
	return uuid.NewString()
}

// Verify compares the state echoed by the platform against the cookie value
// in constant time. An absent cookie behaves exactly like a mismatch.
func (s *oauthStateService) Verify(receivedState, cookieState string) error {
	if receivedState == "" || cookieState == "" {
		return ErrInvalidState
	}
	if subtle.ConstantTimeCompare([]byte(receivedState), []byte(cookieState)) != 1 {
		return ErrInvalidState
	}
	return nil
}

// StateCookieName is the per-platform cookie that carries the CSRF token.
func StateCookieName(platform string) string {
	return "oauth_state_" + platform
}
