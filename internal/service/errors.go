package service

import (
	"errors"
	"fmt"
)

// Failure reasons surfaced to the browser as a coarse redirect code.
// Internal error detail is logged server-side only.
const (
	ReasonProviderDenied = "provider_denied"
	ReasonMissingParams  = "missing_params"
	ReasonInvalidState   = "invalid_state"
	ReasonNoUserSession  = "no_user_session"
	ReasonTokenExchange  = "token_exchange_error"
	ReasonProfileFetch   = "profile_error"
	ReasonServerError    = "server_error"
)

var (
	// ErrInvalidState signals a CSRF state mismatch or a missing state
	// cookie. The flow must abort without touching the token endpoint.
	ErrInvalidState = errors.New("oauth state mismatch")

	// ErrTokenCorrupted means a stored access token no longer decrypts.
	// The only recovery is reconnecting the account.
	ErrTokenCorrupted = errors.New("stored access token is corrupted")

	ErrInvalidPlatform = errors.New("invalid platform")

	ErrNoFacebookPages = errors.New("no facebook pages found")
)

// AccountNotConnectedError is returned when a publish targets a platform the
// user has not linked.
type AccountNotConnectedError struct {
	Platform string
}

func (e *AccountNotConnectedError) Error() string {
	return fmt.Sprintf("%s account not connected", e.Platform)
}

// TokenExchangeError wraps a non-2xx reply from a platform token endpoint.
type TokenExchangeError struct {
	Platform   string
	StatusCode int
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed with status %d", e.Platform, e.StatusCode)
}

// ProfileFetchError wraps a failed profile lookup after a token exchange.
type ProfileFetchError struct {
	Platform   string
	StatusCode int
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("%s profile fetch failed with status %d", e.Platform, e.StatusCode)
}

// PlatformPostError is any non-success HTTP reply during a publish, at any
// step. Media already uploaded before the failure is not rolled back, so a
// failed post means "unknown remote state", not "no effect".
type PlatformPostError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *PlatformPostError) Error() string {
	return fmt.Sprintf("posting to %s failed with status %d", e.Platform, e.StatusCode)
}
