package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueStateIsUnique(t *testing.T) {
	s := NewOAuthStateService()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		state := s.Issue()
		assert.NotEmpty(t, state)
		assert.False(t, seen[state], "state token issued twice")
		seen[state] = true
	}
}

func TestVerifyMatchingState(t *testing.T) {
	s := NewOAuthStateService()

	state := s.Issue()
	assert.NoError(t, s.Verify(state, state))
}

func TestVerifyMismatchedState(t *testing.T) {
	s := NewOAuthStateService()

	err := s.Verify(s.Issue(), s.Issue())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVerifyMissingCookie(t *testing.T) {
	s := NewOAuthStateService()

	assert.ErrorIs(t, s.Verify(s.Issue(), ""), ErrInvalidState)
	assert.ErrorIs(t, s.Verify("", s.Issue()), ErrInvalidState)
	assert.ErrorIs(t, s.Verify("", ""), ErrInvalidState)
}

func TestStateCookieNameIsPlatformScoped(t *testing.T) {
	assert.Equal(t, "oauth_state_linkedin", StateCookieName("linkedin"))
	assert.Equal(t, "oauth_state_twitter", StateCookieName("twitter"))
	assert.NotEqual(t, StateCookieName("twitter"), StateCookieName("facebook"))
}
