package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/dorahq/dora/configs"
	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVaultKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

type fakeAccountRepo struct {
	accounts map[string]*models.SocialAccount
	upserts  int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*models.SocialAccount)}
}

func (r *fakeAccountRepo) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	r.upserts++
	sa.ID = int64(r.upserts)
	r.accounts[sa.Platform] = sa
	return sa.ID, nil
}

func (r *fakeAccountRepo) GetByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	acc, ok := r.accounts[platform]
	if !ok || acc.UserID != userID {
		return nil, nil
	}
	return acc, nil
}

func (r *fakeAccountRepo) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	var out []*models.SocialAccount
	for _, acc := range r.accounts {
		if acc.UserID == userID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListExpired(ctx context.Context, asOf time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	for _, acc := range r.accounts {
		if acc.ID == id {
			acc.AccountStatus = status
		}
	}
	return nil
}

func (r *fakeAccountRepo) RemoveByPlatform(ctx context.Context, userID int64, platform string) error {
	delete(r.accounts, platform)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		LinkedIn: config.OAuthProvider{ClientID: "li-client", ClientSecret: "li-secret", Scope: "openid profile email w_member_social"},
		Twitter:  config.OAuthProvider{ClientID: "tw-client", ClientSecret: "tw-secret", Scope: "tweet.read tweet.write users.read offline.access"},
		Facebook: config.OAuthProvider{ClientID: "fb-client", ClientSecret: "fb-secret", Scope: "pages_manage_posts pages_read_engagement"},
		BaseURL:  "http://localhost:3000",
	}
}

func newCallbackService(t *testing.T, repo *fakeAccountRepo, tokenURL, profileURL string) *connectService {
	t.Helper()

	vault, err := crypto.NewVault(testVaultKey, true)
	require.NoError(t, err)

	cfg := testConfig()
	svc := NewConnectService(cfg, repo, NewOAuthStateService(), vault).(*connectService)
	for platform := range svc.tokenURLs {
		svc.tokenURLs[platform] = tokenURL
		svc.profileURLs[platform] = profileURL
	}
	return svc
}

func TestCallbackProviderDenied(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
	}))
	defer tokenSrv.Close()

	svc := newCallbackService(t, newFakeAccountRepo(), tokenSrv.URL, tokenSrv.URL)

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:      models.PlatformTwitter,
		ProviderError: "access_denied",
		Code:          "code-1",
		State:         "state-1",
		CookieState:   "state-1",
		UserID:        7,
	})

	assert.False(t, res.Success)
	assert.Equal(t, ReasonProviderDenied, res.Reason)
	assert.Equal(t, int32(0), tokenCalls.Load())
}

func TestCallbackMissingParams(t *testing.T) {
	svc := newCallbackService(t, newFakeAccountRepo(), "http://unused", "http://unused")

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform: models.PlatformLinkedIn,
		UserID:   7,
	})

	assert.False(t, res.Success)
	assert.Equal(t, ReasonMissingParams, res.Reason)
}

func TestCallbackInvalidStateNeverExchangesCode(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
	}))
	defer tokenSrv.Close()

	svc := newCallbackService(t, newFakeAccountRepo(), tokenSrv.URL, tokenSrv.URL)

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:    models.PlatformLinkedIn,
		Code:        "code-1",
		State:       "forged",
		CookieState: "issued",
		UserID:      7,
	})

	assert.False(t, res.Success)
	assert.Equal(t, ReasonInvalidState, res.Reason)
	assert.Equal(t, int32(0), tokenCalls.Load())
}

func TestCallbackNoUserSession(t *testing.T) {
	svc := newCallbackService(t, newFakeAccountRepo(), "http://unused", "http://unused")

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:    models.PlatformLinkedIn,
		Code:        "code-1",
		State:       "state-1",
		CookieState: "state-1",
	})

	assert.False(t, res.Success)
	assert.Equal(t, ReasonNoUserSession, res.Reason)
}

func TestCallbackTokenExchangeFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenSrv.Close()

	repo := newFakeAccountRepo()
	svc := newCallbackService(t, repo, tokenSrv.URL, tokenSrv.URL)

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:    models.PlatformTwitter,
		Code:        "expired-code",
		State:       "state-1",
		CookieState: "state-1",
		UserID:      7,
	})

	assert.False(t, res.Success)
	assert.Equal(t, ReasonTokenExchange, res.Reason)
	assert.Zero(t, repo.upserts)
}

func TestCallbackLinkedInSuccess(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "code-1", r.FormValue("code"))
		assert.Equal(t, "li-client", r.FormValue("client_id"))
		assert.Equal(t, "http://localhost:3000/auth/callback/linkedin", r.FormValue("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"li-access","expires_in":5184000}`))
	}))
	defer tokenSrv.Close()

	profileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer li-access", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"li-sub-1","given_name":"Ada","family_name":"Lovelace"}`))
	}))
	defer profileSrv.Close()

	repo := newFakeAccountRepo()
	svc := newCallbackService(t, repo, tokenSrv.URL, profileSrv.URL)

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:    models.PlatformLinkedIn,
		Code:        "code-1",
		State:       "state-1",
		CookieState: "state-1",
		UserID:      7,
	})

	require.True(t, res.Success)
	assert.Empty(t, res.Reason)

	acc := repo.accounts[models.PlatformLinkedIn]
	require.NotNil(t, acc)
	assert.Equal(t, int64(7), acc.UserID)
	assert.Equal(t, "li-sub-1", acc.ProfileID)
	assert.Equal(t, "Ada Lovelace", acc.ProfileName)
	assert.False(t, acc.TokenExpiresAt.IsZero())

	// The stored token is sealed, never the raw value.
	assert.NotEqual(t, "li-access", acc.AccessToken)
	assert.True(t, strings.Contains(acc.AccessToken, ":"))

	vault, err := crypto.NewVault(testVaultKey, true)
	require.NoError(t, err)
	plaintext, err := vault.Decrypt(acc.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "li-access", plaintext)
}

func TestCallbackTwitterProfileNormalization(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tw-access","refresh_token":"tw-refresh","expires_in":7200}`))
	}))
	defer tokenSrv.Close()

	profileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"12345","name":"Dora","username":"dorahq"}}`))
	}))
	defer profileSrv.Close()

	repo := newFakeAccountRepo()
	svc := newCallbackService(t, repo, tokenSrv.URL, profileSrv.URL)

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:    models.PlatformTwitter,
		Code:        "code-1",
		State:       "state-1",
		CookieState: "state-1",
		UserID:      7,
	})

	require.True(t, res.Success)

	acc := repo.accounts[models.PlatformTwitter]
	require.NotNil(t, acc)
	assert.Equal(t, "12345", acc.ProfileID)
	assert.Equal(t, "Dora", acc.ProfileName)
	assert.NotEmpty(t, acc.RefreshToken)
	assert.NotEqual(t, "tw-refresh", acc.RefreshToken)
}

func TestCallbackProfileFetchFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fb-access"}`))
	}))
	defer tokenSrv.Close()

	profileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer profileSrv.Close()

	repo := newFakeAccountRepo()
	svc := newCallbackService(t, repo, tokenSrv.URL, profileSrv.URL)

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:    models.PlatformFacebook,
		Code:        "code-1",
		State:       "state-1",
		CookieState: "state-1",
		UserID:      7,
	})

	assert.False(t, res.Success)
	assert.Equal(t, ReasonProfileFetch, res.Reason)
	assert.Zero(t, repo.upserts)
}

func TestCallbackReplacesExistingAccount(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fb-access"}`))
	}))
	defer tokenSrv.Close()

	profileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"fb-2","name":"New Profile"}`))
	}))
	defer profileSrv.Close()

	repo := newFakeAccountRepo()
	repo.accounts[models.PlatformFacebook] = &models.SocialAccount{ID: 1, UserID: 7, Platform: models.PlatformFacebook, ProfileID: "fb-1"}

	svc := newCallbackService(t, repo, tokenSrv.URL, profileSrv.URL)

	res := svc.HandleCallback(context.Background(), CallbackInput{
		Platform:    models.PlatformFacebook,
		Code:        "code-2",
		State:       "state-1",
		CookieState: "state-1",
		UserID:      7,
	})

	require.True(t, res.Success)
	assert.Equal(t, "fb-2", repo.accounts[models.PlatformFacebook].ProfileID)
}
