package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/dorahq/dora/configs"
	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/repository"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/dorahq/dora/pkg/crypto"
)

const (
	LINKEDIN_TOKEN_URL = "https://www.linkedin.com/oauth/v2/accessToken"
	TWITTER_TOKEN_URL  = "https://api.twitter.com/2/oauth2/token"
	FACEBOOK_TOKEN_URL = "https://graph.facebook.com/v18.0/oauth/access_token"

	LINKEDIN_USERINFO_URL = "https://api.linkedin.com/v2/userinfo"
	TWITTER_ME_URL        = "https://api.twitter.com/2/users/me"
	FACEBOOK_ME_URL       = "https://graph.facebook.com/me"
)

// exchangeState tracks how far a callback invocation got before completing
// or failing. Each invocation is independent; nothing is shared across
// callbacks beyond the state cookie the handler already consumed.
type exchangeState int

const (
	exchangeReceived exchangeState = iota
	exchangeStateVerified
	exchangeTokenExchanged
	exchangeProfileFetched
	exchangeAccountPersisted
	exchangeCompleted
)

func (s exchangeState) String() string {
	switch s {
	case exchangeReceived:
		return "received"
	case exchangeStateVerified:
		return "state_verified"
	case exchangeTokenExchanged:
		return "token_exchanged"
	case exchangeProfileFetched:
		return "profile_fetched"
	case exchangeAccountPersisted:
		return "account_persisted"
	case exchangeCompleted:
		return "completed"
	}
	return "unknown"
}

// CallbackInput carries everything the handler extracted from the provider
// redirect: query parameters, the state cookie, and the session user.
type CallbackInput struct {
	Platform      string
	Code          string
	State         string
	ProviderError string
	CookieState   string
	UserID        int64
}

// CallbackResult is what the handler turns into a browser redirect. Reason is
// a coarse code from the errors taxonomy, never internal error text.
type CallbackResult struct {
	Platform string
	Success  bool
	Reason   string
}

type ConnectService interface {
	HandleCallback(ctx context.Context, in CallbackInput) CallbackResult
}

type connectService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	states OAuthStateService
	vault  *crypto.Vault

	httpClient *http.Client

	// Overridable in tests; default to the real platform endpoints.
	tokenURLs   map[string]string
	profileURLs map[string]string
}

func NewConnectService(cfg config.Config, sa repository.SocialAccountRepository, states OAuthStateService, vault *crypto.Vault) ConnectService {
	return &connectService{
		cfg:        cfg,
		sa:         sa,
		states:     states,
		vault:      vault,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokenURLs: map[string]string{
			models.PlatformLinkedIn: LINKEDIN_TOKEN_URL,
			models.PlatformTwitter:  TWITTER_TOKEN_URL,
			models.PlatformFacebook: FACEBOOK_TOKEN_URL,
		},
		profileURLs: map[string]string{
			models.PlatformLinkedIn: LINKEDIN_USERINFO_URL,
			models.PlatformTwitter:  TWITTER_ME_URL,
			models.PlatformFacebook: FACEBOOK_ME_URL,
		},
	}
}

func (s *connectService) HandleCallback(ctx context.Context, in CallbackInput) CallbackResult {
	state := exchangeReceived

	fail := func(reason string, err error) CallbackResult {
		if err != nil {
			slog.Info("oauth callback failed", "platform", in.Platform, "state", state.String(), "reason", reason, "err", err.Error())
		} else {
			slog.Info("oauth callback failed", "platform", in.Platform, "state", state.String(), "reason", reason)
		}
		return CallbackResult{Platform: in.Platform, Reason: reason}
	}

	if in.ProviderError != "" {
		return fail(ReasonProviderDenied, nil)
	}
	if in.Code == "" || in.State == "" {
		return fail(ReasonMissingParams, nil)
	}
	if err := s.states.Verify(in.State, in.CookieState); err != nil {
		return fail(ReasonInvalidState, err)
	}
	state = exchangeStateVerified

	if in.UserID == 0 {
		return fail(ReasonNoUserSession, nil)
	}

	tokenResponse, err := s.exchangeCodeForToken(ctx, in.Platform, in.Code)
	if err != nil {
		return fail(ReasonTokenExchange, err)
	}
	state = exchangeTokenExchanged

	profile, err := s.fetchProfile(ctx, in.Platform, tokenResponse.AccessToken)
	if err != nil {
		return fail(ReasonProfileFetch, err)
	}
	state = exchangeProfileFetched

	encryptedAccessToken, err := s.vault.Encrypt(tokenResponse.AccessToken)
	if err != nil {
		return fail(ReasonServerError, err)
	}

	var encryptedRefreshToken string
	if tokenResponse.RefreshToken != "" {
		encryptedRefreshToken, err = s.vault.Encrypt(tokenResponse.RefreshToken)
		if err != nil {
			return fail(ReasonServerError, err)
		}
	}

	accountInfo := &models.SocialAccount{
		UserID:       in.UserID,
		Platform:     in.Platform,
		ProfileID:    profile.ID,
		ProfileName:  profile.Name,
		AccessToken:  encryptedAccessToken,
		RefreshToken: encryptedRefreshToken,
	}
	if tokenResponse.ExpiresIn > 0 {
		accountInfo.TokenExpiresAt = GetExpiresAt(tokenResponse.ExpiresIn)
	}

	if _, err := s.sa.Upsert(ctx, accountInfo); err != nil {
		return fail(ReasonServerError, err)
	}
	state = exchangeAccountPersisted

	state = exchangeCompleted
	slog.Info("oauth account linked", "platform", in.Platform, "state", state.String())

	return CallbackResult{Platform: in.Platform, Success: true}
}

func (s *connectService) exchangeCodeForToken(ctx context.Context, platform, code string) (*transfer.TokenResponse, error) {
	provider, ok := s.cfg.Provider(platform)
	if !ok {
		return nil, ErrInvalidPlatform
	}

	data := url.Values{}
	data.Add("grant_type", "authorization_code")
	data.Add("code", code)
	data.Add("redirect_uri", s.cfg.RedirectURI(platform))
	data.Add("client_id", provider.ClientID)
	data.Add("client_secret", provider.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURLs[platform], strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TokenExchangeError{Platform: platform, StatusCode: resp.StatusCode}
	}

	var tokenResponse transfer.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

// fetchProfile maps each platform's profile schema onto the common
// {id, name} shape. Missing name parts are composed best-effort, never a
// hard failure.
func (s *connectService) fetchProfile(ctx context.Context, platform, accessToken string) (*transfer.Profile, error) {
	profileURL := s.profileURLs[platform]
	if platform == models.PlatformFacebook {
		profileURL += "?fields=id,name"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProfileFetchError{Platform: platform, StatusCode: resp.StatusCode}
	}

	switch platform {
	case models.PlatformLinkedIn:
		var userInfo transfer.LinkedInUserInfo
		if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		name := userInfo.Name
		if name == "" {
			name = strings.TrimSpace(userInfo.GivenName + " " + userInfo.FamilyName)
		}
		return &transfer.Profile{ID: userInfo.Sub, Name: name}, nil

	case models.PlatformTwitter:
		var userResponse transfer.TwitterUserResponse
		if err := json.NewDecoder(resp.Body).Decode(&userResponse); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		return &transfer.Profile{ID: userResponse.Data.ID, Name: userResponse.Data.Name}, nil

	case models.PlatformFacebook:
		var user transfer.FacebookUser
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		return &transfer.Profile{ID: user.ID, Name: user.Name}, nil
	}

	return nil, ErrInvalidPlatform
}
