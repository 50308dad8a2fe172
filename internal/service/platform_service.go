package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	config "github.com/dorahq/dora/configs"
	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/repository"
	"github.com/dorahq/dora/internal/transfer"
)

const (
	LINKEDIN_AUTH_URL = "https://www.linkedin.com/oauth/v2/authorization"
	TWITTER_AUTH_URL  = "https://twitter.com/i/oauth2/authorize"
	FACEBOOK_AUTH_URL = "https://www.facebook.com/v18.0/dialog/oauth"
)

type PlatformService interface {
	GetAuthURL(ctx context.Context, platform, state string) (string, error)
	List(ctx context.Context, userID int64) ([]*transfer.AccountInfo, error)
	Disconnect(ctx context.Context, userID int64, platform string) error
}

type platformService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewPlatformService(cfg config.Config, sa repository.SocialAccountRepository) PlatformService {
	return &platformService{
		cfg: cfg,
		sa:  sa,
	}
}

// GetAuthURL builds the platform authorization URL with the CSRF state token
// embedded as a query parameter.
func (s *platformService) GetAuthURL(ctx context.Context, platform, state string) (string, error) {
	provider, ok := s.cfg.Provider(platform)
	if !ok {
		return "", ErrInvalidPlatform
	}

	var authURL string
	switch platform {
	case models.PlatformLinkedIn:
		authURL = LINKEDIN_AUTH_URL
	case models.PlatformTwitter:
		authURL = TWITTER_AUTH_URL
	case models.PlatformFacebook:
		authURL = FACEBOOK_AUTH_URL
	}

	params := url.Values{}
	params.Add("client_id", provider.ClientID)
	params.Add("redirect_uri", s.cfg.RedirectURI(platform))
	params.Add("scope", provider.Scope)
	params.Add("response_type", "code")
	params.Add("state", state)

	return fmt.Sprintf("%s?%s", authURL, params.Encode()), nil
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*transfer.AccountInfo, error) {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.sa.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting social accounts")
	}

	infos := make([]*transfer.AccountInfo, 0, len(accounts))
	for _, acc := range accounts {
		infos = append(infos, &transfer.AccountInfo{
			ID:            acc.ID,
			Platform:      acc.Platform,
			ProfileID:     acc.ProfileID,
			ProfileName:   acc.ProfileName,
			HasToken:      acc.AccessToken != "",
			AccountStatus: acc.AccountStatus,
		})
	}

	return infos, nil
}

func (s *platformService) Disconnect(ctx context.Context, userID int64, platform string) error {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if !models.IsValidPlatform(platform) {
		return ErrInvalidPlatform
	}

	err = s.sa.RemoveByPlatform(ctx, userID, platform)
	if err != nil {
		return fmt.Errorf("Error removing account Info")
	}

	return nil
}
