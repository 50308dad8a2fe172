package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/dorahq/dora/pkg/crypto"
	"golang.org/x/sync/errgroup"
)

const LINKEDIN_API_URL = "https://api.linkedin.com"

type linkedinService struct {
	vault      *crypto.Vault
	httpClient *http.Client
	apiURL     string
}

func NewLinkedInService(vault *crypto.Vault) Publisher {
	return &linkedinService{
		vault:      vault,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiURL:     LINKEDIN_API_URL,
	}
}

// Post publishes a UGC share. Image uploads are fanned out concurrently and
// all asset URNs must be resolved before the single post submission; the UGC
// payload is invalid without them.
func (s *linkedinService) Post(ctx context.Context, acc *models.SocialAccount, content string, images []string) (string, error) {
	accessToken, err := s.vault.Decrypt(acc.AccessToken)
	if err != nil {
		slog.Info(err.Error())
		return "", ErrTokenCorrupted
	}

	authorURN, err := s.authorURN(ctx, accessToken)
	if err != nil {
		return "", err
	}

	shareContent := transfer.LinkedInShareContent{
		ShareCommentary:    transfer.LinkedInShareText{Text: content},
		ShareMediaCategory: "NONE",
	}

	if len(images) > 0 {
		mediaAssets := make([]transfer.LinkedInShareMedia, len(images))

		g, gctx := errgroup.WithContext(ctx)
		for i, imageURL := range images {
			i, imageURL := i, imageURL
			g.Go(func() error {
				asset, err := s.uploadImage(gctx, accessToken, authorURN, imageURL)
				if err != nil {
					return err
				}
				mediaAssets[i] = transfer.LinkedInShareMedia{
					Status: "READY",
					Media:  asset,
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}

		shareContent.ShareMediaCategory = "IMAGE"
		shareContent.Media = mediaAssets
	}

	payload := transfer.LinkedInUGCPost{
		Author:         authorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]transfer.LinkedInShareContent{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/v2/ugcPosts", bytes.NewBuffer(jsonData))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", platformPostError(models.PlatformLinkedIn, resp)
	}

	var result transfer.LinkedInUGCPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return result.ID, nil
}

func (s *linkedinService) authorURN(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/v2/userinfo", nil)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", platformPostError(models.PlatformLinkedIn, resp)
	}

	var userInfo transfer.LinkedInUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("urn:li:person:%s", userInfo.Sub), nil
}

// uploadImage registers an upload session, downloads the source image, PUTs
// the bytes to the returned upload URL, and returns the media asset URN.
func (s *linkedinService) uploadImage(ctx context.Context, accessToken, authorURN, imageURL string) (string, error) {
	registerRequest := transfer.LinkedInRegisterUploadRequest{
		RegisterUploadRequest: transfer.LinkedInRegisterUpload{
			Recipes: []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			Owner:   authorURN,
			ServiceRelationships: []transfer.LinkedInServiceRelationship{
				{
					RelationshipType: "OWNER",
					Identifier:       "urn:li:userGeneratedContent",
				},
			},
		},
	}

	jsonData, err := json.Marshal(registerRequest)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/v2/assets?action=registerUpload", bytes.NewBuffer(jsonData))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", platformPostError(models.PlatformLinkedIn, resp)
	}

	var registerData transfer.LinkedInRegisterUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&registerData); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	imageBytes, err := fetchImage(ctx, s.httpClient, imageURL)
	if err != nil {
		return "", err
	}

	uploadURL := registerData.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	uploadReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(imageBytes))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	uploadReq.Header.Set("Authorization", "Bearer "+accessToken)

	uploadResp, err := s.httpClient.Do(uploadReq)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer uploadResp.Body.Close()

	if !isSuccess(uploadResp.StatusCode) {
		return "", platformPostError(models.PlatformLinkedIn, uploadResp)
	}

	return registerData.Value.Asset, nil
}
