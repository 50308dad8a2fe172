package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/dorahq/dora/pkg/crypto"
	"golang.org/x/sync/errgroup"
)

const FACEBOOK_GRAPH_URL = "https://graph.facebook.com/v18.0"

type facebookService struct {
	vault      *crypto.Vault
	httpClient *http.Client
	graphURL   string
}

func NewFacebookService(vault *crypto.Vault) Publisher {
	return &facebookService{
		vault:      vault,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		graphURL:   FACEBOOK_GRAPH_URL,
	}
}

// Post publishes to the first page the user manages; the Graph API does not
// allow feed posts on personal profiles. Images go up as unpublished photos
// first and the feed post references them via attached_media.
func (s *facebookService) Post(ctx context.Context, acc *models.SocialAccount, content string, images []string) (string, error) {
	accessToken, err := s.vault.Decrypt(acc.AccessToken)
	if err != nil {
		slog.Info(err.Error())
		return "", ErrTokenCorrupted
	}

	page, err := s.firstPage(ctx, accessToken)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Add("message", content)
	params.Add("access_token", page.AccessToken)

	if len(images) > 0 {
		photoIDs := make([]string, len(images))

		g, gctx := errgroup.WithContext(ctx)
		for i, imageURL := range images {
			i, imageURL := i, imageURL
			g.Go(func() error {
				photoID, err := s.uploadPhoto(gctx, page, imageURL)
				if err != nil {
					return err
				}
				photoIDs[i] = photoID
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}

		attached := make([]transfer.FacebookAttachedMedia, 0, len(photoIDs))
		for _, id := range photoIDs {
			attached = append(attached, transfer.FacebookAttachedMedia{MediaFbid: id})
		}
		attachedJSON, err := json.Marshal(attached)
		if err != nil {
			slog.Info(err.Error())
			return "", err
		}
		params.Add("attached_media", string(attachedJSON))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.graphURL+"/"+page.ID+"/feed?"+params.Encode(), nil)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", platformPostError(models.PlatformFacebook, resp)
	}

	var postData transfer.FacebookFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&postData); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return postData.ID, nil
}

func (s *facebookService) firstPage(ctx context.Context, accessToken string) (*transfer.FacebookPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphURL+"/me/accounts?access_token="+url.QueryEscape(accessToken), nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, platformPostError(models.PlatformFacebook, resp)
	}

	var pagesData transfer.FacebookPagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&pagesData); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if len(pagesData.Data) == 0 {
		return nil, ErrNoFacebookPages
	}

	return &pagesData.Data[0], nil
}

// uploadPhoto creates an unpublished photo on the page; the Graph API pulls
// the image from the given URL itself.
func (s *facebookService) uploadPhoto(ctx context.Context, page *transfer.FacebookPage, imageURL string) (string, error) {
	params := url.Values{}
	params.Add("url", imageURL)
	params.Add("published", "false")
	params.Add("access_token", page.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.graphURL+"/"+page.ID+"/photos?"+params.Encode(), nil)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", platformPostError(models.PlatformFacebook, resp)
	}

	var photoData transfer.FacebookPhotoResponse
	if err := json.NewDecoder(resp.Body).Decode(&photoData); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return photoData.ID, nil
}
