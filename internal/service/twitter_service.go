package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/dorahq/dora/pkg/crypto"
	"golang.org/x/sync/errgroup"
)

const (
	TWITTER_API_URL    = "https://api.twitter.com"
	TWITTER_UPLOAD_URL = "https://upload.twitter.com"
)

type twitterService struct {
	vault      *crypto.Vault
	httpClient *http.Client
	apiURL     string
	uploadURL  string
}

func NewTwitterService(vault *crypto.Vault) Publisher {
	return &twitterService{
		vault:      vault,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiURL:     TWITTER_API_URL,
		uploadURL:  TWITTER_UPLOAD_URL,
	}
}

// Post uploads any images through the media endpoint first, then submits one
// tweet referencing the collected media ids.
func (s *twitterService) Post(ctx context.Context, acc *models.SocialAccount, content string, images []string) (string, error) {
	accessToken, err := s.vault.Decrypt(acc.AccessToken)
	if err != nil {
		slog.Info(err.Error())
		return "", ErrTokenCorrupted
	}

	var media *transfer.TweetMedia
	if len(images) > 0 {
		mediaIDs := make([]string, len(images))

		g, gctx := errgroup.WithContext(ctx)
		for i, imageURL := range images {
			i, imageURL := i, imageURL
			g.Go(func() error {
				mediaID, err := s.uploadImage(gctx, accessToken, imageURL)
				if err != nil {
					return err
				}
				mediaIDs[i] = mediaID
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}

		media = &transfer.TweetMedia{MediaIDs: mediaIDs}
	}

	payload := transfer.TweetRequest{
		Text:  content,
		Media: media,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/2/tweets", bytes.NewBuffer(jsonData))
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
		return "", platformPostError(models.PlatformTwitter, resp)
	}

	var result transfer.TweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return result.Data.ID, nil
}

// uploadImage downloads the image, base64-encodes it, and posts it to the
// v1.1 media upload endpoint to obtain a media id.
func (s *twitterService) uploadImage(ctx context.Context, accessToken, imageURL string) (string, error) {
	imageBytes, err := fetchImage(ctx, s.httpClient, imageURL)
	if err != nil {
		return "", err
	}

	data := url.Values{}
	data.Add("media_data", base64.StdEncoding.EncodeToString(imageBytes))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL+"/1.1/media/upload.json", strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", platformPostError(models.PlatformTwitter, resp)
	}

	var uploadData transfer.TwitterMediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadData); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return uploadData.MediaIDString, nil
}
