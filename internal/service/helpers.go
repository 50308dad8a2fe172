package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

// platformPostError drains the response body into a PlatformPostError so the
// caller gets the platform's own error text for logging.
func platformPostError(platform string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &PlatformPostError{
		Platform:   platform,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// fetchImage downloads the raw bytes of an image referenced by a draft.
func fetchImage(ctx context.Context, client *http.Client, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &PlatformPostError{Platform: "image_fetch", StatusCode: resp.StatusCode, Body: imageURL}
	}

	return io.ReadAll(resp.Body)
}
