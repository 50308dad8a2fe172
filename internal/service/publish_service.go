package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/repository"
)

// Publisher is the common publishing contract all platform variants
// implement: post content plus images, get back the platform's post id.
// Calls are not idempotent and are never retried here; a failure may leave
// media already uploaded on the platform.
type Publisher interface {
	Post(ctx context.Context, acc *models.SocialAccount, content string, images []string) (string, error)
}

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrPostNotFound  = errors.New("post not found")
	ErrNotOwner      = errors.New("resource does not belong to user")
)

type PublishService interface {
	PublishDraft(ctx context.Context, userID, draftID int64) (*models.Post, error)
	Repost(ctx context.Context, userID, postID int64) (*models.Post, error)
	ListPosts(ctx context.Context, userID int64) ([]*models.Post, error)
}

type publishService struct {
	dr         repository.DraftRepository
	pr         repository.PostRepository
	sa         repository.SocialAccountRepository
	publishers map[string]Publisher
}

func NewPublishService(
	dr repository.DraftRepository,
	pr repository.PostRepository,
	sa repository.SocialAccountRepository,
	publishers map[string]Publisher) PublishService {
	return &publishService{
		dr:         dr,
		pr:         pr,
		sa:         sa,
		publishers: publishers,
	}
}

// PublishDraft resolves the user's account for the draft's platform,
// dispatches to the matching platform variant, marks the draft posted, and
// records the published post.
func (s *publishService) PublishDraft(ctx context.Context, userID, draftID int64) (*models.Post, error) {
	draft, err := s.dr.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	if draft.UserID != userID {
		return nil, ErrNotOwner
	}

	platformPostID, err := s.dispatch(ctx, userID, draft.Platform, draft.Content, draft.Images)
	if err != nil {
		return nil, err
	}

	if err := s.dr.UpdateStatus(ctx, models.DraftStatusPosted, draft.ID); err != nil {
		return nil, fmt.Errorf("failed to update draft status: %w", err)
	}

	post := &models.Post{
		UserID:         userID,
		DraftID:        draft.ID,
		Platform:       draft.Platform,
		Content:        draft.Content,
		Images:         draft.Images,
		PlatformPostID: platformPostID,
		PublishedAt:    time.Now(),
	}

	postID, err := s.pr.Create(ctx, nil, post)
	if err != nil {
		return nil, err
	}
	post.ID = postID

	return post, nil
}

// Repost publishes the content of an already-published post again. The
// platform will assign a fresh post id; duplicates are the caller's concern.
func (s *publishService) Repost(ctx context.Context, userID, postID int64) (*models.Post, error) {
	original, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, ErrPostNotFound
	}
	if original.UserID != userID {
		return nil, ErrNotOwner
	}

	platformPostID, err := s.dispatch(ctx, userID, original.Platform, original.Content, original.Images)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:         userID,
		DraftID:        original.DraftID,
		Platform:       original.Platform,
		Content:        original.Content,
		Images:         original.Images,
		PlatformPostID: platformPostID,
		PublishedAt:    time.Now(),
	}

	id, err := s.pr.Create(ctx, nil, post)
	if err != nil {
		return nil, err
	}
	post.ID = id

	return post, nil
}

func (s *publishService) ListPosts(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.pr.ListByUserID(ctx, userID)
}

func (s *publishService) dispatch(ctx context.Context, userID int64, platform, content string, images []string) (string, error) {
	publisher, ok := s.publishers[platform]
	if !ok {
		return "", ErrInvalidPlatform
	}

	account, err := s.sa.GetByUserPlatform(ctx, userID, platform)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", &AccountNotConnectedError{Platform: platform}
	}

	platformPostID, err := publisher.Post(ctx, account, content, images)
	if err != nil {
		slog.Info("publish failed", "platform", platform, "user_id", userID, "err", err.Error())
		return "", err
	}

	return platformPostID, nil
}
