package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/repository"
	"github.com/dorahq/dora/internal/transfer"
)

type DraftService interface {
	Create(ctx context.Context, userID int64, dc *transfer.DraftCreation) (int64, error)
	Get(ctx context.Context, userID, draftID int64) (*models.Draft, error)
	List(ctx context.Context, userID int64) ([]*models.Draft, error)
	UpdateStatus(ctx context.Context, userID, draftID int64, status string) error
}

type draftService struct {
	dr repository.DraftRepository
}

func NewDraftService(dr repository.DraftRepository) DraftService {
	return &draftService{dr: dr}
}

func (s *draftService) Create(ctx context.Context, userID int64, dc *transfer.DraftCreation) (int64, error) {
	var err error

	if dc.Content == "" {
		err = errors.New("draft content cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	if !models.IsValidPlatform(dc.Platform) {
		return 0, ErrInvalidPlatform
	}

	draft := &models.Draft{
		UserID:   userID,
		Platform: dc.Platform,
		Content:  dc.Content,
		Images:   dc.Images,
		Status:   models.DraftStatusPending,
	}

	return s.dr.Create(ctx, nil, draft)
}

func (s *draftService) Get(ctx context.Context, userID, draftID int64) (*models.Draft, error) {
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
	return draft, nil
}

func (s *draftService) List(ctx context.Context, userID int64) ([]*models.Draft, error) {
	return s.dr.ListByUserID(ctx, userID)
}

func (s *draftService) UpdateStatus(ctx context.Context, userID, draftID int64, status string) error {
	switch status {
	case models.DraftStatusApproved, models.DraftStatusRejected:
	default:
		return errors.New("invalid draft status")
	}

	draft, err := s.dr.GetByID(ctx, draftID)
	if err != nil {
		return err
	}
	if draft == nil {
		return ErrDraftNotFound
	}
	if draft.UserID != userID {
		return ErrNotOwner
	}

	return s.dr.UpdateStatus(ctx, status, draftID)
}
