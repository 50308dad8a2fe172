package service

import (
	"context"
	"testing"

	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftService() (*fakeDraftRepo, DraftService) {
	dr := &fakeDraftRepo{drafts: make(map[int64]*models.Draft)}
	return dr, NewDraftService(dr)
}

func TestCreateDraftStartsPending(t *testing.T) {
	dr, svc := newDraftService()

	id, err := svc.Create(context.Background(), 7, &transfer.DraftCreation{
		Platform: models.PlatformTwitter,
		Content:  "a tweet",
		Images:   []string{"https://cdn.example.com/a.jpg"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusPending, dr.drafts[id].Status)
	assert.Equal(t, int64(7), dr.drafts[id].UserID)
}

func TestCreateDraftRejectsEmptyContent(t *testing.T) {
	_, svc := newDraftService()

	_, err := svc.Create(context.Background(), 7, &transfer.DraftCreation{Platform: models.PlatformTwitter})
	assert.Error(t, err)
}

func TestCreateDraftRejectsUnknownPlatform(t *testing.T) {
	_, svc := newDraftService()

	_, err := svc.Create(context.Background(), 7, &transfer.DraftCreation{Platform: "myspace", Content: "hi"})
	assert.ErrorIs(t, err, ErrInvalidPlatform)
}

func TestGetDraftOwnership(t *testing.T) {
	dr, svc := newDraftService()
	dr.drafts[1] = &models.Draft{ID: 1, UserID: 99, Platform: models.PlatformLinkedIn, Content: "hi"}

	_, err := svc.Get(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Get(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	draft, err := svc.Get(context.Background(), 99, 1)
	require.NoError(t, err)
	assert.Equal(t, "hi", draft.Content)
}

func TestUpdateDraftStatusTransitions(t *testing.T) {
	dr, svc := newDraftService()
	dr.drafts[1] = &models.Draft{ID: 1, UserID: 7, Platform: models.PlatformLinkedIn, Status: models.DraftStatusPending}

	require.NoError(t, svc.UpdateStatus(context.Background(), 7, 1, models.DraftStatusApproved))
	assert.Equal(t, models.DraftStatusApproved, dr.drafts[1].Status)

	// Posted is set by the publisher, never by a status update request.
	assert.Error(t, svc.UpdateStatus(context.Background(), 7, 1, models.DraftStatusPosted))
	assert.Error(t, svc.UpdateStatus(context.Background(), 7, 1, "published"))
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), 99, 1, models.DraftStatusRejected), ErrNotOwner)
}
