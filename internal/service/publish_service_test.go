package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dorahq/dora/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDraftRepo struct {
	drafts map[int64]*models.Draft
}

func (r *fakeDraftRepo) Create(ctx context.Context, tx *sql.Tx, draft *models.Draft) (int64, error) {
	draft.ID = int64(len(r.drafts) + 1)
	r.drafts[draft.ID] = draft
	return draft.ID, nil
}

func (r *fakeDraftRepo) GetByID(ctx context.Context, id int64) (*models.Draft, error) {
	return r.drafts[id], nil
}

func (r *fakeDraftRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Draft, error) {
	var out []*models.Draft
	for _, d := range r.drafts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDraftRepo) UpdateStatus(ctx context.Context, status string, draftID int64) error {
	if d, ok := r.drafts[draftID]; ok {
		d.Status = status
	}
	return nil
}

func (r *fakeDraftRepo) Remove(ctx context.Context, id int64) error {
	delete(r.drafts, id)
	return nil
}

type fakePostRepo struct {
	posts map[int64]*models.Post
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	id := int64(len(r.posts) + 1)
	post.ID = id
	r.posts[id] = post
	return id, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubPublisher struct {
	postID string
	err    error
	calls  int
	last   *models.SocialAccount
}

func (p *stubPublisher) Post(ctx context.Context, acc *models.SocialAccount, content string, images []string) (string, error) {
	p.calls++
	p.last = acc
	if p.err != nil {
		return "", p.err
	}
	return p.postID, nil
}

func newPublishFixture() (*fakeDraftRepo, *fakePostRepo, *fakeAccountRepo, *stubPublisher, PublishService) {
	dr := &fakeDraftRepo{drafts: make(map[int64]*models.Draft)}
	pr := &fakePostRepo{posts: make(map[int64]*models.Post)}
	sa := newFakeAccountRepo()
	pub := &stubPublisher{postID: "platform-post-1"}

	svc := NewPublishService(dr, pr, sa, map[string]Publisher{
		models.PlatformLinkedIn: pub,
	})
	return dr, pr, sa, pub, svc
}

func TestPublishDraftSuccess(t *testing.T) {
	dr, pr, sa, pub, svc := newPublishFixture()

	dr.drafts[1] = &models.Draft{
		ID:       1,
		UserID:   7,
		Platform: models.PlatformLinkedIn,
		Content:  "hello",
		Images:   []string{"https://cdn.example.com/a.jpg"},
		Status:   models.DraftStatusApproved,
	}
	sa.accounts[models.PlatformLinkedIn] = &models.SocialAccount{ID: 1, UserID: 7, Platform: models.PlatformLinkedIn, AccessToken: "sealed"}

	post, err := svc.PublishDraft(context.Background(), 7, 1)

	require.NoError(t, err)
	assert.Equal(t, "platform-post-1", post.PlatformPostID)
	assert.Equal(t, int64(1), post.DraftID)
	assert.Equal(t, models.DraftStatusPosted, dr.drafts[1].Status)
	assert.Equal(t, 1, pub.calls)
	assert.Len(t, pr.posts, 1)
}

func TestPublishDraftAccountNotConnected(t *testing.T) {
	dr, pr, _, pub, svc := newPublishFixture()

	dr.drafts[1] = &models.Draft{ID: 1, UserID: 7, Platform: models.PlatformLinkedIn, Content: "hello"}

	_, err := svc.PublishDraft(context.Background(), 7, 1)

	var notConnected *AccountNotConnectedError
	require.ErrorAs(t, err, &notConnected)
	assert.Equal(t, models.PlatformLinkedIn, notConnected.Platform)
	assert.Equal(t, "linkedin account not connected", err.Error())
	assert.Equal(t, 0, pub.calls)
	assert.Empty(t, pr.posts)
}

func TestPublishDraftNotFound(t *testing.T) {
	_, _, _, _, svc := newPublishFixture()

	_, err := svc.PublishDraft(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestPublishDraftWrongOwner(t *testing.T) {
	dr, _, _, pub, svc := newPublishFixture()

	dr.drafts[1] = &models.Draft{ID: 1, UserID: 99, Platform: models.PlatformLinkedIn, Content: "hello"}

	_, err := svc.PublishDraft(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 0, pub.calls)
}

func TestPublishDraftPublisherFailureKeepsDraftStatus(t *testing.T) {
	dr, pr, sa, pub, svc := newPublishFixture()

	dr.drafts[1] = &models.Draft{ID: 1, UserID: 7, Platform: models.PlatformLinkedIn, Content: "hello", Status: models.DraftStatusApproved}
	sa.accounts[models.PlatformLinkedIn] = &models.SocialAccount{ID: 1, UserID: 7, Platform: models.PlatformLinkedIn}
	pub.err = errors.New("platform rejected the post")

	_, err := svc.PublishDraft(context.Background(), 7, 1)

	require.Error(t, err)
	assert.Equal(t, models.DraftStatusApproved, dr.drafts[1].Status)
	assert.Empty(t, pr.posts)
}

func TestRepostCreatesNewPost(t *testing.T) {
	_, pr, sa, pub, svc := newPublishFixture()

	pr.posts[1] = &models.Post{
		ID:             1,
		UserID:         7,
		DraftID:        3,
		Platform:       models.PlatformLinkedIn,
		Content:        "old content",
		PlatformPostID: "platform-post-old",
	}
	sa.accounts[models.PlatformLinkedIn] = &models.SocialAccount{ID: 1, UserID: 7, Platform: models.PlatformLinkedIn}
	pub.postID = "platform-post-new"

	post, err := svc.Repost(context.Background(), 7, 1)

	require.NoError(t, err)
	assert.NotEqual(t, int64(1), post.ID)
	assert.Equal(t, "platform-post-new", post.PlatformPostID)
	assert.Equal(t, "old content", post.Content)
	assert.Len(t, pr.posts, 2)
}

func TestRepostWrongOwner(t *testing.T) {
	_, pr, _, _, svc := newPublishFixture()

	pr.posts[1] = &models.Post{ID: 1, UserID: 99, Platform: models.PlatformLinkedIn}

	_, err := svc.Repost(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestPublishUnknownPlatform(t *testing.T) {
	dr, _, _, _, svc := newPublishFixture()

	dr.drafts[1] = &models.Draft{ID: 1, UserID: 7, Platform: "myspace", Content: "hello"}

	_, err := svc.PublishDraft(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrInvalidPlatform)
}
