package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dorahq/dora/internal/models"
	"github.com/lib/pq"
)

type DraftRepository interface {
	Create(ctx context.Context, tx *sql.Tx, draft *models.Draft) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Draft, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Draft, error)
	UpdateStatus(ctx context.Context, status string, draftID int64) error
	Remove(ctx context.Context, id int64) error
}

type draftRepository struct {
	db *sql.DB
}

func NewDraftRepository(db *sql.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(ctx context.Context, tx *sql.Tx, draft *models.Draft) (int64, error) {
	query := `
		INSERT INTO drafts (user_id, platform, content, images, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, draft.UserID, draft.Platform, draft.Content, pq.Array(draft.Images), draft.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, draft.UserID, draft.Platform, draft.Content, pq.Array(draft.Images), draft.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *draftRepository) GetByID(ctx context.Context, id int64) (*models.Draft, error) {
	query := `SELECT id, user_id, platform, content, images, status, created_at, updated_at FROM drafts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var draft models.Draft
	err := row.Scan(&draft.ID, &draft.UserID, &draft.Platform, &draft.Content, pq.Array(&draft.Images), &draft.Status, &draft.CreatedAt, &draft.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &draft, nil
}

func (r *draftRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Draft, error) {
	query := `SELECT id, user_id, platform, content, images, status, created_at, updated_at FROM drafts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var drafts []*models.Draft
	for rows.Next() {
		var draft models.Draft
		err := rows.Scan(&draft.ID, &draft.UserID, &draft.Platform, &draft.Content, pq.Array(&draft.Images), &draft.Status, &draft.CreatedAt, &draft.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		drafts = append(drafts, &draft)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return drafts, nil
}

func (r *draftRepository) UpdateStatus(ctx context.Context, status string, draftID int64) error {
	query := `UPDATE drafts SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, draftID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *draftRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM drafts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
