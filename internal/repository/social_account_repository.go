package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/dorahq/dora/internal/models"
)

type SocialAccountRepository interface {
	Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error)
	GetByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListExpired(ctx context.Context, asOf time.Time) ([]*models.SocialAccount, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	RemoveByPlatform(ctx context.Context, userID int64, platform string) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

// Upsert replaces any prior account for the same (user, platform) pair in a
// single transaction, so a user holds at most one account per platform.
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM social_accounts WHERE user_id = $1 AND platform = $2`
	if _, err = tx.ExecContext(ctx, deleteQuery, sa.UserID, sa.Platform); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	insertQuery := `
		INSERT INTO social_accounts(
			user_id,
			platform,
			profile_id,
			profile_name,
			access_token,
			refresh_token,
			token_expires_at,
			account_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err = tx.QueryRowContext(ctx, insertQuery,
		sa.UserID,
		sa.Platform,
		sa.ProfileID,
		sa.ProfileName,
		sa.AccessToken,
		sa.RefreshToken,
		sa.TokenExpiresAt,
		models.AccountStatusActive,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialAccountRepository) GetByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, profile_id, profile_name, access_token,
			refresh_token, token_expires_at, account_status, created_at, updated_at
		FROM social_accounts
		WHERE user_id = $1 AND platform = $2
	`
	row := r.db.QueryRowContext(ctx, query, userID, platform)

	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.ProfileID, &sa.ProfileName,
		&sa.AccessToken, &sa.RefreshToken, &sa.TokenExpiresAt, &sa.AccountStatus,
		&sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sa, nil
}

// ListInfoByUserID selects only display columns; token columns stay out of
// any listing path.
func (r *socialAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `
		SELECT id, platform, profile_id, profile_name, account_status, access_token != ''
		FROM social_accounts
		WHERE user_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		var hasToken bool
		err := rows.Scan(&sa.ID, &sa.Platform, &sa.ProfileID, &sa.ProfileName, &sa.AccountStatus, &hasToken)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if hasToken {
			// Marker only; the ciphertext itself is not loaded here.
			sa.AccessToken = "stored"
		}
		accounts = append(accounts, &sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) ListExpired(ctx context.Context, asOf time.Time) ([]*models.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, token_expires_at
		FROM social_accounts
		WHERE account_status = $1
		AND token_expires_at IS NOT NULL
		AND token_expires_at < $2
	`
	rows, err := r.db.QueryContext(ctx, query, models.AccountStatusActive, asOf)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE social_accounts SET account_status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) RemoveByPlatform(ctx context.Context, userID int64, platform string) error {
	query := `DELETE FROM social_accounts WHERE user_id = $1 AND platform = $2`
	_, err := r.db.ExecContext(ctx, query, userID, platform)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
