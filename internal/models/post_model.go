package models

import "time"

// Post records a successfully published draft along with the id the platform
// assigned to the remote post.
type Post struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	DraftID        int64     `db:"draft_id" json:"draft_id"`
	Platform       string    `db:"platform" json:"platform"`
	Content        string    `db:"content" json:"content"`
	Images         []string  `db:"images" json:"images"`
	PlatformPostID string    `db:"platform_post_id" json:"platform_post_id"`
	PublishedAt    time.Time `db:"published_at" json:"published_at"`
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
