package models

import "time"

type Draft struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Platform  string    `db:"platform" json:"platform"`
	Content   string    `db:"content" json:"content"`
	Images    []string  `db:"images" json:"images"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	DraftStatusPending  = "pending"
	DraftStatusApproved = "approved"
	DraftStatusRejected = "rejected"
	DraftStatusPosted   = "posted"
)
