package transfer

// DraftCreation is the request body for creating a post draft.
type DraftCreation struct {
	Platform string   `json:"platform"`
	Content  string   `json:"content"`
	Images   []string `json:"images"`
}

type DraftStatusUpdate struct {
	DraftID int64  `json:"draft_id"`
	Status  string `json:"status"`
}

type PublishRequest struct {
	DraftID int64 `json:"draft_id"`
}

type ScheduleRequest struct {
	DraftID       int64  `json:"draft_id"`
	ScheduledTime string `json:"scheduled_time"`
}

type RepostRequest struct {
	PostID int64 `json:"post_id"`
}

type DisconnectRequest struct {
	Platform string `json:"platform"`
}

// AccountInfo is the client-facing view of a linked account. Token material
// never appears here, only whether a token is stored at all.
type AccountInfo struct {
	ID            int64  `json:"id"`
	Platform      string `json:"platform"`
	ProfileID     string `json:"profile_id"`
	ProfileName   string `json:"profile_name"`
	HasToken      bool   `json:"has_token"`
	AccountStatus string `json:"account_status"`
}
