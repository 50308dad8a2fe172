package queue

import (
	"github.com/dorahq/dora/internal/service"
)

type Queue struct {
	ps service.PublishService
}

func NewQueue(ps service.PublishService) *Queue {
	return &Queue{ps: ps}
}

const TaskTypePublishDraft = "publish:draft"

type PublishDraftPayload struct {
	DraftID int64 `json:"draft_id"`
	UserID  int64 `json:"user_id"`
}
