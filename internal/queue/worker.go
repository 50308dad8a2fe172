package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandlePublishDraftTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishDraftPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	post, err := j.ps.PublishDraft(ctx, payload.UserID, payload.DraftID)
	if err != nil {
		log.Printf("Error publishing draft %d: %v", payload.DraftID, err)
		return err
	}

	log.Printf("Published draft %d as post %d", payload.DraftID, post.ID)
	return nil
}
