package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dorahq/dora/internal/queue"
	"github.com/dorahq/dora/internal/service"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type PostHandler struct {
	ps     service.PublishService
	client *asynq.Client
}

func NewPostHandler(ps service.PublishService, client *asynq.Client) *PostHandler {
	return &PostHandler{ps: ps, client: client}
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	post, err := h.ps.PublishDraft(c.Context(), userID, req.DraftID)
	if err != nil {
		return publishErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":          true,
		"platform_post_id": post.PlatformPostID,
		"message":          fmt.Sprintf("Successfully posted to %s", post.Platform),
	})
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	scheduledTime, err := time.Parse("2006-01-02T15:04", req.ScheduledTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scheduled time format",
		})
	}

	delay := time.Until(scheduledTime)
	if delay < 0 {
		delay = 0
	}

	payload := queue.PublishDraftPayload{
		DraftID: req.DraftID,
		UserID:  userID,
	}
	if err := queue.EnqueuePublish(h.client, payload, delay); err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to schedule post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.ps.ListPosts(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) Repost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.RepostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	post, err := h.ps.Repost(c.Context(), userID, req.PostID)
	if err != nil {
		return publishErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":          true,
		"platform_post_id": post.PlatformPostID,
		"message":          fmt.Sprintf("Successfully posted to %s", post.Platform),
	})
}

// publishErrorResponse maps dispatch failures onto client-facing JSON.
// Platform error bodies are logged but never forwarded.
func publishErrorResponse(c *fiber.Ctx, err error) error {
	var notConnected *service.AccountNotConnectedError
	if errors.As(err, &notConnected) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": notConnected.Error(),
		})
	}

	switch {
	case errors.Is(err, service.ErrDraftNotFound), errors.Is(err, service.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	case errors.Is(err, service.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	case errors.Is(err, service.ErrTokenCorrupted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Stored credentials are unusable, reconnect the account",
		})
	}

	var postErr *service.PlatformPostError
	if errors.As(err, &postErr) {
		log.Printf("platform post error: platform=%s status=%d body=%s", postErr.Platform, postErr.StatusCode, postErr.Body)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to post to %s", postErr.Platform),
		})
	}

	log.Println(err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to publish post",
	})
}
