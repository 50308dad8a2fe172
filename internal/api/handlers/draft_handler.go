package handlers

import (
	"errors"
	"log"

	"github.com/dorahq/dora/internal/service"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type DraftHandler struct {
	s service.DraftService
}

func NewDraftHandler(s service.DraftService) *DraftHandler {
	return &DraftHandler{s: s}
}

func (h *DraftHandler) CreateDraft(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.DraftCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	draftID, err := h.s.Create(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"draft_id": draftID})
}

func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	userID := GetUserID(c)

	draftID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid draft id",
		})
	}

	draft, err := h.s.Get(c.Context(), userID, int64(draftID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Draft not found",
			})
		case errors.Is(err, service.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		default:
			log.Println(err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch draft",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(draft)
}

func (h *DraftHandler) ListDrafts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	drafts, err := h.s.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch drafts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(drafts)
}

func (h *DraftHandler) UpdateDraftStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.DraftStatusUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := h.s.UpdateStatus(c.Context(), userID, req.DraftID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Draft not found",
			})
		case errors.Is(err, service.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
