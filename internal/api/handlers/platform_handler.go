package handlers

import (
	"fmt"
	"log"
	"strconv"

	config "github.com/dorahq/dora/configs"
	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/service"
	"github.com/dorahq/dora/internal/transfer"
	"github.com/dorahq/dora/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type PlatformHandler struct {
	ps     service.PlatformService
	cs     service.ConnectService
	states service.OAuthStateService
	cfg    config.Config
}

func NewPlatformHandler(ps service.PlatformService, cs service.ConnectService, states service.OAuthStateService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:     ps,
		cs:     cs,
		states: states,
		cfg:    cfg,
	}
}

// ConnectAccount starts the authorization dance: issue a CSRF state token,
// pin it in a platform-scoped cookie, and send the popup to the platform's
// consent page.
func (h *PlatformHandler) ConnectAccount(c *fiber.Ctx) error {
	platform := c.Params("platform")

	if !models.IsValidPlatform(platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid platform",
		})
	}

	state := h.states.Issue()

	authURL, err := h.ps.GetAuthURL(c.Context(), platform, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid platform",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     service.StateCookieName(platform),
		Value:    state,
		HTTPOnly: true,
		Secure:   h.cfg.Production,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		MaxAge:   service.StateCookieMaxAge,
	})

	return c.Redirect(authURL)
}

// CallbackHandler terminates the authorization dance. Whatever happens, the
// browser only ever sees a redirect with a coarse success/error flag.
func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	platform := c.Params("platform")

	if !models.IsValidPlatform(platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid platform",
		})
	}

	in := service.CallbackInput{
		Platform:      platform,
		Code:          c.Query("code"),
		State:         c.Query("state"),
		ProviderError: c.Query("error"),
		CookieState:   c.Cookies(service.StateCookieName(platform)),
		UserID:        h.sessionUserID(c),
	}

	result := h.cs.HandleCallback(c.Context(), in)

	if result.Success {
		// Consume the state cookie so the same callback URL cannot be
		// replayed within the cookie's validity window.
		c.Cookie(&fiber.Cookie{
			Name:   service.StateCookieName(platform),
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}

	redirectURL := fmt.Sprintf("%s/callback?platform=%s&success=%t", h.cfg.FrontendURL, result.Platform, result.Success)
	if !result.Success {
		redirectURL += "&error=" + result.Reason
	}

	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.ps.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DisconnectAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.DisconnectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.ps.Disconnect(c.Context(), userID, req.Platform); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect account",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// sessionUserID resolves the signed-in user from the session cookie, or 0
// when there is no usable session.
func (h *PlatformHandler) sessionUserID(c *fiber.Ctx) int64 {
	tokenString := c.Cookies(h.cfg.CookieName)
	if tokenString == "" {
		return 0
	}

	claims, err := utils.ValidateToken(h.cfg.SecretKey, tokenString)
	if err != nil {
		return 0
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return 0
	}

	return userID
}
