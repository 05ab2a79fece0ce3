package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/service"
	"github.com/talkroom/talkroom-api/internal/utils"
)

// UserHandler provides HTTP endpoints for public profiles and self-service
// account updates.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs a handler instance.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// RegisterPublic binds the profile routes.
func (h *UserHandler) RegisterPublic(router fiber.Router, optional fiber.Handler) {
	router.Get("/:id", optional, h.profile)
}

// RegisterMe binds the self-service routes.
func (h *UserHandler) RegisterMe(router fiber.Router, required fiber.Handler) {
	router.Get("/", required, h.me)
	router.Put("/", required, h.update)
	router.Post("/avatar", required, h.avatar)
}

func (h *UserHandler) profile(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	profile, err := h.service.GetProfile(withRequestContext(c), id)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "profile", profile)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Get(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "account", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.UpdateProfile(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", user)
}

func (h *UserHandler) avatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "avatar file required")
	}

	user, err := h.service.UpdateAvatar(withRequestContext(c), userIDFromContext(c), file)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "avatar updated", user)
}
