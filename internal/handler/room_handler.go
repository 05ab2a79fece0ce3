package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/service"
	"github.com/talkroom/talkroom-api/internal/utils"
)

// RoomHandler provides HTTP endpoints for rooms and posting into them.
type RoomHandler struct {
	rooms    service.RoomService
	messages service.MessageService
	logger   zerolog.Logger
}

// NewRoomHandler constructs a handler instance.
func NewRoomHandler(rooms service.RoomService, messages service.MessageService, logger zerolog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:    rooms,
		messages: messages,
		logger:   logger.With().Str("component", "room_handler").Logger(),
	}
}

// Register binds the room routes. Reads take the optional-auth middleware so
// anonymous visitors can browse; mutations require authentication.
func (h *RoomHandler) Register(router fiber.Router, required, optional fiber.Handler) {
	router.Get("/:id", optional, h.get)
	router.Post("/", required, h.create)
	router.Put("/:id", required, h.update)
	router.Delete("/:id", required, h.delete)
	router.Post("/:id/messages", required, h.postMessage)
}

func (h *RoomHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	room, err := h.rooms.Get(withRequestContext(c), id)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "room", room)
}

func (h *RoomHandler) create(c *fiber.Ctx) error {
	var payload dto.RoomCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	room, err := h.rooms.Create(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "room created", room)
}

func (h *RoomHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RoomUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	room, err := h.rooms.Update(withRequestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "room updated", room)
}

func (h *RoomHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.rooms.Delete(withRequestContext(c), id, userIDFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "room deleted", nil)
}

func (h *RoomHandler) postMessage(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MessagePostRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	message, err := h.messages.Post(withRequestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message posted", message)
}
