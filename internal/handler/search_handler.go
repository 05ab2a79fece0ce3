package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/talkroom/talkroom-api/internal/service"
	"github.com/talkroom/talkroom-api/internal/utils"
)

// SearchHandler serves the public read endpoints: home search, topics and the
// activity feed.
type SearchHandler struct {
	service service.SearchService
	logger  zerolog.Logger
}

// NewSearchHandler constructs a handler instance.
func NewSearchHandler(service service.SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger.With().Str("component", "search_handler").Logger(),
	}
}

// Register binds the search routes.
func (h *SearchHandler) Register(router fiber.Router, optional fiber.Handler) {
	router.Get("/search", optional, h.search)
	router.Get("/topics", optional, h.topics)
	router.Get("/activity", optional, h.activity)
}

func (h *SearchHandler) search(c *fiber.Ctx) error {
	response, err := h.service.Home(withRequestContext(c), c.Query("q"))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "search results", response)
}

func (h *SearchHandler) topics(c *fiber.Ctx) error {
	topics, err := h.service.Topics(withRequestContext(c), c.Query("q"))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "topics", topics)
}

func (h *SearchHandler) activity(c *fiber.Ctx) error {
	messages, err := h.service.Activity(withRequestContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "activity", messages)
}
