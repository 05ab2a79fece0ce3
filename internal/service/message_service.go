package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/models"
	"github.com/talkroom/talkroom-api/internal/repository"
)

// MessageService exposes message use-cases.
type MessageService interface {
	Post(ctx context.Context, roomID, userID uint, payload dto.MessagePostRequest) (dto.MessageResponse, error)
	Delete(ctx context.Context, id, userID uint) error
}

type messageService struct {
	messages  repository.MessageRepository
	rooms     repository.RoomRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	events    EventPublisher
	cache     CacheInvalidator
	logger    zerolog.Logger
}

// NewMessageService constructs a message service.
func NewMessageService(messages repository.MessageRepository, rooms repository.RoomRepository, validate *validator.Validate, events EventPublisher, cache CacheInvalidator, logger zerolog.Logger) MessageService {
	return &messageService{
		messages:  messages,
		rooms:     rooms,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		events:    events,
		cache:     cache,
		logger:    logger.With().Str("component", "message_service").Logger(),
	}
}

// Post creates a message in the room and adds the author to the room's
// participant set. The participant addition is idempotent.
func (s *messageService) Post(ctx context.Context, roomID, userID uint, payload dto.MessagePostRequest) (dto.MessageResponse, error) {
	if userID == 0 {
		return dto.MessageResponse{}, ErrUnauthenticated
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" {
		return dto.MessageResponse{}, ErrEmptyBody
	}

	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return dto.MessageResponse{}, translateNotFound(err)
	}

	message := models.Message{
		RoomID: roomID,
		UserID: userID,
		Body:   body,
	}

	if err := s.messages.Create(ctx, &message); err != nil {
		return dto.MessageResponse{}, err
	}

	s.logger.Info().Uint("message_id", message.ID).Uint("room_id", roomID).Uint("user_id", userID).Msg("message posted")
	s.events.Publish(ctx, ActivityEvent{Type: EventMessagePosted, RoomID: roomID, MessageID: message.ID, UserID: userID})
	s.cache.InvalidateCache(ctx)

	created, err := s.messages.Get(ctx, message.ID)
	if err != nil {
		return dto.NewMessageResponse(message), nil
	}

	return dto.NewMessageResponse(created), nil
}

// Delete removes a message. Only the author may delete it; hosting the room
// grants no power over other people's messages.
func (s *messageService) Delete(ctx context.Context, id, userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}

	message, err := s.messages.Get(ctx, id)
	if err != nil {
		return translateNotFound(err)
	}

	if message.UserID != userID {
		return ErrForbidden
	}

	if err := s.messages.Delete(ctx, id); err != nil {
		return translateNotFound(err)
	}

	s.events.Publish(ctx, ActivityEvent{Type: EventMessageDeleted, RoomID: message.RoomID, MessageID: id, UserID: userID})
	s.cache.InvalidateCache(ctx)

	return nil
}
