package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/models"
	"github.com/talkroom/talkroom-api/internal/repository"
)

// CacheInvalidator drops cached read results after a mutation.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// RoomService exposes room use-cases. Reads are public; mutations require an
// authenticated identity and, beyond creation, hosting the room.
type RoomService interface {
	Get(ctx context.Context, id uint) (dto.RoomDetailResponse, error)
	Create(ctx context.Context, userID uint, payload dto.RoomCreateRequest) (dto.RoomResponse, error)
	Update(ctx context.Context, id, userID uint, payload dto.RoomUpdateRequest) (dto.RoomResponse, error)
	Delete(ctx context.Context, id, userID uint) error
}

type roomService struct {
	rooms     repository.RoomRepository
	messages  repository.MessageRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	events    EventPublisher
	cache     CacheInvalidator
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewRoomService constructs a room service.
func NewRoomService(rooms repository.RoomRepository, messages repository.MessageRepository, validate *validator.Validate, events EventPublisher, cache CacheInvalidator, logger zerolog.Logger) RoomService {
	return &roomService{
		rooms:     rooms,
		messages:  messages,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		events:    events,
		cache:     cache,
		logger:    logger.With().Str("component", "room_service").Logger(),
		tracer:    otel.Tracer("github.com/talkroom/talkroom-api/internal/service/room"),
	}
}

// Get loads the room page: the room, its messages newest-first and the
// participant set.
func (s *roomService) Get(ctx context.Context, id uint) (dto.RoomDetailResponse, error) {
	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		return dto.RoomDetailResponse{}, translateNotFound(err)
	}

	messages, err := s.messages.ListByRoom(ctx, id)
	if err != nil {
		return dto.RoomDetailResponse{}, err
	}

	return dto.RoomDetailResponse{
		Room:         dto.NewRoomResponse(room),
		Messages:     dto.NewMessageResponseSlice(messages),
		Participants: dto.NewUserResponseSlice(room.Participants),
	}, nil
}

func (s *roomService) Create(ctx context.Context, userID uint, payload dto.RoomCreateRequest) (dto.RoomResponse, error) {
	if userID == 0 {
		return dto.RoomResponse{}, ErrUnauthenticated
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.RoomResponse{}, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.Name))
	if name == "" {
		return dto.RoomResponse{}, ErrEmptyBody
	}

	ctx, span := s.tracer.Start(ctx, "room.create", trace.WithAttributes(
		attribute.Int64("room.host_id", int64(userID)),
		attribute.String("room.topic", payload.Topic),
	))
	defer span.End()

	room := models.Room{
		Name:        name,
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		HostID:      userID,
	}

	if err := s.rooms.Create(ctx, &room, strings.TrimSpace(payload.Topic)); err != nil {
		span.RecordError(err)
		return dto.RoomResponse{}, err
	}

	s.logger.Info().Uint("room_id", room.ID).Uint("host_id", userID).Msg("room created")
	s.events.Publish(ctx, ActivityEvent{Type: EventRoomCreated, RoomID: room.ID, UserID: userID})
	s.cache.InvalidateCache(ctx)

	created, err := s.rooms.Get(ctx, room.ID)
	if err != nil {
		return dto.NewRoomResponse(room), nil
	}

	return dto.NewRoomResponse(created), nil
}

func (s *roomService) Update(ctx context.Context, id, userID uint, payload dto.RoomUpdateRequest) (dto.RoomResponse, error) {
	if userID == 0 {
		return dto.RoomResponse{}, ErrUnauthenticated
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.RoomResponse{}, err
	}

	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		return dto.RoomResponse{}, translateNotFound(err)
	}

	// Only the host may change a room, being logged in is not enough.
	if room.HostID != userID {
		return dto.RoomResponse{}, ErrForbidden
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.Name))
	if name == "" {
		return dto.RoomResponse{}, ErrEmptyBody
	}

	room.Name = name
	room.Description = strings.TrimSpace(s.sanitizer.Sanitize(payload.Description))

	if err := s.rooms.Update(ctx, &room, strings.TrimSpace(payload.Topic)); err != nil {
		return dto.RoomResponse{}, err
	}

	s.events.Publish(ctx, ActivityEvent{Type: EventRoomUpdated, RoomID: room.ID, UserID: userID})
	s.cache.InvalidateCache(ctx)

	return dto.NewRoomResponse(room), nil
}

func (s *roomService) Delete(ctx context.Context, id, userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}

	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		return translateNotFound(err)
	}

	if room.HostID != userID {
		return ErrForbidden
	}

	if err := s.rooms.Delete(ctx, id); err != nil {
		return translateNotFound(err)
	}

	s.logger.Info().Uint("room_id", id).Uint("host_id", userID).Msg("room deleted")
	s.events.Publish(ctx, ActivityEvent{Type: EventRoomDeleted, RoomID: id, UserID: userID})
	s.cache.InvalidateCache(ctx)

	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
