package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/repository"
)

var (
	// ErrAvatarTooLarge indicates the uploaded image exceeded the size limit.
	ErrAvatarTooLarge = errors.New("avatar exceeds maximum allowed size")
	// ErrAvatarNotImage indicates the uploaded file is not an image.
	ErrAvatarNotImage = errors.New("avatar must be an image")
)

// FileStorage abstracts the avatar upload destination.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UserService exposes user profile use-cases. Profiles are public; updates
// always target the requesting identity's own record.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (dto.ProfileResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	rooms     repository.RoomRepository
	messages  repository.MessageRepository
	topics    repository.TopicRepository
	storage   FileStorage
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	cache     CacheInvalidator
	maxAvatar int64
	logger    zerolog.Logger
}

// NewUserService constructs a user service.
func NewUserService(users repository.UserRepository, rooms repository.RoomRepository, messages repository.MessageRepository, topics repository.TopicRepository, storage FileStorage, validate *validator.Validate, cache CacheInvalidator, maxAvatarMB int, logger zerolog.Logger) UserService {
	if maxAvatarMB <= 0 {
		maxAvatarMB = 5
	}

	return &userService{
		users:     users,
		rooms:     rooms,
		messages:  messages,
		topics:    topics,
		storage:   storage,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		cache:     cache,
		maxAvatar: int64(maxAvatarMB) * 1024 * 1024,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

// GetProfile composes the public profile page: the user, their hosted rooms,
// their message history and the full topic list.
func (s *userService) GetProfile(ctx context.Context, id uint) (dto.ProfileResponse, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, translateNotFound(err)
	}

	rooms, err := s.rooms.ListByHost(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	messages, err := s.messages.ListByUser(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	topics, err := s.topics.List(ctx, "")
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	return dto.ProfileResponse{
		User:     dto.NewUserResponse(user),
		Rooms:    dto.NewRoomResponseSlice(rooms),
		Messages: dto.NewMessageResponseSlice(messages),
		Topics:   dto.NewTopicWithCountResponseSlice(topics),
	}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err)
	}

	return dto.NewUserResponse(user), nil
}

// UpdateProfile applies the provided fields to the requesting user's own
// record. Username and email are normalized to lowercase.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if userID == 0 {
		return dto.UserResponse{}, ErrUnauthenticated
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err)
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}

	if payload.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*payload.Username))
		if username != user.Username {
			if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
				return dto.UserResponse{}, err
			} else if taken {
				return dto.UserResponse{}, ErrUsernameTaken
			}
			user.Username = username
		}
	}

	if payload.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*payload.Email))
		if email != user.Email {
			if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
				return dto.UserResponse{}, err
			} else if taken {
				return dto.UserResponse{}, ErrEmailTaken
			}
			user.Email = email
		}
	}

	if payload.Bio != nil {
		user.Bio = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Bio))
	}

	if payload.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*payload.AvatarURL)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		// Concurrent updates can still race past the existence checks; the
		// unique constraints catch them here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if payload.Username != nil {
				return dto.UserResponse{}, ErrUsernameTaken
			}
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	// Cached home responses embed host and author identity.
	s.cache.InvalidateCache(ctx)

	return dto.NewUserResponse(user), nil
}

// UpdateAvatar validates the uploaded image, stores it and records the URL on
// the user's record.
func (s *userService) UpdateAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserResponse, error) {
	if userID == 0 {
		return dto.UserResponse{}, ErrUnauthenticated
	}

	if file == nil {
		return dto.UserResponse{}, ErrAvatarNotImage
	}

	if file.Size > s.maxAvatar {
		return dto.UserResponse{}, ErrAvatarTooLarge
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err)
	}

	source, err := file.Open()
	if err != nil {
		return dto.UserResponse{}, err
	}
	defer source.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(source, s.maxAvatar+1)); err != nil {
		return dto.UserResponse{}, err
	}
	if int64(buf.Len()) > s.maxAvatar {
		return dto.UserResponse{}, ErrAvatarTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !strings.HasPrefix(mime.String(), "image/") {
		return dto.UserResponse{}, ErrAvatarNotImage
	}

	url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return dto.UserResponse{}, err
	}

	user.AvatarURL = url
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.cache.InvalidateCache(ctx)
	s.logger.Info().Uint("user_id", userID).Msg("avatar updated")

	return dto.NewUserResponse(user), nil
}
