package dto

import (
	"time"

	"github.com/talkroom/talkroom-api/internal/models"
)

// UserResponse is the public representation of a forum member.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponseSlice converts a slice of models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

// ProfileUpdateRequest carries the fields a user may change on their own
// record. Nil pointers leave the field untouched.
type ProfileUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	Username  *string `json:"username" validate:"omitempty,min=3,max=64,alphanum"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

// ProfileResponse composes everything the profile page shows: the user, the
// rooms they host, their message history and the full topic list.
type ProfileResponse struct {
	User     UserResponse      `json:"user"`
	Rooms    []RoomResponse    `json:"rooms"`
	Messages []MessageResponse `json:"messages"`
	Topics   []TopicResponse   `json:"topics"`
}
