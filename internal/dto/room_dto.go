package dto

import (
	"time"

	"github.com/talkroom/talkroom-api/internal/models"
	"github.com/talkroom/talkroom-api/internal/repository"
)

// RoomCreateRequest is the payload to open a new room.
type RoomCreateRequest struct {
	Topic       string `json:"topic" validate:"required,min=1,max=128"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// RoomUpdateRequest overwrites a room's name, description and topic.
type RoomUpdateRequest struct {
	Topic       string `json:"topic" validate:"required,min=1,max=128"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// TopicResponse describes a topic, optionally with its room count.
type TopicResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	RoomCount int64  `json:"room_count,omitempty"`
}

// NewTopicResponse converts a model into a DTO.
func NewTopicResponse(topic models.Topic) TopicResponse {
	return TopicResponse{ID: topic.ID, Name: topic.Name}
}

// NewTopicResponseSlice converts a slice of models into DTOs.
func NewTopicResponseSlice(topics []models.Topic) []TopicResponse {
	out := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		out = append(out, NewTopicResponse(topic))
	}
	return out
}

// NewTopicWithCountResponseSlice converts counted repository rows into DTOs.
func NewTopicWithCountResponseSlice(topics []repository.TopicWithCount) []TopicResponse {
	out := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		out = append(out, TopicResponse{ID: topic.ID, Name: topic.Name, RoomCount: topic.RoomCount})
	}
	return out
}

// RoomResponse is the serialized representation of a room.
type RoomResponse struct {
	ID               uint           `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Topic            TopicResponse  `json:"topic"`
	Host             UserResponse   `json:"host"`
	ParticipantCount int            `json:"participant_count"`
	Participants     []UserResponse `json:"participants,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewRoomResponse converts a model into a DTO. Participants are included
// only when preloaded.
func NewRoomResponse(room models.Room) RoomResponse {
	response := RoomResponse{
		ID:               room.ID,
		Name:             room.Name,
		Description:      room.Description,
		Topic:            NewTopicResponse(room.Topic),
		Host:             NewUserResponse(room.Host),
		ParticipantCount: len(room.Participants),
		CreatedAt:        room.CreatedAt,
		UpdatedAt:        room.UpdatedAt,
	}

	if len(room.Participants) > 0 {
		response.Participants = NewUserResponseSlice(room.Participants)
	}

	return response
}

// NewRoomResponseSlice converts a slice of models into DTOs.
func NewRoomResponseSlice(rooms []models.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, NewRoomResponse(room))
	}
	return out
}

// RoomDetailResponse composes the room page: the room, its messages
// newest-first and the participant set.
type RoomDetailResponse struct {
	Room         RoomResponse      `json:"room"`
	Messages     []MessageResponse `json:"messages"`
	Participants []UserResponse    `json:"participants"`
}
