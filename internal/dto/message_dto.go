package dto

import (
	"time"

	"github.com/talkroom/talkroom-api/internal/models"
)

// MessagePostRequest is the payload to post into a room.
type MessagePostRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// MessageResponse is the serialized representation of a message.
type MessageResponse struct {
	ID        uint         `json:"id"`
	RoomID    uint         `json:"room_id"`
	RoomName  string       `json:"room_name,omitempty"`
	TopicName string       `json:"topic_name,omitempty"`
	User      UserResponse `json:"user"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewMessageResponse converts a model into a DTO. Room and topic names are
// filled when the associations were preloaded.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		RoomID:    message.RoomID,
		RoomName:  message.Room.Name,
		TopicName: message.Room.Topic.Name,
		User:      NewUserResponse(message.User),
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// SearchResponse composes the home page: rooms matching the query, the first
// five topics, the matching room count and recent messages scoped by topic.
type SearchResponse struct {
	Rooms     []RoomResponse    `json:"rooms"`
	Topics    []TopicResponse   `json:"topics"`
	RoomCount int               `json:"room_count"`
	Messages  []MessageResponse `json:"messages"`
}
