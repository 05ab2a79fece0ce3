package service

import (
	"context"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/talkroom/talkroom-api/internal/models"
	"github.com/talkroom/talkroom-api/internal/repository"
)

type stubRoomRepo struct {
	rooms       map[uint]models.Room
	nextID      uint
	searchCalls int
}

func newStubRoomRepo() *stubRoomRepo {
	return &stubRoomRepo{rooms: map[uint]models.Room{}}
}

func (s *stubRoomRepo) Get(_ context.Context, id uint) (models.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return models.Room{}, gorm.ErrRecordNotFound
	}
	return room, nil
}

func (s *stubRoomRepo) Search(_ context.Context, query string) ([]models.Room, error) {
	s.searchCalls++

	query = strings.ToLower(query)
	var out []models.Room
	for _, room := range s.rooms {
		if strings.Contains(strings.ToLower(room.Topic.Name), query) ||
			strings.Contains(strings.ToLower(room.Name), query) ||
			strings.Contains(strings.ToLower(room.Description), query) {
			out = append(out, room)
		}
	}
	return out, nil
}

func (s *stubRoomRepo) ListByHost(_ context.Context, hostID uint) ([]models.Room, error) {
	var out []models.Room
	for _, room := range s.rooms {
		if room.HostID == hostID {
			out = append(out, room)
		}
	}
	return out, nil
}

func (s *stubRoomRepo) Create(_ context.Context, room *models.Room, topicName string) error {
	s.nextID++
	room.ID = s.nextID
	room.Topic = models.Topic{ID: s.nextID, Name: topicName}
	room.TopicID = room.Topic.ID
	s.rooms[room.ID] = *room
	return nil
}

func (s *stubRoomRepo) Update(_ context.Context, room *models.Room, topicName string) error {
	room.Topic = models.Topic{ID: room.TopicID, Name: topicName}
	s.rooms[room.ID] = *room
	return nil
}

func (s *stubRoomRepo) Delete(_ context.Context, id uint) error {
	if _, ok := s.rooms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.rooms, id)
	return nil
}

type stubMessageRepo struct {
	messages map[uint]models.Message
	nextID   uint
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{messages: map[uint]models.Message{}}
}

func (s *stubMessageRepo) Get(_ context.Context, id uint) (models.Message, error) {
	message, ok := s.messages[id]
	if !ok {
		return models.Message{}, gorm.ErrRecordNotFound
	}
	return message, nil
}

func (s *stubMessageRepo) ListAll(_ context.Context) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		out = append(out, message)
	}
	return out, nil
}

func (s *stubMessageRepo) ListByRoom(_ context.Context, roomID uint) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		if message.RoomID == roomID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) ListByUser(_ context.Context, userID uint) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		if message.UserID == userID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) ListByTopicQuery(_ context.Context, query string) ([]models.Message, error) {
	query = strings.ToLower(query)
	var out []models.Message
	for _, message := range s.messages {
		if strings.Contains(strings.ToLower(message.Room.Topic.Name), query) {
			out = append(out, message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) Create(_ context.Context, message *models.Message) error {
	s.nextID++
	message.ID = s.nextID
	s.messages[message.ID] = *message
	return nil
}

func (s *stubMessageRepo) Delete(_ context.Context, id uint) error {
	if _, ok := s.messages[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.messages, id)
	return nil
}

type stubTopicRepo struct {
	topics []models.Topic
}

func (s *stubTopicRepo) List(_ context.Context, query string) ([]repository.TopicWithCount, error) {
	query = strings.ToLower(query)
	var out []repository.TopicWithCount
	for _, topic := range s.topics {
		if strings.Contains(strings.ToLower(topic.Name), query) {
			out = append(out, repository.TopicWithCount{Topic: topic, RoomCount: 1})
		}
	}
	return out, nil
}

func (s *stubTopicRepo) First(_ context.Context, limit int) ([]models.Topic, error) {
	if limit > len(s.topics) {
		limit = len(s.topics)
	}
	return s.topics[:limit], nil
}

func (s *stubTopicRepo) GetOrCreate(_ context.Context, name string) (models.Topic, error) {
	for _, topic := range s.topics {
		if topic.Name == name {
			return topic, nil
		}
	}
	topic := models.Topic{ID: uint(len(s.topics) + 1), Name: name}
	s.topics = append(s.topics, topic)
	return topic, nil
}

type stubUserRepo struct {
	users     map[uint]models.User
	nextID    uint
	createErr error
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uint]models.User{}}
}

func (s *stubUserRepo) Get(_ context.Context, id uint) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, user := range s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.users[user.ID] = *user
	return nil
}

type stubEvents struct {
	events []ActivityEvent
}

func (s *stubEvents) Publish(_ context.Context, event ActivityEvent) {
	s.events = append(s.events, event)
}

type stubCache struct {
	invalidations int
}

func (s *stubCache) InvalidateCache(_ context.Context) {
	s.invalidations++
}

type stubStorage struct {
	uploads []string
	url     string
}

func (s *stubStorage) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	s.uploads = append(s.uploads, name)
	return s.url, nil
}
