package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/talkroom/talkroom-api/internal/models"
)

// RoomRepository persists discussion rooms.
type RoomRepository interface {
	Get(ctx context.Context, id uint) (models.Room, error)
	Search(ctx context.Context, query string) ([]models.Room, error)
	ListByHost(ctx context.Context, hostID uint) ([]models.Room, error)
	Create(ctx context.Context, room *models.Room, topicName string) error
	Update(ctx context.Context, room *models.Room, topicName string) error
	Delete(ctx context.Context, id uint) error
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository constructs a GORM-backed repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Get loads a room with its topic, host and participant set.
func (r *roomRepository) Get(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Preload("Host").
		Preload("Participants").
		First(&room, id).Error
	if err != nil {
		return models.Room{}, err
	}

	return room, nil
}

// Search returns rooms where query is a case-insensitive substring of the
// topic name, the room name or the description. Any single match qualifies.
func (r *roomRepository) Search(ctx context.Context, query string) ([]models.Room, error) {
	pattern := containsPattern(query)

	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN topics ON topics.id = rooms.topic_id").
		Preload("Topic").
		Preload("Host").
		Where("LOWER(topics.name) LIKE ? ESCAPE '\\' OR LOWER(rooms.name) LIKE ? ESCAPE '\\' OR LOWER(rooms.description) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern).
		Order("rooms.updated_at DESC, rooms.created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	return rooms, nil
}

// ListByHost returns the rooms a user hosts, newest activity first.
func (r *roomRepository) ListByHost(ctx context.Context, hostID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Preload("Host").
		Where("host_id = ?", hostID).
		Order("updated_at DESC, created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	return rooms, nil
}

// Create inserts the room, resolving its topic by name with get-or-create
// semantics. Both happen inside one transaction.
func (r *roomRepository) Create(ctx context.Context, room *models.Room, topicName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topic, err := getOrCreateTopic(tx, topicName)
		if err != nil {
			return err
		}

		room.TopicID = topic.ID
		if err := tx.Omit("Topic", "Host", "Participants").Create(room).Error; err != nil {
			return err
		}

		room.Topic = topic
		return nil
	})
}

// Update saves new name, description and topic for the room. Host and
// participants are never touched here.
func (r *roomRepository) Update(ctx context.Context, room *models.Room, topicName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topic, err := getOrCreateTopic(tx, topicName)
		if err != nil {
			return err
		}

		room.TopicID = topic.ID
		err = tx.Model(&models.Room{}).
			Where("id = ?", room.ID).
			Updates(map[string]interface{}{
				"name":        room.Name,
				"description": room.Description,
				"topic_id":    topic.ID,
			}).Error
		if err != nil {
			return err
		}

		room.Topic = topic
		return nil
	})
}

// Delete removes the room together with its messages and participant rows.
// The cascade is explicit so it does not depend on driver-level foreign key
// enforcement.
func (r *roomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		if err := tx.Where("room_id = ?", id).Delete(&roomParticipant{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Room{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

// roomParticipant maps the many2many join table so participant rows can be
// written with conflict handling and removed explicitly on room deletion.
type roomParticipant struct {
	RoomID uint `gorm:"primaryKey"`
	UserID uint `gorm:"primaryKey"`
}

func (roomParticipant) TableName() string {
	return "room_participants"
}
