package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talkroom/talkroom-api/internal/models"
)

// MessageRepository persists room messages and the participant set updates
// that accompany them.
type MessageRepository interface {
	Get(ctx context.Context, id uint) (models.Message, error)
	ListAll(ctx context.Context) ([]models.Message, error)
	ListByRoom(ctx context.Context, roomID uint) ([]models.Message, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Message, error)
	ListByTopicQuery(ctx context.Context, query string) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a GORM-backed repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Get(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// ListAll returns every message newest-first, the site-wide activity feed.
func (r *messageRepository) ListAll(ctx context.Context) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Room").
		Preload("Room.Topic").
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Room").
		Preload("Room.Topic").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// ListByTopicQuery returns messages whose room's topic name contains query
// case-insensitively. Deliberately narrower than the room search: only the
// topic name is matched.
func (r *messageRepository) ListByTopicQuery(ctx context.Context, query string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN rooms ON rooms.id = messages.room_id").
		Joins("JOIN topics ON topics.id = rooms.topic_id").
		Preload("User").
		Preload("Room").
		Preload("Room.Topic").
		Where("LOWER(topics.name) LIKE ? ESCAPE '\\'", containsPattern(query)).
		Order("messages.created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// Create inserts the message and adds its author to the room's participant
// set in the same transaction. The participant insert is idempotent: the join
// table's composite primary key plus ON CONFLICT DO NOTHING gives set
// semantics under concurrent duplicate adds.
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Room", "User").Create(message).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&roomParticipant{RoomID: message.RoomID, UserID: message.UserID}).Error
	})
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
