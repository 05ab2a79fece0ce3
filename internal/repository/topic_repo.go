package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talkroom/talkroom-api/internal/models"
)

// TopicWithCount pairs a topic with the number of rooms filed under it.
type TopicWithCount struct {
	models.Topic
	RoomCount int64 `json:"room_count"`
}

// TopicRepository persists room topics.
type TopicRepository interface {
	List(ctx context.Context, query string) ([]TopicWithCount, error)
	First(ctx context.Context, limit int) ([]models.Topic, error)
	GetOrCreate(ctx context.Context, name string) (models.Topic, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository constructs a GORM-backed repository.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

// List returns topics whose names contain query case-insensitively, each with
// its room count. An empty query matches every topic.
func (r *topicRepository) List(ctx context.Context, query string) ([]TopicWithCount, error) {
	var topics []TopicWithCount
	err := r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Select("topics.*, count(rooms.id) AS room_count").
		Joins("LEFT JOIN rooms ON rooms.topic_id = topics.id").
		Where("LOWER(topics.name) LIKE ? ESCAPE '\\'", containsPattern(query)).
		Group("topics.id").
		Order("topics.id").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}

	return topics, nil
}

// First returns the first limit topics in insertion order.
func (r *topicRepository) First(ctx context.Context, limit int) ([]models.Topic, error) {
	if limit <= 0 {
		limit = 5
	}

	var topics []models.Topic
	if err := r.db.WithContext(ctx).Order("id").Limit(limit).Find(&topics).Error; err != nil {
		return nil, err
	}

	return topics, nil
}

// GetOrCreate returns the topic with the exact name, creating it if absent.
// The uniqueness constraint on name plus ON CONFLICT DO NOTHING guarantees
// concurrent identical creates collapse to a single row.
func (r *topicRepository) GetOrCreate(ctx context.Context, name string) (models.Topic, error) {
	return getOrCreateTopic(r.db.WithContext(ctx), name)
}

func getOrCreateTopic(tx *gorm.DB, name string) (models.Topic, error) {
	topic := models.Topic{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&topic).Error
	if err != nil {
		return models.Topic{}, err
	}

	if topic.ID != 0 {
		return topic, nil
	}

	// Conflict: another request created the topic first. Re-read it.
	if err := tx.Where("name = ?", name).First(&topic).Error; err != nil {
		return models.Topic{}, err
	}

	return topic, nil
}

// likeEscaper neutralizes LIKE metacharacters so the query is matched as a
// literal substring. Clauses using containsPattern must carry ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lowercase LIKE pattern matching the query anywhere
// in the column. LOWER on both sides keeps behaviour identical across
// postgres and sqlite.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}
