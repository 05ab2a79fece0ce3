package models

import "time"

// Topic is a label grouping rooms. Topics are created on demand when a room
// references a name that does not exist yet and are never deleted.
type Topic struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Room is a discussion thread hosted by a single user under a single topic.
// The host never changes after creation. Participants is the set of users who
// have posted at least one message in the room.
type Room struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	TopicID      uint      `gorm:"index;not null" json:"topic_id"`
	Topic        Topic     `json:"topic"`
	HostID       uint      `gorm:"index;not null" json:"host_id"`
	Host         User      `json:"host"`
	Participants []User    `gorm:"many2many:room_participants" json:"participants,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
