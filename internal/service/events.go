package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Activity event types published on the forum subject.
const (
	EventRoomCreated    = "room.created"
	EventRoomUpdated    = "room.updated"
	EventRoomDeleted    = "room.deleted"
	EventMessagePosted  = "message.posted"
	EventMessageDeleted = "message.deleted"
)

// ActivityEvent describes a forum mutation fanned out to external consumers.
type ActivityEvent struct {
	Type       string    `json:"type"`
	RoomID     uint      `json:"room_id,omitempty"`
	MessageID  uint      `json:"message_id,omitempty"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher fans out activity events. Implementations must tolerate a
// missing broker: event delivery is best-effort and never fails a request.
type EventPublisher interface {
	Publish(ctx context.Context, event ActivityEvent)
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher builds an event publisher backed by NATS. A nil connection
// yields a publisher that silently drops events, so the service runs fine
// without a broker configured.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	if subject == "" {
		subject = "talkroom.activity"
	}

	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(_ context.Context, event ActivityEvent) {
	if p.conn == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to encode activity event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to publish activity event")
	}
}
