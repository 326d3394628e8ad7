package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/quorahq/accountserver/internal/logging"
)

const (
	EventUserRegistered = "user.registered"
	EventSessionOpened  = "session.opened"
	EventSessionClosed  = "session.closed"
)

// EventPublisher sends a payload to a named channel. *mq.MQ satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// AccountEvent is the JSON payload published for account lifecycle changes.
type AccountEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	SessionID  int64     `json:"sessionId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type eventEmitter struct {
	publisher EventPublisher
	channel   string
}

// emit publishes event best-effort; a nil emitter is a no-op.
func (e *eventEmitter) emit(ctx context.Context, log logging.Logger, event AccountEvent) {
	if e == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Warn(ctx, "encode account event failed", "type", event.Type, "error", err)
		return
	}
	if _, err := e.publisher.Publish(ctx, e.channel, data, map[string]string{"type": event.Type}); err != nil {
		log.Warn(ctx, "publish account event failed", "type", event.Type, "channel", e.channel, "error", err)
	}
}
