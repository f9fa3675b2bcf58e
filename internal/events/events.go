// Package events publishes domain events to the configured message broker.
// Publishing is fire-and-forget: a failed publish is logged and never fails
// the request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/EduNet2023/NovoApkPesca/internal/metrics"
	"github.com/EduNet2023/NovoApkPesca/internal/mq"
)

// Event types carried in the envelope and the event_type attribute.
const (
	UserRegistered  = "user.registered"
	LocationCreated = "location.created"
	SessionCreated  = "session.created"
	CatchCreated    = "catch.created"
)

// DefaultChannel is used when EVENTS_CHANNEL is not set.
const DefaultChannel = "fishing-log-events"

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher emits domain events to one broker channel. A nil Publisher is
// valid and drops every event, so callers never gate on configuration.
type Publisher struct {
	backend mq.Backend
	channel string
	logger  *slog.Logger
}

func NewPublisher(backend mq.Backend, channel string, logger *slog.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{backend: backend, channel: channel, logger: logger}
}

// Emit publishes one event envelope.
func (p *Publisher) Emit(ctx context.Context, eventType string, data any) {
	if p == nil || p.backend == nil {
		return
	}

	body, err := json.Marshal(envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		p.logger.Warn("event encode failed", "event_type", eventType, "error", err)
		return
	}

	_, err = p.backend.Publish(ctx, p.channel, body, map[string]string{"event_type": eventType})
	metrics.RecordEventPublished(eventType, err == nil)
	if err != nil {
		p.logger.Warn("event publish failed", "event_type", eventType, "error", err)
	}
}
