// Package events publishes option change events to a Redis stream so other
// plugin instances can drop stale caches.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

// EventSettingUpdated is emitted after set_setting writes an option.
const EventSettingUpdated = "setting.updated"

const asyncPublishTimeout = 5 * time.Second

// SettingEvent is the stream payload.
type SettingEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	Option    string    `json:"option"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher appends events to a Redis stream. A nil *Publisher is a valid
// no-op publisher.
type Publisher struct {
	client *redis.Client
	stream string
	log    logger.Logger
}

// NewPublisher returns nil when client is nil.
func NewPublisher(client *redis.Client, stream string, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{client: client, stream: stream, log: log}
}

// NewSettingEvent stamps an event for option.
func NewSettingEvent(option, value string) SettingEvent {
	return SettingEvent{
		EventID:   uuid.New(),
		EventType: EventSettingUpdated,
		Option:    option,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// Publish appends event to the stream.
func (p *Publisher) Publish(ctx context.Context, event SettingEvent) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"event": string(payload)},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to stream %s: %w", p.stream, err)
	}

	p.log.Debug("Published setting event",
		logger.String("option", event.Option),
		logger.String("stream_id", id),
	)
	return nil
}

// SettingUpdated publishes in the background; failures are only logged.
func (p *Publisher) SettingUpdated(option, value string) {
	if p == nil {
		return
	}

	event := NewSettingEvent(option, value)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			p.log.Error("Async publish failed",
				logger.String("option", option),
				logger.Error(err),
			)
		}
	}()
}
