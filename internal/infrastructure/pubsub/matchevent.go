package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/shared/goroutine"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const MatchFormedChannel = "harbinger:matchmaking:match_formed"

// MatchFormedMessage is the wire format on MatchFormedChannel.
type MatchFormedMessage struct {
	Event      matchmaking.MatchFormedEvent `json:"event"`
	InstanceID string                       `json:"instance_id,omitempty"`
}

// RedisMatchEventBus publishes formed matches to every instance through Redis Pub/Sub.
type RedisMatchEventBus struct {
	client     *redis.Client
	logger     logger.Interface
	instanceID string
	local      func(event matchmaking.MatchFormedEvent)
}

type BusOption func(*RedisMatchEventBus)

// WithLocalDelivery hands events published by this instance straight to deliver.
// The subscriber then drops this instance's own messages so each event is delivered once.
func WithLocalDelivery(deliver func(event matchmaking.MatchFormedEvent)) BusOption {
	return func(b *RedisMatchEventBus) {
		b.local = deliver
	}
}

func NewRedisMatchEventBus(client *redis.Client, logger logger.Interface, opts ...BusOption) *RedisMatchEventBus {
	b := &RedisMatchEventBus{
		client:     client,
		logger:     logger,
		instanceID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisMatchEventBus) PublishMatchFormed(ctx context.Context, event matchmaking.MatchFormedEvent) error {
	if b.local != nil {
		b.local(event)
	}

	data, err := json.Marshal(MatchFormedMessage{Event: event, InstanceID: b.instanceID})
	if err != nil {
		return fmt.Errorf("failed to marshal match formed event: %w", err)
	}

	if err := b.client.Publish(ctx, MatchFormedChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish match formed event",
			"match_id", event.MatchID,
			"error", err,
		)
		return fmt.Errorf("failed to publish match formed event: %w", err)
	}

	b.logger.Debugw("match formed event published",
		"match_id", event.MatchID,
	)
	return nil
}

// SubscribeMatchFormed delivers every event on the channel to handler until ctx ends,
// reconnecting with exponential backoff.
func (b *RedisMatchEventBus) SubscribeMatchFormed(ctx context.Context, handler func(event matchmaking.MatchFormedEvent)) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := b.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warnw("match event subscription disconnected, reconnecting",
			"channel", MatchFormedChannel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *RedisMatchEventBus) subscribe(ctx context.Context, handler func(event matchmaking.MatchFormedEvent)) error {
	ps := b.client.Subscribe(ctx, MatchFormedChannel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", MatchFormedChannel, err)
	}

	b.logger.Infow("subscribed to match event channel",
		"channel", MatchFormedChannel,
	)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("match event channel closed", "channel", MatchFormedChannel)
				return nil
			}

			var decoded MatchFormedMessage
			if err := json.Unmarshal([]byte(msg.Payload), &decoded); err != nil {
				b.logger.Warnw("failed to unmarshal match formed event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}
			if b.local != nil && decoded.InstanceID == b.instanceID {
				continue
			}

			goroutine.SafeGo(b.logger, "match-event-handler", func() {
				handler(decoded.Event)
			})
		}
	}
}
