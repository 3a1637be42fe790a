package chat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const redisChannelPrefix = "forkful:chat:"

// RedisBus fans events out through Redis pub/sub so multiple gateway
// instances share one broadcast stream. Redis preserves per-channel publish
// order, which keeps the per-room ordering guarantee across instances.
type RedisBus struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewRedisBus creates a bus backed by the given Redis client.
func NewRedisBus(client rueidis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, logger: logger.Named("redisbus")}
}

// Publish serializes the event onto the room's channel.
func (b *RedisBus) Publish(room string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	cmd := b.client.B().Publish().Channel(redisChannelPrefix + room).Message(string(payload)).Build()
	return b.client.Do(context.Background(), cmd).Error()
}

// Subscribe spawns a receiver goroutine for the room's channel. The cancel
// func tears the subscription down.
func (b *RedisBus) Subscribe(room string, handler func(Event)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	channel := redisChannelPrefix + room

	go func() {
		cmd := b.client.B().Subscribe().Channel(channel).Build()
		err := b.client.Receive(ctx, cmd, func(msg rueidis.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				b.logger.Warn("dropping malformed bus event", zap.String("room", room), zap.Error(err))
				return
			}
			handler(event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Error("subscription ended", zap.String("room", room), zap.Error(err))
		}
	}()

	return cancel, nil
}

// Close releases the underlying Redis client.
func (b *RedisBus) Close() {
	b.client.Close()
}
