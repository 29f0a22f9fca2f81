package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"relay-chat/pkg/logger"
)

// RedisBridge publishes events through Redis Pub/Sub and replays events
// published by other instances into the local hub, so subscribers of a room
// see every event no matter which instance handled the request.
type RedisBridge struct {
	client *redis.Client
	hub    Broadcaster
	log    *logger.Logger

	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func NewRedisBridge(client *redis.Client, hub Broadcaster, log *logger.Logger) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, log: log}
}

func (b *RedisBridge) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.pubsub = b.client.PSubscribe(ctx, "room:*:events")
	go b.listen(ctx)
}

func (b *RedisBridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.pubsub != nil {
		_ = b.pubsub.Close()
	}
}

func (b *RedisBridge) Publish(ctx context.Context, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, env.Channel(), data).Err(); err != nil && b.log != nil {
		b.log.Errorf("failed to publish event to %s: %v", env.Channel(), err)
	}
}

func (b *RedisBridge) listen(ctx context.Context) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.hub.Broadcast(msg.Channel, []byte(msg.Payload))
		}
	}
}
