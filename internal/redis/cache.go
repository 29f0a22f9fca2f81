package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"relay-chat/internal/domain/room"
)

// Cache key patterns:
// - room:{room_id} - 5m TTL, room metadata cache

type CacheConfig struct {
	RoomTTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{RoomTTL: 5 * time.Minute}
}

// RoomCache keeps room metadata in Redis so hot rooms skip the database.
// A miss or a Redis fault both read as a plain miss; the caller falls back
// to storage.
type RoomCache struct {
	client *goredis.Client
	config CacheConfig
}

func NewRoomCache(client *goredis.Client, config CacheConfig) *RoomCache {
	return &RoomCache{client: client, config: config}
}

func (c *RoomCache) Get(ctx context.Context, id uuid.UUID) (room.ChatRoom, bool) {
	data, err := c.client.Get(ctx, roomKey(id)).Result()
	if err != nil {
		return room.ChatRoom{}, false
	}
	var rm room.ChatRoom
	if err := json.Unmarshal([]byte(data), &rm); err != nil {
		return room.ChatRoom{}, false
	}
	return rm, true
}

func (c *RoomCache) Set(ctx context.Context, rm room.ChatRoom) {
	data, err := json.Marshal(rm)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, roomKey(rm.ID), data, c.config.RoomTTL).Err()
}

func (c *RoomCache) Invalidate(ctx context.Context, id uuid.UUID) {
	_ = c.client.Del(ctx, roomKey(id)).Err()
}

func roomKey(id uuid.UUID) string {
	return fmt.Sprintf("room:%s", id.String())
}
