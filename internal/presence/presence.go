package presence

import (
	"context"
	"fmt"
	"time"

	"dm-service/internal/database"
)

// Tracker mirrors the online set to external storage so other services
// can answer "who is online" without holding a live connection registry.
// The in-process registry stays the source of truth; mirror failures are
// logged by the caller and never affect delivery.
type Tracker interface {
	SetOnline(ctx context.Context, userID uint) error
	SetOffline(ctx context.Context, userID uint) error
}

// NoopTracker is used when no Redis address is configured.
type NoopTracker struct{}

func (NoopTracker) SetOnline(context.Context, uint) error  { return nil }
func (NoopTracker) SetOffline(context.Context, uint) error { return nil }

const onlineSetKey = "online_users"

type RedisTracker struct {
	client *database.RedisClient
}

func NewRedisTracker(client *database.RedisClient) *RedisTracker {
	return &RedisTracker{client: client}
}

func (t *RedisTracker) SetOnline(ctx context.Context, userID uint) error {
	rdb := t.client.GetClient()
	pipe := rdb.Pipeline()

	pipe.SAdd(ctx, onlineSetKey, userID)
	pipe.HSet(ctx, statusKey(userID), map[string]interface{}{
		"status":    "online",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, statusKey(userID), 5*time.Minute)

	_, err := pipe.Exec(ctx)
	return err
}

func (t *RedisTracker) SetOffline(ctx context.Context, userID uint) error {
	rdb := t.client.GetClient()
	pipe := rdb.Pipeline()

	pipe.SRem(ctx, onlineSetKey, userID)
	pipe.HSet(ctx, statusKey(userID), map[string]interface{}{
		"status":    "offline",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, statusKey(userID), 24*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

func (t *RedisTracker) OnlineUsers(ctx context.Context) ([]string, error) {
	return t.client.GetClient().SMembers(ctx, onlineSetKey).Result()
}

func statusKey(userID uint) string {
	return fmt.Sprintf("user:%d:status", userID)
}
