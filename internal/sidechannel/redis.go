package sidechannel

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"admin-notify-service/internal/domain"
)

// RedisNotifier publishes each notification as JSON to a Redis
// channel, where desktop bridges or other dashboard sessions can pick
// it up.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

func (r *RedisNotifier) Deliver(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, payload).Err()
}
