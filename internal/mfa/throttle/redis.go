package throttle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nexosupport/nexomfa/pkg/idx"
)

// RedisLimiter is a sliding-window log in a sorted set, shared by every
// replica pointing at the same redis. Scores are send times in microseconds.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RedisLimiter{
		client: client,
		prefix: "mfa:throttle:",
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	redisKey := l.prefix + key
	now := l.now()
	cutoff := now.Add(-l.window).UnixMicro()
	member := idx.NewAt(now).String()

	var card *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(now.UnixMicro()), Member: member})
		card = pipe.ZCard(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("throttle: record send: %w", err)
	}

	if card.Val() > int64(l.limit) {
		// Rejected sends do not use up the budget.
		if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return fmt.Errorf("throttle: drop rejected send: %w", err)
		}
		return ErrLimited
	}
	return nil
}

// Reset clears the send log for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
