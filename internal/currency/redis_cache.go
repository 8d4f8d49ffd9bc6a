package currency

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "lms:rate:"

// RedisCache keeps exchange rates in Redis so repeated payments within the
// TTL skip the rate API.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) GetRate(ctx context.Context, code string) (float64, bool) {
	val, err := r.client.Get(ctx, rateKeyPrefix+code).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("rate cache read failed", "currency", code, "error", err)
		}
		return 0, false
	}
	rate, err := strconv.ParseFloat(val, 64)
	if err != nil || rate <= 0 {
		return 0, false
	}
	return rate, true
}

func (r *RedisCache) SetRate(ctx context.Context, code string, rate float64, ttl time.Duration) {
	val := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := r.client.Set(ctx, rateKeyPrefix+code, val, ttl).Err(); err != nil {
		slog.Warn("rate cache write failed", "currency", code, "error", err)
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
