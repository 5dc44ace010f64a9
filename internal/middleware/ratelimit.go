package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/remindhq/reminder-api/internal/request"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// DefaultRateLimit is applied when no rate is configured (5 requests per second)
const DefaultRateLimit = "5-S"

// RedisRateLimiter wraps the Redis client backing the rate limit store
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(redisURL string) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRateLimiter{client: client}, nil
}

// Close closes the Redis connection
func (r *RedisRateLimiter) Close() error {
	return r.client.Close()
}

// Ping checks if Redis is reachable
func (r *RedisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Client exposes the underlying Redis client
func (r *RedisRateLimiter) Client() *redis.Client {
	return r.client
}

// RateLimit returns middleware enforcing rateStr (ulule formatted rate,
// e.g. "5-S" or "100-M") per client IP, counted in Redis.
func RateLimit(redisLimiter *RedisRateLimiter, rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = DefaultRateLimit
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rateStr, err)
	}

	store, err := redisstore.NewStore(redisLimiter.Client())
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}

	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
