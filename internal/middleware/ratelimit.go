package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	// Max requests per window
	Max int
	// Window duration
	Window time.Duration
	// Prefix is prepended to every Redis key
	Prefix string
	// KeyGenerator identifies the client a request is counted against
	KeyGenerator func(*fiber.Ctx) string
	// Skip function
	Skip func(*fiber.Ctx) bool
	// LimitReached is called instead of the next handler once the limit is hit
	LimitReached fiber.Handler
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Max:    120,
		Window: time.Minute,
		Prefix: "ratelimit:",
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Too Many Requests",
				"message": "Rate limit exceeded. Please try again later.",
			})
		},
	}
}

// RateLimitMiddleware limits requests per client with a sliding window kept
// in a Redis sorted set. Redis failures let the request through.
type RateLimitMiddleware struct {
	redis  *redis.Client
	config RateLimitConfig
	logger *zap.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware. Zero fields in
// config fall back to the defaults.
func NewRateLimitMiddleware(redisClient *redis.Client, logger *zap.Logger, config ...RateLimitConfig) *RateLimitMiddleware {
	cfg := DefaultRateLimitConfig()
	if len(config) > 0 {
		c := config[0]
		if c.Max > 0 {
			cfg.Max = c.Max
		}
		if c.Window > 0 {
			cfg.Window = c.Window
		}
		if c.Prefix != "" {
			cfg.Prefix = c.Prefix
		}
		if c.KeyGenerator != nil {
			cfg.KeyGenerator = c.KeyGenerator
		}
		if c.LimitReached != nil {
			cfg.LimitReached = c.LimitReached
		}
		cfg.Skip = c.Skip
	}

	return &RateLimitMiddleware{
		redis:  redisClient,
		config: cfg,
		logger: logger,
	}
}

// Handler returns the rate limit handler
func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		key := m.config.Prefix + m.config.KeyGenerator(c)
		now := time.Now()
		windowStart := now.Add(-m.config.Window).UnixMilli()
		reset := strconv.FormatInt(now.Add(m.config.Window).Unix(), 10)
		ctx := c.UserContext()

		member := uuid.NewString()

		// The request is recorded and counted atomically.
		pipe := m.redis.TxPipeline()
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
		countCmd := pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, m.config.Window*2)
		if _, err := pipe.Exec(ctx); err != nil {
			m.logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			return c.Next()
		}
		count := countCmd.Val()

		c.Set("X-RateLimit-Limit", strconv.Itoa(m.config.Max))
		c.Set("X-RateLimit-Reset", reset)

		if count > int64(m.config.Max) {
			// Rejected requests do not hold a slot in the window.
			if err := m.redis.ZRem(ctx, key, member).Err(); err != nil {
				m.logger.Warn("rate limit release failed", zap.String("key", key), zap.Error(err))
			}
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("Retry-After", strconv.FormatInt(int64(m.config.Window.Seconds()), 10))
			return m.config.LimitReached(c)
		}

		c.Set("X-RateLimit-Remaining", strconv.Itoa(m.config.Max-int(count)))
		return c.Next()
	}
}
