package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

var rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rate_limited_requests_total",
	Help: "Requests rejected by the per-tenant rate limiter",
})

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "ratelimit:",
	}
}

// rateLimitScript is an atomic Lua script for sliding window rate limiting.
// Returns {allowed, remaining, reset_at_ms}.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, member)
    redis.call('PEXPIRE', key, window + 1000)
    return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local reset_at = now + window
if #oldest >= 2 then
    reset_at = tonumber(oldest[2]) + window
end
return {0, 0, reset_at}
`)

// RateLimit limits protocol requests per tenant and client IP. It must run
// after ResolveTenant. Redis errors fail open.
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	var seq atomic.Uint64
	return func(c *gin.Context) {
		if redisClient == nil || cfg.RequestsPerMinute <= 0 || shouldSkipTenant(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cfg.KeyPrefix + tenant.IDFromContext(ctx) + ":" + c.ClientIP()

		now := time.Now().UnixMilli()
		member := fmt.Sprintf("%d:%d", now, seq.Add(1))

		result, err := rateLimitScript.Run(ctx, redisClient, []string{key},
			cfg.RequestsPerMinute, rateLimitWindow.Milliseconds(), now, member,
		).Int64Slice()
		if err != nil || len(result) != 3 {
			c.Next()
			return
		}

		allowed, remaining, resetAt := result[0] == 1, result[1], result[2]
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			retryAfter := (resetAt - now) / 1000
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			rateLimitedTotal.Inc()
			common.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		c.Next()
	}
}
