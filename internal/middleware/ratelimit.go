package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/config"
)

// tokenBucket refills refill tokens every interval up to capacity and takes
// one per request. Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
	tokens = capacity
	last = now
end

local elapsed = math.max(0, now - last)
local steps = math.floor(elapsed / interval)
if steps > 0 then
	tokens = math.min(capacity, tokens + steps * refill)
	last = last + steps * interval
end

local allowed = 0
local retry = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry = math.max(0, interval - (now - last))
end

redis.call('HSET', key, 'tokens', tokens, 'last', last)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, retry}
`)

// SubjectFunc names an unauthenticated caller. An empty result leaves the
// caller anonymous.
type SubjectFunc func(c echo.Context) string

type RateOption func(*rateOptions)

type rateOptions struct {
	anon SubjectFunc
}

// WithAnonSubject keys requests that carry no user id on fn instead of
// "anon".
func WithAnonSubject(fn SubjectFunc) RateOption {
	return func(o *rateOptions) { o.anon = fn }
}

const maxSubjectBody = 16 << 10

// AccountSubject reads the first non-empty field of a JSON request body,
// so login and register attempts are limited per named account. The body
// is restored for the handler.
func AccountSubject(fields ...string) SubjectFunc {
	return func(c echo.Context) string {
		req := c.Request()
		if req.Body == nil {
			return ""
		}
		body, err := io.ReadAll(io.LimitReader(req.Body, maxSubjectBody))
		req.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), req.Body))
		if err != nil {
			return ""
		}
		var payload map[string]any
		if json.Unmarshal(body, &payload) != nil {
			return ""
		}
		for _, f := range fields {
			if v, ok := payload[f].(string); ok {
				if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
					return "account:" + v
				}
			}
		}
		return ""
	}
}

// RateLimit throttles requests with a Redis token bucket per caller. The
// caller is the user id set by Identify or JWTAuth. When Redis is
// unreachable the request is let through and the failure logged.
func RateLimit(cfg config.RateLimitConfig, rdb redis.Scripter, log *zap.Logger, opts ...RateOption) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	var o rateOptions
	for _, opt := range opts {
		opt(&o)
	}
	limit := strconv.Itoa(cfg.Capacity)
	ttl := int64(math.Ceil(cfg.TTL.Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c, o.anon)
			res, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(), ttl).Int64Slice()
			if err != nil || len(res) != 3 {
				log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 1 {
				return next(c)
			}

			secs := int64(math.Ceil(float64(res[2]) / 1000))
			h.Set("Retry-After", strconv.FormatInt(secs, 10))
			return c.JSON(http.StatusTooManyRequests, api.ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "too_many_requests",
			})
		}
	}
}

func rateKey(cfg config.RateLimitConfig, c echo.Context, anon SubjectFunc) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	who := subject(c)
	if _, ok := UserID(c); !ok && anon != nil {
		if s := anon(c); s != "" {
			who = s
		}
	}
	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", who)
	default:
		parts = append(parts, "ip", ip, "user", who)
	}
	return strings.Join(parts, ":")
}
