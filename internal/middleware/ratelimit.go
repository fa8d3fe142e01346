package middleware

import (
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/railway-seat-reservation/internal/config"
)

// tokenBucketScript implements a refilling token bucket atomically in
// Redis.  State is a hash per key holding the remaining tokens and
// the last refill timestamp; the script returns whether the request
// is allowed, the remaining tokens and how long to wait when denied.
var tokenBucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'refilled_ms')
    local tokens = tonumber(state[1])
    local refilled = tonumber(state[2])
    if tokens == nil or refilled == nil then
        tokens = capacity
        refilled = now_ms
    end

    if interval_ms > 0 and refill > 0 then
        local elapsed = math.max(0, now_ms - refilled)
        local steps = math.floor(elapsed / interval_ms)
        if steps > 0 then
            tokens = math.min(capacity, tokens + steps * refill)
            refilled = refilled + steps * interval_ms
        end
    end

    local allowed = 0
    local wait_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        wait_ms = interval_ms - (now_ms - refilled)
        if wait_ms < 0 then wait_ms = 0 end
    end

    redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, wait_ms }
`)

// NewTokenBucket returns a middleware enforcing a per-key token
// bucket.  On Redis errors the middleware fails open so a cache
// outage never takes the API down with it.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            args := []interface{}{
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL / time.Second),
            }

            ctx := c.Request().Context()
            res, err := tokenBucketScript.Run(ctx, rdb, []string{key}, args...).Int64Slice()
            if err != nil || len(res) != 3 {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] script failed for key=%s: %v", key, err)
                }
                return next(c)
            }
            allowed, remaining, waitMs := res[0] == 1, res[1], res[2]

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if !allowed {
                secs := int(math.Ceil(float64(waitMs) / 1000.0))
                if secs < 0 {
                    secs = 0
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "retry_after": secs,
                })
            }
            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := currentUserID(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default: // "ip_user_route"
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
