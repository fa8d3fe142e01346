package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/railway-seat-reservation/internal/config"
)

// cachedResponse is the envelope stored in Redis: status, headers and
// body of a previously served response.  The body round-trips through
// base64 via encoding/json.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// recordingWriter duplicates the response body into a buffer while
// forwarding it to the client, stopping at limit bytes so oversized
// responses are simply not cached.
type recordingWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    written  int64
    limit    int64
    overflow bool
}

func (rw *recordingWriter) WriteHeader(code int) {
    rw.status = code
    rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
    rw.written += int64(len(b))
    if rw.limit > 0 && rw.written > rw.limit {
        rw.overflow = true
    } else {
        rw.buf.Write(b)
    }
    return rw.ResponseWriter.Write(b)
}

// cacheKey builds a stable Redis key from the configured strategy.
// The variable tail is hashed so query strings of any length produce
// fixed-size keys.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    var tail string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        tail = c.Path()
    case "method_route":
        tail = r.Method + ":" + c.Path()
    case "method_route_query":
        tail = r.Method + ":" + c.Path() + "?" + r.URL.RawQuery
    default: // "route_query"
        tail = c.Path() + "?" + r.URL.RawQuery
    }
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewRedisCache returns a middleware that serves identical responses
// from Redis for the configured methods.  Only 200 responses are
// stored.  With caching disabled or no Redis client the middleware is
// a no-op passthrough.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 15 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
                    for k, vals := range hit.Header {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(hit.Status)
                    if len(hit.Body) > 0 {
                        _, _ = c.Response().Write(hit.Body)
                    }
                    return nil
                }
            }

            rw := &recordingWriter{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          int64(cfg.MaxBodyBytes),
            }
            c.Response().Writer = rw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if rw.status == http.StatusOK && !rw.overflow {
                entry := cachedResponse{
                    Status: rw.status,
                    Header: make(http.Header, len(c.Response().Header())),
                    Body:   rw.buf.Bytes(),
                }
                for k, vals := range c.Response().Header() {
                    vv := make([]string, len(vals))
                    copy(vv, vals)
                    entry.Header[k] = vv
                }
                if raw, err := json.Marshal(entry); err == nil {
                    _ = rdb.SetEx(context.Background(), key, raw, ttl).Err()
                }
            }
            return nil
        }
    }
}
