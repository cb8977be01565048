package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"car-rental/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Script increments the counter per client dan set expiry on first hit.
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type rateBucket struct {
	count       int
	windowStart time.Time
}

// RateLimit middleware - fixed window per client IP.
// Pakai Redis kalau tersedia, fallback ke in-memory counter kalau rdb nil.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}

	var mu sync.Mutex
	buckets := make(map[string]*rateBucket)

	allowLocal := func(key string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		b, ok := buckets[key]
		if !ok || now.Sub(b.windowStart) >= window {
			buckets[key] = &rateBucket{count: 1, windowStart: now}
			return true
		}

		b.count++
		return b.count <= limit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + clientKey(r)
			allowed := true

			if rdb != nil {
				count, err := rateLimitScript.Run(r.Context(), rdb, []string{key}, window.Milliseconds()).Int()
				if err != nil {
					// Redis down, fail open biar service tetap jalan
					logger.Warn("Rate limit check failed, allowing request",
						zap.Error(err),
						zap.String("key", key))
				} else {
					allowed = count <= limit
				}
			} else {
				allowed = allowLocal(key, time.Now())
			}

			if !allowed {
				logger.Warn("Rate limit exceeded",
					zap.String("key", key),
					zap.String("path", r.URL.Path))
				utils.ResponseTooManyRequests(w, "Too many requests, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies caller: X-Forwarded-For kalau ada, else remote IP
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
