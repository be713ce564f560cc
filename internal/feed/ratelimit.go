package feed

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles requests per client IP using Redis fixed windows.
// Redis errors fail open: throttling is protection, not a dependency.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Limit returns a middleware allowing at most limit requests per window for
// each client IP, counted separately per name.
func (rl *RateLimiter) Limit(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("ratelimit:%s:%s", name, clientIP(r))

			count, err := rl.rdb.Incr(r.Context(), key).Result()
			if err != nil {
				log.Printf("feed-service: rate limiter: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rl.rdb.Expire(r.Context(), key, window)
			}

			if count > int64(limit) {
				retryAfter := int(window.Seconds())
				if ttl, err := rl.rdb.TTL(r.Context(), key).Result(); err == nil && ttl > 0 {
					retryAfter = int(ttl.Seconds())
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP trusts middleware.RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
