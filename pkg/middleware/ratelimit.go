package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     rate.Limit
	burst   int
	idle    time.Duration
	log     *zap.Logger
}

func NewRateLimiter(config utils.RateLimitConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(config.RPS),
		burst:   config.Burst,
		idle:    3 * time.Minute,
		log:     log.With(zap.String("middleware", "ratelimit")),
	}
}

func (l *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	// evict idle buckets as we go so the map stays bounded
	if len(l.clients) > 1024 {
		for k, other := range l.clients {
			if now.Sub(other.lastSeen) > l.idle {
				delete(l.clients, k)
			}
		}
	}
	return c.limiter
}

// Handler rejects requests over the per-client budget with 429.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !l.limiter(key, time.Now()).Allow() {
			l.log.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.String("path", r.URL.Path),
			)
			utils.ResponseTooManyRequests(w, "Too many requests, please slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
