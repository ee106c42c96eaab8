package server

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterResetInterval = time.Hour

// clientLimiter hands out one token bucket per client IP.
type clientLimiter struct {
	limiters  map[string]*rate.Limiter
	lastReset time.Time
	limit     rate.Limit
	burst     int
	mu        sync.Mutex
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limiters:  make(map[string]*rate.Limiter),
		lastReset: time.Now(),
		limit:     rate.Limit(perSecond),
		burst:     burst,
	}
}

func (c *clientLimiter) allow(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop idle buckets periodically so the map stays bounded.
	if time.Since(c.lastReset) > limiterResetInterval {
		c.limiters = make(map[string]*rate.Limiter)
		c.lastReset = time.Now()
	}

	limiter, ok := c.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.limiters[ip] = limiter
	}
	return limiter.Allow()
}

// limitAnalysis guards routes that reach an analysis provider. It is a no-op
// when no rate limit is configured.
func (s *Server) limitAnalysis(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			s.logger.Warn("Rate limit exceeded", "path", r.URL.Path, "client", clientIP(r))
			s.writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
