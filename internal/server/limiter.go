package server

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ppiankov/clausula/internal/logger"
)

// maxTrackedClients bounds the limiter map; past it the map is reset
const maxTrackedClients = 10000

// ClientLimiter implements per-client token bucket rate limiting
type ClientLimiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewClientLimiter creates a limiter. A non-positive rate disables limiting.
func NewClientLimiter(requestsPerSecond float64, burst int) *ClientLimiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &ClientLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Allow reports whether client may make a request now
func (l *ClientLimiter) Allow(client string) bool {
	return l.getLimiter(client).Allow()
}

func (l *ClientLimiter) getLimiter(client string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[client]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[client]; exists {
		return limiter
	}

	if len(l.limiters) >= maxTrackedClients {
		l.limiters = make(map[string]*rate.Limiter)
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[client] = limiter

	return limiter
}

// Middleware rejects requests over the client's budget with 429. It keys on
// RemoteAddr, so it belongs after middleware.RealIP.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r.RemoteAddr)
		if !l.Allow(client) {
			logger.FromContext(r.Context()).Warn("Rate limit exceeded", "client", client, "path", r.URL.Path)
			writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
