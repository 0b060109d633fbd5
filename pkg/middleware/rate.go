// Package middleware holds the HTTP middleware mounted by internal/kernel.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/response"
)

// window counts requests from one client in a fixed time window.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter allows max requests per client per period. The credential-checking
// routes use it to slow down password guessing.
type Limiter struct {
	max    int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

func NewLimiter(max int, period time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		period:  period,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

// Allow records one request from client and reports whether it is within the limit.
func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[client]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[client] = w
		l.evict(now)
	}

	w.count++
	return w.count <= l.max
}

// evict drops expired windows; called with mu held.
func (l *Limiter) evict(now time.Time) {
	if len(l.clients) < 1024 {
		return
	}
	for k, w := range l.clients {
		if now.After(w.resetAt) {
			delete(l.clients, k)
		}
	}
}

// RateLimit answers 429 once a client exceeds the limiter's budget.
func RateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
