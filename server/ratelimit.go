package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shanebasham/artstore/metrics"
)

// DefaultMaxClients bounds the number of per-client buckets.
const DefaultMaxClients = 10000

// RateLimiter keeps one token bucket per client address. Once MaxClients
// buckets are tracked and none is idle, new clients share a single overflow
// bucket until Cleanup frees room.
type RateLimiter struct {
	MaxClients int

	limiters map[string]*rate.Limiter
	overflow *rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		MaxClients: DefaultMaxClients,
		limiters:   make(map[string]*rate.Limiter),
		overflow:   rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		rate:       rate.Limit(requestsPerSecond),
		burst:      burst,
	}
}

// Allow reports whether the client identified by key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Len returns the number of clients with their own bucket.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}
	if len(rl.limiters) >= rl.MaxClients {
		rl.cleanupLocked(time.Now())
		if len(rl.limiters) >= rl.MaxClients {
			return rl.overflow
		}
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[key] = limiter
	return limiter
}

// Cleanup forgets idle clients whose bucket has refilled.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cleanupLocked(time.Now())
}

func (rl *RateLimiter) cleanupLocked(now time.Time) {
	for key, limiter := range rl.limiters {
		if limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// sweeper is implemented by stores that expire idle entries.
type sweeper interface {
	Sweep() int
}

// StartBackground starts the server's housekeeping until ctx is done: idle
// rate-limit buckets and, when the store supports it, expired tab entries.
func (s *Server) StartBackground(ctx context.Context) {
	s.limiter.StartCleanup(ctx, time.Minute)
	if store, ok := s.deps.Ephemeral.(sweeper); ok {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := store.Sweep(); n > 0 {
						log.Debug().Int("removed", n).Msg("Swept expired tab entries")
					}
				}
			}
		}()
	}
}

// RateLimitMiddleware answers 429 when the client has used up its bucket.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := clientAddr(r)
		if !s.limiter.Allow(key) {
			route := metrics.Route(r)
			metrics.RecordRateLimited(route)
			log.Warn().Str("client", key).Str("route", route).Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "429 - Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
