package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	name   string
	limit  rate.Limit
	burst  int
	logger *slog.Logger

	mu       sync.Mutex
	visitors map[string]*visitor

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	Name              string        // shows up in rejection logs
	RequestsPerSecond float64       // sustained rate per client
	BurstSize         int           // tokens available at once
	CleanupInterval   time.Duration // how often idle clients are swept
	TTL               time.Duration // idle time before a client is forgotten
	Logger            *slog.Logger
}

// NewRateLimiter starts a limiter and its sweeper. Call Stop when done.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 3 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	rl := &RateLimiter{
		name:     cfg.Name,
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
		logger:   cfg.Logger.With("component", "rate_limiter", "limiter", cfg.Name),
		visitors: make(map[string]*visitor),
		done:     make(chan struct{}),
	}
	go rl.sweep(cfg.CleanupInterval, cfg.TTL)
	return rl
}

// Stop ends the sweeper goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) sweep(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > ttl {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// reserve takes a token for ip. When none is available it returns false and
// how long the client should wait.
func (rl *RateLimiter) reserve(ip string) (bool, time.Duration) {
	r := rl.limiterFor(ip).Reserve()
	if !r.OK() {
		return false, time.Second
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return false, d
	}
	return true, 0
}

// RejectFunc writes the response for a request over the limit. err wraps
// apperrors.ErrRateLimited; Retry-After is already set.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware rejects requests over the limit with 429. Browsers get a short
// HTML page, everything else a fixed JSON body.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return rl.Handler(nil)(next)
}

// Handler is Middleware with non-browser rejections written by reject.
func (rl *RateLimiter) Handler(reject RejectFunc) func(http.Handler) http.Handler {
	if reject == nil {
		reject = writeLimited
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			ok, wait := rl.reserve(ip)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			rl.logger.WarnContext(r.Context(), "request rate limited",
				"client_ip", ip,
				"method", r.Method,
				"path", r.URL.Path,
				"retry_after", wait.String(),
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			if wantsHTML(r) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`<p class="alert">Too many requests. Please wait a moment and try again.</p>`))
				return
			}
			reject(w, r, fmt.Errorf("%s limiter: %w", rl.name, apperrors.ErrRateLimited))
		})
	}
}

func writeLimited(w http.ResponseWriter, _ *http.Request, _ error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later.","code":"RATE_LIMITED"}`))
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

func wantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if ip, _, err := net.SplitHostPort(first); err == nil {
			return ip
		}
		return first
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
