// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// limiterCore checks a key against a limit, preferring the shared
// redis counter and falling back to a per-process limiter when redis
// is unreachable. The fallback counts per instance rather than across
// the fleet, but keeps the API responsive through a redis outage.
type limiterCore struct {
	remote *redis_rate.Limiter
	local  *localLimiter
}

func newLimiterCore(rdb *redis.Client) *limiterCore {
	return &limiterCore{
		remote: redis_rate.NewLimiter(rdb),
		local:  newLocalLimiter(),
	}
}

func (c *limiterCore) check(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	res, err := c.remote.Allow(ctx, key, limit)
	if err != nil {
		slog.Warn("redis rate limit check failed, using local fallback",
			"error", err,
			"key", key,
		)
		return c.local.allow(key, limit)
	}
	return res
}

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string
}

// RateLimiter is the outer, unauthenticated limit keyed by client IP.
type RateLimiter struct {
	core   *limiterCore
	config RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		core:   newLimiterCore(rdb),
		config: cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := rl.core.check(r.Context(), rl.config.KeyFunc(r), rl.config.Limit)
		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type RoleLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

var DefaultRoleLimits = map[string]RoleLimitConfig{
	"customer": {RequestsPerMinute: 120, BurstSize: 20},
	"admin":    {RequestsPerMinute: 600, BurstSize: 100},
}

// RoleRateLimiter applies per-user limits scaled by role. It must sit
// behind the authenticator; unknown or missing roles get the customer
// allowance.
func RoleRateLimiter(
	rdb *redis.Client,
	limits map[string]RoleLimitConfig,
) func(http.Handler) http.Handler {
	core := newLimiterCore(rdb)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())
			cfg, ok := limits[role]
			if !ok {
				cfg = limits["customer"]
			}

			limit := redis_rate.Limit{
				Rate:   cfg.RequestsPerMinute,
				Burst:  cfg.BurstSize,
				Period: time.Minute,
			}

			res := core.check(r.Context(), KeyByUser(r), limit)
			setRateLimitHeaders(w, res, limit)

			if res.Allowed == 0 {
				writeRateLimitExceeded(w, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// KeyByIP trusts only the last X-Forwarded-For entry, which is the one
// appended by our own proxy.
func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return "ratelimit:ip:" + strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ratelimit:ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	return "ratelimit:ip:" + ip
}

func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "ratelimit:user:" + userID
	}
	return KeyByIP(r)
}

// normalizeEndpoint collapses path segments that look like ids so a
// per-endpoint key doesn't explode in cardinality.
func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	normalized := make([]string, 0, len(parts))

	for _, part := range parts {
		if isUUID(part) || isNumeric(part) {
			normalized = append(normalized, "{id}")
		} else {
			normalized = append(normalized, part)
		}
	}

	return "/" + strings.Join(normalized, "/")
}

func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	return s[8] == '-' && s[13] == '-' && s[18] == '-' && s[23] == '-'
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	windowSecs := int(limit.Period.Seconds())
	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, windowSecs))
	h.Set(
		"RateLimit",
		fmt.Sprintf(`%d;t=%d`, res.Remaining, int(res.ResetAfter.Seconds())),
	)
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	response := map[string]any{
		"success": false,
		"error": map[string]any{
			"code": "RATE_LIMITED",
			"message": fmt.Sprintf(
				"Rate limit exceeded. Retry after %d seconds.",
				retryAfter,
			),
		},
	}

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(response)
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Minute}
}

func PerSecond(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Second}
}

// localLimiter is the in-process fallback. Entries are evicted after a
// quiet period so abandoned keys don't accumulate.
type localLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{entries: make(map[string]*limiterEntry)}
	go l.evictLoop()
	return l
}

func (l *localLimiter) evictLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL)
		l.mu.Lock()
		for key, entry := range l.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(l.entries, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()

	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
		}
		l.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	allowed := 0
	if entry.limiter.Allow() {
		allowed = 1
	}

	remaining := int(entry.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	refill := time.Duration(float64(time.Second) / perSecond)
	retryAfter := time.Duration(-1)
	if allowed == 0 {
		retryAfter = refill
	}

	return &redis_rate.Result{
		Limit:      limit,
		Allowed:    allowed,
		Remaining:  remaining,
		RetryAfter: retryAfter,
		ResetAfter: refill,
	}
}
