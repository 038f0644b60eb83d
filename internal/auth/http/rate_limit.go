package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/httputil"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = time.Hour
)

// limiterStore holds one token-bucket limiter per key.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      float64
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		limiters: make(map[string]*limiterEntry),
		rps:      rps,
		burst:    burst,
	}
}

func (s *limiterStore) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.limiters[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}

// prune drops limiters idle since before threshold.
func (s *limiterStore) prune(threshold time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(s.limiters, key)
		}
	}
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// run prunes idle limiters until ctx is done.
func (s *limiterStore) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune(time.Now().Add(-limiterIdleTTL))
		}
	}
}

// limit rejects requests over the key's budget with 429 and Retry-After.
func (s *limiterStore) limit(c *gin.Context, key string, logger *slog.Logger) bool {
	limiter := s.get(key, time.Now())
	if limiter.Allow() {
		return true
	}

	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds()) + 1
	reservation.Cancel()

	logger.Debug("rate limit exceeded", slog.String("key", key), slog.Int("retry_after", retryAfter))

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.JSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: "Too many requests. Please retry after the specified delay.",
	})
	c.Abort()
	return false
}

// RateLimitMiddleware limits authenticated requests per operator. It must run
// after AuthenticationMiddleware. Idle limiters are pruned until ctx is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	go store.run(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		operator, ok := GetOperator(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated operator in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}
		if store.limit(c, operator.ID.String(), logger) {
			c.Next()
		}
	}
}

// IPRateLimitMiddleware limits unauthenticated requests per client IP.
func IPRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	go store.run(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		if store.limit(c, c.ClientIP(), logger) {
			c.Next()
		}
	}
}
