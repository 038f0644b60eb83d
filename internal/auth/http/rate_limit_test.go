package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
)

func newOperatorLimitedRouter(ctx context.Context, rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Operator"); id != "" {
			op := &authDomain.Operator{ID: uuid.MustParse(id)}
			c.Request = c.Request.WithContext(WithOperator(c.Request.Context(), op))
		}
		c.Next()
	})
	router.Use(RateLimitMiddleware(ctx, rps, burst, discardLogger()))
	router.GET("/v1/orders", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func operatorRequest(id uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("X-Operator", id.String())
	return req
}

func TestRateLimitMiddleware(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := newOperatorLimitedRouter(ctx, 1, 2)
	first, second := uuid.New(), uuid.New()

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, operatorRequest(first))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, operatorRequest(first))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody(t, w)["error"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, operatorRequest(second))
	assert.Equal(t, http.StatusOK, w.Code, "limits are per operator")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cancel()
}

func TestIPRateLimitMiddleware(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IPRateLimitMiddleware(ctx, 1, 1, discardLogger()))
	router.POST("/v1/token", func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/token", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.2"))

	cancel()
}

func TestLimiterStore_Prune(t *testing.T) {
	store := newLimiterStore(1, 1)
	now := time.Now()
	store.get("old", now.Add(-2*time.Hour))
	store.get("fresh", now)

	store.prune(now.Add(-time.Hour))
	assert.Equal(t, 1, store.size())
}

func TestLimiterStore_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newLimiterStore(1, 1).run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	<-done
}
