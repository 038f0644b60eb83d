package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blanks only", " , ,", nil},
		{"single", "https://ops.diffrun.com", []string{"https://ops.diffrun.com"}},
		{
			"trimmed list",
			" https://ops.diffrun.com , https://admin.diffrun.com ,",
			[]string{"https://ops.diffrun.com", "https://admin.diffrun.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseOrigins(tt.in))
		})
	}
}

func TestCreateCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success_DisabledOrEmptyIsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://ops.diffrun.com", logger))
		assert.Nil(t, createCORSMiddleware(true, " ", logger))
	})

	newRouter := func(t *testing.T) *gin.Engine {
		middleware := createCORSMiddleware(true, "https://ops.diffrun.com", logger)
		require.NotNil(t, middleware)
		router := gin.New()
		router.Use(middleware)
		router.PATCH("/v1/orders/:order_id", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("Success_PreflightFromDashboard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/orders/ord-1", nil)
		req.Header.Set("Origin", "https://ops.diffrun.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		w := httptest.NewRecorder()

		newRouter(t).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://ops.diffrun.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})

	t.Run("Error_UnknownOriginRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/v1/orders/ord-1", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		newRouter(t).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
