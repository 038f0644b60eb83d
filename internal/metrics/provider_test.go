package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("opsdesk_test")

	require.NoError(t, err)
	assert.NotNil(t, provider.meterProvider)
	assert.NotNil(t, provider.registry)
}

func TestProvider_OperationBuckets(t *testing.T) {
	provider, err := NewProvider("opsdesk_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "opsdesk_test")
	require.NoError(t, err)
	bm.RecordDuration(context.Background(), "jobs", "reconcile", 90*time.Second, "success")

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, w.Body.String(), `le="120"`)
	assert.Contains(t, w.Body.String(), `le="300"`)
}

func TestProvider_Handler(t *testing.T) {
	provider, err := NewProvider("opsdesk_test")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success_ShutdownProvider", func(t *testing.T) {
		provider, err := NewProvider("opsdesk_test")
		require.NoError(t, err)

		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	t.Run("Success_ShutdownNilProvider", func(t *testing.T) {
		provider := &Provider{meterProvider: nil}

		assert.NoError(t, provider.Shutdown(context.Background()))
	})
}
