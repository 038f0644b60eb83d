package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine matches a metric line by name, partial labels and value. The
// regex tolerates the OTel scope labels the Prometheus exporter injects.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)

	noOpMetrics.RecordOperation(context.Background(), "orders", "lock", "success")
	noOpMetrics.RecordDuration(context.Background(), "orders", "lock", time.Millisecond, "success")
	noOpMetrics.RecordItems(context.Background(), "jobs", "nudge", "sent", 3)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, "success", StatusOf(nil))
	assert.Equal(t, "error", StatusOf(errors.New("boom")))
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test")
	require.NoError(t, err)

	ctx := context.Background()

	bm.RecordOperation(ctx, "orders", "lock", "success")
	bm.RecordOperation(ctx, "orders", "lock", "success")
	bm.RecordOperation(ctx, "orders", "lock", "error")
	bm.RecordOperation(ctx, "webhooks", "shiprocket", "success")

	bm.RecordDuration(ctx, "orders", "lock", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "orders", "lock", 60*time.Millisecond, "success")

	bm.RecordItems(ctx, "jobs", "nudge", "sent", 4)
	bm.RecordItems(ctx, "jobs", "nudge", "skipped", 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)

	output := w.Body.String()

	assertBizMetricLine(t, output, `integration_test_operations_total`,
		`domain="orders".*operation="lock".*status="success"`, `2`)
	assertBizMetricLine(t, output, `integration_test_operations_total`,
		`domain="orders".*operation="lock".*status="error"`, `1`)
	assertBizMetricLine(t, output, `integration_test_operation_duration_seconds_count`,
		`domain="orders".*operation="lock".*status="success"`, `2`)
	assertBizMetricLine(t, output, `integration_test_batch_items_total`,
		`domain="jobs".*operation="nudge".*outcome="sent"`, `4`)
	assert.NotContains(t, output, `outcome="skipped"`)
}
