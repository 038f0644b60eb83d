package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffrun/opsdesk/internal/config"
	"github.com/diffrun/opsdesk/internal/metrics"
	"github.com/diffrun/opsdesk/internal/notification"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:         "info",
		DBDriver:         "sqlite",
		BusinessTimezone: "Asia/Kolkata",
		EmailDriver:      "log",
		MetricsNamespace: "opsdesk_test",
	}
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig()

	c := NewContainer(cfg)

	assert.Same(t, cfg, c.Config())
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).In(c.Location()).Zone()
	assert.Equal(t, 5*3600+30*60, offset)
	assert.NotNil(t, c.TokenService())
}

func TestContainer_Logger(t *testing.T) {
	c := NewContainer(testConfig())

	assert.Same(t, c.Logger(), c.Logger())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestLazy_RemembersFailure(t *testing.T) {
	var l lazy[int]
	calls := 0
	build := func() (int, error) {
		calls++
		return 0, errors.New("boom")
	}

	_, err1 := l.get(build)
	_, err2 := l.get(build)

	assert.EqualError(t, err1, "boom")
	assert.Same(t, err1, err2)
	assert.Equal(t, 1, calls)
}

func TestContainer_UnsupportedDriver(t *testing.T) {
	c := NewContainer(testConfig())

	_, err := c.DB()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")

	_, err = c.OrderUseCase()
	assert.Error(t, err)
}

func TestContainer_MetricsDisabled(t *testing.T) {
	c := NewContainer(testConfig())

	provider, err := c.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	bm, err := c.BusinessMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpBusinessMetrics{}, bm)

	server, err := c.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, server)
}

func TestContainer_MetricsEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = true
	cfg.MetricsPort = 0
	c := NewContainer(cfg)

	server, err := c.MetricsServer()
	require.NoError(t, err)
	assert.NotNil(t, server)
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestContainer_Mailer(t *testing.T) {
	t.Run("Success_LogDriver", func(t *testing.T) {
		mailer, err := NewContainer(testConfig()).Mailer()
		require.NoError(t, err)
		assert.IsType(t, &notification.LogMailer{}, mailer)
	})

	t.Run("Error_UnknownDriver", func(t *testing.T) {
		cfg := testConfig()
		cfg.EmailDriver = "carrier-pigeon"

		_, err := NewContainer(cfg).Mailer()
		assert.EqualError(t, err, "unsupported email driver: carrier-pigeon")
	})
}

func TestContainer_PartnerClients(t *testing.T) {
	cfg := testConfig()
	cfg.ShiprocketBaseURL = "https://apiv2.shiprocket.in/v1/external"
	cfg.ShiprocketTimeout = time.Second
	cfg.CloudprinterBaseURL = "https://api.cloudprinter.com/cloudcore/1.0"
	c := NewContainer(cfg)

	shiprocket, err := c.ShiprocketClient()
	require.NoError(t, err)
	again, _ := c.ShiprocketClient()
	assert.Same(t, shiprocket, again)

	cloudprinter, err := c.CloudprinterClient()
	require.NoError(t, err)
	assert.NotNil(t, cloudprinter)
}

func TestContainer_ArtifactBucket(t *testing.T) {
	cfg := testConfig()
	cfg.ArtifactBucketURL = "mem://"
	c := NewContainer(cfg)

	bucket, err := c.ArtifactBucket()
	require.NoError(t, err)
	require.NoError(t, bucket.WriteAll(context.Background(), "output/job-1/approved_output/book.pdf", []byte("%PDF"), nil))

	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestContainer_ShutdownWithNothingBuilt(t *testing.T) {
	assert.NoError(t, NewContainer(testConfig()).Shutdown(context.Background()))
}
