package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "Asia/Kolkata", cfg.BusinessTimezone)
				assert.Equal(t, 40*time.Second, cfg.ShiprocketTimeout)
				assert.Equal(t, 30*time.Second, cfg.CloudprinterTimeout)
				assert.Equal(t, 30*24*time.Hour, cfg.WebhookDedupRetention)
				assert.Equal(t, 5, cfg.OutboxMaxRetries)
				assert.Equal(t, "45 12 * * *", cfg.NudgeSchedule)
				assert.Equal(t, 200, cfg.NudgeBatchSize)
				assert.Equal(t, "*/5 * * * *", cfg.ReconcileSchedule)
				assert.Equal(t, "log", cfg.EmailDriver)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/opsdesk",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/opsdesk", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom webhook configuration",
			envVars: map[string]string{
				"SHIPROCKET_WEBHOOK_TOKEN":     "sr-token",
				"CLOUDPRINTER_WEBHOOK_KEY":     "cp-key",
				"WEBHOOK_DEDUP_RETENTION_DAYS": "7",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sr-token", cfg.ShiprocketWebhookToken)
				assert.Equal(t, "cp-key", cfg.CloudprinterWebhookKey)
				assert.Equal(t, 7*24*time.Hour, cfg.WebhookDedupRetention)
			},
		},
		{
			name: "load custom scheduler configuration",
			envVars: map[string]string{
				"SCHEDULER_ENABLED": "false",
				"FEEDBACK_SCHEDULE": "30 11 * * *",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.SchedulerEnabled)
				assert.Equal(t, "30 11 * * *", cfg.FeedbackSchedule)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()

			tt.validate(t, cfg)
		})
	}
}

func TestConfig_GetGinMode(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "info"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "unknown"}).GetGinMode())
}

func TestConfig_Location(t *testing.T) {
	t.Run("Success_Known", func(t *testing.T) {
		loc := (&Config{BusinessTimezone: "UTC"}).Location()
		assert.Equal(t, "UTC", loc.String())
	})

	t.Run("Success_FallbackToIST", func(t *testing.T) {
		loc := (&Config{BusinessTimezone: "Nowhere/Invalid"}).Location()
		_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
		assert.Equal(t, 19800, offset)
	})
}
