// Package app wires the application components. Components are built lazily
// on first access and memoized, so commands only pay for what they use.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gocloud.dev/blob"

	authHTTP "github.com/diffrun/opsdesk/internal/auth/http"
	authService "github.com/diffrun/opsdesk/internal/auth/service"
	authUseCase "github.com/diffrun/opsdesk/internal/auth/usecase"
	"github.com/diffrun/opsdesk/internal/config"
	"github.com/diffrun/opsdesk/internal/database"
	fulfillmentHTTP "github.com/diffrun/opsdesk/internal/fulfillment/http"
	fulfillmentUseCase "github.com/diffrun/opsdesk/internal/fulfillment/usecase"
	"github.com/diffrun/opsdesk/internal/http"
	jobsHTTP "github.com/diffrun/opsdesk/internal/jobs/http"
	"github.com/diffrun/opsdesk/internal/jobs/scheduler"
	jobsUseCase "github.com/diffrun/opsdesk/internal/jobs/usecase"
	"github.com/diffrun/opsdesk/internal/metrics"
	"github.com/diffrun/opsdesk/internal/notification"
	ordersHTTP "github.com/diffrun/opsdesk/internal/orders/http"
	ordersRepository "github.com/diffrun/opsdesk/internal/orders/repository"
	ordersUseCase "github.com/diffrun/opsdesk/internal/orders/usecase"
	outboxUseCase "github.com/diffrun/opsdesk/internal/outbox/usecase"
	"github.com/diffrun/opsdesk/internal/partner"
	reportsHTTP "github.com/diffrun/opsdesk/internal/reports/http"
	reportsUseCase "github.com/diffrun/opsdesk/internal/reports/usecase"
	webhookHTTP "github.com/diffrun/opsdesk/internal/webhook/http"
	webhookUseCase "github.com/diffrun/opsdesk/internal/webhook/usecase"
)

// lazy memoizes a fallible constructor. A failed build is remembered and
// returned to every later caller.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = build()
	})
	return l.value, l.err
}

// orderStore is the order repository surface shared by every consumer.
type orderStore interface {
	ordersUseCase.OrderRepository
	webhookUseCase.OrderRepository
	jobsUseCase.OrderRepository
	fulfillmentUseCase.OrderRepository
}

// Container holds the application components.
type Container struct {
	config *config.Config

	loggerOnce sync.Once
	logger     *slog.Logger
	location   *time.Location

	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	operatorRepo    lazy[authUseCase.OperatorRepository]
	tokenRepo       lazy[authUseCase.TokenRepository]
	operatorUseCase lazy[authUseCase.OperatorUseCase]
	tokenUseCase    lazy[authUseCase.TokenUseCase]
	tokenHandler    lazy[*authHTTP.TokenHandler]

	orderRepo    lazy[orderStore]
	orderUseCase lazy[ordersUseCase.OrderUseCase]
	orderHandler lazy[*ordersHTTP.OrderHandler]

	eventRepo      lazy[webhookUseCase.EventRepository]
	webhookUseCase lazy[webhookUseCase.WebhookUseCase]
	webhookHandler lazy[*webhookHTTP.WebhookHandler]

	outboxRepo    lazy[outboxUseCase.OutboxEventRepository]
	mailer        lazy[notification.Mailer]
	outboxUseCase lazy[outboxUseCase.UseCase]

	shiprocket   lazy[*partner.ShiprocketClient]
	cloudprinter lazy[*partner.CloudprinterClient]

	jobsUseCase lazy[jobsUseCase.JobsUseCase]
	jobsHandler lazy[*jobsHTTP.JobsHandler]
	scheduler   lazy[*scheduler.Scheduler]

	bucket             lazy[*blob.Bucket]
	fulfillmentUseCase lazy[fulfillmentUseCase.FulfillmentUseCase]
	fulfillmentHandler lazy[*fulfillmentHTTP.FulfillmentHandler]

	reportsUseCase lazy[reportsUseCase.ReportsUseCase]
	reportsHandler lazy[*reportsHTTP.ReportsHandler]

	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	secretService authService.SecretService
	tokenService  authService.TokenService
}

// NewContainer creates a container for cfg.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:        cfg,
		location:      cfg.Location(),
		secretService: authService.NewSecretService(),
		tokenService:  authService.NewTokenService(),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Location returns the business timezone.
func (c *Container) Location() *time.Location {
	return c.location
}

// Logger returns the JSON logger at the configured level.
func (c *Container) Logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(c.config.LogLevel),
		}))
	})
	return c.logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DB returns the database pool.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(func() (*sql.DB, error) {
		db, err := database.Connect(context.Background(), database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	})
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the Prometheus-backed provider, or nil when metrics
// are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the business metrics recorder, a no-op when metrics
// are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// driverSwitch picks the constructor for the configured database driver.
func driverSwitch[T any](c *Container, what string, postgres, mysql func(*sql.DB) T) (T, error) {
	var zero T
	db, err := c.DB()
	if err != nil {
		return zero, fmt.Errorf("failed to get database for %s: %w", what, err)
	}
	switch c.config.DBDriver {
	case database.DriverPostgres:
		return postgres(db), nil
	case database.DriverMySQL:
		return mysql(db), nil
	default:
		return zero, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// OrderRepository returns the order repository.
func (c *Container) OrderRepository() (orderStore, error) {
	return c.orderRepo.get(func() (orderStore, error) {
		return driverSwitch(c, "order repository",
			func(db *sql.DB) orderStore { return ordersRepository.NewPostgreSQLOrderRepository(db) },
			func(db *sql.DB) orderStore { return ordersRepository.NewMySQLOrderRepository(db) },
		)
	})
}

// HTTPServer returns the public HTTP server with its router configured.
// ctx bounds background helpers started by the router.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return c.httpServer.get(func() (*http.Server, error) {
		db, err := c.DB()
		if err != nil {
			return nil, err
		}

		var handlers http.Handlers
		if handlers.Token, err = c.TokenHandler(); err != nil {
			return nil, err
		}
		if handlers.Orders, err = c.OrderHandler(); err != nil {
			return nil, err
		}
		if handlers.Webhooks, err = c.WebhookHandler(); err != nil {
			return nil, err
		}
		if handlers.Jobs, err = c.JobsHandler(); err != nil {
			return nil, err
		}
		if handlers.Fulfillment, err = c.FulfillmentHandler(); err != nil {
			return nil, err
		}
		if handlers.Reports, err = c.ReportsHandler(); err != nil {
			return nil, err
		}

		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			return nil, err
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}

		logger := c.Logger()
		server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
		server.SetTimeouts(c.config.ServerReadTimeout, c.config.ServerWriteTimeout)
		authenticate := authHTTP.AuthenticationMiddleware(tokenUseCase, c.tokenService, logger)
		if provider != nil {
			server.SetupRouter(ctx, c.config, handlers, authenticate, provider.MeterProvider())
		} else {
			server.SetupRouter(ctx, c.config, handlers, authenticate, nil)
		}
		return server, nil
	})
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil || provider == nil {
			return nil, err
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown releases every component that was built.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.bucket.value != nil {
		if err := c.bucket.value.Close(); err != nil {
			errs = append(errs, fmt.Errorf("artifact bucket close: %w", err))
		}
	}
	if c.metricsProvider.value != nil {
		if err := c.metricsProvider.value.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}
	if c.db.value != nil {
		if err := c.db.value.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(errs...)
}
