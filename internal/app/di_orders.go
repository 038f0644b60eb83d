package app

import (
	"database/sql"

	ordersHTTP "github.com/diffrun/opsdesk/internal/orders/http"
	ordersUseCase "github.com/diffrun/opsdesk/internal/orders/usecase"
	webhookHTTP "github.com/diffrun/opsdesk/internal/webhook/http"
	webhookRepository "github.com/diffrun/opsdesk/internal/webhook/repository"
	webhookUseCase "github.com/diffrun/opsdesk/internal/webhook/usecase"
)

// OrderUseCase returns the order use case, decorated with metrics.
func (c *Container) OrderUseCase() (ordersUseCase.OrderUseCase, error) {
	return c.orderUseCase.get(func() (ordersUseCase.OrderUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		orderRepo, err := c.OrderRepository()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := ordersUseCase.NewOrderUseCase(txManager, orderRepo, c.Logger())
		return ordersUseCase.NewOrderUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// OrderHandler returns the order HTTP handler.
func (c *Container) OrderHandler() (*ordersHTTP.OrderHandler, error) {
	return c.orderHandler.get(func() (*ordersHTTP.OrderHandler, error) {
		useCase, err := c.OrderUseCase()
		if err != nil {
			return nil, err
		}
		return ordersHTTP.NewOrderHandler(useCase, c.Logger()), nil
	})
}

// EventRepository returns the webhook dedup repository.
func (c *Container) EventRepository() (webhookUseCase.EventRepository, error) {
	return c.eventRepo.get(func() (webhookUseCase.EventRepository, error) {
		return driverSwitch(c, "webhook event repository",
			func(db *sql.DB) webhookUseCase.EventRepository {
				return webhookRepository.NewPostgreSQLEventRepository(db)
			},
			func(db *sql.DB) webhookUseCase.EventRepository {
				return webhookRepository.NewMySQLEventRepository(db)
			},
		)
	})
}

// WebhookUseCase returns the webhook use case, decorated with metrics.
func (c *Container) WebhookUseCase() (webhookUseCase.WebhookUseCase, error) {
	return c.webhookUseCase.get(func() (webhookUseCase.WebhookUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		eventRepo, err := c.EventRepository()
		if err != nil {
			return nil, err
		}
		orderRepo, err := c.OrderRepository()
		if err != nil {
			return nil, err
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := webhookUseCase.NewWebhookUseCase(
			txManager, eventRepo, orderRepo, outboxRepo, c.location, c.Logger())
		return webhookUseCase.NewWebhookUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// WebhookHandler returns the partner webhook handler.
func (c *Container) WebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	return c.webhookHandler.get(func() (*webhookHTTP.WebhookHandler, error) {
		useCase, err := c.WebhookUseCase()
		if err != nil {
			return nil, err
		}
		return webhookHTTP.NewWebhookHandler(
			useCase,
			c.config.ShiprocketWebhookToken,
			c.config.CloudprinterWebhookKey,
			c.Logger(),
		), nil
	})
}
