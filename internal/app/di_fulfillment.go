package app

import (
	"context"
	"database/sql"

	"gocloud.dev/blob"

	fulfillmentHTTP "github.com/diffrun/opsdesk/internal/fulfillment/http"
	fulfillmentStorage "github.com/diffrun/opsdesk/internal/fulfillment/storage"
	fulfillmentUseCase "github.com/diffrun/opsdesk/internal/fulfillment/usecase"
	reportsHTTP "github.com/diffrun/opsdesk/internal/reports/http"
	reportsRepository "github.com/diffrun/opsdesk/internal/reports/repository"
	reportsUseCase "github.com/diffrun/opsdesk/internal/reports/usecase"
)

// ArtifactBucket returns the bucket holding generated book artifacts.
func (c *Container) ArtifactBucket() (*blob.Bucket, error) {
	return c.bucket.get(func() (*blob.Bucket, error) {
		return fulfillmentStorage.OpenBucket(context.Background(), c.config.ArtifactBucketURL)
	})
}

// FulfillmentUseCase returns the bulk printing and shipping use case,
// decorated with metrics.
func (c *Container) FulfillmentUseCase() (fulfillmentUseCase.FulfillmentUseCase, error) {
	return c.fulfillmentUseCase.get(func() (fulfillmentUseCase.FulfillmentUseCase, error) {
		txManager, err := c.TxManager()
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
		printer, err := c.CloudprinterClient()
		if err != nil {
			return nil, err
		}
		shipper, err := c.ShiprocketClient()
		if err != nil {
			return nil, err
		}
		bucket, err := c.ArtifactBucket()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := fulfillmentUseCase.NewFulfillmentUseCase(
			fulfillmentUseCase.Config{
				ContactEmail:   c.config.CloudprinterContactEmail,
				PickupLocation: c.config.ShiprocketPickupLocation,
			},
			txManager,
			orderRepo,
			outboxRepo,
			printer,
			shipper,
			fulfillmentStorage.NewArtifactStore(bucket, c.config.ArtifactPublicURL),
			c.location,
			c.Logger(),
		)
		return fulfillmentUseCase.NewFulfillmentUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// FulfillmentHandler returns the bulk fulfillment HTTP handler.
func (c *Container) FulfillmentHandler() (*fulfillmentHTTP.FulfillmentHandler, error) {
	return c.fulfillmentHandler.get(func() (*fulfillmentHTTP.FulfillmentHandler, error) {
		useCase, err := c.FulfillmentUseCase()
		if err != nil {
			return nil, err
		}
		return fulfillmentHTTP.NewFulfillmentHandler(useCase, c.Logger()), nil
	})
}

// ReportsUseCase returns the reports use case, decorated with metrics.
func (c *Container) ReportsUseCase() (reportsUseCase.ReportsUseCase, error) {
	return c.reportsUseCase.get(func() (reportsUseCase.ReportsUseCase, error) {
		repo, err := driverSwitch(c, "report repository",
			func(db *sql.DB) reportsUseCase.ReportRepository {
				return reportsRepository.NewPostgreSQLReportRepository(db)
			},
			func(db *sql.DB) reportsUseCase.ReportRepository {
				return reportsRepository.NewMySQLReportRepository(db)
			},
		)
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}
		return reportsUseCase.NewReportsUseCaseWithMetrics(
			reportsUseCase.NewReportsUseCase(repo, c.location), businessMetrics), nil
	})
}

// ReportsHandler returns the reports HTTP handler.
func (c *Container) ReportsHandler() (*reportsHTTP.ReportsHandler, error) {
	return c.reportsHandler.get(func() (*reportsHTTP.ReportsHandler, error) {
		useCase, err := c.ReportsUseCase()
		if err != nil {
			return nil, err
		}
		return reportsHTTP.NewReportsHandler(useCase, c.Logger()), nil
	})
}
