// Package http assembles the gin engine serving webhooks, the admin API and
// health probes.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/diffrun/opsdesk/internal/auth/http"
	"github.com/diffrun/opsdesk/internal/config"
	fulfillmentHTTP "github.com/diffrun/opsdesk/internal/fulfillment/http"
	jobsHTTP "github.com/diffrun/opsdesk/internal/jobs/http"
	"github.com/diffrun/opsdesk/internal/metrics"
	ordersHTTP "github.com/diffrun/opsdesk/internal/orders/http"
	reportsHTTP "github.com/diffrun/opsdesk/internal/reports/http"
	webhookHTTP "github.com/diffrun/opsdesk/internal/webhook/http"
)

const readinessTimeout = 2 * time.Second

// Handlers groups the route handlers mounted by SetupRouter.
type Handlers struct {
	Token       *authHTTP.TokenHandler
	Orders      *ordersHTTP.OrderHandler
	Webhooks    *webhookHTTP.WebhookHandler
	Jobs        *jobsHTTP.JobsHandler
	Fulfillment *fulfillmentHTTP.FulfillmentHandler
	Reports     *reportsHTTP.ReportsHandler
}

// Server is the public HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a server bound to host:port. db backs the readiness probe.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetTimeouts overrides the read and write timeouts. Zero keeps the default.
func (s *Server) SetTimeouts(read, write time.Duration) {
	if read > 0 {
		s.server.ReadTimeout = read
	}
	if write > 0 {
		s.server.WriteTimeout = write
	}
}

// SetupRouter builds the engine. authenticate resolves the bearer token into
// an operator; meterProvider may be nil when metrics are disabled. ctx bounds
// the rate limiter janitors.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	h Handlers,
	authenticate gin.HandlerFunc,
	meterProvider metric.MeterProvider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Partner webhooks authenticate with their own shared secrets.
	webhooks := router.Group("/api/webhook")
	{
		webhooks.POST("/shiprocket", h.Webhooks.ShiprocketHandler)
		webhooks.POST("/Genesis", h.Webhooks.ShiprocketHandler)
		// Registered explicitly: partners do not follow a trailing-slash redirect on POST.
		webhooks.POST("/Genesis/", h.Webhooks.ShiprocketHandler)
		webhooks.POST("/cloudprinter", h.Webhooks.CloudprinterHandler)
	}

	v1 := router.Group("/v1")

	issue := []gin.HandlerFunc{}
	if cfg.RateLimitTokenEnabled {
		issue = append(issue, authHTTP.IPRateLimitMiddleware(
			ctx, cfg.RateLimitTokenRequestsPerSec, cfg.RateLimitTokenBurst, s.logger))
	}
	v1.POST("/token", append(issue, h.Token.IssueTokenHandler)...)

	admin := v1.Group("")
	admin.Use(authenticate)
	if cfg.RateLimitEnabled {
		admin.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	admin.DELETE("/token", h.Token.RevokeTokenHandler)

	orders := admin.Group("/orders")
	{
		orders.POST("", h.Orders.RegisterHandler)
		orders.GET("", h.Orders.ListHandler)
		orders.GET("/:order_id", h.Orders.GetHandler)
		orders.PATCH("/:order_id", h.Orders.PatchHandler)
		orders.POST("/:order_id/status", h.Orders.TransitionStatusHandler)
		orders.POST("/:order_id/issue-origin", h.Orders.IssueOriginHandler)
		orders.POST("/:order_id/lock", h.Orders.LockHandler)
		orders.POST("/:order_id/unlock", h.Orders.UnlockHandler)
	}

	jobs := admin.Group("/jobs")
	{
		jobs.GET("", h.Orders.ListJobsHandler)
		jobs.GET("/:job_id", h.Orders.GetByJobHandler)
		jobs.POST("/:job_id/feedback-email", h.Jobs.SendFeedbackEmailHandler)
	}

	admin.POST("/reconcile/mark", h.Orders.MarkReconciledHandler)

	cron := admin.Group("/cron")
	{
		cron.POST("/nudges", h.Jobs.RunNudgesHandler)
		cron.POST("/feedback-emails", h.Jobs.RunFeedbackEmailsHandler)
		cron.POST("/reconcile", h.Jobs.RunReconcileHandler)
	}

	fulfillment := admin.Group("/fulfillment")
	{
		fulfillment.POST("/approve-printing", h.Fulfillment.ApprovePrintingHandler)
		fulfillment.POST("/shipments", h.Fulfillment.CreateShipmentsHandler)
		fulfillment.POST("/unapprove", h.Fulfillment.UnapproveHandler)
	}

	stats := admin.Group("/stats")
	{
		stats.GET("/orders", h.Reports.OrdersHandler)
		stats.GET("/revenue", h.Reports.RevenueHandler)
		stats.GET("/ship-status", h.Reports.ShipStatusHandler)
		stats.GET("/sla-summary", h.Reports.SLASummaryHandler)
		stats.GET("/production-kpis", h.Reports.ProductionKPIsHandler)
		stats.GET("/production-kpis-graph", h.Reports.ProductionGraphHandler)
		stats.GET("/sla-cohorts", h.Reports.SLACohortsHandler)
		stats.GET("/delivery-latency-cohorts", h.Reports.DeliveryLatencyHandler)
		stats.GET("/shipment-weekly-sla", h.Reports.WeeklySLAHandler)
		stats.GET("/preview-vs-orders", h.Reports.PreviewVsOrdersHandler)
		stats.GET("/order-status", h.Reports.OrderStatusHandler)
	}

	s.router = router
}

// GetHandler returns the configured engine.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": database},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": database},
	})
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	return listen(s.server, s.logger, "http server")
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// listen blocks in ListenAndServe. A server closed by Shutdown is not an error.
func listen(srv *http.Server, logger *slog.Logger, name string) error {
	logger.Info("starting "+name, slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}
