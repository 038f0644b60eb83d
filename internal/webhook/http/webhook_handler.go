// Package http receives partner webhooks. Every delivery is acknowledged with
// 200 and an empty body; failures are only logged.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/diffrun/opsdesk/internal/webhook/domain"
	webhookUseCase "github.com/diffrun/opsdesk/internal/webhook/usecase"
)

// maxBodyBytes bounds a webhook body.
const maxBodyBytes = 1 << 20

// WebhookHandler handles partner webhook deliveries.
type WebhookHandler struct {
	webhookUseCase  webhookUseCase.WebhookUseCase
	shiprocketToken string
	cloudprinterKey string
	logger          *slog.Logger
}

// NewWebhookHandler creates a new webhook handler. An empty shiprocketToken
// disables the header check; an empty cloudprinterKey rejects every
// Cloudprinter delivery.
func NewWebhookHandler(
	useCase webhookUseCase.WebhookUseCase,
	shiprocketToken, cloudprinterKey string,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		webhookUseCase:  useCase,
		shiprocketToken: strings.TrimSpace(shiprocketToken),
		cloudprinterKey: strings.TrimSpace(cloudprinterKey),
		logger:          logger,
	}
}

func ack(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", nil)
}

func secretMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(want)) == 1
}

// readJSON checks the content type and reads the body.
func (h *WebhookHandler) readJSON(c *gin.Context, provider string) ([]byte, bool) {
	if !strings.HasPrefix(strings.ToLower(c.GetHeader("Content-Type")), "application/json") {
		h.logger.Warn("webhook rejected",
			slog.String("provider", provider),
			slog.Any("error", domain.ErrUnsupportedMediaType),
			slog.String("content_type", c.GetHeader("Content-Type")),
		)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", slog.String("provider", provider), slog.Any("error", err))
		return nil, false
	}
	return body, true
}

// ShiprocketHandler receives Shiprocket shipment status updates.
// POST /api/webhook/shiprocket
func (h *WebhookHandler) ShiprocketHandler(c *gin.Context) {
	defer ack(c)

	if h.shiprocketToken != "" && !secretMatches(c.GetHeader("x-api-key"), h.shiprocketToken) {
		h.logger.Warn("webhook rejected",
			slog.String("provider", domain.ProviderShiprocket),
			slog.Any("error", domain.ErrInvalidToken),
			slog.String("client_ip", c.ClientIP()),
		)
		return
	}

	body, ok := h.readJSON(c, domain.ProviderShiprocket)
	if !ok {
		return
	}

	var payload domain.ShiprocketPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("invalid shiprocket payload", slog.Any("error", err))
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	if _, err := h.webhookUseCase.HandleShiprocket(ctx, payload, body); err != nil {
		h.logger.Error("failed to apply shiprocket webhook",
			slog.String("awb", payload.AWB.String()),
			slog.String("order_id", payload.OrderID.String()),
			slog.Any("error", err),
		)
	}
}

// CloudprinterHandler receives Cloudprinter CloudSignal events.
// POST /api/webhook/cloudprinter
func (h *WebhookHandler) CloudprinterHandler(c *gin.Context) {
	defer ack(c)

	body, ok := h.readJSON(c, domain.ProviderCloudprinter)
	if !ok {
		return
	}

	var payload domain.CloudprinterPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("invalid cloudprinter payload", slog.Any("error", err))
		return
	}

	if h.cloudprinterKey == "" || !secretMatches(payload.APIKey, h.cloudprinterKey) {
		h.logger.Warn("webhook rejected",
			slog.String("provider", domain.ProviderCloudprinter),
			slog.Any("error", domain.ErrInvalidToken),
			slog.String("client_ip", c.ClientIP()),
		)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	if _, err := h.webhookUseCase.HandleCloudprinter(ctx, payload); err != nil {
		h.logger.Error("failed to apply cloudprinter webhook",
			slog.String("order_reference", payload.OrderReference.String()),
			slog.String("type", payload.Type),
			slog.Any("error", err),
		)
	}
}
