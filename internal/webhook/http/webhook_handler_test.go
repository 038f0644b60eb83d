package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/webhook/domain"
	"github.com/diffrun/opsdesk/internal/webhook/usecase/mocks"
)

func setupRouter(t *testing.T, shiprocketToken string) (*gin.Engine, *mocks.MockWebhookUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := mocks.NewMockWebhookUseCase(t)
	handler := NewWebhookHandler(uc, shiprocketToken, "cp-key", slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.POST("/api/webhook/shiprocket", handler.ShiprocketHandler)
	router.POST("/api/webhook/Genesis", handler.ShiprocketHandler)
	router.POST("/api/webhook/cloudprinter", handler.CloudprinterHandler)
	return router, uc
}

func post(router *gin.Engine, path, contentType, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const shiprocketBody = `{"awb": 123, "current_status": "PICKED UP", "current_status_id": 42,
	"current_timestamp": "23 05 2025 11:43:52", "order_id": "1001"}`

func TestShiprocketHandler(t *testing.T) {
	isPayload := mock.MatchedBy(func(p domain.ShiprocketPayload) bool {
		return p.AWB == "123" && p.OrderID == "1001" && p.CurrentStatusID == "42"
	})

	t.Run("Success_Applied", func(t *testing.T) {
		router, uc := setupRouter(t, "sr-token")
		uc.On("HandleShiprocket", mock.Anything, isPayload, []byte(shiprocketBody)).
			Return(&domain.Result{Outcome: domain.OutcomeApplied}, nil).Once()

		w := post(router, "/api/webhook/shiprocket", "application/json; charset=utf-8", shiprocketBody,
			map[string]string{"x-api-key": "  sr-token "})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("Success_GenesisAlias", func(t *testing.T) {
		router, uc := setupRouter(t, "")
		uc.On("HandleShiprocket", mock.Anything, isPayload, mock.Anything).
			Return(&domain.Result{Outcome: domain.OutcomeApplied}, nil).Once()

		w := post(router, "/api/webhook/Genesis", "application/json", shiprocketBody, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Success_BadTokenAcknowledgedNotApplied", func(t *testing.T) {
		router, uc := setupRouter(t, "sr-token")

		w := post(router, "/api/webhook/shiprocket", "application/json", shiprocketBody,
			map[string]string{"x-api-key": "wrong"})

		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertNotCalled(t, "HandleShiprocket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_WrongContentTypeAcknowledged", func(t *testing.T) {
		router, uc := setupRouter(t, "")

		w := post(router, "/api/webhook/shiprocket", "text/plain", shiprocketBody, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertNotCalled(t, "HandleShiprocket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_MalformedJSONAcknowledged", func(t *testing.T) {
		router, uc := setupRouter(t, "")

		w := post(router, "/api/webhook/shiprocket", "application/json", `{"awb":`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertNotCalled(t, "HandleShiprocket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_UseCaseErrorStill200", func(t *testing.T) {
		router, uc := setupRouter(t, "")
		uc.On("HandleShiprocket", mock.Anything, isPayload, mock.Anything).Return(nil, errors.New("db down")).Once()

		w := post(router, "/api/webhook/shiprocket", "application/json", shiprocketBody, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestCloudprinterHandler(t *testing.T) {
	t.Run("Success_Applied", func(t *testing.T) {
		router, uc := setupRouter(t, "")
		uc.On("HandleCloudprinter", mock.Anything, mock.MatchedBy(func(p domain.CloudprinterPayload) bool {
			return p.Type == "ItemShipped" && p.OrderReference == "1001" && p.Tracking == "TRK1"
		})).Return(&domain.Result{Outcome: domain.OutcomeApplied}, nil).Once()

		w := post(router, "/api/webhook/cloudprinter", "application/json",
			`{"apikey":"cp-key","type":"ItemShipped","order_reference":1001,"tracking":"TRK1"}`, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Success_WrongKeyAcknowledged", func(t *testing.T) {
		router, uc := setupRouter(t, "")

		w := post(router, "/api/webhook/cloudprinter", "application/json",
			`{"apikey":"nope","type":"ItemShipped","order_reference":"1001"}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertNotCalled(t, "HandleCloudprinter", mock.Anything, mock.Anything)
	})
}
