package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	authHTTP "github.com/diffrun/opsdesk/internal/auth/http"
	"github.com/diffrun/opsdesk/internal/fulfillment/domain"
	"github.com/diffrun/opsdesk/internal/fulfillment/usecase/mocks"
)

const actor = "ops@example.com"

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockFulfillmentUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := mocks.NewMockFulfillmentUseCase(t)
	handler := NewFulfillmentHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		op := &authDomain.Operator{ID: uuid.New(), Email: actor, IsActive: true}
		c.Request = c.Request.WithContext(authHTTP.WithOperator(c.Request.Context(), op))
		c.Next()
	})
	router.POST("/v1/fulfillment/approve-printing", handler.ApprovePrintingHandler)
	router.POST("/v1/fulfillment/shipments", handler.CreateShipmentsHandler)
	router.POST("/v1/fulfillment/unapprove", handler.UnapproveHandler)
	return router, uc
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestFulfillmentHandler_ApprovePrinting(t *testing.T) {
	t.Run("Success_AllItemsFailedStill200", func(t *testing.T) {
		router, uc := setupRouter(t)
		result := &domain.BulkResult{}
		result.Add(domain.ItemResult{ID: "#1", Status: domain.ItemError, Step: domain.StepDatabaseLookup})
		uc.On("ApprovePrinting", mock.Anything, []string{"#1"}, actor).Return(result, nil).Once()

		w := post(router, "/v1/fulfillment/approve-printing", `{"order_ids":["#1"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		var body domain.BulkResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, domain.Summary{Total: 1, Error: 1}, body.Summary)
		assert.Equal(t, "database_lookup", body.Results[0].Step)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := post(router, "/v1/fulfillment/approve-printing", `{"order_ids":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_EmptyList", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := post(router, "/v1/fulfillment/approve-printing", `{"order_ids":[]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_BlankItem", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := post(router, "/v1/fulfillment/approve-printing", `{"order_ids":["#1"," "]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestFulfillmentHandler_CreateShipments(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, uc := setupRouter(t)
		result := &domain.BulkResult{}
		result.Add(domain.ItemResult{ID: "#1_RP1", Status: domain.ItemSuccess, Step: domain.StepCompleted, Reference: "7002"})
		uc.On("CreateShipments", mock.Anything, []string{"#1_RP1"}, true, false).Return(result, nil).Once()

		w := post(router, "/v1/fulfillment/shipments", `{"order_ids":["#1_RP1"],"assign_awb":true}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"7002"`)
	})

	t.Run("Error_Cancelled", func(t *testing.T) {
		router, uc := setupRouter(t)
		uc.On("CreateShipments", mock.Anything, []string{"#1"}, false, false).
			Return(nil, errors.New("context canceled")).Once()

		w := post(router, "/v1/fulfillment/shipments", `{"order_ids":["#1"]}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestFulfillmentHandler_Unapprove(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, uc := setupRouter(t)
		result := &domain.BulkResult{}
		result.Add(domain.ItemResult{ID: "job-1", Status: domain.ItemSkipped, Step: domain.StepLocked})
		uc.On("Unapprove", mock.Anything, []string{"job-1"}).Return(result, nil).Once()

		w := post(router, "/v1/fulfillment/unapprove", `{"job_ids":["job-1"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"skipped":1`)
	})

	t.Run("Error_MissingJobIDs", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := post(router, "/v1/fulfillment/unapprove", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
