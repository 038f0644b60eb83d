package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	httpMocks "github.com/diffrun/opsdesk/internal/auth/http/mocks"
)

func newAuthRouter(uc *httpMocks.MockTokenUseCase, svc *mockTokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthenticationMiddleware(uc, svc, discardLogger()))
	router.GET("/v1/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ActorEmail(c.Request.Context()))
	})
	return router
}

func TestAuthenticationMiddleware(t *testing.T) {
	operator := &authDomain.Operator{ID: uuid.New(), Email: "ops@example.com", IsActive: true}

	t.Run("Success", func(t *testing.T) {
		uc := &httpMocks.MockTokenUseCase{}
		svc := &mockTokenService{}
		svc.On("HashToken", "tok").Return("digest").Once()
		uc.On("Authenticate", mock.Anything, "digest").Return(operator, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
		req.Header.Set("Authorization", "BEARER tok")
		newAuthRouter(uc, svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ops@example.com", w.Body.String())
		uc.AssertExpectations(t)
	})

	for name, header := range map[string]string{
		"MissingHeader": "",
		"WrongScheme":   "Basic abc",
		"EmptyToken":    "Bearer   ",
	} {
		t.Run("Error_"+name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			newAuthRouter(&httpMocks.MockTokenUseCase{}, &mockTokenService{}).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	t.Run("Error_InvalidToken", func(t *testing.T) {
		uc := &httpMocks.MockTokenUseCase{}
		svc := &mockTokenService{}
		svc.On("HashToken", "tok").Return("digest").Once()
		uc.On("Authenticate", mock.Anything, "digest").Return(nil, authDomain.ErrInvalidCredentials).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
		req.Header.Set("Authorization", "Bearer tok")
		newAuthRouter(uc, svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_InactiveOperator", func(t *testing.T) {
		uc := &httpMocks.MockTokenUseCase{}
		svc := &mockTokenService{}
		svc.On("HashToken", "tok").Return("digest").Once()
		uc.On("Authenticate", mock.Anything, "digest").Return(nil, authDomain.ErrOperatorInactive).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
		req.Header.Set("Authorization", "Bearer tok")
		newAuthRouter(uc, svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_Internal", func(t *testing.T) {
		uc := &httpMocks.MockTokenUseCase{}
		svc := &mockTokenService{}
		svc.On("HashToken", "tok").Return("digest").Once()
		uc.On("Authenticate", mock.Anything, "digest").Return(nil, errors.New("db down")).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
		req.Header.Set("Authorization", "Bearer tok")
		newAuthRouter(uc, svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOperatorContext(t *testing.T) {
	ctx := context.Background()

	_, ok := GetOperator(ctx)
	assert.False(t, ok)
	assert.Empty(t, ActorEmail(ctx))

	_, ok = GetOperator(WithOperator(ctx, nil))
	assert.False(t, ok)

	ctx = WithOperator(ctx, &authDomain.Operator{Email: "ops@example.com"})
	op, ok := GetOperator(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ops@example.com", op.Email)
	assert.Equal(t, "ops@example.com", ActorEmail(ctx))
}
