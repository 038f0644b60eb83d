package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	"github.com/diffrun/opsdesk/internal/auth/http/dto"
	authService "github.com/diffrun/opsdesk/internal/auth/service"
	authUseCase "github.com/diffrun/opsdesk/internal/auth/usecase"
	"github.com/diffrun/opsdesk/internal/httputil"
	customValidation "github.com/diffrun/opsdesk/internal/validation"
)

// TokenHandler handles operator sign-in and sign-out.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	tokenService authService.TokenService
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		tokenService: tokenService,
		logger:       logger,
	}
}

// IssueTokenHandler exchanges operator credentials for a bearer token.
// POST /v1/token
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), &authDomain.IssueTokenInput{
		Email:  req.Email,
		Secret: req.Secret,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.IssueTokenResponse{
		Token:     output.PlainToken,
		ExpiresAt: output.ExpiresAt,
	})
}

// RevokeTokenHandler revokes the bearer token used for the request.
// DELETE /v1/token
func (h *TokenHandler) RevokeTokenHandler(c *gin.Context) {
	plainToken, _ := bearerToken(c)
	if err := h.tokenUseCase.Revoke(c.Request.Context(), h.tokenService.HashToken(plainToken)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Data(http.StatusNoContent, "application/json", nil)
}
