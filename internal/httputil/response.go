// Package httputil holds the gin helpers shared by every handler: error
// mapping and pagination.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type errorMapping struct {
	target error
	status int
	code   string
	// public replaces the error text when the cause must not reach the client.
	public string
}

// First match wins.
var errorMappings = []errorMapping{
	{target: apperrors.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
	{target: apperrors.ErrConflict, status: http.StatusConflict, code: "conflict"},
	{target: apperrors.ErrPreconditionFailed, status: http.StatusConflict, code: "precondition_failed"},
	{target: apperrors.ErrInvalidInput, status: http.StatusUnprocessableEntity, code: "invalid_input"},
	{target: apperrors.ErrLocked, status: http.StatusLocked, code: "locked"},
	{
		target: apperrors.ErrUnauthorized,
		status: http.StatusUnauthorized,
		code:   "unauthorized",
		public: "Authentication is required",
	},
	{
		target: apperrors.ErrForbidden,
		status: http.StatusForbidden,
		code:   "forbidden",
		public: "You don't have permission to access this resource",
	},
}

var internalError = errorMapping{
	status: http.StatusInternalServerError,
	code:   "internal_error",
	public: "An internal error occurred",
}

func mapError(err error) errorMapping {
	for _, m := range errorMappings {
		if apperrors.Is(err, m.target) {
			return m
		}
	}
	return internalError
}

// HandleErrorGin writes the status and body for err. Domain errors keep their
// message; anything unrecognized becomes an opaque 500.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	m := mapError(err)
	message := m.public
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if m.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c, level, "request failed",
			slog.Int("status_code", m.status),
			slog.String("error_code", m.code),
			slog.Any("error", err),
		)
	}

	writeError(c, m.status, m.code, message)
}

// HandleBadRequestGin writes a 400 for malformed bodies or query parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	writeError(c, http.StatusBadRequest, "bad_request", err.Error())
}

// HandleValidationErrorGin writes a 422 for a body that parsed but failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	writeError(c, http.StatusUnprocessableEntity, "validation_error", err.Error())
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: requestid.Get(c),
	})
}
