package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/domain"
	"urbancabz/internal/http/middleware"
	"urbancabz/internal/logger"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Partial success
// maps to 502: the mutation persisted but a required downstream send failed,
// so the caller must not treat it as a clean 2xx nor as a rollback.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	case domain.IsInvalidState(err), domain.IsInvalidTransition(err):
		respondError(c, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	case domain.IsPartialSuccess(err):
		respondError(c, http.StatusBadGateway, "partial_success", err.Error())
	case domain.IsUpstream(err):
		respondError(c, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		logger.ErrorLogger.Errorf("request %s: %v", middleware.GetRequestID(c), err)
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
