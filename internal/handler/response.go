package handler

import (
	"errors"
	"net/http"

	"closetube/internal/service"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard API error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func sendErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}

// statusForServiceError maps the service error taxonomy onto HTTP status
// codes; matching on sentinels keeps the mapping deterministic.
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
