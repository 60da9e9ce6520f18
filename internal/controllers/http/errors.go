package http

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidOrderQuery),
		errors.Is(err, services.ErrInvalidProduct):
		return http.StatusBadRequest
	case errors.Is(err, ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrReadOnlyCatalog):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnknownProduct),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrProductExists):
		return http.StatusConflict
	case errors.Is(err, ErrAdminDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {success:false, error}. Internal failures are
// logged and reported with a generic message.
func writeError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		msg = msgInternal
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

func writeBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}
