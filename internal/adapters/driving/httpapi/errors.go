package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

// errorResponse maps domain errors to HTTP status codes and writes the
// `{detail}` payload the frontend expects.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrIngestion):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrProvider):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger.Warn("internal error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	return c.JSON(status, echo.Map{"detail": err.Error()})
}
