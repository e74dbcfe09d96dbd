package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sole_searcher/internal/service"
)

// serviceError maps a service error onto an HTTP error and logs it under
// event.
func serviceError(l *slog.Logger, event string, err error) error {
	code, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrDuplicateEmail):
		code, msg = http.StatusConflict, service.ErrDuplicateEmail.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrNoSession):
		code, msg = http.StatusUnauthorized, "login required"
	}

	if code >= 500 {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, event, msg string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", msg, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
