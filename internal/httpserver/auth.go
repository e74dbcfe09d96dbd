package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/service"
	"github.com/Skotchmaster/sole_searcher/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "register_error", err.Error(), err)
	}

	u, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "register_error", err)
	}

	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "login_error", err.Error(), err)
	}

	u, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "login_error", err)
	}

	return c.JSON(http.StatusOK, u)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	h.Svc.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.SessionResponse{User: h.Svc.CurrentUser()})
}
