package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/models"
)

const (
	ctxUserKey = "user"
	ctxIDKey   = "user_id"
	ctxRoleKey = "role"
)

// SessionSource is satisfied by *service.AuthService.
type SessionSource interface {
	CurrentUser() *models.User
}

type SessionMiddleware struct {
	Auth SessionSource
}

func NewSessionMiddleware(src SessionSource) *SessionMiddleware {
	return &SessionMiddleware{Auth: src}
}

type ValidatorFunc func(u *models.User) error

func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireSessionWithValidator(next, nil)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireSessionWithValidator(next, func(u *models.User) error {
		if !u.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *SessionMiddleware) requireSessionWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "session")

		u := m.Auth.CurrentUser()
		if u == nil {
			l.Warn("session_required", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		if validator != nil {
			if err := validator(u); err != nil {
				l.Warn("session_rejected", "user_id", u.ID, "role", u.Role, "error", err)
				return err
			}
		}

		setUserContext(c, u)
		return next(c)
	}
}

// UserFromContext returns the user stored by RequireAuth or RequireAdmin.
func UserFromContext(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(ctxUserKey).(*models.User)
	return u, ok && u != nil
}

func setUserContext(c echo.Context, u *models.User) {
	c.Set(ctxUserKey, u)
	c.Set(ctxIDKey, u.ID)
	c.Set(ctxRoleKey, string(u.Role))
}
