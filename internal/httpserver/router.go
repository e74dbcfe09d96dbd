package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/sole_searcher/internal/app"
	"github.com/Skotchmaster/sole_searcher/internal/metrics"
	sessionmw "github.com/Skotchmaster/sole_searcher/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/sole_searcher/internal/middleware/logging"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	Session        *sessionmw.SessionMiddleware
}

func NewDeps(shop *app.Storefront) *Deps {
	return &Deps{
		AuthHandler:    &AuthHTTP{Svc: shop.Auth},
		CatalogHandler: &CatalogHTTP{Svc: shop.Catalog},
		CartHandler:    &CartHTTP{Shop: shop},
		Session:        sessionmw.NewSessionMiddleware(shop.Auth),
	}
}

// NewEcho returns an echo instance with the shared middleware chain and the
// request validator installed.
func NewEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api/v1")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/logout", d.AuthHandler.Logout)
	api.GET("/session", d.AuthHandler.Session)

	api.GET("/products", d.CatalogHandler.GetProducts)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)

	admin := api.Group("/admin/products", d.Session.RequireAdmin)
	admin.POST("", d.CatalogHandler.CreateProduct)
	admin.PUT("/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	cart := api.Group("/cart", d.Session.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("/:productID", d.CartHandler.RemoveFromCart)
}
