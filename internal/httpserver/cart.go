package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sole_searcher/internal/app"
	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/transport"
)

type CartHTTP struct {
	Shop *app.Storefront
}

func (h *CartHTTP) cart() transport.CartResponse {
	return transport.CartResponse{
		Items:      h.Shop.Cart.Items(),
		Count:      h.Shop.Cart.Count(),
		TotalPrice: h.Shop.Cart.TotalPrice(),
	}
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cart())
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "add_to_cart_error", err.Error(), err)
	}

	if _, err := h.Shop.AddToCart(ctx, req.ProductID); err != nil {
		return serviceError(l, "add_to_cart_error", err)
	}
	return c.JSON(http.StatusOK, h.cart())
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := parseID(c, "productID")
	if err != nil {
		return badRequest(l, "remove_from_cart_error", "product id is not an integer", err)
	}

	h.Shop.Cart.RemoveItem(ctx, id)
	return c.JSON(http.StatusOK, h.cart())
}
