package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/service"
	"github.com/Skotchmaster/sole_searcher/internal/transport"
	"github.com/Skotchmaster/sole_searcher/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func parseID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	key, err := service.ParseSortKey(c.QueryParam("sort"))
	if err != nil {
		return serviceError(l, "get_products_error", err)
	}
	dir, err := service.ParseSortDirection(c.QueryParam("dir"))
	if err != nil {
		return serviceError(l, "get_products_error", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	all := h.Svc.List(key, dir)
	total := len(all)

	return c.JSON(http.StatusOK, transport.ProductListResponse{
		Data: service.Page(all, page, limit),
		Meta: transport.PageMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
			HasPrev:    page > 1,
			HasNext:    offset+limit < total,
		},
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_error", "id is not an integer", err)
	}

	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return serviceError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "product_create_error", err.Error(), err)
	}

	p, err := h.Svc.Add(ctx, productInput(req))
	if err != nil {
		return serviceError(l, "product_create_error", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_update_error", "id is not an integer", err)
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_update_error", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "product_update_error", err.Error(), err)
	}

	p, err := h.Svc.Update(ctx, id, productInput(req))
	if err != nil {
		return serviceError(l, "product_update_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete_error", "id is not an integer", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return serviceError(l, "product_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func productInput(req transport.ProductRequest) service.ProductInput {
	return service.ProductInput{Name: req.Name, Price: req.Price, ImageURL: req.ImageURL}
}
