package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/zefir_shop/internal/service"
	"github.com/Skotchmaster/zefir_shop/internal/transport"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParam(c echo.Context) (int, error) {
	raw := c.QueryParam("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "page must be an integer")
	}
	return page, nil
}

// searchParam reads searchQuery, with search accepted as a shorter alias.
func searchParam(c echo.Context) string {
	if q := c.QueryParam("searchQuery"); q != "" {
		return q
	}
	return c.QueryParam("search")
}

func writePage(c echo.Context, page *service.ProductPage) error {
	c.Response().Header().Set("X-Total-Count", strconv.Itoa(page.TotalPages))
	c.Response().Header().Set("X-Current-Page", strconv.Itoa(page.CurrentPage))
	return c.JSON(http.StatusOK, transport.NewProductViews(page.Items))
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	res, err := h.Svc.ListProducts(c.Request().Context(), service.ProductQuery{
		Page:     page,
		Search:   searchParam(c),
		SortBy:   c.QueryParam("sortBy"),
		Category: c.QueryParam("category"),
		Thematic: c.QueryParam("thematic"),
	})
	if err != nil {
		return err
	}
	return writePage(c, res)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	res, err := h.Svc.SearchProducts(c.Request().Context(), c.QueryParam("q"), page)
	if err != nil {
		return err
	}
	return writePage(c, res)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	p, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewProductView(p))
}

func productInput(req transport.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:            req.Name,
		Description:     req.Description,
		CategoryName:    req.CategoryName,
		Price:           decimal.NewFromFloat(req.Price).Round(2),
		Characteristics: req.Characteristics,
	}
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.CreateProduct(ctx, productInput(req))
	if err != nil {
		return err
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, transport.NewProductView(p))
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update")

	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.UpdateProduct(ctx, id, productInput(req))
	if err != nil {
		return err
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, transport.NewProductView(p))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("delete_product_success", "handler", "catalog.delete", "product_id", id)
	return c.NoContent(http.StatusOK)
}
