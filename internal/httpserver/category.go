package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/zefir_shop/internal/service"
	"github.com/Skotchmaster/zefir_shop/internal/transport"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	cats, err := h.Svc.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]transport.CategoryView, 0, len(cats))
	for i := range cats {
		out = append(out, transport.NewCategoryView(&cats[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	cat, err := h.Svc.GetCategory(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewCategoryView(cat))
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	cat, err := h.Svc.CreateCategory(ctx, service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, transport.NewCategoryView(cat))
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_category_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	cat, err := h.Svc.UpdateCategory(ctx, c.Param("name"), service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewCategoryView(cat))
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	if err := h.Svc.DeleteCategory(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
