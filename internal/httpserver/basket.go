package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/zefir_shop/internal/service"
	"github.com/Skotchmaster/zefir_shop/internal/transport"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

type BasketHTTP struct {
	Svc *service.BasketService
}

func (h *BasketHTTP) Get(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	b, err := h.Svc.GetBasket(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewBasketView(b))
}

func (h *BasketHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "basket.add")

	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req transport.BasketRequest
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		l.Warn("basket_add_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "productId is required")
	}

	b, err := h.Svc.AddProduct(ctx, id.UserID, req.ProductID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewBasketView(b))
}

func (h *BasketHTTP) Remove(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	productID, ok := parseID(c.QueryParam("productId"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "productId is required")
	}

	b, err := h.Svc.RemoveProduct(c.Request().Context(), id.UserID, productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewBasketView(b))
}
