package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/service"
	"github.com/Skotchmaster/zefir_shop/internal/transport"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.CreateOrder(ctx, id, service.OrderInput{ProductIDs: req.ProductsID, Deadline: req.Deadline})
	if err != nil {
		return err
	}

	l.Info("create_order_success", "order_id", o.ID, "user_id", id.UserID)
	return c.JSON(http.StatusCreated, transport.NewOrderView(o))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	orderID, ok := parseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	status := transport.UnknownStatus
	if req.Status != nil {
		status = models.OrderStatus(*req.Status)
	}

	o, err := h.Svc.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return err
	}

	l.Info("update_order_success", "order_id", o.ID, "status", o.Status.String())
	return c.JSON(http.StatusOK, transport.NewOrderView(o))
}

// Mine lists the caller's own orders.
func (h *OrderHTTP) Mine(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	orders, err := h.Svc.ListOrders(c.Request().Context(), &id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewOrderViews(orders))
}

func (h *OrderHTTP) All(c echo.Context) error {
	var owner *uint
	if raw := c.QueryParam("userId"); raw != "" {
		uid, ok := parseID(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "userId is not a positive integer")
		}
		owner = &uid
	}
	orders, err := h.Svc.ListOrders(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewOrderViews(orders))
}
