package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/zefir_shop/internal/service"
	"github.com/Skotchmaster/zefir_shop/internal/transport"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

type ThematicHTTP struct {
	Svc *service.ThematicService
}

func (h *ThematicHTTP) List(c echo.Context) error {
	ths, err := h.Svc.ListThematics(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]transport.ThematicView, 0, len(ths))
	for i := range ths {
		out = append(out, transport.NewThematicView(&ths[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ThematicHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "thematic.create")

	var req transport.ThematicRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_thematic_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	th, err := h.Svc.CreateThematic(ctx, req.Name, req.ProductsID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, transport.NewThematicView(th))
}

func (h *ThematicHTTP) Delete(c echo.Context) error {
	if err := h.Svc.DeleteThematic(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
