package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/zefir_shop/internal/service"
	middleware "github.com/Skotchmaster/zefir_shop/pkg/middleware/auth"
)

func identityFrom(c echo.Context) (service.Identity, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := claims.UserID()
	if err != nil {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return service.Identity{UserID: id, Email: claims.Email, Role: claims.Role}, nil
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
