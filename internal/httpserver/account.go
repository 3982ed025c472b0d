package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/zefir_shop/internal/service"
	"github.com/Skotchmaster/zefir_shop/internal/transport"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

func authResponse(res *service.AuthResult) transport.AuthResponse {
	return transport.AuthResponse{
		User:         transport.NewUserView(res.User),
		Token:        res.AccessToken,
		TokenExpires: res.AccessExp,
		RefreshToken: res.RefreshToken,
	}
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:            req.Name,
		Surname:         req.Surname,
		Phone:           req.Phone,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}

	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.login")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AccountHTTP) DeleteByCredentials(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.delete")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("delete_account_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ok, err := h.Svc.DeleteByCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	if !ok {
		l.Warn("delete_account_error", "status", 400, "reason", "credentials do not match")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewUserViews(users))
}

// GetUser treats a numeric key as an id and anything else as an email.
func (h *AccountHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("key")

	if id, ok := parseID(key); ok {
		u, err := h.Svc.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, transport.NewUserView(u))
	}

	u, err := h.Svc.GetUserByEmail(ctx, key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewUserView(u))
}

func (h *AccountHTTP) DeleteByID(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.delete_by_id")

	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("delete_account_error", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	if err := h.Svc.DeleteByID(ctx, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.refresh")

	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, id, req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AccountHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.logout")

	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	ok, err := h.Svc.Revoke(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		l.Warn("logout_error", "status", 400, "reason", "no such account", "user_id", id.UserID)
		return echo.NewHTTPError(http.StatusBadRequest, "no such account")
	}
	return c.NoContent(http.StatusNoContent)
}
