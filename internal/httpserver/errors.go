package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/transport"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

// ErrorHandler is the one place where errors become responses. Handlers
// return service errors unchanged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	l := logging.FromContext(c.Request().Context())

	status, body := renderError(err)
	if status >= http.StatusInternalServerError {
		l.Error("unhandled_error", "status", status, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		l.Error("write_error_response", "error", err)
	}
}

func renderError(err error) (int, transport.ErrorResponse) {
	if ae, ok := apperr.As(err); ok {
		status := kindStatus(ae.Kind)
		if ae.HasFields() {
			fields := make(map[string]string, len(ae.Errors))
			for _, fe := range ae.Errors {
				fields[fe.Field] = fe.Message
			}
			return status, transport.ErrorResponse{Errors: fields}
		}
		return status, transport.ErrorResponse{Errors: ae.Messages()}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, transport.ErrorResponse{Errors: []string{fmt.Sprint(he.Message)}}
	}

	return http.StatusInternalServerError, transport.ErrorResponse{Errors: []string{err.Error()}}
}

func kindStatus(kind error) int {
	switch {
	case errors.Is(kind, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
