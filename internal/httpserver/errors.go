package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/internal/auth"
	"github.com/Skotchmaster/pharma_ruche/internal/catalog"
	"github.com/Skotchmaster/pharma_ruche/internal/feedback"
	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/order"
	"github.com/Skotchmaster/pharma_ruche/internal/session"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

// fail logs err under event and turns it into an HTTP error. Remote
// failures get the localized order_failed notice instead of the cause.
func fail(c echo.Context, event string, lang i18n.Language, err error) error {
	l := logging.FromContext(c.Request().Context())

	code, msg, reason := classify(err)
	if code == http.StatusBadGateway {
		msg = i18n.T(lang, "order_failed")
		l.Error(event, "status", code, "reason", reason, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", reason, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, order.ErrValidation), errors.Is(err, catalog.ErrValidation):
		return http.StatusBadRequest, err.Error(), "validation"
	case errors.Is(err, order.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, err.Error(), "not found"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error(), "unauthorized"
	case errors.Is(err, session.ErrNoRecentOrder):
		return http.StatusConflict, err.Error(), "no recent order"
	case errors.Is(err, order.ErrPersist), errors.Is(err, feedback.ErrPersist):
		return http.StatusBadGateway, "", "persist"
	default:
		return http.StatusBadGateway, "", "gateway"
	}
}
