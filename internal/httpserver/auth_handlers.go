package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/pkg/cookies"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
	authmw "github.com/Skotchmaster/pharma_ruche/pkg/middleware/auth"
)

func (d *Deps) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	token, exp, err := d.Auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, "login_error", i18n.Default, err)
	}

	c.SetCookie(cookies.CreateCookie(authmw.AccessCookie, token, "/", exp, d.SecureCookie))

	if n, err := d.Catalog.SeedIfEmpty(c.Request().Context()); err != nil {
		l.Error("seed_on_login_failed", "error", err)
	} else if n > 0 {
		l.Info("seed_on_login", "created", n)
	}
	return c.JSON(http.StatusOK, echo.Map{"admin": true, "expiresAt": exp})
}

func (d *Deps) Logout(c echo.Context) error {
	c.SetCookie(cookies.DeleteCookie(authmw.AccessCookie, "/"))
	return c.NoContent(http.StatusNoContent)
}
