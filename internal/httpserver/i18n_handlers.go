package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/order"
)

func (d *Deps) Translations(c echo.Context) error {
	lang := requestLang(c)
	return c.JSON(http.StatusOK, echo.Map{
		"language":   lang,
		"dir":        i18n.Dir(lang),
		"messages":   i18n.Table(lang),
		"categories": models.Categories,
	})
}

func (d *Deps) ListWilayas(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"data":    order.Wilayas,
		"default": order.DefaultWilaya,
	})
}
