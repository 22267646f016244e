package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/util"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

func (d *Deps) ListProducts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.MaxPageSize)

	items := d.Catalog.List()
	if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
		filtered := items[:0:0]
		for _, p := range items {
			if strings.EqualFold(p.Category, cat) {
				filtered = append(filtered, p)
			}
		}
		items = filtered
	}

	data, meta := util.Page(items, page, size)
	return c.JSON(http.StatusOK, echo.Map{"data": data, "meta": meta})
}

func (d *Deps) GetProduct(c echo.Context) error {
	p, err := d.Catalog.Get(c.Param("id"))
	if err != nil {
		return fail(c, "get_product_error", requestLang(c), err)
	}
	return c.JSON(http.StatusOK, p)
}

func (d *Deps) SearchProducts(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "search_products")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		l.Warn("search_error", "status", http.StatusBadRequest, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := d.Search.Search(c.Request().Context(), q, from, limit)
	if err != nil {
		l.Error("search_error", "status", http.StatusBadGateway, "reason", "search backend", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search unavailable")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": products, "meta": util.Meta(page, limit, total)})
}

func (d *Deps) CreateProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "create_product")

	var req models.Product
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.ID = ""

	p, err := d.Catalog.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, "create_product_error", i18n.Default, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (d *Deps) PatchProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "patch_product")

	var req models.ProductPatch
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id := c.Param("id")
	if err := d.Catalog.Patch(c.Request().Context(), id, req); err != nil {
		return fail(c, "patch_product_error", i18n.Default, err)
	}
	l.Info("product_patched", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (d *Deps) DeleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := d.Catalog.Delete(c.Request().Context(), id); err != nil {
		return fail(c, "delete_product_error", i18n.Default, err)
	}
	logging.FromContext(c.Request().Context()).Info("product_deleted", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (d *Deps) SeedProducts(c echo.Context) error {
	n, err := d.Catalog.SeedIfEmpty(c.Request().Context())
	if err != nil {
		return fail(c, "seed_products_error", i18n.Default, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"created": n})
}
