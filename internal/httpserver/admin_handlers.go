package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/internal/dashboard"
	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/util"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

func (d *Deps) ListOrders(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	orders, _ := d.OrderView.Snapshot()
	if st := models.OrderStatus(c.QueryParam("status")); st.IsValid() {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == st {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	data, meta := util.Page(orders, page, size)
	return c.JSON(http.StatusOK, echo.Map{"data": data, "meta": meta})
}

func (d *Deps) UpdateOrderStatus(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "update_order_status")

	var req models.StatusPatch
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := d.Orders.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return fail(c, "update_status_error", i18n.Default, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (d *Deps) AdminFeedbacks(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	fbs, _ := d.Feedbacks.Snapshot()
	data, meta := util.Page(fbs, page, size)
	return c.JSON(http.StatusOK, echo.Map{"data": data, "meta": meta})
}

// PublicFeedbacks lists reviews without the order reference.
func (d *Deps) PublicFeedbacks(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	fbs, _ := d.Feedbacks.Snapshot()
	for i := range fbs {
		fbs[i].OrderID = ""
	}
	data, meta := util.Page(fbs, page, size)
	return c.JSON(http.StatusOK, echo.Map{"data": data, "meta": meta})
}

func (d *Deps) Dashboard(c echo.Context) error {
	orders, _ := d.OrderView.Snapshot()
	fbs, _ := d.Feedbacks.Snapshot()
	return c.JSON(http.StatusOK, dashboard.Compute(orders, fbs, len(d.Catalog.List())))
}
