package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/pharma_ruche/internal/auth"
	"github.com/Skotchmaster/pharma_ruche/internal/catalog"
	"github.com/Skotchmaster/pharma_ruche/internal/feedback"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/order"
	"github.com/Skotchmaster/pharma_ruche/internal/search"
	"github.com/Skotchmaster/pharma_ruche/internal/session"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
	authmw "github.com/Skotchmaster/pharma_ruche/pkg/middleware/auth"
)

type Deps struct {
	Catalog   *catalog.Service
	Search    search.Searcher
	Sessions  *session.Manager
	Orders    *order.Manager
	OrderView *gateway.LiveView[models.Order]
	Feedback  *feedback.Recorder
	Feedbacks *gateway.LiveView[models.Feedback]
	Auth      *auth.Service
	Gate      *authmw.AdminGate

	SecureCookie   bool
	AllowedOrigins []string
	CheckoutRPS    float64
	CheckoutBurst  int
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	v1 := e.Group("/api/v1")

	v1.GET("/i18n", d.Translations)
	v1.GET("/wilayas", d.ListWilayas)

	v1.GET("/products", d.ListProducts)
	v1.GET("/products/search", d.SearchProducts)
	v1.GET("/products/:id", d.GetProduct)
	v1.GET("/feedbacks", d.PublicFeedbacks)

	v1.GET("/live/products", func(c echo.Context) error {
		return stream(c, d.AllowedOrigins, d.Catalog.Products.Subscribe)
	})
	v1.GET("/live/feedbacks", func(c echo.Context) error {
		return stream(c, d.AllowedOrigins, d.Feedback.Subscribe)
	})

	v1.POST("/auth/login", d.Login)
	v1.POST("/auth/logout", d.Logout)

	sess := v1.Group("", d.withSession)

	sess.GET("/session", d.GetSession)
	sess.PUT("/session/language", d.SetLanguage)
	sess.POST("/cart/items", d.AddToCart)
	sess.PATCH("/cart/items/:id", d.UpdateCartItem)
	sess.DELETE("/cart/items/:id", d.RemoveFromCart)
	sess.POST("/cart/open", d.OpenCart)
	sess.POST("/cart/close", d.CloseCart)
	sess.POST("/checkout", d.Checkout, d.limiter())
	sess.POST("/feedback", d.SubmitFeedback, d.limiter())
	sess.POST("/feedback/dismiss", d.DismissFeedback)

	admin := v1.Group("/admin", d.Gate.RequireAdmin)

	admin.GET("/orders", d.ListOrders)
	admin.PATCH("/orders/:id/status", d.UpdateOrderStatus)
	admin.GET("/feedbacks", d.AdminFeedbacks)
	admin.GET("/dashboard", d.Dashboard)
	admin.POST("/products", d.CreateProduct)
	admin.PATCH("/products/:id", d.PatchProduct)
	admin.DELETE("/products/:id", d.DeleteProduct)
	admin.POST("/products/seed", d.SeedProducts)
	admin.GET("/live/orders", func(c echo.Context) error {
		return stream(c, d.AllowedOrigins, d.Orders.Subscribe)
	})
}

// readyWait bounds how long /health/ready waits for a first snapshot.
const readyWait = 500 * time.Millisecond

type viewState interface {
	WaitReady(ctx context.Context) error
	Err() error
}

// ready reports 200 once every live view holds a snapshot. Otherwise it
// returns 503 with the view's last feed error, if any.
func (d *Deps) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyWait)
	defer cancel()

	views := []struct {
		name string
		view viewState
	}{
		{gateway.Products, d.Catalog.View},
		{gateway.Orders, d.OrderView},
		{gateway.Feedbacks, d.Feedbacks},
	}
	for _, v := range views {
		if err := v.view.WaitReady(ctx); err != nil {
			body := echo.Map{"status": "not_ready", "collection": v.name}
			if ferr := v.view.Err(); ferr != nil {
				body["error"] = ferr.Error()
			}
			logging.FromContext(ctx).Warn("ready_error", "status", http.StatusServiceUnavailable, "collection", v.name, "error", v.view.Err())
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}

// limiter throttles one route per session, falling back to client IP.
func (d *Deps) limiter() echo.MiddlewareFunc {
	rps, burst := d.CheckoutRPS, d.CheckoutBurst
	if rps <= 0 {
		rps = 0.5
	}
	if burst <= 0 {
		burst = 3
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 5 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
				return ck.Value, nil
			}
			return c.RealIP(), nil
		},
	})
}
