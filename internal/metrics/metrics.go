package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Skotchmaster/pharma_ruche/internal/models"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders saved to the store",
	})

	orderRevenue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_value_total",
		Help: "Sum of placed order totals in DZD",
	})

	orderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_failures_total",
			Help: "Checkout attempts that did not produce an order",
		},
		[]string{"reason"},
	)

	statusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Order status updates by target status",
		},
		[]string{"status"},
	)

	feedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_feedback_total",
			Help: "Feedback recorded by rating",
		},
		[]string{"rating"},
	)

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_active_sessions",
		Help: "Browsing sessions held in memory",
	})
)

func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			code := strconv.Itoa(status)

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, code).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path, code).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Orders records order lifecycle events.
type Orders struct{}

func (Orders) OrderPlaced(o models.Order) {
	ordersPlaced.Inc()
	orderRevenue.Add(float64(o.Total))
}

func (Orders) OrderFailed(reason string) {
	orderFailures.WithLabelValues(reason).Inc()
}

func (Orders) StatusChanged(to models.OrderStatus) {
	statusChanges.WithLabelValues(string(to)).Inc()
}

func FeedbackRecorded(rating int) {
	feedbackSubmitted.WithLabelValues(strconv.Itoa(rating)).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
