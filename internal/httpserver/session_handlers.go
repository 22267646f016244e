package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/internal/feedback"
	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/metrics"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/session"
	"github.com/Skotchmaster/pharma_ruche/pkg/cookies"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

const (
	SessionCookie = "sid"
	sessionKey    = "session"
	sessionMaxAge = 30 * 24 * time.Hour
)

// withSession attaches the visitor's Storefront, creating one and setting
// the sid cookie when needed.
func (d *Deps) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var sid string
		if ck, err := c.Cookie(SessionCookie); err == nil {
			sid = ck.Value
		}

		s := d.Sessions.Open(c.Request().Context(), sid, requestLang(c))
		if s.ID() != sid {
			c.SetCookie(cookies.CreateCookie(SessionCookie, s.ID(), "/", time.Now().Add(sessionMaxAge), d.SecureCookie))
		}

		c.Set(sessionKey, s)
		ctx := logging.IntoContext(c.Request().Context(), logging.FromContext(c.Request().Context()).With("session_id", s.ID()))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func currentSession(c echo.Context) *session.Storefront {
	s, _ := c.Get(sessionKey).(*session.Storefront)
	return s
}

// requestLang picks ?lang= first, then Accept-Language.
func requestLang(c echo.Context) i18n.Language {
	if l, ok := i18n.Parse(c.QueryParam("lang")); ok {
		return l
	}
	return i18n.Negotiate(c.Request().Header.Get("Accept-Language"))
}

func (d *Deps) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"session": currentSession(c).View(),
		"admin":   d.Gate.IsAdmin(c),
	})
}

func (d *Deps) SetLanguage(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "set_language")

	var req struct {
		Language string `json:"language"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("set_language_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	lang, ok := i18n.Parse(req.Language)
	if !ok {
		l.Warn("set_language_error", "status", http.StatusBadRequest, "reason", "unsupported", "language", req.Language)
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported language")
	}
	return c.JSON(http.StatusOK, currentSession(c).SetLanguage(c.Request().Context(), lang))
}

func (d *Deps) AddToCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "add_to_cart")
	s := currentSession(c)

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ProductID) == "" {
		l.Warn("add_to_cart_error", "status", http.StatusBadRequest, "reason", "product id required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "productId required")
	}

	p, err := d.Catalog.Get(req.ProductID)
	if err != nil {
		return fail(c, "add_to_cart_error", s.Language(), err)
	}
	return c.JSON(http.StatusOK, s.AddToCart(c.Request().Context(), p))
}

func (d *Deps) UpdateCartItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "update_cart_item")

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_item_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return c.JSON(http.StatusOK, currentSession(c).UpdateQuantity(c.Request().Context(), c.Param("id"), req.Delta))
}

func (d *Deps) RemoveFromCart(c echo.Context) error {
	return c.JSON(http.StatusOK, currentSession(c).RemoveFromCart(c.Request().Context(), c.Param("id")))
}

func (d *Deps) OpenCart(c echo.Context) error {
	return c.JSON(http.StatusOK, currentSession(c).OpenCart())
}

func (d *Deps) CloseCart(c echo.Context) error {
	return c.JSON(http.StatusOK, currentSession(c).CloseCart())
}

// Checkout answers 200 with a null order when the cart is empty.
func (d *Deps) Checkout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout")
	s := currentSession(c)

	var req models.ShippingDetails
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := s.Checkout(c.Request().Context(), req)
	if err != nil {
		return fail(c, "checkout_error", s.Language(), err)
	}

	status := http.StatusOK
	if o != nil {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"order": o, "session": s.View()})
}

func (d *Deps) SubmitFeedback(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "submit_feedback")
	s := currentSession(c)

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("feedback_error", "status", http.StatusBadRequest, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if !feedback.ValidRating(req.Rating) {
		l.Warn("feedback_error", "status", http.StatusBadRequest, "reason", "rating out of range", "rating", req.Rating)
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	fb, err := s.SubmitFeedback(c.Request().Context(), req.Rating, req.Comment)
	if err != nil {
		return fail(c, "feedback_error", s.Language(), err)
	}
	metrics.FeedbackRecorded(fb.Rating)
	return c.JSON(http.StatusCreated, echo.Map{
		"feedback": fb,
		"message":  i18n.T(s.Language(), "thank_feedback"),
	})
}

func (d *Deps) DismissFeedback(c echo.Context) error {
	return c.JSON(http.StatusOK, currentSession(c).DismissFeedback())
}
