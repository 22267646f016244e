package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharma_ruche/internal/auth"
	"github.com/Skotchmaster/pharma_ruche/internal/catalog"
	"github.com/Skotchmaster/pharma_ruche/internal/feedback"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway/memdb"
	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/localstore"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/order"
	"github.com/Skotchmaster/pharma_ruche/internal/search"
	"github.com/Skotchmaster/pharma_ruche/internal/session"
	"github.com/Skotchmaster/pharma_ruche/pkg/hash"
	authmw "github.com/Skotchmaster/pharma_ruche/pkg/middleware/auth"
)

const (
	adminEmail    = "owner@pharmaruche.dz"
	adminPassword = "s3cret-honey"
)

var jwtSecret = []byte("test-secret")

type failingOrders struct {
	gateway.Collection[models.Order]
}

func (failingOrders) Create(context.Context, models.Order) (string, error) {
	return "", errors.New("permission denied")
}

type server struct {
	e     *echo.Echo
	store *memdb.Store
	deps  *Deps
}

func newServer(t *testing.T, orders gateway.Collection[models.Order]) *server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memdb.New()
	cols := gateway.NewCollections(store)
	if orders == nil {
		orders = cols.Orders
	}

	cat := catalog.NewService(cols.Products)
	orderView := gateway.NewLiveView[models.Order](cols.Orders)
	fbView := gateway.NewLiveView[models.Feedback](cols.Feedbacks)
	go func() { _ = cat.View.Run(ctx) }()
	go func() { _ = orderView.Run(ctx) }()
	go func() { _ = fbView.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, cat.View.WaitReady(waitCtx))
	require.NoError(t, orderView.WaitReady(waitCtx))
	require.NoError(t, fbView.WaitReady(waitCtx))

	pw, err := hash.HashPassword(adminPassword)
	require.NoError(t, err)

	om := order.NewManager(orders)
	fr := feedback.NewRecorder(cols.Feedbacks, cols.Orders)
	d := &Deps{
		Catalog:   cat,
		Search:    search.Local{Products: cat.List},
		Sessions:  session.NewManager(localstore.NewMemory(), om, fr),
		Orders:    om,
		OrderView: orderView,
		Feedback:  fr,
		Feedbacks: fbView,
		Auth:      auth.NewService(map[string]string{adminEmail: pw}, nil, jwtSecret, time.Hour),
		Gate:      authmw.NewAdminGate(jwtSecret),
	}

	e := echo.New()
	Register(e, d)
	return &server{e: e, store: store, deps: d}
}

type client struct {
	t       *testing.T
	s       *server
	cookies map[string]*http.Cookie
}

func (s *server) client(t *testing.T) *client {
	return &client{t: t, s: s, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.s.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (c *client) login() {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/auth/login", `{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *server) seed(t *testing.T) []models.Product {
	t.Helper()
	s.client(t).login()

	var list []models.Product
	require.Eventually(t, func() bool {
		list = s.deps.Catalog.List()
		return len(list) == len(catalog.InitialProducts)
	}, 2*time.Second, 5*time.Millisecond)
	return list
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)
	c := s.client(t)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health/ready", "").Code)
}

// unavailableOrders never manages to open its feed.
type unavailableOrders struct {
	gateway.Collection[models.Order]
}

func (unavailableOrders) Subscribe(context.Context) (*gateway.Feed[models.Order], error) {
	return nil, errors.New("firestore unavailable")
}

func TestReadyReportsViewWithoutSnapshot(t *testing.T) {
	s := newServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	view := gateway.NewLiveView[models.Order](unavailableOrders{})
	view.RetryDelay = 10 * time.Millisecond
	go func() { _ = view.Run(ctx) }()
	require.Eventually(t, func() bool { return view.Err() != nil }, time.Second, 5*time.Millisecond)
	s.deps.OrderView = view

	rec := s.client(t).do(http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, gateway.Orders, body["collection"])
	assert.Contains(t, body["error"], "firestore unavailable")
}

func TestLoginSeedsEmptyCatalog(t *testing.T) {
	s := newServer(t, nil)
	require.Empty(t, s.deps.Catalog.List())

	admin := s.client(t)
	admin.login()
	assert.Equal(t, len(catalog.InitialProducts), s.store.Len(gateway.Products))

	admin.login()
	rec := admin.do(http.MethodPost, "/api/v1/admin/products/seed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"created":0}`, rec.Body.String())
	assert.Equal(t, len(catalog.InitialProducts), s.store.Len(gateway.Products))
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	s := newServer(t, nil)
	c := s.client(t)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/v1/admin/dashboard", "").Code)

	rec := c.do(http.MethodPost, "/api/v1/auth/login", `{"email":"`+adminEmail+`","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c.login()
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/admin/dashboard", "").Code)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/api/v1/auth/logout", "").Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/v1/admin/dashboard", "").Code)
}

func TestCheckoutAndFeedback(t *testing.T) {
	s := newServer(t, nil)
	products := s.seed(t)
	c := s.client(t)

	rec := c.do(http.MethodPost, "/api/v1/cart/items", `{"productId":"`+products[0].ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, c.cookies, SessionCookie)

	c.do(http.MethodPost, "/api/v1/cart/items", `{"productId":"`+products[0].ID+`"}`)
	rec = c.do(http.MethodPatch, "/api/v1/cart/items/"+products[0].ID, `{"delta":-5}`)
	view := decode[session.View](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)

	rec = c.do(http.MethodPost, "/api/v1/checkout", `{"name":"Amina","phone":"0550","wilaya":"16 Alger","address":"Bab Ezzouar"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[struct {
		Order   models.Order `json:"order"`
		Session session.View `json:"session"`
	}](t, rec)
	assert.Equal(t, models.OrderStatusPending, out.Order.Status)
	assert.Equal(t, products[0].Price, out.Order.Total)
	assert.Empty(t, out.Session.Items)
	assert.True(t, out.Session.SuccessOpen)

	rec = c.do(http.MethodPost, "/api/v1/feedback", `{"rating":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/feedback", `{"rating":5,"comment":"great"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/feedback", `{"rating":5,"comment":"again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	admin := s.client(t)
	admin.login()
	require.Eventually(t, func() bool {
		var stats map[string]any
		if err := json.Unmarshal(admin.do(http.MethodGet, "/api/v1/admin/dashboard", "").Body.Bytes(), &stats); err != nil {
			return false
		}
		return stats["orders"] == float64(1) && stats["feedbacks"] == float64(1)
	}, 2*time.Second, 10*time.Millisecond)

	rec = admin.do(http.MethodPatch, "/api/v1/admin/orders/"+out.Order.ID+"/status", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = admin.do(http.MethodPatch, "/api/v1/admin/orders/"+out.Order.ID+"/status", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = admin.do(http.MethodPatch, "/api/v1/admin/orders/missing/status", `{"status":"pending"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutEmptyCartIsNoop(t *testing.T) {
	s := newServer(t, nil)
	c := s.client(t)

	rec := c.do(http.MethodPost, "/api/v1/checkout", `{"name":"Amina","phone":"0550","wilaya":"16 Alger","address":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"order":null`)
	assert.Zero(t, s.store.Len(gateway.Orders))
}

func TestCheckoutValidation(t *testing.T) {
	s := newServer(t, nil)
	products := s.seed(t)
	c := s.client(t)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/cart/items", `{"productId":"`+products[0].ID+`"}`).Code)

	rec := c.do(http.MethodPost, "/api/v1/checkout", `{"name":"Amina","phone":"","wilaya":"16 Alger","address":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutGatewayFailure(t *testing.T) {
	s := newServer(t, failingOrders{})
	products := s.seed(t)
	c := s.client(t)

	rec := c.do(http.MethodPost, "/api/v1/cart/items?lang=fr", `{"productId":"`+products[0].ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/checkout", `{"name":"Amina","phone":"0550","wilaya":"16 Alger","address":"x"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), i18n.T(i18n.FR, "order_failed"))

	view := decode[map[string]json.RawMessage](t, c.do(http.MethodGet, "/api/v1/session", ""))
	assert.Contains(t, string(view["session"]), products[0].ID)
}

func TestUnknownProduct(t *testing.T) {
	s := newServer(t, nil)
	c := s.client(t)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/v1/products/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/v1/cart/items", `{"productId":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/v1/cart/items", `{}`).Code)
}

func TestTranslationsAndLanguage(t *testing.T) {
	s := newServer(t, nil)
	c := s.client(t)

	body := decode[map[string]any](t, c.do(http.MethodGet, "/api/v1/i18n?lang=fr", ""))
	assert.Equal(t, "ltr", body["dir"])

	rec := c.do(http.MethodPut, "/api/v1/session/language", `{"language":"de"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPut, "/api/v1/session/language", `{"language":"ar"}`)
	view := decode[session.View](t, rec)
	assert.Equal(t, i18n.AR, view.Language)
	assert.Equal(t, "rtl", view.Dir)

	wil := decode[map[string]any](t, c.do(http.MethodGet, "/api/v1/wilayas", ""))
	assert.Equal(t, order.DefaultWilaya, wil["default"])
}

func TestSearchAndProducts(t *testing.T) {
	s := newServer(t, nil)
	s.seed(t)
	c := s.client(t)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/v1/products/search", "").Code)

	rec := c.do(http.MethodGet, "/api/v1/products/search?q=eucalyptus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[struct {
		Data []models.Product `json:"data"`
	}](t, rec)
	require.Len(t, res.Data, 1)

	rec = c.do(http.MethodGet, "/api/v1/products?size=2", "")
	list := decode[struct {
		Data []models.Product `json:"data"`
		Meta map[string]any   `json:"meta"`
	}](t, rec)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, true, list.Meta["has_next"])
	assert.LessOrEqual(t, list.Data[0].Price, list.Data[1].Price)
}
