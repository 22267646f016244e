package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/pharma_ruche/internal/auth"
	"github.com/Skotchmaster/pharma_ruche/internal/catalog"
	"github.com/Skotchmaster/pharma_ruche/internal/feedback"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/httpserver"
	"github.com/Skotchmaster/pharma_ruche/internal/localstore"
	"github.com/Skotchmaster/pharma_ruche/internal/metrics"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/order"
	"github.com/Skotchmaster/pharma_ruche/internal/session"
	"github.com/Skotchmaster/pharma_ruche/pkg/config"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
	authmw "github.com/Skotchmaster/pharma_ruche/pkg/middleware/auth"
	"github.com/Skotchmaster/pharma_ruche/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/pharma_ruche/pkg/middleware/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	config.MustOneOf(cfg.StoreBackend, "STORE_BACKEND", "gorm", "firestore", "memory")
	config.MustOneOf(cfg.LocalStore, "LOCAL_STORE", "gorm", "redis", "memory")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx, stop := signal.NotifyContext(logging.IntoContext(context.Background(), logger), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	origin := cfg.ServiceName + "-" + uuid.NewString()[:8]

	backend, closeBackend, err := openBackend(ctx, cfg, origin)
	if err != nil {
		logger.Error("backend_init_failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	local, closeLocal, err := openLocalStore(ctx, cfg)
	if err != nil {
		logger.Error("local_store_init_failed", "local_store", cfg.LocalStore, "error", err)
		os.Exit(1)
	}
	defer closeLocal()

	cols := gateway.NewCollections(backend)

	cat := catalog.NewService(cols.Products)
	orderView := gateway.NewLiveView[models.Order](cols.Orders)
	feedbackView := gateway.NewLiveView[models.Feedback](cols.Feedbacks)
	searcher := openSearch(ctx, cfg, cat)

	orders := order.NewManager(cols.Orders)
	orders.Observer = metrics.Orders{}
	recorder := feedback.NewRecorder(cols.Feedbacks, cols.Orders)
	sessions := session.NewManager(local, orders, recorder)

	cacheView(ctx, local, gateway.Products, cat.View)
	cacheView(ctx, local, gateway.Orders, orderView)
	cacheView(ctx, local, gateway.Feedbacks, feedbackView)

	go runView(ctx, "products", cat.View.Run)
	go runView(ctx, "orders", orderView.Run)
	go runView(ctx, "feedbacks", feedbackView.Run)
	go sweepSessions(ctx, sessions, cfg.SessionIdleTTL)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())

	corsOrigins := []string{"*"}
	if cfg.PublicOrigin != "" {
		corsOrigins = []string{cfg.PublicOrigin}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowCredentials: cfg.PublicOrigin != "",
		AllowHeaders:     []string{echo.HeaderContentType, "Accept-Language", "X-CSRF-Token"},
	}))

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.SecureCookie
	csrfCfg.SkipPrefixes = []string{"/health", "/metrics"}
	if cfg.PublicOrigin != "" {
		csrfCfg.TrustedOrigins = []string{cfg.PublicOrigin}
	}
	e.Use(csrf.Middleware(csrfCfg))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	deps := httpserver.Deps{
		Catalog:        cat,
		Search:         searcher,
		Sessions:       sessions,
		Orders:         orders,
		OrderView:      orderView,
		Feedback:       recorder,
		Feedbacks:      feedbackView,
		Auth:           auth.NewService(cfg.AdminAccounts, cfg.AdminAllowList, cfg.JWTAccessSecret, cfg.AccessTTL),
		Gate:           authmw.NewAdminGate(cfg.JWTAccessSecret),
		SecureCookie:   cfg.SecureCookie,
		AllowedOrigins: csrfCfg.TrustedOrigins,
		CheckoutRPS:    cfg.CheckoutRPS,
		CheckoutBurst:  cfg.CheckoutBurst,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:     e,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		logger.Info("http_server_started", "addr", srv.Addr, "backend", cfg.StoreBackend, "local_store", cfg.LocalStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	logger.Info("shutdown_complete")
}

func runView(ctx context.Context, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.FromContext(ctx).Error("live_view_stopped", "collection", name, "error", err)
	}
}

// cacheView serves the last cached list under key until the view loads,
// and refreshes the cache on every snapshot.
func cacheView[T any](ctx context.Context, local localstore.Store, key string, view *gateway.LiveView[T]) {
	if cached := localstore.LoadLegacy[T](ctx, local, key); len(cached) > 0 {
		view.SetFallback(cached)
		logging.FromContext(ctx).Info("view_cache_loaded", "collection", key, "count", len(cached))
	}
	view.OnSnapshot(func(ctx context.Context, snap []T) {
		if err := localstore.SaveLegacy(ctx, local, key, snap); err != nil {
			logging.FromContext(ctx).Warn("view_cache_save_failed", "collection", key, "error", err)
		}
	})
}

func sweepSessions(ctx context.Context, sessions *session.Manager, ttl time.Duration) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Sweep(ttl); n > 0 {
				logging.FromContext(ctx).Info("sessions_swept", "count", n)
			}
			metrics.SetActiveSessions(sessions.Len())
		}
	}
}
