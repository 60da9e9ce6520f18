package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "storefront/internal/controllers/http"
	"storefront/internal/config"
	"storefront/internal/infra"
	"storefront/internal/metrics"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg)
	orderMetrics := metrics.NewOrders(reg)

	var catalog *services.CatalogService
	if cfg.ProductServiceURL != "" {
		catalog = services.NewRemoteCatalogService(infra.NewProductClient(cfg.ProductServiceURL, 2*time.Second))
		slog.Info("using remote product service", "url", cfg.ProductServiceURL)
	} else {
		catalog = services.NewCatalogService(stores.products)
	}

	rdb := newRedisClient(cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	carts := newCartStore(cfg, rdb)
	if cache := newProductCache(rdb); cache != nil {
		catalog.SetCache(cache, cfg.ProductCacheTTL)
	}

	if cfg.CatalogSeedPath != "" {
		if err := seedCatalog(ctx, catalog, cfg.CatalogSeedPath); err != nil {
			return err
		}
	}

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	orderService := services.NewOrderService(catalog, stores.orders, publisher)
	orderService.SetMetrics(orderMetrics)
	orderService.SetNotifyTimeout(cfg.NotifyTimeout)

	reviewService := services.NewReviewService(stores.orders)
	reviewService.SetMetrics(orderMetrics)

	if cfg.AdminPasswordHash == "" || cfg.JWTSecret == "" {
		slog.Warn("admin login disabled: ADMIN_PASSWORD_HASH and JWT_SECRET are required")
	}

	handler := handlers.NewHandler(orderService, reviewService, catalog, carts)
	handler.SetAdminAuth(handlers.NewAdminAuth(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AdminTokenTTL))
	handler.SetRateLimits(
		handlers.NewRateLimiter(cfg.CheckoutRateLimit, cfg.CheckoutRateBurst),
		handlers.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
	)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(logger), serverMetrics.Middleware())
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting storefront", "port", cfg.Port, "store", cfg.StoreDriver, "notify", cfg.NotifyDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := catalog.WarmupProductCache(gctx); err != nil {
			slog.Warn("product cache warmup failed", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if werr := orderService.Wait(drainCtx); werr != nil {
		slog.Warn("pending order notifications abandoned", "error", werr)
	}
	return err
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
