package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/developersvyapar-netizen/vyaapar-backend/api/routes"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/attendance"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/auth"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/cart"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/catalog"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/checkout"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/orders"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/users"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/auth/session"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/config"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/logger"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/metrics"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/migrate"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/redis"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	attendanceRepo := attendance.NewRepository(dbClient.DB())

	allocator, err := orders.NewAllocator(orderRepo, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create order number allocator", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(userRepo, sessionManager, redisClient, cfg.JWT, cfg.AuthRateLimit, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	userService, err := users.NewService(userRepo, security.NewHasher(cfg.Password))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cartRepo, userRepo, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(cartRepo, orderRepo, dbClient, allocator, checkoutMetrics, cfg.Checkout.MaxNumberAttempts)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(orderRepo, userRepo, productRepo, dbClient, allocator, checkoutMetrics, cfg.Checkout.MaxNumberAttempts)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	attendanceService, err := attendance.NewService(attendanceRepo, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create attendance service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, routes.Services{
			Auth:       authService,
			Users:      userService,
			Catalog:    catalogService,
			Cart:       cartService,
			Checkout:   checkoutService,
			Orders:     orderService,
			Attendance: attendanceService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(stopCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
