package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gamevault/storefront-backend/config"
	"github.com/gamevault/storefront-backend/internal/app/controller"
	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/gamevault/storefront-backend/internal/app/service"
	"github.com/gamevault/storefront-backend/internal/cart"
	"github.com/gamevault/storefront-backend/internal/db"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gamevault/storefront-backend/internal/router"
	"github.com/gamevault/storefront-backend/internal/scheduler"
	"github.com/gamevault/storefront-backend/internal/storage"
	"github.com/gamevault/storefront-backend/pkg/events"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/gamevault/storefront-backend/pkg/metrics"
	redisclient "github.com/gamevault/storefront-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting storefront backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	database := db.GetDB()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Repositories
	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	reviewRepo := repository.NewReviewRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	cartRepo := repository.NewCartRepository(database)

	// Redis backs the token blacklist and the server cart mirror. Without it
	// logout is client side only and carts live in the database.
	var (
		revoker     service.TokenRevoker
		revocations middleware.RevocationChecker
		cartStorage = service.NewRepositoryCartStorage(cartRepo)
	)
	if cfg.Redis.Enabled() {
		if err := redisclient.Init(cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		blacklist := redisclient.NewBlacklist(redisclient.GetClient())
		revoker = blacklist
		revocations = blacklist
		cartStorage = func(userID uint) cart.Storage {
			return cart.NewRedisStorage(redisclient.GetClient(), userID)
		}
	} else {
		logger.Warn("Redis not configured; token revocation disabled")
	}

	publisher := events.NewPublisher(cfg.Kafka)

	var uploader storage.ImageUploader
	if cfg.S3.Enabled() {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			logger.Fatal("Failed to configure S3 storage", err)
		}
		uploader = s3Storage
	}

	// Services
	authService := service.NewAuthService(
		userRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo, cfg.Catalog.PageSize)
	reviewService := service.NewReviewService(database, productRepo, reviewRepo)
	orderService := service.NewOrderService(database, orderRepo, productRepo, publisher, metrics.NewOrderMetrics(registry))
	cartService := service.NewCartService(cartStorage, productRepo)

	// Controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	reviewController := controller.NewReviewController(reviewService, authService)
	orderController := controller.NewOrderController(orderService)
	cartController := controller.NewCartController(cartService)
	uploadController := controller.NewUploadController(uploader)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocations)

	r := router.NewRouter(
		authController,
		productController,
		reviewController,
		orderController,
		cartController,
		uploadController,
		authMiddleware,
		metrics.NewHTTPMetrics(registry),
		registry,
		cfg,
	)
	engine := r.Setup()

	ratingScheduler := scheduler.NewRatingScheduler(
		cfg.Scheduler.RatingRecomputeSpec,
		reviewService,
		metrics.NewCronJobMetrics(registry),
	)
	if err := ratingScheduler.Start(); err != nil {
		logger.Fatal("Failed to start rating scheduler", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	ratingScheduler.Stop()
	err = multierr.Combine(
		srv.Shutdown(ctx),
		publisher.Close(),
		redisclient.Close(),
		db.Close(),
	)
	if err != nil {
		logger.Error("Shutdown completed with errors", err)
		os.Exit(1)
	}
	logger.Info("Server stopped successfully")
}
