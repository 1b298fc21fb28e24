package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/adapter"
	"github.com/indie-cactus/service-reservation/internal/application"
	"github.com/indie-cactus/service-reservation/internal/auth"
	"github.com/indie-cactus/service-reservation/internal/config"
	"github.com/indie-cactus/service-reservation/internal/database"
	cartDomain "github.com/indie-cactus/service-reservation/internal/domain/cart"
	"github.com/indie-cactus/service-reservation/internal/events"
	"github.com/indie-cactus/service-reservation/internal/handler"
	"github.com/indie-cactus/service-reservation/internal/logger"
	"github.com/indie-cactus/service-reservation/internal/middleware"
	"github.com/indie-cactus/service-reservation/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.RoomModel{},
			&repository.RateModel{},
			&repository.BookingModel{},
			&repository.BookingLineModel{},
			&repository.CouponModel{},
		); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager for the management surface
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)

	// Initialize session cart store, falling back to memory when Redis is
	// not configured (single-instance development)
	var cartStore cartDomain.Store
	if cfg.Redis.Addr != "" {
		redisClient := repository.NewRedisClient(cfg.Redis)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := repository.Ping(pingCtx, redisClient); err != nil {
			zapLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		pingCancel()
		cartStore = repository.NewRedisCartStore(redisClient, cfg.Cart.TTL)
		defer redisClient.Close()
	} else {
		zapLogger.Warn("redis not configured, using in-memory cart store")
		cartStore = repository.NewMemoryCartStore()
	}

	// Initialize Kafka producer
	producer := events.NewProducer(cfg.Kafka.Brokers, zapLogger)
	defer producer.Close()

	// Initialize payment processor adapter (mock for development)
	var processor adapter.Processor
	if cfg.AppEnv == "development" || cfg.Processor.AccessToken == "" {
		processor = adapter.NewMockProcessor(zapLogger)
	} else {
		processor = adapter.NewMercadoPagoAdapter(cfg.Processor, zapLogger)
	}

	// Initialize repositories
	inventoryRepo := repository.NewGormInventoryRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)

	// Initialize application services
	pricingService := application.NewPricingService(inventoryRepo, zapLogger)
	inventoryService := application.NewInventoryService(inventoryRepo, zapLogger)
	couponService := application.NewCouponService(couponRepo, zapLogger)

	capacityPolicy := cartDomain.Unlimited
	if cfg.Cart.MaxLines > 0 {
		capacityPolicy = cartDomain.MaxLines(cfg.Cart.MaxLines)
	}
	cartService := application.NewCartService(cartStore, inventoryRepo, pricingService, couponRepo, capacityPolicy, zapLogger)

	bookingService := application.NewBookingService(bookingRepo, inventoryRepo, cartStore, couponRepo, processor, producer, cfg.Processor, zapLogger)
	confirmationService := application.NewConfirmationService(bookingRepo, processor, producer, zapLogger)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService)
	checkoutHandler := handler.NewCheckoutHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(confirmationService, zapLogger)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, pricingService, couponService)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(zapLogger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.Session())

	// Register health check routes
	healthHandler := handler.NewHealthHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterRoutes(apiV1)
	inventoryHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-reservation...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-reservation stopped")
}
