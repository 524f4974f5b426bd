package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/application/bulkop"
	catalogapp "github.com/sellerhub/backend/internal/application/catalog"
	importapp "github.com/sellerhub/backend/internal/application/import"
	integrationapp "github.com/sellerhub/backend/internal/application/integration"
	syncapp "github.com/sellerhub/backend/internal/application/sync"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
	"github.com/sellerhub/backend/internal/infrastructure/config"
	"github.com/sellerhub/backend/internal/infrastructure/event"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	"github.com/sellerhub/backend/internal/infrastructure/marketplace"
	"github.com/sellerhub/backend/internal/infrastructure/persistence"
	"github.com/sellerhub/backend/internal/infrastructure/scheduler"
	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
	"github.com/sellerhub/backend/internal/interfaces/http/handler"
	"github.com/sellerhub/backend/internal/interfaces/http/middleware"
	"github.com/sellerhub/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SellerHub backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis backs live sync progress and idempotency keys. When it is not
	// reachable the server still comes up on in-process fallbacks.
	var (
		progressCache cache.ProgressCache
		idempotency   shared.IdempotencyStore
		redisClient   *redis.Client
	)
	redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	pingErr := redisClient.Ping(pingCtx).Err()
	pingCancel()
	if pingErr != nil {
		log.Warn("Redis unavailable, using in-memory progress and idempotency stores", zap.Error(pingErr))
		_ = redisClient.Close()
		redisClient = nil
		progressCache = cache.NewInMemoryProgressCache()
		idempotency = cache.NewInMemoryIdempotencyStore()
	} else {
		progressCache = cache.NewRedisProgressCache(redisClient, cfg.Sync.ProgressTTL)
		idempotency = cache.NewRedisIdempotencyStoreWithClient(redisClient, "sellerhub")
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	connectionRepo := persistence.NewGormConnectionRepository(db.DB)
	operationRepo := persistence.NewGormBulkOperationRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	// Marketplace gateways and payload mapping
	mapper := marketplace.NewMapper()
	gateways := marketplace.NewDefaultRegistry(cfg.Sync.RequestTimeout)

	// Event bus for operation lifecycle events
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	reconciler := syncapp.NewReconciler(orderRepo, productRepo, log)
	consolidator := syncapp.NewConsolidator(orderRepo, syncapp.NewSameAddressSameDayPolicy(), log)
	syncService := syncapp.NewOrderSyncService(
		gateways, mapper, reconciler, consolidator,
		connectionRepo, operationRepo, progressCache, idempotency,
		eventBus, log, cfg.Sync,
	)
	operationService := bulkop.NewService(operationRepo, progressCache, eventBus, log)
	productService := catalogapp.NewProductService(productRepo, log)
	connectionService := integrationapp.NewConnectionService(connectionRepo, log)
	orderQueryService := integrationapp.NewOrderQueryService(orderRepo)
	priceImportService := importapp.NewPriceImportService(
		productRepo, connectionRepo, gateways, operationRepo, progressCache, eventBus, log)
	stockImportService := importapp.NewStockImportService(
		productRepo, connectionRepo, gateways, operationRepo, progressCache, eventBus, log)

	// Background sync scheduler. Always constructed so manual sync triggers
	// have a queue; only started when enabled.
	syncScheduler, err := scheduler.NewSyncScheduler(cfg.Scheduler, connectionRepo, syncService, log)
	if err != nil {
		log.Fatal("Failed to create sync scheduler", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := syncScheduler.Stop(ctx); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Sync scheduler started",
			zap.Duration("tick_interval", cfg.Scheduler.TickInterval),
			zap.Int("max_concurrent", cfg.Scheduler.MaxConcurrent),
		)
	}

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tenant(middleware.DefaultTenantConfig()))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(version)).
		Register(handler.NewConnectionHandler(connectionService)).
		Register(handler.NewProductHandler(productService)).
		Register(handler.NewOrderHandler(orderQueryService)).
		Register(handler.NewOperationHandler(operationService, syncService)).
		Register(handler.NewSyncHandler(connectionService, syncScheduler)).
		Register(handler.NewImportHandler(priceImportService, stockImportService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
