package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	offerapp "github.com/offerflow/backend/internal/application/offer"
	"github.com/offerflow/backend/internal/infrastructure/config"
	"github.com/offerflow/backend/internal/infrastructure/erpfactory"
	"github.com/offerflow/backend/internal/infrastructure/logger"
	"github.com/offerflow/backend/internal/infrastructure/pendingstore"
	"github.com/offerflow/backend/internal/interfaces/http/handler"
	"github.com/offerflow/backend/internal/interfaces/http/middleware"
	"github.com/offerflow/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting offer backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Connect the configured ERP vendor. A bad vendor type or rejected
	// credentials must stop the process here, not surface on the first
	// request.
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ERP.TimeoutSeconds)*time.Second)
	adapter, err := erpfactory.NewRegistry().Create(ctx, cfg.ERP, log.Named("erp"))
	cancel()
	if err != nil {
		log.Fatal("Failed to connect ERP vendor", zap.Error(err))
	}

	// Pending store with JSON file persistence
	store, err := pendingstore.New(cfg.Store, log.Named("pendingstore"))
	if err != nil {
		log.Fatal("Failed to open pending store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing pending store", zap.Error(err))
		}
	}()

	// Orchestrator
	offerService := offerapp.NewService(adapter.VendorSet(), store, log.Named("offer"))

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.CORSWithConfig(middleware.CORSFromConfig(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewOfferHandler(offerService, log.Named("http")))
	r.Register(handler.NewSystemHandler(cfg))
	r.Setup()

	// Liveness endpoint outside API versioning
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
