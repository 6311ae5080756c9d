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

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"busstation-backend/config"
	"busstation-backend/internal/api"
	"busstation-backend/internal/cache"
	"busstation-backend/internal/db"
	"busstation-backend/internal/denorm"
	"busstation-backend/internal/dispatch"
	"busstation-backend/internal/logging"
	"busstation-backend/internal/notification"
	"busstation-backend/internal/registry"
	"busstation-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	logger.WithField("path", configPath).Info("configuration loaded")

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Warn("VAPID keys are not configured, departure notifications will fail to send")
	}
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	entities := cache.NewTagCache(cfg.Sync.EntityCacheTTL, 2*cfg.Sync.EntityCacheTTL)
	fetcher := denorm.NewFetcher(appStore, entities, logger)
	syncer := denorm.NewSyncer(appStore, appStore, fetcher, entities, cfg.Sync.MaxConcurrency, logger)

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, &webpushOptions, logger)
	workerPool.Start(ctx)

	workflow := dispatch.NewWorkflow(dispatch.NewService(appStore, fetcher, workerPool, logger))

	registrySvc := registry.NewService(cfg.Registry, appStore, syncer, logger)
	go registrySvc.Run(ctx)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(appStore, workflow, syncer, &webpushOptions, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(cfg.Server, handler),
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("HTTP server Shutdown")
	}

	logger.Info("server gracefully stopped")
}
