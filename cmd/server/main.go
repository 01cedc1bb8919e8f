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

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/app"
	"github.com/nekogravitycat/class-booking-backend/internal/config"
	"github.com/nekogravitycat/class-booking-backend/internal/db"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/cache"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/storage"
)

const sweepInterval = time.Minute

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log := logger.Setup(cfg.Env)
	slog.SetDefault(log)
	ctx = logger.WithContext(ctx, log)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Error("failed to connect to db", logger.Err(err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Error("failed to migrate db", logger.Err(err))
			os.Exit(1)
		}
		log.Info("schema applied")
	}

	// Redis schedule cache, optional
	scheduleCache := cache.NewNop()
	rdb, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	switch {
	case err != nil:
		log.Warn("redis unavailable, schedule cache disabled", logger.Err(err))
	case rdb != nil:
		defer rdb.Close()
		scheduleCache = cache.NewRedis(rdb, cache.Options{TTL: cfg.ScheduleCacheTTL})
		log.Info("redis connected", slog.String("addr", cfg.RedisAddr))
	}

	// RabbitMQ domain events, optional
	publisher := events.NewNop()
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", logger.Err(err))
		} else {
			publisher = p
			log.Info("rabbitmq connected", slog.String("exchange", cfg.AMQPExchange))
		}
	}
	defer publisher.Close()

	store, err := storage.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		log.Error("failed to init storage", logger.Err(err))
		os.Exit(1)
	}

	container, err := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction(),
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		Logger:       log,
		Cache:        scheduleCache,
		Publisher:    publisher,
		Storage:      store,
	})
	if err != nil {
		log.Error("failed to build app", logger.Err(err))
		os.Exit(1)
	}

	go app.RunSweeper(ctx, container.BookingService, cfg.PendingBookingTTL, sweepInterval)

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", slog.String("addr", cfg.HTTPAddr), slog.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Err(err))
	}

	log.Info("server exited gracefully")
}
