package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/allocation"
	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/logger"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "hotel-reservation")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		zl.Fatal("database open", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db, cfg.MigrationsTable); err != nil {
			zl.Fatal("migrate", zap.Error(err))
		}
		zl.Info("migrations applied")
	}

	// Redis is optional: without it the limiter and cache pass through.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		zl.Warn("redis unavailable, rate limiting and caching disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	pub := queue.NewPublisher(cfg.RabbitURL, zl.Named("publisher"))
	defer pub.Close()
	if cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartConfirmationConsumer(ctx, cfg.RabbitURL, zl.Named("consumer")); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("confirmation consumer stopped", zap.Error(err))
			}
		}()
	} else {
		zl.Warn("RABBITMQ_URL not set, confirmations stay queued in the database")
	}

	store := repository.NewStore(db)
	confirmations := repository.NewConfirmationRepo(db)
	confirmer := service.NewConfirmationService(confirmations, pub, zl)
	engine := allocation.NewEngine(allocation.Deps{
		Store:     store,
		Confirmer: confirmer,
		Keys:      service.NewKeyService(repository.NewDigitalKeyRepo(db), cfg.KeyCodeCost, zl),
		Log:       zl.Named("engine"),
	})

	// retry confirmations the broker missed
	if cfg.RabbitURL != "" {
		relay := service.NewConfirmationRelay(confirmer, confirmations, store, zl.Named("relay"))
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		if _, err := c.AddFunc("@every "+cfg.RelayInterval.String(), func() {
			if _, err := relay.RelayOnce(ctx); err != nil {
				zl.Warn("confirmation relay", zap.Error(err))
			}
		}); err != nil {
			zl.Fatal("schedule confirmation relay", zap.Error(err))
		}
		c.Start()
		defer c.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zl))

	auth := handler.NewAuthHandler(handler.AuthConfig{
		Secret:       cfg.JWTSecret,
		AccessTTL:    cfg.AccessTTL,
		RefreshTTL:   cfg.RefreshTTL,
		PasswordCost: cfg.PasswordCost,
	}, repository.NewStaffRepo(db), repository.NewTokenRepo(db), zl)

	router.RegisterRoutes(e, router.Deps{
		Handler:   handler.NewHandler(engine, zl),
		Auth:      auth,
		Catalog:   handler.NewCatalogHandler(repository.NewRoomCatalog(db), store, zl),
		Health:    handler.Health(db),
		JWTSecret: cfg.JWTSecret,
		Limit:     middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, zl),
	})

	go func() {
		addr := ":" + cfg.Port
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
