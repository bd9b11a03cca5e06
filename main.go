// main.go
package main

import (
	"context"
	"log"
	"time"

	"event-booking/cmd"
	"event-booking/internal/adaptor"
	"event-booking/internal/data/memstore"
	"event-booking/internal/data/repository"
	"event-booking/internal/wire"
	"event-booking/pkg/database"
	"event-booking/pkg/queue"
	"event-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("storage", config.App.StorageDriver),
		zap.Bool("debug", config.App.Debug),
	)

	var cleanup []func()

	// Storage
	var (
		repo   *repository.Repository
		health adaptor.HealthChecker
	)
	switch config.App.StorageDriver {
	case utils.StorageDriverMemory:
		repo = memstore.New().Repository()
		logger.Warn("Using in-memory storage; data is lost on restart")
	default:
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		cleanup = append(cleanup, db.Close)
		logger.Info("Database connected successfully")

		if err := database.Migrate(context.Background(), db); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}

		repo = repository.NewRepository(db, logger)
		health = db.Ping
	}

	// Rate limiter backend, optional
	var rdb *redis.Client
	if config.RateLimit.Enabled {
		rdb, err = database.InitRedis(config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			cleanup = append(cleanup, func() { rdb.Close() })
		}
	}

	// Booking lifecycle publisher, optional
	publisher := queue.NewNopPublisher()
	if config.RabbitMQ.Enabled {
		p, err := queue.NewRabbitPublisher(config.RabbitMQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, booking events will not be published", zap.Error(err))
		} else {
			publisher = p
			cleanup = append(cleanup, func() { p.Close() })
		}
	}

	if config.Payment.WebhookSecret == "" {
		logger.Warn("PAYMENT_WEBHOOK_SECRET is not set, payment webhooks will be refused")
	}

	clock := utils.NewSystemClock()

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:      repo,
		Clock:     clock,
		Publisher: publisher,
		Redis:     rdb,
		Health:    health,
	}, config, logger)

	if err := app.Service.Auth.EnsureAdmin(context.Background(), config.Admin.Email, config.Admin.Password); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	stopJanitor := cmd.StartSessionJanitor(repo.Session, clock, time.Hour, logger)

	// cleanup runs in reverse order of acquisition, after the janitor stops
	shutdown := []func(){stopJanitor}
	for i := len(cleanup) - 1; i >= 0; i-- {
		shutdown = append(shutdown, cleanup[i])
	}

	cmd.APIServer(app.Router, config.App.Port, logger, shutdown...)
}
