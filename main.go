// main.go
package main

import (
	"context"
	"log"
	"time"

	"car-rental/cmd"
	"car-rental/internal/data/repository"
	"car-rental/internal/events"
	"car-rental/internal/wire"
	"car-rental/pkg/database"
	"car-rental/pkg/tracing"
	"car-rental/pkg/utils"

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
		zap.Bool("debug", config.App.Debug),
	)

	// Setup tracing (no-op kalau OTLP endpoint tidak diisi)
	shutdownTracing, err := tracing.Setup(context.Background(), config.App.Name, config.Tracing)
	if err != nil {
		logger.Fatal("Failed to setup tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("Tracing shutdown failed", zap.Error(err))
		}
	}()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to Redis (optional, rate limiter fallback ke in-memory tanpa ini)
	var rdb *redis.Client
	if config.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limiting falls back to in-memory", zap.Error(err))
		} else {
			logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
		}
	}

	// Setup event publisher (optional, noop kalau brokers tidak diisi)
	var publisher events.Publisher
	if len(config.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(config.Kafka.Brokers, config.Kafka.Topic, logger)
		logger.Info("Kafka publisher initialized",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.Topic))
	} else {
		publisher = events.NewNoopPublisher()
		logger.Info("Kafka brokers not configured, booking events disabled")
	}
	defer publisher.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, publisher, rdb, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
