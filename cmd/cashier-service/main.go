package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"kot-system/internal/cashier"
	"kot-system/internal/cashier/api"
	cashierdb "kot-system/internal/cashier/db"
	"kot-system/internal/cashier/kafka"
	"kot-system/internal/cashier/kot"
	"kot-system/internal/config"
	"kot-system/internal/database/migrations"
	"kot-system/internal/logger"
	"kot-system/internal/payments"
	"kot-system/internal/reports"
	"kot-system/internal/sse"
	tablesredis "kot-system/internal/tables/redis"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL not ready: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Addr))
	return client
}

func runMigrations(bunDB *bun.DB, log *logger.Logger) {
	if run, _ := strconv.ParseBool(os.Getenv("RUN_MIGRATIONS")); !run {
		if err := cashierdb.Migrate(context.Background(), bunDB); err != nil {
			log.Fatal("MIGRATE", fmt.Sprintf("Failed to create order tables: %v", err))
		}
		log.Info("MIGRATE", "Order tables ensured from models")
		return
	}

	opts := migrations.DefaultOptions()
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		opts.MigrationsDir = dir
	}
	opts.SeedData, _ = strconv.ParseBool(os.Getenv("SEED_DATA"))

	runner := migrations.NewRunner(bunDB, opts, log)
	if err := runner.Up(); err != nil {
		log.Fatal("MIGRATE", fmt.Sprintf("Migrations failed: %v", err))
	}
	log.Info("MIGRATE", "SQL migrations applied")
}

func main() {
	log := logger.NewLogger("cashier-service")
	defer log.Close()

	log.Info("APP", "Starting Cashier Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	runMigrations(bunDB, log)

	redisClient := connectRedis(ctx, cfg.Redis, log)
	defer redisClient.Close()

	var publisher cashier.KafkaPublisher
	if cfg.Kafka.Enabled {
		topics := []string{
			cfg.Kafka.Topics.OrderCreated,
			cfg.Kafka.Topics.OrderPaid,
			cfg.Kafka.Topics.OrderCancelled,
			cfg.Kafka.Topics.OrderRefunded,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
		producer := kafka.NewProducer(cfg.Kafka, log)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		log.Warn("KAFKA", "Kafka disabled, order events will not be published")
	}

	seatHold := tablesredis.NewSeatHold(redisClient, log, cfg.Redis.SeatHoldTTL)
	printer := kot.NewPrinter(os.Stdout, log)
	emitter := sse.NewOrderEventEmitter()

	dbLayer := &cashierdb.DB{Bun: bunDB}
	orderService := cashier.NewOrderService(dbLayer, seatHold, publisher, printer, emitter, log)

	orderHandler := api.NewHandler(orderService, log)
	sseHandler := api.NewSSEHandler(emitter, log)
	reportsHandler := reports.NewHandler(dbLayer, log)

	gateway := payments.NewGateway(orderService, log,
		cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.Enabled)
	paymentsHandler := payments.NewHandler(gateway)
	if cfg.Stripe.Enabled {
		log.Info("STRIPE", "Stripe gateway enabled")
	} else {
		log.Warn("STRIPE", "Stripe gateway disabled, online intents will be rejected")
	}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	orderHandler.Routes(r)
	sseHandler.Routes(r)
	reportsHandler.Routes(r)
	paymentsHandler.Routes(r)
	log.Info("ROUTER", "Cashier order, stream, report and payment routes registered")

	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No write timeout: the SSE streams stay open for the life of
		// the dashboard connection.
		WriteTimeout: 0,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Cashier Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Cashier Service shutdown complete")
	}
}
